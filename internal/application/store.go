package application

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"voicebot/internal/domain"
	"voicebot/internal/domain/entities"
)

// defaultWeight is used when a catalog entry omits the weight.
const defaultWeight = 1.0

type compiledVariant struct {
	entities.Variant
	nodes []node
	cond  *vm.Program // nil when the variant is unconditional
}

type message struct {
	key      string
	sample   entities.RenderContext
	variants []*compiledVariant
}

// Store is the immutable per-process variant table. Built once at startup,
// read-only afterwards, safe for concurrent reads without locking.
type Store struct {
	messages map[string]*message
	keys     []string // sorted, for deterministic iteration
}

// BuildStore validates and compiles raw message definitions: every key gets
// at least one variant, weights are strictly positive, templates parse,
// conditions compile, variant ids are unique per key, every {include} target
// exists and the include graph is acyclic.
func BuildStore(defs []entities.MessageDef) (*Store, error) {
	s := &Store{messages: make(map[string]*message, len(defs))}

	for _, def := range defs {
		if def.Key == "" {
			return nil, fmt.Errorf("catalog: message with empty key")
		}
		if _, dup := s.messages[def.Key]; dup {
			return nil, fmt.Errorf("catalog: message %q registered twice", def.Key)
		}
		if len(def.Variants) == 0 {
			return nil, fmt.Errorf("catalog: message %q has no variants", def.Key)
		}

		msg := &message{key: def.Key, sample: def.Sample}
		seen := make(map[string]bool, len(def.Variants))
		for i, vd := range def.Variants {
			weight := vd.Weight
			if weight == 0 {
				weight = defaultWeight
			}
			if weight < 0 {
				return nil, fmt.Errorf("catalog: message %q variant %d: weight must be positive, got %v", def.Key, i, vd.Weight)
			}

			nodes, err := parseTemplate(def.Key, vd.Text)
			if err != nil {
				return nil, err
			}

			var cond *vm.Program
			if vd.Condition != "" {
				cond, err = expr.Compile(vd.Condition, expr.AllowUndefinedVariables())
				if err != nil {
					return nil, fmt.Errorf("catalog: message %q variant %d: condition %q: %w", def.Key, i, vd.Condition, err)
				}
			}

			id := variantID(vd.Text)
			if seen[id] {
				return nil, fmt.Errorf("catalog: message %q has duplicate variant text (id %s)", def.Key, id)
			}
			seen[id] = true

			msg.variants = append(msg.variants, &compiledVariant{
				Variant: entities.Variant{
					Key:       def.Key,
					ID:        id,
					Text:      vd.Text,
					Weight:    weight,
					Condition: vd.Condition,
				},
				nodes: nodes,
				cond:  cond,
			})
		}
		s.messages[def.Key] = msg
		s.keys = append(s.keys, def.Key)
	}
	sort.Strings(s.keys)

	if err := s.validateIncludes(); err != nil {
		return nil, err
	}
	return s, nil
}

// variantID derives the stable variant identifier from the template text, so
// ids survive restarts and catalog reordering.
func variantID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:4])
}

// validateIncludes checks that every {include} target is registered and that
// the directed key graph has no cycle. Fail-fast diagnostics beat the
// runtime depth cap silently truncating output.
func (s *Store) validateIncludes() error {
	edges := make(map[string][]string, len(s.messages))
	for key, msg := range s.messages {
		for _, v := range msg.variants {
			for _, target := range collectIncludes(v.nodes) {
				if _, ok := s.messages[target]; !ok {
					return fmt.Errorf("catalog: message %q includes unknown key %q", key, target)
				}
				edges[key] = append(edges[key], target)
			}
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(edges))
	var path []string

	var visit func(key string) error
	visit = func(key string) error {
		switch state[key] {
		case visiting:
			return &domain.CompositionCycleError{Path: append(append([]string{}, path...), key)}
		case done:
			return nil
		}
		state[key] = visiting
		path = append(path, key)
		for _, next := range edges[key] {
			if err := visit(next); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[key] = done
		return nil
	}

	for _, key := range s.keys {
		if err := visit(key); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns every registered message key, sorted.
func (s *Store) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of registered message keys.
func (s *Store) Len() int { return len(s.messages) }

// Variants returns the registered variants for key, in registration order.
func (s *Store) Variants(key string) ([]entities.Variant, error) {
	msg, ok := s.messages[key]
	if !ok {
		return nil, &domain.UnknownKeyError{Key: key}
	}
	out := make([]entities.Variant, len(msg.variants))
	for i, v := range msg.variants {
		out[i] = v.Variant
	}
	return out, nil
}

func (s *Store) message(key string) (*message, error) {
	msg, ok := s.messages[key]
	if !ok {
		return nil, &domain.UnknownKeyError{Key: key}
	}
	return msg, nil
}
