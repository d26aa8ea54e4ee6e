package application

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"voicebot/internal/domain"
	"voicebot/internal/domain/entities"
	"voicebot/pkg/textfmt"
)

// IncludeResolver renders a nested message key on behalf of an {include}
// directive. The engine implements it by re-entering the full choose+render
// pipeline with the same context and user.
type IncludeResolver interface {
	RenderInclude(ctx context.Context, key string) (string, error)
}

// Renderer expands a variant's template against a render context. Rendering
// is pure computation: identical (variant, context) inputs produce
// byte-identical output.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// Render expands a raw variant without composition support; {include}
// directives fail. Use Engine.Compose for the full pipeline. The variant is
// parsed on the fly, so a malformed template that slipped past registration
// still fails safely instead of emitting garbage.
func (r *Renderer) Render(ctx context.Context, v entities.Variant, rc entities.RenderContext) (string, error) {
	nodes, err := parseTemplate(v.Key, v.Text)
	if err != nil {
		return "", err
	}
	return r.renderNodes(ctx, v.Key, nodes, rc, nil)
}

func (r *Renderer) renderNodes(ctx context.Context, key string, nodes []node, rc entities.RenderContext, res IncludeResolver) (string, error) {
	st := &renderState{ctx: ctx, key: key, rc: rc, res: res}
	if err := st.eval(nodes); err != nil {
		return "", err
	}
	return st.b.String(), nil
}

type loopBinding struct {
	name  string
	value any
}

type renderState struct {
	ctx   context.Context
	key   string
	rc    entities.RenderContext
	binds []loopBinding // innermost loop variable last
	res   IncludeResolver
	b     strings.Builder
}

// lookup resolves a name against the innermost loop bindings first, then the
// render context.
func (st *renderState) lookup(name string) (any, bool) {
	for i := len(st.binds) - 1; i >= 0; i-- {
		if st.binds[i].name == name {
			return st.binds[i].value, true
		}
	}
	v, ok := st.rc[name]
	return v, ok
}

func (st *renderState) eval(nodes []node) error {
	for _, n := range nodes {
		switch t := n.(type) {
		case textNode:
			st.b.WriteString(string(t))

		case varNode:
			v, ok := st.lookup(t.name)
			if !ok {
				return &domain.MissingVariableError{Key: st.key, Name: t.name}
			}
			s := textfmt.Stringify(v)
			// Modifiers were validated at parse time.
			s, _ = textfmt.ApplyCase(s, t.modifier)
			st.b.WriteString(s)

		case condNode:
			// An absent flag is simply falsy; conditionals gate on
			// optional context values.
			v, _ := st.lookup(t.flag)
			if entities.Truthy(v) {
				if err := st.eval(t.then); err != nil {
					return err
				}
			} else if err := st.eval(t.els); err != nil {
				return err
			}

		case eachNode:
			v, ok := st.lookup(t.list)
			if !ok {
				return &domain.MissingVariableError{Key: st.key, Name: t.list}
			}
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
				return fmt.Errorf("render %q: context value %q is not a list", st.key, t.list)
			}
			for i := 0; i < rv.Len(); i++ {
				st.binds = append(st.binds, loopBinding{name: t.item, value: rv.Index(i).Interface()})
				err := st.eval(t.body)
				st.binds = st.binds[:len(st.binds)-1]
				if err != nil {
					return err
				}
			}

		case includeNode:
			if st.res == nil {
				return fmt.Errorf("render %q: {include %s} needs the full engine pipeline", st.key, t.key)
			}
			out, err := st.res.RenderInclude(st.ctx, t.key)
			if err != nil {
				return err
			}
			st.b.WriteString(out)
		}
	}
	return nil
}
