package application

import (
	"fmt"
	"strings"

	"voicebot/internal/domain"
)

// Template dialect, evaluated in a single left-to-right pass:
//
//	{name}                   interpolation ({name:title|upper|lower} to recase)
//	{if flag}...{else}...{end}   conditional block, else optional
//	{each item in list}...{end}  dynamic list expansion
//	{include other.key}          composition through the full choose+render pipeline
//
// Braces are reserved for the dialect; everything else, including
// presentation markup, passes through verbatim.

type node interface{}

type textNode string

type varNode struct {
	name     string
	modifier string
}

type condNode struct {
	flag string
	then []node
	els  []node
}

type eachNode struct {
	item string
	list string
	body []node
}

type includeNode struct {
	key string
}

type parseFrame struct {
	kind     string // "root", "if", "each"
	pos      int    // offset of the opening directive
	flag     string
	item     string
	list     string
	elseSeen bool
	nodes    []node
	then     []node // completed then-branch once {else} is seen
}

// parseTemplate compiles raw template text into an AST. key is only used for
// error reporting.
func parseTemplate(key, text string) ([]node, error) {
	malformed := func(pos int, format string, args ...any) error {
		return &domain.MalformedTemplateError{Key: key, Detail: fmt.Sprintf(format, args...), Pos: pos}
	}

	frames := []*parseFrame{{kind: "root"}}
	top := func() *parseFrame { return frames[len(frames)-1] }

	i := 0
	for i < len(text) {
		open := strings.IndexByte(text[i:], '{')
		if open < 0 {
			top().nodes = append(top().nodes, textNode(text[i:]))
			break
		}
		open += i
		if open > i {
			top().nodes = append(top().nodes, textNode(text[i:open]))
		}
		end := strings.IndexByte(text[open:], '}')
		if end < 0 {
			return nil, malformed(open, "unclosed '{'")
		}
		end += open
		tag := strings.TrimSpace(text[open+1 : end])

		switch {
		case tag == "":
			return nil, malformed(open, "empty directive")

		case tag == "else":
			f := top()
			if f.kind != "if" || f.elseSeen {
				return nil, malformed(open, "unexpected {else}")
			}
			f.then = f.nodes
			f.nodes = nil
			f.elseSeen = true

		case tag == "end":
			if len(frames) == 1 {
				return nil, malformed(open, "unexpected {end}")
			}
			f := top()
			frames = frames[:len(frames)-1]
			switch f.kind {
			case "if":
				n := condNode{flag: f.flag}
				if f.elseSeen {
					n.then, n.els = f.then, f.nodes
				} else {
					n.then = f.nodes
				}
				top().nodes = append(top().nodes, n)
			case "each":
				top().nodes = append(top().nodes, eachNode{item: f.item, list: f.list, body: f.nodes})
			}

		case strings.HasPrefix(tag, "if "):
			flag := strings.TrimSpace(tag[len("if "):])
			if !isIdent(flag) {
				return nil, malformed(open, "bad flag name %q in {if}", flag)
			}
			frames = append(frames, &parseFrame{kind: "if", pos: open, flag: flag})

		case strings.HasPrefix(tag, "each "):
			fields := strings.Fields(tag)
			if len(fields) != 4 || fields[2] != "in" || !isIdent(fields[1]) || !isIdent(fields[3]) {
				return nil, malformed(open, "bad {each} directive %q, want {each item in list}", tag)
			}
			frames = append(frames, &parseFrame{kind: "each", pos: open, item: fields[1], list: fields[3]})

		case strings.HasPrefix(tag, "include "):
			k := strings.TrimSpace(tag[len("include "):])
			if k == "" || strings.ContainsAny(k, " \t") {
				return nil, malformed(open, "bad {include} target %q", k)
			}
			top().nodes = append(top().nodes, includeNode{key: k})

		default:
			name, modifier := tag, ""
			if c := strings.IndexByte(tag, ':'); c >= 0 {
				name, modifier = tag[:c], tag[c+1:]
			}
			if !isIdent(name) {
				return nil, malformed(open, "bad placeholder %q", tag)
			}
			if !validModifier(modifier) {
				return nil, malformed(open, "unknown case modifier %q for placeholder %q", modifier, name)
			}
			top().nodes = append(top().nodes, varNode{name: name, modifier: modifier})
		}

		i = end + 1
	}

	if len(frames) != 1 {
		f := top()
		return nil, malformed(f.pos, "unclosed {%s}", f.kind)
	}
	return frames[0].nodes, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func validModifier(m string) bool {
	switch m {
	case "", "title", "upper", "lower":
		return true
	}
	return false
}

// collectIncludes returns every {include} target reachable in the AST, in
// source order, duplicates included.
func collectIncludes(nodes []node) []string {
	var out []string
	for _, n := range nodes {
		switch t := n.(type) {
		case includeNode:
			out = append(out, t.key)
		case condNode:
			out = append(out, collectIncludes(t.then)...)
			out = append(out, collectIncludes(t.els)...)
		case eachNode:
			out = append(out, collectIncludes(t.body)...)
		}
	}
	return out
}
