package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicebot/internal/domain"
)

func TestParseTemplatePlainText(t *testing.T) {
	nodes, err := parseTemplate("k", "just words, *bold* and _italic_ kept verbatim")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, textNode("just words, *bold* and _italic_ kept verbatim"), nodes[0])
}

func TestParseTemplateInterpolation(t *testing.T) {
	nodes, err := parseTemplate("k", "hi {name}, code {token:upper}")
	require.NoError(t, err)
	require.Len(t, nodes, 4)
	assert.Equal(t, varNode{name: "name"}, nodes[1])
	assert.Equal(t, varNode{name: "token", modifier: "upper"}, nodes[3])
}

func TestParseTemplateConditional(t *testing.T) {
	nodes, err := parseTemplate("k", "{if vip}gold{else}plain{end}")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	cond, ok := nodes[0].(condNode)
	require.True(t, ok)
	assert.Equal(t, "vip", cond.flag)
	assert.Equal(t, []node{textNode("gold")}, cond.then)
	assert.Equal(t, []node{textNode("plain")}, cond.els)
}

func TestParseTemplateConditionalWithoutElse(t *testing.T) {
	nodes, err := parseTemplate("k", "{if vip}gold{end}")
	require.NoError(t, err)
	cond := nodes[0].(condNode)
	assert.Equal(t, []node{textNode("gold")}, cond.then)
	assert.Nil(t, cond.els)
}

func TestParseTemplateEach(t *testing.T) {
	nodes, err := parseTemplate("k", "{each x in items}{x}; {end}")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	each, ok := nodes[0].(eachNode)
	require.True(t, ok)
	assert.Equal(t, "x", each.item)
	assert.Equal(t, "items", each.list)
	assert.Equal(t, []node{varNode{name: "x"}, textNode("; ")}, each.body)
}

func TestParseTemplateNesting(t *testing.T) {
	nodes, err := parseTemplate("k", "{each u in users}{if vip}*{u}*{else}{u}{end}, {end}")
	require.NoError(t, err)
	each := nodes[0].(eachNode)
	require.Len(t, each.body, 2)
	_, ok := each.body[0].(condNode)
	assert.True(t, ok)
}

func TestParseTemplateMalformed(t *testing.T) {
	cases := map[string]string{
		"unclosed brace":   "hello {name",
		"empty directive":  "hello {}",
		"dangling end":     "text {end}",
		"dangling else":    "text {else}",
		"unclosed if":      "{if vip}gold",
		"unclosed each":    "{each x in items}{x}",
		"double else":      "{if a}x{else}y{else}z{end}",
		"bad each":         "{each x items}{end}",
		"bad flag":         "{if a b}x{end}",
		"bad placeholder":  "{9lives}",
		"unknown modifier": "{name:shout}",
		"space in include": "{include two words}",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseTemplate("k", text)
			var malformed *domain.MalformedTemplateError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, "k", malformed.Key)
		})
	}
}

func TestCollectIncludes(t *testing.T) {
	nodes, err := parseTemplate("k", "{include a}{if f}{include b}{else}{each x in l}{include c}{end}{end}")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, collectIncludes(nodes))
}
