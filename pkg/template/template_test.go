package template

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probeq/profiledb/pkg/logging"
)

func parseQuiet(t *testing.T, tmpl string, argCount int) *MessageTemplate {
	t.Helper()
	return Parse(tmpl, argCount, logging.NewJSONLogger(&bytes.Buffer{}, logging.ErrorLevel))
}

func TestConstantOnly(t *testing.T) {
	tmpl := parseQuiet(t, "nothing to substitute", 0)
	assert.Equal(t, "nothing to substitute", tmpl.Evaluate(Invocation{}))
}

func TestArgSubstitution(t *testing.T) {
	tmpl := parseQuiet(t, "query {{0}} on shard {{1}}", 2)
	got := tmpl.Evaluate(Invocation{Args: []any{"SELECT 1", 7}})
	assert.Equal(t, "query SELECT 1 on shard 7", got)
}

func TestDottedPathOnMapAndStruct(t *testing.T) {
	type request struct {
		URI    string
		Params map[string]any
	}
	tmpl := parseQuiet(t, "{{0.uri}}?id={{0.params.id}}", 1)
	got := tmpl.Evaluate(Invocation{Args: []any{request{
		URI:    "/users",
		Params: map[string]any{"id": 42},
	}}})
	assert.Equal(t, "/users?id=42", got)
}

func TestThisAndReturnAndMethodName(t *testing.T) {
	type conn struct{ Host string }
	tmpl := parseQuiet(t, "{{methodName}} on {{this.host}} -> {{_}}", 0)
	got := tmpl.Evaluate(Invocation{
		This:        &conn{Host: "db01"},
		ReturnValue: 250,
		MethodName:  "execute",
	})
	assert.Equal(t, "execute on db01 -> 250", got)
}

func TestNilRendersNull(t *testing.T) {
	tmpl := parseQuiet(t, "value={{0}}, ret={{_}}", 1)
	got := tmpl.Evaluate(Invocation{Args: []any{nil}})
	assert.Equal(t, "value=null, ret=null", got)
}

func TestArrayRendering(t *testing.T) {
	tmpl := parseQuiet(t, "ids={{0}}", 1)
	got := tmpl.Evaluate(Invocation{Args: []any{[]int{1, 2, 3}}})
	assert.Equal(t, "ids=[1, 2, 3]", got)

	nested := tmpl.Evaluate(Invocation{Args: []any{[]any{[]int{1, 2}, "x"}}})
	assert.Equal(t, "ids=[[1, 2], x]", nested)
}

func TestArgIndexOutOfBounds(t *testing.T) {
	tmpl := parseQuiet(t, "got {{3}}", 2)
	assert.Equal(t, "got <requested arg index out of bounds: 3>", tmpl.Evaluate(Invocation{}))
}

func TestInvalidSubstitutionRendersLiterally(t *testing.T) {
	var logBuf bytes.Buffer
	tmpl := Parse("bad {{bogus.path}}", 0, logging.NewJSONLogger(&logBuf, logging.WarnLevel))
	assert.Equal(t, "bad {{bogus.path}}", tmpl.Evaluate(Invocation{}))
	assert.Contains(t, logBuf.String(), "invalid template substitution")
}

func TestEvaluationErrorRendered(t *testing.T) {
	tmpl := parseQuiet(t, "{{0.missing}}", 1)
	got := tmpl.Evaluate(Invocation{Args: []any{map[string]any{"present": 1}}})
	assert.True(t, strings.HasPrefix(got, "<error evaluating: "), "got %q", got)
}

func TestWhitespaceInsidePlaceholder(t *testing.T) {
	tmpl := parseQuiet(t, "{{ 0 }}", 1)
	assert.Equal(t, "trimmed", tmpl.Evaluate(Invocation{Args: []any{"trimmed"}}))
}

func TestArgIndexes(t *testing.T) {
	tmpl := parseQuiet(t, "{{1}} {{0}} {{1.path}} {{methodName}}", 3)
	assert.Equal(t, []int{1, 0}, tmpl.ArgIndexes())
}

func TestUnexportedFieldErrors(t *testing.T) {
	type hidden struct {
		visible string //nolint:unused
	}
	tmpl := parseQuiet(t, "{{0.visible}}", 1)
	got := tmpl.Evaluate(Invocation{Args: []any{hidden{visible: "nope"}}})
	assert.True(t, strings.HasPrefix(got, "<error evaluating: "), "got %q", got)
}
