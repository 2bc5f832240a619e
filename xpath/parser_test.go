package xpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStep(t *testing.T) {
	expr, err := parseQuery(`child::a`)
	require.NoError(t, err)
	step, ok := expr.(*Step)
	require.True(t, ok)
	assert.Equal(t, AxisChild, step.Axis)
	require.NotNil(t, step.Test)
	assert.Equal(t, TestName, step.Test.Kind)
	assert.Equal(t, "a", step.Test.Local)
}

func TestParseAbbreviations(t *testing.T) {
	expr, err := parseQuery(`@id`)
	require.NoError(t, err)
	step := expr.(*Step)
	assert.Equal(t, AxisAttribute, step.Axis)

	expr, err = parseQuery(`..`)
	require.NoError(t, err)
	step = expr.(*Step)
	assert.Equal(t, AxisParent, step.Axis)
	assert.Equal(t, StepParent, step.Spec)

	expr, err = parseQuery(`.`)
	require.NoError(t, err)
	step = expr.(*Step)
	assert.Equal(t, AxisSelf, step.Axis)
	assert.Equal(t, StepSelf, step.Spec)
}

func TestParseDoubleSlashExpansion(t *testing.T) {
	expr, err := parseQuery(`//b`)
	require.NoError(t, err)
	path, ok := expr.(*Path)
	require.True(t, ok)
	require.Len(t, path.Steps, 2)

	first := path.Steps[0].(*Step)
	assert.Equal(t, AxisDescendantOrSelf, first.Axis)
	assert.Equal(t, TestNode, first.Test.Kind)
	assert.Equal(t, PathSingle, first.Path)

	second := path.Steps[1].(*Step)
	assert.Equal(t, AxisChild, second.Axis)
	assert.Equal(t, "b", second.Test.Local)

	expr, err = parseQuery(`a//b`)
	require.NoError(t, err)
	path = expr.(*Path)
	require.Len(t, path.Steps, 3, "interior '//' expands the same way")
	assert.Equal(t, AxisDescendantOrSelf, path.Steps[1].(*Step).Axis)
}

func TestParsePrecedence(t *testing.T) {
	expr, err := parseQuery(`1 + 2 * 3`)
	require.NoError(t, err)
	add := expr.(*BinaryOp)
	assert.Equal(t, tokPlus, add.Op)
	mul := add.Right.(*BinaryOp)
	assert.Equal(t, tokStar, mul.Op)

	expr, err = parseQuery(`a = 1 or b = 2 and c = 3`)
	require.NoError(t, err)
	or := expr.(*BinaryOp)
	assert.Equal(t, tokOr, or.Op)
	and := or.Right.(*BinaryOp)
	assert.Equal(t, tokAnd, and.Op)

	// unary minus binds looser than union
	expr, err = parseQuery(`-a | b`)
	require.NoError(t, err)
	neg := expr.(*UnaryOp)
	assert.Equal(t, tokMinus, neg.Op)
	union := neg.Operand.(*BinaryOp)
	assert.Equal(t, tokUnion, union.Op)
}

func TestParsePredicates(t *testing.T) {
	expr, err := parseQuery(`a[2][@id]`)
	require.NoError(t, err)
	step := expr.(*Step)
	require.Len(t, step.Predicates, 2)
	assert.False(t, step.Predicates[0].Reverse)

	expr, err = parseQuery(`ancestor::a[1]`)
	require.NoError(t, err)
	step = expr.(*Step)
	assert.True(t, step.Predicates[0].Reverse, "ancestor implies reverse order")
}

func TestParseFilterExpression(t *testing.T) {
	expr, err := parseQuery(`(//a)[1]`)
	require.NoError(t, err)
	pred, ok := expr.(*Predicate)
	require.True(t, ok)
	require.NotNil(t, pred.Left)
	_, ok = pred.Left.(*Path)
	assert.True(t, ok)

	expr, err = parseQuery(`(//a)[1]/b`)
	require.NoError(t, err)
	path := expr.(*Path)
	require.Len(t, path.Steps, 2)
	_, ok = path.Steps[0].(*Predicate)
	assert.True(t, ok)
}

func TestParseNodeTests(t *testing.T) {
	cases := map[string]TestKind{
		`*`:                            TestWildcard,
		`a`:                            TestName,
		`p:*`:                          TestPrefixWildcard,
		`p:l`:                          TestPrefixLocal,
		`text()`:                       TestText,
		`comment()`:                    TestComment,
		`node()`:                       TestNode,
		`processing-instruction()`:     TestPI,
		`processing-instruction("st")`: TestPI,
	}
	for src, want := range cases {
		expr, err := parseQuery(src)
		require.NoError(t, err, "parsing %q", src)
		step, ok := expr.(*Step)
		require.True(t, ok, "parsing %q", src)
		assert.Equal(t, want, step.Test.Kind, "kind for %q", src)
	}

	expr, err := parseQuery(`processing-instruction("st")`)
	require.NoError(t, err)
	assert.Equal(t, "st", expr.(*Step).Test.Target)
}

func TestParseFunctionCalls(t *testing.T) {
	expr, err := parseQuery(`concat("a", "b", "c")`)
	require.NoError(t, err)
	call := expr.(*FunctionCall)
	assert.Equal(t, "concat", call.Name)
	assert.Len(t, call.Args, 3)

	expr, err = parseQuery(`count(//a)`)
	require.NoError(t, err)
	call = expr.(*FunctionCall)
	require.Len(t, call.Args, 1)
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		`a[`,
		`a[1`,
		`concat(a,)`,
		`foo::a`,
		`/..[`,
		`a b`,
		``,
	}
	for _, src := range inputs {
		_, err := parseQuery(src)
		require.Error(t, err, "parsing %q should fail", src)
	}
}
