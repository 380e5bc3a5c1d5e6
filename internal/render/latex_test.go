package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMixedText(t *testing.T) {
	segments := Split("Solve $x^2 - 4 = 0$ for $x$.")

	require.Len(t, segments, 5)
	assert.Equal(t, Segment{Text: "Solve "}, segments[0])
	assert.Equal(t, Segment{Text: "x^2 - 4 = 0", Equation: true}, segments[1])
	assert.Equal(t, Segment{Text: " for "}, segments[2])
	assert.Equal(t, Segment{Text: "x", Equation: true}, segments[3])
	assert.Equal(t, Segment{Text: "."}, segments[4])
}

func TestSplitPlainText(t *testing.T) {
	segments := Split("No math here.")

	require.Len(t, segments, 1)
	assert.False(t, segments[0].Equation)
	assert.Equal(t, "No math here.", segments[0].Text)
}

func TestSplitUnpairedDollar(t *testing.T) {
	segments := Split("It costs $5.")

	require.Len(t, segments, 1)
	assert.False(t, segments[0].Equation)
}

func TestHasEquations(t *testing.T) {
	assert.True(t, HasEquations("Area is $\\pi r^2$."))
	assert.False(t, HasEquations("Area is pi r squared."))
	assert.False(t, HasEquations("It costs $5."))
}

func TestRenderCachesByExpression(t *testing.T) {
	renderer := NewEquationRenderer()
	calls := 0
	renderer.render = func(expr string) ([]byte, error) {
		calls++
		return []byte(expr), nil
	}

	first, err := renderer.Render("x^2")
	require.NoError(t, err)
	second, err := renderer.Render("x^2")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, renderer.CacheSize())

	_, err = renderer.Render("y^3")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, renderer.CacheSize())
}

func TestRenderTrimsBeforeCaching(t *testing.T) {
	renderer := NewEquationRenderer()
	calls := 0
	renderer.render = func(expr string) ([]byte, error) {
		calls++
		return []byte(expr), nil
	}

	_, err := renderer.Render(" x+1 ")
	require.NoError(t, err)
	_, err = renderer.Render("x+1")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestRenderErrorNotCached(t *testing.T) {
	renderer := NewEquationRenderer()
	fail := errors.New("rasterizer unavailable")
	renderer.render = func(expr string) ([]byte, error) {
		return nil, fail
	}

	_, err := renderer.Render("\\frac{1}{0}")
	require.Error(t, err)
	assert.ErrorIs(t, err, fail)
	assert.Zero(t, renderer.CacheSize())
}
