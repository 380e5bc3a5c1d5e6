package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-latex/latex/drawtex/drawimg"
	"github.com/go-latex/latex/mtex"
)

// equationPattern matches inline math delimited by single dollar signs.
var equationPattern = regexp.MustCompile(`\$([^$]+)\$`)

// Segment is one run of question text: either plain prose or a LaTeX
// expression to be rendered as an image.
type Segment struct {
	Text     string
	Equation bool
}

// EquationRenderer rasterizes LaTeX math to PNG, caching by expression
// so repeated worksheet renders do not re-rasterize.
type EquationRenderer struct {
	size float64
	dpi  float64

	mu    sync.RWMutex
	cache map[string][]byte

	// render produces the PNG bytes for one expression. Overridable so
	// callers can swap the rasterizer.
	render func(expr string) ([]byte, error)
}

func NewEquationRenderer() *EquationRenderer {
	r := &EquationRenderer{
		size:  12,
		dpi:   150,
		cache: make(map[string][]byte),
	}
	r.render = r.renderPNG
	return r
}

// Split cuts text into prose and equation segments. Dollar signs that do
// not pair up are left as prose.
func Split(text string) []Segment {
	var segments []Segment
	last := 0
	for _, loc := range equationPattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: text[last:loc[0]]})
		}
		segments = append(segments, Segment{Text: text[loc[2]:loc[3]], Equation: true})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}

// HasEquations reports whether text contains any inline math.
func HasEquations(text string) bool {
	return equationPattern.MatchString(text)
}

// Render returns the PNG for one expression, from cache when possible.
func (r *EquationRenderer) Render(expr string) ([]byte, error) {
	expr = strings.TrimSpace(expr)
	key := cacheKey(expr)

	r.mu.RLock()
	png, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return png, nil
	}

	png, err := r.render(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to render equation %q: %w", expr, err)
	}

	r.mu.Lock()
	r.cache[key] = png
	r.mu.Unlock()
	return png, nil
}

// CacheSize reports how many distinct expressions are cached.
func (r *EquationRenderer) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func (r *EquationRenderer) renderPNG(expr string) ([]byte, error) {
	var buf bytes.Buffer
	dst := drawimg.NewRenderer(&buf)
	if err := mtex.Render(dst, "$"+expr+"$", r.size, r.dpi, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cacheKey(expr string) string {
	sum := sha256.Sum256([]byte(expr))
	return hex.EncodeToString(sum[:8])
}
