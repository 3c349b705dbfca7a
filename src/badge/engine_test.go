package badge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "#4c1", StatusColor("passing"))
	assert.Equal(t, "#4c1", StatusColor("success"))
	assert.Equal(t, "#e05d44", StatusColor("failing"))
	assert.Equal(t, "#dfb317", StatusColor("warning"))
	assert.Equal(t, "#9f9f9f", StatusColor("unknown"))
}

func TestApproxMetricsTextWidth(t *testing.T) {
	m := ApproxMetrics(11)

	// Narrow glyphs measure less than wide ones.
	assert.Less(t, m.TextWidth("ill"), m.TextWidth("mmm"))
	assert.Greater(t, m.TextWidth("pipeline"), 0.0)
	assert.Nil(t, m.FontData())
}

func TestGenerateBadgeSVG(t *testing.T) {
	e := New(ApproxMetrics(11))
	svg := e.Generate(Badge{Label: "pipeline", Value: "passing", Color: "#4c1"})

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, ">pipeline</text>")
	assert.Contains(t, svg, ">passing</text>")
	assert.Contains(t, svg, `fill="#4c1"`)
	// Approximate metrics never embed font data.
	assert.NotContains(t, svg, "@font-face")
}

func TestGenerateEscapesText(t *testing.T) {
	e := New(ApproxMetrics(11))
	svg := e.Generate(Badge{Label: "a<b", Value: "x&y", Color: "#4c1"})

	assert.Contains(t, svg, "a&lt;b")
	assert.Contains(t, svg, "x&amp;y")
	assert.NotContains(t, svg, ">a<b<")
}
