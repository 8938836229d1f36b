package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderer_Sep(t *testing.T) {
	tests := []struct {
		name  string
		width int
		title string
		want  string
	}{
		{"even fill", 20, "ab", "======== ab ========"},
		{"odd remainder padded", 21, "ab", "======== ab ========="},
		{"title wider than console", 10, "a very long title", "= a very long title ="},
		{"no title", 5, "", "====="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(tt.width, false, false)
			assert.Equal(t, tt.want, r.Sep(tt.title))
		})
	}
}

func TestRenderer_SepWidth(t *testing.T) {
	r := NewRenderer(80, false, false)

	for _, title := range []string{"Warnings summary", "There are 12 passed tests", "x"} {
		line := r.Sep(title)
		assert.LessOrEqual(t, len(line), 80)
		assert.GreaterOrEqual(t, len(line), 79)
		assert.True(t, strings.Contains(line, " "+title+" "))
	}
}

func TestNewRenderer_DefaultWidth(t *testing.T) {
	r := NewRenderer(0, false, true)

	assert.Equal(t, DefaultWidth, r.Width)
	assert.True(t, r.NoWarnings)
}
