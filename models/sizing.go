package models

import (
	"math"
	"strings"
)

const sizeMultiple = 64

// SizePreset is a named output resolution.
type SizePreset struct {
	ID     string
	Name   string
	Width  int
	Height int
}

// DefaultSize is used by /draw when no size option is given.
const DefaultSize = "portrait_small"

// Sizes lists the size presets in display order.
var Sizes = []SizePreset{
	{ID: "portrait", Name: "📱 Portrait (832×1216)", Width: 832, Height: 1216},
	{ID: "portrait_small", Name: "📱 Portrait Small (512×768)", Width: 512, Height: 768},
	{ID: "landscape", Name: "🖼️ Landscape (1216×832)", Width: 1216, Height: 832},
	{ID: "landscape_small", Name: "🖼️ Landscape Small (768×512)", Width: 768, Height: 512},
	{ID: "square", Name: "⬜ Square (1024×1024)", Width: 1024, Height: 1024},
	{ID: "square_small", Name: "⬜ Square Small (512×512)", Width: 512, Height: 512},
	{ID: "wide", Name: "📺 Wide (1536×640)", Width: 1536, Height: 640},
	{ID: "tall", Name: "📐 Tall (640×1536)", Width: 640, Height: 1536},
}

// SizeFor looks up a size preset, falling back to portrait.
func SizeFor(id string) SizePreset {
	for _, s := range Sizes {
		if s.ID == id {
			return s
		}
	}
	return Sizes[0]
}

// SizeResult is the outcome of ApplyLimitMode.
type SizeResult struct {
	Width          int
	Height         int
	Limited        bool
	OriginalWidth  int
	OriginalHeight int
}

// ApplyLimitMode shrinks a requested size when limit mode is enabled. Presets
// with a small variant switch to it, small presets are left alone and any other
// size is halved. Results are aligned down to a multiple of 64.
func ApplyLimitMode(width, height int, presetID string, enabled bool) SizeResult {
	unchanged := SizeResult{Width: width, Height: height, OriginalWidth: width, OriginalHeight: height}
	if !enabled {
		return unchanged
	}

	preset := strings.ToLower(presetID)
	if strings.HasSuffix(preset, "_small") {
		return unchanged
	}

	var targetWidth, targetHeight float64
	switch preset {
	case "portrait":
		targetWidth, targetHeight = 512, 768
	case "landscape":
		targetWidth, targetHeight = 768, 512
	case "square":
		targetWidth, targetHeight = 512, 512
	default:
		targetWidth, targetHeight = float64(width)*0.5, float64(height)*0.5
	}

	newWidth := alignSize(targetWidth)
	newHeight := alignSize(targetHeight)
	if newWidth == width && newHeight == height {
		return unchanged
	}

	return SizeResult{
		Width:          newWidth,
		Height:         newHeight,
		Limited:        true,
		OriginalWidth:  width,
		OriginalHeight: height,
	}
}

func alignSize(v float64) int {
	aligned := (int(math.Round(v)) / sizeMultiple) * sizeMultiple
	if aligned < sizeMultiple {
		return sizeMultiple
	}
	return aligned
}
