// Package prompt assembles the final positive and negative prompt text sent
// with a generation request.
package prompt

import (
	"strings"

	"nullscape/preset"
	"nullscape/syntax"
)

const separator = ", "

// Options are the inputs of Build. Preset may be nil.
type Options struct {
	ScenePrompt  string
	UserNegative string
	Preset       *preset.Preset
	Model        string
}

// Built is the converted prompt pair for one request.
type Built struct {
	Positive   string
	Negative   string
	PresetName string
}

// Build joins preset tags and user text in a fixed order, preset first, and
// converts each side to the notation of the target model.
func Build(opts Options) Built {
	var p preset.Preset
	if opts.Preset != nil {
		p = *opts.Preset
	}

	positive := join(p.QualityTags, strings.TrimSpace(opts.ScenePrompt))
	negative := join(p.NegativeTags, strings.TrimSpace(opts.UserNegative))

	return Built{
		Positive:   syntax.AutoConvert(positive, opts.Model),
		Negative:   syntax.AutoConvert(negative, opts.Model),
		PresetName: p.Name,
	}
}

// ConvertUser converts a bare user prompt for model without any preset.
func ConvertUser(text, model string) string {
	return syntax.AutoConvert(text, model)
}

func join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, separator)
}
