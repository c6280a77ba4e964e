package discord

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"nullscape/preset"
	"nullscape/settings"
)

const (
	ColorInfo    = 0x7289DA
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorError   = 0xED4245
)

const (
	// MaxChoiceName is the Discord limit for autocomplete choice names.
	MaxChoiceName = 100
	maxFieldValue = 1024
	// PromptPreview is how much of the positive prompt the request embeds show.
	PromptPreview = 150
	empty         = "(empty)"
	none          = "(none)"
)

// Truncate shortens s to at most limit runes, ending with an ellipsis when cut.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return Truncate(s, maxFieldValue)
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

func onOff(enabled bool) string {
	if enabled {
		return "Enabled"
	}
	return "Disabled"
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}

// BuildPresetEmbed renders a stored preset.
func BuildPresetEmbed(p *preset.Preset) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎭 Preset: %s", p.ID),
		Color: ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			field("Name", orPlaceholder(p.Name, empty), false),
			field("Description", orPlaceholder(p.Description, none), false),
			field("Quality", orPlaceholder(p.QualityTags, empty), false),
			field("Negative", orPlaceholder(p.NegativeTags, empty), false),
		},
		Timestamp: timestamp(),
	}
}

// BuildPresetSavedEmbed confirms an upsert and shows the normalized tags.
func BuildPresetSavedEmbed(p *preset.Preset) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "✅ Preset saved",
		Color: ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			field("ID", p.ID, true),
			field("Name", p.Name, true),
			field("Description", orPlaceholder(p.Description, none), false),
			field("Quality (normalized)", orPlaceholder(p.QualityTags, empty), false),
			field("Negative (normalized)", orPlaceholder(p.NegativeTags, empty), false),
		},
		Timestamp: timestamp(),
	}
}

// BuildPresetListEmbed lists preset ids and names one per line.
func BuildPresetListEmbed(items []preset.Summary) *discordgo.MessageEmbed {
	description := "(no presets yet)"
	if len(items) > 0 {
		lines := make([]string, 0, len(items))
		for _, item := range items {
			lines = append(lines, fmt.Sprintf("• %s - %s", item.ID, item.Name))
		}
		description = strings.Join(lines, "\n")
	}
	return &discordgo.MessageEmbed{
		Title:       "🎭 Presets",
		Color:       ColorInfo,
		Description: description,
		Timestamp:   timestamp(),
	}
}

// BuildSettingsEmbed shows the current runtime settings.
func BuildSettingsEmbed(s settings.Snapshot) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "⚙ Current settings",
		Color: ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			field("⏱ Requests per minute", fmt.Sprintf("%d", s.RateLimitPerMin), false),
			field("⛔ NovelAI limit mode", onOff(s.LimitMode), false),
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Only ADMIN_USER_IDS can change settings"},
		Timestamp: timestamp(),
	}
}

// BuildRateLimitChangeEmbed shows a before/after rate limit change.
func BuildRateLimitChangeEmbed(before, after settings.Snapshot) *discordgo.MessageEmbed {
	return changeEmbed("✅ Requests per minute updated",
		fmt.Sprintf("%d", before.RateLimitPerMin), fmt.Sprintf("%d", after.RateLimitPerMin))
}

// BuildLimitModeChangeEmbed shows a before/after limit mode change.
func BuildLimitModeChangeEmbed(before, after settings.Snapshot) *discordgo.MessageEmbed {
	return changeEmbed("✅ NovelAI limit mode updated", onOff(before.LimitMode), onOff(after.LimitMode))
}

func changeEmbed(title, before, after string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: title,
		Color: ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			field("Before", before, true),
			field("Now", after, true),
		},
		Timestamp: timestamp(),
	}
}

// DrawRequest is what a /draw card displays.
type DrawRequest struct {
	UserID         string
	Positive       string
	Negative       string
	PresetDisplay  string
	Model          string
	ModelName      string
	Width          int
	Height         int
	Steps          int
	Scale          float64
	Sampler        string
	Seed           *int64
	Limited        bool
	OriginalWidth  int
	OriginalHeight int
}

func (r DrawRequest) size() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func (r DrawRequest) commonFields() []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		field("📝 Prompt", fmt.Sprintf("`%s`", Truncate(r.Positive, PromptPreview)), false),
		field("🎭 Preset", r.PresetDisplay, true),
		field("🎨 Model", r.ModelName, true),
		field("📐 Size", r.size(), true),
		field("👤 User", fmt.Sprintf("<@%s>", r.UserID), true),
	}
	if r.Limited {
		fields = append(fields, field("⛔ Limit mode",
			fmt.Sprintf("Adjusted from %dx%d to %s", r.OriginalWidth, r.OriginalHeight, r.size()), false))
	}
	return fields
}

// BuildDrawPreviewEmbed shows the fully converted request without sending it.
func BuildDrawPreviewEmbed(r DrawRequest) *discordgo.MessageEmbed {
	fields := r.commonFields()
	fields = append(fields,
		field("🚫 Negative", fmt.Sprintf("`%s`", orPlaceholder(r.Negative, empty)), false),
		field("⚙ Parameters", fmt.Sprintf("steps %d · scale %g · %s", r.Steps, r.Scale, r.Sampler), false),
	)
	return &discordgo.MessageEmbed{
		Title:     "🧪 Request preview",
		Color:     ColorWarning,
		Fields:    fields,
		Footer:    &discordgo.MessageEmbedFooter{Text: "No image backend is configured, nothing was generated"},
		Timestamp: timestamp(),
	}
}

// BuildDrawPendingEmbed is the placeholder shown while a generation runs.
func BuildDrawPendingEmbed(r DrawRequest) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:     "🎨 Generating image...",
		Color:     ColorInfo,
		Fields:    r.commonFields(),
		Timestamp: timestamp(),
	}
}

// BuildDrawDoneEmbed reports a finished generation.
func BuildDrawDoneEmbed(r DrawRequest, seed int64, elapsed time.Duration) *discordgo.MessageEmbed {
	fields := r.commonFields()
	fields = append(fields,
		field("🌱 Seed", fmt.Sprintf("`%d`", seed), true),
		field("⏱ Elapsed", FormatElapsed(elapsed), true),
	)
	return &discordgo.MessageEmbed{
		Title:     "✨ Done",
		Color:     ColorSuccess,
		Fields:    fields,
		Image:     &discordgo.MessageEmbedImage{URL: fmt.Sprintf("attachment://draw_%d.png", seed)},
		Timestamp: timestamp(),
	}
}

// BuildErrorEmbed renders a failure with its message.
func BuildErrorEmbed(title, message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ " + title,
		Color:       ColorError,
		Description: Truncate(message, 4096),
	}
}

// BuildConvertEmbed shows a conversion result next to its unified form.
func BuildConvertEmbed(model, modelName, unified, converted string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🔁 Converted prompt",
		Color: ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			field("🎨 Model", fmt.Sprintf("%s (`%s`)", modelName, model), false),
			field("Unified", fmt.Sprintf("```%s```", Truncate(orPlaceholder(unified, empty), maxFieldValue-6)), false),
			field("Converted", fmt.Sprintf("```%s```", Truncate(orPlaceholder(converted, empty), maxFieldValue-6)), false),
		},
	}
}

// FormatElapsed renders short durations as seconds and longer ones as m:ss.
func FormatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d - m*time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}
