package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"nullscape/preset"
)

const presetModalPrefix = "settings:preset_upsert"

// Text input ids of the preset modal.
const (
	FieldPresetName        = "preset_name"
	FieldPresetDescription = "preset_description"
	FieldPresetQuality     = "preset_quality"
	FieldPresetNegative    = "preset_negative"
)

// PresetModalCustomID encodes the opener and target preset.
// Format: "settings:preset_upsert:<userID>:<presetID>"
func PresetModalCustomID(userID, presetID string) string {
	return presetModalPrefix + ":" + userID + ":" + presetID
}

// IsPresetModal reports whether customID belongs to the preset modal.
func IsPresetModal(customID string) bool {
	return strings.HasPrefix(customID, presetModalPrefix+":")
}

// ParsePresetModalCustomID extracts the opener and preset id. Missing parts
// come back empty so the caller can reject them with a specific message.
func ParsePresetModalCustomID(customID string) (userID, presetID string, ok bool) {
	if !IsPresetModal(customID) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(customID, presetModalPrefix+":"), ":", 2)
	userID = parts[0]
	if len(parts) == 2 {
		presetID = parts[1]
	}
	return userID, presetID, true
}

func textInputRow(id, label string, style discordgo.TextInputStyle, required bool, maxLength int, value string) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:  id,
				Label:     label,
				Style:     style,
				Required:  required,
				MaxLength: maxLength,
				Value:     value,
			},
		},
	}
}

// BuildPresetModal returns the modal response for creating or editing
// presetID, prefilled from existing when it is not nil.
func BuildPresetModal(userID, presetID string, existing *preset.Preset) *discordgo.InteractionResponse {
	var p preset.Preset
	if existing != nil {
		p = *existing
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: PresetModalCustomID(userID, presetID),
			Title:    "Create / update preset",
			Components: []discordgo.MessageComponent{
				textInputRow(FieldPresetName, "Display name", discordgo.TextInputShort, true, 100, p.Name),
				textInputRow(FieldPresetDescription, "Description (optional)", discordgo.TextInputParagraph, false, 1000, p.Description),
				textInputRow(FieldPresetQuality, "Quality tags (optional, multi-line)", discordgo.TextInputParagraph, false, 4000, p.QualityTags),
				textInputRow(FieldPresetNegative, "Negative tags (optional, multi-line)", discordgo.TextInputParagraph, false, 4000, p.NegativeTags),
			},
		},
	}
}

// ModalValues flattens submitted text inputs into a map keyed by custom id.
func ModalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}
