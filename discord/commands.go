package discord

import (
	"github.com/bwmarrin/discordgo"

	"nullscape/models"
)

// Command names.
const (
	CommandDraw     = "draw"
	CommandConvert  = "convert"
	CommandSettings = "settings"
)

// /settings subcommands.
const (
	SubShow         = "show"
	SubSetRateLimit = "set_rate_limit"
	SubSetLimitMode = "set_limit_mode"
	SubPresetList   = "preset_list"
	SubPresetGet    = "preset_get"
	SubPresetUpsert = "preset_upsert"
	SubPresetDelete = "preset_delete"
)

// Option names shared by the command definitions and the handlers.
const (
	OptPrompt   = "prompt"
	OptPreset   = "preset"
	OptModel    = "model"
	OptSize     = "size"
	OptNegative = "negative"
	OptSampler  = "sampler"
	OptSteps    = "steps"
	OptScale    = "scale"
	OptSeed     = "seed"
	OptText     = "text"
	OptValue    = "value"
	OptEnabled  = "enabled"
	OptID       = "id"
)

const (
	maxSteps = 50
	maxScale = 10
	maxSeed  = 4294967295
)

func floatPtr(v float64) *float64 {
	return &v
}

func modelChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.All))
	for _, id := range models.All {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  models.DisplayName(string(id)),
			Value: string(id),
		})
	}
	return choices
}

func sizeChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.Sizes))
	for _, size := range models.Sizes {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  size.Name,
			Value: size.ID,
		})
	}
	return choices
}

func samplerChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.Samplers))
	for _, sampler := range models.Samplers {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  sampler,
			Value: sampler,
		})
	}
	return choices
}

func presetIDOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptID,
		Description: description,
		Required:    true,
	}
}

// Commands returns the full application command set.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		drawCommand(),
		convertCommand(),
		settingsCommand(),
	}
}

func drawCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        CommandDraw,
		Description: "Generate an image with NovelAI, optionally using a style preset",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptPrompt,
				Description: "Scene tags, emphasize with <tag:1.5>",
				Required:    true,
			},
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         OptPreset,
				Description:  "Style preset with quality and negative tags",
				Autocomplete: true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptModel,
				Description: "Model",
				Choices:     modelChoices(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptSize,
				Description: "Image size",
				Choices:     sizeChoices(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptNegative,
				Description: "Extra negative tags, merged after the preset",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptSampler,
				Description: "Sampler",
				Choices:     samplerChoices(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        OptSteps,
				Description: "Sampling steps (1-50)",
				MinValue:    floatPtr(1),
				MaxValue:    maxSteps,
			},
			{
				Type:        discordgo.ApplicationCommandOptionNumber,
				Name:        OptScale,
				Description: "CFG scale (1-10)",
				MinValue:    floatPtr(1),
				MaxValue:    maxScale,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        OptSeed,
				Description: "Seed, random when empty",
				MinValue:    floatPtr(0),
				MaxValue:    maxSeed,
			},
		},
	}
}

func convertCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        CommandConvert,
		Description: "Convert emphasis syntax to the notation a model understands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptText,
				Description: "Prompt text in any notation",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptModel,
				Description: "Target model",
				Choices:     modelChoices(),
			},
		},
	}
}

func settingsCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        CommandSettings,
		Description: "View or change bot settings (admins only)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubShow,
				Description: "Show the current settings",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubSetRateLimit,
				Description: "Set the global requests-per-minute limit",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        OptValue,
						Description: "Requests per minute (1-60)",
						Required:    true,
						MinValue:    floatPtr(1),
						MaxValue:    60,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubSetLimitMode,
				Description: "Toggle NovelAI limit mode (keeps sizes within the free tier)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        OptEnabled,
						Description: "Enable limit mode",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubPresetList,
				Description: "List presets (up to 25)",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubPresetGet,
				Description: "Show a preset",
				Options:     []*discordgo.ApplicationCommandOption{presetIDOption("Preset ID")},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubPresetUpsert,
				Description: "Create or update a preset, tags are normalized",
				Options:     []*discordgo.ApplicationCommandOption{presetIDOption("Preset ID, globally unique")},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubPresetDelete,
				Description: "Delete a preset",
				Options:     []*discordgo.ApplicationCommandOption{presetIDOption("Preset ID")},
			},
		},
	}
}
