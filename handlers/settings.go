package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"nullscape/discord"
	"nullscape/preset"
)

func (manager *Manager) handleSettings(ctx context.Context, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) *discordgo.InteractionResponse {
	if len(data.Options) == 0 {
		return ephemeral("❌ Unknown subcommand")
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	logger := log.WithFields(log.Fields{
		"module":     "handlers",
		"subcommand": sub.Name,
		"user_id":    user.ID,
	})

	switch sub.Name {
	case discord.SubShow:
		return ephemeral("", discord.BuildSettingsEmbed(manager.settings.Snapshot()))

	case discord.SubSetRateLimit:
		value, _ := intOption(opts, discord.OptValue)
		before := manager.settings.Snapshot()
		after, err := manager.settings.SetRateLimitPerMin(int(value))
		if err != nil {
			return manager.fail(ctx, "Failed to update rate limit", err)
		}
		logger.WithField("rate_limit_per_min", after.RateLimitPerMin).Info("Updated rate limit")
		return ephemeral("", discord.BuildRateLimitChangeEmbed(before, after))

	case discord.SubSetLimitMode:
		enabled, _ := boolOption(opts, discord.OptEnabled)
		before := manager.settings.Snapshot()
		after, err := manager.settings.SetLimitMode(enabled)
		if err != nil {
			return manager.fail(ctx, "Failed to update limit mode", err)
		}
		logger.WithField("limit_mode", after.LimitMode).Info("Updated limit mode")
		return ephemeral("", discord.BuildLimitModeChangeEmbed(before, after))

	case discord.SubPresetList:
		items, err := manager.presets.List(preset.DefaultLimit)
		if err != nil {
			return manager.fail(ctx, "Failed to list presets", err)
		}
		return ephemeral("", discord.BuildPresetListEmbed(items))

	case discord.SubPresetGet:
		id := strings.TrimSpace(stringOption(opts, discord.OptID, ""))
		if err := preset.ValidateID(id); err != nil {
			return ephemeral("❌ " + err.Error())
		}
		p, err := manager.presets.Get(id)
		if err != nil {
			return manager.fail(ctx, "Failed to load preset", err)
		}
		if p == nil {
			return ephemeral("❌ Preset not found: " + id)
		}
		return ephemeral("", discord.BuildPresetEmbed(p))

	case discord.SubPresetUpsert:
		id := strings.TrimSpace(stringOption(opts, discord.OptID, ""))
		if err := preset.ValidateID(id); err != nil {
			return ephemeral("❌ " + err.Error())
		}
		existing, err := manager.presets.Get(id)
		if err != nil {
			return manager.fail(ctx, "Failed to load preset", err)
		}
		return discord.BuildPresetModal(user.ID, id, existing)

	case discord.SubPresetDelete:
		id := strings.TrimSpace(stringOption(opts, discord.OptID, ""))
		if err := preset.ValidateID(id); err != nil {
			return ephemeral("❌ " + err.Error())
		}
		deleted, err := manager.presets.Delete(id)
		if err != nil {
			return manager.fail(ctx, "Failed to delete preset", err)
		}
		if !deleted {
			return ephemeral("⚠️ Preset not found: " + id)
		}
		return ephemeral("✅ Deleted preset: " + id)

	default:
		return ephemeral("❌ Unknown subcommand")
	}
}

// handleModalSubmit saves the preset modal. The form must be submitted by the
// admin who opened it.
func (manager *Manager) handleModalSubmit(ctx context.Context, i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
	data := i.ModalSubmitData()
	ownerID, presetID, ok := discord.ParsePresetModalCustomID(data.CustomID)
	if !ok {
		return ephemeral("Sorry, I don't know how to handle this form")
	}

	user := interactionUser(i)
	if ownerID != user.ID {
		return ephemeral("❌ This form isn't yours, run the command again to open your own.")
	}
	if !manager.isAdmin(user.ID) {
		return ephemeral("❌ You don't have permission to use this feature.")
	}
	if err := preset.ValidateID(presetID); err != nil {
		return ephemeral("❌ " + err.Error())
	}

	values := discord.ModalValues(data)
	saved, err := manager.presets.Upsert(preset.Input{
		ID:           presetID,
		Name:         values[discord.FieldPresetName],
		Description:  values[discord.FieldPresetDescription],
		QualityTags:  values[discord.FieldPresetQuality],
		NegativeTags: values[discord.FieldPresetNegative],
	})
	if errors.Is(err, preset.ErrEmptyName) || errors.Is(err, preset.ErrInvalidID) {
		return ephemeral("❌ " + err.Error())
	}
	if err != nil {
		return manager.fail(ctx, fmt.Sprintf("Failed to save preset %s", presetID), err)
	}

	return ephemeral("", discord.BuildPresetSavedEmbed(saved))
}
