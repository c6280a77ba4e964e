package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"nullscape/discord"
	"nullscape/models"
	"nullscape/prompt"
	"nullscape/syntax"
)

func (manager *Manager) handleConvert(i *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) *discordgo.InteractionResponse {
	opts := optionMap(data.Options)
	text := stringOption(opts, discord.OptText, "")
	model := stringOption(opts, discord.OptModel, string(models.DefaultModel))
	if !models.Known(model) {
		return ephemeral("❌ Unknown model: " + model)
	}

	unified := syntax.ToUnified(text)
	converted := prompt.ConvertUser(text, model)
	count := manager.usage.AddConversion(user.ID)

	log.WithFields(log.Fields{
		"module":  "handlers",
		"user_id": user.ID,
		"model":   model,
		"family":  models.FamilyOf(model).String(),
	}).Info("Converted prompt")

	embed := discord.BuildConvertEmbed(model, models.DisplayName(model), unified, converted)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Conversions by you: %d", count)}
	return ephemeral(manager.hints.ShowIfApplicable(i.GuildID), embed)
}
