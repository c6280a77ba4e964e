package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// CommandRegistrar is the part of *discordgo.Session used to publish commands.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// NewSession builds a gateway session. It is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("failed to create discord session: bot token is empty")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

// RegisterCommands replaces the command set for appID. An empty guildID
// registers global commands.
func RegisterCommands(registrar CommandRegistrar, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	if appID == "" {
		return nil, fmt.Errorf("failed to register commands: application id is empty")
	}
	commands := Commands()
	created, err := registrar.ApplicationCommandBulkOverwrite(appID, guildID, commands)
	if err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}

	names := make([]string, 0, len(created))
	for _, cmd := range created {
		names = append(names, cmd.Name)
	}
	log.WithFields(log.Fields{
		"module":   "discord",
		"guild_id": guildID,
		"commands": names,
	}).Info("Registered application commands")
	return created, nil
}
