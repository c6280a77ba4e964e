// Package handlers routes Discord interactions to the prompt, preset and
// settings services and builds the responses.
package handlers

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"nullscape/discord"
	"nullscape/preset"
	"nullscape/ratelimit"
	"nullscape/sentryhelper"
	"nullscape/settings"
)

// Responder is the part of *discordgo.Session used to update a response
// after it was sent.
type Responder interface {
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Options struct {
	Settings  *settings.Provider
	Presets   *preset.Service
	Limiter   *ratelimit.Limiter
	AdminIDs  []string
	Responder Responder
	// Generator is optional. Without one /draw answers with a request preview.
	Generator Generator
}

type Manager struct {
	settings  *settings.Provider
	presets   *preset.Service
	limiter   *ratelimit.Limiter
	admins    map[string]bool
	responder Responder
	generator Generator
	hints     *Hints
	usage     *Usage
	pending   sync.WaitGroup
}

func NewManager(opts Options) *Manager {
	admins := make(map[string]bool, len(opts.AdminIDs))
	for _, id := range opts.AdminIDs {
		admins[id] = true
	}
	return &Manager{
		settings:  opts.Settings,
		presets:   opts.Presets,
		limiter:   opts.Limiter,
		admins:    admins,
		responder: opts.Responder,
		generator: opts.Generator,
		hints:     NewHints(),
		usage:     NewUsage(),
	}
}

// Wait blocks until background generations have finished.
func (manager *Manager) Wait() {
	manager.pending.Wait()
}

func (manager *Manager) isAdmin(userID string) bool {
	return manager.admins[userID]
}

// OnInteractionCreate is the gateway event handler.
func (manager *Manager) OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	response := manager.HandleInteraction(context.Background(), i)
	if response == nil {
		return
	}
	if err := s.InteractionRespond(i.Interaction, response); err != nil {
		log.WithFields(log.Fields{
			"module":         "handlers",
			"interaction_id": i.ID,
			"error":          err,
		}).Error("Failed to respond to interaction")
	}
}

// HandleInteraction returns the initial response for i. Panics are turned
// into an ephemeral error reply.
func (manager *Manager) HandleInteraction(ctx context.Context, i *discordgo.InteractionCreate) (response *discordgo.InteractionResponse) {
	defer func() {
		if err := recover(); err != nil {
			log.WithFields(log.Fields{
				"module": "handlers",
				"panic":  err,
			}).Error("Panic in interaction handling")
			sentryhelper.CaptureException(ctx, fmt.Errorf("panic in interaction handling: %v", err))
			response = ephemeral("❌ An error occurred while processing your command")
		}
	}()

	switch i.Type {
	case discordgo.InteractionPing:
		return &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}
	case discordgo.InteractionApplicationCommand:
		return manager.handleCommand(ctx, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		return manager.handleAutocomplete(i)
	case discordgo.InteractionModalSubmit:
		return manager.handleModalSubmit(ctx, i)
	default:
		return ephemeral("Sorry, I don't know how to handle this type of interaction")
	}
}

func (manager *Manager) handleCommand(ctx context.Context, i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
	data := i.ApplicationCommandData()
	user := interactionUser(i)
	isAdmin := manager.isAdmin(user.ID)

	ctx, tx := sentryhelper.StartCommandTransaction(ctx, data.Name, i.GuildID, user.ID)
	defer tx.Finish()

	logger := log.WithFields(log.Fields{
		"module":   "handlers",
		"command":  data.Name,
		"user_id":  user.ID,
		"username": user.Username,
		"guild_id": i.GuildID,
	})

	result := manager.limiter.Check(user.ID, data.Name, isAdmin)
	if !result.Allowed {
		wait := int(math.Ceil(result.RetryAfter.Seconds()))
		logger.WithField("retry_after_s", wait).Warn("Rate limit hit")
		sentryhelper.CaptureMessage(ctx, "rate limit hit on /"+data.Name)
		return ephemeral(fmt.Sprintf("⚠️ **Rate limited**: at most %d requests per minute, try again in %d seconds.",
			manager.settings.RateLimitPerMin(), wait))
	}

	logger.Info("Executing command")
	sentryhelper.AddBreadcrumb(ctx, "command", "executing "+data.Name, nil)

	switch data.Name {
	case discord.CommandDraw:
		return manager.handleDraw(ctx, i, user, data)
	case discord.CommandConvert:
		return manager.handleConvert(i, user, data)
	case discord.CommandSettings:
		if !isAdmin {
			return ephemeral("❌ You don't have permission to use this command.")
		}
		return manager.handleSettings(ctx, user, data)
	default:
		logger.Warn("Unknown command received")
		return ephemeral("Sorry, I don't know how to handle this command")
	}
}

// fail logs and reports err and returns a generic ephemeral reply.
func (manager *Manager) fail(ctx context.Context, msg string, err error) *discordgo.InteractionResponse {
	log.WithFields(log.Fields{
		"module": "handlers",
		"error":  err,
	}).Error(msg)
	sentryhelper.CaptureException(ctx, fmt.Errorf("%s: %w", msg, err))
	return ephemeral("❌ " + msg)
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

func message(content string, embeds ...*discordgo.MessageEmbed) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Embeds:  embeds,
		},
	}
}

func ephemeral(content string, embeds ...*discordgo.MessageEmbed) *discordgo.InteractionResponse {
	response := message(content, embeds...)
	response.Data.Flags = discordgo.MessageFlagsEphemeral
	return response
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name, fallback string) string {
	if opt, ok := opts[name]; ok {
		if v, ok := opt.Value.(string); ok && v != "" {
			return v
		}
	}
	return fallback
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (int64, bool) {
	if opt, ok := opts[name]; ok {
		if v, ok := opt.Value.(float64); ok {
			return int64(v), true
		}
	}
	return 0, false
}

func floatOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (float64, bool) {
	if opt, ok := opts[name]; ok {
		if v, ok := opt.Value.(float64); ok {
			return v, true
		}
	}
	return 0, false
}

func boolOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (bool, bool) {
	if opt, ok := opts[name]; ok {
		if v, ok := opt.Value.(bool); ok {
			return v, true
		}
	}
	return false, false
}
