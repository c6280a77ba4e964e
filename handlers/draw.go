package handlers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"nullscape/discord"
	"nullscape/models"
	"nullscape/preset"
	"nullscape/prompt"
	"nullscape/sentryhelper"
)

// GenerateTimeout bounds a single image generation.
const GenerateTimeout = 120 * time.Second

// GenerateRequest carries converted prompts and resolved parameters to an
// image backend.
type GenerateRequest struct {
	Prompt         string
	NegativePrompt string
	Model          string
	Width          int
	Height         int
	Steps          int
	Scale          float64
	Sampler        string
	SMEA           bool
	SMEADyn        bool
	// Seed is nil when the backend should pick one.
	Seed *int64
}

type GenerateResult struct {
	Image []byte
	Seed  int64
}

// Generator produces an image for a request.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

type drawJob struct {
	interaction *discordgo.Interaction
	userID      string
	card        discord.DrawRequest
	request     GenerateRequest
	startedAt   time.Time
}

func (manager *Manager) resolvePreset(ctx context.Context, presetID string) (*preset.Preset, string, error) {
	if presetID == "" {
		return nil, "(none)", nil
	}
	p, err := manager.presets.Get(presetID)
	if err != nil {
		return nil, "", err
	}
	if p == nil {
		sentryhelper.AddBreadcrumb(ctx, "preset", "preset not found", map[string]interface{}{"preset_id": presetID})
		return nil, fmt.Sprintf("(not found: %s)", presetID), nil
	}
	return p, p.Name, nil
}

func (manager *Manager) handleDraw(ctx context.Context, i *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) *discordgo.InteractionResponse {
	opts := optionMap(data.Options)

	scene := stringOption(opts, discord.OptPrompt, "")
	model := stringOption(opts, discord.OptModel, string(models.DefaultModel))
	sizeID := stringOption(opts, discord.OptSize, models.DefaultSize)
	if !models.Known(model) {
		return ephemeral("❌ Unknown model: " + model)
	}

	p, presetDisplay, err := manager.resolvePreset(ctx, stringOption(opts, discord.OptPreset, ""))
	if err != nil {
		return manager.fail(ctx, "Failed to load preset", err)
	}

	defaults := models.DefaultsFor(model)
	steps := defaults.Steps
	if v, ok := intOption(opts, discord.OptSteps); ok {
		steps = int(v)
	}
	scale := defaults.Scale
	if v, ok := floatOption(opts, discord.OptScale); ok {
		scale = v
	}
	sampler := stringOption(opts, discord.OptSampler, defaults.Sampler)
	if !models.IsSampler(sampler) {
		return ephemeral("❌ Unknown sampler: " + sampler)
	}
	var seed *int64
	if v, ok := intOption(opts, discord.OptSeed); ok {
		seed = &v
	}

	size := models.SizeFor(sizeID)
	limited := models.ApplyLimitMode(size.Width, size.Height, sizeID, manager.settings.LimitMode())

	span := sentryhelper.StartSpan(ctx, "prompt.build")
	built := prompt.Build(prompt.Options{
		ScenePrompt:  scene,
		UserNegative: stringOption(opts, discord.OptNegative, ""),
		Preset:       p,
		Model:        model,
	})
	span.Finish()

	card := discord.DrawRequest{
		UserID:         user.ID,
		Positive:       built.Positive,
		Negative:       built.Negative,
		PresetDisplay:  presetDisplay,
		Model:          model,
		ModelName:      models.DisplayName(model),
		Width:          limited.Width,
		Height:         limited.Height,
		Steps:          steps,
		Scale:          scale,
		Sampler:        sampler,
		Seed:           seed,
		Limited:        limited.Limited,
		OriginalWidth:  limited.OriginalWidth,
		OriginalHeight: limited.OriginalHeight,
	}

	log.WithFields(log.Fields{
		"module":  "handlers",
		"user_id": user.ID,
		"model":   model,
		"preset":  built.PresetName,
		"width":   limited.Width,
		"height":  limited.Height,
		"limited": limited.Limited,
	}).Info("Built draw request")

	if manager.generator == nil || manager.responder == nil {
		return message(manager.hints.ShowIfApplicable(i.GuildID), discord.BuildDrawPreviewEmbed(card))
	}

	job := drawJob{
		interaction: i.Interaction,
		userID:      user.ID,
		card:        card,
		startedAt:   time.Now(),
		request: GenerateRequest{
			Prompt:         built.Positive,
			NegativePrompt: built.Negative,
			Model:          model,
			Width:          limited.Width,
			Height:         limited.Height,
			Steps:          steps,
			Scale:          scale,
			Sampler:        sampler,
			SMEA:           defaults.SMEA,
			SMEADyn:        defaults.SMEADyn,
			Seed:           seed,
		},
	}

	manager.pending.Add(1)
	go manager.runDraw(sentryhelper.DetachFromTransaction(ctx), job)

	return message("", discord.BuildDrawPendingEmbed(card))
}

// runDraw generates the image and replaces the pending card with the result.
func (manager *Manager) runDraw(ctx context.Context, job drawJob) {
	defer manager.pending.Done()

	ctx, tx := sentryhelper.StartLinkedTransaction(ctx, "draw.generate", "nai.generate", discord.CommandDraw, job.userID)
	defer tx.Finish()

	ctx, cancel := context.WithTimeout(ctx, GenerateTimeout)
	defer cancel()

	logger := log.WithFields(log.Fields{
		"module":  "handlers",
		"user_id": job.userID,
		"model":   job.request.Model,
	})

	span := sentryhelper.StartSpan(ctx, "nai.request")
	result, err := manager.generator.Generate(span.Context(), job.request)
	span.Finish()
	if err != nil {
		logger.WithField("success", false).WithError(err).Error("Generation failed")
		sentryhelper.CaptureException(ctx, fmt.Errorf("failed to generate image: %w", err))
		manager.editResponse(ctx, job.interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{discord.BuildErrorEmbed("Generation failed", err.Error())},
		})
		return
	}

	count := manager.usage.AddImage(job.userID)
	logger.WithFields(log.Fields{
		"seed":    result.Seed,
		"success": true,
	}).Info("Generation finished")

	embed := discord.BuildDrawDoneEmbed(job.card, result.Seed, time.Since(job.startedAt))
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Images generated by you: %d", count)}
	manager.editResponse(ctx, job.interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
		Files: []*discordgo.File{{
			Name:        fmt.Sprintf("draw_%d.png", result.Seed),
			ContentType: "image/png",
			Reader:      bytes.NewReader(result.Image),
		}},
	})
}

func (manager *Manager) editResponse(ctx context.Context, interaction *discordgo.Interaction, edit *discordgo.WebhookEdit) {
	if _, err := manager.responder.InteractionResponseEdit(interaction, edit); err != nil {
		log.WithFields(log.Fields{
			"module":         "handlers",
			"interaction_id": interaction.ID,
			"error":          err,
		}).Error("Failed to edit interaction response")
		sentryhelper.CaptureException(ctx, fmt.Errorf("failed to edit interaction response: %w", err))
	}
}

// handleAutocomplete answers the /draw preset option. Other focused options
// get no choices.
func (manager *Manager) handleAutocomplete(i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
	data := i.ApplicationCommandData()
	choices := []*discordgo.ApplicationCommandOptionChoice{}

	var focused *discordgo.ApplicationCommandInteractionDataOption
	for _, opt := range data.Options {
		if opt.Focused {
			focused = opt
			break
		}
	}

	if data.Name == discord.CommandDraw && focused != nil && focused.Name == discord.OptPreset {
		query, _ := focused.Value.(string)
		items, err := manager.presets.Search(query, preset.DefaultLimit)
		if err != nil {
			log.WithFields(log.Fields{
				"module": "handlers",
				"query":  query,
				"error":  err,
			}).Error("Failed to search presets")
		}
		for _, item := range items {
			if len(choices) == preset.DefaultLimit {
				break
			}
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  discord.Truncate(fmt.Sprintf("%s (%s)", item.Name, item.ID), discord.MaxChoiceName),
				Value: item.ID,
			})
		}
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}
}
