// Package api exposes the prompt conversion services over HTTP and, when a
// public key is configured, the Discord interactions endpoint.
package api

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"nullscape/models"
	"nullscape/pages"
	"nullscape/preset"
	"nullscape/prompt"
	appsentry "nullscape/sentry"
	"nullscape/syntax"
)

// InteractionHandler answers a Discord interaction with its initial response.
type InteractionHandler interface {
	HandleInteraction(ctx context.Context, i *discordgo.InteractionCreate) *discordgo.InteractionResponse
}

// PresetGetter looks up presets for /v1/build.
type PresetGetter interface {
	Get(id string) (*preset.Preset, error)
}

type Options struct {
	Presets       PresetGetter
	RatePerSecond int
	// Interactions and PublicKey enable POST /discord/interactions. PublicKey
	// is the hex encoded application key.
	Interactions InteractionHandler
	PublicKey    string
	// Sentry adds the sentry-gin middleware.
	Sentry bool
}

type convertRequest struct {
	Text  string `json:"text" binding:"required"`
	Model string `json:"model"`
}

type convertResponse struct {
	Unified   string `json:"unified"`
	Converted string `json:"converted"`
	Family    string `json:"family"`
}

type normalizeRequest struct {
	Text string `json:"text"`
}

type normalizeResponse struct {
	Normalized string `json:"normalized"`
}

type buildRequest struct {
	ScenePrompt  string `json:"scene_prompt"`
	UserNegative string `json:"user_negative"`
	PresetID     string `json:"preset_id"`
	Model        string `json:"model"`
}

type buildResponse struct {
	Positive    string `json:"positive"`
	Negative    string `json:"negative"`
	PresetName  string `json:"preset_name"`
	PresetFound bool   `json:"preset_found"`
	Model       string `json:"model"`
	Family      string `json:"family"`
}

// resolveModel applies the default model and rejects ids outside the catalog.
func resolveModel(model string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return string(models.DefaultModel), nil
	}
	if !models.Known(model) {
		return "", fmt.Errorf("unknown model: %s", model)
	}
	return model, nil
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) (*gin.Engine, error) {
	router := gin.New()
	router.Use(RequestID(), AccessLog(), gin.Recovery())
	if opts.Sentry {
		router.Use(appsentry.GetSentryGin())
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/privacy", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(pages.PrivacyPolicy()))
	})
	router.GET("/terms", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(pages.TermsOfService()))
	})

	v1 := router.Group("/v1", Throttle(opts.RatePerSecond))
	v1.POST("/convert", handleConvert)
	v1.POST("/normalize", handleNormalize)
	v1.POST("/build", buildHandler(opts.Presets))

	if opts.Interactions != nil && opts.PublicKey != "" {
		key, err := hex.DecodeString(opts.PublicKey)
		if err != nil || len(key) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("failed to decode discord public key: invalid hex ed25519 key")
		}
		router.POST("/discord/interactions", interactionsHandler(opts.Interactions, ed25519.PublicKey(key)))
	}

	return router, nil
}

func handleConvert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	model, err := resolveModel(req.Model)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, convertResponse{
		Unified:   syntax.ToUnified(req.Text),
		Converted: prompt.ConvertUser(req.Text, model),
		Family:    models.FamilyOf(model).String(),
	})
}

func handleNormalize(c *gin.Context) {
	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, normalizeResponse{Normalized: preset.Normalize(req.Text)})
}

func buildHandler(presets PresetGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req buildRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		model, err := resolveModel(req.Model)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var p *preset.Preset
		if id := strings.TrimSpace(req.PresetID); id != "" && presets != nil {
			found, err := presets.Get(id)
			if err != nil {
				log.WithFields(log.Fields{
					"module":    "api",
					"preset_id": id,
					"error":     err,
				}).Error("Failed to load preset")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preset"})
				return
			}
			p = found
		}

		built := prompt.Build(prompt.Options{
			ScenePrompt:  req.ScenePrompt,
			UserNegative: req.UserNegative,
			Preset:       p,
			Model:        model,
		})
		c.JSON(http.StatusOK, buildResponse{
			Positive:    built.Positive,
			Negative:    built.Negative,
			PresetName:  built.PresetName,
			PresetFound: p != nil,
			Model:       model,
			Family:      models.FamilyOf(model).String(),
		})
	}
}

// interactionsHandler verifies the request signature, then answers with the
// handler's initial response.
func interactionsHandler(handler InteractionHandler, key ed25519.PublicKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !discordgo.VerifyInteraction(c.Request, key) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid request signature"})
			return
		}

		var interaction discordgo.Interaction
		if err := json.NewDecoder(c.Request.Body).Decode(&interaction); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse interaction"})
			return
		}

		response := handler.HandleInteraction(c.Request.Context(), &discordgo.InteractionCreate{Interaction: &interaction})
		c.JSON(http.StatusOK, response)
	}
}
