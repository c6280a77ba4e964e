package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"nullscape/api"
	"nullscape/database"
	"nullscape/discord"
	"nullscape/handlers"
	"nullscape/models"
	"nullscape/preset"
	"nullscape/prompt"
	"nullscape/ratelimit"
	appsentry "nullscape/sentry"
	"nullscape/settings"
	"nullscape/syntax"
)

const shutdownTimeout = 10 * time.Second

var (
	registerGuild      string
	registerGlobal     bool
	convertModel       string
	convertShowUnified bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Discord gateway and the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Overwrite the application commands with the current definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := discord.NewSession(cfg.Discord.BotToken)
		if err != nil {
			return err
		}
		guildID := cfg.Discord.GuildID
		if registerGuild != "" {
			guildID = registerGuild
		}
		if registerGlobal {
			guildID = ""
		}
		created, err := discord.RegisterCommands(session, cfg.Discord.AppID, guildID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %d commands\n", len(created))
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [text...]",
	Short: "Convert prompt text for a model and print it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := convertModel
		if model == "" {
			model = string(models.DefaultModel)
		}
		text := strings.Join(args, " ")
		out := cmd.OutOrStdout()
		if convertShowUnified {
			fmt.Fprintln(out, syntax.ToUnified(text))
		}
		fmt.Fprintln(out, prompt.ConvertUser(text, model))
		return nil
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := appsentry.Init(cfg.Sentry.DSN, cfg.Sentry.Release); err != nil {
		log.WithError(err).Warn("Sentry disabled")
	}
	defer appsentry.Flush()

	db, err := database.New(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := settings.NewProvider(db, settings.Defaults{
		RateLimitPerMin: cfg.Limits.RateLimitPerMin,
		LimitMode:       cfg.Limits.LimitMode,
	})
	if err != nil {
		return err
	}
	presets := preset.NewService(db)

	var session *discordgo.Session
	if cfg.Discord.BotToken != "" {
		session, err = discord.NewSession(cfg.Discord.BotToken)
		if err != nil {
			return err
		}
	} else {
		log.WithField("module", "main").Warn("DISCORD_BOT_TOKEN is not set, running the HTTP API only")
	}

	managerOpts := handlers.Options{
		Settings: provider,
		Presets:  presets,
		Limiter:  ratelimit.New(provider.RateLimitPerMin),
		AdminIDs: cfg.Discord.AdminUserIDs,
	}
	if session != nil {
		managerOpts.Responder = session
	}
	manager := handlers.NewManager(managerOpts)

	apiOpts := api.Options{
		Presets:       presets,
		RatePerSecond: cfg.Limits.APIRatePerSec,
		Sentry:        cfg.Sentry.DSN != "",
	}
	if cfg.Discord.HasInteractionsEndpoint() {
		apiOpts.Interactions = manager
		apiOpts.PublicKey = cfg.Discord.PublicKey
		log.WithField("module", "main").Info("HTTP interactions endpoint enabled at /discord/interactions")
	} else if session == nil {
		log.WithField("module", "main").Warn("No gateway session and no DISCORD_PUBLIC_KEY, interactions will not be received")
	}
	router, err := api.NewRouter(apiOpts)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              ":" + cfg.Options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if session != nil {
		session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
			log.WithFields(log.Fields{
				"module":   "main",
				"username": r.User.Username,
				"guilds":   len(r.Guilds),
			}).Info("Discord gateway ready")
		})
		session.AddHandler(manager.OnInteractionCreate)

		g.Go(func() error {
			if err := session.Open(); err != nil {
				return fmt.Errorf("failed to open discord session: %w", err)
			}
			<-gctx.Done()
			return session.Close()
		})
	}

	g.Go(func() error {
		log.WithFields(log.Fields{"module": "main", "addr": server.Addr}).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	manager.Wait()
	if err != nil {
		appsentry.ReportError(err)
	}
	log.WithField("module", "main").Info("Shut down")
	return err
}
