package main

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nullscape/config"
)

var (
	envFile string
	cfg     *config.ConfigStruct
)

var rootCmd = &cobra.Command{
	Use:   "nullscape",
	Short: "Discord bot that converts prompt emphasis between NovelAI model notations",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(envFile); err != nil {
			log.Warnf("Error loading %s file: %v", envFile, err)
		}
		cfg = config.Load()
		setupLogging(cfg.Options.LogLevel)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to the env file")
	rootCmd.AddCommand(serveCmd, registerCmd, convertCmd)

	registerCmd.Flags().StringVar(&registerGuild, "guild", "", "guild id to register in, overrides DISCORD_GUILD_ID")
	registerCmd.Flags().BoolVar(&registerGlobal, "global", false, "register global commands even if DISCORD_GUILD_ID is set")
	convertCmd.Flags().StringVarP(&convertModel, "model", "m", "", "target model, defaults to the /draw default")
	convertCmd.Flags().BoolVarP(&convertShowUnified, "unified", "u", false, "also print the unified form")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
