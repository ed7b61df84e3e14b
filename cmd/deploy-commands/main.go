// Package main publishes, lists or removes the bot's slash commands without
// starting the gateway connection.
//
// Usage:
//
//	deploy-commands [sync|list|clean] [--guild <id>]
package main

import (
	"fmt"
	"os"

	"github.com/PancyStudios/PancyCompanionGo/internal/commands"
	"github.com/PancyStudios/PancyCompanionGo/pkg/config"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const logPrefix = "DeployCommands"

var guildID string

var rootCmd = &cobra.Command{
	Use:           "deploy-commands",
	Short:         "Manage the bot's application commands",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSync,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the remote commands with the current definitions",
	RunE:  runSync,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, appID, err := setup()
		if err != nil {
			return err
		}

		cmds, err := client.CommandHandler.RemoteCommands(client.Session, appID, guildID)
		if err != nil {
			return err
		}
		if len(cmds) == 0 {
			logger.Info("No hay comandos registrados", logPrefix)
			return nil
		}

		logger.Info(fmt.Sprintf("Comandos encontrados: %d", len(cmds)), logPrefix)
		for i, c := range cmds {
			logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, c.Name, c.Description, c.ID), logPrefix)
		}
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every registered command",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, appID, err := setup()
		if err != nil {
			return err
		}

		removed, err := client.CommandHandler.UnregisterCommands(client.Session, appID, guildID)
		if err != nil {
			return err
		}
		logger.Success(fmt.Sprintf("🧹 %d comandos eliminados", removed), logPrefix)
		return nil
	},
}

func runSync(cmd *cobra.Command, args []string) error {
	client, appID, err := setup()
	if err != nil {
		return err
	}

	_, err = client.CommandHandler.PublishCommands(client.Session, appID, guildID)
	return err
}

// setup builds a REST-only client with the command table filled in
func setup() (*discord.ExtendedClient, string, error) {
	cfg := config.Get()

	client, err := discord.NewClient(cfg.Token)
	if err != nil {
		return nil, "", errors.Wrap(err, "creating Discord client")
	}

	appID := cfg.ClientID
	if appID == "" {
		me, err := client.Session.User("@me")
		if err != nil {
			return nil, "", errors.Wrap(err, "resolving application id")
		}
		appID = me.ID
	}

	counts := commands.RegisterAll(client, commands.Deps{Prefix: cfg.Prefix, Footer: cfg.Embed.Footer})
	logger.Info(fmt.Sprintf("%d comandos slash definidos", counts.Slash), logPrefix)

	return client, appID, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.LogsWebhook)
	defer log.Close()

	rootCmd.PersistentFlags().StringVar(&guildID, "guild", cfg.GuildID, "Target a specific guild (empty for global)")
	rootCmd.AddCommand(syncCmd, listCmd, cleanCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Critical(fmt.Sprintf("Error: %+v", err), logPrefix)
		log.Close()
		os.Exit(1)
	}
	logger.Success("Operación completada exitosamente", logPrefix)
}
