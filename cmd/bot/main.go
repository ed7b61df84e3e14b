// Package main is the entry point for PancyCompanion.
// It wires every system together and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/internal/commands"
	"github.com/PancyStudios/PancyCompanionGo/internal/events"
	"github.com/PancyStudios/PancyCompanionGo/internal/startup"
	"github.com/PancyStudios/PancyCompanionGo/pkg/config"
	"github.com/PancyStudios/PancyCompanionGo/pkg/database"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	boterrors "github.com/PancyStudios/PancyCompanionGo/pkg/errors"
	"github.com/PancyStudios/PancyCompanionGo/pkg/greeting"
	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/PancyStudios/PancyCompanionGo/pkg/mqtt"
	"github.com/PancyStudios/PancyCompanionGo/pkg/presence"
	"github.com/PancyStudios/PancyCompanionGo/pkg/voice"
	"github.com/PancyStudios/PancyCompanionGo/pkg/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.LogsWebhook)
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando PancyCompanion %s (%s)...", config.Version, cfg.Environment), "Main")

	reporter := boterrors.Init(cfg.ErrorWebhook, cfg.SentryDSN)

	// The startup sequence connects the database after the first ready event
	db := database.Get()
	blacklist := database.NewBlacklistService(db)
	greetings := database.NewGreetingService(db)
	stays := database.NewVoiceStayService(db)

	client, err := discord.Init(cfg.Token)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Status API
	source := web.ClientSource{Client: client, DB: db}
	server, err := web.NewServer(cfg.AllowedHosts, web.DefaultRateLimit)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating web server: %v", err), "Main")
		os.Exit(1)
	}
	web.SetupAPIRoutes(server, source)
	server.StartAsync(cfg.Port)

	// MQTT is optional
	mqttClientID := "companion"
	if !cfg.IsProd() {
		mqttClientID = "companion_canary"
	}
	broker := mqtt.Init(mqtt.Options{
		Host:     cfg.MQTT.Host,
		Port:     cfg.MQTT.Port,
		User:     cfg.MQTT.User,
		Password: cfg.MQTT.Password,
		ClientID: mqttClientID,
	})
	if err := broker.On("status", func(map[string]interface{}) (interface{}, error) {
		return web.BuildStatus(source), nil
	}); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo registrar el handler MQTT de estado: %v", err), "Main")
	}

	rotator := presence.NewRotator(client.Session, client.GuildCount, cfg.Prefix, cfg.Presence.URL)
	rejoiner := voice.NewRejoiner(voice.SessionGateway{Session: client.Session})
	dispatcher := discord.NewDispatcher(client, blacklist, reporter, cfg.Prefix, cfg.Embed.Footer)

	sequencer := &startup.Sequencer{
		Reporter: reporter,
		Steps: startup.BotSteps(startup.Deps{
			Identity: client.UserTag,
			Presence: rotator,
			Database: db,
			MongoURI: cfg.MongoURI,
			DBName:   cfg.DBName,
			Stays:    stays,
			Rejoin:   rejoiner,
			Populate: func() (int, int) {
				counts := commands.RegisterAll(client, commands.Deps{
					Blacklist: blacklist,
					Greetings: greetings,
					Stays:     stays,
					Prefix:    cfg.Prefix,
					Footer:    cfg.Embed.Footer,
				})
				return counts.Slash, counts.Prefix
			},
			Publish: func() (int, error) {
				return client.CommandHandler.PublishCommands(client.Session, applicationID(cfg, client), cfg.GuildID)
			},
		}),
	}

	events.RegisterAll(client, events.Deps{
		Dispatcher: dispatcher,
		Announcer:  greeting.NewAnnouncer(greetings),
		Reporter:   reporter,
		Events:     broker,
		Startup:    sequencer,
		Rejoin:     rejoiner,
	})

	if err := client.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancyCompanion...", "Main")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	rotator.Stop()
	broker.Destroy()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Error deteniendo el servidor web: %v", err), "Main")
	}
	if err := client.Stop(); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
	}
	if err := db.Disconnect(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Error desconectando MongoDB: %v", err), "Main")
	}
}

// applicationID prefers the configured client id and falls back to the logged in user
func applicationID(cfg *config.Config, client *discord.ExtendedClient) string {
	if cfg.ClientID != "" {
		return cfg.ClientID
	}
	if client.Session.State.User != nil {
		return client.Session.State.User.ID
	}
	return ""
}
