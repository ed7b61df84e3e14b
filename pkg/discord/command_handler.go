// Package discord provides the command handler for loading and publishing commands.
package discord

import (
	"fmt"

	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// CommandHandler manages command registration and publishing
type CommandHandler struct {
	client *ExtendedClient
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client: client,
	}
}

func (ch *CommandHandler) runSetup(kind, name string, setup SetupFunc) bool {
	if setup == nil {
		return true
	}
	if err := setup(ch.client); err != nil {
		logger.Error(fmt.Sprintf("Setup del comando %s %q falló, no se registra: %v", kind, name, err), "CommandHandler")
		return false
	}
	return true
}

// RegisterCommand validates and adds a slash command. A command without name or Run is skipped with a warning.
// Registering a name twice keeps the last command.
func (ch *CommandHandler) RegisterCommand(cmd *Command) bool {
	switch {
	case cmd == nil:
		logger.Warn("Se ignoró un comando slash nulo", "CommandHandler")
		return false
	case cmd.Name == "":
		logger.Warn(fmt.Sprintf("Comando slash sin nombre en la categoría %q: falta la definición", cmd.Category), "CommandHandler")
		return false
	case cmd.Run == nil:
		logger.Warn(fmt.Sprintf("Comando slash %q sin función Run", cmd.Name), "CommandHandler")
		return false
	}

	if !ch.runSetup("slash", cmd.Name, cmd.Setup) {
		return false
	}

	if replaced := ch.client.Commands.Set(cmd.Name, cmd); replaced {
		logger.Warn(fmt.Sprintf("Comando slash duplicado %q: se usa la última definición", cmd.Name), "CommandHandler")
	}

	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
	return true
}

// RegisterCommands registers every command and returns how many were accepted
func (ch *CommandHandler) RegisterCommands(cmds ...*Command) int {
	return lo.CountBy(cmds, ch.RegisterCommand)
}

// RegisterPrefixCommand validates and adds a prefix command under its lower-cased name
func (ch *CommandHandler) RegisterPrefixCommand(cmd *PrefixCommand) bool {
	switch {
	case cmd == nil:
		logger.Warn("Se ignoró un comando de prefijo nulo", "CommandHandler")
		return false
	case cmd.Name == "":
		logger.Warn(fmt.Sprintf("Comando de prefijo sin nombre en la categoría %q", cmd.Category), "CommandHandler")
		return false
	case cmd.Run == nil:
		logger.Warn(fmt.Sprintf("Comando de prefijo %q sin función Run", cmd.Name), "CommandHandler")
		return false
	}

	if !ch.runSetup("de prefijo", cmd.Name, cmd.Setup) {
		return false
	}

	name := normalizePrefixName(cmd.Name)
	if replaced := ch.client.PrefixCommands.Set(name, cmd); replaced {
		logger.Warn(fmt.Sprintf("Comando de prefijo duplicado %q: se usa la última definición", name), "CommandHandler")
	}

	logger.Debug("Comando de prefijo registrado: "+name, "CommandHandler")
	return true
}

// RegisterPrefixCommands registers every command and returns how many were accepted
func (ch *CommandHandler) RegisterPrefixCommands(cmds ...*PrefixCommand) int {
	return lo.CountBy(cmds, ch.RegisterPrefixCommand)
}

// ApplicationCommands returns the definitions of every registered slash command, ordered by name
func (ch *CommandHandler) ApplicationCommands() []*discordgo.ApplicationCommand {
	return lo.Map(ch.client.Commands.Sorted(), func(cmd *Command, _ int) *discordgo.ApplicationCommand {
		return cmd.ToApplicationCommand()
	})
}

func scopeName(guildID string) string {
	if guildID == "" {
		return "global"
	}
	return "guild " + guildID
}

// PublishCommands replaces the remote command set with the registered one in a single call.
// An empty guildID publishes globally.
func (ch *CommandHandler) PublishCommands(pub CommandPublisher, appID, guildID string) (int, error) {
	cmds := ch.ApplicationCommands()

	logger.Info(fmt.Sprintf("🔄 Started refreshing %d application (/) commands (%s).", len(cmds), scopeName(guildID)), "CommandHandler")

	created, err := pub.ApplicationCommandBulkOverwrite(appID, guildID, cmds)
	if err != nil {
		return 0, errors.Wrapf(err, "bulk overwrite %s commands", scopeName(guildID))
	}

	logger.Success(fmt.Sprintf("✅ Successfully reloaded %d application (/) commands.", len(created)), "CommandHandler")
	return len(created), nil
}

// RemoteCommands lists the commands currently published
func (ch *CommandHandler) RemoteCommands(pub CommandPublisher, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	cmds, err := pub.ApplicationCommands(appID, guildID)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s commands", scopeName(guildID))
	}
	return cmds, nil
}

// UnregisterCommands removes every published command and returns how many were deleted
func (ch *CommandHandler) UnregisterCommands(pub CommandPublisher, appID, guildID string) (int, error) {
	cmds, err := ch.RemoteCommands(pub, appID, guildID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, cmd := range cmds {
		if err := pub.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			logger.Error("Error eliminando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
			continue
		}
		deleted++
	}

	logger.Success(fmt.Sprintf("%d comandos eliminados (%s).", deleted, scopeName(guildID)), "CommandHandler")
	return deleted, nil
}
