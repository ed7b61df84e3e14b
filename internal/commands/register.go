// Package commands registers every slash and prefix command of the bot.
// Commands live in subdirectories by kind and category (slash/utility, prefix/utility, ...);
// each category exposes a Register function that is listed here.
package commands

import (
	"github.com/PancyStudios/PancyCompanionGo/internal/commands/prefix/utility"
	"github.com/PancyStudios/PancyCompanionGo/internal/commands/slash/moderation"
	"github.com/PancyStudios/PancyCompanionGo/internal/commands/slash/settings"
	slashutility "github.com/PancyStudios/PancyCompanionGo/internal/commands/slash/utility"
	"github.com/PancyStudios/PancyCompanionGo/internal/commands/slash/voice"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
)

// Deps are the stores and settings the commands need
type Deps struct {
	Blacklist moderation.BlacklistStore
	Greetings settings.GreetingStore
	Stays     voice.StayStore
	// Voice defaults to the client's session
	Voice  voice.ConnectorFunc
	Prefix string
	Footer string
}

// Counts reports how many commands of each kind were registered
type Counts struct {
	Slash  int
	Prefix int
}

// RegisterAll populates both command tables of the client
func RegisterAll(client *discord.ExtendedClient, deps Deps) Counts {
	h := client.CommandHandler

	var c Counts

	// Slash commands
	c.Slash += slashutility.Register(h, deps.Prefix, deps.Footer)
	c.Slash += settings.Register(h, deps.Greetings, deps.Footer)
	c.Slash += voice.Register(h, deps.Stays, deps.Voice, deps.Footer)
	c.Slash += moderation.Register(h, deps.Blacklist, deps.Footer)

	// Prefix commands
	c.Prefix += utility.Register(h, deps.Footer)

	return c
}
