package web

import (
	"time"

	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/samber/lo"
)

// DatabaseStatuser is satisfied by *database.Database
type DatabaseStatuser interface {
	GetStatus() (string, bool)
}

// ClientSource serves the API from the running bot
type ClientSource struct {
	Client *discord.ExtendedClient
	DB     DatabaseStatuser
}

// Bot implements StatusSource
func (s ClientSource) Bot() (BotInfo, bool) {
	if s.Client == nil || !s.Client.IsReady() {
		return BotInfo{}, false
	}

	info := BotInfo{
		Guilds:  s.Client.GuildCount(),
		IsReady: true,
		Uptime:  s.Client.Uptime().Round(time.Second).String(),
	}
	if user := s.Client.Session.State.User; user != nil {
		info.ID = user.ID
		info.Username = user.Username
		info.Discriminator = user.Discriminator
		info.Avatar = user.Avatar
	}
	return info, true
}

// Database implements StatusSource
func (s ClientSource) Database() (string, bool) {
	if s.DB == nil {
		return "🔴 | Desconectado", false
	}
	return s.DB.GetStatus()
}

// Commands implements StatusSource
func (s ClientSource) Commands() []CommandInfo {
	if s.Client == nil {
		return nil
	}

	slash := lo.Map(s.Client.Commands.Sorted(), func(cmd *discord.Command, _ int) CommandInfo {
		return CommandInfo{Name: cmd.Name, Description: cmd.Description, Category: cmd.Category, Kind: string(discord.KindSlash)}
	})
	prefix := lo.Map(s.Client.PrefixCommands.Sorted(), func(cmd *discord.PrefixCommand, _ int) CommandInfo {
		return CommandInfo{Name: cmd.Name, Description: cmd.Description, Category: cmd.Category, Kind: string(discord.KindPrefix)}
	})
	return append(slash, prefix...)
}
