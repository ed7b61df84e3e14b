package discord

import (
	"context"
	"fmt"
	"time"

	boterrors "github.com/PancyStudios/PancyCompanionGo/pkg/errors"
	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// DefaultNoticeDelay is how long denial and failure notices stay visible
const DefaultNoticeDelay = 10 * time.Second

// BlacklistChecker reports whether a user is blocked in a guild
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, guildID, userID string) (bool, error)
}

// CommandKind tells slash and prefix executions apart
type CommandKind string

const (
	KindSlash  CommandKind = "slash"
	KindPrefix CommandKind = "prefix"
)

// CommandEvent describes one command execution
type CommandEvent struct {
	Kind     CommandKind
	Name     string
	GuildID  string
	UserID   string
	Duration time.Duration
	Err      error
}

// Dispatcher routes interactions and prefixed messages to registered commands.
// Blacklisted users get a self-deleting notice and never reach a command.
// A failing command produces one self-deleting failure notice and one error report.
type Dispatcher struct {
	Client      *ExtendedClient
	Blacklist   BlacklistChecker
	Reporter    boterrors.Reporter
	Prefix      string
	Footer      string
	NoticeDelay time.Duration
	// OnCommand, when set, is called after every execution
	OnCommand func(CommandEvent)

	after func(time.Duration, func())
}

// NewDispatcher creates a Dispatcher with the default notice delay
func NewDispatcher(client *ExtendedClient, blacklist BlacklistChecker, reporter boterrors.Reporter, prefix, footer string) *Dispatcher {
	return &Dispatcher{
		Client:      client,
		Blacklist:   blacklist,
		Reporter:    reporter,
		Prefix:      prefix,
		Footer:      footer,
		NoticeDelay: DefaultNoticeDelay,
	}
}

func (d *Dispatcher) schedule(fn func()) {
	delay := d.NoticeDelay
	if delay <= 0 {
		delay = DefaultNoticeDelay
	}
	if d.after != nil {
		d.after(delay, fn)
		return
	}
	time.AfterFunc(delay, fn)
}

// blocked fails open: a lookup error is logged and the user is let through
func (d *Dispatcher) blocked(guildID string, user *discordgo.User) bool {
	if d.Blacklist == nil || guildID == "" || user == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listed, err := d.Blacklist.IsBlacklisted(ctx, guildID, user.ID)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo consultar la blacklist para %s en %s: %v", user.ID, guildID, err), "Dispatcher")
		return false
	}
	return listed
}

func (d *Dispatcher) report(title string, err error) {
	if d.Reporter == nil {
		logger.Error(fmt.Sprintf("%s: %+v", title, err), "Dispatcher")
		return
	}
	d.Reporter.ReportError(title, err)
}

func (d *Dispatcher) emit(event CommandEvent) {
	if d.OnCommand != nil {
		d.OnCommand(event)
	}
}

// HandleInteraction handles application command interactions
func (d *Dispatcher) HandleInteraction(s Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	user := interactionUser(i)

	if d.blocked(i.GuildID, user) {
		logger.Warn(fmt.Sprintf("Usuario en blacklist intentó usar /%s: %s", name, user.ID), "Dispatcher")
		d.respondNotice(s, i.Interaction, BlacklistedNotice)
		return
	}

	cmd, ok := d.Client.Commands.Get(name)
	if !ok {
		return
	}

	ctx := &CommandContext{
		Session:     s,
		Interaction: i,
		Client:      d.Client,
	}

	start := time.Now()
	err := boterrors.Capture(func() error { return cmd.Run(ctx) })

	event := CommandEvent{Kind: KindSlash, Name: name, GuildID: i.GuildID, Duration: time.Since(start), Err: err}
	if user != nil {
		event.UserID = user.ID
	}
	d.emit(event)

	if err == nil {
		return
	}

	// the user is answered before the report
	if ctx.Responded() {
		d.followupNotice(s, i.Interaction, FailureNotice)
	} else {
		d.respondNotice(s, i.Interaction, FailureNotice)
	}
	d.report("Error in command "+name, err)
}

// respondNotice answers the interaction with an ephemeral notice and deletes it later
func (d *Dispatcher) respondNotice(s Session, i *discordgo.Interaction, text string) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{NoticeEmbed(text, d.Footer)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logger.Warn("No se pudo enviar el aviso: "+err.Error(), "Dispatcher")
		return
	}

	d.schedule(func() {
		if err := s.InteractionResponseDelete(i); err != nil {
			logger.Debug("No se pudo borrar el aviso: "+err.Error(), "Dispatcher")
		}
	})
}

// followupNotice is used when the command already answered the interaction
func (d *Dispatcher) followupNotice(s Session, i *discordgo.Interaction, text string) {
	msg, err := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{NoticeEmbed(text, d.Footer)},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		logger.Warn("No se pudo enviar el aviso: "+err.Error(), "Dispatcher")
		return
	}

	d.schedule(func() {
		if err := s.FollowupMessageDelete(i, msg.ID); err != nil {
			logger.Debug("No se pudo borrar el aviso: "+err.Error(), "Dispatcher")
		}
	})
}

// HandleMessage handles prefixed text commands. Bots and messages without the prefix are ignored.
func (d *Dispatcher) HandleMessage(s Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	name, args, ok := ParsePrefix(m.Content, d.Prefix)
	if !ok {
		return
	}

	if d.blocked(m.GuildID, m.Author) {
		logger.Warn(fmt.Sprintf("Usuario en blacklist intentó usar %s%s: %s", d.Prefix, name, m.Author.ID), "Dispatcher")
		d.replyNotice(s, m, BlacklistedNotice)
		return
	}

	cmd, ok := d.Client.PrefixCommands.Get(name)
	if !ok {
		return
	}

	ctx := &MessageContext{
		Session: s,
		Message: m,
		Client:  d.Client,
		Name:    name,
		Args:    args,
		Prefix:  d.Prefix,
	}

	start := time.Now()
	err := boterrors.Capture(func() error { return cmd.Run(ctx) })

	d.emit(CommandEvent{
		Kind:     KindPrefix,
		Name:     name,
		GuildID:  m.GuildID,
		UserID:   m.Author.ID,
		Duration: time.Since(start),
		Err:      err,
	})

	if err == nil {
		return
	}

	d.replyNotice(s, m, FailureNotice)
	d.report("Error in prefix command "+name, err)
}

// replyNotice answers the message with a notice and deletes it later
func (d *Dispatcher) replyNotice(s Session, m *discordgo.MessageCreate, text string) {
	msg, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:    []*discordgo.MessageEmbed{NoticeEmbed(text, d.Footer)},
		Reference: m.Reference(),
	})
	if err != nil {
		logger.Warn("No se pudo enviar el aviso: "+err.Error(), "Dispatcher")
		return
	}

	d.schedule(func() {
		if err := s.ChannelMessageDelete(m.ChannelID, msg.ID); err != nil {
			logger.Debug("No se pudo borrar el aviso: "+err.Error(), "Dispatcher")
		}
	})
}
