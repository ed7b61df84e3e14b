package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// PrefixCommand represents a text command recognized by the configured prefix
type PrefixCommand struct {
	Name        string
	Description string
	Category    string
	Usage       string
	Run         PrefixRunFunc
	Setup       SetupFunc
}

// PrefixRunFunc is the function type for prefix command execution
type PrefixRunFunc func(ctx *MessageContext) error

// NewPrefixCommand creates a new PrefixCommand with required fields
func NewPrefixCommand(name, description, category string, run PrefixRunFunc) *PrefixCommand {
	return &PrefixCommand{
		Name:        name,
		Description: description,
		Category:    category,
		Run:         run,
	}
}

// WithUsage sets the argument help shown by the help command
func (c *PrefixCommand) WithUsage(usage string) *PrefixCommand {
	c.Usage = usage
	return c
}

// WithSetup sets the one-time setup hook
func (c *PrefixCommand) WithSetup(fn SetupFunc) *PrefixCommand {
	c.Setup = fn
	return c
}

// MessageContext provides context for prefix command execution
type MessageContext struct {
	Session Session
	Message *discordgo.MessageCreate
	Client  *ExtendedClient
	Name    string
	Args    []string
	Prefix  string
}

// Reply answers the triggering message
func (ctx *MessageContext) Reply(content string) error {
	_, err := ctx.Session.ChannelMessageSendComplex(ctx.Message.ChannelID, &discordgo.MessageSend{
		Content:   content,
		Reference: ctx.Message.Reference(),
	})
	return err
}

// ReplyEmbed answers the triggering message with an embed
func (ctx *MessageContext) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	_, err := ctx.Session.ChannelMessageSendComplex(ctx.Message.ChannelID, &discordgo.MessageSend{
		Embeds:    []*discordgo.MessageEmbed{embed},
		Reference: ctx.Message.Reference(),
	})
	return err
}

// Author returns the user who sent the message
func (ctx *MessageContext) Author() *discordgo.User {
	return ctx.Message.Author
}

// ParsePrefix splits "<prefix>name arg1 arg2" into a lower-cased name and its arguments.
// ok is false when content does not start with prefix or names no command.
func ParsePrefix(content, prefix string) (name string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}

	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return "", nil, false
	}

	return strings.ToLower(fields[0]), fields[1:], true
}

func normalizePrefixName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
