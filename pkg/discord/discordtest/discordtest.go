// Package discordtest provides a recording session and event builders for command tests.
package discordtest

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Session records every outgoing call made through the discord.Session interface
type Session struct {
	mu sync.Mutex

	Responses       []*discordgo.InteractionResponse
	ResponseDeletes int
	Edits           []*discordgo.WebhookEdit
	Followups       []*discordgo.WebhookParams
	Sends           []*discordgo.MessageSend
	SendChannels    []string
	Deletes         []string

	RespondErr error
	SendErr    error
}

func (s *Session) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RespondErr != nil {
		return s.RespondErr
	}
	s.Responses = append(s.Responses, resp)
	return nil
}

func (s *Session) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Edits = append(s.Edits, edit)
	return &discordgo.Message{ID: "original"}, nil
}

func (s *Session) InteractionResponseDelete(_ *discordgo.Interaction, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ResponseDeletes++
	return nil
}

func (s *Session) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Followups = append(s.Followups, data)
	return &discordgo.Message{ID: fmt.Sprintf("followup-%d", len(s.Followups))}, nil
}

func (s *Session) FollowupMessageDelete(_ *discordgo.Interaction, _ string, _ ...discordgo.RequestOption) error {
	return nil
}

func (s *Session) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendErr != nil {
		return nil, s.SendErr
	}
	s.Sends = append(s.Sends, data)
	s.SendChannels = append(s.SendChannels, channelID)
	return &discordgo.Message{ID: fmt.Sprintf("sent-%d", len(s.Sends)), ChannelID: channelID}, nil
}

func (s *Session) ChannelMessageDelete(_ string, messageID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes = append(s.Deletes, messageID)
	return nil
}

// ChannelMessageSendEmbed lets Session stand in for greeting senders
func (s *Session) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}, options...)
}

// LastResponse returns the data of the most recent interaction response, or nil
func (s *Session) LastResponse() *discordgo.InteractionResponseData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Responses) == 0 {
		return nil
	}
	return s.Responses[len(s.Responses)-1].Data
}

// LastSend returns the most recent channel message, or nil
func (s *Session) LastSend() *discordgo.MessageSend {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sends) == 0 {
		return nil
	}
	return s.Sends[len(s.Sends)-1]
}

// Interaction builds an application command interaction sent by a guild member
func Interaction(name, guildID, userID string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "i-" + name,
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: guildID,
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID, Username: "user-" + userID}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:     name,
			Options:  options,
			Resolved: &discordgo.ApplicationCommandInteractionDataResolved{},
		},
	}}
}

// Resolve adds users and channels to the interaction's resolved data
func Resolve(i *discordgo.InteractionCreate, users []*discordgo.User, channels []*discordgo.Channel) {
	data := i.Data.(discordgo.ApplicationCommandInteractionData)
	if data.Resolved.Users == nil {
		data.Resolved.Users = make(map[string]*discordgo.User)
	}
	if data.Resolved.Channels == nil {
		data.Resolved.Channels = make(map[string]*discordgo.Channel)
	}
	for _, u := range users {
		data.Resolved.Users[u.ID] = u
	}
	for _, c := range channels {
		data.Resolved.Channels[c.ID] = c
	}
	i.Data = data
}

// Subcommand wraps options in a subcommand option
func Subcommand(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:    name,
		Type:    discordgo.ApplicationCommandOptionSubCommand,
		Options: options,
	}
}

// String builds a string option
func String(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

// User builds a user option holding the user id
func User(name, userID string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionUser, Value: userID}
}

// Channel builds a channel option holding the channel id
func Channel(name, channelID string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionChannel, Value: channelID}
}

// Message builds a guild message
func Message(content, guildID, userID string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: userID, Username: "user-" + userID},
	}}
}
