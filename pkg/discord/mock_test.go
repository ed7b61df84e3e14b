package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	boterrors "github.com/PancyStudios/PancyCompanionGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

// mockSession records every outgoing call
type mockSession struct {
	mu              sync.Mutex
	responses       []*discordgo.InteractionResponse
	responseDeletes int
	edits           []*discordgo.WebhookEdit
	followups       []*discordgo.WebhookParams
	followupDeletes []string
	sends           []*discordgo.MessageSend
	deletes         []string
	respondErr      error
}

func (m *mockSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.respondErr != nil {
		return m.respondErr
	}
	m.responses = append(m.responses, resp)
	return nil
}

func (m *mockSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, edit)
	return &discordgo.Message{ID: "original"}, nil
}

func (m *mockSession) InteractionResponseDelete(_ *discordgo.Interaction, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responseDeletes++
	return nil
}

func (m *mockSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followups = append(m.followups, data)
	return &discordgo.Message{ID: fmt.Sprintf("followup-%d", len(m.followups))}, nil
}

func (m *mockSession) FollowupMessageDelete(_ *discordgo.Interaction, messageID string, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followupDeletes = append(m.followupDeletes, messageID)
	return nil
}

func (m *mockSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, data)
	return &discordgo.Message{ID: fmt.Sprintf("sent-%d", len(m.sends)), ChannelID: channelID}, nil
}

func (m *mockSession) ChannelMessageDelete(_ string, messageID string, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, messageID)
	return nil
}

// fakeBlacklist lists "guild/user" keys
type fakeBlacklist struct {
	listed map[string]bool
	err    error
	calls  int
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, guildID, userID string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.listed[guildID+"/"+userID], nil
}

// fakeReporter records reports instead of posting them
type fakeReporter struct {
	mu     sync.Mutex
	titles []string
	errs   []error
}

func (f *fakeReporter) ReportError(title string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	f.errs = append(f.errs, err)
}

// fakePublisher stands in for the REST endpoints of application commands
type fakePublisher struct {
	overwrites [][]*discordgo.ApplicationCommand
	guildIDs   []string
	remote     []*discordgo.ApplicationCommand
	deleted    []string
	err        error
}

func (f *fakePublisher) ApplicationCommandBulkOverwrite(_ string, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.overwrites = append(f.overwrites, commands)
	f.guildIDs = append(f.guildIDs, guildID)
	return commands, nil
}

func (f *fakePublisher) ApplicationCommands(_, _ string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	return f.remote, f.err
}

func (f *fakePublisher) ApplicationCommandDelete(_, _, cmdID string, _ ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, cmdID)
	return nil
}

// newTestDispatcher runs scheduled deletions immediately and records their delays
func newTestDispatcher(blacklist BlacklistChecker, reporter boterrors.Reporter) (*Dispatcher, *[]time.Duration) {
	client := NewClientFromSession(nil)
	d := NewDispatcher(client, blacklist, reporter, "!", "Pancy Companion")
	delays := &[]time.Duration{}
	d.after = func(delay time.Duration, fn func()) {
		*delays = append(*delays, delay)
		fn()
	}
	return d, delays
}

func slashInteraction(name, guildID, userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "i-" + name,
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: guildID,
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data:    discordgo.ApplicationCommandInteractionData{Name: name},
	}}
}

func prefixMessage(content, guildID, userID string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: userID},
	}}
}
