// Package discord provides the event handler for managing Discord events.
package discord

import (
	"sync"

	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// EventHandler attaches gateway event handlers to the session
type EventHandler struct {
	client *ExtendedClient
	names  []string
	mu     sync.RWMutex
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{
		client: client,
	}
}

// RegisterEvent adds an event handler to the Discord session
func (eh *EventHandler) RegisterEvent(name string, handler interface{}) {
	if eh.client.Session != nil {
		eh.client.Session.AddHandler(handler)
	}
	eh.mu.Lock()
	eh.names = append(eh.names, name)
	eh.mu.Unlock()
	logger.Debug("Evento '"+name+"' registrado", "EventHandler")
}

// Registered returns the names of the attached events in registration order
func (eh *EventHandler) Registered() []string {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	return append([]string(nil), eh.names...)
}

// Event handler types for the consumed gateway events

// ReadyHandler is called when the bot is ready
type ReadyHandler func(s *discordgo.Session, r *discordgo.Ready)

// MessageCreateHandler is called when a message is created
type MessageCreateHandler func(s *discordgo.Session, m *discordgo.MessageCreate)

// GuildMemberAddHandler is called when a member joins a guild
type GuildMemberAddHandler func(s *discordgo.Session, m *discordgo.GuildMemberAdd)

// GuildMemberRemoveHandler is called when a member leaves a guild
type GuildMemberRemoveHandler func(s *discordgo.Session, m *discordgo.GuildMemberRemove)

// GuildCreateHandler is called when a guild becomes available
type GuildCreateHandler func(s *discordgo.Session, g *discordgo.GuildCreate)

// InteractionCreateHandler is called when an interaction is created
type InteractionCreateHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

// OnReady registers a ready event handler
func (eh *EventHandler) OnReady(handler ReadyHandler) {
	eh.RegisterEvent("Ready", func(s *discordgo.Session, r *discordgo.Ready) { handler(s, r) })
}

// OnMessageCreate registers a message create event handler
func (eh *EventHandler) OnMessageCreate(handler MessageCreateHandler) {
	eh.RegisterEvent("MessageCreate", func(s *discordgo.Session, m *discordgo.MessageCreate) { handler(s, m) })
}

// OnGuildMemberAdd registers a guild member add event handler
func (eh *EventHandler) OnGuildMemberAdd(handler GuildMemberAddHandler) {
	eh.RegisterEvent("GuildMemberAdd", func(s *discordgo.Session, m *discordgo.GuildMemberAdd) { handler(s, m) })
}

// OnGuildMemberRemove registers a guild member remove event handler
func (eh *EventHandler) OnGuildMemberRemove(handler GuildMemberRemoveHandler) {
	eh.RegisterEvent("GuildMemberRemove", func(s *discordgo.Session, m *discordgo.GuildMemberRemove) { handler(s, m) })
}

// OnInteractionCreate registers an interaction create event handler
func (eh *EventHandler) OnInteractionCreate(handler InteractionCreateHandler) {
	eh.RegisterEvent("InteractionCreate", func(s *discordgo.Session, i *discordgo.InteractionCreate) { handler(s, i) })
}

// OnGuildCreate registers a guild create event handler
func (eh *EventHandler) OnGuildCreate(handler GuildCreateHandler) {
	eh.RegisterEvent("GuildCreate", func(s *discordgo.Session, g *discordgo.GuildCreate) { handler(s, g) })
}
