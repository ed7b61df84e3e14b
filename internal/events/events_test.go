package events

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/internal/startup"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord/discordtest"
	"github.com/PancyStudios/PancyCompanionGo/pkg/greeting"
	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"github.com/PancyStudios/PancyCompanionGo/pkg/mqtt"
	"github.com/PancyStudios/PancyCompanionGo/pkg/voice"
	"github.com/bwmarrin/discordgo"
)

type published struct {
	kind    string
	guildID string
	userID  string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) PublishEvent(kind, guildID, userID string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{kind, guildID, userID})
	return nil
}

type fakeReporter struct {
	titles []string
}

func (f *fakeReporter) ReportError(title string, _ error) {
	f.titles = append(f.titles, title)
}

type fakeStore struct {
	configs map[models.GreetingKind]*models.GreetingConfig
	err     error
}

func (f *fakeStore) Get(_ context.Context, kind models.GreetingKind, guildID string) (*models.GreetingConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.configs[kind], nil
}

func newState(t *testing.T) *discordgo.State {
	t.Helper()
	state := discordgo.NewState()
	err := state.GuildAdd(&discordgo.Guild{
		ID:       "g1",
		Name:     "Pancy",
		Channels: []*discordgo.Channel{{ID: "c1", GuildID: "g1", Type: discordgo.ChannelTypeGuildText}},
	})
	if err != nil {
		t.Fatalf("GuildAdd() error = %v", err)
	}
	return state
}

func TestOnMember(t *testing.T) {
	store := &fakeStore{configs: map[models.GreetingKind]*models.GreetingConfig{
		models.GreetingWelcome: {GuildID: "g1", ChannelID: "c1", Title: "Hola {user}", Description: "{user} llegó a {server}"},
	}}
	pub := &fakePublisher{}
	reporter := &fakeReporter{}
	deps := Deps{Announcer: greeting.NewAnnouncer(store), Events: pub, Reporter: reporter}
	state := newState(t)
	user := &discordgo.User{ID: "u1", Username: "pancy"}

	t.Run("welcome", func(t *testing.T) {
		s := &discordtest.Session{}
		onMember(deps, models.GreetingWelcome, state, s, "g1", user)

		msg := s.LastSend()
		if msg == nil || len(msg.Embeds) != 1 {
			t.Fatalf("sent = %+v, want one embed", msg)
		}
		if got := msg.Embeds[0].Description; got != "<@u1> llegó a Pancy" {
			t.Errorf("description = %q, want %q", got, "<@u1> llegó a Pancy")
		}
		if s.SendChannels[0] != "c1" {
			t.Errorf("channel = %q, want c1", s.SendChannels[0])
		}
	})

	t.Run("goodbye without config", func(t *testing.T) {
		s := &discordtest.Session{}
		onMember(deps, models.GreetingGoodbye, state, s, "g1", user)

		if len(s.Sends) != 0 {
			t.Errorf("sent = %d, want 0", len(s.Sends))
		}
	})

	want := []published{
		{mqtt.EventMemberJoin, "g1", "u1"},
		{mqtt.EventMemberLeave, "g1", "u1"},
	}
	if !reflect.DeepEqual(pub.events, want) {
		t.Errorf("events = %v, want %v", pub.events, want)
	}
	if len(reporter.titles) != 0 {
		t.Errorf("reports = %v, want none", reporter.titles)
	}
}

func TestOnMemberReportsFailures(t *testing.T) {
	tests := []struct {
		name  string
		kind  models.GreetingKind
		store *fakeStore
		send  error
		want  string
	}{
		{
			name:  "store error",
			kind:  models.GreetingWelcome,
			store: &fakeStore{err: errors.New("offline")},
			want:  "Error in guildMemberAdd",
		},
		{
			name: "send error",
			kind: models.GreetingGoodbye,
			store: &fakeStore{configs: map[models.GreetingKind]*models.GreetingConfig{
				models.GreetingGoodbye: {GuildID: "g1", ChannelID: "c1", Title: "Adiós"},
			}},
			send: errors.New("missing access"),
			want: "Error in guildMemberRemove",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := &fakeReporter{}
			deps := Deps{Announcer: greeting.NewAnnouncer(tt.store), Reporter: reporter}

			onMember(deps, tt.kind, newState(t), &discordtest.Session{SendErr: tt.send}, "g1", &discordgo.User{ID: "u1"})

			if len(reporter.titles) != 1 || reporter.titles[0] != tt.want {
				t.Errorf("reports = %v, want [%s]", reporter.titles, tt.want)
			}
		})
	}
}

func TestOnReadyRunsStartupOnce(t *testing.T) {
	client := discord.NewClientFromSession(nil)
	runs := 0
	seq := &startup.Sequencer{Steps: []startup.Step{{Name: "count", Run: func(context.Context) error {
		runs++
		return nil
	}}}}
	pub := &fakePublisher{}
	deps := Deps{Startup: seq, Events: pub}

	ready := &discordgo.Ready{User: &discordgo.User{Username: "companion"}}
	onReady(client, deps, ready)
	onReady(client, deps, ready)

	if !client.IsReady() {
		t.Error("IsReady() = false after the ready event")
	}
	if runs != 1 {
		t.Errorf("startup runs = %d, want 1", runs)
	}
	if len(pub.events) != 2 || pub.events[0].kind != mqtt.EventReady {
		t.Errorf("events = %v, want two ready events", pub.events)
	}
}

func TestRegisterAll(t *testing.T) {
	client := discord.NewClientFromSession(nil)
	pub := &fakePublisher{}
	dispatcher := discord.NewDispatcher(client, nil, nil, "!", "")

	RegisterAll(client, Deps{Dispatcher: dispatcher, Events: pub})

	want := []string{"Ready", "InteractionCreate", "MessageCreate", "GuildMemberAdd", "GuildMemberRemove", "GuildCreate"}
	if got := client.EventHandler.Registered(); !reflect.DeepEqual(got, want) {
		t.Errorf("Registered() = %v, want %v", got, want)
	}

	client.Commands.Set("ping", discord.NewCommand("ping", "", "", func(ctx *discord.CommandContext) error {
		return ctx.Reply("pong")
	}))
	dispatcher.HandleInteraction(&discordtest.Session{}, discordtest.Interaction("ping", "g1", "u1"))

	if len(pub.events) != 1 || pub.events[0] != (published{mqtt.EventCommand, "g1", "u1"}) {
		t.Errorf("events = %v, want one command event", pub.events)
	}
}

func TestCommandPayload(t *testing.T) {
	payload := commandPayload(discord.CommandEvent{
		Kind:     discord.KindPrefix,
		Name:     "help",
		Duration: 1500 * time.Millisecond,
		Err:      errors.New("boom"),
	})

	if payload["ok"] != false || payload["error"] != "boom" || payload["durationMs"] != int64(1500) {
		t.Errorf("payload = %v", payload)
	}
}

type stateGateway struct {
	state  *discordgo.State
	joined []string
}

func (g *stateGateway) Guild(id string) (*discordgo.Guild, error) { return g.state.Guild(id) }

func (g *stateGateway) Channel(id string) (*discordgo.Channel, error) { return g.state.Channel(id) }

func (g *stateGateway) BotPermissions(string) (int64, error) { return voice.RequiredPermissions, nil }

func (g *stateGateway) Join(_, channelID string) error {
	g.joined = append(g.joined, channelID)
	return nil
}

func TestOnGuildCreateRejoinsQueuedStays(t *testing.T) {
	session := &discordgo.Session{StateEnabled: true}
	state := discordgo.NewState()
	gw := &stateGateway{state: state}

	if err := state.OnInterface(session, &discordgo.Ready{
		User:   &discordgo.User{ID: "bot"},
		Guilds: []*discordgo.Guild{{ID: "g1", Unavailable: true}},
	}); err != nil {
		t.Fatalf("OnInterface(Ready) error = %v", err)
	}

	rejoin := voice.NewRejoiner(gw)
	rejoin.Load([]*models.VoiceStay{{GuildID: "g1", ChannelID: "vc1"}})
	deps := Deps{Rejoin: rejoin}

	// still unavailable: nothing happens
	onGuildCreate(deps, &discordgo.Guild{ID: "g1", Unavailable: true})
	if len(gw.joined) != 0 {
		t.Fatalf("joined = %v while the guild is unavailable", gw.joined)
	}

	guild := &discordgo.Guild{
		ID:       "g1",
		Channels: []*discordgo.Channel{{ID: "vc1", GuildID: "g1", Type: discordgo.ChannelTypeGuildVoice}},
	}
	if err := state.OnInterface(session, &discordgo.GuildCreate{Guild: guild}); err != nil {
		t.Fatalf("OnInterface(GuildCreate) error = %v", err)
	}
	onGuildCreate(deps, guild)

	if !reflect.DeepEqual(gw.joined, []string{"vc1"}) {
		t.Errorf("joined = %v, want [vc1]", gw.joined)
	}
}
