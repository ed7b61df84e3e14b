package moderation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord/discordtest"
	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

type fakeStore struct {
	entries map[string]models.BlacklistEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]models.BlacklistEntry)}
}

func (f *fakeStore) Add(_ context.Context, entry models.BlacklistEntry) error {
	f.entries[entry.GuildID+"/"+entry.UserID] = entry
	return nil
}

func (f *fakeStore) Remove(_ context.Context, guildID, userID string) (bool, error) {
	key := guildID + "/" + userID
	_, ok := f.entries[key]
	delete(f.entries, key)
	return ok, nil
}

func (f *fakeStore) List(_ context.Context, guildID string) ([]*models.BlacklistEntry, error) {
	var out []*models.BlacklistEntry
	for _, e := range f.entries {
		if e.GuildID == guildID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func run(t *testing.T, store *fakeStore, i *discordgo.InteractionCreate) *discordtest.Session {
	t.Helper()
	client := discord.NewClientFromSession(nil)
	if n := Register(client.CommandHandler, store, ""); n != 1 {
		t.Fatalf("Register() = %d, want 1", n)
	}
	cmd, _ := client.Commands.Get("blacklist")

	s := &discordtest.Session{}
	if err := cmd.Run(&discord.CommandContext{Session: s, Interaction: i, Client: client}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return s
}

func withUser(sub, userID string, bot bool, extra ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	opts := append([]*discordgo.ApplicationCommandInteractionDataOption{discordtest.User("usuario", userID)}, extra...)
	i := discordtest.Interaction("blacklist", "g1", "mod", discordtest.Subcommand(sub, opts...))
	discordtest.Resolve(i, []*discordgo.User{{ID: userID, Bot: bot}}, nil)
	return i
}

func TestBlacklistAddRemove(t *testing.T) {
	store := newFakeStore()

	run(t, store, withUser("add", "u1", false, discordtest.String("razon", "spam")))

	entry, ok := store.entries["g1/u1"]
	if !ok {
		t.Fatal("entry g1/u1 not stored")
	}
	if entry.Reason != "spam" || entry.CreatedBy != "mod" || entry.CreatedAt.IsZero() {
		t.Errorf("entry = %+v, want reason spam by mod with a timestamp", entry)
	}

	s := run(t, store, withUser("remove", "u1", false))
	if _, ok := store.entries["g1/u1"]; ok {
		t.Error("entry g1/u1 still stored after remove")
	}
	if got := s.LastResponse().Embeds[0].Description; !strings.HasPrefix(got, "✅") {
		t.Errorf("remove reply = %q, want success", got)
	}

	s = run(t, store, withUser("remove", "u1", false))
	if got := s.LastResponse().Embeds[0].Description; !strings.HasPrefix(got, "❌") {
		t.Errorf("second remove reply = %q, want error", got)
	}
}

func TestBlacklistAddRejects(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		bot    bool
	}{
		{"bot", "b1", true},
		{"self", "mod", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			s := run(t, store, withUser("add", tt.userID, tt.bot))

			if len(store.entries) != 0 {
				t.Errorf("entries = %v, want none", store.entries)
			}
			if got := s.LastResponse().Embeds[0].Description; !strings.HasPrefix(got, "❌") {
				t.Errorf("reply = %q, want error", got)
			}
		})
	}
}

func TestBlacklistList(t *testing.T) {
	store := newFakeStore()

	s := run(t, store, discordtest.Interaction("blacklist", "g1", "mod", discordtest.Subcommand("list")))
	if got := s.LastResponse().Embeds[0].Description; got != "No hay usuarios bloqueados." {
		t.Errorf("empty list = %q", got)
	}

	for n := 0; n < listLimit+3; n++ {
		store.Add(context.Background(), models.BlacklistEntry{GuildID: "g1", UserID: fmt.Sprintf("u%d", n)})
	}
	store.Add(context.Background(), models.BlacklistEntry{GuildID: "g2", UserID: "other"})

	s = run(t, store, discordtest.Interaction("blacklist", "g1", "mod", discordtest.Subcommand("list")))
	got := s.LastResponse().Embeds[0].Description
	if strings.Contains(got, "<@other>") {
		t.Error("list shows an entry from another guild")
	}
	if !strings.HasSuffix(got, "… y 3 más") {
		t.Errorf("list = %q, want a truncation line", got)
	}
}
