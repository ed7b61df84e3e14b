package startup

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"github.com/PancyStudios/PancyCompanionGo/pkg/presence"
	"github.com/PancyStudios/PancyCompanionGo/pkg/voice"
	"github.com/bwmarrin/discordgo"
)

type fakeReporter struct {
	mu     sync.Mutex
	titles []string
}

func (f *fakeReporter) ReportError(title string, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
}

func TestSequencerContinuesAfterFailure(t *testing.T) {
	var order []string
	step := func(name string, err error) Step {
		return Step{Name: name, Run: func(context.Context) error {
			order = append(order, name)
			return err
		}}
	}

	reporter := &fakeReporter{}
	s := &Sequencer{
		Steps: []Step{
			step("one", nil),
			step("two", errors.New("boom")),
			{Name: "three", Run: func(context.Context) error {
				order = append(order, "three")
				panic("kaboom")
			}},
			step("four", nil),
		},
		Reporter: reporter,
	}

	if !s.Run(context.Background()) {
		t.Fatal("first Run() = false, want true")
	}

	if want := []string{"one", "two", "three", "four"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if want := []string{"Error in startup step two", "Error in startup step three"}; !reflect.DeepEqual(reporter.titles, want) {
		t.Errorf("reports = %v, want %v", reporter.titles, want)
	}
	if len(s.Failed()) != 2 {
		t.Errorf("Failed() = %d, want 2", len(s.Failed()))
	}
}

func TestSequencerRunsOnce(t *testing.T) {
	runs := 0
	s := &Sequencer{Steps: []Step{{Name: "count", Run: func(context.Context) error {
		runs++
		return nil
	}}}}

	s.Run(context.Background())
	if s.Run(context.Background()) {
		t.Error("second Run() = true, want false")
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

type fakeDB struct {
	connects int
	err      error
}

func (f *fakeDB) Connect(_ context.Context, uri, dbName string) error {
	f.connects++
	return f.err
}

type fakeStays struct {
	stays []*models.VoiceStay
	err   error
}

func (f *fakeStays) List(context.Context) ([]*models.VoiceStay, error) {
	return f.stays, f.err
}

type fakeGateway struct {
	joined []string
}

func (g *fakeGateway) Guild(id string) (*discordgo.Guild, error) {
	return &discordgo.Guild{ID: id}, nil
}

func (g *fakeGateway) Channel(id string) (*discordgo.Channel, error) {
	if id == "missing" {
		return nil, discordgo.ErrStateNotFound
	}
	return &discordgo.Channel{ID: id, GuildID: "g1", Type: discordgo.ChannelTypeGuildVoice}, nil
}

func (g *fakeGateway) BotPermissions(string) (int64, error) {
	return voice.RequiredPermissions, nil
}

func (g *fakeGateway) Join(guildID, channelID string) error {
	g.joined = append(g.joined, channelID)
	return nil
}

type fakeUpdater struct {
	mu    sync.Mutex
	names []string
}

func (f *fakeUpdater) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, usd.Activities[0].Name)
	return nil
}

func TestBotSteps(t *testing.T) {
	db := &fakeDB{}
	gw := &fakeGateway{}
	updater := &fakeUpdater{}
	rotator := presence.NewRotator(updater, func() int { return 2 }, "!", "https://twitch.tv/pancy")
	defer rotator.Stop()

	var published bool
	steps := BotSteps(Deps{
		Identity: func() string { return "Companion#0001" },
		Presence: rotator,
		Database: db,
		MongoURI: "mongodb://localhost:27017",
		DBName:   "bot",
		Stays: &fakeStays{stays: []*models.VoiceStay{
			{GuildID: "g1", ChannelID: "v1"},
			{GuildID: "g1", ChannelID: "missing"},
			{GuildID: "g1", ChannelID: "v2"},
		}},
		Rejoin:   voice.NewRejoiner(gw),
		Populate: func() (int, int) { return 6, 2 },
		Publish: func() (int, error) {
			published = true
			return 6, nil
		},
	})

	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = step.Name
	}
	if want := []string{"identity", "presence", "voice", "database", "commands", "publish"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("steps = %v, want %v", names, want)
	}

	reporter := &fakeReporter{}
	s := &Sequencer{Steps: steps, Reporter: reporter}
	s.Run(context.Background())

	if len(reporter.titles) != 0 {
		t.Errorf("reports = %v, want none", reporter.titles)
	}
	if want := []string{"v1", "v2"}; !reflect.DeepEqual(gw.joined, want) {
		t.Errorf("joined = %v, want %v", gw.joined, want)
	}
	if db.connects != 2 {
		t.Errorf("connects = %d, want 2 (voice and database steps)", db.connects)
	}
	if !published {
		t.Error("commands were not published")
	}

	updater.mu.Lock()
	defer updater.mu.Unlock()
	if len(updater.names) == 0 || updater.names[0] != "On 2 Servers | !help" {
		t.Errorf("presence = %v, want On 2 Servers | !help", updater.names)
	}
}

func TestBotStepsDatabaseDown(t *testing.T) {
	reporter := &fakeReporter{}
	var populated, published bool

	rotator := presence.NewRotator(&fakeUpdater{}, func() int { return 0 }, "!", "")
	defer rotator.Stop()

	s := &Sequencer{
		Steps: BotSteps(Deps{
			Identity: func() string { return "Companion" },
			Presence: rotator,
			Database: &fakeDB{err: errors.New("connection refused")},
			Stays:    &fakeStays{},
			Rejoin:   voice.NewRejoiner(&fakeGateway{}),
			Populate: func() (int, int) {
				populated = true
				return 0, 0
			},
			Publish: func() (int, error) {
				published = true
				return 0, errors.New("401 Unauthorized")
			},
		}),
		Reporter: reporter,
	}
	s.Run(context.Background())

	if !populated || !published {
		t.Errorf("populated = %v, published = %v, want both after a database failure", populated, published)
	}

	want := []string{"Error in startup step voice", "Error in startup step database", "Error in startup step publish"}
	if !reflect.DeepEqual(reporter.titles, want) {
		t.Errorf("reports = %v, want %v", reporter.titles, want)
	}
	for _, failed := range s.Failed() {
		if failed.Step == "database" && !strings.Contains(failed.Err.Error(), "connection refused") {
			t.Errorf("database error = %v, want the connect error", failed.Err)
		}
	}
}
