package presence

import (
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

type fakeUpdater struct {
	mu      sync.Mutex
	updates []discordgo.UpdateStatusData
	err     error
}

func (f *fakeUpdater) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, usd)
	return f.err
}

func (f *fakeUpdater) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func TestStatus(t *testing.T) {
	guilds := 3
	r := NewRotator(&fakeUpdater{}, func() int { return guilds }, "!", "https://twitch.tv/pancy")

	if got := r.Text(); got != "On 3 Servers | !help" {
		t.Errorf("Text() = %q, want %q", got, "On 3 Servers | !help")
	}

	guilds = 12
	status := r.Status()
	if len(status.Activities) != 1 {
		t.Fatalf("Activities = %v, want 1", len(status.Activities))
	}
	activity := status.Activities[0]
	if activity.Name != "On 12 Servers | !help" {
		t.Errorf("Name = %q, want the current guild count", activity.Name)
	}
	if activity.Type != discordgo.ActivityTypeStreaming {
		t.Errorf("Type = %v, want %v", activity.Type, discordgo.ActivityTypeStreaming)
	}
	if activity.URL != "https://twitch.tv/pancy" {
		t.Errorf("URL = %v, want %v", activity.URL, "https://twitch.tv/pancy")
	}
}

func TestStartRefreshesImmediately(t *testing.T) {
	updater := &fakeUpdater{}
	r := NewRotator(updater, func() int { return 1 }, "?", "")

	if err := r.Start(""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer r.Stop()

	if updater.count() != 1 {
		t.Errorf("updates after Start = %v, want 1", updater.count())
	}

	// a second Start keeps the existing schedule
	if err := r.Start(""); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if updater.count() != 1 {
		t.Errorf("updates after second Start = %v, want 1", updater.count())
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	r := NewRotator(&fakeUpdater{}, func() int { return 0 }, "!", "")
	if err := r.Start("every now and then"); err == nil {
		t.Error("Start() should reject an invalid schedule")
	}
}

func TestRefreshError(t *testing.T) {
	r := NewRotator(&fakeUpdater{err: errors.New("not connected")}, func() int { return 0 }, "!", "")
	if err := r.Refresh(); err == nil {
		t.Error("Refresh() should return the gateway error")
	}
}
