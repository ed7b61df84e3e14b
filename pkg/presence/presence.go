// Package presence keeps the bot's streaming activity in sync with its guild count.
package presence

import (
	"fmt"
	"sync"

	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule refreshes the activity every ten seconds
const DefaultSchedule = "@every 10s"

// StatusUpdater is satisfied by *discordgo.Session
type StatusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Rotator periodically rewrites the activity text
type Rotator struct {
	updater StatusUpdater
	guilds  func() int
	prefix  string
	url     string

	mu   sync.Mutex
	cron *cron.Cron
}

// NewRotator creates a Rotator. guilds returns the current guild count.
func NewRotator(updater StatusUpdater, guilds func() int, prefix, url string) *Rotator {
	return &Rotator{
		updater: updater,
		guilds:  guilds,
		prefix:  prefix,
		url:     url,
	}
}

// Text returns "On <n> Servers | <prefix>help"
func (r *Rotator) Text() string {
	return fmt.Sprintf("On %d Servers | %shelp", r.guilds(), r.prefix)
}

// Status builds the presence payload
func (r *Rotator) Status() discordgo.UpdateStatusData {
	return discordgo.UpdateStatusData{
		Status: string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{{
			Name: r.Text(),
			Type: discordgo.ActivityTypeStreaming,
			URL:  r.url,
		}},
	}
}

// Refresh pushes the current status once
func (r *Rotator) Refresh() error {
	return r.updater.UpdateStatusComplex(r.Status())
}

func (r *Rotator) tick() {
	if err := r.Refresh(); err != nil {
		logger.Warn("No se pudo actualizar la presencia: "+err.Error(), "Presence")
	}
}

// Start refreshes now and then on schedule until Stop. Starting twice is a no-op.
func (r *Rotator) Start(schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		return nil
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, r.tick); err != nil {
		return err
	}

	r.tick()
	c.Start()
	r.cron = c

	logger.System("Presencia rotativa iniciada ("+schedule+")", "Presence")
	return nil
}

// Stop halts the schedule
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		<-r.cron.Stop().Done()
		r.cron = nil
	}
}
