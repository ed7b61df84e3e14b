// Package startup runs the one-time boot sequence after the first ready event.
package startup

import (
	"context"
	"fmt"
	"sync"
	"time"

	boterrors "github.com/PancyStudios/PancyCompanionGo/pkg/errors"
	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"github.com/PancyStudios/PancyCompanionGo/pkg/presence"
	"github.com/PancyStudios/PancyCompanionGo/pkg/voice"
	"github.com/pkg/errors"
)

// StepTimeout bounds each step that talks to the network
const StepTimeout = 30 * time.Second

// Step is one independently fallible part of the boot sequence
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// StepError records a failed step
type StepError struct {
	Step string
	Err  error
}

// Sequencer runs its steps in order, once. A failing step is logged and
// reported and the next step still runs.
type Sequencer struct {
	Steps    []Step
	Reporter boterrors.Reporter

	once   sync.Once
	failed []StepError
}

// Run executes the steps the first time it is called; later calls return false immediately
func (s *Sequencer) Run(ctx context.Context) bool {
	ran := false
	s.once.Do(func() {
		ran = true
		for _, step := range s.Steps {
			s.runStep(ctx, step)
		}
	})
	return ran
}

func (s *Sequencer) runStep(parent context.Context, step Step) {
	ctx, cancel := context.WithTimeout(parent, StepTimeout)
	defer cancel()

	err := boterrors.Capture(func() error { return step.Run(ctx) })
	if err == nil {
		return
	}

	s.failed = append(s.failed, StepError{Step: step.Name, Err: err})
	logger.Error(fmt.Sprintf("Falló el paso %q: %v", step.Name, err), "Startup")
	if s.Reporter != nil {
		s.Reporter.ReportError("Error in startup step "+step.Name, err)
	}
}

// Failed returns the steps that failed during Run
func (s *Sequencer) Failed() []StepError {
	return s.failed
}

// Connector opens the document store; calling it again once connected is a no-op
type Connector interface {
	Connect(ctx context.Context, uri, dbName string) error
}

// StayLister lists the persisted 24/7 voice channels
type StayLister interface {
	List(ctx context.Context) ([]*models.VoiceStay, error)
}

// Deps wires the boot steps to the running bot
type Deps struct {
	// Identity returns the bot's user tag
	Identity func() string

	Presence *presence.Rotator
	Schedule string

	Database Connector
	MongoURI string
	DBName   string

	Stays StayLister
	// Rejoin joins available guilds now and the rest on their GUILD_CREATE
	Rejoin *voice.Rejoiner

	// Populate fills both command tables and returns how many were registered
	Populate func() (slash, prefix int)
	// Publish submits the slash command definitions
	Publish func() (int, error)
}

// BotSteps builds the boot sequence:
// identity, presence, voice rejoin (queued until each guild is available), database, command tables, command publish.
func BotSteps(d Deps) []Step {
	connect := func(ctx context.Context) error {
		if d.Database == nil {
			return errors.New("no database configured")
		}
		return d.Database.Connect(ctx, d.MongoURI, d.DBName)
	}

	return []Step{
		{Name: "identity", Run: func(context.Context) error {
			logger.Success(fmt.Sprintf("Hello World, I'm %s", d.Identity()), "Startup")
			return nil
		}},
		{Name: "presence", Run: func(context.Context) error {
			schedule := d.Schedule
			if schedule == "" {
				schedule = presence.DefaultSchedule
			}
			return d.Presence.Start(schedule)
		}},
		{Name: "voice", Run: func(ctx context.Context) error {
			// the stays live in the store, so it has to be reachable first
			if err := connect(ctx); err != nil {
				return errors.Wrap(err, "rejoining 24/7 voice channels")
			}
			stays, err := d.Stays.List(ctx)
			if err != nil {
				return errors.Wrap(err, "rejoining 24/7 voice channels")
			}
			res := d.Rejoin.Load(stays)
			logger.Info(fmt.Sprintf("Canales 24/7: %d reconectados, %d en espera, %d omitidos", len(res.Joined), len(res.Queued), len(res.Skipped)), "Startup")
			return nil
		}},
		{Name: "database", Run: func(ctx context.Context) error {
			return errors.Wrap(connect(ctx), "MongoDB connection error")
		}},
		{Name: "commands", Run: func(context.Context) error {
			slash, prefix := d.Populate()
			logger.Info(fmt.Sprintf("Comandos cargados: %d slash, %d prefix", slash, prefix), "Startup")
			return nil
		}},
		{Name: "publish", Run: func(context.Context) error {
			_, err := d.Publish()
			return err
		}},
	}
}
