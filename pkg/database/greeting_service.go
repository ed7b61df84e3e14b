package database

import (
	"context"

	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// GreetingService stores the welcome and goodbye templates
type GreetingService struct {
	managers map[models.GreetingKind]*DataManager[models.GreetingConfig]
}

// NewGreetingService creates a GreetingService
func NewGreetingService(source CollectionSource) *GreetingService {
	return &GreetingService{
		managers: map[models.GreetingKind]*DataManager[models.GreetingConfig]{
			models.GreetingWelcome: NewDataManager[models.GreetingConfig](models.GreetingWelcome.Collection(), source),
			models.GreetingGoodbye: NewDataManager[models.GreetingConfig](models.GreetingGoodbye.Collection(), source),
		},
	}
}

func (s *GreetingService) manager(kind models.GreetingKind) (*DataManager[models.GreetingConfig], error) {
	dm, ok := s.managers[kind]
	if !ok {
		return nil, errors.Errorf("unknown greeting kind %q", kind)
	}
	return dm, nil
}

// Get returns the guild's config, or nil when none is stored
func (s *GreetingService) Get(ctx context.Context, kind models.GreetingKind, guildID string) (*models.GreetingConfig, error) {
	dm, err := s.manager(kind)
	if err != nil {
		return nil, err
	}
	return dm.Get(ctx, bson.M{"guildId": guildID})
}

// Set stores the config for its guild
func (s *GreetingService) Set(ctx context.Context, kind models.GreetingKind, cfg models.GreetingConfig) error {
	dm, err := s.manager(kind)
	if err != nil {
		return err
	}
	return dm.Set(ctx, bson.M{"guildId": cfg.GuildID}, cfg)
}

// Delete removes the guild's config and reports whether it existed
func (s *GreetingService) Delete(ctx context.Context, kind models.GreetingKind, guildID string) (bool, error) {
	dm, err := s.manager(kind)
	if err != nil {
		return false, err
	}
	return dm.Delete(ctx, bson.M{"guildId": guildID})
}
