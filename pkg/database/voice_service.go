package database

import (
	"context"

	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// VoiceStayCollection holds the 24/7 voice channels
const VoiceStayCollection = "voice247"

// VoiceStayService stores the channels the bot rejoins on startup
type VoiceStayService struct {
	dm *DataManager[models.VoiceStay]
}

// NewVoiceStayService creates a VoiceStayService
func NewVoiceStayService(source CollectionSource) *VoiceStayService {
	return &VoiceStayService{
		dm: NewDataManager[models.VoiceStay](VoiceStayCollection, source),
	}
}

// List returns every record
func (s *VoiceStayService) List(ctx context.Context) ([]*models.VoiceStay, error) {
	return s.dm.GetAll(ctx, bson.M{})
}

// Get returns the guild's record, or nil when none is stored
func (s *VoiceStayService) Get(ctx context.Context, guildID string) (*models.VoiceStay, error) {
	return s.dm.Get(ctx, bson.M{"guildId": guildID})
}

// Set stores the channel for its guild
func (s *VoiceStayService) Set(ctx context.Context, stay models.VoiceStay) error {
	return s.dm.Set(ctx, bson.M{"guildId": stay.GuildID}, stay)
}

// Delete removes the guild's record and reports whether it existed
func (s *VoiceStayService) Delete(ctx context.Context, guildID string) (bool, error) {
	return s.dm.Delete(ctx, bson.M{"guildId": guildID})
}
