package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// BlacklistCollection holds the blocked (guild, user) pairs
const BlacklistCollection = "blacklists"

// BlacklistService answers whether a user is blocked in a guild
type BlacklistService struct {
	dm *DataManager[models.BlacklistEntry]
}

// NewBlacklistService creates a BlacklistService
func NewBlacklistService(source CollectionSource) *BlacklistService {
	return &BlacklistService{
		dm: NewDataManager[models.BlacklistEntry](BlacklistCollection, source),
	}
}

func blacklistQuery(guildID, userID string) bson.M {
	return bson.M{"guildId": guildID, "userId": userID}
}

// IsBlacklisted checks whether the pair exists
func (s *BlacklistService) IsBlacklisted(ctx context.Context, guildID, userID string) (bool, error) {
	return s.dm.Exists(ctx, blacklistQuery(guildID, userID))
}

// Add stores the entry, replacing any previous entry for the same pair
func (s *BlacklistService) Add(ctx context.Context, entry models.BlacklistEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return s.dm.Set(ctx, blacklistQuery(entry.GuildID, entry.UserID), entry)
}

// Remove deletes the pair and reports whether it existed
func (s *BlacklistService) Remove(ctx context.Context, guildID, userID string) (bool, error) {
	return s.dm.Delete(ctx, blacklistQuery(guildID, userID))
}

// List returns every entry of a guild
func (s *BlacklistService) List(ctx context.Context, guildID string) ([]*models.BlacklistEntry, error) {
	return s.dm.GetAll(ctx, bson.M{"guildId": guildID})
}
