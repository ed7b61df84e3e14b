package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlacklistEntry blocks one user from using commands in one guild.
// Only the existence of the (guildId, userId) pair is checked at dispatch time.
type BlacklistEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	GuildID   string             `bson:"guildId" json:"guildId"`
	UserID    string             `bson:"userId" json:"userId"`
	Reason    string             `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedBy string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}
