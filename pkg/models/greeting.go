package models

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// GreetingKind selects between the welcome and goodbye announcements
type GreetingKind string

const (
	GreetingWelcome GreetingKind = "welcome"
	GreetingGoodbye GreetingKind = "goodbye"
)

// Collection returns the collection holding configs of this kind
func (k GreetingKind) Collection() string {
	return string(k) + "configs"
}

// GreetingConfig is the per-guild welcome or goodbye template.
// Title and Description may contain the {user} and {server} placeholders.
type GreetingConfig struct {
	GuildID     string     `bson:"guildId" json:"guildId"`
	ChannelID   string     `bson:"channelId" json:"channelId"`
	EmbedColor  EmbedColor `bson:"embedColor" json:"embedColor"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	Image       string     `bson:"image,omitempty" json:"image,omitempty"`
}

// EmbedColor is an RGB color stored either as a number or as a "#RRGGBB" string
type EmbedColor int

// ParseEmbedColor accepts "#RRGGBB", "0xRRGGBB", "RRGGBB" or a decimal number.
// Six digit strings are always read as hex.
func ParseEmbedColor(s string) (EmbedColor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "#"):
		return parseHexColor(lower[1:])
	case strings.HasPrefix(lower, "0x"):
		return parseHexColor(lower[2:])
	}

	if n, err := strconv.ParseInt(s, 10, 32); err == nil && len(s) != 6 {
		return checkColor(n)
	}
	return parseHexColor(lower)
}

func parseHexColor(s string) (EmbedColor, error) {
	n, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid embed color %q", s)
	}
	return checkColor(n)
}

func checkColor(n int64) (EmbedColor, error) {
	if n < 0 || n > 0xFFFFFF {
		return 0, fmt.Errorf("embed color %d out of range", n)
	}
	return EmbedColor(n), nil
}

// Hex returns the "#RRGGBB" form
func (c EmbedColor) Hex() string {
	return fmt.Sprintf("#%06X", int(c))
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler
func (c *EmbedColor) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.Int32:
		*c = EmbedColor(raw.Int32())
	case bsontype.Int64:
		*c = EmbedColor(raw.Int64())
	case bsontype.Double:
		*c = EmbedColor(int(raw.Double()))
	case bsontype.String:
		parsed, err := ParseEmbedColor(raw.StringValue())
		if err != nil {
			return err
		}
		*c = parsed
	case bsontype.Null, bsontype.Undefined:
		*c = 0
	default:
		return fmt.Errorf("cannot decode embed color from %s", t)
	}
	return nil
}

// MarshalBSONValue implements bson.ValueMarshaler
func (c EmbedColor) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(int32(c))
}
