package models

// VoiceStay asks the bot to stay connected to a voice channel across restarts
type VoiceStay struct {
	GuildID   string `bson:"guildId" json:"guildId"`
	ChannelID string `bson:"channelId" json:"channelId"`
}
