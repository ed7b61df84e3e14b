// Package config provides configuration management for the bot.
// Settings are read from a JSON file and can be overridden with environment variables.
package config

import (
	"os"
	"sync"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DefaultPath is the config file read when CONFIG_PATH is not set
const DefaultPath = "config.json"

// ErrMissingToken is returned when no bot token was provided
var ErrMissingToken = errors.New("config: token is required")

// EmbedConfig holds the shared embed settings
type EmbedConfig struct {
	Footer string `json:"footer"`
}

// MQTTConfig holds the broker settings. An empty host disables MQTT.
type MQTTConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// PresenceConfig holds the streaming activity settings
type PresenceConfig struct {
	URL string `json:"url"`
}

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	Token    string `json:"token"`
	ClientID string `json:"clientId"`
	GuildID  string `json:"guildId"`
	Prefix   string `json:"prefix"`

	// MongoDB
	MongoURI string `json:"mongoURI"`
	DBName   string `json:"dbName"`

	// Webhooks
	ErrorWebhook string `json:"errorWebhook"`
	LogsWebhook  string `json:"logsWebhook"`

	Embed    EmbedConfig    `json:"embed"`
	MQTT     MQTTConfig     `json:"mqtt"`
	Presence PresenceConfig `json:"presence"`

	// Web Server
	Port string `json:"port"`
	// AllowedHosts is an optional host pattern for the status API
	AllowedHosts string `json:"allowedHosts"`

	Environment string `json:"environment"`
	SentryDSN   string `json:"sentryDSN"`
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgErr = nil
	cfgOnce = sync.Once{}
}

func defaults() *Config {
	return &Config{
		Prefix:      "!",
		MongoURI:    "mongodb://localhost:27017",
		DBName:      "bot",
		Port:        "3000",
		Environment: "dev",
		MQTT:        MQTTConfig{Port: "1883"},
		Presence:    PresenceConfig{URL: "https://www.twitch.tv/discord"},
	}
}

// LoadFile reads the config file at path, applies environment overrides and validates the result.
// A missing file is not an error; every value can come from the environment.
func LoadFile(path string) (*Config, error) {
	c := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, c); err != nil {
			return nil, errors.Wrapf(err, "config: parse %s", path)
		}
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "config: read %s", path)
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	c.Token = getEnv("token", c.Token)
	c.ClientID = getEnv("clientId", c.ClientID)
	c.GuildID = getEnv("guildId", c.GuildID)
	c.Prefix = getEnv("prefix", c.Prefix)

	c.MongoURI = getEnv("mongoURI", c.MongoURI)
	c.DBName = getEnv("dbName", c.DBName)

	c.ErrorWebhook = getEnv("errorWebhook", c.ErrorWebhook)
	c.LogsWebhook = getEnv("logsWebhook", c.LogsWebhook)
	c.Embed.Footer = getEnv("embedFooter", c.Embed.Footer)

	c.MQTT.Host = getEnv("MQTT_Host", c.MQTT.Host)
	c.MQTT.Port = getEnv("MQTT_Port", c.MQTT.Port)
	c.MQTT.User = getEnv("MQTT_User", c.MQTT.User)
	c.MQTT.Password = getEnv("MQTT_Password", c.MQTT.Password)
	c.Presence.URL = getEnv("presenceUrl", c.Presence.URL)

	c.Port = getEnv("PORT", c.Port)
	c.AllowedHosts = getEnv("ALLOWED_HOSTS", c.AllowedHosts)
	c.Environment = getEnv("environment", c.Environment)
	c.SentryDSN = getEnv("sentryDSN", c.SentryDSN)
}

// Validate only checks that required values are present
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg, cfgErr = LoadFile(getEnv("CONFIG_PATH", DefaultPath))
}

// Load initializes the configuration from the config file and environment
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, cfgErr
}

// Get returns the current configuration, or nil if loading failed
func Get() *Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}
