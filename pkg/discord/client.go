// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with command registration, dispatch and publishing.
package discord

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

// discordgo.Logger is a function, not an interface
func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg, "DiscordGo")
		case discordgo.LogWarning:
			logger.Warn(msg, "DiscordGo")
		case discordgo.LogDebug:
			logger.Debug(msg, "DiscordGo")
		default:
			logger.Info(msg, "DiscordGo")
		}
	}
}

// ExtendedClient wraps discordgo.Session with additional functionality
type ExtendedClient struct {
	Session        *discordgo.Session
	Commands       *CommandCollection
	PrefixCommands *PrefixCommandCollection
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	StartTime      time.Time
	mu             sync.RWMutex
	isReady        bool
}

// Collection is a name-keyed table safe for concurrent use
type Collection[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

// CommandCollection holds registered slash commands
type CommandCollection = Collection[*Command]

// PrefixCommandCollection holds registered prefix commands
type PrefixCommandCollection = Collection[*PrefixCommand]

// NewCollection creates an empty Collection
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{
		items: make(map[string]T),
	}
}

// NewCommandCollection creates a new CommandCollection
func NewCommandCollection() *CommandCollection {
	return NewCollection[*Command]()
}

// NewPrefixCommandCollection creates a new PrefixCommandCollection
func NewPrefixCommandCollection() *PrefixCommandCollection {
	return NewCollection[*PrefixCommand]()
}

// Set adds or updates an item and reports whether it replaced an existing one
func (c *Collection[T]) Set(name string, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, existed := c.items[name]
	c.items[name] = item
	return existed
}

// Get retrieves an item by name
func (c *Collection[T]) Get(name string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[name]
	return item, ok
}

// Size returns the number of items
func (c *Collection[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// All returns a copy of the table
func (c *Collection[T]) All() map[string]T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make(map[string]T, len(c.items))
	for k, v := range c.items {
		result[k] = v
	}
	return result
}

// Names returns the registered names in alphabetical order
func (c *Collection[T]) Names() []string {
	c.mu.RLock()
	names := lo.Keys(c.items)
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Sorted returns the items ordered by name
func (c *Collection[T]) Sorted() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := lo.Keys(c.items)
	sort.Strings(names)
	return lo.Map(names, func(name string, _ int) T {
		return c.items[name]
	})
}

var (
	client *ExtendedClient
	once   sync.Once
)

// Init initializes the global Discord client
func Init(token string) (*ExtendedClient, error) {
	var err error
	once.Do(func() {
		client, err = NewClient(token)
	})
	return client, err
}

// Get returns the global Discord client
func Get() *ExtendedClient {
	return client
}

// NewClient creates a new ExtendedClient
func NewClient(token string) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	// Set intents
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates

	// Configure session
	session.ShardCount = 1
	session.SyncEvents = false
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	return NewClientFromSession(session), nil
}

// NewClientFromSession wraps an existing session
func NewClientFromSession(session *discordgo.Session) *ExtendedClient {
	c := &ExtendedClient{
		Session:        session,
		Commands:       NewCommandCollection(),
		PrefixCommands: NewPrefixCommandCollection(),
	}

	// Initialize handlers
	c.CommandHandler = NewCommandHandler(c)
	c.EventHandler = NewEventHandler(c)

	return c
}

// Start opens the gateway connection. Handlers must be registered before.
func (c *ExtendedClient) Start() error {
	c.StartTime = time.Now()
	return c.Session.Open()
}

// Stop stops the bot and closes the session
func (c *ExtendedClient) Stop() error {
	c.SetReady(false)

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// SetReady records whether the gateway session is ready
func (c *ExtendedClient) SetReady(ready bool) {
	c.mu.Lock()
	c.isReady = ready
	c.mu.Unlock()
}

// IsReady returns true if the bot is ready
func (c *ExtendedClient) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// Uptime returns the time since Start
func (c *ExtendedClient) Uptime() time.Duration {
	if c.StartTime.IsZero() {
		return 0
	}
	return time.Since(c.StartTime)
}

// GuildCount returns the number of guilds the bot is in
func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}

// UserTag returns the bot's username, or "" before the ready event
func (c *ExtendedClient) UserTag() string {
	if c.Session == nil || c.Session.State == nil || c.Session.State.User == nil {
		return ""
	}
	return c.Session.State.User.Username
}

// Latency returns the last heartbeat round trip
func (c *ExtendedClient) Latency() time.Duration {
	if c.Session == nil {
		return 0
	}
	return c.Session.HeartbeatLatency()
}
