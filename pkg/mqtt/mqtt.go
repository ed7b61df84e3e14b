// Package mqtt publishes bot events to an MQTT broker and answers status requests.
// A nil *Communicator is valid and turns every call into a no-op, so the bot
// runs unchanged when no broker is configured.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	// TopicRoot prefixes every topic used by the bot
	TopicRoot = "pancy/companion"

	quiesceMs = 250
)

// Event kinds published by the bot
const (
	EventMemberJoin  = "member_join"
	EventMemberLeave = "member_leave"
	EventCommand     = "command"
	EventReady       = "ready"
)

// Event is the payload published on an event topic
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	GuildID   string      `json:"guildId,omitempty"`
	UserID    string      `json:"userId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Request represents an incoming request message
type Request struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// Response is published on the response topic of a request
type Response struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// RequestHandler answers one request. payload always carries "_topic".
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// Options holds the broker connection settings
type Options struct {
	Host     string
	Port     string
	User     string
	Password string
	ClientID string
}

// Communicator handles MQTT communication
type Communicator struct {
	client   paho.Client
	clientID string

	mu       sync.RWMutex
	handlers map[string]RequestHandler
}

var (
	communicator *Communicator
	once         sync.Once
)

// Init initializes the global communicator. It returns nil when no host is configured.
func Init(opts Options) *Communicator {
	once.Do(func() {
		if opts.Host == "" {
			logger.Info("MQTT deshabilitado: no hay host configurado", "MQTT")
			return
		}
		communicator = New(opts)
		if err := communicator.Connect(); err != nil {
			logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", err), "MQTT")
		}
	})
	return communicator
}

// Get returns the global communicator, which may be nil
func Get() *Communicator {
	return communicator
}

// New creates a communicator without connecting it
func New(opts Options) *Communicator {
	clientID := opts.ClientID
	if clientID == "" {
		clientID = "companion"
	}
	uniqueID := fmt.Sprintf("%s_%s", clientID, uuid.New().String())

	pahoOpts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", opts.Host, opts.Port)).
		SetClientID(uniqueID).
		SetUsername(opts.User).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), "MQTT")
		}).
		SetConnectionLostHandler(func(c paho.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	return newWithClient(paho.NewClient(pahoOpts), clientID)
}

func newWithClient(client paho.Client, clientID string) *Communicator {
	return &Communicator{
		client:   client,
		clientID: clientID,
		handlers: make(map[string]RequestHandler),
	}
}

// Connect dials the broker. With connect retry enabled the client keeps trying in the background.
func (mc *Communicator) Connect() error {
	if mc == nil {
		return nil
	}
	token := mc.client.Connect()
	token.Wait()
	return token.Error()
}

// Destroy closes the MQTT connection
func (mc *Communicator) Destroy() {
	if mc == nil {
		return
	}
	if mc.client.IsConnected() {
		mc.client.Disconnect(quiesceMs)
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	} else {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *Communicator) IsConnected() bool {
	return mc != nil && mc.client.IsConnected()
}

// EventTopic returns the topic an event kind is published on
func EventTopic(kind string) string {
	return fmt.Sprintf("%s/events/%s", TopicRoot, kind)
}

// RequestTopic returns the topic requests for name arrive on
func RequestTopic(name string) string {
	return fmt.Sprintf("%s/request/%s", TopicRoot, name)
}

// ResponseTopic returns the topic the answer to one request is published on
func ResponseTopic(name, correlationID string) string {
	return fmt.Sprintf("%s/response/%s/%s", TopicRoot, name, correlationID)
}

// Publish sends a JSON encoded message to a topic
func (mc *Communicator) Publish(topic string, payload interface{}) error {
	if mc == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal payload")
	}

	token := mc.client.Publish(topic, 0, false, data)
	token.Wait()
	return token.Error()
}

// NewEvent builds an event stamped with a fresh id
func NewEvent(kind, guildID, userID string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      kind,
		GuildID:   guildID,
		UserID:    userID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// PublishEvent publishes an event on its kind's topic
func (mc *Communicator) PublishEvent(kind, guildID, userID string, data interface{}) error {
	if mc == nil {
		return nil
	}
	return mc.Publish(EventTopic(kind), NewEvent(kind, guildID, userID, data))
}

// On registers a handler for a request topic
func (mc *Communicator) On(name string, handler RequestHandler) error {
	if mc == nil {
		return nil
	}

	mc.mu.Lock()
	mc.handlers[name] = handler
	mc.mu.Unlock()

	topic := RequestTopic(name)
	token := mc.client.Subscribe(topic, 0, func(c paho.Client, msg paho.Message) {
		responseTopic, response, ok := mc.handleRequest(msg.Topic(), msg.Payload())
		if !ok {
			return
		}
		if err := mc.Publish(responseTopic, response); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo responder en %s: %v", responseTopic, err), "MQTT")
		}
	})
	if token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "subscribe %s", topic)
	}
	return nil
}

// handleRequest decodes a request, runs its handler and builds the response
func (mc *Communicator) handleRequest(topic string, payload []byte) (string, Response, bool) {
	var request Request
	if err := json.Unmarshal(payload, &request); err != nil {
		logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
		return "", Response{}, false
	}

	name := strings.TrimPrefix(topic, RequestTopic(""))

	mc.mu.RLock()
	handler, exists := mc.handlers[name]
	mc.mu.RUnlock()
	if !exists {
		return "", Response{}, false
	}

	args := make(map[string]interface{})
	if pm, ok := request.Payload.(map[string]interface{}); ok {
		args = pm
	}
	args["_topic"] = name

	response := Response{CorrelationID: request.CorrelationID}
	data, err := handler(args)
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}

	return ResponseTopic(name, request.CorrelationID), response, true
}
