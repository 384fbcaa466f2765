// mqtt.go - Publishes marketplace events to an MQTT broker

package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go-market-backend/logger"
	"go-market-backend/models"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	EventDownload    = "download"
	EventEntitlement = "entitlement"

	qosAtLeastOnce = 1
	queueSize      = 100
	publishTimeout = 5 * time.Second
	connectTimeout = 10 * time.Second
)

var ErrConnectTimeout = errors.New("mqtt connect timed out")

// Client is the part of paho.Client the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Connect dials broker (e.g. tcp://localhost:1883) and waits for the handshake.
func Connect(broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, ErrConnectTimeout
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	return client, nil
}

// Event is the JSON body of every published message.
type Event struct {
	Type string      `json:"type"`
	At   time.Time   `json:"at"`
	Data interface{} `json:"data"`
}

type message struct {
	topic string
	event Event
}

// Publisher sends events from a buffered FIFO queue on a background
// goroutine so request handlers never wait on the broker. When the queue is
// full new events are dropped and logged.
type Publisher struct {
	client Client
	prefix string
	log    logger.Logger

	queue chan message
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewPublisher(client Client, topicPrefix string, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	p := &Publisher{
		client: client,
		prefix: topicPrefix,
		log:    log.With("component", "mqtt"),
		queue:  make(chan message, queueSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Topic returns the full topic for a suffix such as "downloads".
func (p *Publisher) Topic(suffix string) string {
	if p.prefix == "" {
		return suffix
	}
	return p.prefix + "/" + suffix
}

func (p *Publisher) PublishDownload(ev *models.DownloadEvent) {
	p.enqueue(p.Topic("downloads"), Event{Type: EventDownload, At: ev.DownloadedAt, Data: ev})
}

func (p *Publisher) PublishEntitlement(ent *models.Entitlement) {
	p.enqueue(p.Topic("entitlements"), Event{Type: EventEntitlement, At: ent.GrantedAt, Data: ent})
}

func (p *Publisher) enqueue(topic string, ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- message{topic: topic, event: ev}:
	default:
		p.log.Warn("event queue full, dropping event", "topic", topic, "type", ev.Type)
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		payload, err := json.Marshal(msg.event)
		if err != nil {
			p.log.Error("encode event", "topic", msg.topic, "error", err)
			continue
		}
		token := p.client.Publish(msg.topic, qosAtLeastOnce, false, payload)
		if !token.WaitTimeout(publishTimeout) {
			p.log.Warn("publish timed out", "topic", msg.topic)
			continue
		}
		if err := token.Error(); err != nil {
			p.log.Warn("publish failed", "topic", msg.topic, "error", err)
		}
	}
}

// Close stops accepting events and waits for the queue to drain.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	<-p.done
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishDownload(*models.DownloadEvent)  {}
func (NopPublisher) PublishEntitlement(*models.Entitlement) {}
func (NopPublisher) Close()                                 {}
