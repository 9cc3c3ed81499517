package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Moha1423/WIFI-drone/internal/config"
)

const (
	mqttQueueSize      = 128
	mqttPublishTimeout = 2 * time.Second
	mqttConnectTimeout = 10 * time.Second
)

// MQTTPublisher is the part of an MQTT client the bridge needs.
type MQTTPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// ConnectMQTT connects to the broker in cfg. The client keeps reconnecting in
// the background after the first successful connect.
func ConnectMQTT(cfg config.MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Printf("telemetry: mqtt connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Printf("telemetry: mqtt connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		// With ConnectRetry the client keeps trying; publishes queue until then.
		log.Printf("telemetry: mqtt broker %s not reachable yet, retrying in background", cfg.Broker)
		return client, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	return client, nil
}

// MQTTBridge republishes hub events to "<topic>/<event type>".
// Orientation and motor events are sent at QoS 0; arming and faults at QoS 1.
type MQTTBridge struct {
	client MQTTPublisher
	topic  string
	queue  chan Event

	mu      sync.Mutex
	dropped int
}

var _ Sink = (*MQTTBridge)(nil)

// NewMQTTBridge creates a bridge. Call Run to start publishing.
func NewMQTTBridge(client MQTTPublisher, topic string) *MQTTBridge {
	return &MQTTBridge{
		client: client,
		topic:  topic,
		queue:  make(chan Event, mqttQueueSize),
	}
}

// Deliver queues an event, dropping it if the queue is full.
func (b *MQTTBridge) Deliver(event Event) {
	select {
	case b.queue <- event:
	default:
		b.mu.Lock()
		b.dropped++
		b.mu.Unlock()
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (b *MQTTBridge) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Run publishes queued events until ctx is cancelled.
func (b *MQTTBridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.queue:
			if err := b.publish(event); err != nil {
				log.Printf("telemetry: mqtt publish %s: %v", event.Type, err)
			}
		}
	}
}

func (b *MQTTBridge) publish(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	token := b.client.Publish(b.topic+"/"+event.Type, qosFor(event.Type), false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("timed out after %v", mqttPublishTimeout)
	}
	return token.Error()
}

func qosFor(eventType string) byte {
	switch eventType {
	case EventArmed, EventDisarmed, EventFailsafe, EventFault:
		return 1
	default:
		return 0
	}
}
