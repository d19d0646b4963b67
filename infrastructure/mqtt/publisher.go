// Package mqtt publishes committed inspections to the shop-floor broker.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"screw-inspection/domain/dto"
	"screw-inspection/pkg/logger"
)

type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

const publishTimeout = 2 * time.Second

// Publisher implements services.InspectionPublisher on top of a paho client
type Publisher struct {
	client paho.Client
	prefix string
}

// Connect dials the broker. paho keeps reconnecting in the background after
// the first successful connect.
func Connect(cfg Config) (*Publisher, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetOnConnectHandler(func(paho.Client) {
		logger.MQTT("connected", "Connected to MQTT broker", map[string]interface{}{"broker": cfg.Broker})
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.MQTTError("connection_lost", "MQTT connection lost", err, map[string]interface{}{"broker": cfg.Broker})
	})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(30 * time.Second) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connection error: %w", err)
	}
	return NewPublisher(client, cfg.TopicPrefix), nil
}

func NewPublisher(client paho.Client, prefix string) *Publisher {
	return &Publisher{client: client, prefix: strings.Trim(prefix, "/")}
}

// Topic returns {prefix}/{team}/inspections with wildcard characters in the
// team name replaced.
func (p *Publisher) Topic(team string) string {
	safe := strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(team)
	return p.prefix + "/" + safe + "/inspections"
}

func (p *Publisher) PublishInspection(_ context.Context, event dto.InspectionEvent) {
	if !p.client.IsConnected() {
		logger.Warn(logger.CategoryMQTT, "publish_skipped", "Not connected to MQTT broker", map[string]interface{}{
			"inspection_id": event.ID.String(),
		})
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.MQTTError("marshal_failed", "Failed to encode inspection event", err, nil)
		return
	}

	topic := p.Topic(event.Team)
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		logger.Warn(logger.CategoryMQTT, "publish_timeout", "MQTT publish timed out", map[string]interface{}{"topic": topic})
		return
	}
	if err := token.Error(); err != nil {
		logger.MQTTError("publish_failed", "Failed to publish inspection", err, map[string]interface{}{"topic": topic})
	}
}

func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
