package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/dto"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient overrides the methods the publisher uses; the embedded
// interface panics on anything else.
type fakeClient struct {
	paho.Client
	mu        sync.Mutex
	connected bool
	messages  []published
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{}
}

func TestTopicSanitizesTeam(t *testing.T) {
	p := NewPublisher(&fakeClient{}, "/factory/")
	assert.Equal(t, "factory/Default Team/inspections", p.Topic("Default Team"))
	assert.Equal(t, "factory/line_1___/inspections", p.Topic("line/1/#+/"))
	assert.Equal(t, "factory/a_b_c/inspections", p.Topic("a+b#c"))
}

func TestPublishInspection(t *testing.T) {
	client := &fakeClient{connected: true}
	p := NewPublisher(client, "screw-inspection")

	event := dto.InspectionEvent{
		Type:          "inspection.created",
		ID:            uuid.New(),
		ModelName:     "AC-100",
		Team:          "Line A",
		Status:        "NG",
		DetectedCount: 22,
		ExpectedCount: 24,
		Delta:         2,
	}
	p.PublishInspection(context.Background(), event)

	require.Len(t, client.messages, 1)
	msg := client.messages[0]
	assert.Equal(t, "screw-inspection/Line A/inspections", msg.topic)
	assert.Equal(t, byte(1), msg.qos)

	var got dto.InspectionEvent
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, 2, got.Delta)
}

func TestPublishSkippedWhileDisconnected(t *testing.T) {
	client := &fakeClient{connected: false}
	NewPublisher(client, "p").PublishInspection(context.Background(), dto.InspectionEvent{Team: "t"})
	assert.Empty(t, client.messages)
}
