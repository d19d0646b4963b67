package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	fws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"screw-inspection/domain/dto"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closes   int
	closed   bool
	failNext bool
	written  chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{written: make(chan struct{}, 16)}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext {
		return errors.New("broken pipe")
	}
	switch messageType {
	case fws.TextMessage:
		c.messages = append(c.messages, data)
		c.written <- struct{}{}
	case fws.CloseMessage:
		c.closes++
	}
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) texts() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

func waitWritten(t *testing.T, c *fakeConn) {
	t.Helper()
	select {
	case <-c.written:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not written")
	}
}

func waitDone(t *testing.T, client *Client) {
	t.Helper()
	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not stop")
	}
}

func TestPublishInspectionReachesOnlyTeam(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager()
	lineA, lineB := newFakeConn(), newFakeConn()
	a := m.Register(lineA, uuid.New(), "Line A")
	b := m.Register(lineB, uuid.New(), "Line B")

	event := dto.InspectionEvent{Type: "inspection.created", ID: uuid.New(), Team: "Line A", Status: "OK"}
	m.PublishInspection(context.Background(), event)
	waitWritten(t, lineA)

	require.Len(t, lineA.texts(), 1)
	var got dto.InspectionEvent
	require.NoError(t, json.Unmarshal(lineA.texts()[0], &got))
	assert.Equal(t, event.ID, got.ID)
	assert.Empty(t, lineB.texts())

	m.Unregister(a)
	m.Unregister(b)
	waitDone(t, a)
	waitDone(t, b)
	assert.Equal(t, 1, lineA.closes)
	assert.True(t, lineA.closed)
}

func TestUnregisterTwiceIsSafe(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager()
	client := m.Register(newFakeConn(), uuid.New(), "Default Team")
	assert.Equal(t, 1, m.ClientCount("Default Team"))

	m.Unregister(client)
	m.Unregister(client)
	waitDone(t, client)
	assert.Zero(t, m.ClientCount("Default Team"))
}

func TestSlowClientIsDropped(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager()
	conn := newFakeConn()
	conn.failNext = true
	client := m.Register(conn, uuid.New(), "Line A")

	// the first write fails and stops the writer, so the buffer fills up
	m.BroadcastToTeam("Line A", []byte("x"))
	waitDone(t, client)
	for i := 0; i < sendBuffer; i++ {
		m.BroadcastToTeam("Line A", []byte("x"))
	}
	assert.Zero(t, m.BroadcastToTeam("Line A", []byte("x")))
	assert.Zero(t, m.ClientCount("Line A"))
}

func TestShutdownStopsAllWriters(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager()
	var clients []*Client
	for i := 0; i < 3; i++ {
		clients = append(clients, m.Register(newFakeConn(), uuid.New(), "team"))
	}
	m.Shutdown()
	for _, c := range clients {
		waitDone(t, c)
	}
	assert.Zero(t, m.ClientCount("team"))
}
