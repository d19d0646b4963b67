package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/services"
)

func TestDispatchRunsHandlerForRemoteMessage(t *testing.T) {
	bus := &InvalidationBus{instanceID: "local"}
	var engineCalls, configCalls int
	handlers := map[services.InvalidationTopic]func(){
		services.TopicEngine: func() { engineCalls++ },
		services.TopicConfig: func() { configCalls++ },
	}

	payload, err := encodeInvalidation(services.TopicEngine, "remote")
	require.NoError(t, err)

	assert.True(t, bus.dispatch(payload, handlers))
	assert.Equal(t, 1, engineCalls)
	assert.Zero(t, configCalls)
}

func TestDispatchIgnoresOwnMessages(t *testing.T) {
	bus := &InvalidationBus{instanceID: "local"}
	called := false
	handlers := map[services.InvalidationTopic]func(){
		services.TopicConfig: func() { called = true },
	}

	payload, err := encodeInvalidation(services.TopicConfig, "local")
	require.NoError(t, err)

	assert.False(t, bus.dispatch(payload, handlers))
	assert.False(t, called)
}

func TestDispatchIgnoresUnknownAndMalformed(t *testing.T) {
	bus := &InvalidationBus{instanceID: "local"}
	handlers := map[services.InvalidationTopic]func(){}

	payload, err := encodeInvalidation("something-else", "remote")
	require.NoError(t, err)
	assert.False(t, bus.dispatch(payload, handlers))
	assert.False(t, bus.dispatch("{not json", handlers))
}

func TestNopBus(t *testing.T) {
	var pub services.InvalidationPublisher = NopBus{}
	assert.NoError(t, pub.Publish(context.Background(), services.TopicEngine))
}
