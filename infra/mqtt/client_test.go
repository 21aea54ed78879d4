package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmobility/urbanev/core/events"
	"github.com/evmobility/urbanev/infra/logger"
	"github.com/evmobility/urbanev/internal/eventbus"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type fakeClient struct {
	mu       sync.Mutex
	payloads map[string][]byte
}

func newFakeClient() *fakeClient {
	return &fakeClient{payloads: make(map[string][]byte)}
}

func (c *fakeClient) IsConnected() bool   { return true }
func (c *fakeClient) Connect() paho.Token { return fakeToken{} }
func (c *fakeClient) Disconnect(uint)     {}
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	c.payloads[topic] = payload.([]byte)
	c.mu.Unlock()
	return fakeToken{}
}

func newTestPublisher(t *testing.T) (*PahoPublisher, *fakeClient) {
	t.Helper()
	fc := newFakeClient()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fc }
	t.Cleanup(func() { newMQTTClient = orig })

	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "test"})
	require.NoError(t, err)
	return pub, fc
}

func TestPublishSessionEvent(t *testing.T) {
	pub, fc := newTestPublisher(t)

	err := pub.PublishSessionEvent(events.SessionEvent{
		Kind:         events.SessionPlugged,
		TimeSeconds:  100,
		PersonID:     "p1",
		VehicleID:    "ev1",
		ChargerID:    "c1",
		PluggedCount: 1,
	})
	require.NoError(t, err)

	payload, ok := fc.payloads["urbanev/sessions/plugged"]
	require.True(t, ok, "expected a message on the plugged topic")

	var msg map[string]any
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "plugged", msg["kind"])
	assert.Equal(t, "ev1", msg["vehicle_id"])
	assert.Equal(t, "c1", msg["charger_id"])
	assert.Equal(t, 100.0, msg["time_s"])
}

func TestTopicPrefixOverride(t *testing.T) {
	fc := newFakeClient()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fc }
	t.Cleanup(func() { newMQTTClient = orig })

	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "test", TopicPrefix: "fleet"})
	require.NoError(t, err)

	require.NoError(t, pub.PublishSessionEvent(events.SessionEvent{Kind: events.SessionUnplugged}))
	_, ok := fc.payloads["fleet/sessions/unplugged"]
	assert.True(t, ok)
}

func TestLoadTLSConfigRequiresAllPaths(t *testing.T) {
	cfg := Config{UseTLS: true, ClientCert: "cert.pem"}
	_, err := cfg.LoadTLSConfig()
	assert.Error(t, err)
}

func TestForwardDrainsBusSubscription(t *testing.T) {
	bus := eventbus.NewTyped[events.SessionEvent]()
	sub := bus.Subscribe()
	mock := NewMockPublisher()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Forward(ctx, mock, sub, logger.NopLogger{})
		close(done)
	}()

	bus.Publish(events.SessionEvent{Kind: events.SessionPlugged, VehicleID: "ev1"})
	bus.Publish(events.SessionEvent{Kind: events.SessionUnplugged, VehicleID: "ev1"})

	assert.Eventually(t, func() bool {
		return len(mock.Published()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestMockPublisherFailure(t *testing.T) {
	mock := NewMockPublisher()
	mock.FailNext = true
	assert.Error(t, mock.PublishSessionEvent(events.SessionEvent{}))
	assert.NoError(t, mock.PublishSessionEvent(events.SessionEvent{}))
	assert.Len(t, mock.Published(), 1)
}
