package mqtt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// newTestClient returns a disconnected client suitable for exercising
// validation paths without a broker.
func newTestClient() *Client {
	return &Client{
		subscriptions: make(map[string]subscription),
	}
}

func TestCloseZeroValue(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero-value client error = %v, want nil", err)
	}
}

func TestPublishValidation(t *testing.T) {
	client := newTestClient()

	if err := client.Publish("", []byte("{}")); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish with empty topic = %v, want ErrInvalidTopic", err)
	}

	big := make([]byte, maxPayloadSize+1)
	if err := client.Publish("bot/device_1/from_clients", big); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish with oversized payload = %v, want ErrPublishFailed", err)
	}

	if err := client.Publish("bot/device_1/from_clients", []byte("{}")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish while disconnected = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := newTestClient()
	handler := func(string, []byte) error { return nil }

	if err := client.Subscribe("", handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe with empty topic = %v, want ErrInvalidTopic", err)
	}

	if err := client.Subscribe("bot/device_1/status", nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe with nil handler = %v, want ErrSubscribeFailed", err)
	}

	if err := client.Subscribe("bot/device_1/status", handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe while disconnected = %v, want ErrNotConnected", err)
	}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after failed subscribes, want 0", client.SubscriptionCount())
	}
}

func TestUnsubscribeValidation(t *testing.T) {
	client := newTestClient()

	if err := client.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe with empty topic = %v, want ErrInvalidTopic", err)
	}

	if err := client.Unsubscribe("bot/device_1/status"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe while disconnected = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := newTestClient()

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := newTestClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() with cancelled context = %v, want context.Canceled", err)
	}
}

func TestConnectionCallbacks(t *testing.T) {
	client := newTestClient()

	var mu sync.Mutex
	var connects int
	var lastErr error

	client.SetOnConnect(func() {
		mu.Lock()
		connects++
		mu.Unlock()
	})
	client.SetOnDisconnect(func(err error) {
		mu.Lock()
		lastErr = err
		mu.Unlock()
	})

	client.handleConnect()
	client.handleDisconnect(errors.New("broken pipe"))

	mu.Lock()
	defer mu.Unlock()
	if connects != 1 {
		t.Errorf("connect callback fired %d times, want 1", connects)
	}
	if lastErr == nil || lastErr.Error() != "broken pipe" {
		t.Errorf("disconnect callback error = %v, want broken pipe", lastErr)
	}
}

// capturingLogger records warn/error calls for assertions.
type capturingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *capturingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *capturingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func TestWrapHandlerRecoversPanic(t *testing.T) {
	client := newTestClient()
	logger := &capturingLogger{}
	client.SetLogger(logger)

	wrapped := client.wrapHandler(func(string, []byte) error {
		panic("boom")
	})

	// Must not propagate the panic.
	wrapped(nil, fakeMessage{topic: "bot/device_1/status", payload: []byte("{}")})

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.errors) != 1 || !strings.Contains(logger.errors[0], "panic") {
		t.Errorf("panic was not logged: %v", logger.errors)
	}
}

func TestWrapHandlerLogsHandlerError(t *testing.T) {
	client := newTestClient()
	logger := &capturingLogger{}
	client.SetLogger(logger)

	wrapped := client.wrapHandler(func(string, []byte) error {
		return errors.New("bad payload")
	})

	wrapped(nil, fakeMessage{topic: "bot/device_1/logs", payload: []byte("{")})

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.warns) != 1 {
		t.Errorf("handler error was not logged: %v", logger.warns)
	}
}

// fakeMessage implements the paho Message interface for handler tests.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}
