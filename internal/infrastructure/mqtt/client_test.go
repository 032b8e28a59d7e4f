package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "pairing-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"code issued", Topics{}.CodeIssued(), "pairing/events/code_issued"},
		{"code consumed", Topics{}.CodeConsumed(), "pairing/events/code_consumed"},
		{"system status", Topics{}.SystemStatus(), "pairing/system/status"},
		{"all events", Topics{}.AllEvents(), "pairing/events/+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	t.Run("plain tcp without auth", func(t *testing.T) {
		opts := buildClientOptions(testConfig())

		if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
			t.Errorf("Servers = %v, want tcp://127.0.0.1:1883", opts.Servers)
		}
		if opts.ClientID != "pairing-test" {
			t.Errorf("ClientID = %q", opts.ClientID)
		}
		if opts.Username != "" {
			t.Errorf("Username = %q, want empty", opts.Username)
		}
		if !opts.CleanSession || !opts.AutoReconnect || !opts.ConnectRetry {
			t.Error("expected clean session with auto-reconnect and connect retry")
		}
		if opts.ConnectRetryInterval != time.Second || opts.MaxReconnectInterval != 5*time.Second {
			t.Errorf("reconnect intervals = %v/%v", opts.ConnectRetryInterval, opts.MaxReconnectInterval)
		}
	})

	t.Run("tls with auth", func(t *testing.T) {
		cfg := testConfig()
		cfg.Broker.TLS = true
		cfg.Broker.Port = 8883
		cfg.Auth = config.MQTTAuthConfig{Username: "svc", Password: "pw"}

		opts := buildClientOptions(cfg)

		if opts.Servers[0].String() != "ssl://127.0.0.1:8883" {
			t.Errorf("Server = %v, want ssl://127.0.0.1:8883", opts.Servers[0])
		}
		if opts.Username != "svc" || opts.Password != "pw" {
			t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
		}
		if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
			t.Error("expected TLS config with minimum version TLS 1.2")
		}
	})
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "pairing-test")

	if !opts.WillEnabled || !opts.WillRetained || opts.WillQos != 1 {
		t.Errorf("will enabled=%v retained=%v qos=%d", opts.WillEnabled, opts.WillRetained, opts.WillQos)
	}
	if want := (Topics{}).SystemStatus(); opts.WillTopic != want {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}

	var status statusPayload
	if err := json.Unmarshal(opts.WillPayload, &status); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if status.Status != "offline" || status.Reason != "unexpected_disconnect" || status.ClientID != "pairing-test" {
		t.Errorf("will payload = %+v", status)
	}
}

func TestBuildStatusPayload(t *testing.T) {
	var status map[string]any
	if err := json.Unmarshal(buildStatusPayload("online", "c1", ""), &status); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if status["status"] != "online" || status["client_id"] != "c1" {
		t.Errorf("payload = %v", status)
	}
	if _, ok := status["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
	if _, err := time.Parse(time.RFC3339, status["timestamp"].(string)); err != nil {
		t.Errorf("timestamp not RFC3339: %v", err)
	}
}

func TestPublish_Validation(t *testing.T) {
	c := &Client{cfg: testConfig()}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("{}"), 1, ErrInvalidTopic},
		{"invalid qos", "pairing/x", []byte("{}"), 3, ErrInvalidQoS},
		{"payload too large", "pairing/x", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "pairing/x", []byte("{}"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPublishEvent_EncodeError(t *testing.T) {
	c := &Client{cfg: testConfig()}

	err := c.PublishEvent(Topics{}.CodeIssued(), map[string]any{"bad": make(chan int)})
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("PublishEvent() error = %v, want ErrPublishFailed", err)
	}
}

func TestDisconnectedClient(t *testing.T) {
	c := &Client{cfg: testConfig()}

	if c.IsConnected() {
		t.Error("IsConnected() = true for unconnected client")
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

func TestHandleDisconnect_Callback(t *testing.T) {
	c := &Client{cfg: testConfig(), connected: true}

	var got error
	c.SetOnDisconnect(func(err error) { got = err })

	lost := errors.New("broker went away")
	c.handleDisconnect(lost)

	if !errors.Is(got, lost) {
		t.Errorf("callback error = %v, want %v", got, lost)
	}
	if c.connected {
		t.Error("connected flag still set after disconnect")
	}
}
