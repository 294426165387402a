package mqtt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/ets2ha/internal/infrastructure/config"
)

// testConfig returns an MQTT configuration pointing at a port nothing
// listens on. No test in this file needs a running broker.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1,
			ClientID: "ets2ha-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// =============================================================================
// Option Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *config.MQTTConfig)
		wantURL   string
		wantUser  string
		wantTLS   bool
		wantClean bool
	}{
		{
			name:      "plain tcp",
			mutate:    func(*config.MQTTConfig) {},
			wantURL:   "tcp://127.0.0.1:1",
			wantClean: true,
		},
		{
			name: "tls with credentials",
			mutate: func(c *config.MQTTConfig) {
				c.Broker.TLS = true
				c.Broker.Port = 8883
				c.Auth.Username = "user"
				c.Auth.Password = "secret"
			},
			wantURL:   "ssl://127.0.0.1:8883",
			wantUser:  "user",
			wantTLS:   true,
			wantClean: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			opts := buildClientOptions(cfg)

			if len(opts.Servers) != 1 || opts.Servers[0].String() != tt.wantURL {
				t.Errorf("Servers = %v, want %s", opts.Servers, tt.wantURL)
			}
			if opts.ClientID != "ets2ha-test" {
				t.Errorf("ClientID = %q", opts.ClientID)
			}
			if opts.Username != tt.wantUser {
				t.Errorf("Username = %q, want %q", opts.Username, tt.wantUser)
			}
			if (opts.TLSConfig != nil) != tt.wantTLS {
				t.Errorf("TLSConfig set = %v, want %v", opts.TLSConfig != nil, tt.wantTLS)
			}
			if opts.CleanSession != tt.wantClean {
				t.Errorf("CleanSession = %v", opts.CleanSession)
			}
			if opts.ConnectRetry {
				t.Error("ConnectRetry should be off")
			}
			if opts.MaxReconnectInterval != 5*time.Second {
				t.Errorf("MaxReconnectInterval = %v", opts.MaxReconnectInterval)
			}
		})
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, Topics{Root: "house"}, "ets2ha-test")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false")
	}
	if opts.WillTopic != "house/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	if !opts.WillRetained || opts.WillQos != 1 {
		t.Errorf("WillRetained = %v, WillQos = %d", opts.WillRetained, opts.WillQos)
	}
	if !strings.Contains(string(opts.WillPayload), `"reason":"unexpected_disconnect"`) {
		t.Errorf("WillPayload = %s", opts.WillPayload)
	}
}

func TestStatusPayloads(t *testing.T) {
	if p := buildOnlinePayload("c1"); !strings.Contains(p, `"status":"online"`) || !strings.Contains(p, `"client_id":"c1"`) {
		t.Errorf("online payload = %s", p)
	}
	if p := buildOfflinePayload("c1"); !strings.Contains(p, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload = %s", p)
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect_BrokerRefused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := Connect(ctx, testConfig(), Topics{})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig()
	cfg.Broker.Host = "192.0.2.1" // TEST-NET-1, never routed
	cfg.Broker.Port = 1883

	_, err := Connect(ctx, cfg, Topics{})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestCloseNil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	c := &Client{}
	if c.IsConnected() {
		t.Error("IsConnected() = true for new client")
	}
}

func TestHealthCheck(t *testing.T) {
	c := &Client{}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

// =============================================================================
// Publish Tests
// =============================================================================

func TestPublish_Validation(t *testing.T) {
	c := &Client{cfg: testConfig()}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid QoS", "ets2ha/config/linknx", []byte("x"), 3, ErrInvalidQoS},
		{"payload too large", "ets2ha/config/linknx", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "ets2ha/config/linknx", []byte("x"), 1, ErrNotConnected},
		{"nil payload not connected", "ets2ha/config/linknx", nil, 0, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := c.PublishRetained("ets2ha/config/homeass", []byte("knx: {}"), 1); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishRetained() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"status default root", Topics{}.Status(), "ets2ha/status"},
		{"status custom root", Topics{Root: "home/knx"}.Status(), "home/knx/status"},
		{"trailing slash", Topics{Root: "home/knx/"}.Artifact("linknx"), "home/knx/config/linknx"},
		{"artifact", Topics{}.Artifact("homeass"), "ets2ha/config/homeass"},
		{"run", Topics{}.Run("abc"), "ets2ha/run/abc"},
		{"all artifacts", Topics{}.AllArtifacts(), "ets2ha/config/+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
