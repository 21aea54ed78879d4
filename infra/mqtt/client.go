package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/evmobility/urbanev/core/events"
	"github.com/evmobility/urbanev/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool        `json:"enabled"`
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	TLSConfig   *tls.Config `json:"-"`
}

// Publisher pushes charging session events to an external consumer.
type Publisher interface {
	PublishSessionEvent(ev events.SessionEvent) error
	Disconnect()
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher implements Publisher using Eclipse Paho.
type PahoPublisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPahoPublisher connects to the MQTT broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_client")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = "urbanev"
	}
	return &PahoPublisher{cli: c, prefix: prefix, qos: cfg.QoS, log: log}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// PublishSessionEvent sends one session event as JSON to the kind-specific
// topic, e.g. "urbanev/sessions/plugged".
func (p *PahoPublisher) PublishSessionEvent(ev events.SessionEvent) error {
	msg := struct {
		Kind         string  `json:"kind"`
		TimeSeconds  float64 `json:"time_s"`
		PersonID     string  `json:"person_id"`
		VehicleID    string  `json:"vehicle_id"`
		ChargerID    string  `json:"charger_id,omitempty"`
		PluggedCount int     `json:"plugged_count"`
		SentAt       int64   `json:"sent_at"`
	}{
		Kind:         ev.Kind.String(),
		TimeSeconds:  ev.TimeSeconds,
		PersonID:     ev.PersonID,
		VehicleID:    ev.VehicleID,
		ChargerID:    ev.ChargerID,
		PluggedCount: ev.PluggedCount,
		SentAt:       time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/sessions/%s", p.prefix, ev.Kind)
	token := p.cli.Publish(topic, p.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		p.log.Errorf("publish to %s failed: %v", topic, err)
		return err
	}
	return nil
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

// Forward drains a session event channel into the publisher until the
// context is cancelled or the channel closes. Intended to run in its own
// goroutine next to an eventbus subscription.
func Forward(ctx context.Context, pub Publisher, ch <-chan events.SessionEvent, log logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := pub.PublishSessionEvent(ev); err != nil {
				log.Errorf("session event publish: %v", err)
			}
		}
	}
}
