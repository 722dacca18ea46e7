// Package mqtt pushes the current estimate to an MQTT broker so that home
// automation dashboards can mirror the gauge.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/lbarthe/socwatch/core/format"
	"github.com/lbarthe/socwatch/core/state"
	"github.com/lbarthe/socwatch/infra/logger"
)

// Config defines the connection parameters for the estimate publisher.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
	Retain   bool   `json:"retain"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "socwatch"
	}
	if c.Topic == "" {
		c.Topic = "socwatch/estimate"
	}
}

// Validate checks mandatory fields when the publisher is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	return nil
}

// payload is the wire form of a published estimate.
type payload struct {
	Status       string  `json:"status"`
	GaugePercent float64 `json:"gauge_percent"`
	NetPower     string  `json:"net_power"`
	Remaining    string  `json:"remaining"`
	Headroom     string  `json:"headroom"`
	TimeToFull   string  `json:"time_to_full"`
	TimeToEmpty  string  `json:"time_to_empty"`
	FullAt       string  `json:"full_at,omitempty"`
	EmptyAt      string  `json:"empty_at,omitempty"`
	Time         string  `json:"time"`
}

// Payload renders an update as the JSON message published on the topic.
func Payload(up state.Update) ([]byte, error) {
	est := up.Estimate
	return json.Marshal(payload{
		Status:       est.Status.String(),
		GaugePercent: est.GaugePercent,
		NetPower:     format.Power(est.NetPowerKW),
		Remaining:    format.Energy(est.RemainingKWh),
		Headroom:     format.Energy(est.HeadroomKWh),
		TimeToFull:   format.Duration(est.TimeToFullHours),
		TimeToEmpty:  format.Duration(est.TimeToEmptyHours),
		FullAt:       format.Clock(up.Time, est.TimeToFullHours),
		EmptyAt:      format.Clock(up.Time, est.TimeToEmptyHours),
		Time:         up.Time.Format(time.RFC3339),
	})
}

// Publisher publishes estimate updates over MQTT. Messages are retained by
// default so late subscribers immediately see the last value.
type Publisher struct {
	cli    paho.Client
	topic  string
	qos    byte
	retain bool
	log    logger.Logger
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	log := logger.New("mqtt-publisher")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected") }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Warnf("MQTT connection lost: %v", err) }

	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Publisher{cli: cli, topic: cfg.Topic, qos: cfg.QoS, retain: cfg.Retain, log: log}, nil
}

// PublishUpdate sends the update on the configured topic.
func (p *Publisher) PublishUpdate(up state.Update) error {
	b, err := Payload(up)
	if err != nil {
		return err
	}
	if token := p.cli.Publish(p.topic, p.qos, p.retain, b); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt publish: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.cli.Disconnect(250)
}
