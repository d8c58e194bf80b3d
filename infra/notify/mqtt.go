package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/loadaxis/fleetopt/core/fleet"
	"github.com/loadaxis/fleetopt/infra/logger"
)

// MQTTConfig defines the connection parameters for the Paho MQTT sink.
type MQTTConfig struct {
	Broker      string `json:"broker" yaml:"broker"`
	ClientID    string `json:"client_id" yaml:"client_id"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix"`
	QoS         byte   `json:"qos" yaml:"qos"`
}

// MQTTSink publishes notifications to per-channel MQTT topics, primarily the
// driver-app channel.
type MQTTSink struct {
	cli    paho.Client
	prefix string
	qos    byte
	log    logger.Logger
}

// NewMQTTSink connects to the broker.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "fleetopt/notifications"
	}
	log := logger.New("mqtt-notify")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("notify: mqtt connect: %w", token.Error())
	}
	return &MQTTSink{cli: cli, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

type mqttMessage struct {
	ID      string            `json:"id"`
	Channel string            `json:"channel"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
	SentAt  int64             `json:"sent_at"`
}

// Notify publishes the message on <prefix>/<channel>. The context deadline
// bounds the wait for the broker acknowledgment.
func (s *MQTTSink) Notify(ctx context.Context, ch fleet.Channel, message string, meta map[string]string) error {
	payload, err := json.Marshal(mqttMessage{
		ID:      uuid.NewString(),
		Channel: string(ch),
		Message: message,
		Meta:    meta,
		SentAt:  time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("%s/%s", s.prefix, ch)
	token := s.cli.Publish(topic, s.qos, false, payload)

	deadline := 5 * time.Second
	if d, ok := ctx.Deadline(); ok {
		deadline = time.Until(d)
	}
	if !token.WaitTimeout(deadline) {
		return fmt.Errorf("notify: mqtt publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("notify: mqtt publish to %s: %w", topic, err)
	}
	s.log.Debugf("published notification to %s", topic)
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
}
