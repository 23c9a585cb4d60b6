package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/eddielth/check-sensorprobe/config"
	"github.com/eddielth/check-sensorprobe/logger"
	"github.com/eddielth/check-sensorprobe/storage"
)

// Publisher sends check results to an MQTT broker. It implements
// storage.StorageBackend so it can sit next to the archives.
type Publisher struct {
	client  paho.Client
	config  config.MQTTConfig
	timeout time.Duration
}

// Message is the payload published for one check run.
type Message struct {
	Host      string          `json:"host"`
	CheckedAt int64           `json:"checked_at"`
	Severity  string          `json:"severity"`
	ExitCode  int             `json:"exit_code"`
	Output    string          `json:"output"`
	Sensors   json.RawMessage `json:"sensors,omitempty"`
}

// NewPublisher creates a publisher; Connect must be called before use
func NewPublisher(cfg config.MQTTConfig) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address cannot be empty")
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)

	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("check-sensorprobe-%d", time.Now().UnixNano())
	}
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	// A check run is short lived: never reconnect in the background.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("MQTT connection lost: %v", err)
	})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts.SetConnectTimeout(timeout)

	return &Publisher{
		client:  paho.NewClient(opts),
		config:  cfg,
		timeout: timeout,
	}, nil
}

// Connect connects to the MQTT broker
func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("connection to MQTT broker timed out")
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to MQTT broker %s: %w", p.config.Broker, err)
	}

	logger.Debug("connected to MQTT broker: %s", p.config.Broker)
	return nil
}

// Store publishes the result
func (p *Publisher) Store(res storage.Result) error {
	payload, err := NewMessage(res)
	if err != nil {
		return err
	}

	topic := Topic(p.config.Topic, res.Host)
	token := p.client.Publish(topic, p.config.QoS, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish to topic %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to topic %s: %w", topic, err)
	}

	logger.Debug("published result to topic: %s", topic)
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() error {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
	return nil
}

// NewMessage encodes a result as the published JSON payload.
func NewMessage(res storage.Result) ([]byte, error) {
	if res.Report == nil {
		return nil, fmt.Errorf("result for %s has no report", res.Host)
	}

	msg := Message{
		Host:      res.Host,
		CheckedAt: res.CheckedAt.Unix(),
		Severity:  res.Report.Severity.String(),
		ExitCode:  res.Report.ExitCode(),
		Output:    strings.TrimRight(res.Report.String(), "\n"),
	}

	if len(res.Report.Sensors) > 0 {
		sensors, err := json.Marshal(res.Report.Sensors)
		if err != nil {
			return nil, fmt.Errorf("serialize sensors: %w", err)
		}
		msg.Sensors = sensors
	}

	return json.Marshal(msg)
}

// Topic expands {host} in the configured topic template.
// Characters with a meaning in MQTT topics are replaced.
func Topic(template, host string) string {
	if template == "" {
		template = "sensorprobe/{host}"
	}
	clean := strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(host)
	return strings.ReplaceAll(template, "{host}", clean)
}
