// Package mqtt publishes capacity reports on an MQTT broker with Eclipse Paho.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/evstation/core/events"
	"github.com/kilianp07/evstation/core/model"
	coremqtt "github.com/kilianp07/evstation/core/mqtt"
	"github.com/kilianp07/evstation/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// AlertPayload is the JSON document published for each report.
type AlertPayload struct {
	ReportID     string                 `json:"report_id"`
	VehicleType  model.VehicleType      `json:"vehicle_type"`
	Tier         string                 `json:"tier"`
	Message      string                 `json:"message"`
	HorizonStart time.Time              `json:"horizon_start"`
	HorizonHours int                    `json:"horizon_hours"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Results      []model.OverloadResult `json:"results"`
}

// NewAlertPayload flattens a report event into its published form.
func NewAlertPayload(ev events.ReportEvent) AlertPayload {
	results := ev.Report.Results
	if results == nil {
		results = []model.OverloadResult{}
	}
	return AlertPayload{
		ReportID:     ev.ID,
		VehicleType:  ev.VehicleType,
		Tier:         ev.Report.Tier(),
		Message:      ev.Report.Message,
		HorizonStart: ev.Start,
		HorizonHours: ev.Horizon,
		GeneratedAt:  ev.Time,
		Results:      results,
	}
}

// PahoPublisher implements coremqtt.AlertPublisher on top of Paho.
type PahoPublisher struct {
	cli         pahoClient
	prefix      string
	qos         byte
	retain      bool
	statusTopic string
	maxRetries  int
	backoff     time.Duration
	logger      logger.Logger
}

// NewPahoPublisher connects to the broker described by cfg.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &PahoPublisher{
		prefix:      cfg.TopicPrefix,
		qos:         cfg.QoS,
		retain:      cfg.Retain,
		statusTopic: cfg.StatusTopic,
		maxRetries:  cfg.MaxRetries,
		backoff:     time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:      log,
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if p.statusTopic != "" {
			c.Publish(p.statusTopic, p.qos, true, "online")
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds Paho client options from Config.
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
	if cfg.StatusTopic != "" {
		opts.SetWill(cfg.StatusTopic, "offline", cfg.QoS, true)
	}
	return opts, nil
}

// Topic returns the topic reports for vt are published on.
func (p *PahoPublisher) Topic(vt model.VehicleType) string {
	return p.prefix + "/" + vt.String()
}

// PublishReport publishes the report with exponential backoff between
// attempts. It gives up early when ctx is done.
func (p *PahoPublisher) PublishReport(ctx context.Context, ev events.ReportEvent) error {
	payload, err := json.Marshal(NewAlertPayload(ev))
	if err != nil {
		return err
	}
	topic := p.Topic(ev.VehicleType)

	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Infow("published capacity report", map[string]any{
				"report_id": ev.ID,
				"topic":     topic,
				"tier":      ev.Report.Tier(),
			})
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %w", coremqtt.ErrPublishFailed, topic, ctx.Err())
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("%w: %s: %w", coremqtt.ErrPublishFailed, topic, publishErr)
}

// Close publishes the offline status and disconnects.
func (p *PahoPublisher) Close() {
	if p.cli == nil {
		return
	}
	if p.statusTopic != "" && p.cli.IsConnected() {
		p.cli.Publish(p.statusTopic, p.qos, true, "offline").WaitTimeout(time.Second)
	}
	p.cli.Disconnect(250)
}

var _ coremqtt.AlertPublisher = (*PahoPublisher)(nil)
