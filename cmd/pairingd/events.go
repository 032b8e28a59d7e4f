package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/pairing-core/internal/api"
	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
	"github.com/nerrad567/pairing-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/pairing-core/internal/infrastructure/logging"
	"github.com/nerrad567/pairing-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/pairing-core/internal/pairing"
)

// issuedEvent is the MQTT payload for pairing/events/code_issued.
// It never carries the code or the token.
type issuedEvent struct {
	PackagingType string `json:"packaging_type,omitempty"`
	Attempts      int    `json:"attempts"`
	ExpiresIn     int    `json:"expires_in"`
	Timestamp     string `json:"timestamp"`
}

// consumedEvent is the MQTT payload for pairing/events/code_consumed.
type consumedEvent struct {
	PackagingType string `json:"packaging_type,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// eventSink fans issuer callbacks out to MQTT and InfluxDB. Either backend
// may be absent. MQTT publishes run off the request path.
type eventSink struct {
	mqtt   *mqtt.Client
	influx *influxdb.Client
	log    *logging.Logger
	wg     sync.WaitGroup
}

// connectEventSink connects the enabled event backends.
func connectEventSink(ctx context.Context, cfg *config.Config, log *logging.Logger) (*eventSink, error) {
	sink := &eventSink{log: log}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		client.SetLogger(log)
		client.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		client.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		sink.mqtt = client
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		sink.Close()
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		client.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		sink.influx = client
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	return sink, nil
}

// attach registers the sink's callbacks on issuer.
func (e *eventSink) attach(issuer *pairing.Issuer) {
	issuer.SetOnIssued(e.issued)
	issuer.SetOnConsumed(e.consumed)
}

func (e *eventSink) issued(s *pairing.Session, attempts int) {
	if e.influx != nil {
		e.influx.WritePairingIssuance(s.PackagingType, attempts)
	}
	e.publish(mqtt.Topics{}.CodeIssued(), issuedEvent{
		PackagingType: s.PackagingType,
		Attempts:      attempts,
		ExpiresIn:     s.Expiration,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (e *eventSink) consumed(s *pairing.Session) {
	if e.influx != nil {
		e.influx.WritePairingConsumption(s.PackagingType)
	}
	e.publish(mqtt.Topics{}.CodeConsumed(), consumedEvent{
		PackagingType: s.PackagingType,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (e *eventSink) publish(topic string, v any) {
	if e.mqtt == nil {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.mqtt.PublishEvent(topic, v); err != nil {
			e.log.Warn("pairing event publish failed", "topic", topic, "error", err)
		}
	}()
}

// healthCheck verifies the connected backends.
func (e *eventSink) healthCheck(ctx context.Context) error {
	if e.mqtt != nil {
		if err := e.mqtt.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if e.influx != nil {
		if err := e.influx.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}

// mqttReporter returns the MQTT client for metrics, or nil when disabled.
// The explicit nil keeps a nil *mqtt.Client out of the interface.
func (e *eventSink) mqttReporter() api.ConnectionReporter {
	if e.mqtt == nil {
		return nil
	}
	return e.mqtt
}

// Close waits for in-flight publishes and closes both backends.
func (e *eventSink) Close() {
	e.wg.Wait()
	if e.influx != nil {
		e.log.Info("closing InfluxDB connection")
		e.influx.Flush()
		if err := e.influx.Close(); err != nil {
			e.log.Error("error closing InfluxDB", "error", err)
		}
	}
	if e.mqtt != nil {
		e.log.Info("disconnecting from MQTT")
		if err := e.mqtt.Close(); err != nil {
			e.log.Error("error closing MQTT", "error", err)
		}
	}
}
