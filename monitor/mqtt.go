// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
)

// publisher is the part of paho.Client used by MQTTSink.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// MQTTSink publishes each quantity of a sample as JSON on
// <topic_prefix>/<kind>.
type MQTTSink struct {
	// Timeout bounds the wait for each publish acknowledgement.
	Timeout time.Duration

	client publisher
	prefix string
	qos    byte
	retain bool
}

// DefaultMQTTTimeout is the publish and connect timeout of NewMQTTSink.
const DefaultMQTTTimeout = 5 * time.Second

// NewMQTTSink connects to the broker in cfg.
//
// When cfg.ClientID is empty, a client id derived from the machine id is
// used so the broker keeps the same session across restarts.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	if cfg.Broker == "" {
		return nil, errors.New("monitor: mqtt broker is required")
	}
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker).
		SetClientID(clientID(cfg.ClientID)).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(DefaultMQTTTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	c := paho.NewClient(opts)
	token := c.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("monitor: connecting to %s: %w", cfg.Broker, err)
	}
	return newMQTTSink(c, cfg), nil
}

func newMQTTSink(c publisher, cfg MQTTConfig) *MQTTSink {
	return &MQTTSink{
		Timeout: DefaultMQTTTimeout,
		client:  c,
		prefix:  cfg.TopicPrefix,
		qos:     cfg.QoS,
		retain:  cfg.Retain,
	}
}

func (m *MQTTSink) String() string {
	return "mqtt"
}

// Publish implements Sink.
func (m *MQTTSink) Publish(ctx context.Context, s Sample) error {
	for _, r := range s.readings() {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("monitor: encoding %s: %w", r.Kind, err)
		}
		topic := m.prefix + "/" + r.Kind
		token := m.client.Publish(topic, m.qos, m.retain, payload)
		if !token.WaitTimeout(m.Timeout) {
			return fmt.Errorf("monitor: publishing %s: timed out", topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("monitor: publishing %s: %w", topic, err)
		}
	}
	return nil
}

// Close implements Sink.
func (m *MQTTSink) Close() error {
	m.client.Disconnect(250)
	return nil
}

// clientID returns id, or one derived from the machine id when empty.
func clientID(id string) string {
	if id != "" {
		return id
	}
	mid, err := machineid.ProtectedID("mt8060mon")
	if err != nil || len(mid) < 12 {
		return "mt8060mon"
	}
	return "mt8060mon-" + mid[:12]
}
