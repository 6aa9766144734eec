// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// Config is the YAML configuration of the monitor daemon.
type Config struct {
	Sensor   SensorConfig `yaml:"sensor"`
	MQTT     MQTTConfig   `yaml:"mqtt"`
	InfluxDB InfluxConfig `yaml:"influxdb"`
	Gauge    GaugeConfig  `yaml:"gauge"`
	Panel    PanelConfig  `yaml:"panel"`
	LogLevel string       `yaml:"log_level"`
}

// SensorConfig selects the pins the sensor is wired to.
type SensorConfig struct {
	// Name tags every published sample.
	Name     string        `yaml:"name"`
	ClockPin string        `yaml:"clock_pin"`
	DataPin  string        `yaml:"data_pin"`
	Interval time.Duration `yaml:"interval"`
}

// MQTTConfig enables the MQTT sink when Broker is set.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
	Retain      bool   `yaml:"retain"`
}

// InfluxConfig enables the InfluxDB sink when URL is set.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// GaugeConfig enables the terminal bar.
type GaugeConfig struct {
	Enabled bool `yaml:"enabled"`
	Width   int  `yaml:"width"`
}

// PanelConfig enables the PNG snapshot when Path is set.
type PanelConfig struct {
	Path     string  `yaml:"path"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	FontSize float64 `yaml:"font_size"`
}

// DefaultConfig is the configuration used for fields left empty.
var DefaultConfig = Config{
	Sensor: SensorConfig{
		Name:     "mt8060",
		ClockPin: "GPIO17",
		DataPin:  "GPIO27",
		Interval: 10 * time.Second,
	},
	MQTT: MQTTConfig{
		TopicPrefix: "mt8060",
	},
	Gauge: GaugeConfig{
		Width: 40,
	},
	Panel: PanelConfig{
		Width:    128,
		Height:   64,
		FontSize: 14,
	},
	LogLevel: "info",
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("monitor: reading config: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML configuration, fills in defaults and validates it.
//
// Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return nil, fmt.Errorf("monitor: parsing config: %w", err)
	}
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) setDefaults() {
	d := &DefaultConfig
	if c.Sensor.Name == "" {
		c.Sensor.Name = d.Sensor.Name
	}
	if c.Sensor.ClockPin == "" {
		c.Sensor.ClockPin = d.Sensor.ClockPin
	}
	if c.Sensor.DataPin == "" {
		c.Sensor.DataPin = d.Sensor.DataPin
	}
	if c.Sensor.Interval == 0 {
		c.Sensor.Interval = d.Sensor.Interval
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = d.MQTT.TopicPrefix
	}
	c.MQTT.TopicPrefix = strings.TrimSuffix(c.MQTT.TopicPrefix, "/")
	if c.Gauge.Width == 0 {
		c.Gauge.Width = d.Gauge.Width
	}
	if c.Panel.Width == 0 {
		c.Panel.Width = d.Panel.Width
	}
	if c.Panel.Height == 0 {
		c.Panel.Height = d.Panel.Height
	}
	if c.Panel.FontSize == 0 {
		c.Panel.FontSize = d.Panel.FontSize
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate returns an error describing the first invalid field.
func (c *Config) Validate() error {
	if c.Sensor.ClockPin == c.Sensor.DataPin {
		return fmt.Errorf("monitor: clock_pin and data_pin are both %q", c.Sensor.ClockPin)
	}
	if c.Sensor.Interval <= 0 {
		return fmt.Errorf("monitor: invalid interval %s", c.Sensor.Interval)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("monitor: invalid mqtt qos %d", c.MQTT.QoS)
	}
	if c.InfluxDB.URL != "" && (c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "") {
		return errors.New("monitor: influxdb requires org and bucket")
	}
	if c.Gauge.Width < 0 {
		return fmt.Errorf("monitor: invalid gauge width %d", c.Gauge.Width)
	}
	if c.Panel.Width < 0 || c.Panel.Height < 0 {
		return fmt.Errorf("monitor: invalid panel size %dx%d", c.Panel.Width, c.Panel.Height)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the zerolog level named by LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("monitor: invalid log_level %q", c.LogLevel)
	}
	return l, nil
}
