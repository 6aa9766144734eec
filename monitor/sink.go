// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor forwards MT8060 readings to MQTT, InfluxDB and a terminal
// gauge.
package monitor

import (
	"context"
	"time"

	"github.com/GermanBionicSystems/co2devices/mt8060"
	"periph.io/x/conn/v3/physic"
)

// Sample is one reading of a sensor.
type Sample struct {
	Time   time.Time
	Sensor string
	Env    mt8060.Env
}

// Sink receives every sample read by the Monitor.
type Sink interface {
	Publish(ctx context.Context, s Sample) error
	Close() error
}

// reading is one quantity of a Sample in the form published on MQTT.
type reading struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Time  string  `json:"time"`
}

// readings splits s into one reading per quantity the sensor reported.
// Quantities never received are still zero and are skipped.
func (s *Sample) readings() []reading {
	ts := s.Time.UTC().Format(time.RFC3339)
	var out []reading
	if s.Env.CO2 != 0 {
		out = append(out, reading{Kind: mt8060.CO2.String(), Value: float64(s.Env.CO2), Unit: "ppm", Time: ts})
	}
	if s.Env.Temperature != 0 {
		out = append(out, reading{Kind: mt8060.Temperature.String(), Value: celsius(s.Env.Temperature), Unit: "C", Time: ts})
	}
	if s.Env.Humidity != 0 {
		out = append(out, reading{Kind: mt8060.Humidity.String(), Value: percent(s.Env.Humidity), Unit: "%rH", Time: ts})
	}
	return out
}

func celsius(t physic.Temperature) float64 {
	return float64(t-physic.ZeroCelsius) / float64(physic.Kelvin)
}

func percent(h physic.RelativeHumidity) float64 {
	return float64(h) / float64(physic.PercentRH)
}
