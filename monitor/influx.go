// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement is the InfluxDB measurement samples are written to.
const Measurement = "mt8060"

// pointWriter is the part of api.WriteAPIBlocking used by InfluxSink.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxSink writes one point per sample, with the sensor name as tag.
type InfluxSink struct {
	client influxdb2.Client
	w      pointWriter
}

// NewInfluxSink returns a sink writing to the bucket in cfg. The connection
// is made on the first write.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	c := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSink{client: c, w: c.WriteAPIBlocking(cfg.Org, cfg.Bucket)}
}

func (i *InfluxSink) String() string {
	return "influxdb"
}

// Publish implements Sink.
func (i *InfluxSink) Publish(ctx context.Context, s Sample) error {
	p := point(&s)
	if p == nil {
		return nil
	}
	if err := i.w.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("monitor: writing point: %w", err)
	}
	return nil
}

// Close implements Sink.
func (i *InfluxSink) Close() error {
	if i.client != nil {
		i.client.Close()
	}
	return nil
}

// point returns the point for s, or nil if s holds no reading.
func point(s *Sample) *write.Point {
	fields := map[string]interface{}{}
	if s.Env.CO2 != 0 {
		fields["co2_ppm"] = int64(s.Env.CO2)
	}
	if s.Env.Temperature != 0 {
		fields["temperature_c"] = celsius(s.Env.Temperature)
	}
	if s.Env.Humidity != 0 {
		fields["humidity_rh"] = percent(s.Env.Humidity)
	}
	if len(fields) == 0 {
		return nil
	}
	return influxdb2.NewPoint(Measurement, map[string]string{"sensor": s.Sensor}, fields, s.Time)
}
