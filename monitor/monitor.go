// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/co2devices/mt8060"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Monitor timestamps each reading of a sensor and hands it to every sink.
type Monitor struct {
	sensor string
	sinks  []Sink
	logger zerolog.Logger
	clock  clockwork.Clock
}

// Option configures a Monitor.
type Option func(m *Monitor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// WithClock sets the clock used to timestamp samples.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Monitor) {
		m.clock = clock
	}
}

// New returns a Monitor publishing readings of the named sensor.
func New(sensor string, sinks []Sink, opts ...Option) *Monitor {
	m := &Monitor{
		sensor: sensor,
		sinks:  sinks,
		logger: zerolog.Nop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run publishes every Env received on envs until envs is closed or ctx is
// done.
//
// A sink failing is logged and does not stop the others.
func (m *Monitor) Run(ctx context.Context, envs <-chan mt8060.Env) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-envs:
			if !ok {
				m.logger.Info().Str("sensor", m.sensor).Msg("sensor stopped")
				return nil
			}
			m.Publish(ctx, e)
		}
	}
}

// Publish sends one reading to all sinks and returns the number of sinks
// that accepted it.
func (m *Monitor) Publish(ctx context.Context, e mt8060.Env) int {
	s := Sample{Time: m.clock.Now(), Sensor: m.sensor, Env: e}
	m.logger.Debug().Str("sensor", m.sensor).Stringer("env", &s.Env).Msg("reading")
	n := 0
	for _, sink := range m.sinks {
		if err := sink.Publish(ctx, s); err != nil {
			m.logger.Warn().Err(err).Str("sink", name(sink)).Msg("publish failed")
			continue
		}
		n++
	}
	return n
}

// Close closes all sinks.
func (m *Monitor) Close() error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("monitor: closing %s: %w", name(sink), err))
		}
	}
	return errors.Join(errs...)
}

func name(s Sink) string {
	if n, ok := s.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", s)
}
