// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"context"

	"github.com/GermanBionicSystems/co2devices/co2bar"
)

// GaugeSink shows the CO2 concentration of each sample on a co2bar.
type GaugeSink struct {
	bar *co2bar.Dev
}

// NewGaugeSink returns a sink drawing on a co2bar built with opts.
func NewGaugeSink(opts *co2bar.Opts) *GaugeSink {
	return &GaugeSink{bar: co2bar.New(opts)}
}

func (g *GaugeSink) String() string {
	return "gauge"
}

// Publish implements Sink. Samples without a CO2 reading are ignored.
func (g *GaugeSink) Publish(ctx context.Context, s Sample) error {
	if s.Env.CO2 == 0 {
		return nil
	}
	return g.bar.Show(s.Env.CO2)
}

// Close implements Sink.
func (g *GaugeSink) Close() error {
	return g.bar.Halt()
}
