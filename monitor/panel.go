// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/GermanBionicSystems/co2devices/co2panel"
)

// PanelSink renders each sample with co2panel and saves it as a PNG file,
// for example for a web dashboard or an e-paper refresh script.
type PanelSink struct {
	panel *co2panel.Panel
	cfg   PanelConfig
}

// NewPanelSink returns a sink writing to cfg.Path.
func NewPanelSink(cfg PanelConfig) (*PanelSink, error) {
	p, err := co2panel.New(&co2panel.Opts{Size: cfg.FontSize})
	if err != nil {
		return nil, err
	}
	return &PanelSink{panel: p, cfg: cfg}, nil
}

func (p *PanelSink) String() string {
	return "panel"
}

// Publish implements Sink.
//
// The image is written to a temporary file renamed over Path, so readers
// never see a partial image.
func (p *PanelSink) Publish(ctx context.Context, s Sample) error {
	img := p.panel.Render(p.cfg.Width, p.cfg.Height, &s.Env)
	f, err := os.CreateTemp(filepath.Dir(p.cfg.Path), ".panel-*.png")
	if err != nil {
		return fmt.Errorf("monitor: panel: %w", err)
	}
	// The published file is world readable, CreateTemp makes it 0600.
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("monitor: panel: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("monitor: panel: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("monitor: panel: %w", err)
	}
	if err := os.Rename(f.Name(), p.cfg.Path); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("monitor: panel: %w", err)
	}
	return nil
}

// Close implements Sink.
func (p *PanelSink) Close() error {
	return nil
}
