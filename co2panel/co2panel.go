// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package co2panel renders MT8060 readings as text for small displays such
// as an ssd1306 OLED or a Waveshare e-paper hat.
//
// Any display.Drawer can be used as the destination. The image is rendered at
// the size of the destination bounds, with one line per reading.
package co2panel

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/GermanBionicSystems/co2devices/mt8060"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"
)

// Opts holds the rendering options.
type Opts struct {
	// Size is the font size in points. Default is 14.
	Size float64
	// Foreground and Background colors. Defaults are white on black, which
	// suits monochrome OLEDs.
	Foreground color.Color
	Background color.Color
}

// DefaultOpts holds the default rendering options.
var DefaultOpts = Opts{
	Size:       14,
	Foreground: color.White,
	Background: color.Black,
}

// Panel draws readings.
type Panel struct {
	opts Opts
	face font.Face
}

// New returns a Panel using the Go regular font. The Opts can be nil.
func New(opts *Opts) (*Panel, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	p := &Panel{opts: *opts}
	if p.opts.Size <= 0 {
		p.opts.Size = DefaultOpts.Size
	}
	if p.opts.Foreground == nil {
		p.opts.Foreground = DefaultOpts.Foreground
	}
	if p.opts.Background == nil {
		p.opts.Background = DefaultOpts.Background
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("co2panel: parsing font: %w", err)
	}
	p.face = truetype.NewFace(f, &truetype.Options{Size: p.opts.Size})
	return p, nil
}

// Lines returns the text shown for env. Readings the sensor has not reported
// yet are skipped.
func (p *Panel) Lines(env *mt8060.Env) []string {
	var lines []string
	if env.CO2 != 0 {
		lines = append(lines, "CO2 "+env.CO2.String())
	}
	if env.Temperature != 0 {
		lines = append(lines, "T "+env.Temperature.String())
	}
	if env.Humidity != 0 {
		lines = append(lines, "RH "+env.Humidity.String())
	}
	return lines
}

// Render returns an image of size w x h showing env.
func (p *Panel) Render(w, h int, env *mt8060.Env) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetColor(p.opts.Background)
	dc.Clear()
	dc.SetColor(p.opts.Foreground)
	dc.SetFontFace(p.face)
	lines := p.Lines(env)
	if len(lines) == 0 {
		dc.DrawStringAnchored("--", float64(w)/2, float64(h)/2, 0.5, 0.5)
		return dc.Image()
	}
	step := float64(h) / float64(len(lines))
	for i, l := range lines {
		dc.DrawStringAnchored(l, 2, step*(float64(i)+0.5), 0, 0.5)
	}
	return dc.Image()
}

// Draw renders env at the size of dst and draws it.
func (p *Panel) Draw(dst display.Drawer, env *mt8060.Env) error {
	r := dst.Bounds()
	if r.Empty() {
		return errors.New("co2panel: empty display bounds")
	}
	img := p.Render(r.Dx(), r.Dy(), env)
	if err := dst.Draw(r, img, image.Point{}); err != nil {
		return fmt.Errorf("co2panel: %s: %w", dst, err)
	}
	return nil
}
