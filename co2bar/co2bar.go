// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package co2bar shows a CO2 concentration as a 1D bar in a terminal, using
// ANSI color codes. It also implements display.Drawer so any 1 pixel high
// image can be shown on it.
//
// The bar is green below the warning level, yellow up to the alert level and
// red above.
package co2bar

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/GermanBionicSystems/co2devices/mt8060"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	// X is the number of cells in the bar. Default is 40.
	X       int
	Palette *ansi256.Palette
	// W receives the escape sequences. Default is a colorable stdout.
	W io.Writer
	// Full is the concentration shown by a full bar. Default is 2000 PPM.
	Full mt8060.PPM
	// Warn and Alert select the bar color. Defaults are 800 and 1200 PPM.
	Warn  mt8060.PPM
	Alert mt8060.PPM

	_ struct{}
}

var (
	colorGood  = color.NRGBA{0, 200, 0, 255}
	colorWarn  = color.NRGBA{230, 200, 0, 255}
	colorAlert = color.NRGBA{220, 0, 0, 255}
	colorOff   = color.NRGBA{40, 40, 40, 255}
)

// Dev is a CO2 gauge that outputs to the console.
type Dev struct {
	w       io.Writer
	l       int
	palette ansi256.Palette
	full    mt8060.PPM
	warn    mt8060.PPM
	alert   mt8060.PPM

	pixels []byte
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console. The Opts can be nil.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{
		w:       opts.W,
		l:       opts.X,
		palette: *p,
		full:    opts.Full,
		warn:    opts.Warn,
		alert:   opts.Alert,
	}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
	}
	if d.l <= 0 {
		d.l = 40
	}
	if d.full <= 0 {
		d.full = 2000
	}
	if d.warn <= 0 {
		d.warn = 800
	}
	if d.alert <= 0 {
		d.alert = 1200
	}
	d.pixels = make([]byte, 3*d.l)
	return d
}

func (d *Dev) String() string {
	return "CO2Bar"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors and moves to the next line.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Level returns the color used for ppm.
func (d *Dev) Level(ppm mt8060.PPM) color.NRGBA {
	switch {
	case ppm >= d.alert:
		return colorAlert
	case ppm >= d.warn:
		return colorWarn
	}
	return colorGood
}

// Show draws a bar proportional to ppm, followed by the numeric value.
func (d *Dev) Show(ppm mt8060.PPM) error {
	lit := 0
	if ppm > 0 {
		lit = int((int64(ppm)*int64(d.l) + int64(d.full) - 1) / int64(d.full))
	}
	lit = min(lit, d.l)
	c := d.Level(ppm)
	for i := range d.l {
		p := colorOff
		if i < lit {
			p = c
		}
		d.pixels[3*i] = p.R
		d.pixels[3*i+1] = p.G
		d.pixels[3*i+2] = p.B
	}
	d.render()
	_, _ = d.buf.WriteString(ppm.String())
	_, err := d.buf.WriteTo(d.w)
	return err
}

// Write accepts a stream of raw RGB pixels and writes it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("co2bar: invalid RGB stream length")
	}
	copy(d.pixels, pixels)
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.l, Y: 1}}
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	if dY := r.Dy(); dY < srcR.Dy() {
		srcR.Max.Y = srcR.Min.Y + dY
	}
	deltaX3 := 3 * (r.Min.X - srcR.Min.X)
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		r16, g16, b16, _ := src.At(sX, srcR.Min.Y).RGBA()
		dX3 := 3*sX + deltaX3
		d.pixels[dX3] = byte(r16 >> 8)
		d.pixels[dX3+1] = byte(g16 >> 8)
		d.pixels[dX3+2] = byte(b16 >> 8)
	}
	_, err := d.refresh()
	return err
}

func (d *Dev) refresh() (int, error) {
	d.render()
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

// render writes the bar to d.buf. It reuses the buffer between calls.
func (d *Dev) render() {
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < len(d.pixels)/3; i++ {
		c := color.NRGBA{d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2], 255}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
