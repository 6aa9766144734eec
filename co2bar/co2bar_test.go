// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package co2bar

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/co2devices/mt8060"
	"github.com/google/go-cmp/cmp"
	"github.com/maruel/ansi256"
)

func expectedBar(cells ...color.NRGBA) string {
	var b strings.Builder
	b.WriteString("\r\033[0m")
	for _, c := range cells {
		b.WriteString(ansi256.Default.Block(c))
	}
	b.WriteString("\033[0m ")
	return b.String()
}

func repeat(c color.NRGBA, n int) []color.NRGBA {
	out := make([]color.NRGBA, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func TestShow(t *testing.T) {
	var tests = []struct {
		name  string
		ppm   mt8060.PPM
		cells []color.NRGBA
	}{
		{name: "zero", ppm: 0, cells: repeat(colorOff, 10)},
		{name: "good", ppm: 410, cells: append(repeat(colorGood, 3), repeat(colorOff, 7)...)},
		{name: "warn", ppm: 1000, cells: append(repeat(colorWarn, 5), repeat(colorOff, 5)...)},
		{name: "alert", ppm: 1800, cells: append(repeat(colorAlert, 9), repeat(colorOff, 1)...)},
		{name: "over scale", ppm: 5000, cells: repeat(colorAlert, 10)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			d := New(&Opts{X: 10, W: buf})
			if err := d.Show(test.ppm); err != nil {
				t.Fatal(err)
			}
			want := expectedBar(test.cells...) + test.ppm.String()
			if diff := cmp.Diff(buf.String(), want); diff != "" {
				t.Errorf("Show(%d) difference (-got +want):\n%s", test.ppm, diff)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	d := New(&Opts{W: &bytes.Buffer{}, Warn: 1000, Alert: 1500})
	for ppm, want := range map[mt8060.PPM]color.NRGBA{
		400:  colorGood,
		999:  colorGood,
		1000: colorWarn,
		1499: colorWarn,
		1500: colorAlert,
	} {
		if got := d.Level(ppm); got != want {
			t.Errorf("Level(%d)=%v expected %v", ppm, got, want)
		}
	}
}

func TestDraw(t *testing.T) {
	buf := &bytes.Buffer{}
	d := New(&Opts{X: 4, W: buf})
	if diff := cmp.Diff(d.Bounds(), image.Rect(0, 0, 4, 1)); diff != "" {
		t.Errorf("Bounds() difference (-got +want):\n%s", diff)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}
	img.Set(0, 0, red)
	img.Set(3, 0, blue)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	black := color.NRGBA{0, 0, 0, 255}
	want := expectedBar(red, black, black, blue)
	if diff := cmp.Diff(buf.String(), want); diff != "" {
		t.Errorf("Draw() difference (-got +want):\n%s", diff)
	}

	buf.Reset()
	if _, err := d.Write([]byte{1, 2}); err == nil {
		t.Error("Write() with a partial pixel should fail")
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\n\033[0m" {
		t.Errorf("Halt() wrote %q", buf.String())
	}
}

func TestDefaults(t *testing.T) {
	d := New(nil)
	if d.l != 40 || d.full != 2000 || d.warn != 800 || d.alert != 1200 {
		t.Errorf("defaults: %d %d %d %d", d.l, d.full, d.warn, d.alert)
	}
	if d.String() != "CO2Bar" {
		t.Errorf("String()=%q", d.String())
	}
}
