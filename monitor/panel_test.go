// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPanelSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panel.png")
	p, err := NewPanelSink(PanelConfig{Path: path, Width: 128, Height: 64, FontSize: 12})
	if err != nil {
		t.Fatal(err)
	}
	for range 2 {
		if err := p.Publish(context.Background(), fullSample()); err != nil {
			t.Fatal(err)
		}
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if mode := fi.Mode().Perm(); mode != 0o644 {
		t.Errorf("panel file mode %s expected -rw-r--r--", mode)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(img.Bounds(), image.Rect(0, 0, 128, 64)); diff != "" {
		t.Errorf("Bounds() difference (-got +want):\n%s", diff)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPanelSinkError(t *testing.T) {
	p, err := NewPanelSink(PanelConfig{Path: filepath.Join(t.TempDir(), "missing", "panel.png"), Width: 16, Height: 16})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Publish(context.Background(), fullSample()); err == nil {
		t.Error("Publish() into a missing directory should fail")
	}
}
