package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name             string
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{"already fits", 10, 10, 20, 20, 10, 10},
		{"wide", 600, 300, 20, 20, 20, 10},
		{"tall", 300, 600, 20, 20, 10, 20},
		{"square", 600, 600, 24, 24, 24, 24},
		{"empty", 0, 10, 20, 20, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitWithin(tt.w, tt.h, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitWithin = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestImageService_Thumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for x := 0; x < 100; x++ {
		for y := 0; y < 50; y++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	thumb, err := NewImageService().Thumbnail(context.Background(), buf.Bytes(), 10, 10)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if got := thumb.Bounds().Dx(); got != 10 {
		t.Errorf("width = %d, want 10", got)
	}
	if got := thumb.Bounds().Dy(); got != 5 {
		t.Errorf("height = %d, want 5", got)
	}
}

func TestImageService_ThumbnailRejectsGarbage(t *testing.T) {
	if _, err := NewImageService().Thumbnail(context.Background(), []byte("nope"), 10, 10); err == nil {
		t.Error("expected decode error")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")

	if err := WriteFileAtomic(path, []byte("one"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "two" {
		t.Errorf("content = %q, want %q", got, "two")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}
