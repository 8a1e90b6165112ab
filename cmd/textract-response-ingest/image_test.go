package main

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestDecodeImageFormats(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		wantType string
	}{
		{name: "png", body: testPNG(t), wantType: "image/png"},
		{name: "jpeg", body: testJPEG(t), wantType: "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, contentType, err := decodeImage(tt.body)
			if err != nil {
				t.Fatalf("decodeImage() error = %v", err)
			}
			if contentType != tt.wantType {
				t.Fatalf("expected %s, got %s", tt.wantType, contentType)
			}
			if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
				t.Fatalf("decoded an empty image")
			}
		})
	}
}

func TestDecodeImageRejectsNonImages(t *testing.T) {
	bodies := [][]byte{
		[]byte("plain text"),
		[]byte(`{"not":"an image"}`),
		[]byte("%PDF-1.4\n"),
		// png signature with nothing behind it
		[]byte("\x89PNG\r\n\x1a\n"),
	}
	for _, body := range bodies {
		if _, _, err := decodeImage(body); !errors.Is(err, ErrUndecodableImage) {
			t.Fatalf("expected undecodable image for %q, got %v", body, err)
		}
	}
}

func TestEncodePNGIsLossless(t *testing.T) {
	src := imaging.New(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.Set(1, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	buf, err := encodePNG(src)
	if err != nil {
		t.Fatalf("encodePNG() error = %v", err)
	}
	if !bytes.HasPrefix(buf, []byte("\x89PNG")) {
		t.Fatalf("output is not a png")
	}

	img, _, err := decodeImage(buf)
	if err != nil {
		t.Fatalf("decode round trip: %v", err)
	}
	r, g, b, _ := img.At(1, 2).RGBA()
	if r>>8 != 200 || g>>8 != 100 || b>>8 != 50 {
		t.Fatalf("pixel changed after encoding: %d %d %d", r>>8, g>>8, b>>8)
	}
}
