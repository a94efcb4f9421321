package captcha

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
)

func TestNewCodeLength(t *testing.T) {
	if got := len(NewCode(5)); got != 5 {
		t.Fatalf("expected 5 characters, got %d", got)
	}
	if got := len(NewCode(0)); got != 5 {
		t.Fatalf("expected fallback length 5, got %d", got)
	}
}

func TestNewCodeCharset(t *testing.T) {
	code := NewCode(64)
	for _, r := range code {
		if !strings.ContainsRune(charset, r) {
			t.Fatalf("code contains %q, outside the charset", r)
		}
	}
	if strings.ContainsAny(code, "0O1I") {
		t.Fatalf("code %q contains an ambiguous glyph", code)
	}
}

func TestRenderProducesPNG(t *testing.T) {
	data, err := Render("AB3DE")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		t.Fatalf("empty image: %v", bounds)
	}
}

func TestRenderWidthTracksCodeLength(t *testing.T) {
	short, err := Render("AB")
	if err != nil {
		t.Fatalf("render short: %v", err)
	}
	long, err := Render("ABCDEFGH")
	if err != nil {
		t.Fatalf("render long: %v", err)
	}

	shortImg, _ := png.Decode(bytes.NewReader(short))
	longImg, _ := png.Decode(bytes.NewReader(long))
	if longImg.Bounds().Dx() <= shortImg.Bounds().Dx() {
		t.Fatal("expected a longer code to render wider")
	}
}
