package utils

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUtils_ShouldDownloadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(samplePNG(t))
	}))
	defer srv.Close()

	f, err := DownloadImage(srv.URL + "/sample.png")
	if err != nil {
		t.Fatalf("couldn't download test file: %v", err)
	}
	defer os.Remove(f.Name())

	if !strings.Contains(f.Name(), os.TempDir()) {
		t.Errorf("The downloaded image should have been saved in a temporary folder")
	}
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	if !IsValidUrl("https://github.com/esimov/boxblur/") {
		t.Errorf("A valid URL should have been provided")
	}
	if IsValidUrl("not-an-url") {
		t.Errorf("An invalid URL should have been rejected")
	}
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	sampleImg := filepath.Join(t.TempDir(), "sample.png")
	if err := os.WriteFile(sampleImg, samplePNG(t), 0644); err != nil {
		t.Fatalf("could not write the sample image: %v", err)
	}

	ftype, err := DetectContentType(sampleImg)
	if err != nil {
		t.Fatalf("could not detect content type: %v", err)
	}

	if !strings.Contains(ftype, "image") {
		t.Errorf("Content type expected to be of type image, got: %v", ftype)
	}
}

// samplePNG encodes a small test image in memory.
func samplePNG(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("could not encode the sample image: %v", err)
	}
	return buf.Bytes()
}
