package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dalemusser/waffle/pantry/storage"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSaveImage_StoresAndServes(t *testing.T) {
	root := t.TempDir()
	im, err := NewLocal(root, "/media/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	data := pngBytes(t)
	key, err := im.SaveImage(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if !strings.HasPrefix(key, "posts/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("key = %q", key)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(key))); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	url := im.URL(key)
	if url != "/media/"+key {
		t.Errorf("URL = %q", url)
	}
	rec := httptest.NewRecorder()
	im.Handler().ServeHTTP(rec, httptest.NewRequest("GET", url, nil))
	if rec.Code != 200 || !bytes.Equal(rec.Body.Bytes(), data) {
		t.Errorf("serve: status %d, %d bytes", rec.Code, rec.Body.Len())
	}
}

func TestSaveImage_MemoryBackend(t *testing.T) {
	store := storage.NewMemory(storage.MemoryConfig{})
	im := New(store, "/media")
	ctx := context.Background()

	data := pngBytes(t)
	key, err := im.SaveImage(ctx, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if store.Count() != 1 {
		t.Fatalf("objects = %d, want 1", store.Count())
	}
	// no BaseURL on the backend, so URLs fall back to the handler prefix
	if got := im.URL(key); got != "/media/"+key {
		t.Errorf("URL = %q", got)
	}

	rec := httptest.NewRecorder()
	im.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/media/"+key, nil))
	if rec.Code != 200 || rec.Header().Get("Content-Type") != "image/png" || !bytes.Equal(rec.Body.Bytes(), data) {
		t.Errorf("serve: status %d, type %q, %d bytes", rec.Code, rec.Header().Get("Content-Type"), rec.Body.Len())
	}

	if err := im.DeleteImage(ctx, key); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("objects after delete = %d", store.Count())
	}
	if err := im.DeleteImage(ctx, key); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}

	rec = httptest.NewRecorder()
	im.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/media/"+key, nil))
	if rec.Code != 404 {
		t.Errorf("deleted image status = %d, want 404", rec.Code)
	}
}

func TestDeleteImage_Local(t *testing.T) {
	root := t.TempDir()
	im, _ := NewLocal(root, "/media")
	ctx := context.Background()
	key, err := im.SaveImage(ctx, bytes.NewReader(pngBytes(t)))
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if err := im.DeleteImage(ctx, key); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(key))); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
}

func TestSaveImage_RejectsNonImage(t *testing.T) {
	store := storage.NewMemory(storage.MemoryConfig{})
	im := New(store, "/media")
	_, err := im.SaveImage(context.Background(), strings.NewReader("#!/bin/sh\necho hi\n"))
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("err = %v, want ErrNotImage", err)
	}
	if store.Count() != 0 {
		t.Error("rejected upload was stored")
	}
}

func TestSaveImage_RejectsTooLarge(t *testing.T) {
	im := New(storage.NewMemory(storage.MemoryConfig{}), "/media")
	big := append(pngBytes(t), make([]byte, MaxImageBytes)...)
	if _, err := im.SaveImage(context.Background(), bytes.NewReader(big)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestHandler_NoDirectoryListing(t *testing.T) {
	im, _ := NewLocal(t.TempDir(), "/media")
	if _, err := im.SaveImage(context.Background(), bytes.NewReader(pngBytes(t))); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	for _, target := range []string{"/media/", "/media/posts/", "/media/../etc/passwd"} {
		rec := httptest.NewRecorder()
		im.Handler().ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
		if rec.Code != 404 {
			t.Errorf("%s: status = %d, want 404", target, rec.Code)
		}
	}
}

func TestURL_Empty(t *testing.T) {
	im, _ := NewLocal(t.TempDir(), "media")
	if im.URL("") != "" {
		t.Error("empty key should give empty URL")
	}
	if im.Prefix() != "/media" {
		t.Errorf("Prefix = %q", im.Prefix())
	}
}
