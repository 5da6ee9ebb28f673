package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/logging"
)

// memoryBucket stores objects in memory and enforces the
// does-not-exist precondition at Close, as Cloud Storage does.
type memoryBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: make(map[string][]byte)}
}

func (b *memoryBucket) NewWriter(ctx context.Context, name string) io.WriteCloser {
	return &memoryWriter{bucket: b, name: name}
}

func (b *memoryBucket) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var names []string
	for n := range b.objects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type memoryWriter struct {
	bucket *memoryBucket
	name   string
	buf    bytes.Buffer
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	if w.name == w.bucket.failOn {
		return 0, &googleapi.Error{Code: 403, Message: "forbidden"}
	}
	return w.buf.Write(p)
}

func (w *memoryWriter) Close() error {
	w.bucket.mu.Lock()
	defer w.bucket.mu.Unlock()
	if _, ok := w.bucket.objects[w.name]; ok {
		return &googleapi.Error{Code: 412, Message: "precondition failed"}
	}
	w.bucket.objects[w.name] = w.buf.Bytes()
	return nil
}

func writeRunDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"blocks.json":          "[]",
		"VIEW_1.png":           "png",
		"segmented_blocks.png": "png",
		"report/drawing.xlsx":  "xlsx",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestPublish(t *testing.T) {
	dir := writeRunDir(t)
	bucket := newMemoryBucket()
	p := New(bucket, "runs/drawing", logging.Discard())

	stats, err := p.Publish(context.Background(), dir)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if stats.Uploaded != 4 || stats.Skipped != 0 {
		t.Errorf("stats: got %+v, want 4 uploaded", stats)
	}

	want := []string{
		"runs/drawing/VIEW_1.png",
		"runs/drawing/blocks.json",
		"runs/drawing/report/drawing.xlsx",
		"runs/drawing/segmented_blocks.png",
	}
	got := bucket.names()
	if len(got) != len(want) {
		t.Fatalf("objects: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("object %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if string(bucket.objects["runs/drawing/blocks.json"]) != "[]" {
		t.Error("object content not copied")
	}
}

func TestPublish_Idempotent(t *testing.T) {
	dir := writeRunDir(t)
	bucket := newMemoryBucket()
	p := New(bucket, "", logging.Discard())

	if _, err := p.Publish(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	bucket.objects["blocks.json"] = []byte("original")

	stats, err := p.Publish(context.Background(), dir)
	if err != nil {
		t.Fatalf("second Publish failed: %v", err)
	}
	if stats.Uploaded != 0 || stats.Skipped != 4 {
		t.Errorf("stats: got %+v, want 4 skipped", stats)
	}
	if string(bucket.objects["blocks.json"]) != "original" {
		t.Error("existing object was overwritten")
	}
}

func TestPublish_UploadError(t *testing.T) {
	dir := writeRunDir(t)
	bucket := newMemoryBucket()
	bucket.failOn = "blocks.json"

	_, err := New(bucket, "", logging.Discard()).Publish(context.Background(), dir)
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != 403 {
		t.Errorf("error: got %v, want the 403 from the bucket", err)
	}
}

func TestPublish_MissingDir(t *testing.T) {
	_, err := New(newMemoryBucket(), "", logging.Discard()).Publish(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error: got %v, want ErrNotExist", err)
	}
}
