package evergreen

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/animus-labs/evergreen-matrix/internal/storage/objectstore"
)

type memStore struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
	// truncate makes Stat report a short object.
	truncate bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Put(_ context.Context, bucket, key string, body io.Reader, _ int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[bucket+"/"+key] = data
	m.types[bucket+"/"+key] = contentType
	return nil
}

func (m *memStore) Stat(_ context.Context, bucket, key string) (objectstore.ObjectInfo, error) {
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return objectstore.ObjectInfo{}, errors.New("not found")
	}
	size := int64(len(data))
	if m.truncate {
		size--
	}
	return objectstore.ObjectInfo{Key: key, Size: size, ContentType: m.types[bucket+"/"+key]}, nil
}

func TestPublish(t *testing.T) {
	store := newMemStore()
	p := Publisher{Store: store, Bucket: "ci-config", Key: "/evergreen/config.yml"}

	info, err := p.Publish(context.Background(), []byte("tasks: []\n"))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if info.Key != "evergreen/config.yml" || info.ContentType != ContentTypeYAML {
		t.Fatalf("unexpected info %+v", info)
	}
	if string(store.objects["ci-config/evergreen/config.yml"]) != "tasks: []\n" {
		t.Fatalf("stored object mismatch")
	}
}

func TestPublishErrors(t *testing.T) {
	ctx := context.Background()
	data := []byte("tasks: []\n")

	if _, err := (Publisher{Bucket: "b", Key: "k"}).Publish(ctx, data); err == nil {
		t.Fatalf("expected error without store")
	}
	if _, err := (Publisher{Store: newMemStore(), Key: "k"}).Publish(ctx, data); err == nil {
		t.Fatalf("expected error without bucket")
	}
	if _, err := (Publisher{Store: newMemStore(), Bucket: "b"}).Publish(ctx, data); err == nil {
		t.Fatalf("expected error without key")
	}
	if _, err := (Publisher{Store: newMemStore(), Bucket: "b", Key: "k"}).Publish(ctx, nil); err == nil {
		t.Fatalf("expected error for empty document")
	}

	failing := newMemStore()
	failing.putErr = errors.New("boom")
	if _, err := (Publisher{Store: failing, Bucket: "b", Key: "k"}).Publish(ctx, data); err == nil {
		t.Fatalf("expected put error")
	}

	short := newMemStore()
	short.truncate = true
	if _, err := (Publisher{Store: short, Bucket: "b", Key: "k"}).Publish(ctx, data); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".evergreen", "config.yml")
	if err := WriteFile(path, []byte("first")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, []byte("second")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("content=%q, want second", data)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
	if err := WriteFile(" ", []byte("x")); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
