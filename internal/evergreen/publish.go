package evergreen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/animus-labs/evergreen-matrix/internal/storage/objectstore"
)

const ContentTypeYAML = "application/yaml"

// Publisher uploads rendered documents to object storage.
type Publisher struct {
	Store  objectstore.Store
	Bucket string
	Key    string
}

// Publish uploads data and returns the stored object's info.
func (p Publisher) Publish(ctx context.Context, data []byte) (objectstore.ObjectInfo, error) {
	if p.Store == nil {
		return objectstore.ObjectInfo{}, errors.New("object store is required")
	}
	bucket := strings.TrimSpace(p.Bucket)
	key := strings.TrimLeft(strings.TrimSpace(p.Key), "/")
	if bucket == "" {
		return objectstore.ObjectInfo{}, errors.New("publish bucket is required")
	}
	if key == "" {
		return objectstore.ObjectInfo{}, errors.New("publish key is required")
	}
	if len(data) == 0 {
		return objectstore.ObjectInfo{}, errors.New("document is empty")
	}
	if err := p.Store.Put(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), ContentTypeYAML); err != nil {
		return objectstore.ObjectInfo{}, fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	info, err := p.Store.Stat(ctx, bucket, key)
	if err != nil {
		return objectstore.ObjectInfo{}, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
	}
	if info.Size != int64(len(data)) {
		return info, fmt.Errorf("published %s/%s has size %d, want %d", bucket, key, info.Size, len(data))
	}
	return info, nil
}
