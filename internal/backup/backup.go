// Package backup exports the emoji catalog to object storage and restores
// it from a previous export.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/naija-emoji/apiserver/types"
)

const (
	// KeyPrefix is the object key prefix of every snapshot.
	KeyPrefix = "emojis/"

	snapshotVersion = 1
	contentType     = "application/json"
)

// ErrNoSnapshots is returned when the bucket holds no snapshot.
var ErrNoSnapshots = errors.New("no snapshots found")

// EmojiStore is the part of the emoji repository a backup needs.
type EmojiStore interface {
	List(ctx context.Context) ([]types.Emoji, error)
	Create(ctx context.Context, emoji types.Emoji) (types.Emoji, error)
}

// ObjectStore is the part of object storage a backup needs.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Snapshot is the serialized form of the catalog.
type Snapshot struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Emojis     []types.Emoji `json:"emojis"`
}

type Service struct {
	emojis  EmojiStore
	objects ObjectStore
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(emojis EmojiStore, objects ObjectStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		emojis:  emojis,
		objects: objects,
		logger:  logger.With(slog.String("component", "backup")),
		now:     time.Now,
	}
}

// SnapshotKey returns the object key of a snapshot taken at t.
func SnapshotKey(t time.Time) string {
	return fmt.Sprintf("%ssnapshot-%d.json", KeyPrefix, t.Unix())
}

// Export writes every emoji to a new snapshot object and returns its key.
func (s *Service) Export(ctx context.Context) (string, error) {
	emojis, err := s.emojis.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list emojis: %w", err)
	}

	now := s.now().UTC()
	data, err := json.Marshal(Snapshot{Version: snapshotVersion, ExportedAt: now, Emojis: emojis})
	if err != nil {
		return "", err
	}

	if err := s.objects.EnsureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	key := SnapshotKey(now)
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	s.logger.InfoContext(ctx, "catalog exported", slog.String("key", key), slog.Int("emojis", len(emojis)))
	return key, nil
}

// Restore inserts every emoji of the snapshot at key, keeping its dates and
// creator. It returns the number of emojis inserted.
func (s *Service) Restore(ctx context.Context, key string) (int, error) {
	snapshot, err := s.load(ctx, key)
	if err != nil {
		return 0, err
	}

	for i, emoji := range snapshot.Emojis {
		emoji.ID = 0
		if emoji.Keywords == nil {
			emoji.Keywords = types.Keywords{}
		}
		if _, err := s.emojis.Create(ctx, emoji); err != nil {
			return i, fmt.Errorf("restore emoji %q: %w", emoji.Name, err)
		}
	}

	s.logger.InfoContext(ctx, "catalog restored", slog.String("key", key), slog.Int("emojis", len(snapshot.Emojis)))
	return len(snapshot.Emojis), nil
}

// Snapshots lists the snapshot keys, oldest first.
func (s *Service) Snapshots(ctx context.Context) ([]string, error) {
	return s.objects.List(ctx, KeyPrefix)
}

// Latest returns the key of the most recent snapshot.
func (s *Service) Latest(ctx context.Context) (string, error) {
	keys, err := s.Snapshots(ctx)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", ErrNoSnapshots
	}
	return keys[len(keys)-1], nil
}

func (s *Service) load(ctx context.Context, key string) (Snapshot, error) {
	reader, err := s.objects.Get(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("download %s: %w", key, err)
	}
	defer reader.Close()

	var snapshot Snapshot
	if err := json.NewDecoder(reader).Decode(&snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", key, err)
	}
	if snapshot.Version != snapshotVersion {
		return Snapshot{}, fmt.Errorf("decode %s: unsupported snapshot version %d", key, snapshot.Version)
	}
	return snapshot, nil
}
