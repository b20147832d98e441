package index

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/shogo/internal/models"
)

// BlobStore persists serialized index blobs keyed by collection fingerprint.
// Implemented by storage.CacheStore; the engine itself never touches disk.
type BlobStore interface {
	GetBlob(ctx context.Context, fingerprint string) ([]byte, bool, error)
	PutBlob(ctx context.Context, fingerprint string, blob []byte, recordCount int) error
}

// LoadOrBuild returns a cached index for the collection when a blob with a
// matching fingerprint exists and still decodes; otherwise it builds the index
// and stores the fresh blob. Cache inconsistency (missing, stale, or corrupt
// blob) is an informational event, never a failure: the rebuild path handles
// it. Only building from an empty collection is a caller-visible error.
func LoadOrBuild(ctx context.Context, records []models.BibRecord, store BlobStore, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(records) == 0 {
		return nil, ErrEmptyCollection
	}

	fp := Fingerprint(records)

	if store != nil {
		blob, ok, err := store.GetBlob(ctx, fp)
		if err != nil {
			logger.Warn("index cache lookup failed, rebuilding", zap.Error(err))
		} else if ok {
			idx, err := Deserialize(blob, logger)
			if err != nil {
				logger.Info("index cache blob corrupt, rebuilding",
					zap.String("fingerprint", fp), zap.Error(err))
			} else {
				logger.Info("index loaded from cache",
					zap.String("fingerprint", fp), zap.Int("records", idx.Len()))
				return idx, nil
			}
		} else {
			logger.Info("index cache miss, building",
				zap.String("fingerprint", fp), zap.Int("records", len(records)))
		}
	}

	idx, err := Build(records, logger)
	if err != nil {
		return nil, err
	}

	if store != nil {
		blob, err := idx.Serialize()
		if err != nil {
			logger.Warn("index serialization failed, cache not updated", zap.Error(err))
			return idx, nil
		}
		if err := store.PutBlob(ctx, fp, blob, idx.Len()); err != nil {
			logger.Warn("index cache write failed", zap.Error(err))
		}
	}
	return idx, nil
}
