package index

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/shogo/internal/models"
	"github.com/hyperjump/shogo/internal/normalize"
)

// blobVersion guards the serialized layout. Bump when snapshot contents change
// incompatibly; older blobs then fail to load and the cache rebuilds.
const blobVersion = 1

// snapshot is the serialized form of an index. Only the records and the build
// parameters are stored; the blocking maps are rebuilt deterministically on
// load, which keeps the blob small and the loaded index internally consistent.
type snapshot struct {
	Version     int                `json:"version"`
	TrigramSize int                `json:"trigram_size"`
	Records     []models.BibRecord `json:"records"`
}

// Serialize encodes the index for caching across runs.
func (idx *Index) Serialize() ([]byte, error) {
	snap := snapshot{
		Version:     blobVersion,
		TrigramSize: idx.trigramSize,
		Records:     idx.records,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("serialize index: %w", err)
	}
	return data, nil
}

// Deserialize decodes a cached blob back into an Index. The blocking maps are
// rebuilt from the stored records, so a round-trip yields identical index
// contents.
func Deserialize(data []byte, logger *zap.Logger) (*Index, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("deserialize index: %w", err)
	}
	if snap.Version != blobVersion {
		return nil, fmt.Errorf("deserialize index: unsupported blob version %d", snap.Version)
	}
	if snap.TrigramSize != normalize.TrigramSize {
		return nil, fmt.Errorf("deserialize index: blob trigram size %d, built with %d",
			snap.TrigramSize, normalize.TrigramSize)
	}
	return Build(snap.Records, logger)
}

// Fingerprint derives a content hash of the reference collection plus the
// weight-independent build parameters. A cached blob whose fingerprint does
// not match the current collection is stale and must be rebuilt.
func Fingerprint(records []models.BibRecord) string {
	h := sha256.New()
	h.Write([]byte("trigram=" + strconv.Itoa(normalize.TrigramSize) + "\n"))
	for _, rec := range records {
		writeRecord(h, rec)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeRecord(h interface{ Write(p []byte) (int, error) }, rec models.BibRecord) {
	var sb strings.Builder
	sb.WriteString(rec.Title)
	sb.WriteByte('\x1f')
	for _, a := range rec.Authors {
		sb.WriteString(a.Given)
		sb.WriteByte('\x1e')
		sb.WriteString(a.Family)
		sb.WriteByte('\x1f')
	}
	if year, ok := rec.YearValue(); ok {
		sb.WriteString(strconv.Itoa(year))
	}
	sb.WriteByte('\x1f')
	sb.WriteString(rec.Journal)
	sb.WriteByte('\x1f')
	sb.WriteString(rec.Volume)
	sb.WriteByte('\x1f')
	sb.WriteString(rec.Number)
	sb.WriteByte('\x1f')
	if rec.Pages != nil {
		sb.WriteString(rec.Pages.Start)
		sb.WriteByte('\x1e')
		sb.WriteString(rec.Pages.End)
	}
	sb.WriteByte('\x1f')
	sb.WriteString(rec.DOI)
	sb.WriteByte('\n')
	_, _ = h.Write([]byte(sb.String()))
}
