package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phrazzld/progress-gallery/internal/domain"
)

// isoLayout matches the millisecond ISO-8601 form existing payloads use.
const isoLayout = "2006-01-02T15:04:05.000Z"

type photoRecord struct {
	ID        string `json:"id"`
	URI       string `json:"uri"`
	CreatedAt string `json:"createdAt"`
}

// EncodeCollection serializes the collection as a UTF-8 JSON array of
// {id, uri, createdAt} objects in display order.
func EncodeCollection(c domain.Collection) ([]byte, error) {
	records := make([]photoRecord, len(c))
	for i, p := range c {
		records[i] = photoRecord{
			ID:        p.ID,
			URI:       p.URI,
			CreatedAt: p.CreatedAt.UTC().Format(isoLayout),
		}
	}
	return json.Marshal(records)
}

// DecodeCollection parses a payload written by EncodeCollection.
// An empty payload or a JSON null decodes to an empty collection. Anything
// that is not an array of photo objects with ISO-8601 timestamps fails with
// domain.ErrInvalidFormat. Duplicate and empty IDs are dropped.
func DecodeCollection(payload []byte) (domain.Collection, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return domain.Collection{}, nil
	}

	var records []photoRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}

	out := make(domain.Collection, 0, len(records))
	for i, r := range records {
		createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d createdAt: %v", domain.ErrInvalidFormat, i, err)
		}
		out = append(out, domain.Photo{
			ID:        r.ID,
			URI:       r.URI,
			CreatedAt: createdAt.UTC(),
		})
	}

	return out.Sanitize(), nil
}
