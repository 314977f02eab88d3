package core

import (
	"context"

	"github.com/SamWheatley/rainier/internal/domain"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/util"
)

// Fetcher reads one object body from remote storage. Implemented by the
// lake loader.
type Fetcher interface {
	Fetch(ctx context.Context, key string) (string, error)
}

// unavailableBody stands in for a document whose fetch failed. The batch
// proceeds; the model simply sees that this source had no content.
const unavailableBody = "[content unavailable]"

// resolveBodies fetches every remote document's body on demand and caps
// each body at perDocCap characters so one huge transcript cannot starve
// the rest of the pack. Resident bodies pass through (capped) untouched.
// A per-document fetch failure never aborts the batch.
func resolveBodies(ctx context.Context, fetcher Fetcher, docs []domain.Document, perDocCap int) []domain.Document {
	out := make([]domain.Document, len(docs))
	for i, doc := range docs {
		if doc.Origin == domain.OriginRemote && doc.Body == "" {
			body, err := fetcher.Fetch(ctx, doc.StorageKey)
			if err != nil {
				debuglog.Log("document %s unavailable: %v\n", doc.Title, err)
				doc.Body = unavailableBody
			} else {
				doc.Body = body
			}
		}
		if perDocCap > 0 && len(doc.Body) > perDocCap {
			doc.Body = util.Truncate(doc.Body, perDocCap) + domain.TruncationMarker
		}
		out[i] = doc
	}
	return out
}
