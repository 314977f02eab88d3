package core

import (
	"github.com/SamWheatley/rainier/internal/domain"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/util"
)

// minUsefulSlice is the smallest document fragment worth sending. If the
// remaining budget after the header would be below this, the document (and
// everything after it) is excluded instead of adding a near-empty scrap.
const minUsefulSlice = 400

// PackResult is a budgeted source set. Used counts headers and content, so
// it never exceeds the ceiling PackSources was given.
type PackResult struct {
	Sources  []domain.PackedSource
	Used     int
	Excluded int
}

// PackSources shapes candidate documents to fit a character ceiling.
//
// The policy is greedy and ordering-sensitive on purpose: documents are
// consumed in input order, kept whole while they fit, and only the one that
// would overflow the budget is truncated. Callers prioritize by ordering the
// input (e.g. smaller files first). Truncated content always ends with the
// truncation marker so a model can tell cut-off from document end.
func PackSources(docs []domain.Document, ceiling int) PackResult {
	var res PackResult
	remaining := ceiling
	for i, doc := range docs {
		header := len(domain.SourceHeader(doc.Title))
		if remaining-header < minUsefulSlice {
			res.Excluded = len(docs) - i
			break
		}

		body := doc.Body
		truncated := false
		if avail := remaining - header; len(body) > avail {
			cut := avail - len(domain.TruncationMarker)
			if cut < 0 {
				cut = 0
			}
			body = util.Truncate(body, cut) + domain.TruncationMarker
			truncated = true
		}

		res.Sources = append(res.Sources, domain.PackedSource{
			Title:     doc.Title,
			Content:   body,
			Locator:   doc.Locator(),
			Truncated: truncated,
		})
		remaining -= header + len(body)
		res.Used += header + len(body)
	}
	if res.Excluded > 0 {
		debuglog.Debug(debuglog.Basic, "budget %d exhausted: packed %d documents, excluded %d\n",
			ceiling, len(res.Sources), res.Excluded)
	}
	return res
}
