package core

import (
	"context"
	"fmt"

	"github.com/SamWheatley/rainier/internal/domain"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/ai/perplexity"
)

// WebSearcher synthesizes open-web context for a question. Implemented by
// the perplexity client; mocked in tests.
type WebSearcher interface {
	SearchContext(ctx context.Context, question string) (string, error)
}

// Orchestrator wraps every provider call in the single-hop fallback policy:
// a retryable primary failure gets exactly one replay against the vendor's
// nominated alternate, with sources re-budgeted more aggressively. Anything
// else surfaces immediately, and a double failure surfaces the original
// primary error.
type Orchestrator struct {
	registry *ai.Registry
	web      WebSearcher
}

func NewOrchestrator(registry *ai.Registry, web WebSearcher) *Orchestrator {
	return &Orchestrator{registry: registry, web: web}
}

// AskSpec is one question over resolved documents, before budgeting.
type AskSpec struct {
	Question string
	Context  string
	Docs     []domain.Document

	// QuestionFor, when set, renders the question from the pack actually
	// sent on an attempt. A question that names the packed titles must be
	// rebuilt on the fallback hop, where the smaller budget can drop
	// documents. Overrides Question.
	QuestionFor func([]domain.PackedSource) string

	// Ceiling optionally caps the pack budget below the vendor's own
	// context budget. Zero means use the vendor budget.
	Ceiling int
	// UseWebContext prepends a synthesized web-context pseudo-document to
	// the source list before the primary attempt.
	UseWebContext bool
}

func (o *Orchestrator) Ask(ctx context.Context, vendor ai.Vendor, spec *AskSpec) (*domain.AskResponse, error) {
	docs := spec.Docs
	if spec.UseWebContext && o.web != nil {
		if webText, err := o.web.SearchContext(ctx, spec.Question); err != nil {
			// Augmentation is best-effort: degrade to document-only
			// analysis without surfacing anything to the user.
			debuglog.Log("web context unavailable, continuing with documents only: %v\n", err)
		} else {
			docs = append([]domain.Document{{
				ID:     "web-context",
				Title:  perplexity.WebContextTitle,
				Origin: domain.OriginResident,
				Body:   webText,
			}}, docs...)
		}
	}

	pack := PackSources(docs, o.budget(vendor, spec.Ceiling))
	resp, primaryErr := vendor.Ask(ctx, &domain.AskRequest{
		Question: spec.question(pack.Sources),
		Context:  spec.Context,
		Sources:  pack.Sources,
	})
	if primaryErr == nil {
		return resp, nil
	}
	if !domain.Retryable(primaryErr) {
		return nil, primaryErr
	}

	alt, ok := o.registry.Fallback(vendor)
	if !ok {
		debuglog.Debug(debuglog.Basic, "no fallback registered for %s\n", vendor.GetName())
		return nil, primaryErr
	}
	debuglog.Log("%s failed (%s), retrying once via %s\n",
		vendor.GetName(), domain.KindOf(primaryErr), alt.GetName())

	repack := PackSources(docs, fallbackBudget(vendor, alt, spec.Ceiling))
	resp, fallbackErr := alt.Ask(ctx, &domain.AskRequest{
		Question: spec.question(repack.Sources),
		Context:  spec.Context,
		Sources:  repack.Sources,
	})
	if fallbackErr != nil {
		// The fallback is an enhancement, not the source of truth for
		// diagnostics: surface the primary error.
		debuglog.Log("fallback %s also failed: %v\n", alt.GetName(), fallbackErr)
		return nil, primaryErr
	}

	resp.UsedFallback = true
	resp.Content += fallbackNotice(vendor, alt, primaryErr)
	return resp, nil
}

func (s *AskSpec) question(sources []domain.PackedSource) string {
	if s.QuestionFor != nil {
		return s.QuestionFor(sources)
	}
	return s.Question
}

func (o *Orchestrator) budget(vendor ai.Vendor, ceiling int) int {
	b := vendor.ContextBudget()
	if ceiling > 0 && ceiling < b {
		b = ceiling
	}
	return b
}

// fallbackBudget shrinks the pack for the retry: the alternate may have a
// smaller context window, and the primary failure may itself have been a
// size problem.
func fallbackBudget(primary, alt ai.Vendor, ceiling int) int {
	b := alt.ContextBudget()
	if p := primary.ContextBudget(); p < b {
		b = p
	}
	if ceiling > 0 && ceiling < b {
		b = ceiling
	}
	return b / 3
}

// fallbackNotice is appended to the content itself, not just metadata, so
// the audit trail survives even if response metadata is dropped downstream.
func fallbackNotice(primary, alt ai.Vendor, primaryErr error) string {
	return fmt.Sprintf("\n\n---\nNote: this answer was generated by fallback model %s because %s was unavailable (%s).",
		alt.GetName(), primary.GetName(), domain.KindOf(primaryErr))
}
