package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/SamWheatley/rainier/internal/domain"
	"github.com/SamWheatley/rainier/internal/i18n"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/db/researchdb"
	"github.com/SamWheatley/rainier/internal/plugins/schema"
)

const (
	// perDocumentCap bounds a single transcript before packing so one huge
	// file cannot starve the rest of the corpus.
	perDocumentCap = 15000
	// synthesisCeiling is deliberately far below every provider's hard
	// maximum: the pipeline issues one large call per run and must stay
	// clear of shared per-minute rate limits.
	synthesisCeiling = 50000
)

// Analyst drives the session-scoped synthesis pipeline: one "generate
// insights" click becomes one session, one batched provider call, and a set
// of categorized, source-attributed insights.
type Analyst struct {
	registry *ai.Registry
	orch     *Orchestrator
	store    *researchdb.Store
	fetcher  Fetcher
	bucket   string
}

func NewAnalyst(registry *ai.Registry, orch *Orchestrator, store *researchdb.Store, fetcher Fetcher, bucket string) *Analyst {
	return &Analyst{registry: registry, orch: orch, store: store, fetcher: fetcher, bucket: bucket}
}

type GenerateRequest struct {
	Dataset domain.Scope
	Model   string
}

type GenerateResult struct {
	SessionID string `json:"sessionId"`
	Count     int    `json:"count"`
}

// Generate runs the full pipeline. The session row is written before the
// provider call so a mid-pipeline failure still leaves a traceable session;
// a failed provider call yields a placeholder recommendation instead of an
// empty session.
func (a *Analyst) Generate(ctx context.Context, ownerID string, req *GenerateRequest) (*GenerateResult, error) {
	vendor, err := a.registry.Get(req.Model)
	if err != nil {
		return nil, err
	}

	docs, err := a.store.ListDocuments(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list documents")
	}
	docs = lo.Filter(docs, func(d domain.Document, _ int) bool { return d.InScope(req.Dataset) })

	convCount, err := a.store.CountMessages(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "count conversations")
	}
	if len(docs) == 0 && convCount == 0 {
		return nil, domain.ErrNothingToAnalyze
	}

	session := &domain.InsightSession{
		OwnerID: ownerID,
		Title:   sessionTitle(time.Now(), req.Dataset, vendor.GetName()),
		Dataset: req.Dataset,
		Model:   vendor.GetName(),
	}
	if err := a.store.CreateSession(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(err, "create session")
	}

	docs = resolveBodies(ctx, a.fetcher, docs, perDocumentCap)

	pack := PackSources(docs, synthesisCeiling)
	debuglog.Debug(debuglog.Basic, "synthesis pack: %d documents in, %d excluded, %d chars used\n",
		len(pack.Sources), pack.Excluded, pack.Used)

	resp, askErr := a.orch.Ask(ctx, vendor, &AskSpec{
		// Rendered per attempt: the citation constraint must name only
		// titles the model answering that attempt was actually shown.
		QuestionFor: synthesisPrompt,
		Docs:        docs,
		Ceiling:     synthesisCeiling,
	})
	if askErr != nil {
		if err := a.persistPlaceholder(ctx, session, len(docs), convCount, askErr); err != nil {
			return nil, err
		}
		return &GenerateResult{SessionID: session.ID, Count: 1}, nil
	}

	if err := schema.ValidateInsightBatch(resp.Content); err != nil {
		debuglog.Debug(debuglog.Basic, "synthesis reply off-contract, salvaging what parses: %v\n", err)
	}
	batch := schema.ParseInsightBatch(resp.Content)
	locators := locatorIndex(pack.Sources)

	count := 0
	for _, category := range domain.Categories {
		for _, item := range batch[category] {
			insight := &domain.Insight{
				SessionID:   session.ID,
				OwnerID:     ownerID,
				Category:    category,
				Title:       item.Title,
				Description: item.Description,
				Confidence:  item.Confidence,
				Sources:     canonicalSources(item.Sources, locators, a.bucket),
			}
			if err := a.store.CreateInsight(ctx, insight); err != nil {
				return nil, pkgerrors.Wrap(err, "persist insight")
			}
			count++
		}
	}
	return &GenerateResult{SessionID: session.ID, Count: count}, nil
}

// persistPlaceholder writes the one insight a failed run leaves behind, so
// the user sees something actionable instead of an empty session.
func (a *Analyst) persistPlaceholder(ctx context.Context, session *domain.InsightSession, fileCount, convCount int, cause error) error {
	debuglog.Log("synthesis call failed for session %s: %v\n", session.ID, cause)
	placeholder := &domain.Insight{
		SessionID: session.ID,
		OwnerID:   session.OwnerID,
		Category:  domain.CategoryRecommendation,
		Title:     i18n.T("insights_placeholder_title"),
		Description: fmt.Sprintf(
			"%d research files and %d conversations were available for analysis, but the AI request did not complete. Run Generate Insights again to retry.",
			fileCount, convCount),
		Confidence: 0,
	}
	return pkgerrors.Wrap(a.store.CreateInsight(ctx, placeholder), "persist placeholder insight")
}

// synthesisPrompt is the single batched structured-output request: four
// parallel category arrays in one round trip, citing only titles the model
// was actually shown.
func synthesisPrompt(sources []domain.PackedSource) string {
	titles := lo.Map(sources, func(s domain.PackedSource, _ int) string { return s.Title })
	var b strings.Builder
	b.WriteString("Analyze the source documents and produce research insights in four categories.\n")
	b.WriteString("Respond with a single JSON object of the form:\n")
	b.WriteString(`{"themes": [...], "biases": [...], "patterns": [...], "recommendations": [...]}` + "\n")
	b.WriteString(`Each array entry is {"title": "...", "description": "...", "confidence": <0..1>, "sources": ["<document title>", ...]}.` + "\n")
	b.WriteString("themes: recurring ideas across documents. biases: methodological concerns and blind spots. patterns: behavioral or structural patterns. recommendations: actionable next steps.\n")
	b.WriteString("Cite sources only from this exact list of document titles: ")
	b.WriteString(strings.Join(titles, "; "))
	b.WriteString(".")
	return b.String()
}

func locatorIndex(sources []domain.PackedSource) map[string]string {
	idx := make(map[string]string, len(sources))
	for _, s := range sources {
		if s.Locator != "" {
			idx[s.Title] = s.Locator
		}
	}
	return idx
}

// canonicalSources rewrites cited titles into canonical references: remote
// documents gain an s3 locator suffix a UI can deep-link through, and
// citations that match nothing stay as plain text rather than being dropped.
func canonicalSources(cited []string, locators map[string]string, bucket string) []string {
	return lo.Map(cited, func(title string, _ int) string {
		if key, ok := locators[title]; ok {
			return fmt.Sprintf("%s (s3://%s/%s)", title, bucket, key)
		}
		return title
	})
}

var datasetLabels = map[domain.Scope]string{
	domain.ScopeAll:      "All Data",
	domain.ScopeShared:   "Shared Data",
	domain.ScopePersonal: "Personal Only",
}

var modelLabels = map[string]string{
	"openai":    "OpenAI",
	"anthropic": "Anthropic",
	"grok":      "Grok",
	"gemini":    "Gemini",
	"ollama":    "Ollama",
}

// sessionTitle derives the descriptive run title, e.g.
// "February 3, 2026 All Data (OpenAI) Insights".
func sessionTitle(now time.Time, dataset domain.Scope, model string) string {
	label, ok := datasetLabels[dataset]
	if !ok {
		label = datasetLabels[domain.ScopeAll]
	}
	modelLabel, ok := modelLabels[model]
	if !ok {
		modelLabel = model
	}
	return fmt.Sprintf("%s %s (%s) Insights", now.Format("January 2, 2006"), label, modelLabel)
}
