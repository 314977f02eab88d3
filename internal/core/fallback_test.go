package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamWheatley/rainier/internal/domain"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/ai/perplexity"
)

func newPair(t *testing.T) (*ai.Registry, *mockVendor, *mockVendor) {
	t.Helper()
	primary := &mockVendor{name: "primary", fallback: "secondary", budget: 12000}
	secondary := &mockVendor{name: "secondary", fallback: "primary", budget: 9000}
	registry := ai.NewRegistry()
	registry.Register(primary)
	registry.Register(secondary)
	return registry, primary, secondary
}

func rateLimited(name string) error {
	return domain.NewProviderError(name, 429, errors.New("rate limit exceeded"))
}

func TestAskPrimarySuccessNoFallback(t *testing.T) {
	registry, primary, secondary := newPair(t)
	primary.askFn = askResponse("answer")
	orch := NewOrchestrator(registry, nil)

	resp, err := orch.Ask(context.Background(), primary, &AskSpec{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "answer", resp.Content)
	assert.False(t, resp.UsedFallback)
	assert.Equal(t, 0, secondary.askCalls)
}

func TestAskRetryableFailureSingleFallbackHop(t *testing.T) {
	registry, primary, secondary := newPair(t)
	primary.askFn = askFailure(rateLimited("primary"))
	secondary.askFn = askResponse("rescued")
	orch := NewOrchestrator(registry, nil)

	docs := []domain.Document{makeDoc("big.txt", 30000)}
	resp, err := orch.Ask(context.Background(), primary, &AskSpec{Question: "q", Docs: docs})
	require.NoError(t, err)

	assert.Equal(t, 1, primary.askCalls)
	assert.Equal(t, 1, secondary.askCalls)
	assert.True(t, resp.UsedFallback)
	// Disclosure lives in the content itself, not just metadata.
	assert.Contains(t, resp.Content, "fallback model secondary")
	assert.Contains(t, resp.Content, "rate_limited")

	// The retry repacks at a materially smaller budget.
	require.Len(t, primary.lastReq.Sources, 1)
	require.Len(t, secondary.lastReq.Sources, 1)
	assert.Less(t, len(secondary.lastReq.Sources[0].Content), len(primary.lastReq.Sources[0].Content))
}

// A question rendered from the pack must be rebuilt for the fallback
// attempt, whose smaller budget can drop documents from the pack.
func TestAskQuestionRebuiltFromFallbackPack(t *testing.T) {
	registry, primary, secondary := newPair(t)
	primary.askFn = askFailure(rateLimited("primary"))
	secondary.askFn = askResponse("rescued")
	orch := NewOrchestrator(registry, nil)

	docs := []domain.Document{makeDoc("a.txt", 2000), makeDoc("b.txt", 2000), makeDoc("c.txt", 2000)}
	titlesOf := func(sources []domain.PackedSource) string {
		names := make([]string, len(sources))
		for i, s := range sources {
			names[i] = s.Title
		}
		return strings.Join(names, ",")
	}

	_, err := orch.Ask(context.Background(), primary, &AskSpec{QuestionFor: titlesOf, Docs: docs})
	require.NoError(t, err)

	// Primary budget 12000 holds all three; fallback budget 9000/3 drops c.
	assert.Equal(t, "a.txt,b.txt,c.txt", primary.lastReq.Question)
	require.Len(t, secondary.lastReq.Sources, 2)
	assert.Equal(t, titlesOf(secondary.lastReq.Sources), secondary.lastReq.Question)
	assert.Equal(t, "a.txt,b.txt", secondary.lastReq.Question)
}

func TestAskNonRetryableFailureNoFallback(t *testing.T) {
	registry, primary, secondary := newPair(t)
	cause := domain.NewProviderError("primary", 400, errors.New("invalid input"))
	primary.askFn = askFailure(cause)
	orch := NewOrchestrator(registry, nil)

	_, err := orch.Ask(context.Background(), primary, &AskSpec{Question: "q"})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, secondary.askCalls)
}

func TestAskUnclassifiedErrorNoFallback(t *testing.T) {
	registry, primary, secondary := newPair(t)
	primary.askFn = askFailure(errors.New("some domain failure"))
	orch := NewOrchestrator(registry, nil)

	_, err := orch.Ask(context.Background(), primary, &AskSpec{Question: "q"})
	assert.Error(t, err)
	assert.Equal(t, 0, secondary.askCalls)
}

// A double failure surfaces the original primary error, not the fallback's.
func TestAskDoubleFailureSurfacesPrimaryError(t *testing.T) {
	registry, primary, secondary := newPair(t)
	primaryErr := rateLimited("primary")
	primary.askFn = askFailure(primaryErr)
	secondary.askFn = askFailure(rateLimited("secondary"))
	orch := NewOrchestrator(registry, nil)

	_, err := orch.Ask(context.Background(), primary, &AskSpec{Question: "q"})
	assert.ErrorIs(t, err, primaryErr)
	// One hop only: the secondary's own retryable failure is not retried.
	assert.Equal(t, 1, primary.askCalls)
	assert.Equal(t, 1, secondary.askCalls)
}

func TestAskNoRegisteredFallback(t *testing.T) {
	primary := &mockVendor{name: "primary", fallback: "missing", budget: 12000}
	registry := ai.NewRegistry()
	registry.Register(primary)
	primaryErr := rateLimited("primary")
	primary.askFn = askFailure(primaryErr)
	orch := NewOrchestrator(registry, nil)

	_, err := orch.Ask(context.Background(), primary, &AskSpec{Question: "q"})
	assert.ErrorIs(t, err, primaryErr)
}

func TestAskWebContextPrepended(t *testing.T) {
	registry, primary, _ := newPair(t)
	primary.askFn = askResponse("answer")
	searcher := &mockSearcher{text: "fresh web context" + strings.Repeat(" filler", 100)}
	orch := NewOrchestrator(registry, searcher)

	docs := []domain.Document{makeDoc("a.txt", 1000)}
	_, err := orch.Ask(context.Background(), primary, &AskSpec{Question: "q", Docs: docs, UseWebContext: true})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(primary.lastReq.Sources), 2)
	assert.Equal(t, perplexity.WebContextTitle, primary.lastReq.Sources[0].Title)
	assert.Equal(t, "a.txt", primary.lastReq.Sources[1].Title)
}

// A failed augmentation degrades to document-only analysis silently.
func TestAskWebContextFailureDegrades(t *testing.T) {
	registry, primary, _ := newPair(t)
	primary.askFn = askResponse("answer")
	searcher := &mockSearcher{err: errors.New("search quota exhausted")}
	orch := NewOrchestrator(registry, searcher)

	docs := []domain.Document{makeDoc("a.txt", 1000)}
	resp, err := orch.Ask(context.Background(), primary, &AskSpec{Question: "q", Docs: docs, UseWebContext: true})
	require.NoError(t, err)
	assert.Equal(t, "answer", resp.Content)
	assert.Equal(t, 1, searcher.calls)
	require.Len(t, primary.lastReq.Sources, 1)
	assert.Equal(t, "a.txt", primary.lastReq.Sources[0].Title)
}
