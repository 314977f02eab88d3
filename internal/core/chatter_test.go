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
	"github.com/SamWheatley/rainier/internal/plugins/db/researchdb"
)

func newChatter(t *testing.T, vendor *mockVendor) (*Chatter, *researchdb.Store) {
	t.Helper()
	registry := ai.NewRegistry()
	registry.Register(vendor)
	store := newTestStore(t)
	orch := NewOrchestrator(registry, nil)
	return NewChatter(registry, orch, store, &mockFetcher{}, vendor.name), store
}

func TestSendCreatesThreadTitledFromFirstMessage(t *testing.T) {
	ctx := context.Background()
	vendor := &mockVendor{name: "openai", budget: 48000}
	vendor.askFn = askResponse("hello back")
	chatter, store := newChatter(t, vendor)

	result, err := chatter.Send(ctx, "maria", &ChatRequest{Content: "what did interviewees say about onboarding?"})
	require.NoError(t, err)

	require.NotNil(t, result.Thread)
	assert.NotEmpty(t, result.Thread.ID)
	assert.Equal(t, "Mock Title", result.Thread.Title)
	assert.Equal(t, "maria", result.Thread.OwnerID)

	msgs, err := store.ListMessages(ctx, result.Thread.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hello back", msgs[1].Content)
}

func TestSendExistingThreadCarriesHistory(t *testing.T) {
	ctx := context.Background()
	vendor := &mockVendor{name: "openai", budget: 48000}
	vendor.askFn = askResponse("second answer")
	chatter, store := newChatter(t, vendor)

	thread := &domain.Thread{OwnerID: "maria", Title: "Onboarding"}
	require.NoError(t, store.CreateThread(ctx, thread))
	require.NoError(t, store.AppendMessage(ctx, &domain.Message{
		ThreadID: thread.ID, Role: domain.RoleUser, Content: "first question",
	}))
	require.NoError(t, store.AppendMessage(ctx, &domain.Message{
		ThreadID: thread.ID, Role: domain.RoleAssistant, Content: "first answer",
	}))

	result, err := chatter.Send(ctx, "maria", &ChatRequest{ThreadID: thread.ID, Content: "follow up"})
	require.NoError(t, err)
	assert.Equal(t, thread.ID, result.Thread.ID)

	assert.Contains(t, vendor.lastReq.Context, "user: first question")
	assert.Contains(t, vendor.lastReq.Context, "assistant: first answer")
	// The new turn is persisted after history is captured, not inside it.
	assert.NotContains(t, vendor.lastReq.Context, "follow up")
}

func TestSendUserMessageSurvivesProviderFailure(t *testing.T) {
	ctx := context.Background()
	vendor := &mockVendor{name: "openai", budget: 48000}
	vendor.askFn = askFailure(errors.New("model offline"))
	chatter, store := newChatter(t, vendor)

	thread := &domain.Thread{OwnerID: "maria", Title: "Onboarding"}
	require.NoError(t, store.CreateThread(ctx, thread))

	_, err := chatter.Send(ctx, "maria", &ChatRequest{ThreadID: thread.ID, Content: "doomed question"})
	require.Error(t, err)

	msgs, err := store.ListMessages(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "doomed question", msgs[0].Content)
}

func TestSendBadgeFollowsCitationConfidence(t *testing.T) {
	ctx := context.Background()
	vendor := &mockVendor{name: "openai", budget: 48000}
	citations := []domain.SourceCitation{
		{Document: "Interview A", Excerpt: "…", Confidence: 0.9},
		{Document: "Interview B", Excerpt: "…", Confidence: 0.8},
	}
	vendor.askFn = func(context.Context, *domain.AskRequest) (*domain.AskResponse, error) {
		return &domain.AskResponse{Content: "cited answer", Sources: citations}, nil
	}
	chatter, store := newChatter(t, vendor)

	result, err := chatter.Send(ctx, "maria", &ChatRequest{Content: "q"})
	require.NoError(t, err)
	assert.Equal(t, "high", result.AssistantMessage.Badge)
	assert.Equal(t, citations, result.Sources)

	msgs, err := store.ListMessages(ctx, result.Thread.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "high", msgs[1].Badge)
	assert.Equal(t, citations, msgs[1].Sources)
}

func TestSendAttachmentBecomesSource(t *testing.T) {
	ctx := context.Background()
	vendor := &mockVendor{name: "openai", budget: 48000}
	vendor.askFn = askResponse("ok")
	chatter, _ := newChatter(t, vendor)

	_, err := chatter.Send(ctx, "maria", &ChatRequest{
		Content: "summarize this transcript",
		Attachments: []domain.Attachment{
			{Name: "pasted.txt", Content: strings.Repeat("interview text ", 100)},
		},
	})
	require.NoError(t, err)
	require.Len(t, vendor.lastReq.Sources, 1)
	assert.Equal(t, "pasted.txt", vendor.lastReq.Sources[0].Title)
	assert.Contains(t, vendor.lastReq.Sources[0].Content, "interview text")
}

func TestSendAttachmentCleanedByModel(t *testing.T) {
	ctx := context.Background()
	vendor := &mockVendor{name: "openai", budget: 48000}
	vendor.askFn = askResponse("ok")
	vendor.extractFn = func(raw, filename string) (string, error) {
		if filename == "broken.txt" {
			return "", errors.New("extract failed")
		}
		return "cleaned transcript", nil
	}
	chatter, _ := newChatter(t, vendor)

	_, err := chatter.Send(ctx, "maria", &ChatRequest{
		Content: "compare these",
		Attachments: []domain.Attachment{
			{Name: "good.txt", Content: strings.Repeat("noisy raw text ", 50)},
			{Name: "broken.txt", Content: strings.Repeat("other raw text ", 50)},
		},
	})
	require.NoError(t, err)
	require.Len(t, vendor.lastReq.Sources, 2)
	assert.Equal(t, "cleaned transcript", vendor.lastReq.Sources[0].Content)
	// Extraction failure keeps the raw body instead of dropping the source.
	assert.Contains(t, vendor.lastReq.Sources[1].Content, "other raw text")
}

func TestSendRejectsEmptyContent(t *testing.T) {
	vendor := &mockVendor{name: "openai", budget: 48000}
	chatter, _ := newChatter(t, vendor)

	_, err := chatter.Send(context.Background(), "maria", &ChatRequest{Content: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, vendor.askCalls)
}

func TestSendUnknownThread(t *testing.T) {
	vendor := &mockVendor{name: "openai", budget: 48000}
	chatter, _ := newChatter(t, vendor)

	_, err := chatter.Send(context.Background(), "maria", &ChatRequest{ThreadID: "nope", Content: "q"})
	assert.ErrorIs(t, err, researchdb.ErrNotFound)
}

func TestSendDefaultModel(t *testing.T) {
	vendor := &mockVendor{name: "openai", budget: 48000}
	vendor.askFn = askResponse("ok")
	chatter, _ := newChatter(t, vendor)

	_, err := chatter.Send(context.Background(), "maria", &ChatRequest{Content: "q"})
	require.NoError(t, err)
	assert.Equal(t, 1, vendor.askCalls)
}

func TestRenderHistoryCapsTurns(t *testing.T) {
	var history []domain.Message
	for i := 0; i < 10; i++ {
		history = append(history, domain.Message{Role: domain.RoleUser, Content: strings.Repeat("x", i+1)})
	}
	rendered := renderHistory(history)
	// Only the most recent turns survive.
	assert.NotContains(t, rendered, "user: xxxx\n")
	assert.Contains(t, rendered, "user: "+strings.Repeat("x", 10))
	assert.Equal(t, historyTurns, strings.Count(rendered, "user: "))

	assert.Empty(t, renderHistory(nil))
}
