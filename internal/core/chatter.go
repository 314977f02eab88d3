package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/SamWheatley/rainier/internal/domain"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/db/researchdb"
)

// historyTurns caps how many prior turns ride along as situational context.
const historyTurns = 6

// ErrEmptyMessage rejects a chat turn with no content, before anything is
// persisted or any provider is called.
var ErrEmptyMessage = errors.New("no message provided")

// Chatter turns one chat request into a persisted user/assistant message
// pair, with sources produced by the orchestration layer.
type Chatter struct {
	registry     *ai.Registry
	orch         *Orchestrator
	store        *researchdb.Store
	fetcher      Fetcher
	defaultModel string
}

func NewChatter(registry *ai.Registry, orch *Orchestrator, store *researchdb.Store, fetcher Fetcher, defaultModel string) *Chatter {
	return &Chatter{registry: registry, orch: orch, store: store, fetcher: fetcher, defaultModel: defaultModel}
}

type ChatRequest struct {
	ThreadID      string              `json:"threadId,omitempty"`
	Content       string              `json:"content"`
	Model         string              `json:"model,omitempty"`
	UseWebContext bool                `json:"useWebContext,omitempty"`
	Attachments   []domain.Attachment `json:"attachments,omitempty"`
}

type ChatResult struct {
	Thread           *domain.Thread          `json:"thread"`
	UserMessage      *domain.Message         `json:"userMessage"`
	AssistantMessage *domain.Message         `json:"assistantMessage"`
	Sources          []domain.SourceCitation `json:"sources"`
}

// Send processes one chat turn. The user message is persisted before the
// provider call so a failed turn still shows in the thread history.
func (c *Chatter) Send(ctx context.Context, ownerID string, req *ChatRequest) (*ChatResult, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	vendor, err := c.registry.Get(model)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyMessage
	}

	thread, err := c.resolveThread(ctx, ownerID, req, vendor)
	if err != nil {
		return nil, err
	}

	history, err := c.store.ListMessages(ctx, thread.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load thread history")
	}

	userMsg := &domain.Message{ThreadID: thread.ID, Role: domain.RoleUser, Content: req.Content}
	if err := c.store.AppendMessage(ctx, userMsg); err != nil {
		return nil, pkgerrors.Wrap(err, "persist user message")
	}

	docs := make([]domain.Document, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		docs = append(docs, att.ToDocument())
	}
	docs = resolveBodies(ctx, c.fetcher, docs, perDocumentCap)
	for i := range docs {
		// Attachment bodies arrive noisy (transcription artifacts, export
		// boilerplate); the model cleans them before they become sources.
		cleaned, err := vendor.ExtractCleanText(ctx, docs[i].Body, docs[i].Title)
		if err != nil || strings.TrimSpace(cleaned) == "" {
			debuglog.Debug(debuglog.Basic, "extract clean text failed for %s, using raw body: %v\n", docs[i].Title, err)
			continue
		}
		docs[i].Body = cleaned
	}

	resp, err := c.orch.Ask(ctx, vendor, &AskSpec{
		Question:      req.Content,
		Context:       renderHistory(history),
		Docs:          docs,
		UseWebContext: req.UseWebContext,
	})
	if err != nil {
		return nil, err
	}

	assistantMsg := &domain.Message{
		ThreadID: thread.ID,
		Role:     domain.RoleAssistant,
		Content:  resp.Content,
		Sources:  resp.Sources,
		Badge:    domain.ConfidenceBadge(resp.Sources),
	}
	if err := c.store.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, pkgerrors.Wrap(err, "persist assistant message")
	}

	return &ChatResult{
		Thread:           thread,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Sources:          resp.Sources,
	}, nil
}

// resolveThread loads an existing thread or starts a new one titled from
// the first message.
func (c *Chatter) resolveThread(ctx context.Context, ownerID string, req *ChatRequest, vendor ai.Vendor) (*domain.Thread, error) {
	if req.ThreadID != "" {
		thread, err := c.store.GetThread(ctx, ownerID, req.ThreadID)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "thread %s", req.ThreadID)
		}
		return thread, nil
	}
	thread := &domain.Thread{
		OwnerID: ownerID,
		Title:   vendor.SummarizeToTitle(ctx, req.Content),
	}
	if err := c.store.CreateThread(ctx, thread); err != nil {
		return nil, pkgerrors.Wrap(err, "create thread")
	}
	return thread, nil
}

func renderHistory(history []domain.Message) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	var b strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return strings.TrimSpace(b.String())
}
