package core

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamWheatley/rainier/internal/domain"
	"github.com/SamWheatley/rainier/internal/plugins/db/researchdb"
)

// mockVendor implements the ai.Vendor interface for testing.
type mockVendor struct {
	name     string
	fallback string
	budget   int

	askFn    func(context.Context, *domain.AskRequest) (*domain.AskResponse, error)
	askCalls int
	lastReq  *domain.AskRequest

	extractFn func(raw, filename string) (string, error)
}

func (m *mockVendor) GetName() string      { return m.name }
func (m *mockVendor) ContextBudget() int   { return m.budget }
func (m *mockVendor) FallbackName() string { return m.fallback }

func (m *mockVendor) Ask(ctx context.Context, req *domain.AskRequest) (*domain.AskResponse, error) {
	m.askCalls++
	m.lastReq = req
	if m.askFn != nil {
		return m.askFn(ctx, req)
	}
	return &domain.AskResponse{Content: "ok", Model: m.name}, nil
}

func (m *mockVendor) ExtractCleanText(_ context.Context, raw, filename string) (string, error) {
	if m.extractFn != nil {
		return m.extractFn(raw, filename)
	}
	return raw, nil
}

func (m *mockVendor) SummarizeToTitle(context.Context, string) string {
	return "Mock Title"
}

// mockFetcher serves document bodies from a map; missing keys fail.
type mockFetcher struct {
	bodies map[string]string
	calls  []string
}

func (f *mockFetcher) Fetch(_ context.Context, key string) (string, error) {
	f.calls = append(f.calls, key)
	body, ok := f.bodies[key]
	if !ok {
		return "", fmt.Errorf("fetch %s: no such key", key)
	}
	return body, nil
}

// mockSearcher is a canned web-context source.
type mockSearcher struct {
	text  string
	err   error
	calls int
}

func (s *mockSearcher) SearchContext(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func newTestStore(t *testing.T) *researchdb.Store {
	t.Helper()
	store, err := researchdb.Open(filepath.Join(t.TempDir(), "core_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func askResponse(content string) func(context.Context, *domain.AskRequest) (*domain.AskResponse, error) {
	return func(context.Context, *domain.AskRequest) (*domain.AskResponse, error) {
		return &domain.AskResponse{Content: content}, nil
	}
}

func askFailure(err error) func(context.Context, *domain.AskRequest) (*domain.AskResponse, error) {
	return func(context.Context, *domain.AskRequest) (*domain.AskResponse, error) {
		return nil, err
	}
}
