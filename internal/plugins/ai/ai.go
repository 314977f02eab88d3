// Package ai defines the three-operation capability surface every LLM
// backend implements, and the registry callers resolve backends through.
// Nothing outside the vendor packages ever sees a vendor-specific field.
package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/SamWheatley/rainier/internal/domain"
)

// ErrUnknownModel is returned by Registry.Get for names with no registered
// vendor, including vendors skipped at startup for missing keys.
var ErrUnknownModel = errors.New("unknown model")

// DefaultTitle is returned by SummarizeToTitle whenever generation fails or
// produces nothing usable.
const DefaultTitle = "New Conversation"

// CharsPerToken is the fixed ratio used to approximate token counts from
// character budgets.
const CharsPerToken = 4

// Vendor is one interchangeable LLM backend.
type Vendor interface {
	// GetName returns the human identifier used in fallback annotations.
	GetName() string
	// ContextBudget returns the maximum practical prompt size in characters.
	ContextBudget() int
	// FallbackName nominates exactly one alternate backend.
	FallbackName() string

	// Ask answers a question over budgeted sources. Parse failures of the
	// provider's own reply degrade to best-effort content; only transport,
	// auth and quota failures come back as errors.
	Ask(ctx context.Context, req *domain.AskRequest) (*domain.AskResponse, error)
	// ExtractCleanText turns raw file content into clean readable text.
	ExtractCleanText(ctx context.Context, raw, filename string) (string, error)
	// SummarizeToTitle derives a short conversation title from the first
	// message. It is total: failures yield DefaultTitle, never an error.
	SummarizeToTitle(ctx context.Context, firstMessage string) string
}

// Registry resolves vendor names to implementations. It is built once at
// startup from the process config and read-only afterwards.
type Registry struct {
	vendors map[string]Vendor
}

func NewRegistry() *Registry {
	return &Registry{vendors: map[string]Vendor{}}
}

func (r *Registry) Register(v Vendor) {
	r.vendors[v.GetName()] = v
}

// Get resolves a vendor by name.
func (r *Registry) Get(name string) (Vendor, error) {
	v, ok := r.vendors[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModel, name)
	}
	return v, nil
}

// Fallback resolves the alternate a vendor nominates. The second return is
// false when the alternate is not registered (e.g. its key is missing).
func (r *Registry) Fallback(v Vendor) (Vendor, bool) {
	alt, ok := r.vendors[v.FallbackName()]
	if !ok || alt.GetName() == v.GetName() {
		return nil, false
	}
	return alt, true
}

// Names lists the registered vendors in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.vendors))
	for n := range r.vendors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
