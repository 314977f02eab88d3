package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamWheatley/rainier/internal/domain"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{
			name:   "bare object",
			in:     `{"a":1}`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "json fence",
			in:     "```json\n{\"a\":1}\n```",
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "prose around array",
			in:     "Here are the results:\n[1,2,3]\nLet me know if you need more.",
			want:   "[1,2,3]",
			wantOK: true,
		},
		{
			name:   "no json at all",
			in:     "I could not produce any structured output, sorry.",
			wantOK: false,
		},
		{
			name:   "empty input",
			in:     "",
			wantOK: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSON(tc.in)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestParseAskReply(t *testing.T) {
	raw := "```json\n" + `{"answer":"Paris.","sources":[{"document":"interview_03.txt","excerpt":"we met in Paris","confidence":0.9}]}` + "\n```"
	answer, sources := ParseAskReply(raw)
	assert.Equal(t, "Paris.", answer)
	require.Len(t, sources, 1)
	assert.Equal(t, "interview_03.txt", sources[0].Document)
	assert.InDelta(t, 0.9, sources[0].Confidence, 1e-9)
}

func TestParseAskReplyPlainText(t *testing.T) {
	answer, sources := ParseAskReply("Just a plain sentence with no JSON.")
	assert.Equal(t, "Just a plain sentence with no JSON.", answer)
	assert.Empty(t, sources)
}

// A prose answer that happens to contain a brace pair must come back whole,
// not reduced to the brace substring.
func TestParseAskReplyProseWithBraces(t *testing.T) {
	raw := "The budget is about {unknown} dollars according to interview_02."
	answer, sources := ParseAskReply(raw)
	assert.Equal(t, raw, answer)
	assert.Empty(t, sources)
}

// Valid JSON without an answer field passes through cleaned so the
// synthesis pipeline can parse the category arrays out of it.
func TestParseAskReplySynthesisPassthrough(t *testing.T) {
	raw := "```json\n" + `{"themes":[{"title":"t","description":"d"}]}` + "\n```"
	answer, sources := ParseAskReply(raw)
	assert.Equal(t, `{"themes":[{"title":"t","description":"d"}]}`, answer)
	assert.Empty(t, sources)
}

func TestParseAskReplyClampsConfidence(t *testing.T) {
	raw := `{"answer":"x","sources":[{"document":"d","excerpt":"e","confidence":3.2}]}`
	_, sources := ParseAskReply(raw)
	require.Len(t, sources, 1)
	assert.Equal(t, 1.0, sources[0].Confidence)
}

func TestParseInsightBatchAllCategories(t *testing.T) {
	raw := `{
		"themes":[{"title":"t1","description":"d1","confidence":0.8,"sources":["a.txt"]}],
		"biases":[{"title":"b1","description":"d2","confidence":0.6,"sources":["b.txt"]}],
		"patterns":[{"title":"p1","description":"d3","confidence":0.7,"sources":[]}],
		"recommendations":[{"title":"r1","description":"d4","confidence":0.9,"sources":["a.txt","b.txt"]}]
	}`
	got := ParseInsightBatch(raw)
	for _, c := range domain.Categories {
		require.Len(t, got[c], 1, "category %s", c)
	}
	assert.Equal(t, "t1", got[domain.CategoryTheme][0].Title)
	assert.Equal(t, []string{"a.txt", "b.txt"}, got[domain.CategoryRecommendation][0].Sources)
}

// One malformed category array must not poison the other three.
func TestParseInsightBatchCategoryIsolation(t *testing.T) {
	raw := `{
		"themes":[{"title":"t1","description":"d1","confidence":0.8,"sources":["a.txt"]}],
		"biases":"this is not an array",
		"patterns":[{"title":"p1","description":"d3","confidence":0.7}],
		"recommendations":[{"title":"r1","description":"d4","confidence":0.9}]
	}`
	got := ParseInsightBatch(raw)
	assert.Len(t, got[domain.CategoryTheme], 1)
	assert.Empty(t, got[domain.CategoryBias])
	assert.Len(t, got[domain.CategoryPattern], 1)
	assert.Len(t, got[domain.CategoryRecommendation], 1)
}

func TestParseInsightBatchGarbage(t *testing.T) {
	got := ParseInsightBatch("the model timed out mid sentence and returned not")
	for _, c := range domain.Categories {
		assert.Empty(t, got[c])
	}
}
