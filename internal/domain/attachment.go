package domain

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	readability "github.com/go-shiori/go-readability"

	debuglog "github.com/SamWheatley/rainier/internal/log"
)

// Attachment is one file a user attached to a chat turn. Either StorageKey
// (already uploaded to the data lake) or Content (pasted inline) is set.
type Attachment struct {
	Name       string `json:"name"`
	StorageKey string `json:"storageKey,omitempty"`
	Content    string `json:"content,omitempty"`
}

// ToDocument converts the attachment into a corpus document. Inline content
// is resident; uploaded files stay remote and are fetched on demand.
func (a *Attachment) ToDocument() Document {
	doc := Document{
		ID:    a.Name,
		Title: a.Name,
	}
	if a.StorageKey != "" {
		doc.Origin = OriginRemote
		doc.StorageKey = a.StorageKey
	} else {
		doc.Origin = OriginResident
		doc.Body = CleanAttachmentText(a.Name, []byte(a.Content))
		doc.Size = int64(len(doc.Body))
	}
	return doc
}

// CleanAttachmentText strips markup from an attachment body before it is
// handed to a model. HTML goes through readability extraction; everything
// else passes through untouched. Extraction failure keeps the original
// input rather than losing the document.
func CleanAttachmentText(name string, raw []byte) string {
	mime := mimetype.Detect(raw)
	if !mime.Is("text/html") && !strings.HasSuffix(strings.ToLower(name), ".html") {
		return string(raw)
	}
	article, err := readability.FromReader(strings.NewReader(string(raw)), nil)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		debuglog.Debug(debuglog.Basic, "readability failed for %s, keeping original input: %v\n", name, err)
		return string(raw)
	}
	return article.TextContent
}
