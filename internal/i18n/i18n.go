// Package i18n localizes user-facing strings. The orchestration layer keys
// every message a user can see through T so the API surface stays
// translatable even though only English ships today.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	gi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundle    *gi18n.Bundle
	localizer *gi18n.Localizer
)

func init() {
	bundle = gi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	if _, err := bundle.LoadMessageFileFS(localeFS, "locales/active.en.json"); err != nil {
		panic(fmt.Sprintf("i18n: failed to load embedded locale: %v", err))
	}
	localizer = gi18n.NewLocalizer(bundle, "en")
}

// Init returns a localizer for the requested language, falling back to English
// for messages that have no translation.
func Init(lang string) (*gi18n.Localizer, error) {
	if lang == "" {
		lang = "en"
	}
	if _, err := language.Parse(lang); err != nil {
		return nil, fmt.Errorf("unsupported language %q: %w", lang, err)
	}
	return gi18n.NewLocalizer(bundle, lang, "en"), nil
}

// T returns the localized message for id. Unknown ids come back verbatim so a
// missing translation never hides an error path.
func T(id string) string {
	msg, err := localizer.Localize(&gi18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}
