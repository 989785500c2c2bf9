// Package locale renders the user-facing status messages.
package locale

import (
	"embed"
	"fmt"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var files embed.FS

// Messages localizes status text for one language.
type Messages struct {
	loc  *i18n.Localizer
	sep  string
	lang string
}

// New loads the embedded message files and returns Messages for lang
// ("en", "ja", ...). Unknown languages fall back to English.
func New(lang string) (*Messages, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	entries, err := files.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(files, "locales/"+e.Name()); err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
	}
	sep := ", "
	if strings.HasPrefix(lang, "ja") {
		sep = "・"
	}
	return &Messages{loc: i18n.NewLocalizer(bundle, lang, "en"), sep: sep, lang: lang}, nil
}

// MustNew is New for built-in files that are known to parse.
func MustNew(lang string) *Messages {
	m, err := New(lang)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Messages) Lang() string { return m.lang }

func (m *Messages) Pending() string         { return m.get("Pending", nil) }
func (m *Messages) Exhausted() string       { return m.get("Exhausted", nil) }
func (m *Messages) NoPriorAward() string    { return m.get("NoPriorAward", nil) }
func (m *Messages) NotDeclinable() string   { return m.get("NotDeclinable", nil) }
func (m *Messages) ResetDone() string       { return m.get("ResetDone", nil) }
func (m *Messages) DrawInProgress() string  { return m.get("DrawInProgress", nil) }
func (m *Messages) TriggerDisabled() string { return m.get("TriggerDisabled", nil) }

func (m *Messages) Awarded(name string) string {
	return m.get("Awarded", map[string]any{"Name": name})
}

// Declined names the declined prize and the prizes still drawable.
func (m *Messages) Declined(name string, remaining []string) string {
	return m.get("Declined", map[string]any{
		"Name":      name,
		"Remaining": strings.Join(remaining, m.sep),
	})
}

func (m *Messages) get(id string, data map[string]any) string {
	s, err := m.loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		return id
	}
	return s
}
