package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"traveldesk/internal/travel"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu            sync.RWMutex
	bundle        *i18n.Bundle
	matcher       language.Matcher
	defaultLocale = "en"
)

type ctxKey struct{}

// Init loads all embedded locale files and sets the default locale.
func Init(defLocale string) error {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	matcher = language.NewMatcher(b.LanguageTags())
	if defLocale != "" {
		defaultLocale = defLocale
	}
	log.Printf("i18n: loaded %d locale files, default=%s", len(entries), defaultLocale)
	return nil
}

// WithLocale returns a new context carrying the given locale string (e.g. "ar", "en").
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext extracts the locale from the context.
// Returns the configured default locale if not set.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	mu.RLock()
	defer mu.RUnlock()
	return defaultLocale
}

// Match picks the best supported locale for an Accept-Language header value.
func Match(acceptLanguage string) string {
	mu.RLock()
	m, def := matcher, defaultLocale
	mu.RUnlock()
	if m == nil || acceptLanguage == "" {
		return def
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return def
	}
	tag, _, confidence := m.Match(tags...)
	if confidence == language.No {
		return def
	}
	base, _ := tag.Base()
	return base.String()
}

// T translates a message ID using the locale from the context. The message
// ID itself is returned when no translation exists.
func T(ctx context.Context, messageID string, templateData ...map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: messageID}, messageID, templateData...)
}

// Label returns the localized label of a badge. Badges without a message ID
// (unrecognized statuses) keep their raw label.
func Label(ctx context.Context, b travel.Badge) string {
	if b.MessageID == "" {
		return b.Label
	}
	cfg := &i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: b.MessageID, Other: b.Label},
	}
	return localize(ctx, cfg, b.Label)
}

// Localize returns a copy of b with its label translated.
func Localize(ctx context.Context, b travel.Badge) travel.Badge {
	b.Label = Label(ctx, b)
	return b
}

func localize(ctx context.Context, cfg *i18n.LocalizeConfig, fallback string, templateData ...map[string]any) string {
	mu.RLock()
	b := bundle
	mu.RUnlock()
	if b == nil {
		return fallback
	}
	if len(templateData) > 0 && templateData[0] != nil {
		cfg.TemplateData = templateData[0]
	}
	msg, err := i18n.NewLocalizer(b, LocaleFromContext(ctx)).Localize(cfg)
	if err != nil {
		return fallback
	}
	return msg
}
