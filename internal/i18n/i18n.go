// Package i18n resolves interface strings from the interface_text table.
package i18n

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// TextSource looks up one string. ok is false when there is no text for the
// key in that language.
type TextSource interface {
	Text(ctx context.Context, key, lang string) (text string, ok bool, err error)
}

type TextSourceFunc func(ctx context.Context, key, lang string) (string, bool, error)

func (f TextSourceFunc) Text(ctx context.Context, key, lang string) (string, bool, error) {
	return f(ctx, key, lang)
}

type Translator struct {
	source TextSource
	logger *zap.Logger
}

func NewTranslator(source TextSource, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{source: source, logger: logger}
}

// Get returns the stored text, then def, then the key itself. Lookup errors
// are logged and treated as a miss so a broken text table never breaks a
// reply.
func (t *Translator) Get(ctx context.Context, key, lang, def string) string {
	if t != nil && t.source != nil {
		text, ok, err := t.source.Text(ctx, key, lang)
		if err != nil {
			t.logger.Warn("interface text lookup failed",
				zap.String("key", key),
				zap.String("lang", lang),
				zap.Error(err),
			)
		} else if ok {
			return text
		}
	}
	if def != "" {
		return def
	}
	return key
}

// Format fills {name} placeholders in the resolved template.
func (t *Translator) Format(ctx context.Context, key, lang, def string, args map[string]string) string {
	return Fill(t.Get(ctx, key, lang, def), args)
}

func Fill(template string, args map[string]string) string {
	if len(args) == 0 {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
