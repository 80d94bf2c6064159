package i18n

import (
	"fmt"
	"strings"
	"sync"

	"content-qa-cms/rules"

	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

const DefaultLocale = "en"

// Message keys. They share the en translator with the validator's own
// translations, which are keyed by tag name, hence the prefix.
const (
	KeyRequired     = "qa.required"
	KeyCompare      = "qa.compare"
	KeyRecursive    = "qa.recursive"
	KeyAllowReview  = "qa.allow_review"
	KeyAllowPublish = "qa.allow_publish"
	KeySaveFailed   = "qa.save_failed"
	KeyNoNode       = "qa.no_node"
)

var catalogue = map[string]map[string]string{
	"en": {
		KeyRequired:     "{0} cannot be blank.",
		KeyCompare:      "{0} has no content to translate yet.",
		KeyRecursive:    "{0} is not completely translated into {1}.",
		KeyAllowReview:  "Reviewing not marked as allowed",
		KeyAllowPublish: "Publishing not marked as allowed",
		KeySaveFailed:   "{0} could not be saved.",
		KeyNoNode:       "{0} does not belong to any node.",
	},
	"de": {
		KeyRequired:     "{0} darf nicht leer sein.",
		KeyCompare:      "{0} enthält noch keinen übersetzbaren Inhalt.",
		KeyRecursive:    "{0} ist nicht vollständig nach {1} übersetzt.",
		KeyAllowReview:  "Prüfung ist nicht freigegeben",
		KeyAllowPublish: "Veröffentlichung ist nicht freigegeben",
		KeySaveFailed:   "{0} konnte nicht gespeichert werden.",
		KeyNoNode:       "{0} gehört zu keinem Knoten.",
	},
}

// Translator looks up messages by key and locale. Unknown locales and keys
// fall back to English.
type Translator struct {
	uni      *ut.UniversalTranslator
	fallback ut.Translator

	validatorOnce sync.Once
	validate      *validator.Validate
	validateErr   error
}

func New() (*Translator, error) {
	english := en.New()
	uni := ut.New(english, english, de.New())

	for locale, messages := range catalogue {
		trans, found := uni.GetTranslator(locale)
		if !found {
			return nil, fmt.Errorf("locale %q is not registered", locale)
		}
		for key, text := range messages {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("add %s translation %q: %w", locale, key, err)
			}
		}
	}

	fallback, _ := uni.GetTranslator(DefaultLocale)
	return &Translator{uni: uni, fallback: fallback}, nil
}

// T translates key. A key without translation is returned as is.
func (t *Translator) T(locale, key string, params ...string) string {
	trans, _ := t.uni.GetTranslator(locale)
	if msg, err := trans.T(key, params...); err == nil && msg != "" {
		return msg
	}
	if msg, err := t.fallback.T(key, params...); err == nil && msg != "" {
		return msg
	}
	return key
}

// Failure renders a rule failure as a sentence.
func (t *Translator) Failure(locale string, f rules.Failure, scenario rules.Scenario) string {
	label := Label(f.Field)
	switch f.Kind {
	case rules.RuleAllowReview:
		return t.T(locale, KeyAllowReview)
	case rules.RuleAllowPublish:
		return t.T(locale, KeyAllowPublish)
	case rules.RuleCompare:
		return t.T(locale, KeyCompare, label)
	case rules.RuleRecursive:
		return t.T(locale, KeyRecursive, label, scenario.Language)
	}
	return t.T(locale, KeyRequired, label)
}

// Validator returns a request validator whose errors translate to English.
// The translations are registered once; later calls share the validator.
func (t *Translator) Validator() (*validator.Validate, ut.Translator, error) {
	t.validatorOnce.Do(func() {
		validate := validator.New()
		if err := en_translations.RegisterDefaultTranslations(validate, t.fallback); err != nil {
			t.validateErr = fmt.Errorf("register validator translations: %w", err)
			return
		}
		t.validate = validate
	})
	if t.validateErr != nil {
		return nil, nil, t.validateErr
	}
	return t.validate, t.fallback, nil
}

// Label turns a field name into a readable label: "thumbnail_media_id" -> "Thumbnail Media".
func Label(field string) string {
	field = strings.TrimSuffix(field, "_id")
	words := strings.FieldsFunc(field, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
