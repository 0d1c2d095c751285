package locale

import "fmt"

// Language is a BCP 47 tag for one of the supported regional languages.
type Language string

const (
	Hindi    Language = "hi-IN"
	Marathi  Language = "mr-IN"
	Gujarati Language = "gu-IN"
	English  Language = "en-US"
)

// All returns the supported languages in a stable order.
func All() []Language {
	return []Language{Hindi, Marathi, Gujarati, English}
}

// Parse validates a raw language tag.
func Parse(tag string) (Language, error) {
	switch Language(tag) {
	case Hindi, Marathi, Gujarati, English:
		return Language(tag), nil
	}
	return "", fmt.Errorf("unsupported language tag %q", tag)
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	_, err := Parse(string(l))
	return err == nil
}

// Name returns the English name of the language, used in classifier prompts.
func (l Language) Name() string {
	switch l {
	case Hindi:
		return "Pure Hindi"
	case Marathi:
		return "Pure Marathi"
	case Gujarati:
		return "Pure Gujarati"
	default:
		return "English"
	}
}
