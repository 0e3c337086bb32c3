// Package langdetect tags posting descriptions with an ISO 639-1 code.
package langdetect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

var ErrUndetermined = errors.New("language undetermined")

// Detector classifies text with whatlanggo.
type Detector struct{}

// Classify returns the two-letter code of text's language and the
// detector's confidence in [0, 1].
func (d Detector) Classify(text string) (string, float64, error) {
	if strings.TrimSpace(text) == "" {
		return "", 0, ErrUndetermined
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "", info.Confidence, ErrUndetermined
	}
	norm, err := Normalize(code)
	if err != nil {
		return "", info.Confidence, err
	}
	return norm, info.Confidence, nil
}

// Normalize turns a language tag such as "PT-br" or "en_US" into its base
// two-letter code.
func Normalize(code string) (string, error) {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("language %q: %w", code, err)
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", fmt.Errorf("language %q: %w", code, ErrUndetermined)
	}
	return base.String(), nil
}
