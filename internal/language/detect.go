// Package language tags article text with an ISO 639-1 code using two
// independent detectors.
package language

import (
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/pemistahl/lingua-go"
)

// DefaultLanguage is used when neither detector recognizes the text.
const DefaultLanguage = "en"

// Detector consults lingua and whatlanggo. On agreement the shared code
// wins; on disagreement lingua wins (better short-text accuracy) and the
// mismatch is logged for diagnostics only.
type Detector struct {
	lingua lingua.LanguageDetector
	logger *slog.Logger
}

// NewDetector builds the dual detector. Model loading happens once here,
// not per call.
func NewDetector(logger *slog.Logger) *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllSpokenLanguages().
		Build()
	return &Detector{lingua: detector, logger: logger}
}

// Detect returns the ISO 639-1 code for text.
func (d *Detector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultLanguage
	}

	var primary string
	if detected, ok := d.lingua.DetectLanguageOf(text); ok {
		primary = strings.ToLower(detected.IsoCode639_1().String())
	}

	info := whatlanggo.Detect(text)
	secondary := info.Lang.Iso6391()

	switch {
	case primary == "" && secondary == "":
		return DefaultLanguage
	case primary == "":
		return secondary
	case secondary == "" || primary == secondary:
		return primary
	default:
		d.logger.Debug("language detectors disagree",
			"primary", primary, "secondary", secondary, "secondary_confidence", info.Confidence)
		return primary
	}
}
