// Package lang validates the language hint sent with a transcription request.
package lang

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid indicates an unsupported language code.
var ErrInvalid = errors.New("invalid language code")

// languages maps the ISO 639-1 codes the transcription API accepts to their
// English names.
var languages = map[string]string{
	"af": "Afrikaans", "ar": "Arabic", "az": "Azerbaijani", "be": "Belarusian",
	"bg": "Bulgarian", "bs": "Bosnian", "ca": "Catalan", "cs": "Czech",
	"cy": "Welsh", "da": "Danish", "de": "German", "el": "Greek",
	"en": "English", "es": "Spanish", "et": "Estonian", "fa": "Persian",
	"fi": "Finnish", "fr": "French", "gl": "Galician", "he": "Hebrew",
	"hi": "Hindi", "hr": "Croatian", "hu": "Hungarian", "hy": "Armenian",
	"id": "Indonesian", "is": "Icelandic", "it": "Italian", "ja": "Japanese",
	"kk": "Kazakh", "kn": "Kannada", "ko": "Korean", "lt": "Lithuanian",
	"lv": "Latvian", "mi": "Maori", "mk": "Macedonian", "mr": "Marathi",
	"ms": "Malay", "ne": "Nepali", "nl": "Dutch", "no": "Norwegian",
	"pl": "Polish", "pt": "Portuguese", "ro": "Romanian", "ru": "Russian",
	"sk": "Slovak", "sl": "Slovenian", "sr": "Serbian", "sv": "Swedish",
	"sw": "Swahili", "ta": "Tamil", "th": "Thai", "tl": "Tagalog",
	"tr": "Turkish", "uk": "Ukrainian", "ur": "Urdu", "vi": "Vietnamese",
	"zh": "Chinese",
}

// Normalize lowercases code and uses "-" as the region separator:
// "pt_BR" -> "pt-br".
func Normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "_", "-"))
}

// Base returns the ISO 639-1 part of a code or locale: "pt-BR" -> "pt".
func Base(code string) string {
	base, _, _ := strings.Cut(Normalize(code), "-")
	return base
}

// Parse validates code and returns the base code the API expects.
// An empty code means auto-detect and is returned unchanged.
func Parse(code string) (string, error) {
	if code == "" {
		return "", nil
	}
	base := Base(code)
	if _, ok := languages[base]; !ok {
		return "", fmt.Errorf("%w %q (use ISO 639-1 codes like 'en', 'fr', 'pt-BR')", ErrInvalid, code)
	}
	return base, nil
}

// Name returns the English name of code, or code itself when unknown.
func Name(code string) string {
	if name, ok := languages[Base(code)]; ok {
		return name
	}
	return code
}
