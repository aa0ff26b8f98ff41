package transcribe

import (
	"path/filepath"
	"strings"
)

// supportedLanguageCodes lists the language codes the vendor accepts for
// explicit selection. Anything else falls back to auto-detection.
var supportedLanguageCodes = map[string]struct{}{
	"en": {}, "es": {}, "fr": {}, "de": {}, "it": {}, "pt": {}, "nl": {},
	"hi": {}, "ja": {}, "zh": {}, "fi": {}, "ko": {}, "pl": {}, "ru": {},
	"tr": {}, "uk": {}, "vi": {}, "ar": {}, "cs": {}, "da": {}, "el": {},
	"he": {}, "hu": {}, "id": {}, "ms": {}, "no": {}, "ro": {}, "sk": {},
	"sv": {}, "th": {}, "bg": {}, "ca": {}, "hr": {}, "lt": {}, "lv": {},
	"sl": {}, "et": {}, "mk": {}, "sr": {}, "ta": {}, "te": {}, "ml": {},
	"kn": {}, "mr": {}, "gu": {}, "pa": {}, "bn": {}, "ur": {},
}

// LanguageFromFilename extracts a language code from a filename suffix
// (meeting_en.m4a yields "en"). Returns "" when the suffix is absent or not
// a recognized code.
func LanguageFromFilename(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndex(stem, "_")
	if idx < 0 {
		return ""
	}
	candidate := strings.ToLower(stem[idx+1:])
	if _, ok := supportedLanguageCodes[candidate]; ok {
		return candidate
	}
	return ""
}
