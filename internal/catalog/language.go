package catalog

import (
	"golang.org/x/text/language"
)

// Language is a supported display language. Keeping the set closed removes
// the "key not found" ambiguity of free-form language codes: every lookup
// either hits the requested language or falls back to the base language.
type Language string

const (
	LangEnglish    Language = "en"
	LangSpanish    Language = "es"
	LangFrench     Language = "fr"
	LangGerman     Language = "de"
	LangItalian    Language = "it"
	LangPortuguese Language = "pt"
	LangJapanese   Language = "ja"
	LangKorean     Language = "ko"
	LangChinese    Language = "zh"
	LangThai       Language = "th"
	LangVietnamese Language = "vi"
)

// BaseLanguage is the language every localized map is guaranteed to carry.
const BaseLanguage = LangEnglish

// Supported lists all languages the core can render, base language first.
var Supported = []Language{
	LangEnglish,
	LangSpanish,
	LangFrench,
	LangGerman,
	LangItalian,
	LangPortuguese,
	LangJapanese,
	LangKorean,
	LangChinese,
	LangThai,
	LangVietnamese,
}

var matcher language.Matcher

func init() {
	tags := make([]language.Tag, len(Supported))
	for i, lang := range Supported {
		tags[i] = language.Make(string(lang))
	}
	matcher = language.NewMatcher(tags)
}

// ParseLanguage resolves an arbitrary language code (e.g. "es-MX", "zh-Hant")
// to the closest supported language. Unknown codes resolve to the base
// language rather than failing.
func ParseLanguage(code string) Language {
	if code == "" {
		return BaseLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return BaseLanguage
	}
	_, index, conf := matcher.Match(tag)
	if conf == language.No {
		return BaseLanguage
	}
	return Supported[index]
}

// Localized looks up the value for lang in a localized map, falling back to
// the base language. Returns "" only when the map carries neither.
func Localized(m map[string]string, lang Language) string {
	if m == nil {
		return ""
	}
	if v, ok := m[string(lang)]; ok && v != "" {
		return v
	}
	return m[string(BaseLanguage)]
}
