package language

import "strings"

// tagAliases maps legacy or backend-specific tags users tend to type to a
// BCP 47 form x/text/language understands.
var tagAliases = map[string]string{
	"chs":    "zh-hans",
	"zhs":    "zh-hans",
	"zh-chs": "zh-hans",
	"cht":    "zh-hant",
	"zht":    "zh-hant",
	"zh-cht": "zh-hant",
	"jp":     "ja",
	"kr":     "ko",
	"kor":    "ko",
	"jpn":    "ja",
}

// NormalizeTag lowercases a language tag, folds "_" to "-" and expands
// known aliases. It returns an empty string when the value is blank or
// contains anything other than ASCII letters and separators.
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool { return r == '-' || r == '_' })
	for _, part := range parts {
		if !isAlphaLower(part) {
			return ""
		}
	}
	if len(parts) == 0 {
		return ""
	}

	tag := strings.Join(parts, "-")
	if alias, ok := tagAliases[tag]; ok {
		return alias
	}
	return tag
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
