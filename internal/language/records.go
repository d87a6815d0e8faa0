package language

import "horse.fit/easydict/internal/backend"

// Web dictionary sites that use their own language codes in query URLs.
const (
	WebYoudao = "youdao"
	WebEudic  = "eudic"
)

// builtinRecords is the static language table. Order is the display order.
var builtinRecords = []Record{
	{
		ID:           "zh-Hans",
		Title:        "Chinese-Simplified",
		ChineseTitle: "中文",
		Codes: map[backend.ID]string{
			backend.ISO:     "zh",
			backend.Youdao:  "zh-CHS",
			backend.Baidu:   "zh",
			backend.Tencent: "zh",
			backend.Caiyun:  "zh",
			backend.Google:  "zh-CN",
			backend.Iciba:   "zh",
			backend.Local:   "zh-Hans",
		},
		Voices: []string{"Ting-Ting"},
	},
	{
		ID:           "zh-Hant",
		Title:        "Chinese-Traditional",
		ChineseTitle: "中文",
		Codes: map[backend.ID]string{
			backend.Youdao:  "zh-CHT",
			backend.Baidu:   "cht",
			backend.Tencent: "zh-TW",
			backend.Google:  "zh-TW",
			backend.Local:   "zh-Hant",
		},
		Voices: []string{"Ting-Ting"},
	},
	{
		ID:           "en",
		Title:        "English",
		ChineseTitle: "英语",
		Codes: map[backend.ID]string{
			backend.ISO:     "en",
			backend.Youdao:  "en",
			backend.Baidu:   "en",
			backend.Tencent: "en",
			backend.Caiyun:  "en",
			backend.Google:  "en",
			backend.Iciba:   "en",
			backend.Local:   "en",
		},
		WebCodes: map[string]string{WebYoudao: "eng", WebEudic: "en"},
		Voices:   []string{"Samantha", "Alex"},
	},
	{
		ID:           "ja",
		Title:        "Japanese",
		ChineseTitle: "日语",
		Codes: map[backend.ID]string{
			backend.ISO:     "ja",
			backend.Youdao:  "ja",
			backend.Baidu:   "jp",
			backend.Tencent: "ja",
			backend.Caiyun:  "ja",
			backend.Google:  "ja",
			backend.Local:   "ja",
		},
		DetectCodes: map[backend.ID]string{backend.Tencent: "jp"},
		WebCodes:    map[string]string{WebYoudao: "jap"},
		Voices:      []string{"Kyoko"},
	},
	{
		ID:           "ko",
		Title:        "Korean",
		ChineseTitle: "韩语",
		Codes: map[backend.ID]string{
			backend.ISO:     "ko",
			backend.Youdao:  "ko",
			backend.Baidu:   "kor",
			backend.Tencent: "ko",
			backend.Google:  "ko",
			backend.Local:   "ko",
		},
		DetectCodes: map[backend.ID]string{backend.Tencent: "kr"},
		WebCodes:    map[string]string{WebYoudao: "ko"},
		Voices:      []string{"Yuna"},
	},
	{
		ID:           "fr",
		Title:        "French",
		ChineseTitle: "法语",
		Codes: map[backend.ID]string{
			backend.ISO:     "fr",
			backend.Youdao:  "fr",
			backend.Baidu:   "fra",
			backend.Tencent: "fr",
			backend.Google:  "fr",
			backend.Local:   "fr",
		},
		WebCodes: map[string]string{WebYoudao: "fr", WebEudic: "fr"},
		Voices:   []string{"Amelie", "Thomas"},
	},
	{
		ID:           "es",
		Title:        "Spanish",
		ChineseTitle: "西班牙语",
		Codes: map[backend.ID]string{
			backend.ISO:     "es",
			backend.Youdao:  "es",
			backend.Baidu:   "spa",
			backend.Tencent: "es",
			backend.Google:  "es",
			backend.Local:   "es",
		},
		WebCodes: map[string]string{WebEudic: "es"},
		Voices:   []string{"Jorge", "Juan", "Diego", "Monica", "Paulina"},
	},
	{
		ID:           "it",
		Title:        "Italian",
		ChineseTitle: "意大利语",
		Codes: map[backend.ID]string{
			backend.ISO:     "it",
			backend.Youdao:  "it",
			backend.Baidu:   "it",
			backend.Tencent: "it",
			backend.Google:  "it",
			backend.Local:   "it",
		},
		Voices: []string{"Alice", "Luca"},
	},
	{
		ID:           "de",
		Title:        "German",
		ChineseTitle: "德语",
		Codes: map[backend.ID]string{
			backend.ISO:     "de",
			backend.Youdao:  "de",
			backend.Baidu:   "de",
			backend.Tencent: "de",
			backend.Google:  "de",
			backend.Local:   "de",
		},
		WebCodes: map[string]string{WebEudic: "de"},
		Voices:   []string{"Anna"},
	},
	{
		ID:           "pt",
		Title:        "Portuguese",
		ChineseTitle: "葡萄牙语",
		Codes: map[backend.ID]string{
			backend.ISO:     "pt",
			backend.Youdao:  "pt",
			backend.Baidu:   "pt",
			backend.Tencent: "pt",
			backend.Google:  "pt",
			backend.Local:   "pt",
		},
		Voices: []string{"Joana", "Luciana"},
	},
	{
		ID:           "ru",
		Title:        "Russian",
		ChineseTitle: "俄语",
		Codes: map[backend.ID]string{
			backend.ISO:     "ru",
			backend.Youdao:  "ru",
			backend.Baidu:   "ru",
			backend.Tencent: "ru",
			backend.Google:  "ru",
			backend.Local:   "ru",
		},
		Voices: []string{"Milena", "Yuri"},
	},
	{
		ID:           "ar",
		Title:        "Arabic",
		ChineseTitle: "阿拉伯语",
		Codes: map[backend.ID]string{
			backend.ISO:     "ar",
			backend.Youdao:  "ar",
			backend.Baidu:   "ara",
			backend.Tencent: "ar",
			backend.Google:  "ar",
			backend.Local:   "ar",
		},
		Voices: []string{"Maged"},
	},
	{
		ID:    "th",
		Title: "Thai",
		Codes: map[backend.ID]string{
			backend.ISO:     "th",
			backend.Youdao:  "th",
			backend.Baidu:   "th",
			backend.Tencent: "th",
			backend.Google:  "th",
			backend.Local:   "th",
		},
		Voices: []string{"Kanya"},
	},
	simpleRecord("sv", "Swedish", "swe", "Alva"),
	simpleRecord("nl", "Dutch", "nl", "Ellen", "Xander"),
	simpleRecord("ro", "Romanian", "rom", "Ioana"),
	simpleRecord("sk", "Slovak", "slo", "Laura"),
	simpleRecord("hu", "Hungarian", "hu", "Mariska"),
	simpleRecord("el", "Greek", "el", "Melina"),
	simpleRecord("da", "Danish", "dan", "Sara"),
	simpleRecord("fi", "Finnish", "fin", "Satu"),
	simpleRecord("pl", "Polish", "pl", "Zosia"),
	simpleRecord("cs", "Czech", "cs", "Zuzana"),
}

// simpleRecord builds a language that only Youdao, Baidu, Google and the
// local model serve, where every code except Baidu's equals the ISO code.
func simpleRecord(iso, title, baiduCode string, voices ...string) Record {
	return Record{
		ID:    iso,
		Title: title,
		Codes: map[backend.ID]string{
			backend.ISO:    iso,
			backend.Youdao: iso,
			backend.Baidu:  baiduCode,
			backend.Google: iso,
			backend.Local:  iso,
		},
		Voices: voices,
	}
}
