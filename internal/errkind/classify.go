package errkind

import (
	"strconv"
	"strings"

	"horse.fit/easydict/internal/backend"
)

// Entry is one documented backend status code.
type Entry struct {
	Kind    Kind
	Message string
}

// HTTPCode formats an HTTP status as a raw code for backends that only
// report failures through the status line.
func HTTPCode(status int) string {
	return "http:" + strconv.Itoa(status)
}

// https://ai.youdao.com/DOCSIRMA/html/trans/api/wbfy/index.html
var youdaoCodes = map[string]Entry{
	"0":   {Success, "Success"},
	"102": {UnsupportedLanguagePair, "Target language not supported"},
	"103": {QueryRejected, "Query text too long"},
	"108": {Unknown, "Invalid application key"},
	"113": {QueryRejected, "Query text must not be empty"},
	"202": {Unknown, "Signature check failed"},
	"207": {RateLimited, "Access frequency limited"},
	"302": {QueryRejected, "Translation query failed"},
	"401": {QuotaExhausted, "Insufficient account balance"},
	"411": {RateLimited, "Access frequency limited"},
}

// https://fanyi-api.baidu.com/doc/21
var baiduCodes = map[string]Entry{
	"0":     {Success, "Success"},
	"52000": {Success, "Success"},
	"52001": {Timeout, "Request timed out"},
	"52002": {NetworkFailure, "System error"},
	"52003": {Unknown, "Unauthorized user"},
	"54000": {QueryRejected, "Required parameter is empty"},
	"54001": {Unknown, "Signature error"},
	"54003": {RateLimited, "Access frequency limited"},
	"54004": {QuotaExhausted, "Insufficient account balance"},
	"54005": {RateLimited, "Long query requests too frequent"},
	"58001": {UnsupportedLanguagePair, "Target language not supported"},
}

// https://cloud.tencent.com/document/api/551/15619
var tencentCodes = map[string]Entry{
	"RequestLimitExceeded":                          {RateLimited, "Request limit exceeded"},
	"RequestLimitExceeded.UinLimitExceeded":         {RateLimited, "Account request limit exceeded"},
	"FailedOperation.NoFreeAmount":                  {QuotaExhausted, "Free quota exhausted"},
	"FailedOperation.ServiceIsolate":                {QuotaExhausted, "Account in arrears"},
	"FailedOperation.UserNotRegistered":             {QuotaExhausted, "Service not activated"},
	"UnsupportedOperation.UnsupportedLanguage":      {UnsupportedLanguagePair, "Language not supported"},
	"UnsupportedOperation.UnSupportedTargetLanguage": {UnsupportedLanguagePair, "Target language not supported"},
	"UnsupportedOperation.TextTooLong":              {QueryRejected, "Query text too long"},
	"InvalidParameter":                              {QueryRejected, "Invalid parameter"},
	"InternalError.BackendTimeout":                  {Timeout, "Backend timed out"},
	"InternalError":                                 {NetworkFailure, "Internal error"},
	"AuthFailure.SignatureFailure":                  {Unknown, "Signature error"},
}

// httpCodes is shared by backends that only report HTTP statuses.
var httpCodes = map[string]Entry{
	HTTPCode(200): {Success, "OK"},
	HTTPCode(400): {QueryRejected, "Bad request"},
	HTTPCode(401): {QuotaExhausted, "Unauthorized"},
	HTTPCode(403): {QuotaExhausted, "Forbidden"},
	HTTPCode(404): {QueryRejected, "Not found"},
	HTTPCode(408): {Timeout, "Request timeout"},
	HTTPCode(413): {QueryRejected, "Payload too large"},
	HTTPCode(429): {RateLimited, "Too many requests"},
	HTTPCode(500): {NetworkFailure, "Internal server error"},
	HTTPCode(502): {NetworkFailure, "Bad gateway"},
	HTTPCode(503): {NetworkFailure, "Service unavailable"},
	HTTPCode(504): {Timeout, "Gateway timeout"},
}

var tables = map[backend.ID]map[string]Entry{
	backend.Youdao:  youdaoCodes,
	backend.Baidu:   baiduCodes,
	backend.Tencent: tencentCodes,
	backend.Caiyun:  httpCodes,
	backend.Iciba:   httpCodes,
	backend.Google:  httpCodes,
	backend.Local:   httpCodes,
}

var statusOnly = map[backend.ID]bool{
	backend.Caiyun: true,
	backend.Iciba:  true,
	backend.Google: true,
	backend.Local:  true,
}

// Classify maps a backend's raw status code to a Kind. Undocumented codes
// and unknown backends classify as Unknown.
func Classify(b backend.ID, rawCode string) Kind {
	entry, _ := Lookup(b, rawCode)
	return entry.Kind
}

// Lookup is Classify with the documented message. The boolean is false
// when the code is not in the backend's table.
func Lookup(b backend.ID, rawCode string) (Entry, bool) {
	code := strings.TrimSpace(rawCode)
	table, ok := tables[b]
	if !ok {
		return Entry{Kind: Unknown}, false
	}
	if entry, ok := table[code]; ok {
		return entry, true
	}
	// Status-only backends fall back on the status class.
	if status, ok := parseHTTPCode(code); ok && statusOnly[b] {
		switch {
		case status >= 200 && status < 300:
			return Entry{Kind: Success}, true
		case status >= 500:
			return Entry{Kind: NetworkFailure, Message: "Server error"}, true
		}
	}
	return Entry{Kind: Unknown}, false
}

func parseHTTPCode(code string) (int, bool) {
	rest, ok := strings.CutPrefix(code, "http:")
	if !ok {
		return 0, false
	}
	status, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return status, true
}
