package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"horse.fit/easydict/internal/backend"
)

const (
	DefaultYoudaoEndpoint = "https://openapi.youdao.com/api"
	youdaoMaxQueryLength  = 2000
)

// YoudaoConfig configures the Youdao dictionary backend.
type YoudaoConfig struct {
	AppKey    string
	AppSecret string
	Endpoint  string
	Client    *http.Client
	Now       func() time.Time
}

// YoudaoProvider queries the Youdao open API, which answers both as a
// dictionary and as a sentence translator.
type YoudaoProvider struct {
	cfg YoudaoConfig
}

func NewYoudaoProvider(cfg YoudaoConfig) (*YoudaoProvider, error) {
	cfg.AppKey = strings.TrimSpace(cfg.AppKey)
	cfg.AppSecret = strings.TrimSpace(cfg.AppSecret)
	if cfg.AppKey == "" || cfg.AppSecret == "" {
		return nil, fmt.Errorf("youdao: %w", ErrMissingCredentials)
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultYoudaoEndpoint
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Client = clientOrDefault(cfg.Client)
	return &YoudaoProvider{cfg: cfg}, nil
}

func (p *YoudaoProvider) Name() backend.ID   { return backend.Youdao }
func (p *YoudaoProvider) Role() backend.Role { return backend.RoleDictionary }
func (p *YoudaoProvider) MaxQueryLength() int {
	return youdaoMaxQueryLength
}

func (p *YoudaoProvider) Query(ctx context.Context, req Request) (*Result, error) {
	salt := uuid.NewString()
	curtime := strconv.FormatInt(p.cfg.Now().Unix(), 10)

	form := url.Values{}
	form.Set("q", req.Text)
	form.Set("from", req.SourceCode)
	form.Set("to", req.TargetCode)
	form.Set("appKey", p.cfg.AppKey)
	form.Set("salt", salt)
	form.Set("curtime", curtime)
	form.Set("signType", "v3")
	form.Set("sign", youdaoSign(p.cfg.AppKey, req.Text, salt, curtime, p.cfg.AppSecret))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build youdao request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := send(ctx, p.cfg.Client, p.Name(), httpReq)
	if err != nil {
		return nil, err
	}

	var parsed youdaoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode youdao response: %w: %v", ErrMalformedResponse, err)
	}
	if parsed.ErrorCode != "0" {
		return nil, &BackendError{Backend: p.Name(), Code: parsed.ErrorCode}
	}
	return parsed.result(req.Text), nil
}

type youdaoResponse struct {
	ErrorCode   string   `json:"errorCode"`
	Query       string   `json:"query"`
	Translation []string `json:"translation"`
	Language    string   `json:"l"`
	Basic       *struct {
		Phonetic   string   `json:"phonetic"`
		UKPhonetic string   `json:"uk-phonetic"`
		USPhonetic string   `json:"us-phonetic"`
		Explains   []string `json:"explains"`
		ExamType   []string `json:"exam_type"`
		Wfs        []struct {
			Wf struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"wf"`
		} `json:"wfs"`
	} `json:"basic"`
	Web []struct {
		Key   string   `json:"key"`
		Value []string `json:"value"`
	} `json:"web"`
}

func (r youdaoResponse) result(text string) *Result {
	result := &Result{
		Provider:     backend.Youdao,
		Translations: r.Translation,
	}
	if source, _, ok := strings.Cut(r.Language, "2"); ok {
		result.DetectedSource = source
	}
	if r.Basic != nil {
		result.Phonetic = firstNonEmpty(r.Basic.USPhonetic, r.Basic.Phonetic, r.Basic.UKPhonetic)
		result.Explanations = r.Basic.Explains
		result.ExamTypes = r.Basic.ExamType
		for _, wfs := range r.Basic.Wfs {
			if wfs.Wf.Name == "" || wfs.Wf.Value == "" {
				continue
			}
			result.Forms = append(result.Forms, Form{Name: wfs.Wf.Name, Value: wfs.Wf.Value})
		}
	}
	query := strings.TrimSpace(r.Query)
	if query == "" {
		query = strings.TrimSpace(text)
	}
	for _, web := range r.Web {
		entry := WebEntry{Key: web.Key, Values: web.Value}
		if result.WebTranslation == nil && strings.EqualFold(strings.TrimSpace(web.Key), query) {
			result.WebTranslation = &entry
			continue
		}
		result.WebPhrases = append(result.WebPhrases, entry)
	}
	return result
}

// youdaoSign implements the v3 signature: sha256(appKey+input+salt+curtime+secret),
// where input abbreviates texts longer than 20 runes.
func youdaoSign(appKey, text, salt, curtime, secret string) string {
	sum := sha256.Sum256([]byte(appKey + youdaoSignInput(text) + salt + curtime + secret))
	return hex.EncodeToString(sum[:])
}

func youdaoSignInput(text string) string {
	runes := []rune(text)
	if len(runes) <= 20 {
		return text
	}
	return string(runes[:10]) + strconv.Itoa(len(runes)) + string(runes[len(runes)-10:])
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
