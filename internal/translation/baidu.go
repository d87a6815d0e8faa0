package translation

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"horse.fit/easydict/internal/backend"
)

const (
	DefaultBaiduEndpoint       = "https://fanyi-api.baidu.com/api/trans/vip/translate"
	DefaultBaiduDetectEndpoint = "https://fanyi-api.baidu.com/api/trans/vip/language"
	baiduMaxQueryLength        = 2000
)

// BaiduConfig configures the Baidu translation backend.
type BaiduConfig struct {
	AppID          string
	Secret         string
	Endpoint       string
	DetectEndpoint string
	Client         *http.Client
}

// BaiduProvider translates through the Baidu general translation API and
// also serves as a remote language identifier.
type BaiduProvider struct {
	cfg BaiduConfig
}

func NewBaiduProvider(cfg BaiduConfig) (*BaiduProvider, error) {
	cfg.AppID = strings.TrimSpace(cfg.AppID)
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	if cfg.AppID == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("baidu: %w", ErrMissingCredentials)
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultBaiduEndpoint
	}
	if strings.TrimSpace(cfg.DetectEndpoint) == "" {
		cfg.DetectEndpoint = DefaultBaiduDetectEndpoint
	}
	cfg.Client = clientOrDefault(cfg.Client)
	return &BaiduProvider{cfg: cfg}, nil
}

func (p *BaiduProvider) Name() backend.ID   { return backend.Baidu }
func (p *BaiduProvider) Role() backend.Role { return backend.RoleTranslation }
func (p *BaiduProvider) MaxQueryLength() int {
	return baiduMaxQueryLength
}

func (p *BaiduProvider) Query(ctx context.Context, req Request) (*Result, error) {
	form := p.signedForm(req.Text)
	form.Set("from", req.SourceCode)
	form.Set("to", req.TargetCode)

	var parsed baiduTranslateResponse
	if err := p.post(ctx, p.cfg.Endpoint, form, &parsed); err != nil {
		return nil, err
	}
	if err := p.checkCode(parsed.baiduStatus); err != nil {
		return nil, err
	}

	translations := make([]string, 0, len(parsed.TransResult))
	for _, item := range parsed.TransResult {
		if dst := strings.TrimSpace(item.Dst); dst != "" {
			translations = append(translations, dst)
		}
	}
	return &Result{
		Provider:       p.Name(),
		Translations:   translations,
		DetectedSource: parsed.From,
	}, nil
}

// IdentifyLanguage returns Baidu's code for the text's language.
func (p *BaiduProvider) IdentifyLanguage(ctx context.Context, text string) (string, error) {
	var parsed baiduDetectResponse
	if err := p.post(ctx, p.cfg.DetectEndpoint, p.signedForm(text), &parsed); err != nil {
		return "", err
	}
	if err := p.checkCode(parsed.baiduStatus); err != nil {
		return "", err
	}
	return parsed.Data.Src, nil
}

func (p *BaiduProvider) signedForm(text string) url.Values {
	salt := uuid.NewString()
	form := url.Values{}
	form.Set("q", text)
	form.Set("appid", p.cfg.AppID)
	form.Set("salt", salt)
	form.Set("sign", baiduSign(p.cfg.AppID, text, salt, p.cfg.Secret))
	return form
}

func (p *BaiduProvider) post(ctx context.Context, endpoint string, form url.Values, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build baidu request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := send(ctx, p.cfg.Client, p.Name(), httpReq)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode baidu response: %w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (p *BaiduProvider) checkCode(status baiduStatus) error {
	code := string(status.ErrorCode)
	if code == "" || code == "0" || code == "52000" {
		return nil
	}
	return &BackendError{Backend: p.Name(), Code: code, Message: status.ErrorMsg}
}

type baiduStatus struct {
	ErrorCode flexibleCode `json:"error_code"`
	ErrorMsg  string       `json:"error_msg"`
}

type baiduTranslateResponse struct {
	baiduStatus
	From        string `json:"from"`
	To          string `json:"to"`
	TransResult []struct {
		Src string `json:"src"`
		Dst string `json:"dst"`
	} `json:"trans_result"`
}

type baiduDetectResponse struct {
	baiduStatus
	Data struct {
		Src string `json:"src"`
	} `json:"data"`
}

// flexibleCode accepts a status code sent either as a JSON string or number.
type flexibleCode string

func (c *flexibleCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = flexibleCode(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = flexibleCode(n.String())
	return nil
}

// baiduSign is md5(appid+q+salt+secret) in lowercase hex.
func baiduSign(appID, text, salt, secret string) string {
	sum := md5.Sum([]byte(appID + text + salt + secret))
	return hex.EncodeToString(sum[:])
}
