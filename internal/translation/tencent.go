package translation

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"horse.fit/easydict/internal/backend"
)

const (
	DefaultTencentEndpoint = "https://tmt.tencentcloudapi.com"
	DefaultTencentRegion   = "ap-guangzhou"

	tencentService        = "tmt"
	tencentVersion        = "2018-03-21"
	tencentAlgorithm      = "TC3-HMAC-SHA256"
	tencentContentType    = "application/json; charset=utf-8"
	tencentMaxQueryLength = 2000
)

// TencentConfig configures the Tencent Cloud machine translation backend.
type TencentConfig struct {
	SecretID  string
	SecretKey string
	Region    string
	Endpoint  string
	Client    *http.Client
	Now       func() time.Time
}

// TencentProvider calls TextTranslate and LanguageDetect with TC3 signed requests.
type TencentProvider struct {
	cfg  TencentConfig
	host string
}

func NewTencentProvider(cfg TencentConfig) (*TencentProvider, error) {
	cfg.SecretID = strings.TrimSpace(cfg.SecretID)
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("tencent: %w", ErrMissingCredentials)
	}
	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = DefaultTencentRegion
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultTencentEndpoint
	}
	parsed, err := url.Parse(cfg.Endpoint)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("tencent: invalid endpoint %q", cfg.Endpoint)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Client = clientOrDefault(cfg.Client)
	return &TencentProvider{cfg: cfg, host: parsed.Host}, nil
}

func (p *TencentProvider) Name() backend.ID   { return backend.Tencent }
func (p *TencentProvider) Role() backend.Role { return backend.RoleTranslation }
func (p *TencentProvider) MaxQueryLength() int {
	return tencentMaxQueryLength
}

func (p *TencentProvider) Query(ctx context.Context, req Request) (*Result, error) {
	payload := map[string]any{
		"SourceText": req.Text,
		"Source":     req.SourceCode,
		"Target":     req.TargetCode,
		"ProjectId":  0,
	}
	var parsed struct {
		Response struct {
			tencentStatus
			TargetText string `json:"TargetText"`
			Source     string `json:"Source"`
		} `json:"Response"`
	}
	if err := p.call(ctx, "TextTranslate", payload, &parsed); err != nil {
		return nil, err
	}
	if err := p.checkStatus(parsed.Response.tencentStatus); err != nil {
		return nil, err
	}
	return &Result{
		Provider:       p.Name(),
		Translations:   []string{parsed.Response.TargetText},
		DetectedSource: parsed.Response.Source,
	}, nil
}

// IdentifyLanguage calls LanguageDetect, whose codes differ from the
// translation vocabulary for a few languages.
func (p *TencentProvider) IdentifyLanguage(ctx context.Context, text string) (string, error) {
	payload := map[string]any{
		"Text":      text,
		"ProjectId": 0,
	}
	var parsed struct {
		Response struct {
			tencentStatus
			Lang string `json:"Lang"`
		} `json:"Response"`
	}
	if err := p.call(ctx, "LanguageDetect", payload, &parsed); err != nil {
		return "", err
	}
	if err := p.checkStatus(parsed.Response.tencentStatus); err != nil {
		return "", err
	}
	return parsed.Response.Lang, nil
}

type tencentStatus struct {
	Error *struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Error"`
	RequestID string `json:"RequestId"`
}

func (p *TencentProvider) checkStatus(status tencentStatus) error {
	if status.Error == nil {
		return nil
	}
	return &BackendError{Backend: p.Name(), Code: status.Error.Code, Message: status.Error.Message}
}

func (p *TencentProvider) call(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal tencent request: %w", err)
	}
	now := p.cfg.Now().UTC()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build tencent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", tencentContentType)
	httpReq.Header.Set("Host", p.host)
	httpReq.Header.Set("X-TC-Action", action)
	httpReq.Header.Set("X-TC-Version", tencentVersion)
	httpReq.Header.Set("X-TC-Region", p.cfg.Region)
	httpReq.Header.Set("X-TC-Timestamp", strconv.FormatInt(now.Unix(), 10))
	httpReq.Header.Set("Authorization", tencentAuthorization(p.cfg.SecretID, p.cfg.SecretKey, p.host, body, now))

	respBody, err := send(ctx, p.cfg.Client, p.Name(), httpReq)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode tencent response: %w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// tencentAuthorization builds the TC3-HMAC-SHA256 Authorization header.
func tencentAuthorization(secretID, secretKey, host string, payload []byte, now time.Time) string {
	date := now.UTC().Format("2006-01-02")
	payloadHash := sha256.Sum256(payload)
	canonicalRequest := strings.Join([]string{
		http.MethodPost,
		"/",
		"",
		"content-type:" + tencentContentType + "\nhost:" + host + "\n",
		"content-type;host",
		hex.EncodeToString(payloadHash[:]),
	}, "\n")

	credentialScope := date + "/" + tencentService + "/tc3_request"
	requestHash := sha256.Sum256([]byte(canonicalRequest))
	stringToSign := strings.Join([]string{
		tencentAlgorithm,
		strconv.FormatInt(now.Unix(), 10),
		credentialScope,
		hex.EncodeToString(requestHash[:]),
	}, "\n")

	secretDate := hmacSHA256([]byte("TC3"+secretKey), date)
	secretService := hmacSHA256(secretDate, tencentService)
	secretSigning := hmacSHA256(secretService, "tc3_request")
	signature := hex.EncodeToString(hmacSHA256(secretSigning, stringToSign))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=content-type;host, Signature=%s",
		tencentAlgorithm, secretID, credentialScope, signature)
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
