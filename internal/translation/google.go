package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"horse.fit/easydict/internal/backend"
)

const (
	DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"
	googleMaxQueryLength  = 5000
)

// GoogleConfig configures the keyless Google web translation endpoint.
type GoogleConfig struct {
	Endpoint string
	Client   *http.Client
}

// GoogleProvider translates through the public gtx endpoint and reports
// the detected source language as a remote identifier.
type GoogleProvider struct {
	cfg GoogleConfig
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultGoogleEndpoint
	}
	cfg.Client = clientOrDefault(cfg.Client)
	return &GoogleProvider{cfg: cfg}
}

func (p *GoogleProvider) Name() backend.ID   { return backend.Google }
func (p *GoogleProvider) Role() backend.Role { return backend.RoleTranslation }
func (p *GoogleProvider) MaxQueryLength() int {
	return googleMaxQueryLength
}

func (p *GoogleProvider) Query(ctx context.Context, req Request) (*Result, error) {
	translated, detected, err := p.translate(ctx, req.Text, req.SourceCode, req.TargetCode)
	if err != nil {
		return nil, err
	}
	if translated == "" {
		return nil, fmt.Errorf("google response missing translation: %w", ErrMalformedResponse)
	}
	return &Result{
		Provider:       p.Name(),
		Translations:   []string{translated},
		DetectedSource: detected,
	}, nil
}

// IdentifyLanguage asks for an English translation and keeps only the
// detected source code.
func (p *GoogleProvider) IdentifyLanguage(ctx context.Context, text string) (string, error) {
	_, detected, err := p.translate(ctx, text, "auto", "en")
	if err != nil {
		return "", err
	}
	return detected, nil
}

func (p *GoogleProvider) translate(ctx context.Context, text, source, target string) (string, string, error) {
	if source == "" {
		source = "auto"
	}
	endpoint, err := url.Parse(p.cfg.Endpoint)
	if err != nil {
		return "", "", fmt.Errorf("parse google endpoint: %w", err)
	}
	query := endpoint.Query()
	query.Set("client", "gtx")
	query.Set("sl", source)
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("q", text)
	endpoint.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", "", fmt.Errorf("build google request: %w", err)
	}

	body, err := send(ctx, p.cfg.Client, p.Name(), httpReq)
	if err != nil {
		return "", "", err
	}
	return parseGoogleResponse(body)
}

// parseGoogleResponse reads the positional array the gtx endpoint returns:
// index 0 holds [translated, original, ...] segments, index 2 the detected source.
func parseGoogleResponse(body []byte) (string, string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return "", "", fmt.Errorf("decode google response: %w: %v", ErrMalformedResponse, err)
	}
	if len(root) == 0 {
		return "", "", fmt.Errorf("google response is empty: %w", ErrMalformedResponse)
	}

	var segments [][]any
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return "", "", fmt.Errorf("decode google segments: %w: %v", ErrMalformedResponse, err)
	}
	var builder strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		if part, ok := segment[0].(string); ok {
			builder.WriteString(part)
		}
	}

	var detected string
	if len(root) > 2 {
		_ = json.Unmarshal(root[2], &detected)
	}
	return strings.TrimSpace(builder.String()), detected, nil
}
