package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"horse.fit/easydict/internal/backend"
)

const (
	DefaultCaiyunEndpoint = "https://api.interpreter.caiyunai.com/v1/translator"
	caiyunMaxQueryLength  = 5000
)

// CaiyunConfig configures the Caiyun (LingoCloud) translation backend.
type CaiyunConfig struct {
	Token    string
	Endpoint string
	Client   *http.Client
}

type CaiyunProvider struct {
	cfg CaiyunConfig
}

func NewCaiyunProvider(cfg CaiyunConfig) (*CaiyunProvider, error) {
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		return nil, fmt.Errorf("caiyun: %w", ErrMissingCredentials)
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultCaiyunEndpoint
	}
	cfg.Client = clientOrDefault(cfg.Client)
	return &CaiyunProvider{cfg: cfg}, nil
}

func (p *CaiyunProvider) Name() backend.ID   { return backend.Caiyun }
func (p *CaiyunProvider) Role() backend.Role { return backend.RoleTranslation }
func (p *CaiyunProvider) MaxQueryLength() int {
	return caiyunMaxQueryLength
}

func (p *CaiyunProvider) Query(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(map[string]any{
		"source":     []string{req.Text},
		"trans_type": req.SourceCode + "2" + req.TargetCode,
		"request_id": uuid.NewString(),
		"detect":     true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal caiyun request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build caiyun request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Authorization", "token "+p.cfg.Token)

	respBody, err := send(ctx, p.cfg.Client, p.Name(), httpReq)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Target []string `json:"target"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode caiyun response: %w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Target) == 0 {
		return nil, fmt.Errorf("caiyun response missing target: %w", ErrMalformedResponse)
	}
	return &Result{
		Provider:     p.Name(),
		Translations: parsed.Target,
	}, nil
}
