package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/errkind"
)

const (
	DefaultIcibaEndpoint = "https://dict-co.iciba.com/api/dictionary.php"
	icibaMaxQueryLength  = 64
)

// IcibaConfig configures the iciba (Kingsoft PowerWord) dictionary backend.
type IcibaConfig struct {
	Key      string
	Endpoint string
	Client   *http.Client
}

// IcibaProvider looks up single words. It has no sentence translation.
type IcibaProvider struct {
	cfg IcibaConfig
}

func NewIcibaProvider(cfg IcibaConfig) (*IcibaProvider, error) {
	cfg.Key = strings.TrimSpace(cfg.Key)
	if cfg.Key == "" {
		return nil, fmt.Errorf("iciba: %w", ErrMissingCredentials)
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultIcibaEndpoint
	}
	cfg.Client = clientOrDefault(cfg.Client)
	return &IcibaProvider{cfg: cfg}, nil
}

func (p *IcibaProvider) Name() backend.ID   { return backend.Iciba }
func (p *IcibaProvider) Role() backend.Role { return backend.RoleDictionary }
func (p *IcibaProvider) MaxQueryLength() int {
	return icibaMaxQueryLength
}

func (p *IcibaProvider) Query(ctx context.Context, req Request) (*Result, error) {
	endpoint, err := url.Parse(p.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse iciba endpoint: %w", err)
	}
	query := endpoint.Query()
	query.Set("w", strings.ToLower(strings.TrimSpace(req.Text)))
	query.Set("type", "json")
	query.Set("key", p.cfg.Key)
	endpoint.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build iciba request: %w", err)
	}

	body, err := send(ctx, p.cfg.Client, p.Name(), httpReq)
	if err != nil {
		return nil, err
	}

	var parsed icibaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode iciba response: %w: %v", ErrMalformedResponse, err)
	}
	result := parsed.result()
	if result.Empty() {
		return nil, &BackendError{Backend: p.Name(), Code: errkind.HTTPCode(http.StatusNotFound), Message: "no dictionary entry"}
	}
	return result, nil
}

type icibaResponse struct {
	WordName string `json:"word_name"`
	Symbols  []struct {
		PhEn  string `json:"ph_en"`
		PhAm  string `json:"ph_am"`
		Parts []struct {
			Part  string   `json:"part"`
			Means []string `json:"means"`
		} `json:"parts"`
	} `json:"symbols"`
	Exchange map[string]json.RawMessage `json:"exchange"`
}

var icibaExchangeNames = []struct {
	key  string
	name string
}{
	{"word_pl", "复数"},
	{"word_third", "第三人称单数"},
	{"word_past", "过去式"},
	{"word_done", "过去分词"},
	{"word_ing", "现在分词"},
	{"word_er", "比较级"},
	{"word_est", "最高级"},
}

func (r icibaResponse) result() *Result {
	result := &Result{Provider: backend.Iciba}
	if len(r.Symbols) > 0 {
		symbol := r.Symbols[0]
		result.Phonetic = firstNonEmpty(symbol.PhAm, symbol.PhEn)
		for _, part := range symbol.Parts {
			if len(part.Means) == 0 {
				continue
			}
			line := strings.Join(part.Means, "；")
			if part.Part != "" {
				line = part.Part + " " + line
			}
			result.Explanations = append(result.Explanations, line)
		}
	}
	for _, exchange := range icibaExchangeNames {
		raw, ok := r.Exchange[exchange.key]
		if !ok {
			continue
		}
		// Missing forms are sent as "" rather than an empty list.
		var values []string
		if err := json.Unmarshal(raw, &values); err != nil {
			continue
		}
		for _, value := range values {
			if value = strings.TrimSpace(value); value != "" {
				result.Forms = append(result.Forms, Form{Name: exchange.name, Value: value})
			}
		}
	}
	return result
}
