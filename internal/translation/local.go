package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/errkind"
	"horse.fit/easydict/internal/language"
)

const (
	// DefaultLocalEndpoint points to a local OpenAI-compatible translation endpoint.
	DefaultLocalEndpoint = "http://127.0.0.1:8845/v1"
	// DefaultLocalModel is the default HY-MT model name.
	DefaultLocalModel = "tencent/HY-MT1.5-7B"

	localMaxQueryLength = 4000
)

// LocalProvider translates text by calling an OpenAI-compatible chat completions endpoint.
type LocalProvider struct {
	endpointURL string
	model       string
	languages   *language.Registry
	client      *http.Client
}

// LocalConfig configures a LocalProvider. Empty fields fall back to defaults.
type LocalConfig struct {
	Endpoint  string
	Model     string
	Languages *language.Registry
	Client    *http.Client
}

// NewLocalProvider builds a local provider for the given endpoint/model.
func NewLocalProvider(cfg LocalConfig) *LocalProvider {
	trimmedModel := strings.TrimSpace(cfg.Model)
	if trimmedModel == "" {
		trimmedModel = DefaultLocalModel
	}
	languages := cfg.Languages
	if languages == nil {
		languages = language.Default()
	}
	return &LocalProvider{
		endpointURL: chatCompletionsURL(normalizeEndpoint(cfg.Endpoint)),
		model:       trimmedModel,
		languages:   languages,
		client:      clientOrDefault(cfg.Client),
	}
}

func (p *LocalProvider) Name() backend.ID   { return backend.Local }
func (p *LocalProvider) Role() backend.Role { return backend.RoleTranslation }
func (p *LocalProvider) MaxQueryLength() int {
	return localMaxQueryLength
}

func (p *LocalProvider) Query(ctx context.Context, req Request) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("local provider is nil")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if req.TargetCode == "" {
		return nil, fmt.Errorf("target language is required")
	}

	prompt := p.buildPrompt(text, req.Source, req.Target)
	body, err := json.Marshal(localChatRequest{
		Model: p.model,
		Messages: []localChatMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		Temperature: 0.7,
		TopP:        0.6,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal translation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	respBody, err := send(ctx, p.client, p.Name(), httpReq)
	if err != nil {
		var backendErr *BackendError
		if errors.As(err, &backendErr) {
			var errPayload localChatErrorResponse
			if unmarshalErr := json.Unmarshal([]byte(backendErr.Message), &errPayload); unmarshalErr == nil {
				if msg := strings.TrimSpace(errPayload.Error.Message); msg != "" {
					backendErr.Message = msg
				}
			}
		}
		return nil, err
	}

	var parsed localChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode translation response: %w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("translation response missing choices: %w", ErrMalformedResponse)
	}

	translated := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if translated == "" {
		return nil, &BackendError{Backend: p.Name(), Code: errkind.HTTPCode(http.StatusNoContent), Message: "translation response was empty"}
	}

	return &Result{
		Provider:     p.Name(),
		Translations: []string{translated},
	}, nil
}

type localChatRequest struct {
	Model       string             `json:"model"`
	Messages    []localChatMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
	TopP        float64            `json:"top_p,omitempty"`
}

type localChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type localChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type localChatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *LocalProvider) buildPrompt(text, source, target string) string {
	record, ok := p.languages.Lookup(target)
	english, chinese := target, target
	if ok {
		english, chinese = record.Title, record.ChineseTitle
	}
	if isChineseLanguage(source) || isChineseLanguage(target) {
		// HY-MT zh<=>xx template.
		return fmt.Sprintf("将以下文本翻译为%s，注意只需要输出翻译后的结果，不要额外解释：\n\n%s", chinese, text)
	}
	// HY-MT xx<=>xx template.
	return fmt.Sprintf("Translate the following segment into %s, without additional explanation.\n\n%s", english, text)
}

func isChineseLanguage(id string) bool {
	return strings.HasPrefix(id, "zh-")
}

func normalizeEndpoint(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return DefaultLocalEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultLocalEndpoint
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	if parsed.Path == "" {
		parsed.Path = "/v1"
	}
	return parsed.String()
}

func chatCompletionsURL(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultLocalEndpoint + "/chat/completions"
	}

	path := strings.TrimRight(parsed.Path, "/")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
		parsed.Path = path
	case strings.HasSuffix(path, "/v1"):
		parsed.Path = path + "/chat/completions"
	case path == "":
		parsed.Path = "/v1/chat/completions"
	default:
		parsed.Path = path + "/v1/chat/completions"
	}

	return parsed.String()
}
