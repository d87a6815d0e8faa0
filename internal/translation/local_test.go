package translation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletionsURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                                 "http://127.0.0.1:8845/v1/chat/completions",
		"localhost:9000":                   "http://localhost:9000/v1/chat/completions",
		"http://host/v1/":                  "http://host/v1/chat/completions",
		"https://host/api":                 "https://host/api/v1/chat/completions",
		"https://host/v1/chat/completions": "https://host/v1/chat/completions",
		"http://[::1]:8845":                "http://[::1]:8845/v1/chat/completions",
	}
	for input, want := range tests {
		assert.Equal(t, want, chatCompletionsURL(normalizeEndpoint(input)), "input %q", input)
	}
}

func TestLocalQuery(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodPost, "http://127.0.0.1:8845/v1/chat/completions",
		func(req *http.Request) (*http.Response, error) {
			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			var payload localChatRequest
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, DefaultLocalModel, payload.Model)
			require.Len(t, payload.Messages, 1)
			assert.True(t, strings.HasPrefix(payload.Messages[0].Content, "Translate the following segment into English"))
			return httpmock.NewStringResponse(http.StatusOK,
				`{"choices":[{"message":{"content":" Hello \n"}}]}`), nil
		})

	provider := NewLocalProvider(LocalConfig{Client: client})
	result, err := provider.Query(context.Background(), Request{
		Text:       "こんにちは",
		Source:     "ja",
		Target:     "en",
		SourceCode: "ja",
		TargetCode: "en",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello"}, result.Translations)
}

func TestLocalQueryUsesChinesePromptForChinesePairs(t *testing.T) {
	t.Parallel()

	provider := NewLocalProvider(LocalConfig{})
	prompt := provider.buildPrompt("hello", "en", "zh-Hans")
	assert.True(t, strings.HasPrefix(prompt, "将以下文本翻译为中文"))
}

func TestLocalQueryErrorPayload(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodPost, "http://127.0.0.1:8845/v1/chat/completions",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"error":{"message":"model not loaded"}}`))

	provider := NewLocalProvider(LocalConfig{Client: client})
	_, err := provider.Query(context.Background(), Request{Text: "hi", Source: "en", Target: "fr", SourceCode: "en", TargetCode: "fr"})
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "http:400", backendErr.Code)
	assert.Equal(t, "model not loaded", backendErr.Message)
}
