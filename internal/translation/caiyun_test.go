package translation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaiyunQuery(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodPost, DefaultCaiyunEndpoint,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "token secret", req.Header.Get("X-Authorization"))
			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			var payload struct {
				Source    []string `json:"source"`
				TransType string   `json:"trans_type"`
			}
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, []string{"hello"}, payload.Source)
			assert.Equal(t, "en2zh", payload.TransType)
			return httpmock.NewStringResponse(http.StatusOK, `{"target":["你好"],"rc":0}`), nil
		})

	provider, err := NewCaiyunProvider(CaiyunConfig{Token: "secret", Client: client})
	require.NoError(t, err)

	result, err := provider.Query(context.Background(), Request{Text: "hello", SourceCode: "en", TargetCode: "zh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"你好"}, result.Translations)
}

func TestCaiyunUnauthorized(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodPost, DefaultCaiyunEndpoint,
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"message":"Invalid token"}`))

	provider, err := NewCaiyunProvider(CaiyunConfig{Token: "bad", Client: client})
	require.NoError(t, err)

	_, err = provider.Query(context.Background(), Request{Text: "hello", SourceCode: "en", TargetCode: "zh"})
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "http:401", backendErr.Code)
}
