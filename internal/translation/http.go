package translation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/errkind"
)

const maxErrorBodyLength = 300

// NewHTTPClient builds the client shared by backends. Without an explicit
// proxy it keeps the default transport, which honors HTTP(S)_PROXY.
func NewHTTPClient(proxyURL string) *http.Client {
	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL == "" {
		return &http.Client{}
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil || parsed.Host == "" {
		return &http.Client{}
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(parsed)
	return &http.Client{Transport: transport}
}

func clientOrDefault(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{}
	}
	return client
}

// send executes a request and returns the body. Non-2xx statuses become a
// BackendError carrying the status as its code.
func send(ctx context.Context, client *http.Client, id backend.ID, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("send %s request: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", id, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &BackendError{
			Backend: id,
			Code:    errkind.HTTPCode(resp.StatusCode),
			Message: truncate(strings.TrimSpace(string(body)), maxErrorBodyLength),
		}
	}
	return body, nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
