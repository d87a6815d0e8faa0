package translation

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
)

// newMockClient returns a client backed by its own mock transport so
// parallel tests do not share responders.
func newMockClient(t *testing.T) (*http.Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	return &http.Client{Transport: transport}, transport
}
