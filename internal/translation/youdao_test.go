package translation

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horse.fit/easydict/internal/backend"
)

const youdaoWordResponse = `{
  "errorCode": "0",
  "query": "good",
  "translation": ["好"],
  "l": "en2zh-CHS",
  "basic": {
    "phonetic": "ɡʊd",
    "us-phonetic": "ɡʊd",
    "explains": ["adj. 好的；优秀的", "n. 好处"],
    "exam_type": ["初中", "高中"],
    "wfs": [{"wf": {"name": "比较级", "value": "better"}}, {"wf": {"name": "最高级", "value": "best"}}]
  },
  "web": [
    {"key": "good", "value": ["好", "良好"]},
    {"key": "Good Friday", "value": ["耶稣受难日"]}
  ]
}`

func TestYoudaoQueryParsesDictionaryPayload(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	fixed := time.Unix(1700000000, 0)
	transport.RegisterResponder(http.MethodPost, DefaultYoudaoEndpoint,
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseForm())
			assert.Equal(t, "good", req.PostForm.Get("q"))
			assert.Equal(t, "en", req.PostForm.Get("from"))
			assert.Equal(t, "zh-CHS", req.PostForm.Get("to"))
			assert.Equal(t, "v3", req.PostForm.Get("signType"))
			assert.Equal(t, "1700000000", req.PostForm.Get("curtime"))
			want := youdaoSign("key", "good", req.PostForm.Get("salt"), "1700000000", "secret")
			assert.Equal(t, want, req.PostForm.Get("sign"))
			return httpmock.NewStringResponse(http.StatusOK, youdaoWordResponse), nil
		})

	provider, err := NewYoudaoProvider(YoudaoConfig{
		AppKey:    "key",
		AppSecret: "secret",
		Client:    client,
		Now:       func() time.Time { return fixed },
	})
	require.NoError(t, err)

	result, err := provider.Query(context.Background(), Request{Text: "good", SourceCode: "en", TargetCode: "zh-CHS"})
	require.NoError(t, err)

	assert.Equal(t, backend.Youdao, result.Provider)
	assert.Equal(t, []string{"好"}, result.Translations)
	assert.Equal(t, "ɡʊd", result.Phonetic)
	assert.Equal(t, []string{"初中", "高中"}, result.ExamTypes)
	assert.Len(t, result.Explanations, 2)
	assert.Equal(t, []Form{{Name: "比较级", Value: "better"}, {Name: "最高级", Value: "best"}}, result.Forms)
	require.NotNil(t, result.WebTranslation)
	assert.Equal(t, "good", result.WebTranslation.Key)
	require.Len(t, result.WebPhrases, 1)
	assert.Equal(t, "Good Friday", result.WebPhrases[0].Key)
	assert.Equal(t, "en", result.DetectedSource)
}

func TestYoudaoQueryReportsErrorCode(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodPost, DefaultYoudaoEndpoint,
		httpmock.NewStringResponder(http.StatusOK, `{"errorCode":"411"}`))

	provider, err := NewYoudaoProvider(YoudaoConfig{AppKey: "key", AppSecret: "secret", Client: client})
	require.NoError(t, err)

	_, err = provider.Query(context.Background(), Request{Text: "good", SourceCode: "en", TargetCode: "zh-CHS"})
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "411", backendErr.Code)
	assert.Equal(t, backend.Youdao, backendErr.Backend)
}

func TestYoudaoRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewYoudaoProvider(YoudaoConfig{AppKey: "key"})
	assert.True(t, errors.Is(err, ErrMissingCredentials))
}

func TestYoudaoSignInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", youdaoSignInput("short"))
	long := "abcdefghijklmnopqrstuvwxyz"
	assert.Equal(t, "abcdefghij26qrstuvwxyz", youdaoSignInput(long))
	// Abbreviation counts runes, not bytes.
	assert.Equal(t, "一二三四五六七八九十21二三四五六七八九十甲", youdaoSignInput("一二三四五六七八九十一二三四五六七八九十甲"))
}
