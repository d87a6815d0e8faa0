package language

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horse.fit/easydict/internal/backend"
)

func TestDefaultRegistryIsValid(t *testing.T) {
	t.Parallel()

	reg := Default()
	require.NotNil(t, reg)
	assert.Len(t, reg.IDs(), len(builtinRecords))
	assert.Equal(t, "zh-Hans", reg.IDs()[0])
}

func TestNewRegistryRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry([]Record{
		{ID: "en", Codes: map[backend.ID]string{backend.Baidu: "en"}},
		{ID: "en", Codes: map[backend.ID]string{backend.Baidu: "eng"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate language id")
}

func TestNewRegistryRejectsAliasedBackendCode(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry([]Record{
		{ID: "zh-Hans", Codes: map[backend.ID]string{backend.Caiyun: "zh"}},
		{ID: "zh-Hant", Codes: map[backend.ID]string{backend.Caiyun: "zh"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `caiyun code "zh"`)
}

func TestNewRegistryRejectsReservedAuto(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry([]Record{{ID: Auto}})
	require.Error(t, err)
}

func TestCodeFor(t *testing.T) {
	t.Parallel()

	reg := Default()

	code, ok := reg.CodeFor("ja", backend.Baidu)
	require.True(t, ok)
	assert.Equal(t, "jp", code)

	_, ok = reg.CodeFor("fr", backend.Caiyun)
	assert.False(t, ok, "caiyun does not serve French")

	_, ok = reg.CodeFor("xx", backend.Baidu)
	assert.False(t, ok)
}

func TestDetectCodeForPrefersDetectionCodes(t *testing.T) {
	t.Parallel()

	reg := Default()

	code, ok := reg.DetectCodeFor("ja", backend.Tencent)
	require.True(t, ok)
	assert.Equal(t, "jp", code)

	code, ok = reg.DetectCodeFor("fr", backend.Tencent)
	require.True(t, ok)
	assert.Equal(t, "fr", code)
}

func TestCanonicalFor(t *testing.T) {
	t.Parallel()

	reg := Default()

	tests := []struct {
		backend backend.ID
		code    string
		want    string
		ok      bool
	}{
		{backend.Baidu, "kor", "ko", true},
		{backend.Baidu, "CHT", "zh-Hant", true},
		{backend.Tencent, "kr", "ko", true},
		{backend.Tencent, "ko", "ko", true},
		{backend.ISO, "zh", "zh-Hans", true},
		{backend.Youdao, "zh-CHS", "zh-Hans", true},
		{backend.ISO, "tlh", "", false},
		{backend.ID("nope"), "en", "", false},
	}
	for _, tt := range tests {
		got, ok := reg.CanonicalFor(tt.backend, tt.code)
		assert.Equal(t, tt.ok, ok, "%s/%s", tt.backend, tt.code)
		assert.Equal(t, tt.want, got, "%s/%s", tt.backend, tt.code)
	}
}

func TestSupports(t *testing.T) {
	t.Parallel()

	reg := Default()
	assert.True(t, reg.Supports(backend.Caiyun, "ja", "en"))
	assert.False(t, reg.Supports(backend.Caiyun, "ja", "fr"))
	assert.False(t, reg.Supports(backend.Iciba, "de", "en"))
}

func TestWebCodeFor(t *testing.T) {
	t.Parallel()

	code, ok := Default().WebCodeFor("ja", WebYoudao)
	require.True(t, ok)
	assert.Equal(t, "jap", code)

	_, ok = Default().WebCodeFor("ja", WebEudic)
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	reg := Default()
	tests := map[string]string{
		"auto":    Auto,
		"EN":      "en",
		"en_US":   "en",
		"zh":      "zh-Hans",
		"zh-TW":   "zh-Hant",
		"zh_hant": "zh-Hant",
		"zh-CHS":  "zh-Hans",
		"pt-BR":   "pt",
		"ZH-HANS": "zh-Hans",
		"cht":     "zh-Hant",
		"jp":      "ja",
	}
	for raw, want := range tests {
		got, err := reg.Resolve(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := reg.Resolve("klingon-1")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = reg.Resolve("  ")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOptionsFollowDisplayOrder(t *testing.T) {
	t.Parallel()

	options := Default().Options()
	require.NotEmpty(t, options)
	assert.Equal(t, "zh-Hans", options[0].Code)
	assert.Equal(t, "中文", options[0].Native)
	assert.Equal(t, "en", options[2].Code)
	assert.Equal(t, []string{"Samantha", "Alex"}, options[2].Voices)
}
