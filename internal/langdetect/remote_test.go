package langdetect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/language"
)

type stubIdentifier struct {
	name  backend.ID
	code  string
	err   error
	calls int
}

func (s *stubIdentifier) Name() backend.ID {
	return s.name
}

func (s *stubIdentifier) IdentifyLanguage(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.code, s.err
}

func TestRemoteDetectorMapsBackendCode(t *testing.T) {
	t.Parallel()

	id := &stubIdentifier{name: backend.Baidu, code: "kor"}
	d := NewRemoteDetector(id, language.Default(), time.Minute)

	sig, err := d.Detect(context.Background(), "안녕")
	require.NoError(t, err)
	assert.Equal(t, "ko", sig.Language)
	assert.Equal(t, "kor", sig.RawCode)
	assert.False(t, sig.Scored)
	assert.Equal(t, backend.Baidu, d.Name())
}

func TestRemoteDetectorMemoizesByText(t *testing.T) {
	t.Parallel()

	id := &stubIdentifier{name: backend.Google, code: "zh-CN"}
	d := NewRemoteDetector(id, language.Default(), time.Minute)

	for range 3 {
		sig, err := d.Detect(context.Background(), "你好")
		require.NoError(t, err)
		assert.Equal(t, "zh-Hans", sig.Language)
	}
	assert.Equal(t, 1, id.calls)

	_, err := d.Detect(context.Background(), "再见")
	require.NoError(t, err)
	assert.Equal(t, 2, id.calls)
}

func TestRemoteDetectorDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	id := &stubIdentifier{name: backend.Baidu, err: errors.New("54003")}
	d := NewRemoteDetector(id, language.Default(), time.Minute)

	_, err := d.Detect(context.Background(), "hello")
	require.Error(t, err)
	_, err = d.Detect(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 2, id.calls)

	id.err = nil
	_, err = d.Detect(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrUndetermined)
}

func TestRemoteDetectorUnknownCodeIsUnusable(t *testing.T) {
	t.Parallel()

	id := &stubIdentifier{name: backend.Baidu, code: "wyw"}
	sig, err := NewRemoteDetector(id, language.Default(), time.Minute).Detect(context.Background(), "曰")
	require.NoError(t, err)
	assert.False(t, sig.Usable())
}
