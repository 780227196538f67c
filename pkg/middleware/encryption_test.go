package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/firebreak/pkg/adapters/file"
	"github.com/aretw0/firebreak/pkg/adapters/memory"
	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/middleware"
	"github.com/aretw0/firebreak/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.CheckpointStore, cfg middleware.EncryptionConfig) ports.CheckpointStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunCheckpointStoreContract(t, store)
}

func TestEncryptionMiddleware_HidesSession(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	cp := ports.SampleCheckpoint("run-secret")
	require.NoError(t, secure.Save(ctx, "run-secret", cp))

	raw, err := underlying.Load(ctx, "run-secret")
	require.NoError(t, err)
	assert.Nil(t, raw.Session)
	assert.Empty(t, raw.LastError)
	assert.Len(t, raw.Annotations, 1)
	for _, sealed := range raw.Annotations {
		assert.NotContains(t, sealed, "3777")
	}
	assert.Equal(t, "assess_defence", raw.Next, "routing metadata stays readable")
	assert.Equal(t, domain.StatusFailed, raw.Status)

	loaded, err := secure.Load(ctx, "run-secret")
	require.NoError(t, err)
	assert.Equal(t, "3777", loaded.Session.Risk.Answers["What is your postcode?"])
	assert.Empty(t, loaded.Annotations)
}

func TestEncryptionMiddleware_SealedCheckpointSurvivesFileStore(t *testing.T) {
	underlying := file.New(t.TempDir())
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "run-file", ports.SampleCheckpoint("run-file")))

	loaded, err := secure.Load(ctx, "run-file")
	require.NoError(t, err)
	assert.Equal(t, "inference timeout", loaded.LastError)
	assert.Equal(t, "3777", loaded.Session.Risk.Answers["What is your postcode?"])
}

func TestEncryptionMiddleware_RejectsCorruptPayload(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "run-1", ports.SampleCheckpoint("run-1")))
	raw, err := underlying.Load(ctx, "run-1")
	require.NoError(t, err)
	for k := range raw.Annotations {
		raw.Annotations[k] = "not base64!"
	}
	require.NoError(t, underlying.Save(ctx, "run-1", raw))

	_, err = secure.Load(ctx, "run-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	require.NoError(t, encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey}).
		Save(ctx, "run-1", ports.SampleCheckpoint("run-1")))

	rotated := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := rotated.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)

	wrong := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey})
	_, err = wrong.Load(ctx, "run-1")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlainCheckpoint(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", ports.SampleCheckpoint("plain")))

	_, err := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)}).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)

	_, err = encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)}).Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestNewEncryptionMiddleware_KeyLength(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey("not base64!")
	assert.Error(t, err)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 16))))
	assert.Error(t, err)
}
