package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/ports"
)

// ErrNotSealed is returned when an encrypted store holds a plain checkpoint.
var ErrNotSealed = errors.New("checkpoint is missing its encrypted payload")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are older keys tried when the active key cannot decrypt,
	// so keys can be rotated without rewriting stored runs.
	FallbackKeys [][]byte
}

// sealedKey is the annotation holding the base64 AES-GCM payload.
const sealedKey = "firebreak.sealed"

// envelope is the stored stand-in for an encrypted checkpoint. Only the
// routing metadata needed for listing stays readable.
type envelope struct {
	RunID     string
	Next      string
	Status    domain.RunStatus
	Steps     int
	UpdatedAt time.Time
	Sealed    []byte
}

func (e envelope) checkpoint() *domain.Checkpoint {
	return &domain.Checkpoint{
		RunID:       e.RunID,
		Next:        e.Next,
		Status:      e.Status,
		Steps:       e.Steps,
		UpdatedAt:   e.UpdatedAt,
		Annotations: map[string]string{sealedKey: base64.StdEncoding.EncodeToString(e.Sealed)},
	}
}

func openEnvelope(cp *domain.Checkpoint) (envelope, error) {
	encoded, ok := cp.Annotations[sealedKey]
	if !ok || encoded == "" {
		return envelope{}, ErrNotSealed
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return envelope{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	return envelope{
		RunID:     cp.RunID,
		Next:      cp.Next,
		Status:    cp.Status,
		Steps:     cp.Steps,
		UpdatedAt: cp.UpdatedAt,
		Sealed:    sealed,
	}, nil
}

type encryptionMiddleware struct {
	next   ports.CheckpointStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals checkpoints with
// AES-GCM. The stored envelope keeps the run ID, next stage, status, step
// count and timestamp readable for listing; everything else is encrypted.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.CheckpointStore) ports.CheckpointStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, runID string, cp *domain.Checkpoint) error {
	plainText, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt checkpoint: %w", err)
	}

	env := envelope{
		RunID:     cp.RunID,
		Next:      cp.Next,
		Status:    cp.Status,
		Steps:     cp.Steps,
		UpdatedAt: cp.UpdatedAt,
		Sealed:    ciphertext,
	}
	return m.next.Save(ctx, runID, env.checkpoint())
}

func (m *encryptionMiddleware) Load(ctx context.Context, runID string) (*domain.Checkpoint, error) {
	stored, err := m.next.Load(ctx, runID)
	if err != nil {
		return nil, err
	}

	env, err := openEnvelope(stored)
	if err != nil {
		return nil, err
	}

	plainText, err := decryptWithRotation(env.Sealed, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt checkpoint: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(plainText, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted checkpoint: %w", err)
	}
	return &cp, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
