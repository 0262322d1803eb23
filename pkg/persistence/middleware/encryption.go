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

	"github.com/massanella/fichaflow/pkg/ports"
)

// envelopeKey is the single answer key of an encrypted snapshot envelope.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new snapshots.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.EntryStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts entry snapshots
// with AES-GCM before they reach the backend. Clinical answers never touch
// the store in clear text; only the opaque envelope does.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.EntryStore) ports.EntryStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, entryID string, snap ports.EntrySnapshot) error {
	plainText, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt snapshot: %w", err)
	}

	envelope := ports.EntrySnapshot{
		Answers: map[string]any{
			envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
		},
		Computed: map[string]any{},
	}
	return m.next.Save(ctx, entryID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, entryID string) (ports.EntrySnapshot, error) {
	envelope, err := m.next.Load(ctx, entryID)
	if err != nil {
		return ports.EntrySnapshot{}, err
	}

	encryptedStr, ok := envelope.Answers[envelopeKey].(string)
	if !ok {
		// A configured encryption layer never accepts clear-text snapshots:
		// fail secure rather than silently passing them through.
		return ports.EntrySnapshot{}, errors.New("entry is missing its encrypted envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return ports.EntrySnapshot{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return ports.EntrySnapshot{}, fmt.Errorf("failed to decrypt snapshot: %w", err)
	}

	var snap ports.EntrySnapshot
	if err := json.Unmarshal(plainText, &snap); err != nil {
		return ports.EntrySnapshot{}, fmt.Errorf("failed to unmarshal decrypted snapshot: %w", err)
	}
	if snap.Answers == nil {
		snap.Answers = make(map[string]any)
	}
	if snap.Computed == nil {
		snap.Computed = make(map[string]any)
	}
	return snap, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, entryID string) error {
	return m.next.Delete(ctx, entryID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *encryptionMiddleware) Finalize(ctx context.Context, entryID string) error {
	return m.next.Finalize(ctx, entryID)
}

// Helpers

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

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
