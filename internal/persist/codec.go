package persist

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
)

var ErrCorruptValue = errors.New("persist: sealed value cannot be opened")

// Codec hides pref keys and seals pref values. The zero secret gives a
// passthrough codec.
type Codec struct {
	keyMAC []byte
	sealer interface {
		NonceSize() int
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return &Codec{}, nil
	}
	root := blake2b.Sum256([]byte(secret))
	keyMAC := derive(root[:], "pref-key")
	aead, err := chacha20poly1305.NewX(derive(root[:], "pref-value"))
	if err != nil {
		return nil, fmt.Errorf("prefs codec: %w", err)
	}
	return &Codec{keyMAC: keyMAC, sealer: aead}, nil
}

func derive(root []byte, label string) []byte {
	h, _ := blake2b.New256(root) // a 32-byte key is always accepted
	h.Write([]byte(label))
	return h.Sum(nil)
}

// Sealed reports whether the codec hides anything.
func (c *Codec) Sealed() bool { return c.sealer != nil }

// Key maps a pref name to its stored key.
func (c *Codec) Key(name string) string {
	if !c.Sealed() {
		return name
	}
	h, _ := blake2b.New256(c.keyMAC)
	h.Write([]byte(name))
	return hex.EncodeToString(h.Sum(nil))
}

// Seal encrypts value, binding it to the stored key.
func (c *Codec) Seal(storedKey, value string) (string, error) {
	if !c.Sealed() {
		return value, nil
	}
	nonce := make([]byte, c.sealer.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("prefs nonce: %w", err)
	}
	out := c.sealer.Seal(nonce, nonce, []byte(value), []byte(storedKey))
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (c *Codec) Open(storedKey, sealed string) (string, error) {
	if !c.Sealed() {
		return sealed, nil
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	ns := c.sealer.NonceSize()
	if len(raw) < ns {
		return "", ErrCorruptValue
	}
	plain, err := c.sealer.Open(nil, raw[:ns], raw[ns:], []byte(storedKey))
	if err != nil {
		return "", ErrCorruptValue
	}
	return string(plain), nil
}

// SealedPrefs wraps a store so every key is hashed and every value sealed.
type SealedPrefs struct {
	store Prefs
	codec *Codec
}

func NewSealedPrefs(store Prefs, codec *Codec) *SealedPrefs {
	return &SealedPrefs{store: store, codec: codec}
}

func (s *SealedPrefs) Load(ctx context.Context, key string) (string, bool, error) {
	k := s.codec.Key(key)
	raw, ok, err := s.store.Load(ctx, k)
	if err != nil || !ok {
		return "", ok, err
	}
	v, err := s.codec.Open(k, raw)
	if err != nil {
		return "", false, fmt.Errorf("load pref %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SealedPrefs) Save(ctx context.Context, key, value string) error {
	k := s.codec.Key(key)
	sealed, err := s.codec.Seal(k, value)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, k, sealed)
}

func (s *SealedPrefs) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.codec.Key(key))
}

func (s *SealedPrefs) Has(ctx context.Context, key string) (bool, error) {
	return s.store.Has(ctx, s.codec.Key(key))
}

func (s *SealedPrefs) DeleteAll(ctx context.Context) error {
	return s.store.DeleteAll(ctx)
}
