package idcodec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 round count used when Config.Iterations is zero.
	DefaultIterations = 100_000

	// KeySize is the derived key length in bytes (256 bits) for every supported cipher.
	KeySize = 32
)

// Supported AEAD ciphers.
const (
	CipherAESGCM            = "aes-gcm"
	CipherXChaCha20Poly1305 = "xchacha20-poly1305"
)

// tokenEncoding rejects non-zero padding bits, so every character of a token
// contributes to the authenticated bytes.
var tokenEncoding = base64.RawURLEncoding.Strict()

// Config holds the static key material of a Codec. It is read once, at
// construction, and never re-read.
type Config struct {
	// Passphrase is the low-entropy secret the key is derived from.
	Passphrase string

	// Salt is the KDF salt.
	Salt string

	// Iterations is the PBKDF2-HMAC-SHA256 round count.
	// Default: DefaultIterations
	Iterations int

	// Cipher selects the AEAD: CipherAESGCM or CipherXChaCha20Poly1305.
	// Default: CipherAESGCM
	Cipher string
}

func (c Config) withDefaults() Config {
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.Cipher == "" {
		c.Cipher = CipherAESGCM
	}
	return c
}

// Validate reports whether the configuration can produce a key.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.Passphrase == "" {
		return ErrMissingPassphrase
	}
	if c.Salt == "" {
		return ErrMissingSalt
	}
	if c.Iterations < 1 {
		return ErrInvalidIterations
	}
	switch c.Cipher {
	case CipherAESGCM, CipherXChaCha20Poly1305:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCipher, c.Cipher)
	}
	return nil
}

// DerivedKey is the symmetric key of a Codec. Its bytes are not exported and
// it formats as a redacted placeholder.
type DerivedKey struct {
	b []byte
}

// Len returns the key length in bytes.
func (k *DerivedKey) Len() int { return len(k.b) }

func (k *DerivedKey) String() string { return "idcodec.DerivedKey([REDACTED])" }

// GoString keeps %#v from printing key bytes.
func (k *DerivedKey) GoString() string { return k.String() }

// Outcome classifies a decode call.
type Outcome int

const (
	// OutcomeDecoded means the token verified and decrypted.
	OutcomeDecoded Outcome = iota
	// OutcomeFallback means the token was returned unchanged.
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDecoded:
		return "decoded"
	case OutcomeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of DecodeResult.
type Result struct {
	// Value is the plaintext when Decoded is true, otherwise the input token.
	Value string

	// Decoded reports whether Value is a verified plaintext.
	Decoded bool

	// Err is the reason decoding failed. Nil when Decoded is true.
	Err error
}

// Outcome returns the Outcome matching r.
func (r Result) Outcome() Outcome {
	if r.Decoded {
		return OutcomeDecoded
	}
	return OutcomeFallback
}

// Option configures a Codec.
type Option func(*Codec)

// WithFallback registers codecs tried, in order, when the primary key cannot
// open a token. Encode always uses the primary key. This lets tokens issued
// under retired key material keep decoding during a migration window.
func WithFallback(legacy ...*Codec) Option {
	return func(c *Codec) {
		for _, l := range legacy {
			if l != nil {
				c.fallbacks = append(c.fallbacks, l)
			}
		}
	}
}

// WithObserver registers a callback invoked with the Outcome of every
// Decode and DecodeResult call.
func WithObserver(fn func(Outcome)) Option {
	return func(c *Codec) {
		c.observe = fn
	}
}

// WithRandom overrides the nonce source. Defaults to crypto/rand.Reader.
func WithRandom(r io.Reader) Option {
	return func(c *Codec) {
		if r != nil {
			c.random = r
		}
	}
}

// Codec encodes and decodes identifier tokens.
//
// Contract:
// - Concurrency: safe for concurrent use; the key is derived exactly once.
// - Errors: Decode never fails; Encode fails only on key or nonce errors.
type Codec struct {
	cfg       Config
	random    io.Reader
	fallbacks []*Codec
	observe   func(Outcome)

	sealer func() (*sealer, error)
}

type sealer struct {
	key  *DerivedKey
	aead cipher.AEAD
}

// New creates a Codec. The configuration is validated here; the expensive key
// derivation is deferred to the first DeriveKey, Encode or Decode call.
func New(cfg Config, opts ...Option) (*Codec, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Codec{
		cfg:    cfg,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sealer = sync.OnceValues(func() (*sealer, error) {
		return newSealer(c.cfg)
	})
	return c, nil
}

func newSealer(cfg Config) (*sealer, error) {
	key := &DerivedKey{
		b: pbkdf2.Key([]byte(cfg.Passphrase), []byte(cfg.Salt), cfg.Iterations, KeySize, sha256.New),
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch cfg.Cipher {
	case CipherXChaCha20Poly1305:
		aead, err = chacha20poly1305.NewX(key.b)
	default:
		var block cipher.Block
		block, err = aes.NewCipher(key.b)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("idcodec: create %s cipher: %w", cfg.Cipher, err)
	}
	return &sealer{key: key, aead: aead}, nil
}

// DeriveKey returns the codec key, deriving it on the first call. Later calls
// return the same instance without repeating the KDF.
func (c *Codec) DeriveKey() (*DerivedKey, error) {
	s, err := c.sealer()
	if err != nil {
		return nil, err
	}
	return s.key, nil
}

// Cipher returns the configured AEAD name.
func (c *Codec) Cipher() string {
	return c.cfg.Cipher
}

// Encode returns a URL-safe token for plain.
func (c *Codec) Encode(plain string) (string, error) {
	s, err := c.sealer()
	if err != nil {
		return "", err
	}

	nonceSize := s.aead.NonceSize()
	buf := make([]byte, nonceSize, nonceSize+len(plain)+s.aead.Overhead())
	if _, err := io.ReadFull(c.random, buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNonce, err)
	}

	sealed := s.aead.Seal(buf, buf[:nonceSize], []byte(plain), nil)
	return tokenEncoding.EncodeToString(sealed), nil
}

// Decode returns the plaintext for token, or token itself if it cannot be
// decoded for any reason.
func (c *Codec) Decode(token string) string {
	return c.DecodeResult(token).Value
}

// DecodeResult decodes token and reports whether it succeeded. The primary
// key is tried first, then each fallback codec in registration order.
func (c *Codec) DecodeResult(token string) Result {
	res := c.open(token)
	for _, fb := range c.fallbacks {
		if res.Decoded {
			break
		}
		if r := fb.open(token); r.Decoded {
			res = r
		}
	}

	if c.observe != nil {
		c.observe(res.Outcome())
	}
	return res
}

func (c *Codec) open(token string) Result {
	fallback := func(err error) Result {
		return Result{Value: token, Err: err}
	}

	s, err := c.sealer()
	if err != nil {
		return fallback(err)
	}

	// The base64 decoder skips CR and LF; a token containing them is not one we issued.
	if strings.ContainsAny(token, "\r\n") {
		return fallback(ErrMalformedToken)
	}
	data, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return fallback(ErrMalformedToken)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize+s.aead.Overhead() {
		return fallback(ErrTokenTooShort)
	}

	plain, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return fallback(ErrAuthFailed)
	}
	if !utf8.Valid(plain) {
		return fallback(ErrInvalidUTF8)
	}
	return Result{Value: string(plain), Decoded: true}
}

const selfTestProbe = "idcodec-self-test"

// SelfTest derives the key and round-trips a probe value.
func (c *Codec) SelfTest() error {
	token, err := c.Encode(selfTestProbe)
	if err != nil {
		return fmt.Errorf("idcodec: self test encode: %w", err)
	}
	res := c.open(token)
	if !res.Decoded {
		return fmt.Errorf("idcodec: self test decode: %w", res.Err)
	}
	if res.Value != selfTestProbe {
		return fmt.Errorf("idcodec: self test round trip mismatch")
	}
	return nil
}
