package idcodec

import "errors"

// Configuration errors. These are fatal: no token can round-trip without a key.
var (
	// ErrMissingPassphrase indicates Config.Passphrase is empty.
	ErrMissingPassphrase = errors.New("idcodec: passphrase is required")

	// ErrMissingSalt indicates Config.Salt is empty.
	ErrMissingSalt = errors.New("idcodec: salt is required")

	// ErrInvalidIterations indicates a non-positive KDF iteration count.
	ErrInvalidIterations = errors.New("idcodec: iterations must be positive")

	// ErrUnknownCipher indicates Config.Cipher names an unsupported AEAD.
	ErrUnknownCipher = errors.New("idcodec: unknown cipher")
)

// Encode errors.
var (
	// ErrNonce indicates the random source failed to produce a nonce.
	ErrNonce = errors.New("idcodec: nonce generation failed")
)

// Decode failure reasons, reported through Result.Err.
var (
	// ErrMalformedToken indicates the token is not valid unpadded base64url.
	ErrMalformedToken = errors.New("idcodec: malformed token")

	// ErrTokenTooShort indicates the decoded token cannot hold a nonce and tag.
	ErrTokenTooShort = errors.New("idcodec: token too short")

	// ErrAuthFailed indicates the authentication tag did not verify.
	ErrAuthFailed = errors.New("idcodec: token authentication failed")

	// ErrInvalidUTF8 indicates the decrypted payload is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("idcodec: plaintext is not valid UTF-8")
)
