// Package idcodec turns plaintext resource ids into opaque, URL-safe tokens
// and back.
//
// Tokens are produced with an AEAD cipher keyed by a PBKDF2-derived key:
//
//	token = base64url_nopad(nonce || ciphertext || tag)
//
// The key is derived once per Codec, on first use, and then kept in memory for
// the lifetime of the process. Every Encode call draws a fresh random nonce, so
// encoding the same id twice yields two different tokens.
//
// The codec provides tamper-evident obfuscation of ids in URLs. It is not
// access control: the passphrase and salt are client configuration and must be
// treated as reachable by anyone running the client.
//
// Decode fails open. A token that cannot be decoded is returned unchanged so
// callers can still render something; use DecodeResult to tell the two cases
// apart.
package idcodec
