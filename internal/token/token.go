// Package token implements the three signed-token primitives used by the
// platform: untimed signed tokens for invite links, timed signed tokens for
// verification and password-reset links, and JWTs for access/refresh
// credentials.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// MaxLinkAge is the validity window for timed tokens.
const MaxLinkAge = 300 * time.Second

// Signer produces and verifies untimed signed tokens. Tokens carry an opaque
// payload and never expire; revocation is out-of-band.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign wraps payload with an HMAC-SHA256 signature.
func (s *Signer) Sign(payload string) string {
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return body + "." + s.mac(body)
}

// Verify checks the token signature and returns the payload. It fails closed:
// any malformed or tampered token yields ErrInvalidToken.
func (s *Signer) Verify(token string) (string, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(sig), []byte(s.mac(body))) != 1 {
		return "", ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(payload), nil
}

func (s *Signer) mac(body string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// TimedSigner produces signed tokens with an embedded issue time. Verification
// rejects tokens older than the given window.
type TimedSigner struct {
	signer *Signer
	now    func() time.Time
}

func NewTimedSigner(secret string) *TimedSigner {
	return &TimedSigner{
		signer: NewSigner(secret),
		now:    time.Now,
	}
}

// Sign wraps payload together with the current issue time.
func (s *TimedSigner) Sign(payload string) string {
	return s.signer.Sign(fmt.Sprintf("%s|%d", payload, s.now().Unix()))
}

// Verify checks the signature and the embedded issue time against maxAge.
func (s *TimedSigner) Verify(token string, maxAge time.Duration) (string, error) {
	raw, err := s.signer.Verify(token)
	if err != nil {
		return "", err
	}
	payload, stamp, ok := cutLast(raw, "|")
	if !ok {
		return "", ErrInvalidToken
	}
	issued, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if s.now().Sub(time.Unix(issued, 0)) > maxAge {
		return "", ErrExpiredToken
	}
	return payload, nil
}

// cutLast splits around the final occurrence of sep so payloads may themselves
// contain the separator.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
