package resettoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signer creates and validates one-time password reset tokens. The signature
// covers the user's current password hash, so a token stops verifying as soon
// as the password changes: consuming it once invalidates it.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a signer with the provided secret and TTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// EncodeUID encodes a user ID for safe use in reset links.
func EncodeUID(userID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(userID))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", fmt.Errorf("decode uid: %w", err)
	}
	return string(raw), nil
}

// Generate returns a reset token bound to the user's current password hash.
func (s *Signer) Generate(userID, passwordHash string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("userID required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	signature := s.sign(userID, passwordHash, expiresAt.Unix())
	token := fmt.Sprintf("%d.%s", expiresAt.Unix(), signature)
	return token, expiresAt, nil
}

// Verify checks a token against the user's current password hash.
func (s *Signer) Verify(userID, passwordHash, token string) error {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid token format")
	}
	expUnix, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp")
	}
	expected := s.sign(userID, passwordHash, expUnix)
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return fmt.Errorf("invalid token signature")
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return fmt.Errorf("token expired")
	}
	return nil
}

func (s *Signer) sign(userID, passwordHash string, expUnix int64) string {
	// Bind the signature to the password hash digest rather than the hash
	// itself so tokens never embed credential material.
	hashDigest := sha256.Sum256([]byte(passwordHash))
	payload := fmt.Sprintf("%s|%d|%s", userID, expUnix, hex.EncodeToString(hashDigest[:]))
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
