package principal

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rbmarquez/doctorq/pkg/role"
)

const (
	headerType      = "JWT"
	headerAlgorithm = "HS256"
)

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Claims is the signed body of a principal token.
type Claims struct {
	ID        string    `json:"jti"`
	Subject   string    `json:"sub"`
	Role      role.Role `json:"role"`
	ProfileID string    `json:"profile_id,omitempty"`
	Issuer    string    `json:"iss,omitempty"`
	IssuedAt  int64     `json:"iat"`
	ExpiresAt int64     `json:"exp"`
}

// Principal returns the principal carried by the claims.
func (c Claims) Principal() Principal {
	return Principal{UserID: c.Subject, Role: c.Role, ProfileID: c.ProfileID}
}

// Codec issues and verifies HMAC-SHA256 signed principal tokens.
type Codec struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithIssuer stamps tokens with iss and rejects tokens from other issuers.
func WithIssuer(iss string) CodecOption {
	return func(c *Codec) { c.issuer = iss }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec creates a codec. The key should be at least 32 random bytes.
func NewCodec(key []byte, opts ...CodecOption) (*Codec, error) {
	if len(key) == 0 {
		return nil, ErrMissingSigningKey
	}
	c := &Codec{key: append([]byte(nil), key...), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for p valid for ttl.
func (c *Codec) Issue(p Principal, ttl time.Duration) (string, error) {
	if p.Anonymous() {
		return "", ErrAnonymous
	}
	if !p.Role.Valid() {
		return "", fmt.Errorf("%w: role %q", ErrInvalidClaims, p.Role)
	}

	now := c.now()
	claims := Claims{
		ID:        uuid.NewString(),
		Subject:   p.UserID,
		Role:      p.Role,
		ProfileID: p.ProfileID,
		Issuer:    c.issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}

	headerJSON, err := json.Marshal(header{Type: headerType, Algorithm: headerAlgorithm})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	payload := encodeSegment(headerJSON) + "." + encodeSegment(claimsJSON)
	return payload + "." + c.sign(payload), nil
}

// Parse verifies token and returns its claims.
func (c *Codec) Parse(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(c.sign(payload))) != 1 {
		return Claims{}, ErrInvalidSignature
	}

	headerJSON, err := decodeSegment(parts[0])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: header: %v", ErrInvalidToken, err)
	}
	var h header
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return Claims{}, fmt.Errorf("%w: header: %v", ErrInvalidToken, err)
	}
	if h.Algorithm != headerAlgorithm {
		return Claims{}, ErrUnexpectedSigningMethod
	}

	claimsJSON, err := decodeSegment(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: claims: %v", ErrInvalidToken, err)
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: claims: %v", ErrInvalidToken, err)
	}

	if err := c.validate(claims); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// Principal parses token and returns the principal it carries.
func (c *Codec) Principal(token string) (Principal, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return Principal{}, err
	}
	return claims.Principal(), nil
}

func (c *Codec) validate(claims Claims) error {
	if claims.ExpiresAt > 0 && c.now().Unix() > claims.ExpiresAt {
		return ErrExpiredToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidClaims)
	}
	if _, ok := role.Parse(string(claims.Role)); !ok {
		return fmt.Errorf("%w: role %q", ErrInvalidClaims, claims.Role)
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return fmt.Errorf("%w: issuer %q", ErrInvalidClaims, claims.Issuer)
	}
	return nil
}

func (c *Codec) sign(payload string) string {
	h := hmac.New(sha256.New, c.key)
	h.Write([]byte(payload))
	return encodeSegment(h.Sum(nil))
}

func encodeSegment(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeSegment(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
