package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
)

var (
	// ErrTokenExpired indicates the token was valid but its expiry has passed.
	ErrTokenExpired = errors.New("token: expired")
	// ErrTokenInvalid indicates a malformed token, a signature that does not
	// match the current secret, or claims that fail validation.
	ErrTokenInvalid = errors.New("token: invalid")
)

const defaultAccessTokenTTL = 15 * time.Minute

// AccessTokenClaims embeds the registered claims plus the account id and the
// role snapshot taken at issuance time.
type AccessTokenClaims struct {
	AccountID int64  `json:"uid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed access tokens. The signing secret
// is injected once at construction and read-only thereafter; rotating it
// requires a restart and invalidates all outstanding tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService constructs a TokenService from the process-wide secret.
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token: signing secret is required")
	}
	if issuer == "" {
		return nil, fmt.Errorf("token: issuer is required")
	}
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// TTL reports the expiry window applied to issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token asserting {account id, role} with issued-at and expiry
// timestamps. A non-positive ttl falls back to the configured default.
func (s *TokenService) Issue(accountID int64, role domain.Role, ttl time.Duration) (string, error) {
	if accountID <= 0 {
		return "", fmt.Errorf("token: account id is required")
	}
	if _, err := domain.ParseRole(role.String()); err != nil {
		return "", fmt.Errorf("token: %w", err)
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := time.Now().UTC()
	claims := AccessTokenClaims{
		AccountID: accountID,
		Role:      role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}

	return signed, nil
}

// Verify validates the token against the current secret and clock and
// returns the asserted identity. Verification requires no store lookup; any
// failure short-circuits with a sentinel error, never a partial identity.
func (s *TokenService) Verify(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, ErrTokenInvalid
	}

	claims := &AccessTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, ErrTokenExpired
		}
		return domain.Identity{}, ErrTokenInvalid
	}

	if parsed == nil || !parsed.Valid {
		return domain.Identity{}, ErrTokenInvalid
	}
	if claims.AccountID <= 0 {
		return domain.Identity{}, ErrTokenInvalid
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Identity{}, ErrTokenInvalid
	}

	return domain.Identity{AccountID: claims.AccountID, Role: role}, nil
}
