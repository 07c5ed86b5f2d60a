package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/vostuff/vostuff/internal/config"
	"github.com/vostuff/vostuff/internal/domain"
)

// TokenService mints and validates the two bearer token shapes: full session
// tokens scoped to one organization, and short-lived follow-on tokens redeemed
// during organization selection. Both are HS256 JWTs signed with the same
// secret; what keeps them apart is that each validator decodes into its own
// claims struct and rejects anything missing that shape's required fields.
type TokenService struct {
	cfg config.JWTConfig

	// now is swapped out in tests to pin the clock.
	now func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		cfg: cfg,
		now: time.Now,
	}
}

// SessionTTL returns the configured session token lifetime.
func (s *TokenService) SessionTTL() time.Duration {
	return s.cfg.SessionTTL
}

// IssueSession mints a session token carrying the user's identity, the
// selected organization and the role snapshot taken at issuance. Roles go
// stale if membership changes later; a fresh login picks them up.
func (s *TokenService) IssueSession(userID, identity, orgID string, roles []string) (string, error) {
	if roles == nil {
		roles = []string{}
	}
	now := s.now()
	claims := domain.SessionClaims{
		UserID:         userID,
		Identity:       identity,
		OrganizationID: orgID,
		Roles:          roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

// IssueFollowOn mints an org-selection token. It proves only that the primary
// credential check passed, so its lifetime is kept short.
func (s *TokenService) IssueFollowOn(userID, identity string) (string, error) {
	now := s.now()
	claims := domain.FollowOnClaims{
		UserID:   userID,
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.FollowOnTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

// ValidateSession verifies and decodes a session token. Bad signature,
// missing fields and expiry all collapse into domain.ErrInvalidToken so the
// error carries no oracle for probing forged tokens.
func (s *TokenService) ValidateSession(tokenString string) (*domain.SessionClaims, error) {
	claims := &domain.SessionClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, domain.ErrInvalidToken
	}
	// A follow-on token signed with the same key decodes into this struct
	// with organization_id and roles left at their zero values; refuse it.
	if claims.UserID == "" || claims.OrganizationID == "" || claims.Roles == nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// ValidateFollowOn verifies and decodes a follow-on token.
func (s *TokenService) ValidateFollowOn(tokenString string) (*domain.FollowOnClaims, error) {
	claims := &domain.FollowOnClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return domain.ErrInvalidToken
	}
	return nil
}
