package auth

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PurposeInvitation marks a token minted for a farm join link.
const PurposeInvitation = "invitation"

// DefaultInvitationTTL is the server-enforced invitation lifetime.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// InviteClaims defines the invitation JWT payload.
type InviteClaims struct {
	Email   string `json:"email"`
	FarmID  int64  `json:"farm_id"`
	RoleID  int64  `json:"role_id"`
	Purpose string `json:"purpose"`
	jwtlib.RegisteredClaims
}

// InviteTokenIssuer mints and parses invitation join tokens.
type InviteTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewInviteTokenIssuer creates an issuer with the given HMAC secret.
// A zero ttl falls back to DefaultInvitationTTL.
func NewInviteTokenIssuer(secret string, ttl time.Duration) *InviteTokenIssuer {
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	return &InviteTokenIssuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured invitation lifetime.
func (i *InviteTokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a new invitation token for email joining farmID under roleID.
// The jti claim makes each token value unique even for repeated invites to
// the same (email, farm, role) triple.
func (i *InviteTokenIssuer) Issue(email string, farmID, roleID int64) (token string, expiresAt time.Time, err error) {
	now := time.Now()
	expiresAt = now.Add(i.ttl)
	claims := InviteClaims{
		Email:   email,
		FarmID:  farmID,
		RoleID:  roleID,
		Purpose: PurposeInvitation,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "farmhand",
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign invitation token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates the signature and extracts claims from an invitation
// token. Acceptance does not depend on this; the stored invitation row
// and its expires_at column are authoritative.
func (i *InviteTokenIssuer) Parse(token string) (*InviteClaims, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &InviteClaims{}, func(t *jwtlib.Token) (interface{}, error) {
		return i.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*InviteClaims)
	if !ok || !parsed.Valid {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	if claims.Purpose != PurposeInvitation {
		return nil, fmt.Errorf("unexpected token purpose %q", claims.Purpose)
	}
	return claims, nil
}
