package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brainbuddy/focusws/pkg/blacklist"
	"brainbuddy/focusws/pkg/config"
	"brainbuddy/focusws/pkg/store"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshTokens is the subset of the store the verifier needs.
type RefreshTokens interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	RevokeRefreshToken(ctx context.Context, jti string) error
}

// Verifier checks access/refresh pairs against the signing secret, the
// refresh token table and the access blacklist.
type Verifier struct {
	cfg       *config.Realtime
	tokens    RefreshTokens
	blacklist blacklist.Blacklist
	now       func() time.Time
}

// NewVerifier returns a Verifier using cfg's secret and claim values.
func NewVerifier(cfg *config.Realtime, tokens RefreshTokens, bl blacklist.Blacklist) *Verifier {
	return &Verifier{cfg: cfg, tokens: tokens, blacklist: bl, now: time.Now}
}

// Verify decides whether user may open a session with the given tokens.
//
// A non-nil error with an empty verdict means the decision could not be
// made. A non-nil error with a verdict means the verdict stands but one of
// its side effects (blacklisting, revocation) failed.
func (v *Verifier) Verify(ctx context.Context, access, refresh, user string) (Verdict, error) {
	accessClaims, err := v.parse(access)
	if err != nil {
		return Invalid, nil
	}
	refreshClaims, err := v.parse(refresh)
	if err != nil {
		return Invalid, nil
	}

	if len(InvalidClaims(accessClaims)) > 0 || len(InvalidClaims(refreshClaims)) > 0 {
		return Invalid, nil
	}

	accessExp, err := accessClaims.GetExpirationTime()
	if err != nil || accessExp == nil {
		return Invalid, nil
	}
	refreshExp, err := refreshClaims.GetExpirationTime()
	if err != nil || refreshExp == nil {
		return Invalid, nil
	}

	accessJTI := stringClaim(accessClaims, ClaimID)
	refreshJTI := stringClaim(refreshClaims, ClaimID)

	if !v.standardClaimsMatch(accessClaims, refreshClaims, user) {
		return Invalid, errors.Join(
			v.blacklistAccess(ctx, accessJTI, accessExp.Time),
			v.revokeRefresh(ctx, refreshJTI),
		)
	}

	listed, err := v.blacklist.Contains(ctx, accessJTI)
	if err != nil {
		return "", fmt.Errorf("checking access blacklist: %w", err)
	}
	if listed {
		return Invalid, nil
	}

	revoked, err := v.tokens.IsRevoked(ctx, refreshJTI)
	if errors.Is(err, store.ErrNotFound) {
		return Invalid, v.blacklistAccess(ctx, accessJTI, accessExp.Time)
	}
	if err != nil {
		return "", fmt.Errorf("checking refresh token: %w", err)
	}
	if revoked {
		return Invalid, v.blacklistAccess(ctx, accessJTI, accessExp.Time)
	}

	now := v.now()
	if refreshExp.Time.Before(now) {
		return RefreshExpired, v.revokeRefresh(ctx, refreshJTI)
	}
	if accessExp.Time.Before(now) {
		return AccessExpired, nil
	}

	return Valid, nil
}

// parse checks the signature and algorithm only; expiry is judged later so
// that expired tokens can be told apart from forged ones.
func (v *Verifier) parse(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(v.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{v.cfg.JWTAlgorithm}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *Verifier) standardClaimsMatch(access, refresh jwt.MapClaims, user string) bool {
	if stringClaim(access, ClaimSubject) != user || stringClaim(refresh, ClaimSubject) != user {
		return false
	}
	if stringClaim(access, ClaimType) != v.cfg.AccessType || stringClaim(refresh, ClaimType) != v.cfg.RefreshType {
		return false
	}
	if stringClaim(access, ClaimIssuer) != v.cfg.Issuer || stringClaim(refresh, ClaimIssuer) != v.cfg.Issuer {
		return false
	}
	return true
}

func (v *Verifier) blacklistAccess(ctx context.Context, jti string, exp time.Time) error {
	if err := v.blacklist.Add(ctx, jti, exp); err != nil {
		return fmt.Errorf("blacklisting access token %s: %w", jti, err)
	}
	return nil
}

func (v *Verifier) revokeRefresh(ctx context.Context, jti string) error {
	if err := v.tokens.RevokeRefreshToken(ctx, jti); err != nil {
		return fmt.Errorf("revoking refresh token %s: %w", jti, err)
	}
	return nil
}
