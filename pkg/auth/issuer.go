package auth

import (
	"context"
	"fmt"
	"time"

	"brainbuddy/focusws/pkg/config"
	"brainbuddy/focusws/pkg/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Pair is a freshly issued access/refresh token pair.
type Pair struct {
	Access     string
	Refresh    string
	AccessJTI  string
	RefreshJTI string
	AccessExp  time.Time
	RefreshExp time.Time
}

// RefreshRecorder stores issued refresh tokens.
type RefreshRecorder interface {
	InsertRefreshToken(ctx context.Context, tok store.RefreshToken) error
}

// Issuer mints token pairs the Verifier accepts.
type Issuer struct {
	cfg *config.Realtime
	now func() time.Time
}

// NewIssuer returns an Issuer signing with cfg's secret.
func NewIssuer(cfg *config.Realtime) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

// Issue signs a new pair for user.
func (i *Issuer) Issue(user string) (Pair, error) {
	var p Pair
	if user == "" {
		return p, fmt.Errorf("user name is required")
	}

	method := jwt.GetSigningMethod(i.cfg.JWTAlgorithm)
	if method == nil {
		return p, fmt.Errorf("unknown signing method %q", i.cfg.JWTAlgorithm)
	}

	now := i.now().UTC().Truncate(time.Second)
	p.AccessJTI = uuid.NewString()
	p.RefreshJTI = uuid.NewString()
	p.AccessExp = now.Add(i.cfg.AccessTTL())
	p.RefreshExp = now.Add(i.cfg.RefreshTTL())

	var err error
	p.Access, err = i.sign(method, user, p.AccessJTI, i.cfg.AccessType, now, p.AccessExp)
	if err != nil {
		return p, fmt.Errorf("signing access token: %w", err)
	}
	p.Refresh, err = i.sign(method, user, p.RefreshJTI, i.cfg.RefreshType, now, p.RefreshExp)
	if err != nil {
		return p, fmt.Errorf("signing refresh token: %w", err)
	}
	return p, nil
}

// IssueAndRecord issues a pair and stores its refresh token.
func (i *Issuer) IssueAndRecord(ctx context.Context, user string, rec RefreshRecorder) (Pair, error) {
	p, err := i.Issue(user)
	if err != nil {
		return p, err
	}
	err = rec.InsertRefreshToken(ctx, store.RefreshToken{
		JTI:       p.RefreshJTI,
		UserName:  user,
		IssuedAt:  i.now(),
		ExpiresAt: p.RefreshExp,
	})
	if err != nil {
		return p, fmt.Errorf("recording refresh token: %w", err)
	}
	return p, nil
}

func (i *Issuer) sign(method jwt.SigningMethod, user, jti, typ string, iat, exp time.Time) (string, error) {
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		ClaimSubject:  user,
		ClaimID:       jti,
		ClaimIssuedAt: iat.Unix(),
		ClaimType:     typ,
		ClaimIssuer:   i.cfg.Issuer,
		ClaimExpiry:   exp.Unix(),
	})
	return token.SignedString([]byte(i.cfg.JWTSecret))
}
