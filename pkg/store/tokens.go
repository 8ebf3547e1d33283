package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RefreshToken is the server-side record of an issued refresh token.
type RefreshToken struct {
	JTI       string
	UserName  string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// InsertRefreshToken records a newly issued refresh token.
func (s *Store) InsertRefreshToken(ctx context.Context, tok RefreshToken) error {
	if strings.TrimSpace(tok.JTI) == "" {
		return fmt.Errorf("jti is required")
	}
	if strings.TrimSpace(tok.UserName) == "" {
		return fmt.Errorf("user name is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO RefreshTokens (jti, user_name, issued_at, expires_at, revoked) VALUES (?, ?, ?, ?, ?)`,
		tok.JTI, tok.UserName, toMillis(tok.IssuedAt), toMillis(tok.ExpiresAt), tok.Revoked,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("refresh token %s: %w", tok.JTI, ErrDuplicate)
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken loads the record for jti.
func (s *Store) GetRefreshToken(ctx context.Context, jti string) (RefreshToken, error) {
	var (
		tok       RefreshToken
		issuedAt  int64
		expiresAt int64
	)
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT jti, user_name, issued_at, expires_at, revoked FROM RefreshTokens WHERE jti = ?`, jti)
	if err := row.Scan(&tok.JTI, &tok.UserName, &issuedAt, &expiresAt, &tok.Revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tok, fmt.Errorf("refresh token %s: %w", jti, ErrNotFound)
		}
		return tok, fmt.Errorf("select refresh token: %w", err)
	}
	tok.IssuedAt = fromMillis(issuedAt)
	tok.ExpiresAt = fromMillis(expiresAt)
	return tok, nil
}

// IsRevoked reports whether the refresh token jti was revoked. Unknown
// tokens yield ErrNotFound.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	tok, err := s.GetRefreshToken(ctx, jti)
	if err != nil {
		return false, err
	}
	return tok.Revoked, nil
}

// RevokeRefreshToken marks jti revoked. Revoking an unknown token is not an
// error; there is nothing left to protect.
func (s *Store) RevokeRefreshToken(ctx context.Context, jti string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `UPDATE RefreshTokens SET revoked = 1 WHERE jti = ?`, jti); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
