// Package auth verifies the access/refresh token pair a client presents
// when opening a realtime session, and issues such pairs.
package auth

import (
	"sort"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names every token must carry, and nothing else.
const (
	ClaimSubject  = "sub"
	ClaimID       = "jti"
	ClaimIssuedAt = "iat"
	ClaimType     = "typ"
	ClaimIssuer   = "iss"
	ClaimExpiry   = "exp"
)

var requiredClaims = []string{ClaimSubject, ClaimID, ClaimIssuedAt, ClaimType, ClaimIssuer, ClaimExpiry}

// InvalidClaims returns the claims that make payload unacceptable. Unknown
// claims are reported first and alone; otherwise missing, null or blank
// required claims are reported. An empty result means the claim set is valid.
func InvalidClaims(payload jwt.MapClaims) []string {
	var extra []string
	for name := range payload {
		if !isRequired(name) {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return extra
	}

	var invalid []string
	for _, name := range requiredClaims {
		value, ok := payload[name]
		if !ok || value == nil {
			invalid = append(invalid, name)
			continue
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			invalid = append(invalid, name)
		}
	}
	return invalid
}

func isRequired(name string) bool {
	for _, r := range requiredClaims {
		if r == name {
			return true
		}
	}
	return false
}

func stringClaim(payload jwt.MapClaims, name string) string {
	s, _ := payload[name].(string)
	return s
}
