package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs and validates bearer tokens with a server-held symmetric key.
// The key and lifetime come from configuration; there is no package state.
type Issuer struct {
	secret []byte
	expiry time.Duration
}

// NewIssuer creates an Issuer from the configured secret and token lifetime
func NewIssuer(secret string, expiry time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), expiry: expiry}
}

// Issue produces a signed HS256 token embedding the user id as subject
func (i *Issuer) Issue(userID, name string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"iat":  now.Unix(),
		"exp":  now.Add(i.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validate reports whether the token is well-formed, correctly signed and
// unexpired. It never returns an error: structurally invalid, mis-signed or
// expired tokens all read as "unauthenticated".
func (i *Issuer) Validate(tokenString string) bool {
	return i.ExtractUserID(tokenString) != ""
}

// ExtractUserID returns the embedded user id, or "" for any token that
// fails validation. Parsing and signature errors are swallowed so callers
// treat them as an absent credential, not a failure.
func (i *Issuer) ExtractUserID(tokenString string) string {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return ""
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
