package security

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoVerificationKey = errors.New("no JWT verification key configured")
	ErrMissingSubject    = errors.New("token carries no user id")
)

// UserClaims accepte les trois façons connues de porter l'id utilisateur :
// "id" (tokens historiques), "user_id" (identity-service) et "sub".
type UserClaims struct {
	LegacyID string `json:"id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *UserClaims) CallerID() string {
	switch {
	case c.UserID != "":
		return c.UserID
	case c.Subject != "":
		return c.Subject
	default:
		return c.LegacyID
	}
}

// JWTVerifier valide les tokens émis ailleurs (on ne signe jamais ici).
type JWTVerifier struct {
	secret    []byte
	publicKey any // *rsa.PublicKey
}

// NewJWTVerifier : secret HMAC (HS256) et/ou clé publique RSA en PEM (RS256). Au moins un des deux.
func NewJWTVerifier(secret []byte, publicKeyPEM []byte) (*JWTVerifier, error) {
	v := &JWTVerifier{}
	if len(secret) > 0 {
		v.secret = secret
	}
	if len(publicKeyPEM) > 0 {
		pubKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		v.publicKey = pubKey
	}
	if v.secret == nil && v.publicKey == nil {
		return nil, ErrNoVerificationKey
	}
	return v, nil
}

// Validate vérifie la signature et l'expiration, puis retourne l'id de l'appelant.
func (v *JWTVerifier) Validate(tokenString string) (string, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	id := claims.CallerID()
	if id == "" {
		return "", ErrMissingSubject
	}
	return id, nil
}

// keyFunc choisit la clé selon l'algorithme annoncé ; tout algo non configuré est refusé
// (y compris "none").
func (v *JWTVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret != nil {
			return v.secret, nil
		}
	case *jwt.SigningMethodRSA:
		if v.publicKey != nil {
			return v.publicKey, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
}
