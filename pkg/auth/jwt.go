package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// Claims represents the JWT claims. Names match the identity provider so
// locally issued tokens look like production ones.
type Claims struct {
	Username         string `json:"custom:feideId"`
	CustomerID       string `json:"custom:customerId,omitempty"`
	ApplicationRoles string `json:"custom:applicationRoles,omitempty"`
	AccessRights     string `json:"custom:accessRights,omitempty"`
	jwt.RegisteredClaims
}

// User converts the claims to an authenticated user
func (c *Claims) User() *User {
	return UserFromClaims(map[string]string{
		ClaimUsername:         c.Username,
		ClaimCustomerID:       c.CustomerID,
		ClaimApplicationRoles: c.ApplicationRoles,
		ClaimAccessRights:     c.AccessRights,
	})
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SecretKey string // HS256 shared secret
	Issuer    string // Expected issuer
}

// JWTValidator validates HS256 tokens for the local server. In Lambda the API
// Gateway authorizer has already validated the token.
type JWTValidator struct {
	secretKey []byte
	issuer    string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.SecretKey == "" {
		return nil, errors.New("secret key required for HS256")
	}
	return &JWTValidator{
		secretKey: []byte(config.SecretKey),
		issuer:    config.Issuer,
	}, nil
}

// ValidateToken validates a JWT token and returns the claims
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	// Remove "Bearer " prefix if present
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidClaims, ClaimUsername)
	}

	return claims, nil
}

// JWTGenerator issues HS256 tokens for local development and tests
type JWTGenerator struct {
	secretKey  []byte
	issuer     string
	expiryTime time.Duration
}

// NewJWTGenerator creates a new JWT generator
func NewJWTGenerator(config JWTConfig, expiryTime time.Duration) (*JWTGenerator, error) {
	if config.SecretKey == "" {
		return nil, errors.New("secret key required for HS256")
	}
	return &JWTGenerator{
		secretKey:  []byte(config.SecretKey),
		issuer:     config.Issuer,
		expiryTime: expiryTime,
	}, nil
}

// GenerateToken generates a signed token for user
func (g *JWTGenerator) GenerateToken(user User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username:         user.Username,
		CustomerID:       user.PublisherID,
		ApplicationRoles: strings.Join(user.Roles, ","),
		AccessRights:     strings.Join(user.AccessRights, ","),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiryTime)),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secretKey)
}
