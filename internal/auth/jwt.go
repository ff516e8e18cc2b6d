package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const issuer = "salesdash"

// Claims represents JWT claims
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// JWTManager checks the dashboard credentials and issues session tokens
type JWTManager struct {
	username   string
	password   string
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(username, password, secret string, expiration time.Duration) *JWTManager {
	return &JWTManager{
		username:   username,
		password:   password,
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// Expiration is how long an issued token stays valid.
func (m *JWTManager) Expiration() time.Duration {
	return m.expiration
}

// Authenticate compares the supplied credentials in constant time.
func (m *JWTManager) Authenticate(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) == 1
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken generates a new JWT token for username
func (m *JWTManager) GenerateToken(username string) (string, error) {
	now := m.now()
	claims := &Claims{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken validates a JWT token and returns the claims
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
