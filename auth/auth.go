package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the decoded identity carried by an API token.
type Claims struct {
	UserID uint
	Email  string
	Role   string
}

// Auth issues and verifies HMAC-signed API tokens and password hashes.
type Auth struct {
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// New constructs an Auth helper. ttlHours <= 0 falls back to 72h and an
// out-of-range bcrypt cost falls back to the library default.
func New(secret string, ttlHours, bcryptCost int) (*Auth, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth secret must not be empty")
	}
	if ttlHours <= 0 {
		ttlHours = 72
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Auth{
		secret:     []byte(secret),
		tokenTTL:   time.Duration(ttlHours) * time.Hour,
		bcryptCost: bcryptCost,
	}, nil
}

// HashPassword returns the bcrypt hash for a plaintext password.
func (a *Auth) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), a.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against its stored hash.
func (a *Auth) VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return errors.New("invalid email or password")
	}
	return nil
}

// GenerateToken signs an HS256 token for the given identity.
func (a *Auth) GenerateToken(userID uint, email, role string) (string, error) {
	if userID == 0 || email == "" {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(a.tokenTTL).Unix(),
	})

	tokenStr, err := token.SignedString(a.secret)
	if err != nil {
		return "", errors.New("unable to sign the token")
	}
	return tokenStr, nil
}

// VerifyToken parses and validates a token string. Both "Bearer <token>"
// and a bare token are accepted.
func (a *Auth) VerifyToken(tokenString string) (Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Claims{}, errors.New("missing token")
	}

	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		parts := strings.SplitN(tokenString, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return Claims{}, errors.New("invalid token format")
		}
		tokenString = strings.TrimSpace(parts[1])
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return Claims{}, errors.New("token parse error")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, errors.New("invalid token claims")
	}

	expAny, ok := claims["exp"]
	if !ok {
		return Claims{}, errors.New("missing expiry")
	}
	expFloat, ok := expAny.(float64)
	if !ok {
		return Claims{}, errors.New("invalid expiry type")
	}
	if float64(time.Now().Unix()) > expFloat {
		return Claims{}, errors.New("token expired")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Claims{}, errors.New("invalid user_id claim")
	}
	email, ok := claims["email"].(string)
	if !ok {
		return Claims{}, errors.New("invalid email claim")
	}
	role, _ := claims["role"].(string)

	return Claims{
		UserID: uint(userID),
		Email:  email,
		Role:   role,
	}, nil
}
