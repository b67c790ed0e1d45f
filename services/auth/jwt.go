package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"urbane-subscription-api/database"
	"urbane-subscription-api/models"
)

const AccessTokenDuration = 30 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)

type JWTService struct {
	secretKey []byte
	issuer    string
	db        *database.Connection
}

type Claims struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	HasDigitalAccess bool   `json:"has_digital_access"`
	ActivePlanID     string `json:"active_plan_id,omitempty"`
	jwt.RegisteredClaims
}

func NewJWTService(secretKey, issuer string, db *database.Connection) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		db:        db,
	}
}

// Authenticate checks credentials against the store and issues a token
// carrying the user's current entitlements.
func (j *JWTService) Authenticate(email, password string) (*models.AuthResponse, error) {
	user, err := j.db.Authenticate(email, password)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %v", err)
	}

	return j.IssueToken(user)
}

// IssueToken signs a fresh access token for a known user. Called on
// login and after subscription activation, so premium claims are
// correct the moment payment is verified.
func (j *JWTService) IssueToken(user *models.AuthUser) (*models.AuthResponse, error) {
	now := time.Now()
	claims := Claims{
		Email:            user.Email,
		Name:             user.Name,
		HasDigitalAccess: user.HasDigitalAccess,
		ActivePlanID:     user.ActivePlanID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %v", err)
	}

	return &models.AuthResponse{
		Token:     signed,
		ExpiresAt: now.Add(AccessTokenDuration),
		User:      *user,
	}, nil
}

// ValidateToken parses and checks a bearer token, returning the user
// view encoded in it.
func (j *JWTService) ValidateToken(tokenString string) (*models.AuthUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &models.AuthUser{
		Email:            claims.Email,
		Name:             claims.Name,
		HasDigitalAccess: claims.HasDigitalAccess,
		ActivePlanID:     claims.ActivePlanID,
	}, nil
}
