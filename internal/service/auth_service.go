package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"slotswapper/internal/db"
	apperrors "slotswapper/internal/errors"
	"slotswapper/internal/repository"
)

const tokenTTL = 7 * 24 * time.Hour

// AuthService issues and verifies the opaque identity tokens the engine
// consumes. Callers downstream only ever see the resolved user id.
type AuthService struct {
	store  repository.Store
	secret []byte
}

func NewAuthService(store repository.Store, secret string) *AuthService {
	return &AuthService{store: store, secret: []byte(secret)}
}

func (s *AuthService) Signup(ctx context.Context, name, email, password string) (string, *db.User, error) {
	if name == "" || email == "" || password == "" {
		return "", nil, apperrors.InvalidRequest("please provide name, email and password")
	}

	existing, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if existing != nil {
		return "", nil, apperrors.InvalidRequest("email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &db.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *db.User, error) {
	if email == "" || password == "" {
		return "", nil, apperrors.InvalidRequest("email and password required")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, apperrors.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.Unauthorized("invalid credentials")
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*db.User, error) {
	return s.store.Users().GetByID(ctx, id)
}

func (s *AuthService) SignToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken resolves a bearer token to the user id it was issued for.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Unauthorized("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.Unauthorized("invalid token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", apperrors.Unauthorized("invalid token")
	}
	return sub, nil
}
