package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"gestionstock/internal/config"
	"gestionstock/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService gates the API behind the shop's shared passcode.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	cfg *config.Config
}

func NewAuthService(cfg *config.Config) AuthService {
	return &authService{cfg: cfg}
}

func (s *authService) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := s.checkPasscode(req.Passcode); err != nil {
		return nil, err
	}

	token, err := s.generateToken(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
	}, nil
}

func (s *authService) checkPasscode(passcode string) error {
	if s.cfg.PasscodeHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(s.cfg.PasscodeHash), []byte(passcode)) != nil {
			return ErrInvalidPasscode
		}
		return nil
	}
	if s.cfg.Passcode == "" {
		return errors.New("aucun code d'acces configure")
	}
	if subtle.ConstantTimeCompare([]byte(s.cfg.Passcode), []byte(passcode)) != 1 {
		return ErrInvalidPasscode
	}
	return nil
}

func (s *authService) generateToken(duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   "pos",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
