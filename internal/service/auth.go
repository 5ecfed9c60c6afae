package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/yalovets/cleancrm/internal/auth"
	"github.com/yalovets/cleancrm/internal/config"
	"github.com/yalovets/cleancrm/internal/model"
	modelauth "github.com/yalovets/cleancrm/internal/model/auth"
	"github.com/yalovets/cleancrm/internal/repository"
	"github.com/yalovets/cleancrm/pkg/db/transactor"
)

// AuthService implements signup and session management for API accounts
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password, fingerprint string, now time.Time) (*modelauth.Jwt, *model.RefreshToken, error)
	Logout(ctx context.Context, tokenID string) error
	Refresh(ctx context.Context, tokenID, fingerprint string, now time.Time) (*modelauth.Jwt, *model.RefreshToken, error)
}

type authService struct {
	jwtIssuer   *modelauth.JwtIssuer
	rfrTokenCfg *config.RefreshTokenCfg
	transactor  transactor.Transactor
	userRps     repository.UserRepository
	rfrTokenRps repository.RefreshTokenRepository
}

// NewAuthService builds new AuthService
func NewAuthService(
	jwtIssuer *modelauth.JwtIssuer,
	rfrTokenCfg *config.RefreshTokenCfg,
	trx transactor.Transactor,
	userRps repository.UserRepository,
	rfrTokenRps repository.RefreshTokenRepository,
) AuthService {
	return &authService{
		jwtIssuer:   jwtIssuer,
		rfrTokenCfg: rfrTokenCfg,
		transactor:  trx,
		userRps:     userRps,
		rfrTokenRps: rfrTokenRps,
	}
}

func (s *authService) Signup(ctx context.Context, email, password string) (*model.User, error) {
	existing, err := s.userRps.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "email is already taken")
	}

	hash, err := auth.GeneratePasswordHash(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.userRps.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password, fingerprint string, now time.Time) (*modelauth.Jwt, *model.RefreshToken, error) {
	user, err := s.userRps.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	if user == nil {
		return nil, nil, echo.ErrUnauthorized
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, nil, echo.ErrUnauthorized
	}

	jwtToken, err := s.jwtIssuer.Sign(user.ID, now)
	if err != nil {
		return nil, nil, err
	}

	rfrToken := s.issueRefreshToken(user.ID, fingerprint, now)

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		tokens, err := s.rfrTokenRps.FindTokensByUserID(ctx, user.ID)
		if err != nil {
			return err
		}

		// drop all sessions once the cap is exceeded
		if len(tokens) >= s.rfrTokenCfg.MaxCount {
			if err := s.rfrTokenRps.DeleteByUserID(ctx, user.ID); err != nil {
				return err
			}
		}

		return s.rfrTokenRps.Create(ctx, rfrToken)
	})
	if err != nil {
		return nil, nil, err
	}

	return jwtToken, rfrToken, nil
}

func (s *authService) Refresh(ctx context.Context, tokenID, fingerprint string, now time.Time) (*modelauth.Jwt, *model.RefreshToken, error) {
	rfrToken, err := s.rfrTokenRps.FindByID(ctx, tokenID)
	if err != nil {
		return nil, nil, err
	}

	if rfrToken == nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "non-existent refresh token provided")
	}

	if err := rfrToken.Verify(fingerprint, now); err != nil {
		// burn the compromised token before rejecting
		if delErr := s.rfrTokenRps.DeleteByID(ctx, rfrToken.ID); delErr != nil {
			return nil, nil, delErr
		}
		return nil, nil, echo.ErrUnauthorized
	}

	user, err := s.userRps.FindByID(ctx, rfrToken.UserID)
	if err != nil {
		return nil, nil, err
	}

	if user == nil {
		return nil, nil, echo.ErrUnauthorized
	}

	jwtToken, err := s.jwtIssuer.Sign(user.ID, now)
	if err != nil {
		return nil, nil, err
	}

	newRfrToken := s.issueRefreshToken(user.ID, fingerprint, now)

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.rfrTokenRps.DeleteByID(ctx, rfrToken.ID); err != nil {
			return err
		}
		return s.rfrTokenRps.Create(ctx, newRfrToken)
	})
	if err != nil {
		return nil, nil, err
	}

	return jwtToken, newRfrToken, nil
}

func (s *authService) Logout(ctx context.Context, tokenID string) error {
	return s.rfrTokenRps.DeleteByID(ctx, tokenID)
}

func (s *authService) issueRefreshToken(userID, fingerprint string, now time.Time) *model.RefreshToken {
	return &model.RefreshToken{
		ID:          uuid.NewString(),
		UserID:      userID,
		Fingerprint: fingerprint,
		ExpiresIn:   int(s.rfrTokenCfg.TimeToLive.Seconds()),
		CreatedAt:   now,
	}
}
