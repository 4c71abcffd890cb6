package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/tokend/internal/apperrors"
	"github.com/nkiryanov/tokend/internal/models"
	"github.com/nkiryanov/tokend/internal/repository"
)

type Config struct {
	// Hasher to use during user registration or login
	// Default is BcryptHasher
	Hasher PasswordHasher
}

// Auth service: the state machine over a token pair
// Register, login (issue pair), refresh (reissue access), logout (revoke
// one), logout-all (revoke every token of the user)
type AuthService struct {
	codec  *TokenCodec
	hasher PasswordHasher

	userRepo    repository.UserRepo
	refreshRepo repository.RefreshTokenRepo

	// Hash compared on login when the email is unknown, so both failure
	// paths do one bcrypt compare and stay indistinguishable
	dummyHash string
}

func NewService(cfg Config, codec *TokenCodec, storage repository.Storage) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if codec == nil || storage == nil {
		return nil, errors.New("codec and storage must not be nil")
	}

	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("hasher is not usable. Err: %w", err)
	}

	return &AuthService{
		codec:       codec,
		hasher:      hasher,
		userRepo:    storage.User(),
		refreshRepo: storage.Refresh(),
		dummyHash:   dummyHash,
	}, nil
}

// Register new user
// Duplicate email surfaces as apperrors.ErrUserAlreadyExists: the db unique
// constraint is the guard, so the concurrent-registration race is handled
// even without a pre-check
func (s *AuthService) Register(ctx context.Context, email string, password string) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.userRepo.CreateUser(ctx, email, hash)
}

// Login user and issue a token pair
// Unknown email and wrong password return the same error
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		return pair, apperrors.ErrInvalidCredentials
	case err != nil:
		return pair, fmt.Errorf("error while looking up user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return pair, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return pair, apperrors.ErrAccountDisabled
	}

	return s.issuePair(ctx, user)
}

// Refresh reissues the access token for a valid refresh token
// The same refresh token is returned: rotation on use would narrow the
// replay window, but reissue keeps the documented behavior
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	claims, err := s.codec.Parse(refresh)
	expired := errors.Is(err, apperrors.ErrRefreshTokenExpired)
	if err != nil && !expired {
		return pair, err
	}
	if !claims.IsRefresh() {
		return pair, fmt.Errorf("%w: not a refresh token", apperrors.ErrTokenInvalid)
	}

	// The ledger row is the authority: no row means the token was revoked
	stored, err := s.refreshRepo.Get(ctx, refresh)
	if err != nil {
		return pair, err
	}

	now := time.Now().UTC()
	if expired || now.After(stored.ExpiresAt) {
		// Lazy cleanup: purge the row on the access that found it expired
		if err := s.refreshRepo.Revoke(ctx, refresh); err != nil && !errors.Is(err, apperrors.ErrRefreshTokenNotFound) {
			return pair, err
		}
		return pair, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenExpired)
	}

	user, err := s.userRepo.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		return pair, err
	}
	if !user.IsActive {
		return pair, apperrors.ErrAccountDisabled
	}

	access, err := s.codec.IssueAccess(user.Email, now)
	if err != nil {
		return pair, err
	}

	return models.TokenPair{
		Access:  access,
		Refresh: models.IssuedToken{Value: refresh, ExpiresAt: stored.ExpiresAt},
	}, nil
}

// Logout revokes a single refresh token
// Second logout with the same token fails with ErrRefreshTokenNotFound, so
// callers can tell an already-closed session from a live one
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	return s.refreshRepo.Revoke(ctx, refresh)
}

// LogoutAll revokes every refresh token of the user
// Zero revoked tokens is not an error
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.refreshRepo.RevokeAllForUser(ctx, userID)
}

// Authenticate resolves a bearer access token to the user
func (s *AuthService) Authenticate(ctx context.Context, access string) (models.User, error) {
	claims, err := s.codec.Parse(access)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}
	if claims.IsRefresh() {
		return models.User{}, fmt.Errorf("%w: refresh token used as access", apperrors.ErrTokenInvalid)
	}

	user, err := s.userRepo.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, apperrors.ErrAccountDisabled
	}

	return user, nil
}

func (s *AuthService) issuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	var pair models.TokenPair
	now := time.Now().UTC()

	access, err := s.codec.IssueAccess(user.Email, now)
	if err != nil {
		return pair, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	refresh, err := s.codec.IssueRefresh(user.Email, now)
	if err != nil {
		return pair, fmt.Errorf("error while issuing refresh token. Err: %w", err)
	}

	// Issuing is pure, only this insert touches the db
	// An insert failure must not leak a usable pair to the caller
	_, err = s.refreshRepo.Save(ctx, models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     refresh.Value,
		CreatedAt: now.Truncate(time.Second),
		ExpiresAt: refresh.ExpiresAt,
	})
	if err != nil {
		return pair, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
