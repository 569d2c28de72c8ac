package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/layer-3/kana-auth/core"
	"github.com/layer-3/kana-auth/ports"
)

// DefaultAccessTTL is the access token lifetime when none is configured
const DefaultAccessTTL = 15 * time.Minute

// Dependencies are the collaborators an AuthService is built from
type Dependencies struct {
	Accounts   ports.AccountRepository
	Challenges *ChallengeService
	Sessions   *SessionService
	Vault      ports.CredentialVault
	Tokenizer  ports.Tokenizer
	Events     ports.EventPublisher
	Clock      ports.Clock
	Logger     *slog.Logger

	AccessTTL time.Duration
}

// LoginResult is the account and tokens produced by a successful login
type LoginResult struct {
	Account *core.Account
	Tokens  core.TokenPair
}

// AuthService handles authentication business logic
type AuthService struct {
	accounts   ports.AccountRepository
	challenges *ChallengeService
	sessions   *SessionService
	vault      ports.CredentialVault
	tokenizer  ports.Tokenizer
	eventPub   ports.EventPublisher
	clock      ports.Clock
	logger     *slog.Logger
	validate   *validator.Validate

	accessTTL time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(deps Dependencies) *AuthService {
	s := &AuthService{
		accounts:   deps.Accounts,
		challenges: deps.Challenges,
		sessions:   deps.Sessions,
		vault:      deps.Vault,
		tokenizer:  deps.Tokenizer,
		eventPub:   deps.Events,
		clock:      deps.Clock,
		logger:     deps.Logger,
		validate:   newValidator(),
		accessTTL:  deps.AccessTTL,
	}
	if s.clock == nil {
		s.clock = ports.SystemClock
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.accessTTL <= 0 {
		s.accessTTL = DefaultAccessTTL
	}
	return s
}

// AccessTTL returns the lifetime of issued access tokens
func (s *AuthService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL returns the lifetime of issued refresh secrets
func (s *AuthService) RefreshTTL() time.Duration {
	return s.sessions.TTL()
}

// CheckEmail reports whether the email is already registered
func (s *AuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return false, core.NewError(core.CodeInvalidInput, "email_missing", nil)
	}

	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, core.ErrAccountNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up account: %w", err)
	}
}

// Captcha issues a new registration challenge
func (s *AuthService) Captcha(ctx context.Context) (core.IssuedChallenge, error) {
	issued, _, err := s.challenges.Issue(ctx)
	if err != nil {
		return core.IssuedChallenge{}, err
	}
	return issued, nil
}

// Register creates an account. The challenge is consumed before any other
// check can fail, so a challenge never survives a registration attempt.
// No session is issued.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*core.Account, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := checkShape(s.validate, &in); err != nil {
		return nil, err
	}

	solved, err := s.challenges.Consume(ctx, in.CaptchaID, in.CaptchaAnswer)
	if err != nil {
		return nil, err
	}
	if !solved {
		s.logger.InfoContext(ctx, "registration rejected", "reason", "captcha_mismatch")
		return nil, core.NewError(core.CodeInvalidCaptcha, "captcha_mismatch", nil)
	}

	if !PasswordIsStrong(in.Password) {
		return nil, core.NewError(core.CodeWeakPassword, "password_policy", nil)
	}

	taken, err := s.CheckEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, core.NewError(core.CodeEmailTaken, "email_registered", nil)
	}

	hash, err := s.vault.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New().String()
	name := defaultDisplayName(id)
	account := &core.Account{
		ID:           id,
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  &name,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			return nil, core.NewError(core.CodeEmailTaken, "email_registered", err)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

// Login verifies credentials and opens a session
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := checkShape(s.validate, &in); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, in.Email)
	if errors.Is(err, core.ErrAccountNotFound) {
		s.logger.InfoContext(ctx, "login rejected", "reason", "user_not_found")
		return nil, core.NewError(core.CodeUserNotFound, "user_not_found", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !s.vault.Verify(in.Password, account.PasswordHash) {
		s.logger.InfoContext(ctx, "login rejected", "reason", "wrong_password", "account_id", account.ID)
		return nil, core.NewError(core.CodeWrongPassword, "wrong_password", nil)
	}

	tokens, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	if err := s.eventPub.PublishLogin(ctx, account.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish login event", "account_id", account.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "account_id", account.ID)
	return &LoginResult{Account: account, Tokens: tokens}, nil
}

// Refresh rotates the refresh secret and issues a fresh access token.
// A missing, unknown, revoked or expired secret is unauthorized. Storage
// failures are returned uncoded.
func (s *AuthService) Refresh(ctx context.Context, raw string) (core.TokenPair, error) {
	if raw == "" {
		return core.TokenPair{}, unauthorized("refresh_missing", nil)
	}

	newRaw, record, err := s.sessions.Rotate(ctx, raw)
	if err != nil {
		reason := refreshReason(err)
		if reason == "refresh_failed" {
			s.logger.ErrorContext(ctx, "refresh rotation failed", "error", err)
			return core.TokenPair{}, fmt.Errorf("failed to rotate refresh token: %w", err)
		}
		s.logger.InfoContext(ctx, "refresh rejected", "reason", reason)
		return core.TokenPair{}, unauthorized(reason, err)
	}

	account, err := s.accounts.GetByID(ctx, record.AccountID)
	if errors.Is(err, core.ErrAccountNotFound) {
		return core.TokenPair{}, unauthorized("account_missing", err)
	}
	if err != nil {
		return core.TokenPair{}, fmt.Errorf("failed to look up account: %w", err)
	}

	access, accessExp, err := s.signAccess(account)
	if err != nil {
		return core.TokenPair{}, err
	}

	return core.TokenPair{
		AccessToken:   access,
		AccessExpiry:  accessExp,
		RefreshToken:  newRaw,
		RefreshExpiry: record.ExpiresAt,
	}, nil
}

// Logout revokes the presented refresh secret, if any. It always succeeds;
// storage failures are logged.
func (s *AuthService) Logout(ctx context.Context, raw string) {
	if raw == "" {
		return
	}

	record, err := s.sessions.Revoke(ctx, raw)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to revoke refresh token on logout", "error", err)
	}

	var accountID, tokenID string
	if record != nil {
		accountID, tokenID = record.AccountID, record.ID
	}
	if err := s.eventPub.PublishLogout(ctx, accountID, tokenID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish logout event", "account_id", accountID, "error", err)
	}
}

// Me returns the account behind the access token. A missing or invalid token
// and an unknown account all yield (nil, nil).
func (s *AuthService) Me(ctx context.Context, access string) (*core.Account, error) {
	if access == "" {
		return nil, nil
	}

	claims, err := s.tokenizer.AccessTokenToClaims(access)
	if err != nil {
		return nil, nil
	}

	account, err := s.accounts.GetByID(ctx, claims.Subject)
	if errors.Is(err, core.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return account, nil
}

// UpdateProfile changes the display name of the account behind the access token
func (s *AuthService) UpdateProfile(ctx context.Context, access, displayName string) (*core.Account, error) {
	claims, err := s.Authenticate(access)
	if err != nil {
		return nil, err
	}

	name, ok := CleanDisplayName(displayName)
	if !ok {
		return nil, core.NewError(core.CodeInvalidDisplayName, "display_name_policy", nil)
	}

	account, err := s.accounts.UpdateDisplayName(ctx, claims.Subject, name)
	if errors.Is(err, core.ErrAccountNotFound) {
		return nil, unauthorized("account_missing", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update display name: %w", err)
	}

	s.logger.InfoContext(ctx, "display name updated", "account_id", account.ID)
	return account, nil
}

// Authenticate verifies the access token and returns its claims. Any failure
// is an unauthorized error.
func (s *AuthService) Authenticate(access string) (*core.AccessClaims, error) {
	if access == "" {
		return nil, unauthorized("access_missing", nil)
	}

	claims, err := s.tokenizer.AccessTokenToClaims(access)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			return nil, unauthorized("access_expired", err)
		}
		return nil, unauthorized("access_invalid", err)
	}
	return claims, nil
}

func (s *AuthService) issueTokens(ctx context.Context, account *core.Account) (core.TokenPair, error) {
	access, accessExp, err := s.signAccess(account)
	if err != nil {
		return core.TokenPair{}, err
	}

	raw, record, err := s.sessions.Create(ctx, account.ID)
	if err != nil {
		return core.TokenPair{}, err
	}

	return core.TokenPair{
		AccessToken:   access,
		AccessExpiry:  accessExp,
		RefreshToken:  raw,
		RefreshExpiry: record.ExpiresAt,
	}, nil
}

func (s *AuthService) signAccess(account *core.Account) (string, time.Time, error) {
	now := s.clock.Now()
	claims := &core.AccessClaims{
		ID:        uuid.New().String(),
		Subject:   account.ID,
		Email:     account.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.accessTTL),
	}

	token, err := s.tokenizer.ClaimsToAccessToken(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create access token: %w", err)
	}
	return token, claims.ExpiresAt, nil
}

func unauthorized(reason string, err error) error {
	return core.NewError(core.CodeUnauthorized, reason, err)
}

func refreshReason(err error) string {
	switch {
	case errors.Is(err, core.ErrTokenNotFound):
		return "refresh_unknown"
	case errors.Is(err, core.ErrTokenRevoked):
		return "refresh_revoked"
	case errors.Is(err, core.ErrTokenExpired):
		return "refresh_expired"
	default:
		return "refresh_failed"
	}
}
