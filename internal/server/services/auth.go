// Package services contains server-side business logic. This file implements
// AuthService, the account lifecycle: registration with email confirmation,
// confirmation itself, and login issuing session tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
	"github.com/dmitrijs2005/bookmate-auth/internal/cryptox"
	"github.com/dmitrijs2005/bookmate-auth/internal/logging"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/auth"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/config"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/metrics"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/models"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/notify"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/repositories/accounts"
)

// Operation labels used in logs and metrics.
const (
	opRegister     = "register"
	opConfirmEmail = "confirm_email"
	opLogin        = "login"
)

// dummyPassword is hashed once at construction; logins for unknown emails
// verify against that hash so they cost the same as a wrong password.
const dummyPassword = "bookmate-dummy-password"

// TokenIssuer signs session tokens for a subject.
type TokenIssuer interface {
	Issue(subject string) (*auth.Token, error)
}

// AuthService drives an account through Unregistered, PendingConfirmation and
// Confirmed. It holds no per-request state and is safe for concurrent use.
type AuthService struct {
	accounts        accounts.Repository
	hasher          cryptox.PasswordHasher
	issuer          TokenIssuer
	notifier        notify.Notifier
	confirmationURL string
	callTimeout     time.Duration
	logger          logging.Logger
	metrics         *metrics.Metrics
	dummyHash       string
	newID           func() string
}

// NewAuthService wires the workflow to its gateways. m may be nil.
func NewAuthService(
	repo accounts.Repository,
	hasher cryptox.PasswordHasher,
	issuer TokenIssuer,
	notifier notify.Notifier,
	cfg *config.Config,
	logger logging.Logger,
	m *metrics.Metrics,
) (*AuthService, error) {
	if cfg == nil || cfg.ConfirmationURL == "" {
		return nil, fmt.Errorf("%w: confirmation url", common.ErrConfigurationMissing)
	}
	if repo == nil || hasher == nil || issuer == nil || notifier == nil {
		return nil, errors.New("auth service: nil dependency")
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}

	return &AuthService{
		accounts:        repo,
		hasher:          hasher,
		issuer:          issuer,
		notifier:        notifier,
		confirmationURL: cfg.ConfirmationURL,
		callTimeout:     cfg.CallTimeout,
		logger:          logger.With("module", "auth"),
		metrics:         m,
		dummyHash:       dummyHash,
		newID:           uuid.NewString,
	}, nil
}

type credentials struct {
	Email    string
	Password string
}

// validate checks a registration: the email must be well formed.
func (c credentials) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
}

// validatePresent only requires both fields. A login id that is not an email
// is an unknown account, not malformed input.
func (c credentials) validatePresent() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
}

// Register creates an unconfirmed account and sends the confirmation message.
// A failed send after the account is stored is logged and counted but does
// not fail the registration.
func (s *AuthService) Register(ctx context.Context, email, password string) (acc *models.Account, err error) {
	defer func() { s.record(opRegister, err) }()

	if err := (credentials{Email: email, Password: password}).validate(); err != nil {
		return nil, invalidInput(err)
	}

	_, err = s.findByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, duplicateEmail(email)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, storeError("find account by email", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return nil, oops.Code("AUTH_INVALID_INPUT").Wrap(err)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(fmt.Errorf("%w: %w", common.ErrorInternal, err))
	}

	acc = &models.Account{
		ID:               s.newID(),
		Email:            email,
		PasswordHash:     hash,
		AuthProvider:     models.AuthProviderEmail,
		IsEmailConfirmed: false,
	}
	if err := s.insert(ctx, acc); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, duplicateEmail(email)
		}
		return nil, storeError("insert account", err)
	}

	s.logger.Info(ctx, "account registered", "email", email, "account_id", acc.ID)
	s.sendConfirmation(ctx, acc)

	return acc, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, acc *models.Account) {
	subject, body, err := notify.ConfirmationMessage(s.confirmationURL, acc.Email)
	if err == nil {
		callCtx, cancel := s.callContext(ctx)
		err = s.notifier.Send(callCtx, acc.Email, subject, body)
		cancel()
	}
	if err != nil {
		s.metrics.RecordNotificationFailure()
		s.logger.Warn(ctx, "confirmation email not sent",
			"email", acc.Email, "account_id", acc.ID, "error", err)
	}
}

// ConfirmEmail marks the account confirmed. Confirming twice is not an error.
func (s *AuthService) ConfirmEmail(ctx context.Context, email string) (err error) {
	defer func() { s.record(opConfirmEmail, err) }()

	if err := validation.Validate(email, validation.Required); err != nil {
		return invalidInput(err)
	}

	acc, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return notFound(email, err)
		}
		return storeError("find account by email", err)
	}

	if acc.IsEmailConfirmed {
		return nil
	}

	acc.IsEmailConfirmed = true
	if err := s.update(ctx, acc); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return notFound(email, err)
		}
		return storeError("update account", err)
	}

	s.logger.Info(ctx, "email confirmed", "email", email, "account_id", acc.ID)
	return nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (tok *auth.Token, err error) {
	defer func() { s.record(opLogin, err) }()

	if err := (credentials{Email: email, Password: password}).validatePresent(); err != nil {
		return nil, invalidInput(err)
	}

	acc, lookupErr := s.findByEmail(ctx, email)
	if lookupErr != nil && !errors.Is(lookupErr, common.ErrorNotFound) {
		return nil, storeError("find account by email", lookupErr)
	}

	if acc == nil {
		// Spend the same hashing work as a real verification.
		_, _ = s.hasher.Verify(password, s.dummyHash)
		return nil, invalidCredentials()
	}

	ok, err := s.hasher.Verify(password, acc.PasswordHash)
	if err != nil {
		if errors.Is(err, common.ErrCorruptHash) {
			s.logger.Error(ctx, "stored password hash unreadable", "account_id", acc.ID)
			return nil, oops.Code("AUTH_CORRUPT_HASH").
				With("account_id", acc.ID).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(fmt.Errorf("%w: %w", common.ErrorInternal, err))
	}
	if !ok {
		return nil, invalidCredentials()
	}

	if !acc.IsEmailConfirmed {
		return nil, oops.Code("AUTH_EMAIL_NOT_CONFIRMED").Wrap(common.ErrEmailNotConfirmed)
	}

	if h, ok := s.hasher.(interface{ NeedsRehash(string) bool }); ok && h.NeedsRehash(acc.PasswordHash) {
		s.logger.Info(ctx, "password hash uses a non-primary algorithm", "account_id", acc.ID)
	}

	tok, err = s.issuer.Issue(acc.Email)
	if err != nil {
		return nil, oops.Code("AUTH_TOKEN_ISSUE_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.Info(ctx, "login succeeded", "email", email, "token_id", tok.ID)
	return tok, nil
}

// --- helpers below ---

// callContext bounds one store or notifier call by the configured timeout.
func (s *AuthService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout > 0 {
		return context.WithTimeout(ctx, s.callTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*models.Account, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.accounts.FindByEmail(ctx, email)
}

func (s *AuthService) insert(ctx context.Context, acc *models.Account) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.accounts.Insert(ctx, acc)
}

func (s *AuthService) update(ctx context.Context, acc *models.Account) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.accounts.Update(ctx, acc)
}

func (s *AuthService) record(op string, err error) {
	s.metrics.RecordOperation(op, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, common.ErrInvalidInput):
		return metrics.OutcomeInvalidInput
	case errors.Is(err, common.ErrDuplicateEmail):
		return metrics.OutcomeDuplicateEmail
	case errors.Is(err, common.ErrorNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, common.ErrInvalidCredentials):
		return metrics.OutcomeInvalidCredentials
	case errors.Is(err, common.ErrEmailNotConfirmed):
		return metrics.OutcomeEmailNotConfirmed
	case errors.Is(err, common.ErrTimeout):
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeError
}

func invalidInput(err error) error {
	return oops.Code("AUTH_INVALID_INPUT").Wrap(fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
}

func duplicateEmail(email string) error {
	return oops.Code("AUTH_DUPLICATE_EMAIL").With("email", email).Wrap(common.ErrDuplicateEmail)
}

func notFound(email string, err error) error {
	return oops.Code("AUTH_ACCOUNT_NOT_FOUND").With("email", email).Wrap(err)
}

// invalidCredentials carries no attributes: the error for an unknown email
// must not differ from the one for a wrong password.
func invalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(common.ErrInvalidCredentials)
}

// storeError maps deadline and cancellation to ErrTimeout and anything else
// to ErrorInternal, keeping the cause in the chain.
func storeError(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return oops.Code("AUTH_TIMEOUT").
			With("operation", operation).
			Wrap(fmt.Errorf("%w: %w", common.ErrTimeout, err))
	}
	return oops.Code("AUTH_STORE_FAILED").
		With("operation", operation).
		Wrap(fmt.Errorf("%w: %w", common.ErrorInternal, err))
}
