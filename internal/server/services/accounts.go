// Package services contains server-side business logic. AccountService runs
// the account verification state machine (register, verify, resend, login),
// resolves bearer tokens to accounts and serves the owner-facing account
// operations.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/verikeep/internal/common"
	"github.com/dmitrijs2005/verikeep/internal/logging"
	"github.com/dmitrijs2005/verikeep/internal/server/auth"
	"github.com/dmitrijs2005/verikeep/internal/server/config"
	"github.com/dmitrijs2005/verikeep/internal/server/models"
	"github.com/dmitrijs2005/verikeep/internal/server/notify"
	"github.com/dmitrijs2005/verikeep/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/verikeep/internal/server/repositories/repomanager"
)

// errRegisterRace marks an insert that lost to a concurrent Register.
var errRegisterRace = errors.New("account inserted concurrently")

// TokenManager mints and validates bearer tokens.
type TokenManager interface {
	Issue(accountID string, verified bool, role string) (string, error)
	Validate(token string) (*auth.Claims, error)
}

// RegisterResult reports the outcome of Register. Created is false when the
// call re-issued a code for an existing pending account.
type RegisterResult struct {
	Email     string
	EmailSent bool
	Created   bool
}

type ResendResult struct {
	Email     string
	EmailSent bool
}

// AuthResult is returned by VerifyCode and Login.
type AuthResult struct {
	Token   string             `json:"token"`
	Account models.AccountView `json:"account"`
}

type Dashboard struct {
	Account models.AccountView `json:"account"`
	Stats   models.Stats       `json:"stats"`
}

type AccountService struct {
	repomanager       repomanager.RepositoryManager
	tokens            TokenManager
	hasher            auth.Hasher
	codes             auth.CodeGenerator
	notifier          notify.Notifier
	logger            logging.Logger
	now               func() time.Time
	codeValidity      time.Duration
	notifyTimeout     time.Duration
	minPasswordLength int
	dummyHash         string
}

type Option func(*AccountService)

// WithClock overrides the time source for code expiry and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AccountService) { s.now = now }
}

func WithTokenManager(tm TokenManager) Option {
	return func(s *AccountService) { s.tokens = tm }
}

func WithHasher(h auth.Hasher) Option {
	return func(s *AccountService) { s.hasher = h }
}

func WithCodeGenerator(g auth.CodeGenerator) Option {
	return func(s *AccountService) { s.codes = g }
}

// NewAccountService wires the service from configuration. Collaborators not
// supplied through options are built from cfg.
func NewAccountService(m repomanager.RepositoryManager, n notify.Notifier, logger logging.Logger, cfg *config.Config, opts ...Option) (*AccountService, error) {
	s := &AccountService{
		repomanager:       m,
		notifier:          n,
		logger:            logger.With("module", "account_service"),
		now:               time.Now,
		codeValidity:      cfg.CodeValidityDuration,
		notifyTimeout:     cfg.NotifyTimeout,
		minPasswordLength: cfg.MinPasswordLength,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.notifyTimeout <= 0 {
		s.notifyTimeout = 10 * time.Second
	}
	if s.tokens == nil {
		s.tokens = auth.NewTokenManager([]byte(cfg.SecretKey), cfg.TokenValidityDuration, auth.WithTokenClock(s.now))
	}
	if s.hasher == nil {
		s.hasher = auth.NewBcryptHasher(cfg.BcryptCost)
	}
	if s.codes == nil {
		s.codes = auth.NewDigitCodeGenerator(cfg.CodeLength)
	}

	// Unknown emails are checked against this hash so that login takes the
	// same time whether or not the account exists.
	seed, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	if s.dummyHash, err = s.hasher.Hash(seed); err != nil {
		return nil, err
	}

	return s, nil
}

// Register creates a pending account and sends it a code. Re-registering a
// pending email re-issues the code; a verified email is a conflict.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.normalize()
	if err := in.validate(s.minPasswordLength); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}
	code, err := s.codes.Generate()
	if err != nil {
		return nil, s.internal(ctx, "generate code", err)
	}

	now := s.now()
	var (
		account *models.Account
		created bool
	)

	register := func(ctx context.Context, repo accounts.Repository) error {
		account, created = nil, false

		existing, err := repo.GetByEmailForUpdate(ctx, in.Email)
		switch {
		case err == nil:
			if existing.IsVerified {
				return common.ErrorAlreadyRegistered
			}
			existing.SetCode(code, now.Add(s.codeValidity))
			existing.UpdatedAt = now
			account = existing
			return repo.Update(ctx, existing)

		case errors.Is(err, common.ErrorNotFound):
			a := &models.Account{
				ID:           uuid.NewString(),
				Name:         in.Name,
				Email:        in.Email,
				PasswordHash: hash,
				Role:         models.RoleUser,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			a.SetCode(code, now.Add(s.codeValidity))
			if _, err := repo.Create(ctx, a); err != nil {
				if errors.Is(err, common.ErrorDuplicateEmail) {
					return errRegisterRace
				}
				return err
			}
			account, created = a, true
			return nil

		default:
			return err
		}
	}

	// A concurrent Register can insert the same email between our lookup and
	// insert. The row exists by then, so one more pass takes the locked path.
	err = s.repomanager.InTx(ctx, register)
	if errors.Is(err, errRegisterRace) {
		err = s.repomanager.InTx(ctx, register)
	}
	if errors.Is(err, errRegisterRace) {
		err = common.ErrorAlreadyRegistered
	}
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}

	return &RegisterResult{
		Email:     account.Email,
		EmailSent: s.deliver(ctx, account, code) == nil,
		Created:   created,
	}, nil
}

// VerifyCode checks code against the pending challenge. On success the
// account becomes verified, the code is cleared and a token is issued, all in
// one transaction. Rejections leave the account untouched.
func (s *AccountService) VerifyCode(ctx context.Context, in VerifyInput) (*AuthResult, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var result *AuthResult
	err := s.repomanager.InTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		a, err := repo.GetByEmailForUpdate(ctx, in.Email)
		if err != nil {
			return err
		}
		if a.IsVerified {
			return common.ErrorAlreadyVerified
		}

		now := s.now()
		if a.CodeExpired(now) {
			return common.ErrorCodeExpired
		}
		if subtle.ConstantTimeCompare([]byte(*a.VerificationCode), []byte(in.Code)) != 1 {
			return common.ErrorInvalidCode
		}

		a.MarkVerified(now)
		if err := repo.Update(ctx, a); err != nil {
			return err
		}

		token, err := s.tokens.Issue(a.ID, true, a.Role)
		if err != nil {
			return err
		}
		result = &AuthResult{Token: token, Account: a.View()}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "verify code", err)
	}

	s.logger.Info(ctx, "email verified", "account_id", result.Account.ID)
	return result, nil
}

// ResendCode replaces the pending code with a fresh one, invalidating the old.
func (s *AccountService) ResendCode(ctx context.Context, email string) (*ResendResult, error) {
	email = common.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	code, err := s.codes.Generate()
	if err != nil {
		return nil, s.internal(ctx, "generate code", err)
	}

	var account *models.Account
	err = s.repomanager.InTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		a, err := repo.GetByEmailForUpdate(ctx, email)
		if err != nil {
			return err
		}
		if a.IsVerified {
			return common.ErrorAlreadyVerified
		}
		now := s.now()
		a.SetCode(code, now.Add(s.codeValidity))
		a.UpdatedAt = now
		account = a
		return repo.Update(ctx, a)
	})
	if err != nil {
		return nil, s.fail(ctx, "resend code", err)
	}

	return &ResendResult{Email: account.Email, EmailSent: s.deliver(ctx, account, code) == nil}, nil
}

// Login checks credentials. Unknown email and wrong password produce the same
// error after the same amount of hashing work.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = common.NormalizeEmail(in.Email)
	if err := in.validate(); err != nil {
		return nil, err
	}

	a, err := s.repomanager.Accounts().GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.Compare(s.dummyHash, in.Password)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, s.internal(ctx, "login lookup", err)
	}

	if err := s.hasher.Compare(a.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrMismatchedHashAndPassword) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, s.internal(ctx, "compare password", err)
	}
	if !a.IsVerified {
		return nil, common.ErrorEmailNotVerified
	}

	var result *AuthResult
	err = s.repomanager.InTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		cur, err := repo.GetByIDForUpdate(ctx, a.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorInvalidCredentials
			}
			return err
		}
		now := s.now()
		cur.LastLoginAt = &now
		cur.UpdatedAt = now
		if err := repo.Update(ctx, cur); err != nil {
			return err
		}

		token, err := s.tokens.Issue(cur.ID, cur.IsVerified, cur.Role)
		if err != nil {
			return err
		}
		result = &AuthResult{Token: token, Account: cur.View()}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}

	return result, nil
}

// Authenticate resolves a bearer token to a verified account.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			s.logger.Info(ctx, "token rejected", "reason", "expired")
			return nil, common.ErrTokenExpired
		}
		s.logger.Warn(ctx, "token rejected", "reason", "invalid", "error", err)
		return nil, common.ErrInvalidToken
	}

	a, err := s.repomanager.Accounts().GetByID(ctx, claims.AccountID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, s.internal(ctx, "resolve token account", err)
	}
	if !a.IsVerified {
		return nil, common.ErrorEmailNotVerified
	}

	return a, nil
}

// UpdateName changes the display name of the account.
func (s *AccountService) UpdateName(ctx context.Context, accountID, name string) (*models.AccountView, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	var view models.AccountView
	err := s.mutate(ctx, "update name", accountID, func(a *models.Account) error {
		a.Name = name
		view = a.View()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AccountService) ChangePassword(ctx context.Context, accountID string, in ChangePasswordInput) error {
	if err := in.validate(s.minPasswordLength); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return s.internal(ctx, "hash password", err)
	}

	return s.mutate(ctx, "change password", accountID, func(a *models.Account) error {
		if err := s.hasher.Compare(a.PasswordHash, in.CurrentPassword); err != nil {
			if errors.Is(err, auth.ErrMismatchedHashAndPassword) {
				return common.ErrorInvalidCredentials
			}
			return err
		}
		a.PasswordHash = hash
		return nil
	})
}

// DeleteAccount removes the account. Tokens issued for it stop resolving.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID string) error {
	err := s.repomanager.InTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		if err := repo.Delete(ctx, accountID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrAccountNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, "delete account", err)
	}
	s.logger.Info(ctx, "account deleted", "account_id", accountID)
	return nil
}

// Stats counts all and verified accounts.
func (s *AccountService) Stats(ctx context.Context) (*models.Stats, error) {
	repo := s.repomanager.Accounts()

	total, err := repo.Count(ctx, models.Filter{})
	if err != nil {
		return nil, s.internal(ctx, "count accounts", err)
	}
	verified := true
	n, err := repo.Count(ctx, models.Filter{Verified: &verified})
	if err != nil {
		return nil, s.internal(ctx, "count verified accounts", err)
	}

	return &models.Stats{TotalAccounts: total, VerifiedAccounts: n}, nil
}

// Dashboard combines the caller's view with population stats.
func (s *AccountService) Dashboard(ctx context.Context, a *models.Account) (*Dashboard, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Account: a.View(), Stats: *stats}, nil
}

// --- helpers below ---

// mutate loads the account under lock, applies fn and writes it back.
func (s *AccountService) mutate(ctx context.Context, op, accountID string, fn func(a *models.Account) error) error {
	err := s.repomanager.InTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		a, err := repo.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrAccountNotFound
			}
			return err
		}
		a.UpdatedAt = s.now()
		if err := fn(a); err != nil {
			return err
		}
		return repo.Update(ctx, a)
	})
	if err != nil {
		return s.fail(ctx, op, err)
	}
	return nil
}

// deliver sends the code after the transaction has committed. A failure is
// logged and returned as ErrorNotificationFailed for the caller to report;
// it never fails the operation.
func (s *AccountService) deliver(ctx context.Context, a *models.Account, code string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.Send(ctx, a.Email, code, a.Name); err != nil {
		err = fmt.Errorf("%w: %w", common.ErrorNotificationFailed, err)
		s.logger.Warn(ctx, "verification code not delivered", "email", a.Email, "error", err)
		return err
	}
	return nil
}

// fail passes domain errors through and hides everything else behind
// common.ErrorInternal.
func (s *AccountService) fail(ctx context.Context, op string, err error) error {
	if common.KindOf(err) != common.KindInternal {
		return err
	}
	return s.internal(ctx, op, err)
}

func (s *AccountService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}
