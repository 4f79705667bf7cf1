package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"charity/internal/auth"
	"charity/internal/db"
	"charity/internal/models"
	"charity/internal/store"
	"charity/internal/validator"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type AuthUserStore interface {
	Create(ctx context.Context, tx store.Getter, input store.NewUser) (int64, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID int64) (models.User, error)
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	UpdateProfile(ctx context.Context, tx store.Execer, userID int64, input store.ProfileUpdate) (int64, error)
	UpdatePasswordByEmail(ctx context.Context, tx store.Execer, email, passwordHash string) (int64, error)
}

type AccountCreator interface {
	Create(ctx context.Context, tx store.Execer, userID int64) error
}

type ResetStore interface {
	Create(ctx context.Context, email, token string, expiresAt time.Time) error
	GetForUpdate(ctx context.Context, tx store.Getter, token string) (models.PasswordReset, error)
	MarkUsed(ctx context.Context, tx store.Execer, id int64) error
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, token string, expiresAt time.Time) error
}

type AuthConfig struct {
	JWTSecret          string
	TokenTTL           time.Duration
	ResetTokenTTL      time.Duration
	MaxAttachmentBytes int
	// ExposeResetToken returns the reset token to the caller. Never set in
	// production.
	ExposeResetToken bool
}

type AuthService struct {
	txRunner   db.TxRunner
	users      AuthUserStore
	accounts   AccountCreator
	resets     ResetStore
	auditStore AuditStore
	mailer     Mailer
	cfg        AuthConfig
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewAuthService(txRunner db.TxRunner, users AuthUserStore, accounts AccountCreator, resets ResetStore, auditStore AuditStore, mailer Mailer, cfg AuthConfig, logger logrus.FieldLogger) *AuthService {
	return &AuthService{
		txRunner:   txRunner,
		users:      users,
		accounts:   accounts,
		resets:     resets,
		auditStore: auditStore,
		mailer:     mailer,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Session is a signed token together with the user it was issued for.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *AuthService) issue(user models.User) (Session, error) {
	token, err := auth.GenerateToken(s.cfg.JWTSecret, user.ID, string(user.Role), s.cfg.TokenTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

// Register creates a user with the plain user role and an empty savings
// account in one transaction.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (Session, error) {
	email = validator.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateCredentials(email, password, name); err != nil {
		return Session{}, err
	}
	user, err := s.createUser(ctx, store.NewUser{Email: email, Name: name, Role: models.RoleUser}, password, "register")
	if err != nil {
		return Session{}, err
	}
	s.logger.WithField("user_id", user.ID).Info("user registered")
	return s.issue(user)
}

func (s *AuthService) createUser(ctx context.Context, input store.NewUser, password, action string) (models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	input.PasswordHash = hash
	var id int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.users.Create(ctx, tx, input)
		if err != nil {
			return err
		}
		if err := s.accounts.Create(ctx, tx, id); err != nil {
			return err
		}
		details, _ := json.Marshal(map[string]string{"email": input.Email, "role": string(input.Role)})
		return s.auditStore.Log(ctx, tx, &id, action, "user", strconv.FormatInt(id, 10), string(details))
	})
	if db.IsUniqueViolation(err, "") {
		return models.User{}, ErrDuplicateEmail
	}
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:        id,
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		BranchID:  input.BranchID,
		CreatedAt: s.now(),
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.GetByEmail(ctx, validator.NormalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrUnauthorized
	}
	if err != nil {
		return Session{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return Session{}, ErrUnauthorized
	}
	if err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.auditStore.Log(ctx, tx, &user.ID, "login", "user", strconv.FormatInt(user.ID, 10), "{}")
	}); err != nil {
		return Session{}, err
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

type ProfileRequest struct {
	Name            string            `json:"name" validate:"required,max=100"`
	Email           string            `json:"email" validate:"required,max=254"`
	Phone           *string           `json:"phone" validate:"omitempty,max=30"`
	Bio             *string           `json:"bio" validate:"omitempty,max=2000"`
	Photo           models.Attachment `json:"photo"`
	CurrentPassword string            `json:"current_password" validate:"required"`
	NewPassword     *string           `json:"new_password"`
}

// UpdateProfile requires the caller's current password before any change is
// applied.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req ProfileRequest) (models.User, error) {
	req.Email = validator.NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := fromValidator(validator.Struct(req)); err != nil {
		return models.User{}, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, notFound(err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return models.User{}, ErrUnauthorized
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		return models.User{}, invalid("email", "%v", err)
	}
	if err := validator.ValidateName(req.Name); err != nil {
		return models.User{}, invalid("name", "%v", err)
	}
	if req.Photo.Size() > s.cfg.MaxAttachmentBytes {
		return models.User{}, invalid("photo", "photo must be at most %d bytes", s.cfg.MaxAttachmentBytes)
	}
	taken, err := s.users.EmailTaken(ctx, req.Email, userID)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrDuplicateEmail
	}
	update := store.ProfileUpdate{
		Email: req.Email,
		Name:  req.Name,
		Phone: req.Phone,
		Bio:   req.Bio,
		Photo: req.Photo,
	}
	if req.NewPassword != nil && *req.NewPassword != "" {
		if err := validator.ValidatePassword(*req.NewPassword); err != nil {
			return models.User{}, invalid("new_password", "%v", err)
		}
		hash, err := auth.HashPassword(*req.NewPassword)
		if err != nil {
			return models.User{}, err
		}
		update.PasswordHash = &hash
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.users.UpdateProfile(ctx, tx, userID, update)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		details, _ := json.Marshal(map[string]any{"email": req.Email, "password_changed": update.PasswordHash != nil})
		return s.auditStore.Log(ctx, tx, &userID, "update_profile", "user", strconv.FormatInt(userID, 10), string(details))
	})
	if db.IsUniqueViolation(err, "") {
		return models.User{}, ErrDuplicateEmail
	}
	if err != nil {
		return models.User{}, err
	}
	user.Email, user.Name, user.Phone, user.Bio, user.Photo = req.Email, req.Name, req.Phone, req.Bio, req.Photo
	return user, nil
}

// ResetTicket is the result of a password reset request. Token is only
// filled when the service is configured to expose it.
type ResetTicket struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// ForgotPassword issues a reset token for a known email. Unknown addresses
// get the same empty ticket so callers cannot probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (ResetTicket, error) {
	email = validator.NormalizeEmail(email)
	if err := validator.ValidateEmail(email); err != nil {
		return ResetTicket{}, invalid("email", "%v", err)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("password reset requested for unknown email")
		return ResetTicket{}, nil
	}
	if err != nil {
		return ResetTicket{}, err
	}
	token, err := auth.NewResetToken()
	if err != nil {
		return ResetTicket{}, err
	}
	expiresAt := s.now().Add(s.cfg.ResetTokenTTL)
	if err := s.resets.Create(ctx, user.Email, token, expiresAt); err != nil {
		return ResetTicket{}, err
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, token, expiresAt); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("password reset mail not sent")
	}
	if !s.cfg.ExposeResetToken {
		return ResetTicket{}, nil
	}
	return ResetTicket{Token: token, ExpiresAt: expiresAt}, nil
}

// ResetPassword consumes a reset token. The token row stays locked until the
// new hash is written and the token is marked used.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalid("token", "token is required")
	}
	if err := validator.ValidatePassword(newPassword); err != nil {
		return invalid("password", "%v", err)
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		reset, err := s.resets.GetForUpdate(ctx, tx, token)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidToken
		}
		if err != nil {
			return err
		}
		if reset.UsedAt != nil {
			return ErrInvalidToken
		}
		if !s.now().Before(reset.ExpiresAt) {
			return ErrTokenExpired
		}
		rows, err := s.users.UpdatePasswordByEmail(ctx, tx, reset.Email, hash)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInvalidToken
		}
		if err := s.resets.MarkUsed(ctx, tx, reset.ID); err != nil {
			return err
		}
		details, _ := json.Marshal(map[string]string{"email": reset.Email})
		return s.auditStore.Log(ctx, tx, nil, "reset_password", "user", reset.Email, string(details))
	})
}

// SeedAdmin creates the master admin account when no user holds the email.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = validator.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	user, err := s.createUser(ctx, store.NewUser{Email: email, Name: strings.TrimSpace(name), Role: models.RoleMasterAdmin}, password, "seed_admin")
	if errors.Is(err, ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.WithField("user_id", user.ID).Info("master admin seeded")
	return true, nil
}
