package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"internship_backend/internal/feature/auth/domain"
	"internship_backend/internal/feature/auth/domain/entity"
	"internship_backend/internal/platform/audit"
	"internship_backend/internal/platform/logging"
	"internship_backend/internal/shared/role"
	"internship_backend/internal/shared/securetoken"
)

// dummyHash はユーザーが存在しない場合にもbcrypt比較を行うためのハッシュ。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// CreateAccount stores the user and, for Company and Admin accounts, the
	// organization row in one transaction. Returns ErrEmailAlreadyExists on a
	// duplicate email.
	CreateAccount(ctx context.Context, user *entity.User, org entity.Organization) error

	// FindByEmail returns ErrUserNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns ErrUserNotFound when no user has the ID.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByVerificationTokenHash returns ErrUserNotFound for unknown hashes.
	FindByVerificationTokenHash(ctx context.Context, hash string) (*entity.User, error)

	SetVerificationToken(ctx context.Context, userID uint, hash string, expiresAt time.Time) error

	// MarkEmailVerified sets the flag and clears the pending token.
	MarkEmailVerified(ctx context.Context, userID uint) error

	// RecordFailedLogin atomically increments the failure counter. When the
	// counter reaches maxAttempts the account is locked until lockUntil, the
	// counter is reset and locked is true.
	RecordFailedLogin(ctx context.Context, userID uint, maxAttempts int, lockUntil time.Time) (locked bool, err error)

	// ResetLoginFailures clears the counter and any lock.
	ResetLoginFailures(ctx context.Context, userID uint) error
}

// TokenGenerator はアクセストークン生成のインターフェースを定義します。
type TokenGenerator interface {
	GenerateToken(userID uint, email string, r role.Role) (string, error)
	TTL() time.Duration
}

// VerificationMailer delivers the verification link for a raw token.
type VerificationMailer interface {
	SendVerification(ctx context.Context, user *entity.User, rawToken string) error
}

// AuditRecorder persists security events.
type AuditRecorder interface {
	Record(ctx context.Context, e audit.Event) error
}

// Observer receives auth counters (Prometheus in production).
type Observer interface {
	ObserveLogin(outcome string)
	ObserveRegistration(role string)
}

// IdentityInvalidator drops cached identities after a user changes.
type IdentityInvalidator interface {
	Invalidate(ctx context.Context, userID uint) error
}

// Options are the account policy knobs.
type Options struct {
	MaxFailedLogins    int
	LockoutDuration    time.Duration
	VerificationTTL    time.Duration
	RefreshTTL         time.Duration
	MaxSessionsPerUser int
}

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         role.Role
	Organization entity.Organization
}

// ClientInfo describes the client opening a session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// TokenPair is returned by Login and Refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Option configures optional collaborators of the usecase.
type Option func(*authUsecase)

// WithAudit records lockouts, verifications and registrations.
func WithAudit(r AuditRecorder) Option {
	return func(u *authUsecase) { u.audit = r }
}

// WithObserver reports login and registration counters.
func WithObserver(o Observer) Option {
	return func(u *authUsecase) { u.observer = o }
}

// WithIdentityInvalidator evicts cached identities when a user changes.
func WithIdentityInvalidator(i IdentityInvalidator) Option {
	return func(u *authUsecase) { u.identities = i }
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenGenerator
	mailer   VerificationMailer
	opts     Options

	audit      AuditRecorder
	observer   Observer
	identities IdentityInvalidator

	now  func() time.Time
	cost int
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(
	users UserRepository,
	sessions SessionRepository,
	tokens TokenGenerator,
	mailer VerificationMailer,
	opts Options,
	options ...Option,
) *authUsecase {
	u := &authUsecase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		mailer:   mailer,
		opts:     opts,
		now:      time.Now,
		cost:     bcrypt.DefaultCost,
	}
	for _, o := range options {
		o(u)
	}
	return u
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録し、確認メールを送信します。
// The mail is best effort: a delivery failure is logged and the user can
// ask for a new link.
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("register: unknown role %d", in.Role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	raw, err := securetoken.Generate(securetoken.DefaultBytes)
	if err != nil {
		return nil, err
	}
	expires := u.now().Add(u.opts.VerificationTTL)

	user := &entity.User{
		Name:                       strings.TrimSpace(in.Name),
		Email:                      normalizeEmail(in.Email),
		PasswordHash:               string(hashed),
		Role:                       in.Role,
		VerificationTokenHash:      securetoken.Hash(raw),
		VerificationTokenExpiresAt: &expires,
	}
	if err := u.users.CreateAccount(ctx, user, in.Organization); err != nil {
		return nil, err
	}

	if u.observer != nil {
		u.observer.ObserveRegistration(user.Role.String())
	}
	u.record(ctx, audit.Event{
		Type:    audit.EventUserCreated,
		Actor:   actor(user.ID),
		Target:  user.Email,
		Outcome: audit.OutcomeSuccess,
		Detail:  "role=" + user.Role.String(),
	})

	if err := u.mailer.SendVerification(ctx, user, raw); err != nil {
		slog.ErrorContext(ctx, "failed to send verification email",
			"error", err, "user_id", user.ID, "email", logging.MaskEmail(user.Email))
	}
	return user, nil
}

// Login はユーザーを認証し、成功時にアクセストークンとリフレッシュトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
// Locked accounts get a *domain.LockedError without touching the counter.
func (u *authUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (*TokenPair, error) {
	email = normalizeEmail(email)
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	passwordHash := dummyHash
	if user != nil {
		passwordHash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if user == nil {
		u.observeLogin("unknown_user")
		return nil, domain.ErrInvalidCredentials
	}

	now := u.now()
	if user.IsLocked(now) {
		u.observeLogin("locked")
		return nil, &domain.LockedError{Until: *user.LockoutUntil}
	}

	if compareErr != nil {
		return nil, u.loginFailed(ctx, user, now)
	}

	if user.FailedLoginAttempts > 0 || user.LockoutUntil != nil {
		if err := u.users.ResetLoginFailures(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("reset login failures: %w", err)
		}
	}

	if !user.EmailVerified {
		u.observeLogin("unverified")
		return nil, domain.ErrEmailNotVerified
	}

	pair, err := u.issue(ctx, user, client)
	if err != nil {
		return nil, err
	}
	u.observeLogin("success")
	u.record(ctx, audit.Event{
		Type:    audit.EventLoginSuccess,
		Actor:   actor(user.ID),
		Target:  user.Email,
		Outcome: audit.OutcomeSuccess,
		Detail:  "ip=" + logging.MaskIP(client.IPAddress),
	})
	return pair, nil
}

func (u *authUsecase) loginFailed(ctx context.Context, user *entity.User, now time.Time) error {
	until := now.Add(u.opts.LockoutDuration)
	locked, err := u.users.RecordFailedLogin(ctx, user.ID, u.opts.MaxFailedLogins, until)
	if err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}
	if !locked {
		u.observeLogin("invalid_password")
		u.record(ctx, audit.Event{
			Type:    audit.EventLoginFailure,
			Actor:   actor(user.ID),
			Target:  user.Email,
			Outcome: audit.OutcomeFailure,
		})
		return domain.ErrInvalidCredentials
	}

	u.observeLogin("locked")
	u.record(ctx, audit.Event{
		Type:    audit.EventLockout,
		Actor:   actor(user.ID),
		Target:  user.Email,
		Outcome: audit.OutcomeFailure,
		Detail:  fmt.Sprintf("locked until %s after %d failed attempts", until.UTC().Format(time.RFC3339), u.opts.MaxFailedLogins),
	})
	if err := u.invalidate(ctx, user.ID); err != nil {
		slog.WarnContext(ctx, "failed to invalidate identity", "error", err, "user_id", user.ID)
	}
	return &domain.LockedError{Until: until}
}

// VerifyEmail consumes a raw verification token.
func (u *authUsecase) VerifyEmail(ctx context.Context, rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ErrInvalidVerificationToken
	}
	user, err := u.users.FindByVerificationTokenHash(ctx, securetoken.Hash(rawToken))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidVerificationToken
		}
		return err
	}
	if user.VerificationExpired(u.now()) {
		return ErrVerificationTokenExpired
	}
	if err := u.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	if err := u.invalidate(ctx, user.ID); err != nil {
		slog.WarnContext(ctx, "failed to invalidate identity", "error", err, "user_id", user.ID)
	}
	u.record(ctx, audit.Event{
		Type:    audit.EventEmailVerified,
		Actor:   actor(user.ID),
		Target:  user.Email,
		Outcome: audit.OutcomeSuccess,
	})
	return nil
}

// ResendVerification issues a fresh link. Unknown or already verified
// addresses succeed silently so the endpoint cannot be used to probe accounts.
func (u *authUsecase) ResendVerification(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			slog.InfoContext(ctx, "verification resend for unknown email", "email", logging.MaskEmail(email))
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}

	raw, err := securetoken.Generate(securetoken.DefaultBytes)
	if err != nil {
		return err
	}
	if err := u.users.SetVerificationToken(ctx, user.ID, securetoken.Hash(raw), u.now().Add(u.opts.VerificationTTL)); err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	return u.mailer.SendVerification(ctx, user, raw)
}

// Refresh rotates a refresh token: the presented session is revoked and a
// new pair is issued.
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	id := securetoken.Hash(refreshToken)
	session, err := u.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	now := u.now()
	if session.IsRevoked() {
		return nil, ErrSessionRevoked
	}
	if session.IsExpired(now) {
		return nil, ErrSessionExpired
	}

	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if user.IsLocked(now) {
		return nil, &domain.LockedError{Until: *user.LockoutUntil}
	}

	if err := u.sessions.Revoke(ctx, id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			// 同じトークンでの同時リフレッシュ
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("revoke session: %w", err)
	}
	return u.issue(ctx, user, client)
}

// Logout revokes the session of refreshToken. Unknown tokens are ignored.
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := u.sessions.Revoke(ctx, securetoken.Hash(refreshToken))
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Me returns the current user.
func (u *authUsecase) Me(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

func (u *authUsecase) issue(ctx context.Context, user *entity.User, client ClientInfo) (*TokenPair, error) {
	access, err := u.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	raw, err := securetoken.Generate(securetoken.DefaultBytes)
	if err != nil {
		return nil, err
	}

	now := u.now()
	if u.opts.MaxSessionsPerUser > 0 {
		count, err := u.sessions.CountByUserID(ctx, user.ID, now)
		if err != nil {
			return nil, fmt.Errorf("count sessions: %w", err)
		}
		for ; count >= int64(u.opts.MaxSessionsPerUser); count-- {
			if err := u.sessions.DeleteOldestByUserID(ctx, user.ID, now); err != nil {
				return nil, fmt.Errorf("delete oldest session: %w", err)
			}
		}
	}

	session := &entity.Session{
		ID:        securetoken.Hash(raw),
		UserID:    user.ID,
		UserAgent: truncate(client.UserAgent, 512),
		IPAddress: truncate(client.IPAddress, 45),
		CreatedAt: now,
		ExpiresAt: now.Add(u.opts.RefreshTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    u.tokens.TTL(),
	}, nil
}

func (u *authUsecase) observeLogin(outcome string) {
	if u.observer != nil {
		u.observer.ObserveLogin(outcome)
	}
}

func (u *authUsecase) invalidate(ctx context.Context, userID uint) error {
	if u.identities == nil {
		return nil
	}
	return u.identities.Invalidate(ctx, userID)
}

// record は監査イベントを書き込む。失敗してもリクエストは失敗させない。
func (u *authUsecase) record(ctx context.Context, e audit.Event) {
	if u.audit == nil {
		return
	}
	if err := u.audit.Record(ctx, e); err != nil {
		slog.ErrorContext(ctx, "failed to record audit event", "error", err, "type", e.Type)
	}
}

func actor(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
