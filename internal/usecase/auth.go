package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chirphq/chirp/internal/domain"
	"github.com/chirphq/chirp/internal/email"
	"github.com/chirphq/chirp/internal/metrics"
	"github.com/chirphq/chirp/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL = 15 * 24 * time.Hour
	bcryptCost        = 10
)

// AuthUsecase coordinates signup, login, session revocation, and password
// reset over the credential store, the OTP ledger, and the mail sender.
type AuthUsecase struct {
	users      repository.UserRepository
	otps       *OTPUsecase
	mail       email.Sender
	jwtKey     []byte
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewAuthUsecase(users repository.UserRepository, otps *OTPUsecase, mail email.Sender, jwtKey []byte, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:      users,
		otps:       otps,
		mail:       mail,
		jwtKey:     jwtKey,
		sessionTTL: defaultSessionTTL,
		logger:     logger.With("component", "auth_usecase"),
	}
}

type SignupInput struct {
	FullName          string
	Username          string
	Email             string
	Password          string
	VerificationToken string
}

// Signup creates the user once the verification token passes the full check
// and uniqueness holds. The welcome email is fire-and-forget: its failure is
// logged, never surfaced to the caller.
func (u *AuthUsecase) Signup(ctx context.Context, input SignupInput) (*domain.User, string, error) {
	if !u.otps.ValidateVerification(ctx, input.Email, input.VerificationToken) {
		return nil, "", domain.ErrNotVerified
	}

	if _, err := u.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, "", domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", fmt.Errorf("check username: %w", err)
	}
	if _, err := u.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		Username:     input.Username,
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: string(hash),
		SessionEpoch: 0,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := u.issueSession(user.ID, user.SessionEpoch)
	if err != nil {
		return nil, "", err
	}

	if err := u.otps.ConsumeVerification(ctx, user.Email); err != nil {
		u.logger.ErrorContext(ctx, "consume verification", "error", err)
	}

	go u.sendWelcome(context.WithoutCancel(ctx), user)

	metrics.SignupsTotal.Inc()
	return user, token, nil
}

func (u *AuthUsecase) sendWelcome(ctx context.Context, user *domain.User) {
	subject, body := email.Welcome(user.FullName)
	if err := u.mail.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.ErrorContext(ctx, "send welcome email", "error", err)
		metrics.EmailsSentTotal.WithLabelValues("welcome", "error").Inc()
		return
	}
	metrics.EmailsSentTotal.WithLabelValues("welcome", "ok").Inc()
}

// Login checks the password and returns a session token pinned to the user's
// current session epoch.
func (u *AuthUsecase) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, "", domain.ErrPasswordMismatch
	}

	token, err := u.issueSession(user.ID, user.SessionEpoch)
	if err != nil {
		return nil, "", err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return user, token, nil
}

// Logout bumps the session epoch, invalidating every outstanding session
// token for the user at once. There is no per-device revocation in the epoch
// scheme, so logout and logout-everywhere are the same mutation.
func (u *AuthUsecase) Logout(ctx context.Context, userID string) error {
	if _, err := u.users.BumpSessionEpoch(ctx, userID); err != nil {
		return err
	}
	return nil
}

// SendOTP issues a code and mails it. Delivery is synchronous: the caller
// must not report success until the code is on its way.
func (u *AuthUsecase) SendOTP(ctx context.Context, emailAddr string) error {
	code, err := u.otps.Issue(ctx, emailAddr)
	if err != nil {
		return err
	}

	subject, body := email.OTP(code)
	if err := u.mail.Send(ctx, emailAddr, subject, body); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("otp", "error").Inc()
		return fmt.Errorf("send otp email: %w", err)
	}
	metrics.EmailsSentTotal.WithLabelValues("otp", "ok").Inc()
	return nil
}

// SendPasswordResetOTP is SendOTP gated on the email belonging to an
// existing account.
func (u *AuthUsecase) SendPasswordResetOTP(ctx context.Context, emailAddr string) error {
	if _, err := u.users.FindByEmail(ctx, emailAddr); err != nil {
		return err
	}
	return u.SendOTP(ctx, emailAddr)
}

// VerifyOTP exchanges a correct code for a verification token the client
// carries into signup or password reset.
func (u *AuthUsecase) VerifyOTP(ctx context.Context, emailAddr, code string) (string, error) {
	if err := u.otps.Verify(ctx, emailAddr, code); err != nil {
		return "", err
	}
	return u.otps.IssueVerification(ctx, emailAddr)
}

// ChangePassword sets a new password for the account behind email. The
// verification token is checked and consumed server-side; the epoch bump
// logs every device out of the old password's sessions.
func (u *AuthUsecase) ChangePassword(ctx context.Context, emailAddr, newPassword, verificationToken string) error {
	if !u.otps.ValidateVerification(ctx, emailAddr, verificationToken) {
		return domain.ErrNotVerified
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	if err := u.otps.ConsumeVerification(ctx, emailAddr); err != nil {
		u.logger.ErrorContext(ctx, "consume verification", "error", err)
	}

	if _, err := u.users.BumpSessionEpoch(ctx, user.ID); err != nil {
		return err
	}
	return nil
}

func (u *AuthUsecase) issueSession(userID string, epoch int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"sv":  epoch,
		"iat": now.Unix(),
		"exp": now.Add(u.sessionTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}
