package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/chirphq/chirp/internal/domain"
	"github.com/chirphq/chirp/internal/metrics"
	"github.com/chirphq/chirp/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// OTPTTL bounds both the one-time code and the verification token that
	// replaces it. Janitor sweeps use the same window.
	OTPTTL          = 10 * time.Minute
	VerificationTTL = 10 * time.Minute
)

// OTPUsecase is the OTP ledger plus the verification-token issuer: it turns
// proof of a recently received email code into a short-lived signed assertion
// that signup and password reset can consume.
type OTPUsecase struct {
	otps          repository.OTPRepository
	verifications repository.VerificationRepository
	jwtKey        []byte
	logger        *slog.Logger
}

func NewOTPUsecase(otps repository.OTPRepository, verifications repository.VerificationRepository, jwtKey []byte, logger *slog.Logger) *OTPUsecase {
	return &OTPUsecase{
		otps:          otps,
		verifications: verifications,
		jwtKey:        jwtKey,
		logger:        logger.With("component", "otp_usecase"),
	}
}

// Issue generates a fresh 6-digit code for email, superseding any live one,
// and returns the plaintext for mail delivery only. The plaintext is never
// logged and never stored.
func (u *OTPUsecase) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(code)))
	if err := u.otps.Replace(ctx, email, hash, time.Now().Add(OTPTTL)); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	metrics.OTPIssuedTotal.Inc()
	return code, nil
}

// Verify consumes the live code for email. Every outcome removes or leaves
// exactly one record: expiry deletes it, success claims it atomically, and a
// claim lost to a concurrent reissue reports domain.ErrOTPNotFound.
func (u *OTPUsecase) Verify(ctx context.Context, email, code string) error {
	rec, err := u.otps.Find(ctx, email)
	if err != nil {
		metrics.OTPVerifiedTotal.WithLabelValues("not_found").Inc()
		return err
	}

	if time.Now().After(rec.ExpiresAt) {
		if err := u.otps.Delete(ctx, email); err != nil {
			u.logger.ErrorContext(ctx, "delete expired otp", "error", err)
		}
		metrics.OTPVerifiedTotal.WithLabelValues("expired").Inc()
		return domain.ErrOTPExpired
	}

	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(code)))
	if hash != rec.CodeHash {
		metrics.OTPVerifiedTotal.WithLabelValues("mismatch").Inc()
		return domain.ErrOTPMismatch
	}

	claimed, err := u.otps.Claim(ctx, email, hash)
	if err != nil {
		return fmt.Errorf("claim otp: %w", err)
	}
	if !claimed {
		metrics.OTPVerifiedTotal.WithLabelValues("not_found").Inc()
		return domain.ErrOTPNotFound
	}

	metrics.OTPVerifiedTotal.WithLabelValues("ok").Inc()
	return nil
}

// IssueVerification signs a verification token for email and mirrors it in
// the store. Called only right after Verify succeeds.
func (u *OTPUsecase) IssueVerification(ctx context.Context, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email":    email,
		"verified": true,
		"iat":      now.Unix(),
		"exp":      now.Add(VerificationTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}

	if err := u.verifications.Put(ctx, email, token); err != nil {
		return "", fmt.Errorf("mirror verification token: %w", err)
	}
	return token, nil
}

// ValidateVerification reports whether token authorizes an action on email.
// All checks must pass: token present, signature and expiry valid, embedded
// email matches, a mirror row exists, the mirror is within the window, and
// the mirror holds this exact token. Callers translate false into one
// uniform "not verified" error so the failing check is never leaked.
func (u *OTPUsecase) ValidateVerification(ctx context.Context, email, token string) bool {
	if token == "" {
		return false
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return u.jwtKey, nil
	})
	if err != nil || !parsed.Valid {
		return false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	if claimed, _ := claims["email"].(string); claimed != email {
		return false
	}

	mirror, err := u.verifications.Find(ctx, email)
	if err != nil {
		return false
	}
	// The mirror timestamp is checked independently of the token's own exp.
	if time.Since(mirror.CreatedAt) > VerificationTTL {
		return false
	}
	return mirror.Token == token
}

// ConsumeVerification deletes the mirror row. Called exactly once, right
// after the assertion authorized a signup or password change.
func (u *OTPUsecase) ConsumeVerification(ctx context.Context, email string) error {
	return u.verifications.Delete(ctx, email)
}
