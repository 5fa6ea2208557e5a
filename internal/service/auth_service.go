package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/email"
	"github.com/Aman121K/social-backend/internal/hash"
	"github.com/Aman121K/social-backend/internal/models"
	"github.com/Aman121K/social-backend/internal/otp"
	"github.com/Aman121K/social-backend/internal/repository"
	"github.com/Aman121K/social-backend/internal/token"
)

// AuthService owns the account lifecycle: signup, OTP verification, sign-in
// and password reset.
type AuthService struct {
	users  repository.UserRepository
	mailer email.Dispatcher
	hasher hash.Hasher
	tokens *token.Manager
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, mailer email.Dispatcher, hasher hash.Hasher, tokens *token.Manager, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{
		users:  users,
		mailer: mailer,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an unverified account and dispatches a verification OTP.
// The account is committed before dispatch; a send failure is reported but
// never rolls the account back.
func (s *AuthService) Register(ctx context.Context, name, username, emailAddr, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	code, err := otp.Generate()
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	expiry := otp.Expiry(s.now())

	u := &models.User{
		Name:      name,
		Username:  username,
		Email:     emailAddr,
		Password:  hashed,
		OTP:       code,
		OTPExpiry: &expiry,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}

	if err := s.mailer.SendOTP(ctx, emailAddr, code, "Verification"); err != nil {
		s.logger.Errorw("otp dispatch failed", "email", emailAddr, "err", err)
		return u.ID.Hex(), apperrors.ErrEmailDelivery
	}
	return u.ID.Hex(), nil
}

// VerifyOTP validates the code, marks the account verified, consumes the
// OTP and issues a session token.
func (s *AuthService) VerifyOTP(ctx context.Context, emailAddr, code string) (string, *models.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(emailAddr))
	if err != nil {
		return "", nil, err
	}
	if u.IsVerified {
		return "", nil, apperrors.ErrAlreadyVerified
	}
	if err := s.checkOTP(u, code); err != nil {
		return "", nil, err
	}
	ok, err := s.users.MarkVerified(ctx, u.ID, code, s.now())
	if err != nil {
		return "", nil, err
	}
	if !ok {
		// lost to a concurrent consume; re-read to report why
		return "", nil, s.consumeFailed(ctx, u.ID, code, true)
	}
	u.IsVerified = true
	u.OTP = ""
	u.OTPExpiry = nil

	tok, err := s.tokens.Issue(u.ID.Hex(), s.now())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return tok, u, nil
}

// ResendOTP regenerates the code and expiry; the previous code becomes
// invalid the moment the new one is stored.
func (s *AuthService) ResendOTP(ctx context.Context, emailAddr string) error {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(emailAddr))
	if err != nil {
		return err
	}
	if u.IsVerified {
		return apperrors.ErrAlreadyVerified
	}
	return s.issueOTP(ctx, u, "Verification")
}

// SignIn reports the same InvalidCredentials for an unknown email and a
// wrong password so callers cannot enumerate accounts.
func (s *AuthService) SignIn(ctx context.Context, emailAddr, password string) (string, *models.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !u.IsVerified {
		return "", nil, apperrors.ErrNotVerified
	}
	if !s.hasher.Compare(u.Password, password) {
		return "", nil, apperrors.ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(u.ID.Hex(), s.now())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return tok, u, nil
}

// ForgotPassword issues a reset OTP if the account exists. It succeeds
// either way; existence is deliberately hidden on this path.
func (s *AuthService) ForgotPassword(ctx context.Context, handle string) error {
	u, err := s.users.FindByEmailOrUsername(ctx, strings.ToLower(handle))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.issueOTP(ctx, u, "Password Reset")
}

// ResetPassword replaces the credential after OTP validation. Verification
// state is not required.
func (s *AuthService) ResetPassword(ctx context.Context, handle, code, newPassword string) error {
	u, err := s.users.FindByEmailOrUsername(ctx, strings.ToLower(handle))
	if err != nil {
		return err
	}
	if err := s.checkOTP(u, code); err != nil {
		return err
	}
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	ok, err := s.users.UpdatePassword(ctx, u.ID, code, hashed, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return s.consumeFailed(ctx, u.ID, code, false)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	return s.users.FindByID(ctx, id)
}

func (s *AuthService) issueOTP(ctx context.Context, u *models.User, purpose string) error {
	code, err := otp.Generate()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	if err := s.users.SetOTP(ctx, u.ID, code, otp.Expiry(s.now())); err != nil {
		return err
	}
	if err := s.mailer.SendOTP(ctx, u.Email, code, purpose); err != nil {
		s.logger.Errorw("otp dispatch failed", "email", u.Email, "err", err)
		return apperrors.ErrEmailDelivery
	}
	return nil
}

// consumeFailed re-reads the account to explain a conditional OTP consume
// that matched nothing.
func (s *AuthService) consumeFailed(ctx context.Context, id primitive.ObjectID, code string, verifying bool) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if verifying && u.IsVerified {
		return apperrors.ErrAlreadyVerified
	}
	if err := s.checkOTP(u, code); err != nil {
		return err
	}
	return apperrors.ErrInvalidCode
}

func (s *AuthService) checkOTP(u *models.User, code string) error {
	if u.OTP == "" || u.OTPExpiry == nil || u.OTP != code {
		return apperrors.ErrInvalidCode
	}
	if s.now().After(*u.OTPExpiry) {
		return apperrors.ErrExpired
	}
	return nil
}
