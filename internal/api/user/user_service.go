package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stockers-dev/stockers-api/internal/api"
)

const verificationTTL = 10 * time.Minute

var _ UserService = (*UserServiceImpl)(nil)

// Sender delivers outbound email. Implemented by platform/email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// UserService defines profile and password-recovery operations.
type UserService interface {
	// MyPage returns the caller's profile view.
	MyPage(ctx context.Context, userID string) (*MyPageResponse, error)

	// ChangePassword validates and stores a new password for the caller.
	ChangePassword(ctx context.Context, userID, newPassword, newPasswordCheck string) error

	// IssueVerification emails a fresh reset code, invalidating earlier ones.
	IssueVerification(ctx context.Context, email string) error

	// ConfirmVerification spends a live code and sets the new password.
	ConfirmVerification(ctx context.Context, email, code, newPassword, newPasswordCheck string) error
}

type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
	sender Sender
}

func NewUserService(repo UserRepo, sender Sender, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
		sender: sender,
	}
}

func (s *UserServiceImpl) MyPage(ctx context.Context, userID string) (*MyPageResponse, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MyPageResponse{
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func (s *UserServiceImpl) ChangePassword(ctx context.Context, userID, newPassword, newPasswordCheck string) error {
	if newPassword != newPasswordCheck {
		return fmt.Errorf("PASSWORD_MISMATCH: %w", api.ErrValidation)
	}
	if !api.ValidPassword(newPassword) {
		return fmt.Errorf("INVALID_PASSWORD: %w", api.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, string(hashed))
}

func (s *UserServiceImpl) IssueVerification(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := s.repo.ReplaceVerificationCode(ctx, user.Email, code, time.Now().Add(verificationTTL)); err != nil {
		return err
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.",
		code, int(verificationTTL.Minutes()))
	if err := s.sender.Send(ctx, user.Email, "Password reset code", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.logger.InfoContext(ctx, "Verification code issued", slog.String("email", user.Email))
	return nil
}

func (s *UserServiceImpl) ConfirmVerification(ctx context.Context, email, code, newPassword, newPasswordCheck string) error {
	vc, err := s.repo.GetVerificationCode(ctx, email, code)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("INVALID_CODE: %w", api.ErrUnauthenticated)
		}
		return err
	}
	if time.Now().After(vc.ExpiresAt) {
		return fmt.Errorf("EXPIRED_CODE: %w", api.ErrUnauthenticated)
	}

	if newPassword != newPasswordCheck {
		return fmt.Errorf("PASSWORD_MISMATCH: %w", api.ErrValidation)
	}
	if !api.ValidPassword(newPassword) {
		return fmt.Errorf("INVALID_PASSWORD: %w", api.ErrValidation)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}

	// Spend the code; failure here leaves an already-used but soon-expiring
	// row behind, which the next issuance clears.
	if err := s.repo.DeleteVerificationCode(ctx, vc.ID); err != nil {
		s.logger.WarnContext(ctx, "Failed to delete spent verification code", slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "Password reset via verification code", slog.String("userID", user.ID))
	return nil
}

// generateCode produces a 6-digit decimal code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
