package user

import "time"

// MyPageResponse is the profile view returned by GET /users/mypage.
type MyPageResponse struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChangePasswordRequest represents the mypage PATCH body.
type ChangePasswordRequest struct {
	NewPassword      string `json:"new_password"`
	NewPasswordCheck string `json:"new_password_check"`
}

// IssueVerificationRequest starts a password recovery.
type IssueVerificationRequest struct {
	Email string `json:"email"`
}

// ConfirmVerificationRequest consumes a previously issued code.
type ConfirmVerificationRequest struct {
	Email            string `json:"email"`
	Code             string `json:"code"`
	NewPassword      string `json:"new_password"`
	NewPasswordCheck string `json:"new_password_check"`
}

// VerificationCode is an ephemeral password-reset code. At most one live
// code exists per email.
type VerificationCode struct {
	ID        string
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}
