package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/stockers-dev/stockers-api/internal/api"
)

// MockAuthService is a mock implementation of the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, email, password, passwordCheck string) (string, error) {
	args := m.Called(ctx, email, password, passwordCheck)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Signin(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) GetUserByID(ctx context.Context, userID string) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func TestSignupHandler(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Signup", mock.Anything, "new@example.com", "password123!", "password123!").
			Return("signed.jwt.token", nil).Once()
		handler := NewAuthHandler(mockService, logger)

		body := `{"email":"new@example.com","password":"password123!","password_check":"password123!"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.Signup(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "signed.jwt.token")
		mockService.AssertExpectations(t)
	})

	t.Run("MissingField", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, logger)

		body := `{"email":"new@example.com","password":"password123!"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.Signup(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "KEY_ERROR")
		mockService.AssertNotCalled(t, "Signup")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.Signup(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Signup", mock.Anything, "taken@example.com", "password123!", "password123!").
			Return("", fmt.Errorf("email already registered: %w", api.ErrConflict)).Once()
		handler := NewAuthHandler(mockService, logger)

		body := `{"email":"taken@example.com","password":"password123!","password_check":"password123!"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.Signup(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestSigninHandler(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Signin", mock.Anything, "test@example.com", "password123!").
			Return("signed.jwt.token", nil).Once()
		handler := NewAuthHandler(mockService, logger)

		body := `{"email":"test@example.com","password":"password123!"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signin", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.Signin(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "access_token")
		mockService.AssertExpectations(t)
	})

	t.Run("BadCredentials", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Signin", mock.Anything, "test@example.com", "wrong").
			Return("", fmt.Errorf("INVALID_PASSWORD: %w", api.ErrUnauthenticated)).Once()
		handler := NewAuthHandler(mockService, logger)

		body := `{"email":"test@example.com","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signin", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.Signin(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingField", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, logger)

		body := `{"email":"test@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signin", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.Signin(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "KEY_ERROR")
		mockService.AssertNotCalled(t, "Signin")
	})
}
