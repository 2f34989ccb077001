package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stockers-dev/stockers-api/internal/api"
	"github.com/stockers-dev/stockers-api/internal/platform/storage"
)

var _ ApplicationService = (*ApplicationServiceImpl)(nil)

// ApplicationService exposes the applicant-facing submission flow and the
// admin review flow.
type ApplicationService interface {
	// Get returns the caller's application for the recruit with the stored
	// attachment URL merged into content.portfolio.portfolioUrl.
	Get(ctx context.Context, recruitID, userID string) (map[string]interface{}, error)

	// Submit creates the application, uploading the portfolio file when one
	// is attached.
	Submit(ctx context.Context, recruitID, userID, rawContent string, upload *Upload) error

	// Update replaces content and attachment, deleting the previously stored
	// object when it belonged to this service and the URL changed.
	Update(ctx context.Context, recruitID, userID, rawContent string, upload *Upload) error

	Delete(ctx context.Context, recruitID, userID string) error

	AdminList(ctx context.Context, filter AdminListFilter) ([]AdminApplication, error)
	AdminGet(ctx context.Context, applicationID string) (*AdminApplicationDetail, error)
	UpdateStatus(ctx context.Context, applicationID, status string) error
}

type ApplicationServiceImpl struct {
	logger *slog.Logger
	repo   ApplicationRepo
	store  storage.ObjectStore
}

func NewApplicationService(repo ApplicationRepo, store storage.ObjectStore, logger *slog.Logger) *ApplicationServiceImpl {
	return &ApplicationServiceImpl{
		logger: logger,
		repo:   repo,
		store:  store,
	}
}

func (s *ApplicationServiceImpl) Get(ctx context.Context, recruitID, userID string) (map[string]interface{}, error) {
	if err := s.requireRecruit(ctx, recruitID); err != nil {
		return nil, err
	}

	app, err := s.repo.GetByRecruitAndUser(ctx, recruitID, userID)
	if err != nil {
		return nil, err
	}

	att, err := s.repo.GetAttachment(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	content := app.Content
	if content == nil {
		content = map[string]interface{}{}
	}
	portfolio, ok := content["portfolio"].(map[string]interface{})
	if !ok {
		portfolio = map[string]interface{}{}
		content["portfolio"] = portfolio
	}
	portfolio["portfolioUrl"] = att.FileURL

	return content, nil
}

func (s *ApplicationServiceImpl) Submit(ctx context.Context, recruitID, userID, rawContent string, upload *Upload) error {
	l := s.logger.With(slog.String("method", "Submit"), slog.String("recruitID", recruitID))

	if err := s.requireRecruit(ctx, recruitID); err != nil {
		return err
	}

	content, err := parseContent(rawContent)
	if err != nil {
		return err
	}

	fileURL, err := s.resolveFileURL(ctx, content, upload)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to encode content: %w", err)
	}

	if _, err := s.repo.CreateWithAttachment(ctx, recruitID, userID, raw, fileURL); err != nil {
		return err
	}

	l.InfoContext(ctx, "Application submitted", slog.String("userID", userID))
	return nil
}

func (s *ApplicationServiceImpl) Update(ctx context.Context, recruitID, userID, rawContent string, upload *Upload) error {
	l := s.logger.With(slog.String("method", "Update"), slog.String("recruitID", recruitID))

	if err := s.requireRecruit(ctx, recruitID); err != nil {
		return err
	}

	app, err := s.repo.GetByRecruitAndUser(ctx, recruitID, userID)
	if err != nil {
		return err
	}

	content, err := parseContent(rawContent)
	if err != nil {
		return err
	}

	fileURL, err := s.resolveFileURL(ctx, content, upload)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to encode content: %w", err)
	}

	previousURL, err := s.repo.UpdateWithAttachment(ctx, app.ID, raw, fileURL)
	if err != nil {
		return err
	}

	// The old object is garbage once replaced, but only when it lives in our
	// bucket; user-provided external URLs are left alone.
	if previousURL != "" && previousURL != fileURL && s.store.Owns(previousURL) {
		if err := s.store.Delete(ctx, previousURL); err != nil {
			l.WarnContext(ctx, "Failed to delete replaced object", slog.Any("error", err))
		}
	}

	l.InfoContext(ctx, "Application updated", slog.String("userID", userID))
	return nil
}

func (s *ApplicationServiceImpl) Delete(ctx context.Context, recruitID, userID string) error {
	if err := s.requireRecruit(ctx, recruitID); err != nil {
		return err
	}

	app, err := s.repo.GetByRecruitAndUser(ctx, recruitID, userID)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, app.ID)
}

func (s *ApplicationServiceImpl) AdminList(ctx context.Context, filter AdminListFilter) ([]AdminApplication, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, fmt.Errorf("INVALID_STATUS: %w", api.ErrValidation)
	}
	return s.repo.AdminList(ctx, filter)
}

func (s *ApplicationServiceImpl) AdminGet(ctx context.Context, applicationID string) (*AdminApplicationDetail, error) {
	return s.repo.AdminGet(ctx, applicationID)
}

func (s *ApplicationServiceImpl) UpdateStatus(ctx context.Context, applicationID, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("INVALID_STATUS: %w", api.ErrValidation)
	}
	return s.repo.UpdateStatus(ctx, applicationID, status)
}

func (s *ApplicationServiceImpl) requireRecruit(ctx context.Context, recruitID string) error {
	exists, err := s.repo.RecruitExists(ctx, recruitID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("recruit %s: %w", recruitID, api.ErrNotFound)
	}
	return nil
}

// resolveFileURL picks the attachment URL: an uploaded file goes to object
// storage under a fresh UUID key, otherwise the URL inside the content's
// portfolio section is taken as-is.
func (s *ApplicationServiceImpl) resolveFileURL(ctx context.Context, content map[string]interface{}, upload *Upload) (string, error) {
	if upload != nil {
		url, err := s.store.Upload(ctx, uuid.NewString(), upload.ContentType, upload.Body)
		if err != nil {
			return "", fmt.Errorf("failed to store portfolio file: %w", err)
		}
		return url, nil
	}

	portfolio, ok := content["portfolio"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("KEY_ERROR: %w", api.ErrValidation)
	}
	url, ok := portfolio["portfolioUrl"].(string)
	if !ok {
		return "", fmt.Errorf("KEY_ERROR: %w", api.ErrValidation)
	}
	return url, nil
}

func parseContent(rawContent string) (map[string]interface{}, error) {
	if rawContent == "" {
		return nil, fmt.Errorf("KEY_ERROR: %w", api.ErrValidation)
	}
	var content map[string]interface{}
	if err := json.Unmarshal([]byte(rawContent), &content); err != nil {
		return nil, fmt.Errorf("INVALID_CONTENT: %w", api.ErrValidation)
	}
	return content, nil
}
