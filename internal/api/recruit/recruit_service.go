package recruit

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/sha3"

	"github.com/stockers-dev/stockers-api/internal/api"
)

const (
	defaultDeadline = "9999-12-31"
	listCacheTTL    = 30 * time.Second
)

var _ RecruitService = (*RecruitServiceImpl)(nil)

// RecruitService exposes posting reads for everyone and mutations for admins.
type RecruitService interface {
	Create(ctx context.Context, req CreateRecruitRequest, author string) (*Recruit, error)
	Get(ctx context.Context, recruitID string) (*Recruit, error)
	List(ctx context.Context, filter ListFilter) ([]Recruit, error)
	Update(ctx context.Context, recruitID string, req UpdateRecruitRequest) (*Recruit, error)
	Delete(ctx context.Context, recruitID string) error
}

type RecruitServiceImpl struct {
	logger    *slog.Logger
	repo      RecruitRepo
	listCache *cache.Cache
}

func NewRecruitService(repo RecruitRepo, logger *slog.Logger) *RecruitServiceImpl {
	return &RecruitServiceImpl{
		logger:    logger,
		repo:      repo,
		listCache: cache.New(listCacheTTL, 2*listCacheTTL),
	}
}

// StackHash is the content hash keying stack deduplication. Byte-exact and
// case-sensitive, so "Go" and "go" are distinct stacks.
func StackHash(name string) string {
	sum := sha3.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}

func (s *RecruitServiceImpl) Create(ctx context.Context, req CreateRecruitRequest, author string) (*Recruit, error) {
	l := s.logger.With(slog.String("method", "Create"))

	if req.Position == "" {
		return nil, fmt.Errorf("KEY_ERROR: %w", api.ErrValidation)
	}
	if req.CareerType == "" {
		req.CareerType = CareerAny
	}
	if !ValidCareerType(req.CareerType) {
		return nil, fmt.Errorf("INVALID_CAREER_TYPE: %w", api.ErrValidation)
	}
	if req.MinimumSalary < 0 || req.MaximumSalary < 0 {
		return nil, fmt.Errorf("INVALID_SALARY: %w", api.ErrValidation)
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.CreateRecruit(ctx, req, deadline, author)
	if err != nil {
		return nil, err
	}

	if err := s.syncStacks(ctx, rec.ID, req.Stacks); err != nil {
		return nil, err
	}
	rec.Stacks = dedupeNames(req.Stacks)

	s.listCache.Flush()
	l.InfoContext(ctx, "Recruit created", slog.String("recruitID", rec.ID))
	return rec, nil
}

func (s *RecruitServiceImpl) Get(ctx context.Context, recruitID string) (*Recruit, error) {
	return s.repo.GetRecruit(ctx, recruitID)
}

func (s *RecruitServiceImpl) List(ctx context.Context, filter ListFilter) ([]Recruit, error) {
	key := fmt.Sprintf("recruits:%s:%s", filter.Position, filter.Sort)
	if cached, found := s.listCache.Get(key); found {
		return cached.([]Recruit), nil
	}

	recruits, err := s.repo.ListRecruits(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.listCache.Set(key, recruits, cache.DefaultExpiration)
	return recruits, nil
}

func (s *RecruitServiceImpl) Update(ctx context.Context, recruitID string, req UpdateRecruitRequest) (*Recruit, error) {
	l := s.logger.With(slog.String("method", "Update"), slog.String("recruitID", recruitID))

	if req.CareerType != nil && !ValidCareerType(*req.CareerType) {
		return nil, fmt.Errorf("INVALID_CAREER_TYPE: %w", api.ErrValidation)
	}
	if req.MinimumSalary != nil && *req.MinimumSalary < 0 {
		return nil, fmt.Errorf("INVALID_SALARY: %w", api.ErrValidation)
	}
	if req.MaximumSalary != nil && *req.MaximumSalary < 0 {
		return nil, fmt.Errorf("INVALID_SALARY: %w", api.ErrValidation)
	}

	params := UpdateRecruitParams{
		Position:      req.Position,
		Description:   req.Description,
		JobOpenings:   req.JobOpenings,
		WorkType:      req.WorkType,
		CareerType:    req.CareerType,
		MinimumSalary: req.MinimumSalary,
		MaximumSalary: req.MaximumSalary,
	}
	if req.Deadline != nil {
		deadline, err := parseDeadline(*req.Deadline)
		if err != nil {
			return nil, err
		}
		params.Deadline = &deadline
	}

	if err := s.repo.UpdateRecruit(ctx, recruitID, params); err != nil {
		return nil, err
	}

	if req.Stacks != nil {
		if err := s.syncStacks(ctx, recruitID, *req.Stacks); err != nil {
			return nil, err
		}
	}

	s.listCache.Flush()
	l.InfoContext(ctx, "Recruit updated")
	return s.repo.GetRecruit(ctx, recruitID)
}

func (s *RecruitServiceImpl) Delete(ctx context.Context, recruitID string) error {
	if err := s.repo.DeleteRecruit(ctx, recruitID); err != nil {
		return err
	}
	s.listCache.Flush()
	return nil
}

// syncStacks reconciles the recruit's stack associations against the desired
// names. Names collapse through their content hash, missing associations are
// added and stale ones removed. An empty desired set clears everything.
// Orphaned stack rows are left behind on purpose.
func (s *RecruitServiceImpl) syncStacks(ctx context.Context, recruitID string, names []string) error {
	desired := make(map[string]struct{})
	for _, name := range names {
		hashID := StackHash(name)
		stackID, err := s.repo.GetOrCreateStack(ctx, name, hashID)
		if err != nil {
			return err
		}
		desired[stackID] = struct{}{}
	}

	current, err := s.repo.ListRecruitStackIDs(ctx, recruitID)
	if err != nil {
		return err
	}

	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
		if _, keep := desired[id]; !keep {
			if err := s.repo.RemoveRecruitStack(ctx, recruitID, id); err != nil {
				return err
			}
		}
	}
	for id := range desired {
		if _, have := currentSet[id]; !have {
			if err := s.repo.AddRecruitStack(ctx, recruitID, id); err != nil {
				return err
			}
		}
	}

	return nil
}

func parseDeadline(raw string) (time.Time, error) {
	if raw == "" {
		raw = defaultDeadline
	}
	deadline, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("INVALID_DEADLINE: %w", api.ErrValidation)
	}
	return deadline, nil
}

// dedupeNames collapses duplicate names by content hash, preserving order.
func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := []string{}
	for _, name := range names {
		h := StackHash(name)
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, name)
	}
	return out
}
