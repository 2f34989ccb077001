package recruit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRecruitRepo is a mock implementation of the RecruitRepo interface
type MockRecruitRepo struct {
	mock.Mock
}

func (m *MockRecruitRepo) CreateRecruit(ctx context.Context, req CreateRecruitRequest, deadline time.Time, author string) (*Recruit, error) {
	args := m.Called(ctx, req, deadline, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Recruit), args.Error(1)
}

func (m *MockRecruitRepo) GetRecruit(ctx context.Context, recruitID string) (*Recruit, error) {
	args := m.Called(ctx, recruitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Recruit), args.Error(1)
}

func (m *MockRecruitRepo) ListRecruits(ctx context.Context, filter ListFilter) ([]Recruit, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Recruit), args.Error(1)
}

func (m *MockRecruitRepo) UpdateRecruit(ctx context.Context, recruitID string, params UpdateRecruitParams) error {
	args := m.Called(ctx, recruitID, params)
	return args.Error(0)
}

func (m *MockRecruitRepo) DeleteRecruit(ctx context.Context, recruitID string) error {
	args := m.Called(ctx, recruitID)
	return args.Error(0)
}

func (m *MockRecruitRepo) GetOrCreateStack(ctx context.Context, name, hashID string) (string, error) {
	args := m.Called(ctx, name, hashID)
	return args.String(0), args.Error(1)
}

func (m *MockRecruitRepo) ListRecruitStackIDs(ctx context.Context, recruitID string) ([]string, error) {
	args := m.Called(ctx, recruitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecruitRepo) AddRecruitStack(ctx context.Context, recruitID, stackID string) error {
	args := m.Called(ctx, recruitID, stackID)
	return args.Error(0)
}

func (m *MockRecruitRepo) RemoveRecruitStack(ctx context.Context, recruitID, stackID string) error {
	args := m.Called(ctx, recruitID, stackID)
	return args.Error(0)
}

func TestStackHash(t *testing.T) {
	t.Run("CaseSensitive", func(t *testing.T) {
		assert.NotEqual(t, StackHash("Go"), StackHash("go"))
	})

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, StackHash("Python"), StackHash("Python"))
		assert.Len(t, StackHash("Python"), 64)
	})
}

func TestSyncStacks(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()
	const recruitID = "recruit-1"

	t.Run("CaseVariantsAreDistinctStacks", func(t *testing.T) {
		mockRepo := new(MockRecruitRepo)
		service := NewRecruitService(mockRepo, logger)

		mockRepo.On("GetOrCreateStack", ctx, "Go", StackHash("Go")).Return("stack-go-upper", nil).Once()
		mockRepo.On("GetOrCreateStack", ctx, "go", StackHash("go")).Return("stack-go-lower", nil).Once()
		mockRepo.On("ListRecruitStackIDs", ctx, recruitID).Return([]string{}, nil).Once()
		mockRepo.On("AddRecruitStack", ctx, recruitID, "stack-go-upper").Return(nil).Once()
		mockRepo.On("AddRecruitStack", ctx, recruitID, "stack-go-lower").Return(nil).Once()

		err := service.syncStacks(ctx, recruitID, []string{"Go", "go"})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RemovesStaleKeepsShared", func(t *testing.T) {
		mockRepo := new(MockRecruitRepo)
		service := NewRecruitService(mockRepo, logger)

		// Current associations: Go. Desired: Rust only.
		mockRepo.On("GetOrCreateStack", ctx, "Rust", StackHash("Rust")).Return("stack-rust", nil).Once()
		mockRepo.On("ListRecruitStackIDs", ctx, recruitID).Return([]string{"stack-go"}, nil).Once()
		mockRepo.On("RemoveRecruitStack", ctx, recruitID, "stack-go").Return(nil).Once()
		mockRepo.On("AddRecruitStack", ctx, recruitID, "stack-rust").Return(nil).Once()

		err := service.syncStacks(ctx, recruitID, []string{"Rust"})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Idempotent", func(t *testing.T) {
		mockRepo := new(MockRecruitRepo)
		service := NewRecruitService(mockRepo, logger)

		// Desired set already matches: no add, no remove.
		mockRepo.On("GetOrCreateStack", ctx, "Go", StackHash("Go")).Return("stack-go", nil).Once()
		mockRepo.On("ListRecruitStackIDs", ctx, recruitID).Return([]string{"stack-go"}, nil).Once()

		err := service.syncStacks(ctx, recruitID, []string{"Go"})

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "AddRecruitStack")
		mockRepo.AssertNotCalled(t, "RemoveRecruitStack")
		mockRepo.AssertExpectations(t)
	})

	t.Run("DuplicatesCollapse", func(t *testing.T) {
		mockRepo := new(MockRecruitRepo)
		service := NewRecruitService(mockRepo, logger)

		mockRepo.On("GetOrCreateStack", ctx, "Go", StackHash("Go")).Return("stack-go", nil).Twice()
		mockRepo.On("ListRecruitStackIDs", ctx, recruitID).Return([]string{}, nil).Once()
		// Both duplicates resolve to the same stack id, which is associated once.
		mockRepo.On("AddRecruitStack", ctx, recruitID, "stack-go").Return(nil).Once()

		err := service.syncStacks(ctx, recruitID, []string{"Go", "Go"})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmptyInputClearsAll", func(t *testing.T) {
		mockRepo := new(MockRecruitRepo)
		service := NewRecruitService(mockRepo, logger)

		mockRepo.On("ListRecruitStackIDs", ctx, recruitID).Return([]string{"stack-go", "stack-rust"}, nil).Once()
		mockRepo.On("RemoveRecruitStack", ctx, recruitID, "stack-go").Return(nil).Once()
		mockRepo.On("RemoveRecruitStack", ctx, recruitID, "stack-rust").Return(nil).Once()

		err := service.syncStacks(ctx, recruitID, []string{})

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "GetOrCreateStack")
		mockRepo.AssertExpectations(t)
	})
}

func TestRecruitCreate(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("DefaultsApplied", func(t *testing.T) {
		mockRepo := new(MockRecruitRepo)
		service := NewRecruitService(mockRepo, logger)

		farFuture, _ := time.Parse("2006-01-02", "9999-12-31")
		created := &Recruit{ID: "recruit-1", Position: "Backend Engineer", CareerType: CareerAny}

		mockRepo.On("CreateRecruit", ctx, mock.MatchedBy(func(req CreateRecruitRequest) bool {
			return req.CareerType == CareerAny
		}), farFuture, "admin-1").Return(created, nil).Once()
		mockRepo.On("ListRecruitStackIDs", ctx, "recruit-1").Return([]string{}, nil).Once()

		rec, err := service.Create(ctx, CreateRecruitRequest{Position: "Backend Engineer"}, "admin-1")

		assert.NoError(t, err)
		assert.Equal(t, "recruit-1", rec.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InvalidCareerType", func(t *testing.T) {
		mockRepo := new(MockRecruitRepo)
		service := NewRecruitService(mockRepo, logger)

		rec, err := service.Create(ctx, CreateRecruitRequest{Position: "x", CareerType: "XX"}, "admin-1")

		assert.Error(t, err)
		assert.Nil(t, rec)
		mockRepo.AssertNotCalled(t, "CreateRecruit")
	})

	t.Run("InvalidDeadline", func(t *testing.T) {
		mockRepo := new(MockRecruitRepo)
		service := NewRecruitService(mockRepo, logger)

		rec, err := service.Create(ctx, CreateRecruitRequest{Position: "x", Deadline: "soon"}, "admin-1")

		assert.Error(t, err)
		assert.Nil(t, rec)
		mockRepo.AssertNotCalled(t, "CreateRecruit")
	})
}

func TestRecruitListCache(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("SecondReadServedFromCache", func(t *testing.T) {
		mockRepo := new(MockRecruitRepo)
		service := NewRecruitService(mockRepo, logger)

		filter := ListFilter{}
		mockRepo.On("ListRecruits", ctx, filter).Return([]Recruit{{ID: "recruit-1"}}, nil).Once()

		first, err := service.List(ctx, filter)
		assert.NoError(t, err)
		second, err := service.List(ctx, filter)
		assert.NoError(t, err)

		assert.Equal(t, first, second)
		mockRepo.AssertNumberOfCalls(t, "ListRecruits", 1)
	})

	t.Run("MutationFlushesCache", func(t *testing.T) {
		mockRepo := new(MockRecruitRepo)
		service := NewRecruitService(mockRepo, logger)

		filter := ListFilter{}
		mockRepo.On("ListRecruits", ctx, filter).Return([]Recruit{{ID: "recruit-1"}}, nil).Twice()
		mockRepo.On("DeleteRecruit", ctx, "recruit-1").Return(nil).Once()

		_, err := service.List(ctx, filter)
		assert.NoError(t, err)

		assert.NoError(t, service.Delete(ctx, "recruit-1"))

		_, err = service.List(ctx, filter)
		assert.NoError(t, err)
		mockRepo.AssertNumberOfCalls(t, "ListRecruits", 2)
	})
}
