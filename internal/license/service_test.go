package license

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"hrdocs/internal/entitlements"
	"hrdocs/internal/types"
)

// --- Mocks ---

type mockCodeStore struct {
	mock.Mock
}

func (m *mockCodeStore) GetByCode(ctx context.Context, code string) (*types.LicenseCode, error) {
	args := m.Called(ctx, code)
	if c := args.Get(0); c != nil {
		return c.(*types.LicenseCode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCodeStore) Claim(ctx context.Context, code, tenantID string) error {
	args := m.Called(ctx, code, tenantID)
	return args.Error(0)
}

type mockTenantStore struct {
	mock.Mock
}

func (m *mockTenantStore) UpdatePlan(ctx context.Context, id string, plan types.PlanTier, startedAt, expiresAt time.Time, maxEmployees int) error {
	args := m.Called(ctx, id, plan, startedAt, expiresAt, maxEmployees)
	return args.Error(0)
}

func freshCode() *types.LicenseCode {
	return &types.LicenseCode{
		Code:         "ABCD2345",
		Plan:         types.PlanStarter,
		DurationDays: 30,
		CreatedAt:    time.Now().Add(-24 * time.Hour),
	}
}

func newTestService(codes CodeStore, tenants TenantStore) *Service {
	return NewService(codes, tenants, entitlements.NewStaticCatalog(), nil, nil)
}

// --- Redeem Tests ---

func TestRedeem_Success(t *testing.T) {
	codes := new(mockCodeStore)
	tenants := new(mockTenantStore)
	svc := newTestService(codes, tenants)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	codes.On("GetByCode", mock.Anything, "ABCD2345").Return(freshCode(), nil)
	codes.On("Claim", mock.Anything, "ABCD2345", "ten_1").Return(nil)
	// Starter: 50 employees, window = now + 30 days.
	tenants.On("UpdatePlan", mock.Anything, "ten_1",
		types.PlanStarter, now, now.AddDate(0, 0, 30), 50).Return(nil)

	result, err := svc.Redeem(context.Background(), "abcd2345", "ten_1")
	require.NoError(t, err)
	assert.Equal(t, types.PlanStarter, result.Plan)
	assert.Equal(t, 30, result.DurationDays)

	codes.AssertExpectations(t)
	tenants.AssertExpectations(t)
}

func TestRedeem_InvalidFormatShortCircuits(t *testing.T) {
	codes := new(mockCodeStore)
	tenants := new(mockTenantStore)
	svc := newTestService(codes, tenants)

	_, err := svc.Redeem(context.Background(), "short", "ten_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationInvalidCode, appErr.Code)

	// No storage call for malformed input.
	codes.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
}

func TestRedeem_NotFound(t *testing.T) {
	codes := new(mockCodeStore)
	tenants := new(mockTenantStore)
	svc := newTestService(codes, tenants)

	codes.On("GetByCode", mock.Anything, "ZZZZ9999").
		Return(nil, types.NewAppError(types.ErrCodeNotFoundLicenseCode, "license code not found", nil))

	_, err := svc.Redeem(context.Background(), "zzzz9999", "ten_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundLicenseCode, appErr.Code)
}

func TestRedeem_AlreadyUsed(t *testing.T) {
	codes := new(mockCodeStore)
	tenants := new(mockTenantStore)
	svc := newTestService(codes, tenants)

	used := freshCode()
	usedBy := "ten_other"
	usedAt := time.Now().Add(-time.Hour)
	used.UsedBy = &usedBy
	used.UsedAt = &usedAt

	codes.On("GetByCode", mock.Anything, "ABCD2345").Return(used, nil)

	_, err := svc.Redeem(context.Background(), "ABCD2345", "ten_1")
	require.Error(t, err)
	assert.True(t, IsClaimConflict(err))

	codes.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
}

func TestRedeem_ClaimWindowExpired(t *testing.T) {
	codes := new(mockCodeStore)
	tenants := new(mockTenantStore)
	svc := newTestService(codes, tenants)

	expired := freshCode()
	windowEnd := time.Now().Add(-time.Minute)
	expired.ExpiresAt = &windowEnd

	codes.On("GetByCode", mock.Anything, "ABCD2345").Return(expired, nil)

	_, err := svc.Redeem(context.Background(), "ABCD2345", "ten_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeExpiredLicenseCode, appErr.Code)
}

func TestRedeem_LostClaimRace(t *testing.T) {
	// GetByCode saw the code free, but the conditional write lost the race.
	codes := new(mockCodeStore)
	tenants := new(mockTenantStore)
	svc := newTestService(codes, tenants)

	codes.On("GetByCode", mock.Anything, "ABCD2345").Return(freshCode(), nil)
	codes.On("Claim", mock.Anything, "ABCD2345", "ten_1").
		Return(types.NewAppError(types.ErrCodeConflictCodeUsed, "license code has already been used", nil))

	_, err := svc.Redeem(context.Background(), "ABCD2345", "ten_1")
	require.Error(t, err)
	assert.True(t, IsClaimConflict(err))

	tenants.AssertNotCalled(t, "UpdatePlan",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRedeem_PlanUpdateFailedAfterClaim(t *testing.T) {
	codes := new(mockCodeStore)
	tenants := new(mockTenantStore)
	svc := newTestService(codes, tenants)

	codes.On("GetByCode", mock.Anything, "ABCD2345").Return(freshCode(), nil)
	codes.On("Claim", mock.Anything, "ABCD2345", "ten_1").Return(nil)
	tenants.On("UpdatePlan", mock.Anything, "ten_1",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(types.NewAppError(types.ErrCodeInternalDB, "failed to update tenant plan", errors.New("timeout")))

	_, err := svc.Redeem(context.Background(), "ABCD2345", "ten_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalPlanUpdateFailed, appErr.Code)
	assert.Equal(t, "ABCD2345", appErr.Details["code"])
}

// --- Exactly-once claim under race ---

// fakeAtomicStore is an in-memory CodeStore whose Claim mimics the
// conditional-write semantics of the real repository.
type fakeAtomicStore struct {
	mu   sync.Mutex
	code types.LicenseCode
}

func (s *fakeAtomicStore) GetByCode(ctx context.Context, code string) (*types.LicenseCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code != s.code.Code {
		return nil, types.NewAppError(types.ErrCodeNotFoundLicenseCode, "license code not found", nil)
	}
	snapshot := s.code
	return &snapshot, nil
}

func (s *fakeAtomicStore) Claim(ctx context.Context, code, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.code.UsedBy != nil {
		return types.NewAppError(types.ErrCodeConflictCodeUsed, "license code has already been used", nil)
	}
	now := time.Now()
	s.code.UsedBy = &tenantID
	s.code.UsedAt = &now
	return nil
}

type countingTenantStore struct {
	mu      sync.Mutex
	updates int
}

func (s *countingTenantStore) UpdatePlan(ctx context.Context, id string, plan types.PlanTier, startedAt, expiresAt time.Time, maxEmployees int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	return nil
}

func TestRedeem_ExactlyOnceUnderConcurrency(t *testing.T) {
	store := &fakeAtomicStore{code: *freshCode()}
	tenants := &countingTenantStore{}
	svc := newTestService(store, tenants)

	const callers = 32
	var successes int32
	var conflicts int32
	var successMu sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			_, err := svc.Redeem(ctx, "ABCD2345", "ten_1")
			successMu.Lock()
			defer successMu.Unlock()
			switch {
			case err == nil:
				successes++
			case IsClaimConflict(err):
				conflicts++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), successes, "exactly one caller must win the claim")
	assert.Equal(t, int32(callers-1), conflicts, "every loser must observe a claim conflict")
	assert.Equal(t, 1, tenants.updates, "the plan must be written exactly once")
}
