package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hrdocs/internal/types"
)

func TestTenantRepository_GetByID_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTenantRepository(db)

	expires := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	started := expires.AddDate(0, 0, -30)
	created := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{
			scanFn: func(dest ...any) error {
				*dest[0].(*string) = "ten_1"
				*dest[1].(*string) = "Acme GmbH"
				*dest[2].(*string) = "hr@acme.example"
				*dest[3].(*types.PlanTier) = types.PlanStarter
				*dest[4].(**time.Time) = &started
				*dest[5].(**time.Time) = &expires
				*dest[6].(*int) = 50
				*dest[7].(*time.Time) = created
				*dest[8].(*time.Time) = created
				return nil
			},
		})

	tenant, err := repo.GetByID(context.Background(), "ten_1")
	require.NoError(t, err)
	assert.Equal(t, "ten_1", tenant.ID)
	assert.Equal(t, types.PlanStarter, tenant.Plan)
	require.NotNil(t, tenant.PlanExpiresAt)
	assert.Equal(t, expires, *tenant.PlanExpiresAt)
	assert.Equal(t, 50, tenant.MaxEmployees)
	db.AssertExpectations(t)
}

func TestTenantRepository_GetByID_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTenantRepository(db)

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: pgx.ErrNoRows})

	_, err := repo.GetByID(context.Background(), "ten_missing")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundTenant, appErr.Code)
}

func TestTenantRepository_ListActive_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTenantRepository(db)

	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := started.AddDate(1, 0, 0)
	created := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	rows := newMockRows([][]any{
		{"ten_1", "Acme GmbH", "hr@acme.example", types.PlanBusiness, started, expires, 200, created, created},
		{"ten_2", "Beta AG", "hr@beta.example", types.PlanPro, started, expires, 0, created, created},
	})

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(rows, nil)

	tenants, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "ten_1", tenants[0].ID)
	assert.Equal(t, types.PlanBusiness, tenants[0].Plan)
	assert.Equal(t, "ten_2", tenants[1].ID)
	assert.Equal(t, 0, tenants[1].MaxEmployees)
	db.AssertExpectations(t)
}

func TestTenantRepository_ListActive_QueryError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTenantRepository(db)

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := repo.ListActive(context.Background())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestTenantRepository_UpdatePlan_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTenantRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	now := time.Now().UTC()
	err := repo.UpdatePlan(context.Background(), "ten_1",
		types.PlanBusiness, now, now.AddDate(0, 0, 90), 200)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestTenantRepository_UpdatePlan_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTenantRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	now := time.Now().UTC()
	err := repo.UpdatePlan(context.Background(), "ten_missing",
		types.PlanStarter, now, now.AddDate(0, 0, 30), 50)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundTenant, appErr.Code)
}

func TestTenantRepository_UpdatePlan_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTenantRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	now := time.Now().UTC()
	err := repo.UpdatePlan(context.Background(), "ten_1",
		types.PlanStarter, now, now.AddDate(0, 0, 30), 50)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
