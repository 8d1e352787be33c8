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

// --- Mock Rows for Query ---

// mockRows implements pgx.Rows for testing Query results.
type mockRows struct {
	data    [][]any
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

func newMockRows(data [][]any) *mockRows {
	return &mockRows{data: data, idx: -1}
}

func (r *mockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *mockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.idx]
	for i, d := range dest {
		switch v := d.(type) {
		case *string:
			*v = row[i].(string)
		case *int:
			*v = row[i].(int)
		case *time.Time:
			*v = row[i].(time.Time)
		case **time.Time:
			if row[i] == nil {
				*v = nil
			} else {
				tv := row[i].(time.Time)
				*v = &tv
			}
		case *types.PlanTier:
			*v = row[i].(types.PlanTier)
		case *types.EmployeeStatus:
			*v = row[i].(types.EmployeeStatus)
		case *types.EmploymentType:
			*v = row[i].(types.EmploymentType)
		case *types.DocumentKind:
			*v = row[i].(types.DocumentKind)
		}
	}
	return nil
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.errVal }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

// --- EmployeeRepository Tests ---

func TestEmployeeRepository_ListByTenant_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewEmployeeRepository(db)

	hire1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	hire2 := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	rows := newMockRows([][]any{
		{"emp_1", "ten_1", "Ada", "ada@acme.example", types.EmployeeActive, types.EmploymentFullTime, hire1},
		{"emp_2", "ten_1", "Ben", "ben@acme.example", types.EmployeeActive, types.EmploymentPartTime, hire2},
	})

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(rows, nil)

	employees, err := repo.ListByTenant(context.Background(), "ten_1")
	require.NoError(t, err)
	require.Len(t, employees, 2)

	assert.Equal(t, "emp_1", employees[0].ID)
	assert.Equal(t, types.EmploymentFullTime, employees[0].EmploymentType)
	assert.Equal(t, hire1, employees[0].HireDate)
	assert.Equal(t, "emp_2", employees[1].ID)
	assert.Equal(t, types.EmploymentPartTime, employees[1].EmploymentType)

	db.AssertExpectations(t)
}

func TestEmployeeRepository_ListByTenant_Empty(t *testing.T) {
	db := new(mockDBTX)
	repo := NewEmployeeRepository(db)

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(newMockRows(nil), nil)

	employees, err := repo.ListByTenant(context.Background(), "ten_1")
	require.NoError(t, err)
	assert.Empty(t, employees)
}

func TestEmployeeRepository_ListByTenant_QueryError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewEmployeeRepository(db)

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := repo.ListByTenant(context.Background(), "ten_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestEmployeeRepository_CountByTenant(t *testing.T) {
	db := new(mockDBTX)
	repo := NewEmployeeRepository(db)

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{
			scanFn: func(dest ...any) error {
				*dest[0].(*int) = 42
				return nil
			},
		})

	count, err := repo.CountByTenant(context.Background(), "ten_1")
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}
