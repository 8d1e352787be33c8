package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"hrdocs/internal/types"
)

// DocumentRepository provides read access to the documents table.
type DocumentRepository struct {
	db DBTX
}

func NewDocumentRepository(db DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `d.id, d.tenant_id, d.employee_id, d.kind,
	d.contract_end_date, d.created_at`

func scanDocument(row pgx.Row) (types.Document, error) {
	var doc types.Document
	err := row.Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.EmployeeID,
		&doc.Kind,
		&doc.ContractEndDate,
		&doc.CreatedAt,
	)
	return doc, err
}

// ListByTenant returns every document of the tenant, newest first. Kind is an
// optional filter; pass the empty string for all kinds.
func (r *DocumentRepository) ListByTenant(ctx context.Context, tenantID string, kind types.DocumentKind) ([]types.Document, error) {
	query := `SELECT ` + documentColumns + `
		 FROM documents d
		 WHERE d.tenant_id = $1`
	args := []any{tenantID}
	if kind != "" {
		query += ` AND d.kind = $2`
		args = append(args, kind)
	}
	query += ` ORDER BY d.created_at DESC, d.id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list documents", err)
	}
	defer rows.Close()

	var documents []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan document", err)
		}
		documents = append(documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate documents", err)
	}
	return documents, nil
}
