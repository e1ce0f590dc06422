package fine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"library-service/internal/metrics"

	"github.com/uptrace/bun"
)

var ErrFineNotFound = errors.New("fine not found")

type Repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(idb bun.IDB, m *metrics.Metrics) *Repository {
	return &Repository{
		db:      idb,
		metrics: m,
	}
}

func (r *Repository) Create(ctx context.Context, fine *Fine) (*Fine, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(fine).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "fines", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return fine, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Fine, error) {
	start := time.Now()
	fine := new(Fine)
	err := r.db.NewSelect().Model(fine).Where("f.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "fines", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFineNotFound
		}
		return nil, err
	}
	return fine, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]Fine, error) {
	start := time.Now()
	var fines []Fine
	err := r.db.NewSelect().Model(&fines).Order("f.id").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "fines", time.Since(start), err)

	return fines, err
}

func (r *Repository) GetByReader(ctx context.Context, readerID int) ([]Fine, error) {
	start := time.Now()
	var fines []Fine
	err := r.db.NewSelect().
		Model(&fines).
		Where("f.reader_id = ?", readerID).
		Order("f.id").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "fines", time.Since(start), err)

	return fines, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id int, status Status) error {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Fine)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "fines", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrFineNotFound
	}
	return nil
}

// HasUnpaid reports whether the reader has at least one unpaid fine. It gates
// loan creation and drives the blocked account status.
func (r *Repository) HasUnpaid(ctx context.Context, readerID int) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*Fine)(nil)).
		Where("f.reader_id = ?", readerID).
		Where("f.status = ?", StatusUnpaid).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "fines", time.Since(start), err)

	return exists, err
}

// Details returns the "fines with reader name" reporting view.
func (r *Repository) Details(ctx context.Context) ([]Detail, error) {
	start := time.Now()
	var details []Detail
	err := r.db.NewSelect().
		Model((*Fine)(nil)).
		ColumnExpr("f.id AS fine_id").
		ColumnExpr("r.name AS reader_name").
		ColumnExpr("f.amount").
		ColumnExpr("f.reason").
		ColumnExpr("f.status").
		Join("JOIN readers AS r ON r.id = f.reader_id").
		Order("f.id").
		Scan(ctx, &details)

	r.metrics.Database.RecordQuery(ctx, "select", "fines", time.Since(start), err)

	return details, err
}
