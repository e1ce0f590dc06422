package loan

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"library-service/internal/metrics"

	"github.com/uptrace/bun"
)

// ErrLoanNotFound covers both an unknown loan id and a loan that is already
// returned: a second return attempt must fail, not no-op.
var ErrLoanNotFound = errors.New("active loan not found")

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

func (r *Repository) Create(ctx context.Context, loan *Loan) (*Loan, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(loan).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "loans", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Loan, error) {
	start := time.Now()
	loan := new(Loan)
	err := r.db.NewSelect().Model(loan).Where("l.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "loans", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]Loan, error) {
	start := time.Now()
	var loans []Loan
	err := r.db.NewSelect().Model(&loans).Order("l.id").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "loans", time.Since(start), err)

	return loans, err
}

func (r *Repository) GetByReader(ctx context.Context, readerID int) ([]Loan, error) {
	start := time.Now()
	var loans []Loan
	err := r.db.NewSelect().
		Model(&loans).
		Where("l.reader_id = ?", readerID).
		Order("l.id").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "loans", time.Since(start), err)

	return loans, err
}

// MarkReturned closes an active loan, setting return_date exactly once. The
// status guard makes a double return fail with ErrLoanNotFound instead of
// silently rewriting the return date.
func (r *Repository) MarkReturned(ctx context.Context, id int, returnedAt time.Time) (*Loan, error) {
	start := time.Now()
	loan := new(Loan)
	res, err := r.db.NewUpdate().
		Model(loan).
		Set("return_date = ?", returnedAt).
		Set("status = ?", StatusReturned).
		Where("id = ?", id).
		Where("status = ?", StatusActive).
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "loans", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrLoanNotFound
	}
	return loan, nil
}

// ActiveDetails returns the "active loans with book title and reader name"
// reporting view.
func (r *Repository) ActiveDetails(ctx context.Context) ([]Detail, error) {
	start := time.Now()
	var details []Detail
	err := r.db.NewSelect().
		Model((*Loan)(nil)).
		ColumnExpr("l.id AS loan_id").
		ColumnExpr("b.title AS book_title").
		ColumnExpr("r.name AS reader_name").
		ColumnExpr("l.issue_date").
		ColumnExpr("l.due_date").
		Join("JOIN books AS b ON b.id = l.book_id").
		Join("JOIN readers AS r ON r.id = l.reader_id").
		Where("l.status = ?", StatusActive).
		Order("l.id").
		Scan(ctx, &details)

	r.metrics.Database.RecordQuery(ctx, "select", "loans", time.Since(start), err)

	return details, err
}
