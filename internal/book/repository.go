package book

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"library-service/internal/db"
	"library-service/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateISBN = errors.New("book with this isbn already exists")

	// ErrCopyCountViolation signals a caller bug: an availability adjustment
	// would push available_copies outside [0, total_copies].
	ErrCopyCountViolation = errors.New("available copies out of range")
)

type Repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

// NewRepository works over either *bun.DB or an open bun.Tx, so ledger
// operations can reuse the same queries inside a transaction.
func NewRepository(idb bun.IDB, m *metrics.Metrics) *Repository {
	return &Repository{
		db:      idb,
		metrics: m,
	}
}

func (r *Repository) Create(ctx context.Context, book *Book) (*Book, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(book).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "books", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateISBN
		}
		return nil, err
	}
	return book, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Book, error) {
	start := time.Now()
	book := new(Book)
	err := r.db.NewSelect().Model(book).Where("b.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "books", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]Book, error) {
	start := time.Now()
	var books []Book
	err := r.db.NewSelect().Model(&books).Order("b.title").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "books", time.Since(start), err)

	return books, err
}

// Search matches the query as a case-insensitive substring of title, author,
// genre or isbn. An empty result is a nil slice, not an error.
func (r *Repository) Search(ctx context.Context, query string) ([]Book, error) {
	start := time.Now()
	pattern := "%" + query + "%"

	var books []Book
	err := r.db.NewSelect().
		Model(&books).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("b.title ILIKE ?", pattern).
				WhereOr("b.author ILIKE ?", pattern).
				WhereOr("b.genre ILIKE ?", pattern).
				WhereOr("b.isbn ILIKE ?", pattern)
		}).
		Order("b.title").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "books", time.Since(start), err)

	return books, err
}

// AdjustAvailability changes available_copies by delta in a single guarded
// statement. The guard keeps the count inside [0, total_copies]; a rejected
// update on an existing book is reported as ErrCopyCountViolation rather than
// clamped, because it means the caller's accounting is wrong.
func (r *Repository) AdjustAvailability(ctx context.Context, id int, delta int) error {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Book)(nil)).
		Set("available_copies = available_copies + ?", delta).
		Where("id = ?", id).
		Where("available_copies + ? BETWEEN 0 AND total_copies", delta).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "books", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrCopyCountViolation
	}
	return nil
}
