package reader

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
	ErrReaderNotFound = errors.New("reader not found")
	ErrDuplicateCard  = errors.New("reader with this card number already exists")
)

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

func (r *Repository) Create(ctx context.Context, reader *Reader) (*Reader, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(reader).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "readers", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateCard
		}
		return nil, err
	}
	return reader, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Reader, error) {
	start := time.Now()
	reader := new(Reader)
	err := r.db.NewSelect().Model(reader).Where("r.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "readers", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReaderNotFound
		}
		return nil, err
	}
	return reader, nil
}

func (r *Repository) GetByCardNumber(ctx context.Context, cardNumber string) (*Reader, error) {
	start := time.Now()
	reader := new(Reader)
	err := r.db.NewSelect().Model(reader).Where("r.card_number = ?", cardNumber).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "readers", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReaderNotFound
		}
		return nil, err
	}
	return reader, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]Reader, error) {
	start := time.Now()
	var readers []Reader
	err := r.db.NewSelect().Model(&readers).Order("r.id").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "readers", time.Since(start), err)

	return readers, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id int, status Status) error {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Reader)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "readers", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrReaderNotFound
	}
	return nil
}
