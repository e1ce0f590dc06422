package librarian

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
	ErrLibrarianNotFound = errors.New("librarian not found")
	ErrDuplicateUsername = errors.New("librarian with this username already exists")
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

func (r *Repository) Create(ctx context.Context, librarian *Librarian) (*Librarian, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(librarian).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "librarians", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return librarian, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Librarian, error) {
	start := time.Now()
	librarian := new(Librarian)
	err := r.db.NewSelect().Model(librarian).Where("lb.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "librarians", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLibrarianNotFound
		}
		return nil, err
	}
	return librarian, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*Librarian, error) {
	start := time.Now()
	librarian := new(Librarian)
	err := r.db.NewSelect().Model(librarian).Where("lb.username = ?", username).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "librarians", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLibrarianNotFound
		}
		return nil, err
	}
	return librarian, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]Librarian, error) {
	start := time.Now()
	var librarians []Librarian
	err := r.db.NewSelect().Model(&librarians).Order("lb.id").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "librarians", time.Since(start), err)

	return librarians, err
}
