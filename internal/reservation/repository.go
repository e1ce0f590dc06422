package reservation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"library-service/internal/metrics"

	"github.com/uptrace/bun"
)

var ErrReservationNotFound = errors.New("reservation not found")

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

func (r *Repository) Create(ctx context.Context, reservation *Reservation) (*Reservation, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(reservation).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "reservations", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Reservation, error) {
	start := time.Now()
	reservation := new(Reservation)
	err := r.db.NewSelect().Model(reservation).Where("rs.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "reservations", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return reservation, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]Reservation, error) {
	start := time.Now()
	var reservations []Reservation
	err := r.db.NewSelect().Model(&reservations).Order("rs.id").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "reservations", time.Since(start), err)

	return reservations, err
}

func (r *Repository) GetByReader(ctx context.Context, readerID int) ([]Reservation, error) {
	start := time.Now()
	var reservations []Reservation
	err := r.db.NewSelect().
		Model(&reservations).
		Where("rs.reader_id = ?", readerID).
		Order("rs.id").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "reservations", time.Since(start), err)

	return reservations, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id int, status Status) error {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Reservation)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "reservations", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// Details returns the "reservations with book title and reader name"
// reporting view.
func (r *Repository) Details(ctx context.Context) ([]Detail, error) {
	start := time.Now()
	var details []Detail
	err := r.db.NewSelect().
		Model((*Reservation)(nil)).
		ColumnExpr("rs.id AS reservation_id").
		ColumnExpr("b.title AS book_title").
		ColumnExpr("r.name AS reader_name").
		ColumnExpr("rs.reservation_date").
		ColumnExpr("rs.status").
		Join("JOIN books AS b ON b.id = rs.book_id").
		Join("JOIN readers AS r ON r.id = rs.reader_id").
		Order("rs.id").
		Scan(ctx, &details)

	r.metrics.Database.RecordQuery(ctx, "select", "reservations", time.Since(start), err)

	return details, err
}
