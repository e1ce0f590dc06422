// Package ledger is the authoritative holder of entity state transitions. It
// enforces the cross-entity invariants: copy-count conservation on loans and
// the fine/account-status linkage. Every mutating operation runs in a single
// transaction so a partial failure never leaves the store half-updated.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"

	"library-service/internal/book"
	"library-service/internal/fine"
	"library-service/internal/librarian"
	"library-service/internal/loan"
	"library-service/internal/metrics"
	"library-service/internal/reader"
	"library-service/internal/reservation"

	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun"
)

// DefaultLoanDurationDays applies when a loan is created without an explicit
// duration.
const DefaultLoanDurationDays = 30

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyQuery       = errors.New("empty search query")
	ErrBookNotAvailable = errors.New("no copies available")
	ErrReaderBlocked    = errors.New("reader is blocked")

	// ErrOutstandingFines is returned when a librarian tries to unblock a
	// reader who still has unpaid fines.
	ErrOutstandingFines = errors.New("reader has outstanding unpaid fines")
)

type Service struct {
	db       *bun.DB
	logger   *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate

	books        *book.Repository
	readers      *reader.Repository
	librarians   *librarian.Repository
	loans        *loan.Repository
	reservations *reservation.Repository
	fines        *fine.Repository
}

func NewService(db *bun.DB, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		db:       db,
		logger:   logger,
		metrics:  m,
		validate: validator.New(),

		books:        book.NewRepository(db, m),
		readers:      reader.NewRepository(db, m),
		librarians:   librarian.NewRepository(db, m),
		loans:        loan.NewRepository(db, m),
		reservations: reservation.NewRepository(db, m),
		fines:        fine.NewRepository(db, m),
	}
}

func (s *Service) validateInput(v interface{}) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	return nil
}
