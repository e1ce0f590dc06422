package ledger

import (
	"context"
	"time"

	"library-service/internal/book"
	"library-service/internal/fine"
	"library-service/internal/librarian"
	"library-service/internal/loan"
	"library-service/internal/reader"
	"library-service/internal/reservation"
)

// Snapshot is a read-only dump of the whole ledger for external serializers.
// The ledger has no opinion on output format; credentials are excluded from
// serialization by the model tags.
type Snapshot struct {
	TakenAt      time.Time                 `json:"takenAt"`
	TotalRecords int                       `json:"totalRecords"`
	Books        []book.Book               `json:"books"`
	Readers      []reader.Reader           `json:"readers"`
	Librarians   []librarian.Librarian     `json:"librarians"`
	Loans        []loan.Loan               `json:"loans"`
	Reservations []reservation.Reservation `json:"reservations"`
	Fines        []fine.Fine               `json:"fines"`
}

func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	books, err := s.books.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	readers, err := s.readers.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	librarians, err := s.librarians.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	loans, err := s.loans.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservations.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	fines, err := s.fines.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		TakenAt:      time.Now(),
		Books:        books,
		Readers:      readers,
		Librarians:   librarians,
		Loans:        loans,
		Reservations: reservations,
		Fines:        fines,
	}
	snap.TotalRecords = len(books) + len(readers) + len(librarians) +
		len(loans) + len(reservations) + len(fines)

	s.logger.InfoContext(ctx, "snapshot taken", "total_records", snap.TotalRecords)
	return snap, nil
}
