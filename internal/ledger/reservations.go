package ledger

import (
	"context"
	"time"

	"library-service/internal/reservation"
)

// CreateReservation places a reservation regardless of copy availability: it
// is a request for notification, not a hold. Only existence of the book and
// the reader is required.
func (s *Service) CreateReservation(ctx context.Context, bookID, readerID int) (*reservation.Reservation, error) {
	if _, err := s.readers.GetByID(ctx, readerID); err != nil {
		return nil, err
	}
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}

	created, err := s.reservations.Create(ctx, &reservation.Reservation{
		BookID:          bookID,
		ReaderID:        readerID,
		ReservationDate: time.Now(),
		Status:          reservation.StatusActive,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "reservation created",
		"reservation_id", created.ID, "book_id", bookID, "reader_id", readerID)
	return created, nil
}

// CancelReservation marks a reservation cancelled. Cancelling an already
// cancelled reservation is a no-op success.
func (s *Service) CancelReservation(ctx context.Context, reservationID int) error {
	rs, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if rs.Status == reservation.StatusCancelled {
		return nil
	}

	if err := s.reservations.UpdateStatus(ctx, reservationID, reservation.StatusCancelled); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "reservation cancelled", "reservation_id", reservationID)
	return nil
}

func (s *Service) GetReservation(ctx context.Context, id int) (*reservation.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *Service) ListReservations(ctx context.Context) ([]reservation.Reservation, error) {
	return s.reservations.GetAll(ctx)
}

func (s *Service) ListReaderReservations(ctx context.Context, readerID int) ([]reservation.Reservation, error) {
	return s.reservations.GetByReader(ctx, readerID)
}

// ReservationDetails is the joined reporting view used by the presentation
// layer.
func (s *Service) ReservationDetails(ctx context.Context) ([]reservation.Detail, error) {
	return s.reservations.Details(ctx)
}
