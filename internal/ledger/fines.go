package ledger

import (
	"context"
	"fmt"

	"library-service/internal/fine"
	"library-service/internal/reader"

	"github.com/uptrace/bun"
)

type AddFineParams struct {
	ReaderID int     `validate:"gt=0"`
	Amount   float64 `validate:"gt=0"`
	Reason   string  `validate:"required"`
}

// AddFine records an unpaid fine and unconditionally blocks the owning
// reader, first fine or not. Fine insert and status change commit together.
func (s *Service) AddFine(ctx context.Context, params AddFineParams) (*fine.Fine, error) {
	if err := s.validateInput(params); err != nil {
		return nil, err
	}

	var created *fine.Fine
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		readers := reader.NewRepository(tx, s.metrics)
		fines := fine.NewRepository(tx, s.metrics)

		if _, err := readers.GetByID(ctx, params.ReaderID); err != nil {
			return err
		}

		var err error
		created, err = fines.Create(ctx, &fine.Fine{
			ReaderID: params.ReaderID,
			Amount:   params.Amount,
			Reason:   params.Reason,
			Status:   fine.StatusUnpaid,
		})
		if err != nil {
			return err
		}

		return readers.UpdateStatus(ctx, params.ReaderID, reader.StatusBlocked)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fine added, reader blocked",
		"fine_id", created.ID, "reader_id", params.ReaderID, "amount", params.Amount)
	return created, nil
}

// SetFineStatus updates a single fine. Paying off the last fine does NOT
// reactivate the reader; reinstatement is a separate librarian decision made
// through SetReaderStatus.
func (s *Service) SetFineStatus(ctx context.Context, fineID int, status fine.Status) error {
	if status != fine.StatusPaid && status != fine.StatusUnpaid {
		return fmt.Errorf("%w: unknown fine status %q", ErrInvalidInput, status)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		fines := fine.NewRepository(tx, s.metrics)

		f, err := fines.GetByID(ctx, fineID)
		if err != nil {
			return err
		}

		if err := fines.UpdateStatus(ctx, fineID, status); err != nil {
			return err
		}

		if status == fine.StatusPaid {
			unpaid, err := fines.HasUnpaid(ctx, f.ReaderID)
			if err != nil {
				return err
			}
			if !unpaid {
				s.logger.InfoContext(ctx, "reader has no remaining unpaid fines; unblock requires librarian action",
					"reader_id", f.ReaderID)
			}
		}
		return nil
	})
}

// SetReaderStatus is the explicit librarian action on a reader account.
// Unblocking is refused while any unpaid fine remains.
func (s *Service) SetReaderStatus(ctx context.Context, readerID int, status reader.Status) error {
	if status != reader.StatusActive && status != reader.StatusBlocked {
		return fmt.Errorf("%w: unknown reader status %q", ErrInvalidInput, status)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		readers := reader.NewRepository(tx, s.metrics)
		fines := fine.NewRepository(tx, s.metrics)

		if _, err := readers.GetByID(ctx, readerID); err != nil {
			return err
		}

		if status == reader.StatusActive {
			unpaid, err := fines.HasUnpaid(ctx, readerID)
			if err != nil {
				return err
			}
			if unpaid {
				return ErrOutstandingFines
			}
		}

		if err := readers.UpdateStatus(ctx, readerID, status); err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "reader status changed", "reader_id", readerID, "status", status)
		return nil
	})
}

// HasUnpaidFines is the gate predicate used by loan creation; the
// presentation layer also uses it to gate its reservation flow.
func (s *Service) HasUnpaidFines(ctx context.Context, readerID int) (bool, error) {
	return s.fines.HasUnpaid(ctx, readerID)
}

func (s *Service) GetFine(ctx context.Context, id int) (*fine.Fine, error) {
	return s.fines.GetByID(ctx, id)
}

func (s *Service) ListFines(ctx context.Context) ([]fine.Fine, error) {
	return s.fines.GetAll(ctx)
}

func (s *Service) ListReaderFines(ctx context.Context, readerID int) ([]fine.Fine, error) {
	return s.fines.GetByReader(ctx, readerID)
}

// FineDetails is the joined reporting view used by the presentation layer.
func (s *Service) FineDetails(ctx context.Context) ([]fine.Detail, error) {
	return s.fines.Details(ctx)
}
