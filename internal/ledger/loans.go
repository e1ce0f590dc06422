package ledger

import (
	"context"
	"time"

	"library-service/internal/book"
	"library-service/internal/fine"
	"library-service/internal/loan"
	"library-service/internal/reader"

	"github.com/uptrace/bun"
)

// CreateLoan issues a copy of a book to a reader. Preconditions: the reader
// exists and is not blocked by unpaid fines, the book exists and has a copy
// available. The loan insert and the availability decrement commit together
// or not at all.
func (s *Service) CreateLoan(ctx context.Context, bookID, readerID, durationDays int) (*loan.Loan, error) {
	if durationDays <= 0 {
		durationDays = DefaultLoanDurationDays
	}

	var created *loan.Loan
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		readers := reader.NewRepository(tx, s.metrics)
		books := book.NewRepository(tx, s.metrics)
		loans := loan.NewRepository(tx, s.metrics)
		fines := fine.NewRepository(tx, s.metrics)

		rd, err := readers.GetByID(ctx, readerID)
		if err != nil {
			return err
		}
		if rd.Status == reader.StatusBlocked {
			return ErrReaderBlocked
		}
		// The stored status is derived from fine state; re-check the source
		// of truth in case they drifted.
		unpaid, err := fines.HasUnpaid(ctx, readerID)
		if err != nil {
			return err
		}
		if unpaid {
			return ErrReaderBlocked
		}

		b, err := books.GetByID(ctx, bookID)
		if err != nil {
			return err
		}
		if !b.Available() {
			return ErrBookNotAvailable
		}

		now := time.Now()
		created, err = loans.Create(ctx, &loan.Loan{
			BookID:    bookID,
			ReaderID:  readerID,
			IssueDate: now,
			DueDate:   now.AddDate(0, 0, durationDays),
			Status:    loan.StatusActive,
		})
		if err != nil {
			return err
		}

		return books.AdjustAvailability(ctx, bookID, -1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "loan created",
		"loan_id", created.ID, "book_id", bookID, "reader_id", readerID, "due_date", created.DueDate)
	return created, nil
}

// ReturnLoan closes an active loan and puts the copy back on the shelf. A
// second return of the same loan fails with loan.ErrLoanNotFound.
func (s *Service) ReturnLoan(ctx context.Context, loanID int) (*loan.Loan, error) {
	var returned *loan.Loan
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		books := book.NewRepository(tx, s.metrics)
		loans := loan.NewRepository(tx, s.metrics)

		var err error
		returned, err = loans.MarkReturned(ctx, loanID, time.Now())
		if err != nil {
			return err
		}

		return books.AdjustAvailability(ctx, returned.BookID, +1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "loan returned", "loan_id", loanID, "book_id", returned.BookID)
	return returned, nil
}

func (s *Service) GetLoan(ctx context.Context, id int) (*loan.Loan, error) {
	return s.loans.GetByID(ctx, id)
}

func (s *Service) ListLoans(ctx context.Context) ([]loan.Loan, error) {
	return s.loans.GetAll(ctx)
}

func (s *Service) ListReaderLoans(ctx context.Context, readerID int) ([]loan.Loan, error) {
	return s.loans.GetByReader(ctx, readerID)
}

// ActiveLoanDetails is the joined reporting view used by the presentation
// layer.
func (s *Service) ActiveLoanDetails(ctx context.Context) ([]loan.Detail, error) {
	return s.loans.ActiveDetails(ctx)
}
