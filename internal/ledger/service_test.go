package ledger_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"library-service/internal/app"
	"library-service/internal/book"
	"library-service/internal/fine"
	"library-service/internal/ledger"
	"library-service/internal/loan"
	"library-service/internal/metrics"
	"library-service/internal/reader"
	"library-service/internal/reservation"
	"library-service/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var allTables = []string{"books", "readers", "librarians", "loans", "reservations", "fines"}

func insertBook(t *testing.T, db *bun.DB, title, author, isbn string, total, available int) *book.Book {
	t.Helper()
	b := &book.Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     total,
		AvailableCopies: available,
	}
	_, err := db.NewInsert().Model(b).Exec(context.Background())
	require.NoError(t, err)
	return b
}

func insertReader(t *testing.T, db *bun.DB, name, card string, status reader.Status) *reader.Reader {
	t.Helper()
	r := &reader.Reader{
		Name:       name,
		CardNumber: card,
		Password:   "x",
		Status:     status,
	}
	_, err := db.NewInsert().Model(r).Exec(context.Background())
	require.NoError(t, err)
	return r
}

func getBook(t *testing.T, db *bun.DB, id int) *book.Book {
	t.Helper()
	b := new(book.Book)
	err := db.NewSelect().Model(b).Where("b.id = ?", id).Scan(context.Background())
	require.NoError(t, err)
	return b
}

func TestLedgerService_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, app.Models()...)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	svc := ledger.NewService(pgContainer.DB, logger, metrics.NewMock())
	ctx := context.Background()

	t.Run("AddBook_StartsWithAllCopiesAvailable", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)

		created, err := svc.AddBook(ctx, ledger.AddBookParams{
			Title:       "Мастер и Маргарита",
			Author:      "М.А. Булгаков",
			ISBN:        "978-5-389-00003-5",
			Year:        1967,
			Genre:       "Фантастика",
			TotalCopies: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, created.AvailableCopies)
		assert.Equal(t, 2, created.TotalCopies)
	})

	t.Run("AddBook_DuplicateISBN", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		insertBook(t, pgContainer.DB, "Old", "Someone", "isbn-dup", 1, 1)

		_, err := svc.AddBook(ctx, ledger.AddBookParams{
			Title:       "New",
			Author:      "Someone Else",
			ISBN:        "isbn-dup",
			TotalCopies: 1,
		})
		assert.ErrorIs(t, err, book.ErrDuplicateISBN)
	})

	t.Run("AddBook_MissingRequiredFields", func(t *testing.T) {
		_, err := svc.AddBook(ctx, ledger.AddBookParams{Author: "No Title", TotalCopies: 1})
		assert.ErrorIs(t, err, ledger.ErrInvalidInput)

		_, err = svc.AddBook(ctx, ledger.AddBookParams{Title: "No Author", TotalCopies: 1})
		assert.ErrorIs(t, err, ledger.ErrInvalidInput)
	})

	t.Run("SearchBooks_CaseInsensitiveOrderedByTitle", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		insertBook(t, pgContainer.DB, "Война и мир", "Л.Н. Толстой", "s-1", 1, 1)
		insertBook(t, pgContainer.DB, "Анна Каренина", "Л.Н. Толстой", "s-2", 1, 1)
		insertBook(t, pgContainer.DB, "Преступление и наказание", "Ф.М. Достоевский", "s-3", 1, 1)

		results, err := svc.SearchBooks(ctx, "толстой")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Анна Каренина", results[0].Title)
		assert.Equal(t, "Война и мир", results[1].Title)

		byISBN, err := svc.SearchBooks(ctx, "s-3")
		require.NoError(t, err)
		require.Len(t, byISBN, 1)
		assert.Equal(t, "Преступление и наказание", byISBN[0].Title)
	})

	t.Run("SearchBooks_EmptyQueryRejected", func(t *testing.T) {
		_, err := svc.SearchBooks(ctx, "   ")
		assert.ErrorIs(t, err, ledger.ErrEmptyQuery)
	})

	t.Run("LoanLifecycle_EndToEnd", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		b := insertBook(t, pgContainer.DB, "Война и мир", "Л.Н. Толстой", "e2e-1", 5, 3)
		r1 := insertReader(t, pgContainer.DB, "Иванов Иван", "READER001", reader.StatusActive)

		created, err := svc.CreateLoan(ctx, b.ID, r1.ID, 30)
		require.NoError(t, err)
		assert.Equal(t, loan.StatusActive, created.Status)
		assert.WithinDuration(t, created.IssueDate.AddDate(0, 0, 30), created.DueDate, time.Second)
		assert.Equal(t, 2, getBook(t, pgContainer.DB, b.ID).AvailableCopies)

		returned, err := svc.ReturnLoan(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, loan.StatusReturned, returned.Status)
		require.NotNil(t, returned.ReturnDate)
		assert.Equal(t, 3, getBook(t, pgContainer.DB, b.ID).AvailableCopies)
	})

	t.Run("CreateLoan_DefaultDuration", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		b := insertBook(t, pgContainer.DB, "Some Title", "Someone", "d-1", 1, 1)
		r1 := insertReader(t, pgContainer.DB, "Reader", "CARD-D1", reader.StatusActive)

		created, err := svc.CreateLoan(ctx, b.ID, r1.ID, 0)
		require.NoError(t, err)
		assert.WithinDuration(t, created.IssueDate.AddDate(0, 0, ledger.DefaultLoanDurationDays), created.DueDate, time.Second)
	})

	t.Run("CreateLoan_NoCopiesNoSideEffects", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		b := insertBook(t, pgContainer.DB, "Sold Out", "Someone", "n-1", 2, 0)
		r1 := insertReader(t, pgContainer.DB, "Reader", "CARD-N1", reader.StatusActive)

		_, err := svc.CreateLoan(ctx, b.ID, r1.ID, 30)
		assert.ErrorIs(t, err, ledger.ErrBookNotAvailable)

		loans, err := svc.ListLoans(ctx)
		require.NoError(t, err)
		assert.Empty(t, loans)
		assert.Equal(t, 0, getBook(t, pgContainer.DB, b.ID).AvailableCopies)
	})

	t.Run("CreateLoan_BlockedReaderNoSideEffects", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		b := insertBook(t, pgContainer.DB, "Any Book", "Someone", "bl-1", 3, 3)
		r2 := insertReader(t, pgContainer.DB, "Петрова Мария", "READER002", reader.StatusBlocked)

		_, err := svc.CreateLoan(ctx, b.ID, r2.ID, 30)
		assert.ErrorIs(t, err, ledger.ErrReaderBlocked)

		loans, err := svc.ListLoans(ctx)
		require.NoError(t, err)
		assert.Empty(t, loans)
		assert.Equal(t, 3, getBook(t, pgContainer.DB, b.ID).AvailableCopies)
	})

	t.Run("CreateLoan_UnpaidFineBlocksEvenIfStatusDrifted", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		b := insertBook(t, pgContainer.DB, "Any Book", "Someone", "bl-2", 1, 1)
		// Status says active but an unpaid fine exists; the fine wins.
		r := insertReader(t, pgContainer.DB, "Drifted", "CARD-BL2", reader.StatusActive)
		_, err := pgContainer.DB.NewInsert().Model(&fine.Fine{
			ReaderID: r.ID, Amount: 50, Reason: "late", Status: fine.StatusUnpaid,
		}).Exec(ctx)
		require.NoError(t, err)

		_, err = svc.CreateLoan(ctx, b.ID, r.ID, 30)
		assert.ErrorIs(t, err, ledger.ErrReaderBlocked)
	})

	t.Run("ReturnLoan_SecondReturnFails", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		b := insertBook(t, pgContainer.DB, "Once Only", "Someone", "r-1", 1, 1)
		r1 := insertReader(t, pgContainer.DB, "Reader", "CARD-R1", reader.StatusActive)

		created, err := svc.CreateLoan(ctx, b.ID, r1.ID, 30)
		require.NoError(t, err)

		_, err = svc.ReturnLoan(ctx, created.ID)
		require.NoError(t, err)

		_, err = svc.ReturnLoan(ctx, created.ID)
		assert.ErrorIs(t, err, loan.ErrLoanNotFound)
		// No double increment.
		assert.Equal(t, 1, getBook(t, pgContainer.DB, b.ID).AvailableCopies)
	})

	t.Run("ReturnLoan_UnknownID", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)

		_, err := svc.ReturnLoan(ctx, 4242)
		assert.ErrorIs(t, err, loan.ErrLoanNotFound)
	})

	t.Run("AddFine_BlocksReader", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		r := insertReader(t, pgContainer.DB, "Fined", "CARD-F1", reader.StatusActive)

		created, err := svc.AddFine(ctx, ledger.AddFineParams{ReaderID: r.ID, Amount: 100, Reason: "late"})
		require.NoError(t, err)
		assert.Equal(t, fine.StatusUnpaid, created.Status)

		unpaid, err := svc.HasUnpaidFines(ctx, r.ID)
		require.NoError(t, err)
		assert.True(t, unpaid)

		got, err := svc.GetReader(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, reader.StatusBlocked, got.Status)
	})

	t.Run("AddFine_InvalidInput", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		r := insertReader(t, pgContainer.DB, "Fined", "CARD-F2", reader.StatusActive)

		_, err := svc.AddFine(ctx, ledger.AddFineParams{ReaderID: r.ID, Amount: 0, Reason: "late"})
		assert.ErrorIs(t, err, ledger.ErrInvalidInput)

		_, err = svc.AddFine(ctx, ledger.AddFineParams{ReaderID: r.ID, Amount: 10})
		assert.ErrorIs(t, err, ledger.ErrInvalidInput)
	})

	t.Run("PayFine_DoesNotAutoUnblock", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		r := insertReader(t, pgContainer.DB, "Fined", "CARD-F3", reader.StatusActive)

		created, err := svc.AddFine(ctx, ledger.AddFineParams{ReaderID: r.ID, Amount: 100, Reason: "late"})
		require.NoError(t, err)

		require.NoError(t, svc.SetFineStatus(ctx, created.ID, fine.StatusPaid))

		unpaid, err := svc.HasUnpaidFines(ctx, r.ID)
		require.NoError(t, err)
		assert.False(t, unpaid)

		// Still blocked: reinstatement is an explicit librarian action.
		got, err := svc.GetReader(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, reader.StatusBlocked, got.Status)

		require.NoError(t, svc.SetReaderStatus(ctx, r.ID, reader.StatusActive))
		got, err = svc.GetReader(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, reader.StatusActive, got.Status)
	})

	t.Run("UnblockRefusedWhileFinesRemain", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		r := insertReader(t, pgContainer.DB, "Fined", "CARD-F4", reader.StatusActive)

		first, err := svc.AddFine(ctx, ledger.AddFineParams{ReaderID: r.ID, Amount: 100, Reason: "late"})
		require.NoError(t, err)
		_, err = svc.AddFine(ctx, ledger.AddFineParams{ReaderID: r.ID, Amount: 25, Reason: "damaged cover"})
		require.NoError(t, err)

		require.NoError(t, svc.SetFineStatus(ctx, first.ID, fine.StatusPaid))

		err = svc.SetReaderStatus(ctx, r.ID, reader.StatusActive)
		assert.ErrorIs(t, err, ledger.ErrOutstandingFines)

		got, err := svc.GetReader(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, reader.StatusBlocked, got.Status)
	})

	t.Run("Reservation_Roundtrip", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		// Zero available copies: reservations are requests, not holds.
		b := insertBook(t, pgContainer.DB, "Checked Out", "Someone", "rs-1", 1, 0)
		r := insertReader(t, pgContainer.DB, "Reserver", "CARD-RS1", reader.StatusActive)

		created, err := svc.CreateReservation(ctx, b.ID, r.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusActive, created.Status)

		require.NoError(t, svc.CancelReservation(ctx, created.ID))

		got, err := svc.GetReservation(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, got.Status)

		// Cancelling again is a no-op success.
		require.NoError(t, svc.CancelReservation(ctx, created.ID))

		// Availability never moved.
		assert.Equal(t, 0, getBook(t, pgContainer.DB, b.ID).AvailableCopies)
	})

	t.Run("CancelReservation_UnknownID", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)

		err := svc.CancelReservation(ctx, 4242)
		assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
	})

	t.Run("CreateReservation_RequiresExistingBookAndReader", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		b := insertBook(t, pgContainer.DB, "Exists", "Someone", "rs-2", 1, 1)
		r := insertReader(t, pgContainer.DB, "Exists", "CARD-RS2", reader.StatusActive)

		_, err := svc.CreateReservation(ctx, b.ID, 4242)
		assert.ErrorIs(t, err, reader.ErrReaderNotFound)

		_, err = svc.CreateReservation(ctx, 4242, r.ID)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("ReportingViews_JoinNames", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		b := insertBook(t, pgContainer.DB, "Война и мир", "Л.Н. Толстой", "v-1", 2, 2)
		r := insertReader(t, pgContainer.DB, "Иванов Иван", "CARD-V1", reader.StatusActive)

		created, err := svc.CreateLoan(ctx, b.ID, r.ID, 14)
		require.NoError(t, err)
		_, err = svc.CreateReservation(ctx, b.ID, r.ID)
		require.NoError(t, err)
		_, err = svc.AddFine(ctx, ledger.AddFineParams{ReaderID: r.ID, Amount: 12.5, Reason: "late"})
		require.NoError(t, err)

		loanDetails, err := svc.ActiveLoanDetails(ctx)
		require.NoError(t, err)
		require.Len(t, loanDetails, 1)
		assert.Equal(t, created.ID, loanDetails[0].LoanID)
		assert.Equal(t, "Война и мир", loanDetails[0].BookTitle)
		assert.Equal(t, "Иванов Иван", loanDetails[0].ReaderName)

		rsDetails, err := svc.ReservationDetails(ctx)
		require.NoError(t, err)
		require.Len(t, rsDetails, 1)
		assert.Equal(t, "Война и мир", rsDetails[0].BookTitle)

		fineDetails, err := svc.FineDetails(ctx)
		require.NoError(t, err)
		require.Len(t, fineDetails, 1)
		assert.Equal(t, "Иванов Иван", fineDetails[0].ReaderName)
		assert.Equal(t, 12.5, fineDetails[0].Amount)
	})

	t.Run("ReturnedLoansLeaveActiveView", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		b := insertBook(t, pgContainer.DB, "Short Stay", "Someone", "v-2", 1, 1)
		r := insertReader(t, pgContainer.DB, "Reader", "CARD-V2", reader.StatusActive)

		created, err := svc.CreateLoan(ctx, b.ID, r.ID, 7)
		require.NoError(t, err)
		_, err = svc.ReturnLoan(ctx, created.ID)
		require.NoError(t, err)

		loanDetails, err := svc.ActiveLoanDetails(ctx)
		require.NoError(t, err)
		assert.Empty(t, loanDetails)
	})

	t.Run("Snapshot_CountsEverything", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, allTables...)
		b := insertBook(t, pgContainer.DB, "Book", "Someone", "sn-1", 1, 1)
		r := insertReader(t, pgContainer.DB, "Reader", "CARD-SN1", reader.StatusActive)
		_, err := svc.CreateReservation(ctx, b.ID, r.ID)
		require.NoError(t, err)

		snap, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Books, 1)
		assert.Len(t, snap.Readers, 1)
		assert.Len(t, snap.Reservations, 1)
		assert.Empty(t, snap.Loans)
		assert.Empty(t, snap.Fines)
		assert.Equal(t, 3, snap.TotalRecords)
		assert.False(t, snap.TakenAt.IsZero())
	})
}
