// Package seed loads the sample catalog. It is opt-in: nothing here runs
// unless an operator asks for it explicitly.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"library-service/internal/book"
	"library-service/internal/librarian"
	"library-service/internal/reader"

	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// Default credentials for the sample accounts; meant for local development
// only.
const (
	sampleReaderPassword    = "reader-pass-1"
	sampleLibrarianPassword = "librarian-pass-1"
)

// Run inserts the sample catalog, two readers and two librarians. It is
// idempotent in the cheapest way possible: it refuses to run against a
// non-empty books table.
func Run(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	count, err := db.NewSelect().Model((*book.Book)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		logger.Info("seed skipped: catalog is not empty", "books", count)
		return nil
	}

	books := []book.Book{
		{
			Title:           "Война и мир",
			Author:          "Л.Н. Толстой",
			ISBN:            "978-5-389-00001-1",
			Year:            1869,
			Publisher:       "АСТ",
			Genre:           "Роман",
			TotalCopies:     5,
			AvailableCopies: 5,
		},
		{
			Title:           "Преступление и наказание",
			Author:          "Ф.М. Достоевский",
			ISBN:            "978-5-389-00002-8",
			Year:            1866,
			Publisher:       "Эксмо",
			Genre:           "Роман",
			TotalCopies:     3,
			AvailableCopies: 3,
		},
		{
			Title:           "Мастер и Маргарита",
			Author:          "М.А. Булгаков",
			ISBN:            "978-5-389-00003-5",
			Year:            1967,
			Publisher:       "Азбука",
			Genre:           "Фантастика",
			TotalCopies:     2,
			AvailableCopies: 2,
		},
	}

	readerHash, err := bcrypt.GenerateFromPassword([]byte(sampleReaderPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	librarianHash, err := bcrypt.GenerateFromPassword([]byte(sampleLibrarianPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	readers := []reader.Reader{
		{Name: "Иванов Иван", CardNumber: "READER001", Contact: "ivanov@mail.ru", Password: string(readerHash), Status: reader.StatusActive},
		{Name: "Петрова Мария", CardNumber: "READER002", Contact: "petrova@mail.ru", Password: string(readerHash), Status: reader.StatusActive},
	}

	librarians := []librarian.Librarian{
		{Name: "Смирнова Анна", Username: "asmirnova", Password: string(librarianHash)},
		{Name: "Козлов Дмитрий", Username: "dkozlov", Password: string(librarianHash)},
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&books).Exec(ctx); err != nil {
			return fmt.Errorf("seed books: %w", err)
		}
		if _, err := tx.NewInsert().Model(&readers).Exec(ctx); err != nil {
			return fmt.Errorf("seed readers: %w", err)
		}
		if _, err := tx.NewInsert().Model(&librarians).Exec(ctx); err != nil {
			return fmt.Errorf("seed librarians: %w", err)
		}

		logger.Info("sample data seeded",
			"books", len(books), "readers", len(readers), "librarians", len(librarians))
		return nil
	})
}
