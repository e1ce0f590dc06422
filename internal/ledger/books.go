package ledger

import (
	"context"
	"strings"

	"library-service/internal/book"
)

type AddBookParams struct {
	Title       string `validate:"required"`
	Author      string `validate:"required"`
	ISBN        string
	Year        int
	Publisher   string
	Genre       string
	Description string
	TotalCopies int `validate:"min=1"`
}

// AddBook inserts a new title. Every copy starts on the shelf:
// available_copies equals total_copies at creation.
func (s *Service) AddBook(ctx context.Context, params AddBookParams) (*book.Book, error) {
	if err := s.validateInput(params); err != nil {
		return nil, err
	}

	b := &book.Book{
		Title:           params.Title,
		Author:          params.Author,
		ISBN:            params.ISBN,
		Year:            params.Year,
		Publisher:       params.Publisher,
		Genre:           params.Genre,
		Description:     params.Description,
		TotalCopies:     params.TotalCopies,
		AvailableCopies: params.TotalCopies,
	}

	created, err := s.books.Create(ctx, b)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "book added", "book_id", created.ID, "title", created.Title)
	return created, nil
}

func (s *Service) GetBook(ctx context.Context, id int) (*book.Book, error) {
	return s.books.GetByID(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context) ([]book.Book, error) {
	return s.books.GetAll(ctx)
}

// SearchBooks rejects an empty query instead of returning the full catalog;
// listing everything is ListBooks' job.
func (s *Service) SearchBooks(ctx context.Context, query string) ([]book.Book, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	return s.books.Search(ctx, query)
}
