package ledger

import (
	"context"

	"library-service/internal/librarian"
	"library-service/internal/reader"

	"golang.org/x/crypto/bcrypt"
)

type RegisterReaderParams struct {
	Name       string `validate:"required"`
	CardNumber string `validate:"required"`
	Contact    string
	Password   string `validate:"required,min=8"`
}

type RegisterLibrarianParams struct {
	Name     string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required,min=8"`
}

// RegisterReader creates an active reader account with a bcrypt-hashed
// password.
func (s *Service) RegisterReader(ctx context.Context, params RegisterReaderParams) (*reader.Reader, error) {
	if err := s.validateInput(params); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.readers.Create(ctx, &reader.Reader{
		Name:       params.Name,
		CardNumber: params.CardNumber,
		Contact:    params.Contact,
		Password:   string(hashed),
		Status:     reader.StatusActive,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "reader registered", "reader_id", created.ID, "card_number", created.CardNumber)
	return created, nil
}

func (s *Service) RegisterLibrarian(ctx context.Context, params RegisterLibrarianParams) (*librarian.Librarian, error) {
	if err := s.validateInput(params); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.librarians.Create(ctx, &librarian.Librarian{
		Name:     params.Name,
		Username: params.Username,
		Password: string(hashed),
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "librarian registered", "librarian_id", created.ID, "username", created.Username)
	return created, nil
}

func (s *Service) GetReader(ctx context.Context, id int) (*reader.Reader, error) {
	return s.readers.GetByID(ctx, id)
}

func (s *Service) ListReaders(ctx context.Context) ([]reader.Reader, error) {
	return s.readers.GetAll(ctx)
}

func (s *Service) GetLibrarian(ctx context.Context, id int) (*librarian.Librarian, error) {
	return s.librarians.GetByID(ctx, id)
}

func (s *Service) ListLibrarians(ctx context.Context) ([]librarian.Librarian, error) {
	return s.librarians.GetAll(ctx)
}
