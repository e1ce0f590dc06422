package auth

import (
	"context"
	"errors"
	"log/slog"

	"library-service/internal/librarian"
	"library-service/internal/reader"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both an unknown principal and a
// wrong password, so callers can't probe which card numbers or usernames
// exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates readers by card number and librarians by username.
// Both use the same bcrypt comparison.
type Service struct {
	readers    *reader.Repository
	librarians *librarian.Repository
	logger     *slog.Logger
}

func NewService(readers *reader.Repository, librarians *librarian.Repository, logger *slog.Logger) *Service {
	return &Service{
		readers:    readers,
		librarians: librarians,
		logger:     logger,
	}
}

func (s *Service) AuthenticateReader(ctx context.Context, cardNumber, password string) (*reader.Reader, error) {
	rd, err := s.readers.GetByCardNumber(ctx, cardNumber)
	if err != nil {
		if errors.Is(err, reader.ErrReaderNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rd.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.InfoContext(ctx, "reader authenticated", "reader_id", rd.ID)
	return rd, nil
}

func (s *Service) AuthenticateLibrarian(ctx context.Context, username, password string) (*librarian.Librarian, error) {
	lb, err := s.librarians.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, librarian.ErrLibrarianNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(lb.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.InfoContext(ctx, "librarian authenticated", "librarian_id", lb.ID)
	return lb, nil
}
