package reservation

import (
	"time"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// Reservation is a request-for-notification, not a hold: it may be placed on
// a book with zero available copies and never turns into a loan by itself.
type Reservation struct {
	bun.BaseModel `bun:"table:reservations,alias:rs"`

	ID              int       `bun:"id,pk,autoincrement" json:"id"`
	BookID          int       `bun:"book_id,notnull" json:"bookId"`
	ReaderID        int       `bun:"reader_id,notnull" json:"readerId"`
	ReservationDate time.Time `bun:"reservation_date,notnull" json:"reservationDate"`
	Status          Status    `bun:"status,notnull,default:'active'" json:"status"`
}

// Detail is the joined reporting row for reservations.
type Detail struct {
	ReservationID   int       `bun:"reservation_id" json:"reservationId"`
	BookTitle       string    `bun:"book_title" json:"bookTitle"`
	ReaderName      string    `bun:"reader_name" json:"readerName"`
	ReservationDate time.Time `bun:"reservation_date" json:"reservationDate"`
	Status          Status    `bun:"status" json:"status"`
}
