package book

import (
	"github.com/uptrace/bun"
)

// Book is a title in the catalog. Copies are tracked in aggregate:
// available_copies must stay within [0, total_copies].
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              int    `bun:"id,pk,autoincrement" json:"id"`
	Title           string `bun:"title,notnull" json:"title" validate:"required"`
	Author          string `bun:"author,notnull" json:"author" validate:"required"`
	ISBN            string `bun:"isbn,unique,nullzero" json:"isbn"`
	Year            int    `bun:"year" json:"year"`
	Publisher       string `bun:"publisher" json:"publisher"`
	Genre           string `bun:"genre" json:"genre"`
	Description     string `bun:"description" json:"description"`
	TotalCopies     int    `bun:"total_copies,notnull" json:"totalCopies" validate:"min=1"`
	AvailableCopies int    `bun:"available_copies,notnull" json:"availableCopies"`
}

// Available reports whether at least one copy can be loaned out.
func (b *Book) Available() bool {
	return b.AvailableCopies > 0
}
