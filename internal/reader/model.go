package reader

import (
	"github.com/uptrace/bun"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// Reader is a library patron. Status is stored but derived: a reader is
// blocked while any of their fines is unpaid. Blocking happens automatically
// when a fine is issued; unblocking is always an explicit librarian action.
type Reader struct {
	bun.BaseModel `bun:"table:readers,alias:r"`

	ID         int    `bun:"id,pk,autoincrement" json:"id"`
	Name       string `bun:"name,notnull" json:"name" validate:"required"`
	CardNumber string `bun:"card_number,unique,notnull" json:"cardNumber" validate:"required"`
	Contact    string `bun:"contact" json:"contact"`
	Password   string `bun:"password,notnull" json:"-"`
	Status     Status `bun:"status,notnull,default:'active'" json:"status"`
}
