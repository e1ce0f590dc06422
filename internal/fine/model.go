package fine

import (
	"github.com/uptrace/bun"
)

type Status string

const (
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"
)

// Fine is a monetary penalty against a reader. Any unpaid fine blocks the
// owning reader's account.
type Fine struct {
	bun.BaseModel `bun:"table:fines,alias:f"`

	ID       int     `bun:"id,pk,autoincrement" json:"id"`
	ReaderID int     `bun:"reader_id,notnull" json:"readerId"`
	Amount   float64 `bun:"amount,notnull" json:"amount" validate:"gt=0"`
	Reason   string  `bun:"reason,notnull" json:"reason" validate:"required"`
	Status   Status  `bun:"status,notnull,default:'unpaid'" json:"status"`
}

// Detail is the joined reporting row for fines.
type Detail struct {
	FineID     int     `bun:"fine_id" json:"fineId"`
	ReaderName string  `bun:"reader_name" json:"readerName"`
	Amount     float64 `bun:"amount" json:"amount"`
	Reason     string  `bun:"reason" json:"reason"`
	Status     Status  `bun:"status" json:"status"`
}
