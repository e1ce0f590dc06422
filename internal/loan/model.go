package loan

import (
	"time"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
)

// Loan records one copy of a book being out with a reader. There is no stored
// "overdue" state; overdue-ness is computed against the due date.
type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:l"`

	ID         int        `bun:"id,pk,autoincrement" json:"id"`
	BookID     int        `bun:"book_id,notnull" json:"bookId"`
	ReaderID   int        `bun:"reader_id,notnull" json:"readerId"`
	IssueDate  time.Time  `bun:"issue_date,notnull" json:"issueDate"`
	DueDate    time.Time  `bun:"due_date,notnull" json:"dueDate"`
	ReturnDate *time.Time `bun:"return_date" json:"returnDate,omitempty"`
	Status     Status     `bun:"status,notnull,default:'active'" json:"status"`
}

// DaysOverdue returns how many whole days past due the loan is at the given
// moment, never negative. Display only, never persisted.
func (l *Loan) DaysOverdue(now time.Time) int {
	if !now.After(l.DueDate) {
		return 0
	}
	return int(now.Sub(l.DueDate).Hours() / 24)
}

// Detail is the joined reporting row for active loans.
type Detail struct {
	LoanID     int       `bun:"loan_id" json:"loanId"`
	BookTitle  string    `bun:"book_title" json:"bookTitle"`
	ReaderName string    `bun:"reader_name" json:"readerName"`
	IssueDate  time.Time `bun:"issue_date" json:"issueDate"`
	DueDate    time.Time `bun:"due_date" json:"dueDate"`
}
