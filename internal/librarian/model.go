package librarian

import (
	"github.com/uptrace/bun"
)

// Librarian has no status field: matching credentials are the only
// authorization check.
type Librarian struct {
	bun.BaseModel `bun:"table:librarians,alias:lb"`

	ID       int    `bun:"id,pk,autoincrement" json:"id"`
	Name     string `bun:"name,notnull" json:"name" validate:"required"`
	Username string `bun:"username,unique,notnull" json:"username" validate:"required"`
	Password string `bun:"password,notnull" json:"-"`
}
