package library

import (
	"fmt"
	"strings"
)

// Check bundles the stateless field validators with membership tests against
// the loaded catalog. It never mutates anything.
type Check struct {
	catalog *Catalog
}

// NewCheck returns a validator over the given catalog snapshot.
func NewCheck(catalog *Catalog) *Check {
	return &Check{catalog: catalog}
}

// DetectEmptyValues reports whether any of the supplied arguments is blank
// after trimming. Operations pass every user-supplied argument here so a
// single blank value fails the whole call.
func DetectEmptyValues(values ...any) bool {
	for _, v := range values {
		if strings.TrimSpace(fmt.Sprint(v)) == "" {
			return true
		}
	}
	return false
}

// IsValidAge reports whether age is within the accepted 13-120 range.
func IsValidAge(age int) bool {
	return age >= 13 && age <= 120
}

// IsValidEmail reports whether email has exactly one "@" and a gmail.com or
// yahoo.com domain, case-insensitively.
func IsValidEmail(email string) bool {
	if strings.Count(email, "@") != 1 {
		return false
	}
	_, domain, _ := strings.Cut(email, "@")
	switch strings.ToLower(domain) {
	case "gmail.com", "yahoo.com":
		return true
	}
	return false
}

// IsValidRole reports whether role is a recognized account role,
// case-insensitively.
func IsValidRole(role string) bool {
	switch strings.ToLower(role) {
	case RoleMember, RoleLibrarian:
		return true
	}
	return false
}

// IsValidQuantity reports whether quantity is a non-negative count.
func IsValidQuantity(quantity int) bool {
	return quantity >= 0
}

// UserExists reports whether a username is registered.
func (c *Check) UserExists(username string) bool {
	_, ok := c.catalog.Accounts[username]
	return ok
}

// BookExists reports whether a title is in the library.
func (c *Check) BookExists(title string) bool {
	_, ok := c.catalog.Library[title]
	return ok
}

// AuthorExists reports whether an author is known.
func (c *Check) AuthorExists(name string) bool {
	_, ok := c.catalog.Authors[name]
	return ok
}

// BorrowBookExists reports whether any borrow record exists for a title.
func (c *Check) BorrowBookExists(title string) bool {
	return len(c.catalog.Borrows[title]) > 0
}

// BorrowUserExists reports whether a username appears as a borrower anywhere.
func (c *Check) BorrowUserExists(username string) bool {
	for _, borrowers := range c.catalog.Borrows {
		if _, ok := borrowers[username]; ok {
			return true
		}
	}
	return false
}

// BorrowExists reports whether the (title, borrower) compound key exists.
func (c *Check) BorrowExists(title, borrower string) bool {
	_, ok := c.catalog.Borrows[title][borrower]
	return ok
}

// FieldExists reports whether any record type carries the given field name.
// Records are fixed-shape, so membership reduces to the union of the four
// record types' JSON field names.
func (c *Check) FieldExists(field string) bool {
	_, ok := knownFields[field]
	return ok
}
