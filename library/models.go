package library

import "time"

// Account roles.
const (
	RoleMember    = "member"
	RoleLibrarian = "librarian"
)

// Age restriction labels for books.
const (
	RestrictionAllAges = "all-ages"
	RestrictionMature  = "mature"
)

// Borrow statuses.
const (
	StatusActive   = "active"
	StatusReturned = "returned"
	StatusOverdue  = "overdue"
)

// DefaultBorrowLimit is the number of simultaneous borrows granted to a new account.
const DefaultBorrowLimit = 10

// BorrowPeriod is how long a member may keep a book before it is overdue.
const BorrowPeriod = 14 * 24 * time.Hour

// Account represents a registered user, keyed by username in the catalog.
// ID, RemainingBorrow, BorrowLimit and PasswordHash are protected: they are
// set by the domain layer and rejected by the generic update path.
type Account struct {
	Email           string   `json:"email"`
	Age             int      `json:"age"`
	ID              string   `json:"id"`
	Role            string   `json:"role"`
	RemainingBorrow int      `json:"remaining_borrow"`
	BorrowLimit     int      `json:"borrow_limit"`
	BorrowedBooks   []string `json:"borrowed_books"`
	PasswordHash    string   `json:"password_hash,omitempty"`
}

// Book represents one title in the library, keyed by title in the catalog.
type Book struct {
	Author         string `json:"author"`
	Quantity       int    `json:"quantity"`
	DatePublished  string `json:"date_published"`
	Genre          string `json:"genre"`
	AgeRestriction string `json:"age_restriction"`
	IsAvailable    bool   `json:"is_available"`
}

// Author represents a book author, keyed by name in the catalog. Books is the
// inverse of Book.Author and is kept in sync on every book add.
type Author struct {
	Age         string   `json:"age"`
	Birthday    string   `json:"birthday"`
	Nationality string   `json:"nationality"`
	Books       []string `json:"books"`
}

// Borrow records one (book, borrower) loan. Its presence under
// Catalog.Borrows[title][username] is what signals borrow history; returning a
// book mutates the record in place, it is never deleted automatically.
type Borrow struct {
	BorrowedOn     time.Time `json:"borrowed_on"`
	BorrowDeadline time.Time `json:"borrow_deadline"`
	ReturnedOn     time.Time `json:"returned_on"`
	UserStatus     string    `json:"user_status"`
}

// Returned reports whether the book has been handed back.
func (b *Borrow) Returned() bool { return !b.ReturnedOn.IsZero() }

// Catalog is the complete persisted state: four named collections written as a
// single JSON document.
type Catalog struct {
	Accounts map[string]*Account           `json:"accounts"`
	Library  map[string]*Book              `json:"library"`
	Authors  map[string]*Author            `json:"authors"`
	Borrows  map[string]map[string]*Borrow `json:"borrows"`
}

// NewCatalog returns an empty four-collection catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Accounts: map[string]*Account{},
		Library:  map[string]*Book{},
		Authors:  map[string]*Author{},
		Borrows:  map[string]map[string]*Borrow{},
	}
}

// Collection names as they appear as top-level keys in the JSON document.
const (
	DatasetAccounts = "accounts"
	DatasetLibrary  = "library"
	DatasetAuthors  = "authors"
	DatasetBorrows  = "borrows"
)
