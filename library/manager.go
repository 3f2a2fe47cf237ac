package library

import (
	"log/slog"
	"strings"
	"time"
)

// Manager composes the validator and the record store into the library's
// business rules. Every operation follows the same guard-then-act pattern:
// blank checks first, existence checks second, field rules last, and only
// then a store mutation. The first failing guard short-circuits the call, so
// no operation partially applies.
//
// Role gating (librarian vs member commands) is the front end's job; the
// manager trusts its caller.
type Manager struct {
	store *Store
	check *Check
}

// NewManager opens (or creates) the JSON catalog at storagePath.
func NewManager(storagePath string) (*Manager, error) {
	store, err := NewStore(storagePath)
	if err != nil {
		return nil, err
	}
	return &Manager{store: store, check: NewCheck(store.Catalog())}, nil
}

// Store exposes the underlying record store.
func (m *Manager) Store() *Store { return m.store }

// Catalog exposes the loaded document for read-only display and export.
func (m *Manager) Catalog() *Catalog { return m.store.Catalog() }

// ------------------ User operations ------------------

// CreateUser registers a new member account with a generated unique ID and
// the default borrow allowance.
func (m *Manager) CreateUser(username, email string, age int) error {
	if DetectEmptyValues(username, email, age) {
		return ErrEmptyValue
	}
	if m.check.UserExists(username) {
		return &NameTakenError{Kind: "user", Name: username}
	}
	if !IsValidEmail(email) {
		return ErrInvalidEmail
	}

	existing := make(map[string]struct{}, len(m.store.Catalog().Accounts))
	for _, acct := range m.store.Catalog().Accounts {
		existing[acct.ID] = struct{}{}
	}

	acct := &Account{
		Email:           email,
		Age:             age,
		ID:              GenerateUniqueID(existing),
		Role:            RoleMember,
		RemainingBorrow: DefaultBorrowLimit,
		BorrowLimit:     DefaultBorrowLimit,
		BorrowedBooks:   []string{},
	}
	slog.Debug("creating user", "username", username, "id", acct.ID)
	return m.store.CreateAccount(username, acct)
}

// protectedAccountFields may never change through the generic update path.
var protectedAccountFields = map[string]struct{}{
	"id":               {},
	"remaining_borrow": {},
	"borrow_limit":     {},
	"password_hash":    {},
}

// UpdateUser changes one mutable account field after the full guard chain.
func (m *Manager) UpdateUser(username, field string, value any) error {
	if DetectEmptyValues(username, field, value) {
		return ErrEmptyValue
	}
	if !m.check.UserExists(username) {
		return &NotFoundError{Kind: "user", Name: username}
	}
	if !m.check.FieldExists(field) {
		return &NotFoundError{Kind: "field", Name: field}
	}
	if field == "age" {
		age, ok := value.(int)
		if !ok || !IsValidAge(age) {
			return ErrInvalidAge
		}
	}
	if field == "role" {
		role, ok := value.(string)
		if !ok || !IsValidRole(role) {
			return &InvalidChangeError{Field: "role", Reason: "must be librarian or member"}
		}
	}
	if _, protected := protectedAccountFields[field]; protected {
		return &InvalidChangeError{Field: field}
	}
	return m.store.UpdateEntry(DatasetAccounts, username, field, value)
}

// RemoveUser deletes the account. Borrow records are history and are kept;
// deleting them is a separate explicit operation.
func (m *Manager) RemoveUser(username string) error {
	if DetectEmptyValues(username) {
		return ErrEmptyValue
	}
	if !m.check.UserExists(username) {
		return &NotFoundError{Kind: "user", Name: username}
	}
	return m.store.DeleteEntry(DatasetAccounts, username)
}

// ------------------ Book operations ------------------

// AddBook stores a new title with default metadata. The author record is
// created automatically when unknown.
func (m *Manager) AddBook(title, author string, quantity int) error {
	return m.AddBookDetailed(title, author, quantity, "unknown", "unknown", RestrictionAllAges, true)
}

// AddBookDetailed stores a new title with full metadata.
func (m *Manager) AddBookDetailed(title, author string, quantity int, datePublished, genre, ageRestriction string, isAvailable bool) error {
	if DetectEmptyValues(title, author, quantity, datePublished, genre, ageRestriction, isAvailable) {
		return ErrEmptyValue
	}
	if m.check.BookExists(title) {
		return &NameTakenError{Kind: "book", Name: title}
	}
	if !IsValidQuantity(quantity) {
		return ErrInvalidQuantity
	}

	book := &Book{
		Author:         author,
		Quantity:       quantity,
		DatePublished:  datePublished,
		Genre:          genre,
		AgeRestriction: ageRestriction,
		IsAvailable:    isAvailable,
	}
	slog.Debug("adding book", "title", title, "author", author, "quantity", quantity)
	return m.store.CreateBook(title, book)
}

// UpdateBook changes one book field after the full guard chain.
func (m *Manager) UpdateBook(title, field string, value any) error {
	if DetectEmptyValues(title, field, value) {
		return ErrEmptyValue
	}
	if !m.check.BookExists(title) {
		return &NotFoundError{Kind: "book", Name: title}
	}
	if !m.check.FieldExists(field) {
		return &NotFoundError{Kind: "field", Name: field}
	}
	if field == "quantity" {
		quantity, ok := value.(int)
		if !ok || !IsValidQuantity(quantity) {
			return ErrInvalidQuantity
		}
	}
	if field == "age_restriction" {
		restriction, ok := value.(string)
		if !ok || (restriction != RestrictionAllAges && restriction != RestrictionMature) {
			return &InvalidChangeError{Field: field, Reason: "must be all-ages or mature"}
		}
	}
	if field == "is_available" {
		if _, ok := value.(bool); !ok {
			return &InvalidChangeError{Field: field, Reason: "must be true or false"}
		}
	}
	return m.store.UpdateEntry(DatasetLibrary, title, field, value)
}

// RemoveBook deletes the title from the library. Existing borrow records for
// it are kept as history.
func (m *Manager) RemoveBook(title string) error {
	if DetectEmptyValues(title) {
		return ErrEmptyValue
	}
	if !m.check.BookExists(title) {
		return &NotFoundError{Kind: "book", Name: title}
	}
	return m.store.DeleteEntry(DatasetLibrary, title)
}

// ------------------ Author operations ------------------

// UpdateAuthor changes one author field. The books list mirrors the library
// collection and may not be edited directly.
func (m *Manager) UpdateAuthor(name, field string, value any) error {
	if DetectEmptyValues(name, field, value) {
		return ErrEmptyValue
	}
	if !m.check.AuthorExists(name) {
		return &NotFoundError{Kind: "author", Name: name}
	}
	if !m.check.FieldExists(field) {
		return &NotFoundError{Kind: "field", Name: field}
	}
	if field == "books" {
		return &InvalidChangeError{Field: field, Reason: "book lists are maintained from the library collection"}
	}
	return m.store.UpdateEntry(DatasetAuthors, name, field, value)
}

// ------------------ Borrow operations ------------------

// UpdateBorrowRecord edits one field of an existing borrow record. The
// borrowed_on and borrow_deadline timestamps are immutable once set.
func (m *Manager) UpdateBorrowRecord(title, borrower, field string, value any) error {
	if DetectEmptyValues(title, borrower, field, value) {
		return ErrEmptyValue
	}
	if !m.check.BookExists(title) {
		return &NotFoundError{Kind: "book", Name: title}
	}
	if !m.check.UserExists(borrower) {
		return &NotFoundError{Kind: "user", Name: borrower}
	}
	if !m.check.BorrowBookExists(title) {
		return &NotFoundError{Kind: "borrowed book", Name: title}
	}
	if !m.check.BorrowUserExists(borrower) {
		return &NotFoundError{Kind: "borrower", Name: borrower}
	}
	if !m.check.FieldExists(field) {
		return &NotFoundError{Kind: "field", Name: field}
	}
	if field == "borrow_deadline" || field == "borrowed_on" {
		return &InvalidChangeError{Field: field}
	}
	return m.store.UpdateBorrow(title, borrower, field, value)
}

// RemoveBorrowRecord explicitly deletes a borrow record. Returns never do
// this; it exists for librarians cleaning up history.
func (m *Manager) RemoveBorrowRecord(title, borrower string) error {
	if DetectEmptyValues(title, borrower) {
		return ErrEmptyValue
	}
	if !m.check.BorrowExists(title, borrower) {
		return &NotFoundError{Kind: "borrow record", Name: title + "/" + borrower}
	}
	return m.store.DeleteBorrow(title, borrower)
}

// BorrowBook lends a title to a member: the borrow record is created with a
// two-week deadline and the store keeps borrowed_books, the borrow allowance
// and availability in sync.
func (m *Manager) BorrowBook(title, borrower string) error {
	if DetectEmptyValues(title, borrower) {
		return ErrEmptyValue
	}
	if !m.check.BookExists(title) {
		return &NotFoundError{Kind: "book", Name: title}
	}
	if !m.check.UserExists(borrower) {
		return &NotFoundError{Kind: "user", Name: borrower}
	}
	book := m.store.Catalog().Library[title]
	if !book.IsAvailable {
		return &BookUnavailableError{Title: title}
	}
	acct := m.store.Catalog().Accounts[borrower]
	if m.store.ActiveBorrowsBy(borrower) >= acct.BorrowLimit {
		return &BorrowLimitError{Username: borrower, Limit: acct.BorrowLimit}
	}

	borrowedOn := time.Now()
	rec := &Borrow{
		BorrowedOn:     borrowedOn,
		BorrowDeadline: borrowedOn.Add(BorrowPeriod),
		UserStatus:     StatusActive,
	}
	slog.Debug("borrowing book", "title", title, "borrower", borrower, "deadline", rec.BorrowDeadline)
	return m.store.CreateBorrow(title, borrower, rec)
}

// ReturnBook closes an active borrow: returned_on is stamped, the status
// becomes returned (or overdue when past the deadline), the allowance is
// restored and availability reconciled, all in one store call so the record
// is never persisted half-returned. The original timestamps are left
// untouched.
func (m *Manager) ReturnBook(title, borrower string) error {
	if DetectEmptyValues(title, borrower) {
		return ErrEmptyValue
	}
	if !m.check.BookExists(title) {
		return &NotFoundError{Kind: "book", Name: title}
	}
	if !m.check.UserExists(borrower) {
		return &NotFoundError{Kind: "user", Name: borrower}
	}
	rec, ok := m.store.Catalog().Borrows[title][borrower]
	if !ok || rec.Returned() {
		return &NotFoundError{Kind: "active borrow record", Name: title + "/" + borrower}
	}

	returnedOn := time.Now()
	status := StatusReturned
	if returnedOn.After(rec.BorrowDeadline) {
		status = StatusOverdue
	}
	slog.Debug("returning book", "title", title, "borrower", borrower, "status", status)
	return m.store.CompleteBorrow(title, borrower, returnedOn, status)
}

// ------------------ Queries ------------------

// IsAvailable reports whether a title can currently be borrowed.
func (m *Manager) IsAvailable(title string) (bool, error) {
	if DetectEmptyValues(title) {
		return false, ErrEmptyValue
	}
	if !m.check.BookExists(title) {
		return false, &NotFoundError{Kind: "book", Name: title}
	}
	if !m.store.Catalog().Library[title].IsAvailable {
		return false, &BookUnavailableError{Title: title}
	}
	return true, nil
}

// Search looks up one record by kind ("user", "book" or "author") and name.
func (m *Manager) Search(kind, name string) (any, error) {
	if DetectEmptyValues(kind, name) {
		return nil, ErrEmptyValue
	}
	switch strings.ToLower(kind) {
	case "user":
		if !m.check.UserExists(name) {
			return nil, &NotFoundError{Kind: "user", Name: name}
		}
		return m.store.Catalog().Accounts[name], nil
	case "book":
		if !m.check.BookExists(name) {
			return nil, &NotFoundError{Kind: "book", Name: name}
		}
		return m.store.Catalog().Library[name], nil
	case "author":
		if !m.check.AuthorExists(name) {
			return nil, &NotFoundError{Kind: "author", Name: name}
		}
		return m.store.Catalog().Authors[name], nil
	}
	return nil, ErrInvalidSearch
}

// UserBorrowHistory returns the titles a user has ever borrowed.
func (m *Manager) UserBorrowHistory(username string) ([]string, error) {
	if DetectEmptyValues(username) {
		return nil, ErrEmptyValue
	}
	if !m.check.UserExists(username) {
		return nil, &NotFoundError{Kind: "user", Name: username}
	}
	return m.store.Catalog().Accounts[username].BorrowedBooks, nil
}

// BookBorrowHistory returns every borrow record of a title, keyed by borrower.
func (m *Manager) BookBorrowHistory(title string) (map[string]*Borrow, error) {
	if DetectEmptyValues(title) {
		return nil, ErrEmptyValue
	}
	if !m.check.BookExists(title) {
		return nil, &NotFoundError{Kind: "book", Name: title}
	}
	if !m.check.BorrowBookExists(title) {
		return nil, &NotFoundError{Kind: "borrowed book", Name: title}
	}
	return m.store.Catalog().Borrows[title], nil
}

// GetWrittenBooks returns the titles attributed to an author.
func (m *Manager) GetWrittenBooks(name string) ([]string, error) {
	if DetectEmptyValues(name) {
		return nil, ErrEmptyValue
	}
	if !m.check.AuthorExists(name) {
		return nil, &NotFoundError{Kind: "author", Name: name}
	}
	return m.store.Catalog().Authors[name].Books, nil
}

// UserCount returns the total number of registered accounts.
func (m *Manager) UserCount() int { return m.store.UserCount() }

// BookCount returns the total number of titles in the library.
func (m *Manager) BookCount() int { return m.store.BookCount() }

// AuthorCount returns the total number of known authors.
func (m *Manager) AuthorCount() int { return m.store.AuthorCount() }

// Role returns the role of an account, for front-end command gating.
func (m *Manager) Role(username string) (string, error) {
	if DetectEmptyValues(username) {
		return "", ErrEmptyValue
	}
	acct, ok := m.store.Catalog().Accounts[username]
	if !ok {
		return "", &NotFoundError{Kind: "user", Name: username}
	}
	return acct.Role, nil
}
