package library

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Store owns the in-memory catalog and the single backing JSON file. Every
// mutation rewrites the whole file; there is no batching and no atomic rename,
// so exactly one process must own the file at a time.
type Store struct {
	path    string
	catalog *Catalog
}

// NewStore loads the catalog from path, creating the canonical empty document
// when the file is absent or unreadable. Corruption is swallowed: the caller
// always gets a usable store.
func NewStore(path string) (*Store, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	s := &Store{path: path, catalog: NewCatalog()}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, s.SaveChanges()
	}
	if err != nil {
		slog.Warn("storage unreadable, starting from empty catalog", "path", path, "err", err)
		return s, s.SaveChanges()
	}

	if err := json.Unmarshal(raw, s.catalog); err != nil {
		slog.Warn("storage corrupt, starting from empty catalog", "path", path, "err", err)
		s.catalog = NewCatalog()
		return s, s.SaveChanges()
	}

	// A hand-edited file may be missing collections; restore them.
	if s.catalog.Accounts == nil {
		s.catalog.Accounts = map[string]*Account{}
	}
	if s.catalog.Library == nil {
		s.catalog.Library = map[string]*Book{}
	}
	if s.catalog.Authors == nil {
		s.catalog.Authors = map[string]*Author{}
	}
	if s.catalog.Borrows == nil {
		s.catalog.Borrows = map[string]map[string]*Borrow{}
	}
	return s, nil
}

// Catalog exposes the loaded document. Callers treat it as a read-only
// snapshot; all mutation goes through the store methods so every change is
// persisted.
func (s *Store) Catalog() *Catalog { return s.catalog }

// SaveChanges serializes the entire catalog back to the backing file,
// overwriting it fully.
func (s *Store) SaveChanges() error {
	data, err := json.MarshalIndent(s.catalog, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

// CreateAccount inserts the account keyed by username. An existing key is
// overwritten; uniqueness is the caller's responsibility.
func (s *Store) CreateAccount(username string, a *Account) error {
	s.catalog.Accounts[username] = a
	return s.SaveChanges()
}

// CreateAuthor inserts the author keyed by name.
func (s *Store) CreateAuthor(name string, a *Author) error {
	s.catalog.Authors[name] = a
	return s.SaveChanges()
}

// CreateBook inserts the book keyed by title and keeps the author side of the
// relationship consistent: the author record is created when new and the
// title is appended to the author's book list exactly once.
func (s *Store) CreateBook(title string, b *Book) error {
	if _, ok := s.catalog.Authors[b.Author]; !ok {
		s.catalog.Authors[b.Author] = &Author{
			Age:         "unknown",
			Birthday:    "unknown",
			Nationality: "unknown",
			Books:       []string{},
		}
	}
	author := s.catalog.Authors[b.Author]
	if !contains(author.Books, title) {
		author.Books = append(author.Books, title)
	}
	s.catalog.Library[title] = b
	return s.SaveChanges()
}

// CreateBorrow inserts the borrow record under the (title, borrower) compound
// key, appends the title to the borrower's borrowed_books history and spends
// one unit of their borrow allowance. It also reconciles the book's
// availability against the remaining copies.
func (s *Store) CreateBorrow(title, borrower string, b *Borrow) error {
	if s.catalog.Borrows[title] == nil {
		s.catalog.Borrows[title] = map[string]*Borrow{}
	}
	s.catalog.Borrows[title][borrower] = b

	if acct, ok := s.catalog.Accounts[borrower]; ok {
		if !contains(acct.BorrowedBooks, title) {
			acct.BorrowedBooks = append(acct.BorrowedBooks, title)
		}
		if acct.RemainingBorrow > 0 {
			acct.RemainingBorrow--
		}
	}
	s.reconcileAvailability(title)
	return s.SaveChanges()
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

// UpdateEntry sets catalog[dataset][key][field] = value for the three flat
// collections. Any other dataset name is silently ignored; the nested borrow
// structure has its own update path.
func (s *Store) UpdateEntry(dataset, key, field string, value any) error {
	switch dataset {
	case DatasetAccounts:
		acct, ok := s.catalog.Accounts[key]
		if !ok {
			return &NotFoundError{Kind: "user", Name: key}
		}
		if err := setAccountField(acct, field, value); err != nil {
			return err
		}
	case DatasetLibrary:
		book, ok := s.catalog.Library[key]
		if !ok {
			return &NotFoundError{Kind: "book", Name: key}
		}
		if err := setBookField(book, field, value); err != nil {
			return err
		}
	case DatasetAuthors:
		author, ok := s.catalog.Authors[key]
		if !ok {
			return &NotFoundError{Kind: "author", Name: key}
		}
		if err := setAuthorField(author, field, value); err != nil {
			return err
		}
	default:
		return nil
	}
	return s.SaveChanges()
}

// CompleteBorrow closes a borrow as one persisted step: returned_on and
// user_status change together, the borrower's allowance is restored and the
// book's availability reconciled, so a single file write covers the whole
// return and a failed save leaves no half-returned record on disk.
func (s *Store) CompleteBorrow(title, borrower string, returnedOn time.Time, status string) error {
	rec, ok := s.catalog.Borrows[title][borrower]
	if !ok {
		return &NotFoundError{Kind: "borrow record", Name: title + "/" + borrower}
	}
	rec.ReturnedOn = returnedOn
	rec.UserStatus = status

	if acct, ok := s.catalog.Accounts[borrower]; ok && acct.RemainingBorrow < acct.BorrowLimit {
		acct.RemainingBorrow++
	}
	s.reconcileAvailability(title)
	return s.SaveChanges()
}

// UpdateBorrow sets catalog.borrows[title][borrower][field] = value.
func (s *Store) UpdateBorrow(title, borrower, field string, value any) error {
	rec, ok := s.catalog.Borrows[title][borrower]
	if !ok {
		return &NotFoundError{Kind: "borrow record", Name: title + "/" + borrower}
	}
	if err := setBorrowField(rec, field, value); err != nil {
		return err
	}
	return s.SaveChanges()
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

// DeleteEntry removes the keyed record from one of the three flat collections.
// A missing key is a lookup error, not a no-op.
func (s *Store) DeleteEntry(dataset, key string) error {
	switch dataset {
	case DatasetAccounts:
		if _, ok := s.catalog.Accounts[key]; !ok {
			return &NotFoundError{Kind: "user", Name: key}
		}
		delete(s.catalog.Accounts, key)
	case DatasetLibrary:
		if _, ok := s.catalog.Library[key]; !ok {
			return &NotFoundError{Kind: "book", Name: key}
		}
		delete(s.catalog.Library, key)
	case DatasetAuthors:
		if _, ok := s.catalog.Authors[key]; !ok {
			return &NotFoundError{Kind: "author", Name: key}
		}
		delete(s.catalog.Authors, key)
	default:
		return nil
	}
	return s.SaveChanges()
}

// DeleteBorrow removes the (title, borrower) borrow record.
func (s *Store) DeleteBorrow(title, borrower string) error {
	if _, ok := s.catalog.Borrows[title][borrower]; !ok {
		return &NotFoundError{Kind: "borrow record", Name: title + "/" + borrower}
	}
	delete(s.catalog.Borrows[title], borrower)
	return s.SaveChanges()
}

// ---------------------------------------------------------------------------
// Derived values
// ---------------------------------------------------------------------------

// UserCount returns the number of registered accounts.
func (s *Store) UserCount() int { return len(s.catalog.Accounts) }

// BookCount returns the number of titles in the library.
func (s *Store) BookCount() int { return len(s.catalog.Library) }

// AuthorCount returns the number of known authors.
func (s *Store) AuthorCount() int { return len(s.catalog.Authors) }

// ActiveBorrows counts the unreturned loans of a title.
func (s *Store) ActiveBorrows(title string) int {
	n := 0
	for _, rec := range s.catalog.Borrows[title] {
		if !rec.Returned() {
			n++
		}
	}
	return n
}

// ActiveBorrowsBy counts the unreturned loans held by one user.
func (s *Store) ActiveBorrowsBy(username string) int {
	n := 0
	for _, borrowers := range s.catalog.Borrows {
		if rec, ok := borrowers[username]; ok && !rec.Returned() {
			n++
		}
	}
	return n
}

// ReconcileAvailability recomputes is_available for a title from its quantity
// minus active borrows and persists the result.
func (s *Store) ReconcileAvailability(title string) error {
	if _, ok := s.catalog.Library[title]; !ok {
		return &NotFoundError{Kind: "book", Name: title}
	}
	s.reconcileAvailability(title)
	return s.SaveChanges()
}

func (s *Store) reconcileAvailability(title string) {
	book, ok := s.catalog.Library[title]
	if !ok {
		return
	}
	book.IsAvailable = s.ActiveBorrows(title) < book.Quantity
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
