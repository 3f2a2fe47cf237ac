package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(filepath.Join(t.TempDir(), "storage.json"))
	require.NoError(t, err)
	return mgr
}

func TestCreateUser(t *testing.T) {
	mgr := newTestManager(t)

	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))

	acct := mgr.Catalog().Accounts["alice"]
	require.NotNil(t, acct)
	assert.Equal(t, RoleMember, acct.Role)
	assert.Equal(t, DefaultBorrowLimit, acct.RemainingBorrow)
	assert.Equal(t, DefaultBorrowLimit, acct.BorrowLimit)
	assert.Empty(t, acct.BorrowedBooks)
	assert.Regexp(t, `^#\d{12}$`, acct.ID)
}

func TestCreateUserGuards(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))

	assert.ErrorIs(t, mgr.CreateUser("", "bob@gmail.com", 25), ErrEmptyValue)

	var taken *NameTakenError
	require.ErrorAs(t, mgr.CreateUser("alice", "other@yahoo.com", 99), &taken)
	assert.Equal(t, "user", taken.Kind)

	assert.ErrorIs(t, mgr.CreateUser("bob", "bob@outlook.com", 25), ErrInvalidEmail)
}

func TestCreateUserGeneratesDistinctIDs(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.CreateUser("bob", "bob@yahoo.com", 40))

	assert.NotEqual(t, mgr.Catalog().Accounts["alice"].ID, mgr.Catalog().Accounts["bob"].ID)
}

func TestUpdateUserRejectsInvalidAge(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))

	assert.ErrorIs(t, mgr.UpdateUser("alice", "age", 200), ErrInvalidAge)
	assert.Equal(t, 30, mgr.Catalog().Accounts["alice"].Age, "failed update must not apply")

	require.NoError(t, mgr.UpdateUser("alice", "age", 31))
	assert.Equal(t, 31, mgr.Catalog().Accounts["alice"].Age)
}

func TestUpdateUserRejectsInvalidRole(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))

	var invalid *InvalidChangeError
	require.ErrorAs(t, mgr.UpdateUser("alice", "role", "admin"), &invalid)
	assert.Equal(t, "role", invalid.Field)

	require.NoError(t, mgr.UpdateUser("alice", "role", RoleLibrarian))
	role, err := mgr.Role("alice")
	require.NoError(t, err)
	assert.Equal(t, RoleLibrarian, role)
}

func TestUpdateUserProtectedFields(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))

	for _, field := range []string{"id", "remaining_borrow", "borrow_limit", "password_hash"} {
		var invalid *InvalidChangeError
		err := mgr.UpdateUser("alice", field, "#999999999999")
		require.ErrorAs(t, err, &invalid, "field %q must be protected", field)
	}
}

func TestUpdateUserUnknownField(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))

	var notFound *NotFoundError
	require.ErrorAs(t, mgr.UpdateUser("alice", "favorite_color", "blue"), &notFound)
	assert.Equal(t, "field", notFound.Kind)
}

func TestRemoveUserKeepsBorrowHistory(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 3))
	require.NoError(t, mgr.BorrowBook("Dune", "alice"))

	require.NoError(t, mgr.RemoveUser("alice"))
	assert.NotContains(t, mgr.Catalog().Accounts, "alice")
	// Borrow records are history and survive the account.
	assert.Contains(t, mgr.Catalog().Borrows["Dune"], "alice")
}

func TestAddBookTwiceFailsAndAuthorCreatedOnce(t *testing.T) {
	mgr := newTestManager(t)

	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 3))

	var taken *NameTakenError
	require.ErrorAs(t, mgr.AddBook("Dune", "Frank Herbert", 1), &taken)
	assert.Equal(t, "book", taken.Kind)

	assert.Equal(t, 1, mgr.AuthorCount())
	assert.Equal(t, []string{"Dune"}, mgr.Catalog().Authors["Frank Herbert"].Books)
	assert.Equal(t, 3, mgr.Catalog().Library["Dune"].Quantity)
}

func TestAddBookRejectsNegativeQuantity(t *testing.T) {
	mgr := newTestManager(t)
	assert.ErrorIs(t, mgr.AddBook("Dune", "Frank Herbert", -1), ErrInvalidQuantity)
	assert.NotContains(t, mgr.Catalog().Library, "Dune")
}

func TestUpdateBookGuards(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 3))

	assert.ErrorIs(t, mgr.UpdateBook("Dune", "quantity", -2), ErrInvalidQuantity)

	var invalid *InvalidChangeError
	require.ErrorAs(t, mgr.UpdateBook("Dune", "age_restriction", "teens"), &invalid)
	require.ErrorAs(t, mgr.UpdateBook("Dune", "is_available", "yes"), &invalid)

	var notFound *NotFoundError
	require.ErrorAs(t, mgr.UpdateBook("Hamlet", "quantity", 2), &notFound)

	require.NoError(t, mgr.UpdateBook("Dune", "age_restriction", RestrictionMature))
	require.NoError(t, mgr.UpdateBook("Dune", "genre", "science fiction"))
	assert.Equal(t, RestrictionMature, mgr.Catalog().Library["Dune"].AgeRestriction)
	assert.Equal(t, "science fiction", mgr.Catalog().Library["Dune"].Genre)
}

func TestUpdateAuthorBooksListProtected(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 3))

	var invalid *InvalidChangeError
	require.ErrorAs(t, mgr.UpdateAuthor("Frank Herbert", "books", []string{"Other"}), &invalid)

	require.NoError(t, mgr.UpdateAuthor("Frank Herbert", "nationality", "American"))
	assert.Equal(t, "American", mgr.Catalog().Authors["Frank Herbert"].Nationality)
}

func TestBorrowBookSetsTwoWeekDeadline(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 3))

	require.NoError(t, mgr.BorrowBook("Dune", "alice"))

	rec := mgr.Catalog().Borrows["Dune"]["alice"]
	require.NotNil(t, rec)
	assert.Equal(t, StatusActive, rec.UserStatus)
	assert.Equal(t, BorrowPeriod, rec.BorrowDeadline.Sub(rec.BorrowedOn))
	assert.False(t, rec.Returned())
	assert.WithinDuration(t, time.Now(), rec.BorrowedOn, 5*time.Second)
}

func TestBorrowBookUnavailable(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.AddBookDetailed("Dune", "Frank Herbert", 3, "1965", "science fiction", RestrictionAllAges, false))

	var unavailable *BookUnavailableError
	require.ErrorAs(t, mgr.BorrowBook("Dune", "alice"), &unavailable)
	assert.NotContains(t, mgr.Catalog().Borrows, "Dune", "no borrow record on failure")
}

func TestBorrowExhaustsCopies(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.CreateUser("bob", "bob@yahoo.com", 40))
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 1))

	require.NoError(t, mgr.BorrowBook("Dune", "alice"))
	assert.False(t, mgr.Catalog().Library["Dune"].IsAvailable)

	var unavailable *BookUnavailableError
	require.ErrorAs(t, mgr.BorrowBook("Dune", "bob"), &unavailable)
}

func TestBorrowLimit(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	// Shrink the allowance through the store; the update path protects it.
	mgr.Catalog().Accounts["alice"].BorrowLimit = 1
	mgr.Catalog().Accounts["alice"].RemainingBorrow = 1

	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 3))
	require.NoError(t, mgr.AddBook("Hamlet", "William Shakespeare", 3))

	require.NoError(t, mgr.BorrowBook("Dune", "alice"))

	var limit *BorrowLimitError
	require.ErrorAs(t, mgr.BorrowBook("Hamlet", "alice"), &limit)
	assert.Equal(t, 1, limit.Limit)

	// Returning frees up the allowance again.
	require.NoError(t, mgr.ReturnBook("Dune", "alice"))
	require.NoError(t, mgr.BorrowBook("Hamlet", "alice"))
}

func TestReturnBookPreservesTimestamps(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 1))
	require.NoError(t, mgr.BorrowBook("Dune", "alice"))

	rec := mgr.Catalog().Borrows["Dune"]["alice"]
	borrowedOn, deadline := rec.BorrowedOn, rec.BorrowDeadline

	require.NoError(t, mgr.ReturnBook("Dune", "alice"))

	assert.Equal(t, borrowedOn, rec.BorrowedOn)
	assert.Equal(t, deadline, rec.BorrowDeadline)
	assert.True(t, rec.Returned())
	assert.Equal(t, StatusReturned, rec.UserStatus)
	assert.True(t, mgr.Catalog().Library["Dune"].IsAvailable, "copy back on the shelf")
}

func TestReturnBookWithoutActiveBorrow(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 1))

	var notFound *NotFoundError
	require.ErrorAs(t, mgr.ReturnBook("Dune", "alice"), &notFound)

	// A second return of the same borrow also fails.
	require.NoError(t, mgr.BorrowBook("Dune", "alice"))
	require.NoError(t, mgr.ReturnBook("Dune", "alice"))
	require.ErrorAs(t, mgr.ReturnBook("Dune", "alice"), &notFound)
}

func TestReturnOverdueBorrow(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 1))
	require.NoError(t, mgr.BorrowBook("Dune", "alice"))

	// Backdate the loan so the deadline is already past.
	rec := mgr.Catalog().Borrows["Dune"]["alice"]
	rec.BorrowedOn = rec.BorrowedOn.Add(-15 * 24 * time.Hour)
	rec.BorrowDeadline = rec.BorrowDeadline.Add(-15 * 24 * time.Hour)

	require.NoError(t, mgr.ReturnBook("Dune", "alice"))
	assert.Equal(t, StatusOverdue, rec.UserStatus)
}

func TestUpdateBorrowRecordImmutableTimestamps(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 1))
	require.NoError(t, mgr.BorrowBook("Dune", "alice"))

	var invalid *InvalidChangeError
	require.ErrorAs(t, mgr.UpdateBorrowRecord("Dune", "alice", "borrowed_on", time.Now()), &invalid)
	require.ErrorAs(t, mgr.UpdateBorrowRecord("Dune", "alice", "borrow_deadline", time.Now()), &invalid)

	require.NoError(t, mgr.UpdateBorrowRecord("Dune", "alice", "user_status", StatusOverdue))
	assert.Equal(t, StatusOverdue, mgr.Catalog().Borrows["Dune"]["alice"].UserStatus)
}

func TestRemoveBorrowRecord(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 1))
	require.NoError(t, mgr.BorrowBook("Dune", "alice"))

	require.NoError(t, mgr.RemoveBorrowRecord("Dune", "alice"))
	assert.NotContains(t, mgr.Catalog().Borrows["Dune"], "alice")

	var notFound *NotFoundError
	require.ErrorAs(t, mgr.RemoveBorrowRecord("Dune", "alice"), &notFound)
}

func TestSearch(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 3))

	record, err := mgr.Search("user", "alice")
	require.NoError(t, err)
	assert.IsType(t, &Account{}, record)

	record, err = mgr.Search("Book", "Dune")
	require.NoError(t, err)
	assert.IsType(t, &Book{}, record)

	record, err = mgr.Search("author", "Frank Herbert")
	require.NoError(t, err)
	assert.IsType(t, &Author{}, record)

	var notFound *NotFoundError
	_, err = mgr.Search("user", "ghost")
	require.ErrorAs(t, err, &notFound)

	_, err = mgr.Search("planet", "Arrakis")
	require.ErrorIs(t, err, ErrInvalidSearch)
}

func TestHistoriesAndWrittenBooks(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.CreateUser("alice", "alice@gmail.com", 30))
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 3))
	require.NoError(t, mgr.BorrowBook("Dune", "alice"))

	titles, err := mgr.UserBorrowHistory("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, titles)

	borrows, err := mgr.BookBorrowHistory("Dune")
	require.NoError(t, err)
	assert.Contains(t, borrows, "alice")

	books, err := mgr.GetWrittenBooks("Frank Herbert")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, books)

	var notFound *NotFoundError
	_, err = mgr.BookBorrowHistory("Hamlet")
	require.ErrorAs(t, err, &notFound)
}

func TestIsAvailable(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 3))

	ok, err := mgr.IsAvailable("Dune")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mgr.UpdateBook("Dune", "is_available", false))
	var unavailable *BookUnavailableError
	_, err = mgr.IsAvailable("Dune")
	require.ErrorAs(t, err, &unavailable)

	var notFound *NotFoundError
	_, err = mgr.IsAvailable("Hamlet")
	require.ErrorAs(t, err, &notFound)
}
