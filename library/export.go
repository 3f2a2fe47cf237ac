package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ExportSQLite materializes the catalog into a SQLite file so the data can be
// queried with plain SQL. The export is a snapshot: an existing file at path
// is replaced, and the JSON document stays the source of truth.
func (s *Store) ExportSQLite(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace export file: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	if err := createExportSchema(db); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for username, acct := range s.catalog.Accounts {
		if _, err := tx.Exec(
			`INSERT INTO accounts(username,email,age,id,role,remaining_borrow,borrow_limit) VALUES(?,?,?,?,?,?,?)`,
			username, acct.Email, acct.Age, acct.ID, acct.Role, acct.RemainingBorrow, acct.BorrowLimit,
		); err != nil {
			return fmt.Errorf("export account %q: %w", username, err)
		}
	}
	for title, book := range s.catalog.Library {
		if _, err := tx.Exec(
			`INSERT INTO books(title,author,quantity,date_published,genre,age_restriction,is_available) VALUES(?,?,?,?,?,?,?)`,
			title, book.Author, book.Quantity, book.DatePublished, book.Genre, book.AgeRestriction, book.IsAvailable,
		); err != nil {
			return fmt.Errorf("export book %q: %w", title, err)
		}
	}
	for name, author := range s.catalog.Authors {
		if _, err := tx.Exec(
			`INSERT INTO authors(name,age,birthday,nationality,book_count) VALUES(?,?,?,?,?)`,
			name, author.Age, author.Birthday, author.Nationality, len(author.Books),
		); err != nil {
			return fmt.Errorf("export author %q: %w", name, err)
		}
	}
	for title, borrowers := range s.catalog.Borrows {
		for borrower, rec := range borrowers {
			var returnedOn any
			if rec.Returned() {
				returnedOn = rec.ReturnedOn
			}
			if _, err := tx.Exec(
				`INSERT INTO borrows(book_title,borrower,borrowed_on,borrow_deadline,returned_on,user_status) VALUES(?,?,?,?,?,?)`,
				title, borrower, rec.BorrowedOn, rec.BorrowDeadline, returnedOn, rec.UserStatus,
			); err != nil {
				return fmt.Errorf("export borrow %q/%q: %w", title, borrower, err)
			}
		}
	}

	return tx.Commit()
}

func createExportSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE accounts (
            username TEXT PRIMARY KEY,
            email TEXT NOT NULL,
            age INTEGER NOT NULL,
            id TEXT NOT NULL UNIQUE,
            role TEXT NOT NULL,
            remaining_borrow INTEGER NOT NULL,
            borrow_limit INTEGER NOT NULL
        );`,
		`CREATE TABLE books (
            title TEXT PRIMARY KEY,
            author TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            date_published TEXT,
            genre TEXT,
            age_restriction TEXT NOT NULL,
            is_available BOOLEAN NOT NULL
        );`,
		`CREATE TABLE authors (
            name TEXT PRIMARY KEY,
            age TEXT,
            birthday TEXT,
            nationality TEXT,
            book_count INTEGER NOT NULL
        );`,
		`CREATE TABLE borrows (
            book_title TEXT NOT NULL,
            borrower TEXT NOT NULL,
            borrowed_on DATETIME NOT NULL,
            borrow_deadline DATETIME NOT NULL,
            returned_on DATETIME,
            user_status TEXT NOT NULL,
            PRIMARY KEY (book_title, borrower)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create export schema: %w", err)
		}
	}
	return nil
}
