package library

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrWrongPassword is returned when authentication fails against the stored hash.
var ErrWrongPassword = errors.New("incorrect password")

// SetPassword hashes the password with bcrypt and stores it on the account.
// An empty password clears the hash, which disables password checks for that
// account.
func (m *Manager) SetPassword(username, password string) error {
	if DetectEmptyValues(username) {
		return ErrEmptyValue
	}
	if !m.check.UserExists(username) {
		return &NotFoundError{Kind: "user", Name: username}
	}
	if password == "" {
		return m.store.UpdateEntry(DatasetAccounts, username, "password_hash", "")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return m.store.UpdateEntry(DatasetAccounts, username, "password_hash", string(hash))
}

// Authenticate verifies a password against the account's stored bcrypt hash.
// Accounts without a password accept any input.
func (m *Manager) Authenticate(username, password string) error {
	if DetectEmptyValues(username) {
		return ErrEmptyValue
	}
	acct, ok := m.store.Catalog().Accounts[username]
	if !ok {
		return &NotFoundError{Kind: "user", Name: username}
	}
	if acct.PasswordHash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}
