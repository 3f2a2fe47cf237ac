package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/library"
)

func TestParseFieldValue(t *testing.T) {
	v, err := parseFieldValue("user", "age", "57")
	require.NoError(t, err)
	assert.Equal(t, 57, v)

	// Author ages are free-form text, never converted.
	v, err = parseFieldValue("author", "age", "57")
	require.NoError(t, err)
	assert.Equal(t, "57", v)

	v, err = parseFieldValue("author", "age", "unknown")
	require.NoError(t, err)
	assert.Equal(t, "unknown", v)

	v, err = parseFieldValue("book", "quantity", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = parseFieldValue("book", "is_available", "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = parseFieldValue("borrow", "user_status", "overdue")
	require.NoError(t, err)
	assert.Equal(t, "overdue", v)

	_, err = parseFieldValue("user", "age", "abc")
	assert.Error(t, err)
	_, err = parseFieldValue("book", "is_available", "maybe")
	assert.Error(t, err)
}

func TestUpdateAuthorAgeFromPromptInput(t *testing.T) {
	mgr, err := library.NewManager(filepath.Join(t.TempDir(), "storage.json"))
	require.NoError(t, err)
	require.NoError(t, mgr.AddBook("Dune", "Frank Herbert", 3))

	value, err := parseFieldValue("author", "age", "57")
	require.NoError(t, err)
	require.NoError(t, mgr.UpdateAuthor("Frank Herbert", "age", value))
	assert.Equal(t, "57", mgr.Catalog().Authors["Frank Herbert"].Age)
}
