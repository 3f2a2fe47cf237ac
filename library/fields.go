package library

import (
	"reflect"
	"strings"
	"time"
)

// Field-level access for the generic update paths. Update values arrive from
// the front end as loosely typed arguments, so each setter coerces and
// type-checks before assigning.

func setAccountField(a *Account, field string, value any) error {
	switch field {
	case "email":
		return setString(&a.Email, field, value)
	case "age":
		return setInt(&a.Age, field, value)
	case "id":
		return setString(&a.ID, field, value)
	case "role":
		return setString(&a.Role, field, value)
	case "remaining_borrow":
		return setInt(&a.RemainingBorrow, field, value)
	case "borrow_limit":
		return setInt(&a.BorrowLimit, field, value)
	case "borrowed_books":
		return setStringSlice(&a.BorrowedBooks, field, value)
	case "password_hash":
		return setString(&a.PasswordHash, field, value)
	}
	return &NotFoundError{Kind: "field", Name: field}
}

func setBookField(b *Book, field string, value any) error {
	switch field {
	case "author":
		return setString(&b.Author, field, value)
	case "quantity":
		return setInt(&b.Quantity, field, value)
	case "date_published":
		return setString(&b.DatePublished, field, value)
	case "genre":
		return setString(&b.Genre, field, value)
	case "age_restriction":
		return setString(&b.AgeRestriction, field, value)
	case "is_available":
		return setBool(&b.IsAvailable, field, value)
	}
	return &NotFoundError{Kind: "field", Name: field}
}

func setAuthorField(a *Author, field string, value any) error {
	switch field {
	case "age":
		return setString(&a.Age, field, value)
	case "birthday":
		return setString(&a.Birthday, field, value)
	case "nationality":
		return setString(&a.Nationality, field, value)
	case "books":
		return setStringSlice(&a.Books, field, value)
	}
	return &NotFoundError{Kind: "field", Name: field}
}

func setBorrowField(b *Borrow, field string, value any) error {
	switch field {
	case "borrowed_on":
		return setTime(&b.BorrowedOn, field, value)
	case "borrow_deadline":
		return setTime(&b.BorrowDeadline, field, value)
	case "returned_on":
		return setTime(&b.ReturnedOn, field, value)
	case "user_status":
		return setString(&b.UserStatus, field, value)
	}
	return &NotFoundError{Kind: "field", Name: field}
}

func setString(dst *string, field string, value any) error {
	v, ok := value.(string)
	if !ok {
		return &InvalidChangeError{Field: field, Reason: "must be text"}
	}
	*dst = v
	return nil
}

func setInt(dst *int, field string, value any) error {
	switch v := value.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		// JSON numbers decode as float64; reject fractional values.
		if v != float64(int(v)) {
			return &InvalidChangeError{Field: field, Reason: "must be a whole number"}
		}
		*dst = int(v)
	default:
		return &InvalidChangeError{Field: field, Reason: "must be a whole number"}
	}
	return nil
}

func setBool(dst *bool, field string, value any) error {
	v, ok := value.(bool)
	if !ok {
		return &InvalidChangeError{Field: field, Reason: "must be true or false"}
	}
	*dst = v
	return nil
}

func setStringSlice(dst *[]string, field string, value any) error {
	switch v := value.(type) {
	case []string:
		*dst = v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return &InvalidChangeError{Field: field, Reason: "must be a list of text values"}
			}
			out = append(out, s)
		}
		*dst = out
	default:
		return &InvalidChangeError{Field: field, Reason: "must be a list of text values"}
	}
	return nil
}

func setTime(dst *time.Time, field string, value any) error {
	v, ok := value.(time.Time)
	if !ok {
		return &InvalidChangeError{Field: field, Reason: "must be a timestamp"}
	}
	*dst = v
	return nil
}

// knownFields collects the JSON field names of every record type once, by
// marshaling tags off the struct definitions. This is what backs the
// field-existence guard on update operations.
var knownFields = func() map[string]struct{} {
	fields := map[string]struct{}{}
	for _, t := range []reflect.Type{
		reflect.TypeOf(Account{}),
		reflect.TypeOf(Book{}),
		reflect.TypeOf(Author{}),
		reflect.TypeOf(Borrow{}),
	} {
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			name, _, _ := strings.Cut(tag, ",")
			fields[name] = struct{}{}
		}
	}
	return fields
}()
