package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"library-catalog/library"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	cfg := library.LoadConfig()
	setupLogger(cfg.LogLevel)

	var storagePath string

	root := &cobra.Command{
		Use:   "librarian",
		Short: "Single-user library catalog manager",
		Long: "librarian tracks accounts, books, authors and borrow records in a single\n" +
			"JSON document. Running it without a subcommand starts the interactive shell.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := library.NewManager(storagePath)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			return runShell(mgr)
		},
	}
	root.PersistentFlags().StringVar(&storagePath, "storage", cfg.StoragePath, "path to the JSON catalog file")

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the catalog to a SQLite file for ad-hoc SQL queries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := cfg.ExportPath
			if len(args) == 1 {
				target = args[0]
			}
			mgr, err := library.NewManager(storagePath)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			if err := mgr.Store().ExportSQLite(target); err != nil {
				return err
			}
			fmt.Printf("Catalog exported to %s\n", target)
			return nil
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print catalog totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := library.NewManager(storagePath)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			fmt.Printf("Users:   %d\n", mgr.UserCount())
			fmt.Printf("Books:   %d\n", mgr.BookCount())
			fmt.Printf("Authors: %d\n", mgr.AuthorCount())
			return nil
		},
	}

	root.AddCommand(exportCmd, statsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(level slog.Level) {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

// ---------------------------------------------------------------------------
// Interactive shell
// ---------------------------------------------------------------------------

// runShell signs the user in (or up) and dispatches role-gated commands until
// exit. Domain errors are printed and the loop continues; the shell never
// crashes on a rule violation.
func runShell(mgr *library.Manager) error {
	sc := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome to the Library Catalog Manager!")
	role, username, err := signIn(sc, mgr)
	if err != nil {
		return err
	}
	fmt.Printf("\nSigned in as %s (%s).\n", username, role)
	printHelp(role)

	for {
		fmt.Print("\n> ")
		if !sc.Scan() {
			return sc.Err()
		}
		cmd := strings.TrimSpace(sc.Text())
		if cmd == "" {
			continue
		}
		if cmd == "exit" {
			fmt.Println("Goodbye!")
			return nil
		}
		if cmd == "help" {
			printHelp(role)
			continue
		}

		handler, ok := commandsFor(role)[cmd]
		if !ok {
			fmt.Println("Unknown command. Type 'help' to list the available commands.")
			continue
		}
		if err := handler(sc, mgr, username); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

// signIn authenticates an existing account or registers a new one. New
// accounts start as members; promoting to librarian is an update operation.
func signIn(sc *bufio.Scanner, mgr *library.Manager) (role, username string, err error) {
	for {
		choice := ask(sc, "Do you want to (l)ogin or (s)ign up? ")
		switch strings.ToLower(choice) {
		case "l", "login":
			username = ask(sc, "Enter your username -> ")
			password, err := readPassword("Enter your password (leave blank if none): ")
			if err != nil {
				return "", "", err
			}
			if err := mgr.Authenticate(username, password); err != nil {
				fmt.Printf("Login failed: %v\n", err)
				continue
			}
			role, err := mgr.Role(username)
			if err != nil {
				return "", "", err
			}
			return role, username, nil

		case "s", "signup", "sign up":
			username = ask(sc, "Enter your desired username -> ")
			email := ask(sc, "Enter your email address -> ")
			age, err := askInt(sc, "Enter your current age -> ")
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if err := mgr.CreateUser(username, email, age); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			password, err := readPassword("Choose a password (leave blank for none): ")
			if err != nil {
				return "", "", err
			}
			if password != "" {
				if err := mgr.SetPassword(username, password); err != nil {
					return "", "", err
				}
			}
			fmt.Println("Account successfully created!")
			return library.RoleMember, username, nil

		default:
			fmt.Println("Please answer 'l' or 's'.")
		}
	}
}

type commandHandler func(sc *bufio.Scanner, mgr *library.Manager, username string) error

// generalCommands are available to every role.
var generalCommands = map[string]commandHandler{
	"is available":  handleIsAvailable,
	"search":        handleSearch,
	"user history":  handleUserHistory,
	"book history":  handleBookHistory,
	"written books": handleWrittenBooks,
	"metrics":       handleMetrics,
	"set password":  handleSetPassword,
}

// librarianCommands mutate accounts and the catalog.
var librarianCommands = map[string]commandHandler{
	"add user":      handleAddUser,
	"update user":   handleUpdateUser,
	"remove user":   handleRemoveUser,
	"add book":      handleAddBook,
	"update book":   handleUpdateBook,
	"remove book":   handleRemoveBook,
	"update author": handleUpdateAuthor,
	"update borrow": handleUpdateBorrow,
	"remove borrow": handleRemoveBorrow,
}

// memberCommands cover circulation.
var memberCommands = map[string]commandHandler{
	"borrow": handleBorrow,
	"return": handleReturn,
}

func commandsFor(role string) map[string]commandHandler {
	cmds := map[string]commandHandler{}
	for name, h := range generalCommands {
		cmds[name] = h
	}
	switch role {
	case library.RoleLibrarian:
		for name, h := range librarianCommands {
			cmds[name] = h
		}
	case library.RoleMember:
		for name, h := range memberCommands {
			cmds[name] = h
		}
	}
	return cmds
}

func printHelp(role string) {
	names := make([]string, 0, 16)
	for name := range commandsFor(role) {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("Available commands:")
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("  help")
	fmt.Println("  exit")
}

// ---------------------------------------------------------------------------
// Command handlers
// ---------------------------------------------------------------------------

func handleIsAvailable(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	title := ask(sc, "Title: ")
	if _, err := mgr.IsAvailable(title); err != nil {
		return err
	}
	fmt.Printf("Book %q is available for borrow!\n", title)
	return nil
}

func handleSearch(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	kind := ask(sc, "Search for (user/book/author): ")
	name := ask(sc, "Name: ")
	record, err := mgr.Search(kind, name)
	if err != nil {
		return err
	}
	fmt.Printf("\nYOU SEARCHED FOR: %s\n", name)
	printRecord(record)
	return nil
}

func handleUserHistory(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	username := ask(sc, "Username: ")
	titles, err := mgr.UserBorrowHistory(username)
	if err != nil {
		return err
	}
	fmt.Printf("LIST OF BOOKS BORROWED BY %s:\n", username)
	for i, title := range titles {
		fmt.Printf("%d. %s\n", i+1, title)
	}
	return nil
}

func handleBookHistory(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	title := ask(sc, "Title: ")
	borrows, err := mgr.BookBorrowHistory(title)
	if err != nil {
		return err
	}
	fmt.Println("LIST OF BORROWERS:")
	i := 1
	for borrower, rec := range borrows {
		fmt.Printf("%d. %s (%s, borrowed %s)\n", i, borrower, rec.UserStatus, rec.BorrowedOn.Format("Monday, January 2, 2006"))
		i++
	}
	return nil
}

func handleWrittenBooks(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	name := ask(sc, "Author: ")
	books, err := mgr.GetWrittenBooks(name)
	if err != nil {
		return err
	}
	fmt.Printf("BOOKS WRITTEN BY %s:\n", name)
	for i, title := range books {
		fmt.Printf("%d. %s\n", i+1, title)
	}
	return nil
}

func handleMetrics(_ *bufio.Scanner, mgr *library.Manager, _ string) error {
	fmt.Printf("The total number of users are: %d\n", mgr.UserCount())
	fmt.Printf("The total number of books in the library are: %d\n", mgr.BookCount())
	return nil
}

func handleSetPassword(sc *bufio.Scanner, mgr *library.Manager, username string) error {
	password, err := readPassword("New password: ")
	if err != nil {
		return err
	}
	if err := mgr.SetPassword(username, password); err != nil {
		return err
	}
	fmt.Println("Password updated.")
	return nil
}

func handleAddUser(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	username := ask(sc, "Username: ")
	email := ask(sc, "Email: ")
	age, err := askInt(sc, "Age: ")
	if err != nil {
		return err
	}
	if err := mgr.CreateUser(username, email, age); err != nil {
		return err
	}
	fmt.Printf("User %q has been added to the database!\n", username)
	return nil
}

func handleUpdateUser(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	username := ask(sc, "Username: ")
	field := ask(sc, "Field: ")
	value, err := askFieldValue(sc, "user", field)
	if err != nil {
		return err
	}
	if err := mgr.UpdateUser(username, field, value); err != nil {
		return err
	}
	fmt.Println("User updated.")
	return nil
}

func handleRemoveUser(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	username := ask(sc, "Username: ")
	if err := mgr.RemoveUser(username); err != nil {
		return err
	}
	fmt.Printf("User %q has been removed.\n", username)
	return nil
}

func handleAddBook(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	title := ask(sc, "Title: ")
	author := ask(sc, "Author: ")
	quantity, err := askInt(sc, "Quantity: ")
	if err != nil {
		return err
	}

	more := ask(sc, "Do you want to add more info? (y/n) ")
	if strings.ToLower(more) != "y" {
		if err := mgr.AddBook(title, author, quantity); err != nil {
			return err
		}
		fmt.Printf("Book %q has been added to the library!\n", title)
		return nil
	}

	datePublished := ask(sc, "Publishing date: ")
	genre := ask(sc, "Genre: ")
	restriction := ask(sc, "Age restriction (all-ages/mature): ")
	if err := mgr.AddBookDetailed(title, author, quantity, datePublished, genre, restriction, true); err != nil {
		return err
	}
	fmt.Printf("Book %q has been added to the library!\n", title)
	return nil
}

func handleUpdateBook(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	title := ask(sc, "Title: ")
	field := ask(sc, "Field: ")
	value, err := askFieldValue(sc, "book", field)
	if err != nil {
		return err
	}
	if err := mgr.UpdateBook(title, field, value); err != nil {
		return err
	}
	fmt.Println("Book updated.")
	return nil
}

func handleRemoveBook(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	title := ask(sc, "Title: ")
	if err := mgr.RemoveBook(title); err != nil {
		return err
	}
	fmt.Printf("Book %q has been removed.\n", title)
	return nil
}

func handleUpdateAuthor(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	name := ask(sc, "Author: ")
	field := ask(sc, "Field: ")
	value, err := askFieldValue(sc, "author", field)
	if err != nil {
		return err
	}
	if err := mgr.UpdateAuthor(name, field, value); err != nil {
		return err
	}
	fmt.Println("Author updated.")
	return nil
}

func handleUpdateBorrow(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	title := ask(sc, "Title: ")
	borrower := ask(sc, "Borrower: ")
	field := ask(sc, "Field: ")
	value, err := askFieldValue(sc, "borrow", field)
	if err != nil {
		return err
	}
	if err := mgr.UpdateBorrowRecord(title, borrower, field, value); err != nil {
		return err
	}
	fmt.Println("Borrow record updated.")
	return nil
}

func handleRemoveBorrow(sc *bufio.Scanner, mgr *library.Manager, _ string) error {
	title := ask(sc, "Title: ")
	borrower := ask(sc, "Borrower: ")
	if err := mgr.RemoveBorrowRecord(title, borrower); err != nil {
		return err
	}
	fmt.Println("Borrow record removed.")
	return nil
}

func handleBorrow(sc *bufio.Scanner, mgr *library.Manager, username string) error {
	title := ask(sc, "Title: ")
	if err := mgr.BorrowBook(title, username); err != nil {
		return err
	}
	fmt.Printf("Enjoy reading %q! It is due in 14 days.\n", title)
	return nil
}

func handleReturn(sc *bufio.Scanner, mgr *library.Manager, username string) error {
	title := ask(sc, "Title: ")
	if err := mgr.ReturnBook(title, username); err != nil {
		return err
	}
	fmt.Printf("Thanks for returning %q!\n", title)
	return nil
}

// ---------------------------------------------------------------------------
// Prompt helpers
// ---------------------------------------------------------------------------

func ask(sc *bufio.Scanner, prompt string) string {
	fmt.Print(prompt)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}

func askInt(sc *bufio.Scanner, prompt string) (int, error) {
	raw := ask(sc, prompt)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return n, nil
}

// askFieldValue prompts for a new field value and converts it to the type the
// field expects, so the domain layer sees properly typed updates.
func askFieldValue(sc *bufio.Scanner, entity, field string) (any, error) {
	return parseFieldValue(entity, field, ask(sc, "New value: "))
}

// parseFieldValue converts a raw prompt answer for one entity's field. The
// same field name can carry different types per entity: account ages are
// numbers while author ages are free-form text ("unknown", "57").
func parseFieldValue(entity, field, raw string) (any, error) {
	switch entity + "." + field {
	case "user.age", "user.remaining_borrow", "user.borrow_limit", "book.quantity":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", raw)
		}
		return n, nil
	case "book.is_available":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not true or false", raw)
		}
		return b, nil
	}
	return raw, nil
}

// readPassword reads a password with echo disabled, falling back to a plain
// scan when stdin is not a terminal (tests, pipes).
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		sc := bufio.NewScanner(os.Stdin)
		if !sc.Scan() {
			return "", sc.Err()
		}
		fmt.Println()
		return strings.TrimSpace(sc.Text()), nil
	}
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func printRecord(record any) {
	switch r := record.(type) {
	case *library.Account:
		fmt.Printf("Email: %s\n", r.Email)
		fmt.Printf("Age: %d\n", r.Age)
		fmt.Printf("Id: %s\n", r.ID)
		fmt.Printf("Role: %s\n", r.Role)
		fmt.Printf("Remaining borrow: %d\n", r.RemainingBorrow)
		fmt.Printf("Borrow limit: %d\n", r.BorrowLimit)
		fmt.Printf("Borrowed books: %s\n", strings.Join(r.BorrowedBooks, ", "))
	case *library.Book:
		fmt.Printf("Author: %s\n", r.Author)
		fmt.Printf("Quantity: %d\n", r.Quantity)
		fmt.Printf("Date published: %s\n", r.DatePublished)
		fmt.Printf("Genre: %s\n", r.Genre)
		fmt.Printf("Age restriction: %s\n", r.AgeRestriction)
		fmt.Printf("Is available: %t\n", r.IsAvailable)
	case *library.Author:
		fmt.Printf("Age: %s\n", r.Age)
		fmt.Printf("Birthday: %s\n", r.Birthday)
		fmt.Printf("Nationality: %s\n", r.Nationality)
		fmt.Printf("Books: %s\n", strings.Join(r.Books, ", "))
	default:
		fmt.Printf("%v\n", record)
	}
}
