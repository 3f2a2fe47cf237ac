package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"library-catalog/library"
)

// seedBook is one entry in the seed file: a JSON array of books to load
// through the domain layer, so every record passes the normal guard chain.
type seedBook struct {
	Title          string `json:"title"`
	Author         string `json:"author"`
	Quantity       int    `json:"quantity"`
	DatePublished  string `json:"date_published"`
	Genre          string `json:"genre"`
	AgeRestriction string `json:"age_restriction"`
}

func main() {
	storage := flag.String("storage", "data/storage.json", "path to the JSON catalog file")
	seed := flag.String("seed", "seed_books.json", "path to the seed file")
	flag.Parse()

	raw, err := os.ReadFile(*seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading seed file: %v\n", err)
		os.Exit(1)
	}

	var books []seedBook
	if err := json.Unmarshal(raw, &books); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing seed file: %v\n", err)
		os.Exit(1)
	}

	manager, err := library.NewManager(*storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Importing %d books from %s...\n", len(books), *seed)

	successCount := 0
	errorCount := 0

	for _, b := range books {
		if b.DatePublished == "" {
			b.DatePublished = "unknown"
		}
		if b.Genre == "" {
			b.Genre = "unknown"
		}
		if b.AgeRestriction == "" {
			b.AgeRestriction = library.RestrictionAllAges
		}

		fmt.Printf("Importing: %s by %s... ", b.Title, b.Author)
		if err := manager.AddBookDetailed(b.Title, b.Author, b.Quantity, b.DatePublished, b.Genre, b.AgeRestriction, true); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Println("SUCCESS")
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)
	fmt.Printf("The library now holds %d titles by %d authors.\n", manager.BookCount(), manager.AuthorCount())
}
