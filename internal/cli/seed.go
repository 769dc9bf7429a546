package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/avolkov/bookcatalog/internal/config"
	"github.com/avolkov/bookcatalog/internal/entities"
	"github.com/avolkov/bookcatalog/internal/store"
)

// SeedCommand uploads a local JSON file of books to the remote document,
// replacing whatever collection is there.
type SeedCommand struct {
	FilePath string
	Verbose  bool
	DryRun   bool
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to a JSON file holding an array of books (required)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the file without uploading")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Upload a JSON array of books to the remote catalog document.\n")
		fmt.Fprintf(os.Stderr, "The existing collection is replaced in full.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Validate a seed file without touching the remote document:\n")
		fmt.Fprintf(os.Stderr, "  %s seed -file books.json -dry-run -verbose\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Upload:\n")
		fmt.Fprintf(os.Stderr, "  %s seed -file books.json\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *SeedCommand) Run() error {
	fmt.Println("Catalog Seed")
	fmt.Println("============")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	data, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var books []entities.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	seen := make(map[int]bool, len(books))
	for i, book := range books {
		if err := book.Validate(); err != nil {
			return fmt.Errorf("book %d (%q): %w", i+1, book.Title, err)
		}
		if seen[book.ID] {
			return fmt.Errorf("book %d (%q): duplicate id %d", i+1, book.Title, book.ID)
		}
		seen[book.ID] = true

		if cmd.Verbose {
			fmt.Printf("  %d. %q by %s (%d)\n", book.ID, book.Title, book.Author, book.ReleaseDate)
		}
	}

	fmt.Printf("Validated %d books\n", len(books))

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to upload.")
		return nil
	}

	cfg := config.NewConfig()
	if cfg.Store.BinID == "" || cfg.Store.APIKey == "" {
		return fmt.Errorf("JSONBIN_BIN_ID and JSONBIN_API_KEY must be set")
	}

	client := store.NewClient(store.Config{
		BaseURL: cfg.Store.BaseURL,
		BinID:   cfg.Store.BinID,
		APIKey:  cfg.Store.APIKey,
		Timeout: cfg.Store.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("\nUploading to remote document...")
	if err := client.Replace(ctx, books); err != nil {
		return fmt.Errorf("failed to upload collection: %w", err)
	}

	fmt.Printf("Uploaded %d books\n", len(books))
	fmt.Println("\nSeed complete!")
	return nil
}
