package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/avolkov/bookcatalog/internal/entities"
	"github.com/avolkov/bookcatalog/internal/metadata"
)

// DocumentStore is the remote endpoint holding the whole collection as one
// JSON document.
type DocumentStore interface {
	Fetch(ctx context.Context) (json.RawMessage, error)
	Replace(ctx context.Context, books []entities.Book) error
}

// Enricher produces a best-effort metadata fragment for a title/author pair.
type Enricher interface {
	Enrich(ctx context.Context, title, author string) metadata.Fragment
}

// Repository owns the read-modify-write protocol against the document store.
//
// Every mutation re-fetches the full collection, rewrites it in memory and
// overwrites the remote document. There is no locking around that sequence:
// two concurrent writers race and the last write wins on the whole document,
// silently dropping the other writer's change. This is an accepted limitation
// of the single-document store, not something the repository tries to hide;
// the deployment is assumed to have low write concurrency.
type Repository struct {
	store    DocumentStore
	enricher Enricher
}

// NewRepository creates a repository over the given store. The enricher may
// be nil, in which case Add never enriches.
func NewRepository(store DocumentStore, enricher Enricher) *Repository {
	return &Repository{store: store, enricher: enricher}
}

// GetAll fetches the remote document and returns every well-formed book in
// it. Entries that fail to decode as a book record are dropped rather than
// failing the whole read: availability of the rest of the collection wins
// over strict validation.
func (r *Repository) GetAll(ctx context.Context) ([]entities.Book, error) {
	raw, err := r.store.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch collection: %w", err)
	}

	entries := normalizeRecord(raw)

	books := make([]entities.Book, 0, len(entries))
	for _, entry := range entries {
		// Only objects can be books; nulls and scalars decode as no-ops
		// rather than errors, so they are filtered by shape first.
		if !isJSONObject(entry) {
			log.Printf("Dropping non-object collection entry")
			continue
		}
		var book entities.Book
		if err := json.Unmarshal(entry, &book); err != nil {
			log.Printf("Dropping malformed collection entry: %v", err)
			continue
		}
		books = append(books, book)
	}
	return books, nil
}

// isJSONObject reports whether the raw entry is a JSON object.
func isJSONObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b == '{'
	}
	return false
}

// normalizeRecord turns the raw record payload into a list of candidate book
// entries. Historical writers left the bin in several shapes: a plain array,
// an object wrapping another record, or a single book object.
func normalizeRecord(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil
	}
	if inner, ok := wrapper["record"]; ok {
		return normalizeRecord(inner)
	}
	if _, ok := wrapper["id"]; ok {
		return []json.RawMessage{raw}
	}
	return nil
}

// GetOne returns the book with the given id, or nil when absent.
func (r *Repository) GetOne(ctx context.Context, id int) (*entities.Book, error) {
	books, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range books {
		if books[i].ID == id {
			return &books[i], nil
		}
	}
	return nil, nil
}

// Add appends a book to the collection and persists it. When enrich is true
// the book is first merged with a freshly fetched metadata fragment; an empty
// fragment (no match, search failure) leaves the book exactly as supplied.
func (r *Repository) Add(ctx context.Context, book entities.Book, enrich bool) (*entities.Book, error) {
	if enrich && r.enricher != nil {
		fragment := r.enricher.Enrich(ctx, book.Title, book.Author)
		fragment.Patch().Apply(&book)
	}

	books, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	books = append(books, book)
	if err := r.store.Replace(ctx, books); err != nil {
		return nil, fmt.Errorf("persist collection: %w", err)
	}
	return &book, nil
}

// Update merges the supplied fields over the stored record and persists the
// collection. Returns nil (and writes nothing) when the id is absent.
func (r *Repository) Update(ctx context.Context, id int, patch entities.BookPatch) (*entities.Book, error) {
	books, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range books {
		if books[i].ID != id {
			continue
		}
		patch.Apply(&books[i])
		if err := r.store.Replace(ctx, books); err != nil {
			return nil, fmt.Errorf("persist collection: %w", err)
		}
		updated := books[i]
		return &updated, nil
	}
	return nil, nil
}

// Delete removes the book with the given id. The collection is rewritten only
// when something was actually removed. Returns whether a book was removed and
// the remaining count.
func (r *Repository) Delete(ctx context.Context, id int) (bool, int, error) {
	books, err := r.GetAll(ctx)
	if err != nil {
		return false, 0, err
	}

	remaining := books[:0]
	for _, book := range books {
		if book.ID != id {
			remaining = append(remaining, book)
		}
	}

	if len(remaining) == len(books) {
		return false, len(books), nil
	}

	if err := r.store.Replace(ctx, remaining); err != nil {
		return false, 0, fmt.Errorf("persist collection: %w", err)
	}
	return true, len(remaining), nil
}
