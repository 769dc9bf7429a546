package catalog

import (
	"context"
	"fmt"

	"github.com/avolkov/bookcatalog/internal/entities"
	"github.com/avolkov/bookcatalog/internal/metadata"
)

// Service layers domain-level not-found semantics over the repository: every
// mutation checks existence first and raises ErrBookNotFound before the
// repository is asked to write anything.
type Service struct {
	repo     *Repository
	enricher Enricher
}

// NewService creates a service over the repository. The enricher backs the
// enrich-by-id operations.
func NewService(repo *Repository, enricher Enricher) *Service {
	return &Service{repo: repo, enricher: enricher}
}

// GetAllBooks returns the full collection.
func (s *Service) GetAllBooks(ctx context.Context) ([]entities.Book, error) {
	return s.repo.GetAll(ctx)
}

// GetBook returns the book with the given id or ErrBookNotFound.
func (s *Service) GetBook(ctx context.Context, id int) (*entities.Book, error) {
	book, err := s.repo.GetOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// CreateBook adds a new book, rejecting duplicate ids before anything is
// written. Enrichment is applied on creation unless disabled by the caller.
func (s *Service) CreateBook(ctx context.Context, book entities.Book, enrich bool) (*entities.Book, error) {
	existing, err := s.repo.GetOne(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: id %d", ErrDuplicateID, book.ID)
	}
	return s.repo.Add(ctx, book, enrich)
}

// UpdateBook applies the patch to an existing book or returns
// ErrBookNotFound without touching the store.
func (s *Service) UpdateBook(ctx context.Context, id int, patch entities.BookPatch) (*entities.Book, error) {
	book, err := s.repo.GetOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// The book vanished between the existence check and the update;
		// with a single non-transactional document a concurrent delete can
		// do that.
		return nil, ErrBookNotFound
	}
	return updated, nil
}

// DeleteBook removes a book or returns ErrBookNotFound.
func (s *Service) DeleteBook(ctx context.Context, id int) error {
	book, err := s.repo.GetOne(ctx, id)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}

	removed, _, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrBookNotFound
	}
	return nil
}

// EnrichBook loads the book, re-runs enrichment and returns the merged
// record WITHOUT persisting it. The response shows what enrichment would
// produce; the stored document is left untouched.
func (s *Service) EnrichBook(ctx context.Context, id int) (*entities.Book, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	fragment := s.enricher.Enrich(ctx, book.Title, book.Author)
	merged := *book
	fragment.Patch().Apply(&merged)
	return &merged, nil
}

// RefreshBook is the persisting variant of EnrichBook used by background
// jobs: the fragment merge is written through to the store. Returns the
// stored book and the names of the fields the fragment filled.
func (s *Service) RefreshBook(ctx context.Context, id int) (*entities.Book, []string, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	fragment := s.enricher.Enrich(ctx, book.Title, book.Author)
	if fragment.IsEmpty() {
		return book, nil, nil
	}

	updated, err := s.UpdateBook(ctx, id, fragment.Patch())
	if err != nil {
		return nil, nil, err
	}
	return updated, fragment.FilledFields(), nil
}

// BooksMissingMetadata returns the books that have no cover or description
// yet; the periodic refresh sweeps exactly these.
func (s *Service) BooksMissingMetadata(ctx context.Context) ([]entities.Book, error) {
	books, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var missing []entities.Book
	for _, book := range books {
		if book.CoverURL == nil || book.Description == nil {
			missing = append(missing, book)
		}
	}
	return missing, nil
}

var _ Enricher = (*metadata.Enricher)(nil)
