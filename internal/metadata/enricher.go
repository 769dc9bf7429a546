package metadata

import (
	"context"
	"fmt"
	"log"

	"github.com/avolkov/bookcatalog/internal/entities"
)

const (
	defaultCoversBaseURL = "https://covers.openlibrary.org"

	// Enrichment keeps at most this many subjects per book.
	maxSubjects = 3
)

// SearchClient is the slice of the Open Library client the enricher needs.
type SearchClient interface {
	Search(ctx context.Context, title, author string) (*SearchDoc, error)
	FetchWork(ctx context.Context, workKey string) (*WorkDetails, error)
}

// Fragment is the partial set of enrichment-derived fields merged into a
// book. Nil fields were not available; a zero Fragment merges as a no-op.
type Fragment struct {
	CoverURL    *string
	Description *string
	Rating      *float64
	PublishDate *int
	Subjects    []string
}

// IsEmpty reports whether the fragment carries nothing at all.
func (f Fragment) IsEmpty() bool {
	return f.CoverURL == nil && f.Description == nil && f.Rating == nil &&
		f.PublishDate == nil && f.Subjects == nil
}

// Patch converts the fragment into a book patch. Only the enrichment-owned
// fields can ever appear: id, title, author, release date and genre are never
// touched by enrichment.
func (f Fragment) Patch() entities.BookPatch {
	return entities.BookPatch{
		CoverURL:    f.CoverURL,
		Description: f.Description,
		Rating:      f.Rating,
		PublishDate: f.PublishDate,
		Subjects:    f.Subjects,
	}
}

// FilledFields names the fragment fields that carry a value, for logging.
func (f Fragment) FilledFields() []string {
	var fields []string
	if f.CoverURL != nil {
		fields = append(fields, "cover_url")
	}
	if f.Description != nil {
		fields = append(fields, "description")
	}
	if f.Rating != nil {
		fields = append(fields, "rating")
	}
	if f.PublishDate != nil {
		fields = append(fields, "publish_date")
	}
	if len(f.Subjects) > 0 {
		fields = append(fields, "subjects")
	}
	return fields
}

// Enricher derives a metadata fragment for a book from Open Library.
// Enrichment is strictly best-effort: any downstream failure yields an empty
// fragment and is never surfaced to the caller.
type Enricher struct {
	client        SearchClient
	coversBaseURL string
}

// NewEnricher creates an enricher backed by the given search client.
func NewEnricher(client SearchClient, coversBaseURL string) *Enricher {
	if coversBaseURL == "" {
		coversBaseURL = defaultCoversBaseURL
	}
	return &Enricher{client: client, coversBaseURL: coversBaseURL}
}

// Enrich searches for (title, author) and builds a fragment from the best
// match. No match, a failed search or a failed details call all degrade
// gracefully; the primary CRUD path must never block on enrichment.
func (e *Enricher) Enrich(ctx context.Context, title, author string) Fragment {
	doc, err := e.client.Search(ctx, title, author)
	if err != nil {
		log.Printf("OpenLibrary search failed for %q by %q: %v", title, author, err)
		return Fragment{}
	}
	if doc == nil {
		return Fragment{}
	}

	var fragment Fragment

	if doc.CoverEditionKey != "" {
		coverURL := fmt.Sprintf("%s/b/olid/%s-L.jpg", e.coversBaseURL, doc.CoverEditionKey)
		fragment.CoverURL = &coverURL
	}

	if doc.Key != "" {
		details, err := e.client.FetchWork(ctx, doc.Key)
		if err != nil {
			log.Printf("OpenLibrary work details failed for %s: %v", doc.Key, err)
		} else if text, ok := details.DescriptionText(); ok {
			fragment.Description = &text
		}
	}

	fragment.Rating = doc.RatingsAverage
	fragment.PublishDate = doc.FirstPublishYear

	subjects := doc.Subject
	if len(subjects) > maxSubjects {
		subjects = subjects[:maxSubjects]
	}
	// A matched work always yields a subjects value, even when empty.
	fragment.Subjects = append([]string{}, subjects...)

	return fragment
}
