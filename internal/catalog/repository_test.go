package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/bookcatalog/internal/entities"
	"github.com/avolkov/bookcatalog/internal/metadata"
)

// memStore is a faithful in-memory stand-in for the remote bin: whatever was
// last replaced is what the next fetch sees.
type memStore struct {
	record     json.RawMessage
	fetchErr   error
	replaceErr error

	replaceCalls int
}

func (m *memStore) Fetch(_ context.Context) (json.RawMessage, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.record, nil
}

func (m *memStore) Replace(_ context.Context, books []entities.Book) error {
	m.replaceCalls++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	data, err := json.Marshal(books)
	if err != nil {
		return err
	}
	m.record = data
	return nil
}

func (m *memStore) seed(t *testing.T, books []entities.Book) {
	t.Helper()
	data, err := json.Marshal(books)
	require.NoError(t, err)
	m.record = data
}

type fakeEnricher struct {
	fragment metadata.Fragment
	calls    int
}

func (f *fakeEnricher) Enrich(_ context.Context, _, _ string) metadata.Fragment {
	f.calls++
	return f.fragment
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func dune() entities.Book {
	return entities.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", ReleaseDate: 1965, Genre: "Science Fiction"}
}

func hyperion() entities.Book {
	return entities.Book{ID: 2, Title: "Hyperion", Author: "Dan Simmons", ReleaseDate: 1989, Genre: "Science Fiction"}
}

func TestGetAllRoundTrip(t *testing.T) {
	store := &memStore{}
	repo := NewRepository(store, nil)
	ctx := context.Background()

	books := []entities.Book{dune(), hyperion()}
	books[0].Rating = floatPtr(4.3)
	books[0].Subjects = []string{"Fiction", "Space opera"}

	require.NoError(t, store.Replace(ctx, books))

	got, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, books, got)
}

func TestGetAllNormalization(t *testing.T) {
	tests := []struct {
		name       string
		record     string
		wantTitles []string
	}{
		{
			name:       "plain array",
			record:     `[{"id":1,"title":"Dune","author":"Frank Herbert","release_date":1965,"genre":"SF"}]`,
			wantTitles: []string{"Dune"},
		},
		{
			name:       "single book object",
			record:     `{"id":1,"title":"Dune","author":"Frank Herbert","release_date":1965,"genre":"SF"}`,
			wantTitles: []string{"Dune"},
		},
		{
			name:       "nested record wrapper",
			record:     `{"record":[{"id":1,"title":"Dune","author":"Frank Herbert","release_date":1965,"genre":"SF"},{"id":2,"title":"Hyperion","author":"Dan Simmons","release_date":1989,"genre":"SF"}]}`,
			wantTitles: []string{"Dune", "Hyperion"},
		},
		{
			name:       "doubly nested wrapper",
			record:     `{"record":{"record":[{"id":1,"title":"Dune","author":"Frank Herbert","release_date":1965,"genre":"SF"}]}}`,
			wantTitles: []string{"Dune"},
		},
		{
			name:       "junk entries dropped",
			record:     `[{"id":1,"title":"Dune","author":"Frank Herbert","release_date":1965,"genre":"SF"},"junk",42,{"id":2,"title":"Hyperion","author":"Dan Simmons","release_date":1989,"genre":"SF"}]`,
			wantTitles: []string{"Dune", "Hyperion"},
		},
		{
			name:       "null entry dropped",
			record:     `[{"id":1,"title":"Dune","author":"Frank Herbert","release_date":1965,"genre":"SF"},null]`,
			wantTitles: []string{"Dune"},
		},
		{
			name:       "only non-object entries",
			record:     `[null,true,[],"junk"]`,
			wantTitles: []string{},
		},
		{
			name:       "empty object",
			record:     `{}`,
			wantTitles: []string{},
		},
		{
			name:       "empty array",
			record:     `[]`,
			wantTitles: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewRepository(&memStore{record: []byte(tt.record)}, nil)

			books, err := repo.GetAll(context.Background())
			require.NoError(t, err)

			titles := make([]string, 0, len(books))
			for _, b := range books {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tt.wantTitles, titles)
		})
	}
}

func TestGetAllStoreFailure(t *testing.T) {
	repo := NewRepository(&memStore{fetchErr: errors.New("network down")}, nil)
	_, err := repo.GetAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch collection")
}

func TestGetOne(t *testing.T) {
	store := &memStore{}
	store.seed(t, []entities.Book{dune(), hyperion()})
	repo := NewRepository(store, nil)

	book, err := repo.GetOne(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, "Hyperion", book.Title)

	book, err = repo.GetOne(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, book)
}

func TestAddWithEnrichment(t *testing.T) {
	store := &memStore{}
	store.seed(t, []entities.Book{dune()})

	enricher := &fakeEnricher{fragment: metadata.Fragment{
		CoverURL:    strPtr("https://covers.openlibrary.org/b/olid/OL1M-L.jpg"),
		Description: strPtr("A pilgrimage to the Time Tombs."),
		Rating:      floatPtr(4.2),
		PublishDate: intPtr(1989),
		Subjects:    []string{"Science fiction", "Pilgrims"},
	}}
	repo := NewRepository(store, enricher)

	added, err := repo.Add(context.Background(), hyperion(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, added.ID)
	assert.Equal(t, "Hyperion", added.Title)
	assert.Equal(t, "Dan Simmons", added.Author)
	assert.Equal(t, "https://covers.openlibrary.org/b/olid/OL1M-L.jpg", *added.CoverURL)
	assert.Equal(t, "A pilgrimage to the Time Tombs.", *added.Description)
	assert.Equal(t, 4.2, *added.Rating)
	assert.Equal(t, 1989, *added.PublishDate)
	assert.Equal(t, []string{"Science fiction", "Pilgrims"}, added.Subjects)

	stored, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, *added, stored[1], "the enriched book must be what was persisted")
}

func TestAddEmptyFragmentIsNoOp(t *testing.T) {
	store := &memStore{}
	store.seed(t, nil)
	repo := NewRepository(store, &fakeEnricher{})

	book := hyperion()
	book.Pages = intPtr(482)

	added, err := repo.Add(context.Background(), book, true)
	require.NoError(t, err)
	assert.Equal(t, book, *added, "empty fragment merge must leave the book as supplied")

	stored, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, book, stored[0])
}

func TestAddWithoutEnrichment(t *testing.T) {
	store := &memStore{}
	store.seed(t, nil)
	enricher := &fakeEnricher{fragment: metadata.Fragment{Rating: floatPtr(5)}}
	repo := NewRepository(store, enricher)

	added, err := repo.Add(context.Background(), dune(), false)
	require.NoError(t, err)
	assert.Nil(t, added.Rating)
	assert.Zero(t, enricher.calls)
}

func TestUpdatePartial(t *testing.T) {
	store := &memStore{}
	original := dune()
	original.Pages = intPtr(412)
	store.seed(t, []entities.Book{original, hyperion()})
	repo := NewRepository(store, nil)

	updated, err := repo.Update(context.Background(), 1, entities.BookPatch{Rating: floatPtr(4.8)})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, 4.8, *updated.Rating)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, 412, *updated.Pages)

	stored, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, *updated, stored[0])
	assert.Equal(t, hyperion(), stored[1])
}

func TestUpdateAbsentIDLeavesStoreUntouched(t *testing.T) {
	store := &memStore{}
	store.seed(t, []entities.Book{dune()})
	repo := NewRepository(store, nil)

	updated, err := repo.Update(context.Background(), 99, entities.BookPatch{Rating: floatPtr(1)})
	require.NoError(t, err)
	assert.Nil(t, updated)
	assert.Zero(t, store.replaceCalls)
}

func TestDelete(t *testing.T) {
	t.Run("removes exactly one book", func(t *testing.T) {
		store := &memStore{}
		store.seed(t, []entities.Book{dune(), hyperion()})
		repo := NewRepository(store, nil)

		removed, remaining, err := repo.Delete(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, 1, remaining)

		stored, err := repo.GetAll(context.Background())
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, 2, stored[0].ID)
	})

	t.Run("absent id writes nothing", func(t *testing.T) {
		store := &memStore{}
		store.seed(t, []entities.Book{dune()})
		repo := NewRepository(store, nil)

		removed, remaining, err := repo.Delete(context.Background(), 99)
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Equal(t, 1, remaining)
		assert.Zero(t, store.replaceCalls)
	})

	t.Run("last book leaves an empty collection", func(t *testing.T) {
		store := &memStore{}
		store.seed(t, []entities.Book{dune()})
		repo := NewRepository(store, nil)

		removed, remaining, err := repo.Delete(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Zero(t, remaining)

		stored, err := repo.GetAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

func TestReplaceFailurePropagates(t *testing.T) {
	store := &memStore{replaceErr: errors.New("write denied")}
	store.seed(t, nil)
	repo := NewRepository(store, nil)

	_, err := repo.Add(context.Background(), dune(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist collection")
}
