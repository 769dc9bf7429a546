package entities

import (
	"errors"
	"fmt"
)

const (
	// MaxTitleLength bounds the title field of a stored book.
	MaxTitleLength = 255
	// MaxAuthorLength bounds the author field of a stored book.
	MaxAuthorLength = 63
	// MaxGenreLength bounds the genre field of a stored book.
	MaxGenreLength = 63
	// MinReleaseYear is the oldest release year the catalog accepts.
	MinReleaseYear = 1900
)

// ErrInvalidBook indicates a book record that fails validation.
var ErrInvalidBook = errors.New("invalid book")

// Book is a single catalog record. The whole collection is stored as one JSON
// array inside the remote document, so every field must round-trip through
// serialization without loss. Optional fields are pointers: nil means the
// field was never supplied and is omitted from the stored document.
type Book struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	ReleaseDate int      `json:"release_date"`
	Genre       string   `json:"genre"`
	Pages       *int     `json:"pages,omitempty"`
	IsAvailable *bool    `json:"is_available,omitempty"`
	CoverURL    *string  `json:"cover_url,omitempty"`
	Description *string  `json:"description,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	PublishDate *int     `json:"publish_date,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
}

// Validate checks the required fields and their bounds.
func (b Book) Validate() error {
	switch {
	case b.ID <= 0:
		return fmt.Errorf("%w: id must be positive", ErrInvalidBook)
	case b.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidBook)
	case len(b.Title) > MaxTitleLength:
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidBook, MaxTitleLength)
	case b.Author == "":
		return fmt.Errorf("%w: author is required", ErrInvalidBook)
	case len(b.Author) > MaxAuthorLength:
		return fmt.Errorf("%w: author exceeds %d characters", ErrInvalidBook, MaxAuthorLength)
	case b.ReleaseDate <= MinReleaseYear:
		return fmt.Errorf("%w: release_date must be after %d", ErrInvalidBook, MinReleaseYear)
	case b.Genre == "":
		return fmt.Errorf("%w: genre is required", ErrInvalidBook)
	case len(b.Genre) > MaxGenreLength:
		return fmt.Errorf("%w: genre exceeds %d characters", ErrInvalidBook, MaxGenreLength)
	}
	return nil
}

// BookPatch carries a partial update. Nil fields are left untouched when the
// patch is applied; a non-nil Subjects slice replaces the existing one, even
// when empty.
type BookPatch struct {
	Title       *string  `json:"title,omitempty"`
	Author      *string  `json:"author,omitempty"`
	ReleaseDate *int     `json:"release_date,omitempty"`
	Genre       *string  `json:"genre,omitempty"`
	Pages       *int     `json:"pages,omitempty"`
	IsAvailable *bool    `json:"is_available,omitempty"`
	CoverURL    *string  `json:"cover_url,omitempty"`
	Description *string  `json:"description,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	PublishDate *int     `json:"publish_date,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
}

// Apply merges the patch into the book, field by field. The ID is never
// changed by a patch.
func (p BookPatch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.ReleaseDate != nil {
		b.ReleaseDate = *p.ReleaseDate
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
	if p.Pages != nil {
		b.Pages = p.Pages
	}
	if p.IsAvailable != nil {
		b.IsAvailable = p.IsAvailable
	}
	if p.CoverURL != nil {
		b.CoverURL = p.CoverURL
	}
	if p.Description != nil {
		b.Description = p.Description
	}
	if p.Rating != nil {
		b.Rating = p.Rating
	}
	if p.PublishDate != nil {
		b.PublishDate = p.PublishDate
	}
	if p.Subjects != nil {
		b.Subjects = p.Subjects
	}
}

// IsZero reports whether the patch carries no changes at all.
func (p BookPatch) IsZero() bool {
	return p.Title == nil && p.Author == nil && p.ReleaseDate == nil &&
		p.Genre == nil && p.Pages == nil && p.IsAvailable == nil &&
		p.CoverURL == nil && p.Description == nil && p.Rating == nil &&
		p.PublishDate == nil && p.Subjects == nil
}

// FullPatch converts a complete book into a patch touching every mutable
// field. Used by the PUT handler, which replaces the whole record.
func (b Book) FullPatch() BookPatch {
	return BookPatch{
		Title:       &b.Title,
		Author:      &b.Author,
		ReleaseDate: &b.ReleaseDate,
		Genre:       &b.Genre,
		Pages:       b.Pages,
		IsAvailable: b.IsAvailable,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		Rating:      b.Rating,
		PublishDate: b.PublishDate,
		Subjects:    b.Subjects,
	}
}
