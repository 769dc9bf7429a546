package catalog

import "errors"

// ErrBookNotFound indicates the requested book id is absent from the
// collection. Mapped to 404 at the HTTP boundary.
var ErrBookNotFound = errors.New("book not found")

// ErrDuplicateID indicates an attempt to create a book with an id that
// already exists. Mapped to 400 at the HTTP boundary.
var ErrDuplicateID = errors.New("book with this id already exists")
