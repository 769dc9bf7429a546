package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/bookcatalog/internal/catalog"
	"github.com/avolkov/bookcatalog/internal/entities"
)

// BooksController exposes the CRUD surface of the catalog.
type BooksController struct {
	service *catalog.Service
}

func NewBooksController(service *catalog.Service) *BooksController {
	return &BooksController{service: service}
}

// GetAllBooks handles GET /api/books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.service.GetAllBooks(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBook handles GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.service.GetBook(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// CreateBook handles POST /api/books. Enrichment runs by default and is
// skipped with ?enrich=false.
func (controller *BooksController) CreateBook(c *gin.Context) {
	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	if err := book.Validate(); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	enrich := c.DefaultQuery("enrich", "true") != "false"

	created, err := controller.service.CreateBook(c.Request.Context(), book, enrich)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateID) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create book")
		return
	}
	c.IndentedJSON(http.StatusCreated, created)
}

// UpdateBook handles PUT /api/books/:id. The id in the path must match the
// id in the payload; fields absent from the payload are left unchanged.
func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	if book.ID != id {
		respondBadRequest(c, "id in path and body must match")
		return
	}
	if err := book.Validate(); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	updated, err := controller.service.UpdateBook(c.Request.Context(), id, book.FullPatch())
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "update book")
		return
	}
	c.IndentedJSON(http.StatusOK, updated)
}

// PatchBook handles PATCH /api/books/:id with explicit partial-update
// semantics: only the fields present in the payload are changed.
func (controller *BooksController) PatchBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var patch entities.BookPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "invalid patch payload: "+err.Error())
		return
	}
	if patch.IsZero() {
		respondBadRequest(c, "patch payload carries no fields")
		return
	}

	updated, err := controller.service.UpdateBook(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "patch book")
		return
	}
	c.IndentedJSON(http.StatusOK, updated)
}

// DeleteBook handles DELETE /api/books/:id
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.service.DeleteBook(c.Request.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "book deleted successfully"})
}
