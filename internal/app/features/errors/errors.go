// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/yatube/internal/app/system/viewdata"
)

// pageData is the view model for every error page.
type pageData struct {
	viewdata.BaseVM
	Heading string
	Message string
}

// Handler serves the error pages that have routes of their own.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// NotFound is the router's fallback for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, r)
}
