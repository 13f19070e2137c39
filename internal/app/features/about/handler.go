// internal/app/features/about/handler.go
package about

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/yatube/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type pageData struct {
	viewdata.BaseVM
}

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

func (h *Handler) ServeAuthor(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "about_author", pageData{
		BaseVM: viewdata.NewBaseVM(r, "About the author", "/"),
	})
}

func (h *Handler) ServeTech(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "about_tech", pageData{
		BaseVM: viewdata.NewBaseVM(r, "Technologies", "/"),
	})
}
