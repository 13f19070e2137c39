// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"sync"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/dalemusser/yatube/internal/domain/models"
)

// BaseVM carries what the shared layout needs. Embed it in page view models:
//
//	type detailData struct {
//	    viewdata.BaseVM
//	    Post feed.PostView
//	}
type BaseVM struct {
	SiteName string

	IsLoggedIn bool
	UserID     string
	Username   string // for the profile link in the navigation bar
	UserName   string // display name

	Title       string
	BackURL     string
	CurrentPath string
}

var (
	mu       sync.RWMutex
	siteName = models.DefaultSiteName
)

// SetSiteName overrides the name shown in the header. Called once at startup.
func SetSiteName(name string) {
	if name == "" {
		return
	}
	mu.Lock()
	siteName = name
	mu.Unlock()
}

// NewBaseVM builds the layout data for r.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	mu.RLock()
	vm := BaseVM{SiteName: siteName}
	mu.RUnlock()

	vm.Title = title
	vm.BackURL = httpnav.ResolveBackURL(r, backDefault)
	vm.CurrentPath = httpnav.CurrentPath(r)

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.UserID = u.ID
		vm.Username = u.Username
		vm.UserName = u.Name
		if vm.UserName == "" {
			vm.UserName = u.Username
		}
	}
	return vm
}
