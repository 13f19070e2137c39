package feed

import (
	"html/template"

	"github.com/dalemusser/yatube/internal/app/system/paging"
	"github.com/dalemusser/yatube/internal/domain/models"
)

// PostView is a post joined with its author and group, plus the text and
// image ready for a template.
type PostView struct {
	models.Post
	Author   models.User
	Group    *models.Group
	Body     template.HTML
	ImageURL string
}

// Page is one page of a feed.
type Page struct {
	Posts []PostView
	Page  paging.Page
}

type GroupPage struct {
	Group models.Group
	Page
}

type ProfilePage struct {
	Author    models.User
	PostCount int64
	// Following is nil for anonymous viewers. On the author's own profile it
	// is false, since nobody can follow themselves.
	Following *bool
	Page
}

type CommentView struct {
	models.Comment
	Author models.User
	Body   template.HTML
}

type PostDetail struct {
	Post            PostView
	AuthorPostCount int64
	Comments        []CommentView
}
