package feed

import (
	"context"
	"fmt"

	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/app/system/htmlsanitize"
	"github.com/dalemusser/yatube/internal/app/system/paging"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Index is the global feed.
func (s *Service) Index(ctx context.Context, page int) (Page, error) {
	return s.list(ctx, store.PostFilter{}, page)
}

// Group is the feed of one group, looked up by slug.
func (s *Service) Group(ctx context.Context, slug string, page int) (GroupPage, error) {
	g, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return GroupPage{}, err
	}
	p, err := s.list(ctx, store.ForGroup(g.ID), page)
	if err != nil {
		return GroupPage{}, err
	}
	return GroupPage{Group: g, Page: p}, nil
}

// Profile is an author's feed plus the viewer's follow state.
func (s *Service) Profile(ctx context.Context, username string, viewer *primitive.ObjectID, page int) (ProfilePage, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return ProfilePage{}, err
	}
	p, err := s.list(ctx, store.ForAuthor(author.ID), page)
	if err != nil {
		return ProfilePage{}, err
	}
	out := ProfilePage{Author: author, PostCount: p.Page.Total, Page: p}
	switch {
	case viewer == nil:
	case *viewer == author.ID:
		own := false
		out.Following = &own
	default:
		following, err := s.IsFollowing(ctx, viewer, author.ID)
		if err != nil {
			return ProfilePage{}, err
		}
		out.Following = following
	}
	return out, nil
}

// Following is the viewer's aggregated feed: posts by any author they follow.
func (s *Service) Following(ctx context.Context, viewer primitive.ObjectID, page int) (Page, error) {
	ids, err := s.follows.AuthorIDsFollowedBy(ctx, viewer)
	if err != nil {
		return Page{}, fmt.Errorf("load followed authors: %w", err)
	}
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return s.list(ctx, store.PostFilter{AuthorIDs: ids}, page)
}

// PostDetail loads a post with its comments, oldest first.
func (s *Service) PostDetail(ctx context.Context, id primitive.ObjectID) (PostDetail, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return PostDetail{}, err
	}
	views, err := s.join(ctx, []models.Post{p})
	if err != nil {
		return PostDetail{}, err
	}
	count, err := s.posts.Count(ctx, store.ForAuthor(p.AuthorID))
	if err != nil {
		return PostDetail{}, err
	}

	comments, err := s.comments.ListByPost(ctx, p.ID)
	if err != nil {
		return PostDetail{}, err
	}
	authorIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return PostDetail{}, err
	}
	cv := make([]CommentView, len(comments))
	for i, c := range comments {
		cv[i] = CommentView{Comment: c, Author: authors[c.AuthorID], Body: htmlsanitize.PrepareForDisplay(c.Text)}
	}

	return PostDetail{Post: views[0], AuthorPostCount: count, Comments: cv}, nil
}

// list counts, clamps the requested page, fetches that window and joins it.
func (s *Service) list(ctx context.Context, f store.PostFilter, requested int) (Page, error) {
	total, err := s.posts.Count(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("count posts: %w", err)
	}
	pg := paging.Paginate(total, requested)

	posts, err := s.posts.List(ctx, f, pg.Offset, pg.Limit)
	if err != nil {
		return Page{}, fmt.Errorf("list posts: %w", err)
	}
	views, err := s.join(ctx, posts)
	if err != nil {
		return Page{}, err
	}
	return Page{Posts: views, Page: pg}, nil
}

// join attaches authors and groups with one batched lookup each.
func (s *Service) join(ctx context.Context, posts []models.Post) ([]PostView, error) {
	if len(posts) == 0 {
		return nil, nil
	}
	var authorIDs, groupIDs []primitive.ObjectID
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
		if p.GroupID != nil {
			groupIDs = append(groupIDs, *p.GroupID)
		}
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	groups, err := s.groups.GetByIDs(ctx, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	out := make([]PostView, len(posts))
	for i, p := range posts {
		v := PostView{
			Post:     p,
			Author:   authors[p.AuthorID],
			Body:     htmlsanitize.PrepareForDisplay(p.Text),
			ImageURL: s.ImageURL(p.Image),
		}
		if p.GroupID != nil {
			if g, ok := groups[*p.GroupID]; ok {
				v.Group = &g
			}
		}
		out[i] = v
	}
	return out, nil
}
