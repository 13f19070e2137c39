package postpolicy

import (
	"testing"

	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanEdit(t *testing.T) {
	author := primitive.NewObjectID()
	other := primitive.NewObjectID()
	zero := primitive.NilObjectID
	post := models.Post{ID: primitive.NewObjectID(), AuthorID: author}

	tests := []struct {
		name   string
		viewer *primitive.ObjectID
		want   Decision
	}{
		{"author", &author, Allow},
		{"other user", &other, DenyNotAuthor},
		{"anonymous", nil, DenyAnonymous},
		{"zero id", &zero, DenyAnonymous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanEdit(tt.viewer, post)
			if got != tt.want {
				t.Errorf("CanEdit = %v, want %v", got, tt.want)
			}
			if got.Allowed() != (tt.want == Allow) {
				t.Errorf("Allowed() = %v", got.Allowed())
			}
		})
	}
}

func TestCanComment(t *testing.T) {
	u := primitive.NewObjectID()
	if CanComment(&u) != Allow {
		t.Error("signed-in user should be allowed to comment")
	}
	if CanComment(nil) != DenyAnonymous {
		t.Error("anonymous user should be denied")
	}
}
