package bbs

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

func TestCanViewPost(t *testing.T) {
	author := &domain.User{ID: primitive.NewObjectID(), Roles: []string{domain.RoleSergeant}}
	other := &domain.User{ID: primitive.NewObjectID(), Roles: []string{domain.RoleSergeant}}
	admin := &domain.User{ID: primitive.NewObjectID(), Roles: []string{domain.RoleAdmin}}

	published := &domain.Post{AuthorID: author.ID, Status: domain.StatusPublished}
	hidden := &domain.Post{AuthorID: author.ID, Status: domain.StatusHidden}

	cases := []struct {
		name   string
		viewer *domain.User
		post   *domain.Post
		want   bool
	}{
		{"published/other", other, published, true},
		{"published/nil viewer", nil, published, true},
		{"hidden/other", other, hidden, false},
		{"hidden/author", author, hidden, true},
		{"hidden/admin", admin, hidden, true},
		{"hidden/nil viewer", nil, hidden, false},
	}
	for _, tc := range cases {
		if got := CanViewPost(tc.viewer, tc.post); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPostVisibility_Shapes(t *testing.T) {
	admin := &domain.User{ID: primitive.NewObjectID(), Roles: []string{domain.RoleAdmin}}
	if f := PostVisibility(admin); len(f) != 0 {
		t.Fatalf("admin filter should be empty, got %v", f)
	}

	staff := &domain.User{ID: primitive.NewObjectID(), Roles: []string{domain.RoleOperator}}
	f := PostVisibility(staff)
	if _, okOr := f["$or"]; !okOr {
		t.Fatalf("staff filter should be an $or, got %v", f)
	}

	if f := PostVisibility(nil); f["status"] != domain.StatusPublished {
		t.Fatalf("anonymous filter should pin status, got %v", f)
	}
}
