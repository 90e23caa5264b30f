package bbs

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

// PostVisibility restricts a post query to what viewer may see: published
// items, plus the viewer's own, plus everything for admins.
func PostVisibility(viewer *domain.User) bson.M {
	if viewer == nil {
		return bson.M{"status": domain.StatusPublished}
	}
	if viewer.IsAdmin() {
		return bson.M{}
	}
	return bson.M{"$or": []bson.M{
		{"status": domain.StatusPublished},
		{"author_id": viewer.ID},
	}}
}

// ReplyVisibility is the same predicate over replies.
func ReplyVisibility(viewer *domain.User) bson.M {
	if viewer == nil {
		return bson.M{"status": domain.StatusPublished}
	}
	if viewer.IsAdmin() {
		return bson.M{}
	}
	return bson.M{"$or": []bson.M{
		{"status": domain.StatusPublished},
		{"author_id": viewer.ID},
	}}
}

// CanViewPost is the point check: published posts are visible to anyone,
// hidden posts only to their author or an admin.
func CanViewPost(viewer *domain.User, post *domain.Post) bool {
	if post == nil {
		return false
	}
	if post.Status == domain.StatusPublished {
		return true
	}
	if viewer == nil {
		return false
	}
	if post.AuthorID == viewer.ID {
		return true
	}
	return viewer.IsAdmin()
}
