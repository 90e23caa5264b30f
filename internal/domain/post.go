package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shared by posts and replies.
const (
	StatusPublished = "published"
	StatusHidden    = "hidden"
)

type Post struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BoardID        primitive.ObjectID  `bson:"board_id" json:"board_id"`
	Title          string              `bson:"title" json:"title"`
	Content        string              `bson:"content" json:"content"`
	AuthorID       primitive.ObjectID  `bson:"author_id" json:"author_id"`
	Author         AuthorSnapshot      `bson:"author_snapshot" json:"author"`
	Status         string              `bson:"status" json:"status"`
	IsPinned       bool                `bson:"is_pinned" json:"is_pinned"`
	BattleRecordID *primitive.ObjectID `bson:"battle_record_id,omitempty" json:"battle_record_id,omitempty"`

	// User ids with an unread update on this post.
	PendingReviewers []string `bson:"pending_reviewers" json:"pending_reviewers"`

	// Bumped on reply/edit/pin, drives list ordering; distinct from UpdatedAt.
	LastActiveAt time.Time `bson:"last_active_at" json:"last_active_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (p *Post) IsAuthor(u *User) bool {
	return u != nil && p.AuthorID == u.ID
}

func (p *Post) IsPendingFor(userID string) bool {
	for _, id := range p.PendingReviewers {
		if id == userID {
			return true
		}
	}
	return false
}
