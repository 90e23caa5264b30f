package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Reply struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PostID        primitive.ObjectID  `bson:"post_id" json:"post_id"`
	ParentReplyID *primitive.ObjectID `bson:"parent_reply_id,omitempty" json:"parent_reply_id,omitempty"`
	Content       string              `bson:"content" json:"content"`
	AuthorID      primitive.ObjectID  `bson:"author_id" json:"author_id"`
	Author        AuthorSnapshot      `bson:"author_snapshot" json:"author"`
	Status        string              `bson:"status" json:"status"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}

func (r *Reply) IsTopLevel() bool { return r.ParentReplyID == nil }

func (r *Reply) IsAuthor(u *User) bool {
	return u != nil && r.AuthorID == u.ID
}
