package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RelevanceAuto   = "auto"   // system-inferred, owned by the auto-post generator
	RelevanceManual = "manual" // admin-curated
)

// PilotRef links a post to a pilot. Unique on (post, pilot, relevance);
// UpdatedAt orders "recently referenced" queries.
type PilotRef struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"post_id" json:"post_id"`
	PilotID   primitive.ObjectID `bson:"pilot_id" json:"pilot_id"`
	Relevance string             `bson:"relevance" json:"relevance"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
