package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pilot is the performer entity posts can reference. Owner is the staff
// member directly responsible for the performer, if any.
type Pilot struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Nickname  string              `bson:"nickname" json:"nickname"`
	RealName  string              `bson:"real_name,omitempty" json:"real_name,omitempty"`
	OwnerID   *primitive.ObjectID `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

// DisplayName prefers the stage nickname over the legal name.
func (p *Pilot) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.RealName
}
