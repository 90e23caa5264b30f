package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BattleArea is one streaming location: base / hall / seat, unique as a
// triple. The board provisioner keys off the distinct base values.
type BattleArea struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Base      string             `bson:"base" json:"base"`
	Hall      string             `bson:"hall" json:"hall"`
	Seat      string             `bson:"seat" json:"seat"`
	Enabled   bool               `bson:"enabled" json:"enabled"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
