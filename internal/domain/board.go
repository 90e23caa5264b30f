package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BoardTypeBase   = "base"   // tied 1:1 to a physical base location
	BoardTypeCustom = "custom" // manually curated
)

type Board struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code" json:"code"` // unique slug
	Name      string             `bson:"name" json:"name"`
	BoardType string             `bson:"board_type" json:"board_type"`
	BaseCode  string             `bson:"base_code,omitempty" json:"base_code,omitempty"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	Order     int                `bson:"order" json:"order"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
