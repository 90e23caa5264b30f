package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcement is the scheduled slot a battle record may link back to.
// Only the fields the BBS templates render are modeled here.
type Announcement struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PilotID   primitive.ObjectID `bson:"pilot_id" json:"pilot_id"`
	StartTime time.Time          `bson:"start_time" json:"start_time"`
	EndTime   time.Time          `bson:"end_time" json:"end_time"`
	Base      string             `bson:"base,omitempty" json:"base,omitempty"`
	Hall      string             `bson:"hall,omitempty" json:"hall,omitempty"`
	Seat      string             `bson:"seat,omitempty" json:"seat,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

func (a *Announcement) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Base, a.Hall, a.Seat} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}
