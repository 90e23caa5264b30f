package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	WorkModeOnline  = "online"
	WorkModeOffline = "offline"

	RecordStatusScheduled = "scheduled"
	RecordStatusLive      = "live"
	RecordStatusEnded     = "ended" // terminal; triggers the auto-post path
)

// BattleRecord is one finished (or in-progress) streaming shift.
type BattleRecord struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PilotID        primitive.ObjectID  `bson:"pilot_id" json:"pilot_id"`
	AnnouncementID *primitive.ObjectID `bson:"announcement_id,omitempty" json:"announcement_id,omitempty"`
	StartTime      time.Time           `bson:"start_time" json:"start_time"`
	EndTime        time.Time           `bson:"end_time" json:"end_time"`
	Revenue        float64             `bson:"revenue" json:"revenue"`
	BaseSalary     float64             `bson:"base_salary" json:"base_salary"`
	WorkMode       string              `bson:"work_mode" json:"work_mode"`
	Status         string              `bson:"status" json:"status"`

	// Location snapshot; empty for online shifts.
	Base string `bson:"base,omitempty" json:"base,omitempty"`
	Hall string `bson:"hall,omitempty" json:"hall,omitempty"`
	Seat string `bson:"seat,omitempty" json:"seat,omitempty"`

	RegisteredByID primitive.ObjectID `bson:"registered_by" json:"registered_by"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Location joins the non-empty coordinate parts.
func (r *BattleRecord) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Base, r.Hall, r.Seat} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}
