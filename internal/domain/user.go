package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role names are flat string tags; every permission check is a predicate
// over the viewer's role set.
const (
	RoleAdmin    = "gicho"  // administrator
	RoleOperator = "kancho" // operations staff
	RoleSergeant = "gunsou" // junior staff
)

// SystemUsername is the well-known account used as the fallback author for
// auto-generated posts.
const SystemUsername = "system"

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Nickname     string             `bson:"nickname" json:"nickname"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	Active       bool               `bson:"active" json:"active"`
	Roles        []string           `bson:"roles" json:"roles"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }
