package domain

// AuthorSnapshot freezes the author's display identity at post/reply
// creation time. Later profile edits never rewrite historical attribution,
// so the snapshot is copied, not re-joined from the live user document.
type AuthorSnapshot struct {
	ID          string   `bson:"id" json:"id"`
	Nickname    string   `bson:"nickname" json:"nickname"`
	Username    string   `bson:"username" json:"username"`
	DisplayName string   `bson:"display_name" json:"display_name"`
	Roles       []string `bson:"roles" json:"roles"`
}

// NewAuthorSnapshot captures u. displayName overrides the usual
// nickname -> username fallback when non-empty.
func NewAuthorSnapshot(u *User, displayName string) AuthorSnapshot {
	if u == nil {
		return AuthorSnapshot{}
	}
	if displayName == "" {
		displayName = u.Nickname
	}
	if displayName == "" {
		displayName = u.Username
	}
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return AuthorSnapshot{
		ID:          u.ID.Hex(),
		Nickname:    u.Nickname,
		Username:    u.Username,
		DisplayName: displayName,
		Roles:       roles,
	}
}
