package queue

// Routing keys on the bbs.events exchange.
const (
	KeyPostCreated     = "post.created"
	KeyReplyCreated    = "reply.created"
	KeyAutoPostCreated = "post.autocreated"
)

type PostCreated struct {
	PostID   string `json:"post_id"`
	BoardID  string `json:"board_id"`
	AuthorID string `json:"author_id"`
}

type ReplyCreated struct {
	ReplyID  string `json:"reply_id"`
	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id"`
}

type AutoPostCreated struct {
	PostID         string `json:"post_id"`
	BattleRecordID string `json:"battle_record_id"`
}
