package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lacus-ops/bbs-service/internal/bbs"
	"github.com/lacus-ops/bbs-service/internal/domain"
)

// ts renders a stored-UTC timestamp as both machine and display forms.
func (h *Handler) ts(t time.Time) gin.H {
	if t.IsZero() {
		return nil
	}
	return gin.H{
		"iso":     t.UTC().Format(time.RFC3339),
		"display": t.In(h.Loc).Format("2006-01-02 15:04:05"),
	}
}

func authorJSON(a domain.AuthorSnapshot) gin.H {
	return gin.H{
		"id":           a.ID,
		"nickname":     a.Nickname,
		"username":     a.Username,
		"display_name": a.DisplayName,
		"roles":        a.Roles,
	}
}

func (h *Handler) userJSON(u *domain.User) gin.H {
	return gin.H{
		"id":       u.ID.Hex(),
		"username": u.Username,
		"nickname": u.Nickname,
		"email":    u.Email,
		"active":   u.Active,
		"roles":    u.Roles,
	}
}

func (h *Handler) boardJSON(b *domain.Board) gin.H {
	return gin.H{
		"id":         b.ID.Hex(),
		"code":       b.Code,
		"name":       b.Name,
		"board_type": b.BoardType,
		"base_code":  b.BaseCode,
		"is_active":  b.IsActive,
		"order":      b.Order,
		"created_at": h.ts(b.CreatedAt),
	}
}

func (h *Handler) postJSON(p *domain.Post, viewer *domain.User) gin.H {
	out := gin.H{
		"id":             p.ID.Hex(),
		"board_id":       p.BoardID.Hex(),
		"title":          p.Title,
		"content":        p.Content,
		"author":         authorJSON(p.Author),
		"status":         p.Status,
		"is_pinned":      p.IsPinned,
		"created_at":     h.ts(p.CreatedAt),
		"updated_at":     h.ts(p.UpdatedAt),
		"last_active_at": h.ts(p.LastActiveAt),
	}
	if p.BattleRecordID != nil {
		out["battle_record_id"] = p.BattleRecordID.Hex()
	}
	if viewer != nil {
		out["is_unread"] = p.IsPendingFor(viewer.ID.Hex())
	}
	return out
}

func (h *Handler) replyJSON(r *domain.Reply) gin.H {
	out := gin.H{
		"id":         r.ID.Hex(),
		"post_id":    r.PostID.Hex(),
		"content":    r.Content,
		"author":     authorJSON(r.Author),
		"status":     r.Status,
		"created_at": h.ts(r.CreatedAt),
		"updated_at": h.ts(r.UpdatedAt),
	}
	if r.ParentReplyID != nil {
		out["parent_reply_id"] = r.ParentReplyID.Hex()
	}
	return out
}

func (h *Handler) replyTreeJSON(nodes []bbs.ReplyNode) []gin.H {
	out := make([]gin.H, 0, len(nodes))
	for _, n := range nodes {
		reply := n.Reply
		node := h.replyJSON(&reply)
		children := make([]gin.H, 0, len(n.Children))
		for _, child := range n.Children {
			c := child
			children = append(children, h.replyJSON(&c))
		}
		node["children"] = children
		out = append(out, node)
	}
	return out
}

// pilotRefsJSON joins refs with the pilot lookup map; a ref whose pilot was
// deleted keeps the id but reports no name.
func (h *Handler) pilotRefsJSON(refs []domain.PilotRef, pilots map[string]domain.Pilot) []gin.H {
	out := make([]gin.H, 0, len(refs))
	for _, ref := range refs {
		item := gin.H{
			"id":         ref.ID.Hex(),
			"pilot_id":   ref.PilotID.Hex(),
			"relevance":  ref.Relevance,
			"created_at": h.ts(ref.CreatedAt),
		}
		if p, okP := pilots[ref.PilotID.Hex()]; okP {
			item["pilot_name"] = p.DisplayName()
		}
		out = append(out, item)
	}
	return out
}

func (h *Handler) pilotJSON(p *domain.Pilot) gin.H {
	return gin.H{
		"id":       p.ID.Hex(),
		"nickname": p.Nickname,
		"name":     p.DisplayName(),
	}
}

func (h *Handler) recordJSON(r *domain.BattleRecord) gin.H {
	return gin.H{
		"id":          r.ID.Hex(),
		"pilot_id":    r.PilotID.Hex(),
		"start_time":  h.ts(r.StartTime),
		"end_time":    h.ts(r.EndTime),
		"revenue":     r.Revenue,
		"base_salary": r.BaseSalary,
		"work_mode":   r.WorkMode,
		"status":      r.Status,
		"location":    r.Location(),
		"notes":       r.Notes,
	}
}

func paginationMeta(page, perPage int, total int64) gin.H {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > 100 {
		perPage = 100
	}
	return gin.H{
		"page":     page,
		"per_page": perPage,
		"total":    total,
		"has_more": int64(page)*int64(perPage) < total,
	}
}
