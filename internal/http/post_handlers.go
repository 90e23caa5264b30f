package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lacus-ops/bbs-service/internal/bbs"
	"github.com/lacus-ops/bbs-service/internal/domain"
	"github.com/lacus-ops/bbs-service/internal/repo"
)

type createPostReq struct {
	BoardID        string   `json:"board_id"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	BattleRecordID string   `json:"battle_record_id"`
	PilotIDs       []string `json:"pilot_ids"`
}

type updatePostReq struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsPinned *bool   `json:"is_pinned"`
}

type addReplyReq struct {
	Content       string `json:"content"`
	ParentReplyID string `json:"parent_reply_id"`
}

type replyContentReq struct {
	Content string `json:"content"`
}

type pinReq struct {
	Pinned bool `json:"pinned"`
}

type postPilotsReq struct {
	PilotIDs []string `json:"pilot_ids"`
}

// ListPosts godoc
// @Summary List posts under the viewer's visibility
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param board_id query string false "board filter"
// @Param pilot_id query string false "pilot filter"
// @Param keyword query string false "title/content substring"
// @Param status query string false "published or hidden"
// @Param mine query bool false "only the viewer's posts"
// @Param unread query bool false "only posts with unread updates"
// @Param page query int false "page, 1-based"
// @Param per_page query int false "page size, 1..100"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	viewer := Viewer(c)
	opts := bbs.ListPostsOptions{
		Keyword: c.Query("keyword"),
		Status:  c.Query("status"),
		Mine:    c.Query("mine") == "true",
		Unread:  c.Query("unread") == "true",
	}
	opts.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	opts.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	if raw := c.Query("board_id"); raw != "" {
		oid, err := parseOID(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "board_id is not a valid id")
			return
		}
		opts.Board = &oid
	}
	if raw := c.Query("pilot_id"); raw != "" {
		oid, err := parseOID(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "pilot_id is not a valid id")
			return
		}
		opts.Pilot = &oid
	}

	posts, total, err := h.Svc.ListPosts(c.Request.Context(), viewer, opts)
	if err != nil {
		failErr(c, err)
		return
	}

	items := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		post := p
		item := h.postJSON(&post, viewer)

		// Admins and the post author count hidden replies too.
		replyFilter := bbs.ReplyVisibility(nil)
		if viewer.IsAdmin() || post.IsAuthor(viewer) {
			replyFilter = bson.M{}
		}
		count, err := h.Store.CountReplies(c.Request.Context(), post.ID, replyFilter)
		if err != nil {
			failErr(c, err)
			return
		}
		item["reply_count"] = count
		if latest, err := h.Store.LatestReply(c.Request.Context(), post.ID); err == nil {
			item["latest_reply"] = gin.H{
				"author":     authorJSON(latest.Author),
				"created_at": h.ts(latest.CreatedAt),
			}
		} else if !errors.Is(err, repo.ErrNotFound) {
			failErr(c, err)
			return
		}
		items = append(items, item)
	}
	ok(c, http.StatusOK, items, paginationMeta(opts.Page, opts.PerPage, total))
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createPostReq true "post"
// @Success 201 {object} map[string]interface{}
// @Router /api/bbs/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "malformed request body")
		return
	}

	post, refs, missing, err := h.Svc.CreatePost(c.Request.Context(), Viewer(c), bbs.CreatePostInput{
		BoardID:        req.BoardID,
		Title:          req.Title,
		Content:        req.Content,
		BattleRecordID: req.BattleRecordID,
		PilotIDs:       req.PilotIDs,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	pilots, err := h.pilotsForRefs(c, refs)
	if err != nil {
		failErr(c, err)
		return
	}
	var meta gin.H
	if len(missing) > 0 {
		meta = gin.H{"missing_pilots": missing}
	}
	ok(c, http.StatusCreated, gin.H{
		"post":       h.postJSON(post, Viewer(c)),
		"pilot_refs": h.pilotRefsJSON(refs, pilots),
	}, meta)
}

// GetPost godoc
// @Summary Post detail with reply tree and pilot references
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	viewer := Viewer(c)
	post, errResp := h.visiblePost(c)
	if errResp {
		return
	}
	ctx := c.Request.Context()

	// Serialize the unread flag the viewer walked in with, then clear it.
	wasUnread := post.IsPendingFor(viewer.ID.Hex())
	if err := h.Svc.MarkPostRead(ctx, post, viewer); err != nil {
		failErr(c, err)
		return
	}

	tree, err := h.Svc.ReplyTree(ctx, viewer, post)
	if err != nil {
		failErr(c, err)
		return
	}

	refs, err := h.Store.ListPilotRefsForPost(ctx, post.ID, "")
	if err != nil {
		failErr(c, err)
		return
	}
	pilots, err := h.pilotsForRefs(c, refs)
	if err != nil {
		failErr(c, err)
		return
	}

	board, err := h.Store.FindBoardByID(ctx, post.BoardID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		failErr(c, err)
		return
	}

	data := gin.H{
		"post":       h.postJSON(post, viewer),
		"replies":    h.replyTreeJSON(tree),
		"pilot_refs": h.pilotRefsJSON(refs, pilots),
	}
	data["post"].(gin.H)["is_unread"] = wasUnread
	if board != nil {
		data["board"] = h.boardJSON(board)
	}
	if post.BattleRecordID != nil {
		rec, err := h.Store.FindBattleRecordByID(ctx, *post.BattleRecordID)
		switch {
		case err == nil:
			data["battle_record"] = h.recordJSON(rec)
			data["related_battle_record_missing"] = false
		case errors.Is(err, repo.ErrNotFound):
			data["related_battle_record_missing"] = true
		default:
			failErr(c, err)
			return
		}
	}
	ok(c, http.StatusOK, data, nil)
}

// UpdatePost godoc
// @Summary Edit a post's title or content
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Param body body updatePostReq true "fields"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/posts/{id} [patch]
func (h *Handler) UpdatePost(c *gin.Context) {
	postID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "POST_NOT_FOUND", "post not found")
		return
	}
	var req updatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "malformed request body")
		return
	}
	post, err := h.Svc.UpdatePost(c.Request.Context(), Viewer(c), postID, bbs.UpdatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		IsPinned: req.IsPinned,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.postJSON(post, Viewer(c)), nil)
}

// HidePost godoc
// @Summary Hide a post and all of its replies
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/posts/{id}/hide [post]
func (h *Handler) HidePost(c *gin.Context) {
	postID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "POST_NOT_FOUND", "post not found")
		return
	}
	post, err := h.Svc.HidePost(c.Request.Context(), Viewer(c), postID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.postJSON(post, Viewer(c)), nil)
}

// UnhidePost godoc
// @Summary Republish a hidden post; replies stay hidden
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/posts/{id}/unhide [post]
func (h *Handler) UnhidePost(c *gin.Context) {
	postID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "POST_NOT_FOUND", "post not found")
		return
	}
	post, err := h.Svc.UnhidePost(c.Request.Context(), postID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.postJSON(post, Viewer(c)), nil)
}

// PinPost godoc
// @Summary Pin or unpin a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Param body body pinReq true "pin flag"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/posts/{id}/pin [post]
func (h *Handler) PinPost(c *gin.Context) {
	postID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "POST_NOT_FOUND", "post not found")
		return
	}
	var req pinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "malformed request body")
		return
	}
	post, err := h.Svc.SetPinned(c.Request.Context(), postID, req.Pinned)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.postJSON(post, Viewer(c)), nil)
}

// AddReply godoc
// @Summary Reply to a post, optionally under a top-level reply
// @Tags replies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Param body body addReplyReq true "reply"
// @Success 201 {object} map[string]interface{}
// @Router /api/bbs/posts/{id}/replies [post]
func (h *Handler) AddReply(c *gin.Context) {
	postID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "POST_NOT_FOUND", "post not found")
		return
	}
	var req addReplyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "malformed request body")
		return
	}
	reply, err := h.Svc.AddReply(c.Request.Context(), Viewer(c), postID, bbs.AddReplyInput{
		Content:       req.Content,
		ParentReplyID: req.ParentReplyID,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, h.replyJSON(reply), nil)
}

// UpdateReply godoc
// @Summary Edit a reply
// @Tags replies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "reply id"
// @Param body body replyContentReq true "content"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/replies/{id} [patch]
func (h *Handler) UpdateReply(c *gin.Context) {
	replyID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "REPLY_NOT_FOUND", "reply not found")
		return
	}
	var req replyContentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "malformed request body")
		return
	}
	reply, err := h.Svc.UpdateReply(c.Request.Context(), Viewer(c), replyID, req.Content)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.replyJSON(reply), nil)
}

// HideReply godoc
// @Summary Hide a reply; a top-level reply takes its children with it
// @Tags replies
// @Produce json
// @Security BearerAuth
// @Param id path string true "reply id"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/replies/{id}/hide [post]
func (h *Handler) HideReply(c *gin.Context) {
	replyID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "REPLY_NOT_FOUND", "reply not found")
		return
	}
	reply, err := h.Svc.HideReply(c.Request.Context(), Viewer(c), replyID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.replyJSON(reply), nil)
}

// UpdatePostPilots godoc
// @Summary Replace the manual pilot references on a post (admin only)
// @Tags pilots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Param body body postPilotsReq true "pilot ids"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/posts/{id}/pilots [put]
func (h *Handler) UpdatePostPilots(c *gin.Context) {
	postID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "POST_NOT_FOUND", "post not found")
		return
	}
	var req postPilotsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "malformed request body")
		return
	}
	post, err := h.Svc.GetPost(c.Request.Context(), postID)
	if err != nil {
		failErr(c, err)
		return
	}

	refs, missing, err := h.Svc.EnsureManualPilotRefs(c.Request.Context(), post, req.PilotIDs)
	if err != nil {
		failErr(c, err)
		return
	}
	pilots, err := h.pilotsForRefs(c, refs)
	if err != nil {
		failErr(c, err)
		return
	}
	var meta gin.H
	if len(missing) > 0 {
		meta = gin.H{"missing_pilots": missing}
	}
	ok(c, http.StatusOK, h.pilotRefsJSON(refs, pilots), meta)
}

// RecentPostsForPilot godoc
// @Summary Up to three recently active posts referencing a pilot
// @Tags pilots
// @Produce json
// @Security BearerAuth
// @Param id path string true "pilot id"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/pilots/{id}/recent-posts [get]
func (h *Handler) RecentPostsForPilot(c *gin.Context) {
	pilotID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "PILOT_NOT_FOUND", "pilot not found")
		return
	}
	pilot, posts, err := h.Svc.RecentPostsForPilot(c.Request.Context(), Viewer(c), pilotID)
	if err != nil {
		failErr(c, err)
		return
	}
	items := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		post := p
		items = append(items, h.postJSON(&post, Viewer(c)))
	}
	ok(c, http.StatusOK, gin.H{
		"pilot": h.pilotJSON(pilot),
		"posts": items,
	}, nil)
}

// visiblePost resolves :id and enforces visibility. A post the viewer may
// not see is a 403, not a 404: its existence is not a secret, its content
// is. Returns handled=true after writing an error response.
func (h *Handler) visiblePost(c *gin.Context) (*domain.Post, bool) {
	postID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "POST_NOT_FOUND", "post not found")
		return nil, true
	}
	post, err := h.Svc.GetPost(c.Request.Context(), postID)
	if err != nil {
		failErr(c, err)
		return nil, true
	}
	if !bbs.CanViewPost(Viewer(c), post) {
		fail(c, http.StatusForbidden, "FORBIDDEN", "post is not visible to you")
		return nil, true
	}
	return post, false
}

func (h *Handler) pilotsForRefs(c *gin.Context, refs []domain.PilotRef) (map[string]domain.Pilot, error) {
	ids := make([]primitive.ObjectID, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.PilotID)
	}
	return h.Store.FindPilotsByIDs(c.Request.Context(), ids)
}
