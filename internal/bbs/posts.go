package bbs

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lacus-ops/bbs-service/internal/domain"
	"github.com/lacus-ops/bbs-service/internal/log"
	"github.com/lacus-ops/bbs-service/internal/queue"
	"github.com/lacus-ops/bbs-service/internal/repo"
)

type CreatePostInput struct {
	BoardID        string
	Title          string
	Content        string
	BattleRecordID string
	PilotIDs       []string
}

type UpdatePostInput struct {
	Title   *string
	Content *string

	// Applied only for admins; silently ignored for everyone else.
	IsPinned *bool
}

type AddReplyInput struct {
	Content       string
	ParentReplyID string
}

type ListPostsOptions struct {
	Board   *primitive.ObjectID
	Pilot   *primitive.ObjectID
	Keyword string
	Status  string
	Mine    bool
	Unread  bool
	Page    int
	PerPage int
}

// GetPost loads a post or reports POST_NOT_FOUND.
func (s *Service) GetPost(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	post, err := s.Store.FindPostByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("POST_NOT_FOUND", "post not found")
	}
	return post, err
}

func (s *Service) getReply(ctx context.Context, id primitive.ObjectID) (*domain.Reply, error) {
	reply, err := s.Store.FindReplyByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("REPLY_NOT_FOUND", "reply not found")
	}
	return reply, err
}

// CreatePost validates, persists and links a new post. The returned missing
// slice lists pilot ids that could not be resolved; they never fail the call.
func (s *Service) CreatePost(ctx context.Context, author *domain.User, in CreatePostInput) (*domain.Post, []domain.PilotRef, []string, error) {
	if strings.TrimSpace(in.BoardID) == "" {
		return nil, nil, nil, badRequest("BOARD_REQUIRED", "board_id is required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, nil, nil, badRequest("TITLE_REQUIRED", "title is required")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, nil, nil, badRequest("CONTENT_REQUIRED", "content is required")
	}

	boardID, err := primitive.ObjectIDFromHex(in.BoardID)
	if err != nil {
		return nil, nil, nil, notFound("BOARD_NOT_FOUND", "board not found")
	}
	board, err := s.Store.FindBoardByID(ctx, boardID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, nil, notFound("BOARD_NOT_FOUND", "board not found")
	}
	if err != nil {
		return nil, nil, nil, err
	}

	var recordID *primitive.ObjectID
	if strings.TrimSpace(in.BattleRecordID) != "" {
		oid, err := primitive.ObjectIDFromHex(in.BattleRecordID)
		if err != nil {
			return nil, nil, nil, notFound("BATTLE_RECORD_NOT_FOUND", "battle record not found")
		}
		if _, err := s.Store.FindBattleRecordByID(ctx, oid); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, nil, nil, notFound("BATTLE_RECORD_NOT_FOUND", "battle record not found")
			}
			return nil, nil, nil, err
		}
		recordID = &oid
	}

	post := &domain.Post{
		BoardID:        board.ID,
		Title:          title,
		Content:        content,
		AuthorID:       author.ID,
		Author:         domain.NewAuthorSnapshot(author, ""),
		Status:         domain.StatusPublished,
		BattleRecordID: recordID,
	}
	if err := s.Store.InsertPost(ctx, post); err != nil {
		return nil, nil, nil, err
	}

	refs, missing, err := s.EnsureManualPilotRefs(ctx, post, in.PilotIDs)
	if err != nil {
		return nil, nil, nil, err
	}

	s.publish(ctx, queue.KeyPostCreated, queue.PostCreated{
		PostID:   post.ID.Hex(),
		BoardID:  board.ID.Hex(),
		AuthorID: author.ID.Hex(),
	})
	return post, refs, missing, nil
}

// UpdatePost edits title and/or content; only the author or an admin may.
func (s *Service) UpdatePost(ctx context.Context, viewer *domain.User, postID primitive.ObjectID, in UpdatePostInput) (*domain.Post, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthor(viewer) && !viewer.IsAdmin() {
		return nil, forbidden("only the author or an admin may edit this post")
	}

	set := bson.M{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, badRequest("TITLE_REQUIRED", "title must not be empty")
		}
		set["title"] = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, badRequest("CONTENT_REQUIRED", "content must not be empty")
		}
		set["content"] = content
	}
	if in.IsPinned != nil && viewer.IsAdmin() {
		set["is_pinned"] = *in.IsPinned
	}
	if len(set) == 0 {
		return post, nil
	}

	if err := s.Store.UpdatePostFields(ctx, post.ID, set); err != nil {
		return nil, err
	}
	if err := s.Store.TouchPost(ctx, post.ID); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, postID)
}

// HidePost hides the post and cascades to every reply on it.
func (s *Service) HidePost(ctx context.Context, viewer *domain.User, postID primitive.ObjectID) (*domain.Post, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthor(viewer) && !viewer.IsAdmin() {
		return nil, forbidden("only the author or an admin may hide this post")
	}
	if err := s.Store.SetPostStatus(ctx, post.ID, domain.StatusHidden); err != nil {
		return nil, err
	}
	if err := s.Store.HideRepliesForPost(ctx, post.ID); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, postID)
}

// UnhidePost republishes the post only. Replies hidden by the cascade stay
// hidden until restored one by one; restoring them wholesale would also
// resurrect replies that were hidden on their own merits.
func (s *Service) UnhidePost(ctx context.Context, postID primitive.ObjectID) (*domain.Post, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.Store.SetPostStatus(ctx, post.ID, domain.StatusPublished); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, postID)
}

// SetPinned flips the pin flag; pinned posts float to the top of listings.
func (s *Service) SetPinned(ctx context.Context, postID primitive.ObjectID, pinned bool) (*domain.Post, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.Store.UpdatePostFields(ctx, post.ID, bson.M{"is_pinned": pinned}); err != nil {
		return nil, err
	}
	if err := s.Store.TouchPost(ctx, post.ID); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, postID)
}

// AddReply appends a reply (top-level, or one level under a top-level
// parent), marks the other participants unread and dispatches the digests.
func (s *Service) AddReply(ctx context.Context, viewer *domain.User, postID primitive.ObjectID, in AddReplyInput) (*domain.Reply, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !CanViewPost(viewer, post) {
		return nil, forbidden("post is not visible to you")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, badRequest("CONTENT_REQUIRED", "content is required")
	}

	var parent *domain.Reply
	if strings.TrimSpace(in.ParentReplyID) != "" {
		parentID, err := primitive.ObjectIDFromHex(in.ParentReplyID)
		if err != nil {
			return nil, notFound("REPLY_NOT_FOUND", "parent reply not found")
		}
		parent, err = s.getReply(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, notFound("REPLY_NOT_FOUND", "parent reply not found")
		}
		if !parent.IsTopLevel() {
			return nil, badRequest("REPLY_INVALID_PARENT", "replies may only nest one level deep")
		}
	}

	reply := &domain.Reply{
		PostID:   post.ID,
		Content:  content,
		AuthorID: viewer.ID,
		Author:   domain.NewAuthorSnapshot(viewer, ""),
		Status:   domain.StatusPublished,
	}
	if parent != nil {
		id := parent.ID
		reply.ParentReplyID = &id
	}
	if err := s.Store.InsertReply(ctx, reply); err != nil {
		return nil, err
	}

	if err := s.markParticipantsUnread(ctx, post, viewer.ID.Hex()); err != nil {
		return nil, err
	}
	if err := s.Store.TouchPost(ctx, post.ID); err != nil {
		return nil, err
	}

	s.dispatchReplyDigests(ctx, post, parent, reply, viewer)
	s.publish(ctx, queue.KeyReplyCreated, queue.ReplyCreated{
		ReplyID:  reply.ID.Hex(),
		PostID:   post.ID.Hex(),
		AuthorID: viewer.ID.Hex(),
	})
	return reply, nil
}

// markParticipantsUnread flags the post author and every published reply
// author, except the replier, as having something unread.
func (s *Service) markParticipantsUnread(ctx context.Context, post *domain.Post, replierID string) error {
	targets := map[string]struct{}{}
	if hex := post.AuthorID.Hex(); hex != replierID {
		targets[hex] = struct{}{}
	}
	authors, err := s.Store.DistinctPublishedReplyAuthors(ctx, post.ID)
	if err != nil {
		return err
	}
	for _, hex := range authors {
		if hex != replierID {
			targets[hex] = struct{}{}
		}
	}
	if len(targets) == 0 {
		return nil
	}
	ids := make([]string, 0, len(targets))
	for hex := range targets {
		ids = append(ids, hex)
	}
	sort.Strings(ids)
	return s.Store.AddPendingReviewers(ctx, post.ID, ids)
}

func (s *Service) dispatchReplyDigests(ctx context.Context, post *domain.Post, parent *domain.Reply, reply *domain.Reply, replier *domain.User) {
	if s.Notifier == nil {
		return
	}
	board, err := s.Store.FindBoardByID(ctx, post.BoardID)
	if err != nil {
		board = nil
	}

	lookup := func(id primitive.ObjectID) *domain.User {
		if id == replier.ID {
			return replier
		}
		u, err := s.Store.FindUserByID(ctx, id)
		if err != nil {
			return nil
		}
		return u
	}

	s.Notifier.PostAuthorNewReply(board, post, lookup(post.AuthorID), reply, parent)
	if parent != nil {
		s.Notifier.ParentReplyAuthor(board, post, parent, lookup(parent.AuthorID), reply)
	}
}

// UpdateReply edits the reply content; only the author or an admin may.
// The parent post counts the edit as activity.
func (s *Service) UpdateReply(ctx context.Context, viewer *domain.User, replyID primitive.ObjectID, content string) (*domain.Reply, error) {
	reply, err := s.getReply(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if !reply.IsAuthor(viewer) && !viewer.IsAdmin() {
		return nil, forbidden("only the author or an admin may edit this reply")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, badRequest("CONTENT_REQUIRED", "content is required")
	}
	if err := s.Store.UpdateReplyContent(ctx, reply.ID, content); err != nil {
		return nil, err
	}
	if err := s.Store.TouchPost(ctx, reply.PostID); err != nil {
		return nil, err
	}
	return s.getReply(ctx, replyID)
}

// HideReply hides the reply; hiding a top-level reply cascades to its direct
// children so the thread never shows orphaned responses.
func (s *Service) HideReply(ctx context.Context, viewer *domain.User, replyID primitive.ObjectID) (*domain.Reply, error) {
	reply, err := s.getReply(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if !reply.IsAuthor(viewer) && !viewer.IsAdmin() {
		return nil, forbidden("only the author or an admin may hide this reply")
	}
	if err := s.Store.SetReplyStatus(ctx, reply.ID, domain.StatusHidden); err != nil {
		return nil, err
	}
	if reply.IsTopLevel() {
		if err := s.Store.HideChildReplies(ctx, reply.ID); err != nil {
			return nil, err
		}
	}
	return s.getReply(ctx, replyID)
}

// MarkPostRead clears the viewer's unread marker; a no-op when absent.
func (s *Service) MarkPostRead(ctx context.Context, post *domain.Post, viewer *domain.User) error {
	if viewer == nil || !post.IsPendingFor(viewer.ID.Hex()) {
		return nil
	}
	return s.Store.PullPendingReviewer(ctx, post.ID, viewer.ID.Hex())
}

// ReplyTree returns the visible two-level reply tree of a post.
func (s *Service) ReplyTree(ctx context.Context, viewer *domain.User, post *domain.Post) ([]ReplyNode, error) {
	replies, err := s.Store.ListRepliesForPost(ctx, post.ID, ReplyVisibility(viewer))
	if err != nil {
		return nil, err
	}
	return BuildReplyTree(replies), nil
}

// ListPosts runs a filtered, paginated post query under the viewer's
// visibility. Page defaults to 1 and per-page clamps to [1,100].
func (s *Service) ListPosts(ctx context.Context, viewer *domain.User, opts ListPostsOptions) ([]domain.Post, int64, error) {
	conds := []bson.M{}
	if vis := PostVisibility(viewer); len(vis) > 0 {
		conds = append(conds, vis)
	}
	if opts.Board != nil {
		conds = append(conds, bson.M{"board_id": *opts.Board})
	}
	if opts.Pilot != nil {
		ids, err := s.Store.DistinctPostIDsForPilot(ctx, *opts.Pilot)
		if err != nil {
			return nil, 0, err
		}
		if len(ids) == 0 {
			return nil, 0, nil
		}
		conds = append(conds, bson.M{"_id": bson.M{"$in": ids}})
	}
	if kw := strings.TrimSpace(opts.Keyword); kw != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(kw), Options: "i"}
		conds = append(conds, bson.M{"$or": []bson.M{
			{"title": pattern},
			{"content": pattern},
		}})
	}
	if opts.Status == domain.StatusPublished || opts.Status == domain.StatusHidden {
		conds = append(conds, bson.M{"status": opts.Status})
	}
	if opts.Mine && viewer != nil {
		conds = append(conds, bson.M{"author_id": viewer.ID})
	}
	if opts.Unread && viewer != nil {
		conds = append(conds, bson.M{"pending_reviewers": viewer.ID.Hex()})
	}

	filter := bson.M{}
	switch len(conds) {
	case 0:
	case 1:
		filter = conds[0]
	default:
		filter = bson.M{"$and": conds}
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage < 1 {
		perPage = 1
	}
	if perPage > 100 {
		perPage = 100
	}

	total, err := s.Store.CountPosts(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	posts, err := s.Store.FindPosts(ctx, filter, int64(page-1)*int64(perPage), int64(perPage))
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// RecentPostsForPilot returns up to three of the most recently active posts
// referencing the pilot that the viewer may see.
func (s *Service) RecentPostsForPilot(ctx context.Context, viewer *domain.User, pilotID primitive.ObjectID) (*domain.Pilot, []domain.Post, error) {
	pilot, err := s.Store.FindPilotByID(ctx, pilotID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, notFound("PILOT_NOT_FOUND", "pilot not found")
	}
	if err != nil {
		return nil, nil, err
	}

	ids, err := s.Store.DistinctPostIDsForPilot(ctx, pilot.ID)
	if err != nil {
		return nil, nil, err
	}
	candidates, err := s.Store.FindPostsByIDs(ctx, ids, 10)
	if err != nil {
		return nil, nil, err
	}

	out := make([]domain.Post, 0, 3)
	for _, p := range candidates {
		post := p
		if !CanViewPost(viewer, &post) {
			continue
		}
		out = append(out, post)
		if len(out) == 3 {
			break
		}
	}
	return pilot, out, nil
}

func (s *Service) publish(ctx context.Context, key string, payload any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, key, payload); err != nil {
		log.L().Warn("event publish failed", zap.String("key", key), zap.Error(err))
	}
}
