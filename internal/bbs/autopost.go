package bbs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lacus-ops/bbs-service/internal/domain"
	"github.com/lacus-ops/bbs-service/internal/log"
	"github.com/lacus-ops/bbs-service/internal/metrics"
	"github.com/lacus-ops/bbs-service/internal/queue"
	"github.com/lacus-ops/bbs-service/internal/repo"
)

// autoPostSkipReason checks the generation preconditions in order and names
// the first one that fails, or returns "" when the record qualifies.
func autoPostSkipReason(rec *domain.BattleRecord) string {
	switch {
	case rec.Status != domain.RecordStatusEnded:
		return "record has not ended"
	case rec.Revenue == 0:
		return "record has zero revenue"
	case strings.TrimSpace(rec.Notes) == "":
		return "record carries no notes"
	case strings.TrimSpace(rec.Base) == "":
		return "record names no base"
	}
	return ""
}

// BuildBattleRecordContent renders the auto-post title and body from the
// record, its pilot and the optionally linked announcement.
func BuildBattleRecordContent(rec *domain.BattleRecord, pilot *domain.Pilot, ann *domain.Announcement, loc *time.Location) (string, string) {
	pilotName := "unknown pilot"
	if pilot != nil && pilot.DisplayName() != "" {
		pilotName = pilot.DisplayName()
	}

	start := rec.StartTime.In(loc).Format("2006-01-02 15:04")
	end := rec.EndTime.In(loc).Format("15:04")
	location := rec.Location()
	if rec.WorkMode == domain.WorkModeOnline {
		location = "online"
	}
	if location == "" {
		location = "unspecified location"
	}

	title := fmt.Sprintf("[Stream Log] %s %s", pilotName, start)

	notes := strings.TrimSpace(rec.Notes)
	if notes == "" {
		notes = "none"
	}
	lines := []string{
		fmt.Sprintf("%s finished a stream at %s, %s - %s.", pilotName, location, start, end),
		fmt.Sprintf("Revenue: ¥%.2f, base salary: ¥%.2f.", rec.Revenue, rec.BaseSalary),
		fmt.Sprintf("Notes: %s", notes),
	}
	if ann != nil {
		annLoc := ann.Location()
		if annLoc == "" {
			annLoc = "unspecified location"
		}
		lines = append(lines, fmt.Sprintf("Linked announcement: %s @ %s.",
			ann.StartTime.In(loc).Format("2006-01-02 15:04"), annLoc))
	}
	return title, strings.Join(lines, "\n")
}

// CreatePostForBattleRecord generates the stream-log post for an ended
// record. Records that fail a precondition are skipped with a log line, and
// a record that already has a post returns it unchanged, so the trigger is
// safe to fire repeatedly.
func (s *Service) CreatePostForBattleRecord(ctx context.Context, rec *domain.BattleRecord) (*domain.Post, error) {
	if reason := autoPostSkipReason(rec); reason != "" {
		log.L().Debug("auto post skipped",
			zap.String("record_id", rec.ID.Hex()),
			zap.String("reason", reason),
		)
		return nil, nil
	}

	if existing, err := s.Store.FindPostByBattleRecord(ctx, rec.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	board, err := s.EnsureBoardForBase(ctx, rec.Base)
	if err != nil {
		return nil, err
	}

	pilot, err := s.Store.FindPilotByID(ctx, rec.PilotID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		pilot = nil
	}

	author, display, owner, err := s.pickAutoPostAuthor(ctx, pilot, rec)
	if err != nil {
		return nil, err
	}

	var ann *domain.Announcement
	if rec.AnnouncementID != nil {
		ann, err = s.Store.FindAnnouncementByID(ctx, *rec.AnnouncementID)
		if err != nil {
			if !errors.Is(err, repo.ErrNotFound) {
				return nil, err
			}
			ann = nil
		}
	}

	title, content := BuildBattleRecordContent(rec, pilot, ann, s.Loc)
	recordID := rec.ID
	post := &domain.Post{
		BoardID:        board.ID,
		Title:          title,
		Content:        content,
		AuthorID:       author.ID,
		Author:         domain.NewAuthorSnapshot(author, display),
		Status:         domain.StatusPublished,
		BattleRecordID: &recordID,
	}
	if err := s.Store.InsertPost(ctx, post); err != nil {
		if repo.IsDup(err) {
			return s.Store.FindPostByBattleRecord(ctx, rec.ID)
		}
		return nil, err
	}
	metrics.AutoPostsCreated.Inc()
	log.L().Info("auto post created",
		zap.String("record_id", rec.ID.Hex()),
		zap.String("post_id", post.ID.Hex()),
		zap.String("board", board.Code),
	)

	if pilot != nil {
		ref := &domain.PilotRef{
			PostID:    post.ID,
			PilotID:   pilot.ID,
			Relevance: domain.RelevanceAuto,
		}
		if err := s.Store.InsertPilotRef(ctx, ref); err != nil && !repo.IsDup(err) {
			return nil, err
		}
	}

	if s.Notifier != nil && pilot != nil {
		s.Notifier.AutoPostCreated(rec, pilot, owner, board, post)
	}
	s.publish(ctx, queue.KeyAutoPostCreated, queue.AutoPostCreated{
		PostID:         post.ID.Hex(),
		BattleRecordID: rec.ID.Hex(),
	})
	return post, nil
}

// pickAutoPostAuthor resolves the post author: the pilot's owner, then the
// system account (with its fixed display name), then whoever registered the
// record. It also returns the owner for notification use.
func (s *Service) pickAutoPostAuthor(ctx context.Context, pilot *domain.Pilot, rec *domain.BattleRecord) (*domain.User, string, *domain.User, error) {
	var owner *domain.User
	if pilot != nil && pilot.OwnerID != nil {
		u, err := s.Store.FindUserByID(ctx, *pilot.OwnerID)
		if err == nil {
			owner = u
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, "", nil, err
		}
	}
	if owner != nil {
		return owner, "", owner, nil
	}

	system, err := s.Store.FindUserByUsername(ctx, domain.SystemUsername)
	if err == nil {
		return system, "System Auto Post", nil, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", nil, err
	}

	registrar, err := s.Store.FindUserByID(ctx, rec.RegisteredByID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", nil, fmt.Errorf("no author available for auto post on record %s", rec.ID.Hex())
		}
		return nil, "", nil, err
	}
	return registrar, "", nil, nil
}

// EndBattleRecord marks the record ended and runs the auto-post generator.
// The returned post is nil when generation was skipped.
func (s *Service) EndBattleRecord(ctx context.Context, recordID primitive.ObjectID) (*domain.BattleRecord, *domain.Post, error) {
	rec, err := s.Store.FindBattleRecordByID(ctx, recordID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, notFound("BATTLE_RECORD_NOT_FOUND", "battle record not found")
	}
	if err != nil {
		return nil, nil, err
	}

	if rec.Status != domain.RecordStatusEnded {
		if err := s.Store.SetBattleRecordStatus(ctx, rec.ID, domain.RecordStatusEnded); err != nil {
			return nil, nil, err
		}
		rec.Status = domain.RecordStatusEnded
	}

	post, err := s.CreatePostForBattleRecord(ctx, rec)
	if err != nil {
		return nil, nil, err
	}
	return rec, post, nil
}
