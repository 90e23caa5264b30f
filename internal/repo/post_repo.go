package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

func (s *Store) InsertPost(ctx context.Context, p *domain.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.LastActiveAt.IsZero() {
		p.LastActiveAt = now
	}
	if p.PendingReviewers == nil {
		p.PendingReviewers = []string{}
	}
	res, err := s.colPosts.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (s *Store) FindPostByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	var p domain.Post
	err := s.colPosts.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &p, err
}

func (s *Store) FindPostByBattleRecord(ctx context.Context, recordID primitive.ObjectID) (*domain.Post, error) {
	var p domain.Post
	err := s.colPosts.FindOne(ctx, bson.M{"battle_record_id": recordID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &p, err
}

// UpdatePostFields applies a partial $set and bumps updated_at.
func (s *Store) UpdatePostFields(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	_, err := s.colPosts.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

func (s *Store) SetPostStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	return s.UpdatePostFields(ctx, id, bson.M{"status": status})
}

// TouchPost bumps last_active_at together with updated_at.
func (s *Store) TouchPost(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.colPosts.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"last_active_at": now,
		"updated_at":     now,
	}})
	return err
}

// AddPendingReviewers adds ids with an atomic set-union so concurrent
// replies never clobber each other's markers.
func (s *Store) AddPendingReviewers(ctx context.Context, postID primitive.ObjectID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.colPosts.UpdateByID(ctx, postID, bson.M{
		"$addToSet": bson.M{"pending_reviewers": bson.M{"$each": ids}},
	})
	return err
}

// PullPendingReviewer removes the viewer's unread marker; a no-op when absent.
func (s *Store) PullPendingReviewer(ctx context.Context, postID primitive.ObjectID, userID string) error {
	_, err := s.colPosts.UpdateByID(ctx, postID, bson.M{
		"$pull": bson.M{"pending_reviewers": userID},
	})
	return err
}

// FindPosts lists posts matching filter, pinned first then most recently
// active, with skip/limit pagination.
func (s *Store) FindPosts(ctx context.Context, filter bson.M, skip, limit int64) ([]domain.Post, error) {
	cur, err := s.colPosts.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "is_pinned", Value: -1}, {Key: "last_active_at", Value: -1}}).
			SetSkip(skip).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Post
	for cur.Next(ctx) {
		var p domain.Post
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

func (s *Store) CountPosts(ctx context.Context, filter bson.M) (int64, error) {
	return s.colPosts.CountDocuments(ctx, filter)
}

// FindPostsByIDs returns the matching posts ordered by last_active_at
// descending, at most limit.
func (s *Store) FindPostsByIDs(ctx context.Context, ids []primitive.ObjectID, limit int64) ([]domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.colPosts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().
			SetSort(bson.D{{Key: "last_active_at", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Post
	for cur.Next(ctx) {
		var p domain.Post
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}
