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

func (s *Store) InsertReply(ctx context.Context, r *domain.Reply) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	res, err := s.colReplies.InsertOne(ctx, r)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return nil
}

func (s *Store) FindReplyByID(ctx context.Context, id primitive.ObjectID) (*domain.Reply, error) {
	var r domain.Reply
	err := s.colReplies.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &r, err
}

func (s *Store) UpdateReplyContent(ctx context.Context, id primitive.ObjectID, content string) error {
	_, err := s.colReplies.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"content":    content,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

func (s *Store) SetReplyStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := s.colReplies.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// HideRepliesForPost silences the whole reply tree of a post.
func (s *Store) HideRepliesForPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := s.colReplies.UpdateMany(ctx, bson.M{"post_id": postID}, bson.M{"$set": bson.M{
		"status":     domain.StatusHidden,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// HideChildReplies silences the direct children of a top-level reply.
func (s *Store) HideChildReplies(ctx context.Context, parentID primitive.ObjectID) error {
	_, err := s.colReplies.UpdateMany(ctx, bson.M{"parent_reply_id": parentID}, bson.M{"$set": bson.M{
		"status":     domain.StatusHidden,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// ListRepliesForPost returns replies matching the visibility filter, oldest
// first, the order reply-tree assembly expects.
func (s *Store) ListRepliesForPost(ctx context.Context, postID primitive.ObjectID, visibility bson.M) ([]domain.Reply, error) {
	filter := bson.M{"post_id": postID}
	for k, v := range visibility {
		filter[k] = v
	}
	cur, err := s.colReplies.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Reply
	for cur.Next(ctx) {
		var r domain.Reply
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, cur.Err()
}

// CountReplies counts a post's replies under the given visibility filter,
// both levels.
func (s *Store) CountReplies(ctx context.Context, postID primitive.ObjectID, visibility bson.M) (int64, error) {
	filter := bson.M{"post_id": postID}
	for k, v := range visibility {
		filter[k] = v
	}
	return s.colReplies.CountDocuments(ctx, filter)
}

// LatestReply returns the newest reply on a post regardless of status, or
// ErrNotFound when there is none.
func (s *Store) LatestReply(ctx context.Context, postID primitive.ObjectID) (*domain.Reply, error) {
	var r domain.Reply
	err := s.colReplies.FindOne(ctx, bson.M{"post_id": postID},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &r, err
}

// DistinctPublishedReplyAuthors returns the author ids of every published
// reply on a post, as hex strings.
func (s *Store) DistinctPublishedReplyAuthors(ctx context.Context, postID primitive.ObjectID) ([]string, error) {
	raw, err := s.colReplies.Distinct(ctx, "author_id", bson.M{
		"post_id": postID,
		"status":  domain.StatusPublished,
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			out = append(out, oid.Hex())
		}
	}
	return out, nil
}
