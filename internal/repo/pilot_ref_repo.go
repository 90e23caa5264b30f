package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

func (s *Store) InsertPilotRef(ctx context.Context, ref *domain.PilotRef) error {
	now := time.Now().UTC()
	ref.CreatedAt = now
	ref.UpdatedAt = now
	res, err := s.colPilotRefs.InsertOne(ctx, ref)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		ref.ID = oid
	}
	return nil
}

// ListPilotRefsForPost returns refs on a post, optionally narrowed to one
// relevance, ordered by creation time.
func (s *Store) ListPilotRefsForPost(ctx context.Context, postID primitive.ObjectID, relevance string) ([]domain.PilotRef, error) {
	filter := bson.M{"post_id": postID}
	if relevance != "" {
		filter["relevance"] = relevance
	}
	cur, err := s.colPilotRefs.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.PilotRef
	for cur.Next(ctx) {
		var ref domain.PilotRef
		if err := cur.Decode(&ref); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, cur.Err()
}

func (s *Store) DeletePilotRef(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.colPilotRefs.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// TouchPilotRef bumps updated_at, the "recently referenced" ordering signal.
func (s *Store) TouchPilotRef(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.colPilotRefs.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// DistinctPostIDsForPilot returns the ids of every post referencing the pilot.
func (s *Store) DistinctPostIDsForPilot(ctx context.Context, pilotID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := s.colPilotRefs.Distinct(ctx, "post_id", bson.M{"pilot_id": pilotID})
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			out = append(out, oid)
		}
	}
	return out, nil
}
