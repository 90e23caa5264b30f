package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

func (s *Store) InsertPilot(ctx context.Context, p *domain.Pilot) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := s.colPilots.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (s *Store) FindPilotByID(ctx context.Context, id primitive.ObjectID) (*domain.Pilot, error) {
	var p domain.Pilot
	err := s.colPilots.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &p, err
}

// FindPilotsByIDs returns the matching pilots keyed by hex id, for
// serializing pilot-ref lists in one round trip.
func (s *Store) FindPilotsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]domain.Pilot, error) {
	out := make(map[string]domain.Pilot, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.colPilots.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var p domain.Pilot
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out[p.ID.Hex()] = p
	}
	return out, cur.Err()
}
