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

func (s *Store) InsertBoard(ctx context.Context, b *domain.Board) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	res, err := s.colBoards.InsertOne(ctx, b)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return nil
}

func (s *Store) FindBoardByID(ctx context.Context, id primitive.ObjectID) (*domain.Board, error) {
	var b domain.Board
	err := s.colBoards.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &b, err
}

func (s *Store) FindBoardByCode(ctx context.Context, code string) (*domain.Board, error) {
	var b domain.Board
	err := s.colBoards.FindOne(ctx, bson.M{"code": code}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &b, err
}

func (s *Store) SetBoardActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	_, err := s.colBoards.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// ListBoards returns boards ordered by (order, name). active narrows by the
// is_active flag when non-nil.
func (s *Store) ListBoards(ctx context.Context, active *bool) ([]domain.Board, error) {
	filter := bson.M{}
	if active != nil {
		filter["is_active"] = *active
	}
	cur, err := s.colBoards.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Board
	for cur.Next(ctx) {
		var b domain.Board
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, cur.Err()
}
