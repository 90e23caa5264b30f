package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

func (s *Store) InsertBattleArea(ctx context.Context, a *domain.BattleArea) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	res, err := s.colAreas.InsertOne(ctx, a)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

// DistinctBases enumerates every distinct base value in the area registry,
// empties included (callers skip them).
func (s *Store) DistinctBases(ctx context.Context) ([]string, error) {
	raw, err := s.colAreas.Distinct(ctx, "base", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if name, ok := v.(string); ok {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *Store) InsertBattleRecord(ctx context.Context, r *domain.BattleRecord) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	res, err := s.colRecords.InsertOne(ctx, r)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return nil
}

func (s *Store) FindBattleRecordByID(ctx context.Context, id primitive.ObjectID) (*domain.BattleRecord, error) {
	var r domain.BattleRecord
	err := s.colRecords.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &r, err
}

func (s *Store) SetBattleRecordStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := s.colRecords.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

func (s *Store) InsertAnnouncement(ctx context.Context, a *domain.Announcement) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := s.colAnnouncements.InsertOne(ctx, a)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

func (s *Store) FindAnnouncementByID(ctx context.Context, id primitive.ObjectID) (*domain.Announcement, error) {
	var a domain.Announcement
	err := s.colAnnouncements.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &a, err
}
