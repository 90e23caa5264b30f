package repo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	Client *mongo.Client
	DB     *mongo.Database

	colBoards        *mongo.Collection
	colPosts         *mongo.Collection
	colReplies       *mongo.Collection
	colPilotRefs     *mongo.Collection
	colUsers         *mongo.Collection
	colPilots        *mongo.Collection
	colAreas         *mongo.Collection
	colRecords       *mongo.Collection
	colAnnouncements *mongo.Collection
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetMaxPoolSize(50),
	)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := cli.Database(dbname)
	return &Store{
		Client:           cli,
		DB:               db,
		colBoards:        db.Collection("bbs_boards"),
		colPosts:         db.Collection("bbs_posts"),
		colReplies:       db.Collection("bbs_replies"),
		colPilotRefs:     db.Collection("bbs_post_pilot_refs"),
		colUsers:         db.Collection("users"),
		colPilots:        db.Collection("pilots"),
		colAreas:         db.Collection("battle_areas"),
		colRecords:       db.Collection("battle_records"),
		colAnnouncements: db.Collection("announcements"),
	}, nil
}

func (s *Store) Close(ctx context.Context) error { return s.Client.Disconnect(ctx) }

func (s *Store) Ping(ctx context.Context) error { return s.Client.Ping(ctx, nil) }

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.colBoards.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_code"),
		},
		{
			Keys:    bson.D{{Key: "board_type", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("type_active"),
		},
		{
			Keys:    bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("order_name"),
		},
	})
	if err != nil {
		return err
	}

	_, err = s.colPosts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "board_id", Value: 1},
				{Key: "is_pinned", Value: -1},
				{Key: "last_active_at", Value: -1},
			},
			Options: options.Index().SetName("board_pinned_active"),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status")},
		{Keys: bson.D{{Key: "battle_record_id", Value: 1}}, Options: options.Index().SetName("battle_record")},
		{Keys: bson.D{{Key: "author_id", Value: 1}}, Options: options.Index().SetName("author")},
		{Keys: bson.D{{Key: "pending_reviewers", Value: 1}}, Options: options.Index().SetName("pending_reviewers")},
	})
	if err != nil {
		return err
	}

	_, err = s.colReplies.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("post_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "parent_reply_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("parent_created_desc"),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status")},
	})
	if err != nil {
		return err
	}

	_, err = s.colPilotRefs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "post_id", Value: 1},
				{Key: "pilot_id", Value: 1},
				{Key: "relevance", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_post_pilot_relevance"),
		},
		{
			Keys:    bson.D{{Key: "pilot_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("pilot_updated_desc"),
		},
		{Keys: bson.D{{Key: "post_id", Value: 1}}, Options: options.Index().SetName("post")},
	})
	if err != nil {
		return err
	}

	_, err = s.colUsers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_username"),
		},
	})
	if err != nil {
		return err
	}

	_, err = s.colAreas.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "base", Value: 1},
				{Key: "hall", Value: 1},
				{Key: "seat", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_coords"),
		},
		{Keys: bson.D{{Key: "base", Value: 1}}, Options: options.Index().SetName("base")},
	})
	if err != nil {
		return err
	}

	_, err = s.colRecords.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pilot_id", Value: 1}, {Key: "start_time", Value: -1}},
			Options: options.Index().SetName("pilot_start_desc"),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status")},
	})
	return err
}

// IsDup reports whether err is a Mongo unique-key violation.
func IsDup(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce *mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return false
}
