package http

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lacus-ops/bbs-service/internal/bbs"
	"github.com/lacus-ops/bbs-service/internal/config"
	"github.com/lacus-ops/bbs-service/internal/repo"
)

// CSRFStore is the per-user token store behind the CSRF guard; Redis in
// production, an in-memory map in tests.
type CSRFStore interface {
	Issue(ctx context.Context, uid string) (string, error)
	Validate(ctx context.Context, uid, token string) (bool, error)
}

type Handler struct {
	Cfg   config.Config
	Store *repo.Store
	Svc   *bbs.Service
	CSRF  CSRFStore
	Loc   *time.Location
}

func NewHandler(cfg config.Config, store *repo.Store, svc *bbs.Service, csrf CSRFStore) *Handler {
	return &Handler{
		Cfg:   cfg,
		Store: store,
		Svc:   svc,
		CSRF:  csrf,
		Loc:   cfg.Location(),
	}
}

func parseOID(raw string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(raw)
}
