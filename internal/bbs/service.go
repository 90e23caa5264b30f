package bbs

import (
	"sync"
	"time"

	"github.com/lacus-ops/bbs-service/internal/notify"
	"github.com/lacus-ops/bbs-service/internal/queue"
	"github.com/lacus-ops/bbs-service/internal/repo"
)

// Service orchestrates the BBS flows over the store, the mail notifier and
// the event publisher.
type Service struct {
	Store    *repo.Store
	Notifier *notify.Notifier
	Events   queue.Publisher
	Loc      *time.Location

	// Board provisioning is a full registry scan; the TTL cache keeps the
	// board-list endpoint from repeating it on every request.
	boardTTL      time.Duration
	mu            sync.Mutex
	lastProvision time.Time
}

func NewService(store *repo.Store, notifier *notify.Notifier, events queue.Publisher, loc *time.Location, boardTTL time.Duration) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		Store:    store,
		Notifier: notifier,
		Events:   events,
		Loc:      loc,
		boardTTL: boardTTL,
	}
}
