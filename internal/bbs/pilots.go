package bbs

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lacus-ops/bbs-service/internal/domain"
	"github.com/lacus-ops/bbs-service/internal/log"
	"github.com/lacus-ops/bbs-service/internal/repo"
)

// EnsureManualPilotRefs reconciles the manual pilot references on a post to
// exactly pilotIDs. Auto references are never touched. Ids that do not
// resolve to a pilot are skipped and reported back, never failing the call.
func (s *Service) EnsureManualPilotRefs(ctx context.Context, post *domain.Post, pilotIDs []string) ([]domain.PilotRef, []string, error) {
	desired := make([]primitive.ObjectID, 0, len(pilotIDs))
	missing := []string{}
	seen := map[string]struct{}{}
	for _, raw := range pilotIDs {
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			missing = append(missing, raw)
			continue
		}
		desired = append(desired, oid)
	}

	existing, err := s.Store.ListPilotRefsForPost(ctx, post.ID, domain.RelevanceManual)
	if err != nil {
		return nil, nil, err
	}
	byPilot := make(map[string]domain.PilotRef, len(existing))
	for _, ref := range existing {
		byPilot[ref.PilotID.Hex()] = ref
	}

	wanted := map[string]struct{}{}
	for _, oid := range desired {
		wanted[oid.Hex()] = struct{}{}
	}
	for _, ref := range existing {
		if _, ok := wanted[ref.PilotID.Hex()]; ok {
			continue
		}
		if err := s.Store.DeletePilotRef(ctx, ref.ID); err != nil {
			return nil, nil, err
		}
	}

	for _, oid := range desired {
		if ref, ok := byPilot[oid.Hex()]; ok {
			if err := s.Store.TouchPilotRef(ctx, ref.ID); err != nil {
				return nil, nil, err
			}
			continue
		}
		if _, err := s.Store.FindPilotByID(ctx, oid); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				missing = append(missing, oid.Hex())
				continue
			}
			return nil, nil, err
		}
		ref := &domain.PilotRef{
			PostID:    post.ID,
			PilotID:   oid,
			Relevance: domain.RelevanceManual,
		}
		if err := s.Store.InsertPilotRef(ctx, ref); err != nil {
			if repo.IsDup(err) {
				continue
			}
			return nil, nil, err
		}
	}

	if len(missing) > 0 {
		log.L().Info("pilot references skipped unknown ids",
			zap.String("post_id", post.ID.Hex()),
			zap.Strings("missing", missing),
		)
	}

	refs, err := s.Store.ListPilotRefsForPost(ctx, post.ID, domain.RelevanceManual)
	if err != nil {
		return nil, nil, err
	}
	return refs, missing, nil
}
