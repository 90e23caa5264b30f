package bbs

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lacus-ops/bbs-service/internal/domain"
	"github.com/lacus-ops/bbs-service/internal/log"
	"github.com/lacus-ops/bbs-service/internal/repo"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9_-]+`)

// SlugifyCode turns an arbitrary base name into a board code: lowercase,
// spaces to hyphens, everything outside [a-z0-9_-] stripped, 64 chars max.
// A name that slugs to nothing gets a hash-derived placeholder.
func SlugifyCode(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, " ", "-")
	slug := slugStrip.ReplaceAllString(v, "")
	if slug == "" {
		h := fnv.New32a()
		h.Write([]byte(v))
		slug = fmt.Sprintf("base-%06d", h.Sum32()%1_000_000)
	}
	if len(slug) > 64 {
		slug = slug[:64]
	}
	return slug
}

// EnsureBoardForBase upserts the base board keyed by the slug of name.
// Idempotent: an existing board is reactivated if needed and returned, and
// an insert race resolves to the winner's document.
func (s *Service) EnsureBoardForBase(ctx context.Context, name string) (*domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, badRequest("VALIDATION_FAILED", "base name must not be empty")
	}

	code := SlugifyCode(name)
	board, err := s.Store.FindBoardByCode(ctx, code)
	if err == nil {
		if !board.IsActive {
			if err := s.Store.SetBoardActive(ctx, board.ID, true); err != nil {
				return nil, err
			}
			board.IsActive = true
			log.L().Info("reactivated base board", zap.String("name", name), zap.String("code", code))
		}
		return board, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	board = &domain.Board{
		Code:      code,
		Name:      name,
		BoardType: domain.BoardTypeBase,
		BaseCode:  name,
		IsActive:  true,
		Order:     50,
	}
	if err := s.Store.InsertBoard(ctx, board); err != nil {
		if repo.IsDup(err) {
			return s.Store.FindBoardByCode(ctx, code)
		}
		return nil, err
	}
	log.L().Info("created base board", zap.String("name", name), zap.String("code", code))
	return board, nil
}

// EnsureBaseBoards provisions a board for every distinct non-empty base in
// the battle-area registry. The scan is skipped while the TTL cache is warm.
func (s *Service) EnsureBaseBoards(ctx context.Context) ([]domain.Board, error) {
	s.mu.Lock()
	if s.boardTTL > 0 && time.Since(s.lastProvision) < s.boardTTL {
		s.mu.Unlock()
		return nil, nil
	}
	s.mu.Unlock()

	bases, err := s.Store.DistinctBases(ctx)
	if err != nil {
		return nil, err
	}

	var touched []domain.Board
	seen := map[string]struct{}{}
	for _, base := range bases {
		if strings.TrimSpace(base) == "" {
			continue
		}
		board, err := s.EnsureBoardForBase(ctx, base)
		if err != nil {
			return touched, err
		}
		key := board.ID.Hex()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		touched = append(touched, *board)
	}

	s.mu.Lock()
	s.lastProvision = time.Now()
	s.mu.Unlock()
	return touched, nil
}

// InvalidateBoardCache forces the next EnsureBaseBoards call to rescan.
func (s *Service) InvalidateBoardCache() {
	s.mu.Lock()
	s.lastProvision = time.Time{}
	s.mu.Unlock()
}
