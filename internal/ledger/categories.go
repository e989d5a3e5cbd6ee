package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"kakeibo/internal/core"
	"kakeibo/internal/kvstore"
)

// Categories returns a copy of the registry in insertion order.
func (s *Service) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, len(s.state.Categories))
	copy(out, s.state.Categories)
	return out
}

// AddCategory appends a user-defined category. The name is trimmed and must
// be non-empty; the id is generated so it can never collide with the
// built-in slugs.
func (s *Service) AddCategory(ctx context.Context, name, icon, color string, ctype core.CategoryType) (core.Category, error) {
	cat := core.Category{
		ID:    "custom_" + uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Icon:  icon,
		Color: color,
		Type:  ctype,
	}
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}

	s.mu.Lock()
	s.state.Categories = append(s.state.Categories, cat)
	s.mu.Unlock()

	slog.InfoContext(ctx, "Category added", "id", cat.ID, "name", cat.Name, "type", cat.Type)
	s.persist(ctx, kvstore.KeyCategories)
	return cat, nil
}

// UpdateCategory edits a category in place, keeping its id and position.
func (s *Service) UpdateCategory(ctx context.Context, id, name, icon, color string, ctype core.CategoryType) (core.Category, error) {
	cat := core.Category{
		ID:    id,
		Name:  strings.TrimSpace(name),
		Icon:  icon,
		Color: color,
		Type:  ctype,
	}
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}

	s.mu.Lock()
	idx := -1
	for i, c := range s.state.Categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return core.Category{}, fmt.Errorf("%w: category %q", core.ErrNotFound, id)
	}
	s.state.Categories[idx] = cat
	s.mu.Unlock()

	slog.InfoContext(ctx, "Category updated", "id", cat.ID, "name", cat.Name)
	s.persist(ctx, kvstore.KeyCategories)
	return cat, nil
}

// RemoveCategory deletes a category unless any transaction still references
// it. Callers obtain user confirmation before calling; a missing id is a
// silent no-op.
func (s *Service) RemoveCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	for _, tx := range s.state.Transactions {
		if tx.Category == id {
			s.mu.Unlock()
			return fmt.Errorf("%w: %q", core.ErrCategoryInUse, id)
		}
	}

	removed := false
	kept := s.state.Categories[:0]
	for _, c := range s.state.Categories {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	s.state.Categories = kept
	s.mu.Unlock()

	if !removed {
		return nil
	}

	slog.InfoContext(ctx, "Category removed", "id", id)
	s.persist(ctx, kvstore.KeyCategories)
	return nil
}
