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

// Notebooks returns a copy of the registry.
func (s *Service) Notebooks() []core.Notebook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Notebook, len(s.state.Notebooks))
	copy(out, s.state.Notebooks)
	return out
}

// ActiveNotebook returns the currently selected scope. After Load there is
// always exactly one active notebook.
func (s *Service) ActiveNotebook() (core.Notebook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeNotebook(s.state.Notebooks)
}

// SelectNotebook makes one notebook the active scope for subsequent reads
// and writes. Existing transactions keep the notebook they were created in.
func (s *Service) SelectNotebook(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	for i := range s.state.Notebooks {
		if s.state.Notebooks[i].ID == id {
			found = true
		}
	}
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", core.ErrUnknownNotebook, id)
	}
	for i := range s.state.Notebooks {
		s.state.Notebooks[i].Active = s.state.Notebooks[i].ID == id
	}
	s.mu.Unlock()

	slog.InfoContext(ctx, "Notebook selected", "id", id)
	s.persist(ctx, kvstore.KeyNotebooks)
	return nil
}

// AddNotebook creates a new inactive notebook; switch to it with
// SelectNotebook.
func (s *Service) AddNotebook(ctx context.Context, name string) (core.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Notebook{}, core.ErrEmptyName
	}

	nb := core.Notebook{
		ID:   uuid.NewString(),
		Name: name,
	}
	s.mu.Lock()
	s.state.Notebooks = append(s.state.Notebooks, nb)
	s.mu.Unlock()

	slog.InfoContext(ctx, "Notebook added", "id", nb.ID, "name", nb.Name)
	s.persist(ctx, kvstore.KeyNotebooks)
	return nb, nil
}

func activeNotebook(notebooks []core.Notebook) (core.Notebook, bool) {
	for _, nb := range notebooks {
		if nb.Active {
			return nb, true
		}
	}
	return core.Notebook{}, false
}
