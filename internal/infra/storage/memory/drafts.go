package memory

import (
	"context"
	"strings"
	"sync"

	domainonboarding "stayhub/internal/domain/onboarding"
)

// DraftStore keeps onboarding drafts in memory, one per host.
type DraftStore struct {
	mu    sync.RWMutex
	items map[string]*domainonboarding.Draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{items: make(map[string]*domainonboarding.Draft)}
}

func (s *DraftStore) Load(ctx context.Context, hostID string) (*domainonboarding.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.items[strings.TrimSpace(hostID)]
	if !ok {
		return nil, domainonboarding.ErrDraftNotFound
	}
	return cloneDraft(draft), nil
}

func (s *DraftStore) Save(ctx context.Context, draft *domainonboarding.Draft) error {
	if draft == nil || strings.TrimSpace(draft.HostID) == "" {
		return domainonboarding.ErrHostRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[draft.HostID] = cloneDraft(draft)
	return nil
}

func (s *DraftStore) Clear(ctx context.Context, hostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, strings.TrimSpace(hostID))
	return nil
}

func cloneDraft(d *domainonboarding.Draft) *domainonboarding.Draft {
	if d == nil {
		return nil
	}
	copyDraft := *d
	copyDraft.Property.Amenities = append([]string(nil), d.Property.Amenities...)
	copyDraft.Photos = append([]string(nil), d.Photos...)
	return &copyDraft
}

var _ domainonboarding.DraftStore = (*DraftStore)(nil)
