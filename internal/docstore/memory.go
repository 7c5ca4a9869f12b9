package docstore

import (
	"context"
	"sync"

	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
)

// InMemory is the in-process Store used by tests and by single-node
// deployments that do not need a shared backend. It supports failure
// injection so rollback paths can be exercised deterministically.
type InMemory struct {
	mu          sync.Mutex
	docs        map[domain.OrgID]*models.OrgDocument
	subscribers map[domain.OrgID][]chan *models.OrgDocument
	replaceErr  error
	failNext    int
}

func NewInMemory() *InMemory {
	return &InMemory{
		docs:        make(map[domain.OrgID]*models.OrgDocument),
		subscribers: make(map[domain.OrgID][]chan *models.OrgDocument),
	}
}

// FailNextReplace makes the next n ReplaceCollection calls fail with err.
func (s *InMemory) FailNextReplace(err error, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceErr = err
	s.failNext = n
}

func (s *InMemory) Get(ctx context.Context, orgID domain.OrgID) (*models.OrgDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *InMemory) Create(ctx context.Context, orgID domain.OrgID, doc *models.OrgDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[orgID]; ok {
		return sentinel.ErrConflict
	}
	s.docs[orgID] = doc.Clone()
	return nil
}

func (s *InMemory) ReplaceCollection(ctx context.Context, orgID domain.OrgID, col Collection, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext > 0 {
		s.failNext--
		return s.replaceErr
	}

	doc, ok := s.docs[orgID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if err := SetCollection(doc, col, value); err != nil {
		return err
	}
	s.broadcastLocked(orgID, doc)
	return nil
}

func (s *InMemory) Subscribe(ctx context.Context, orgID domain.OrgID) (<-chan *models.OrgDocument, error) {
	s.mu.Lock()
	ch := make(chan *models.OrgDocument, 16)
	s.subscribers[orgID] = append(s.subscribers[orgID], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subscribers[orgID]
		for i, sub := range subs {
			if sub == ch {
				s.subscribers[orgID] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}()
	return ch, nil
}

// broadcastLocked pushes a full snapshot to every subscriber. Slow consumers
// drop snapshots rather than block the write path; they converge on the next
// push.
func (s *InMemory) broadcastLocked(orgID domain.OrgID, doc *models.OrgDocument) {
	for _, ch := range s.subscribers[orgID] {
		select {
		case ch <- doc.Clone():
		default:
		}
	}
}

func (s *InMemory) Health(ctx context.Context) error { return nil }

func (s *InMemory) Close() error { return nil }
