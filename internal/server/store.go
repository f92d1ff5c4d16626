package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Submission is one accepted delivery record.
type Submission struct {
	ID         string         `json:"id"`
	User       string         `json:"user"`
	Instrument string         `json:"instrument"`
	Fields     map[string]any `json:"fields"`
	Files      []string       `json:"files"`
	CreatedAt  string         `json:"createdAt"`
}

// submissionStore keeps accepted submissions in memory, in acceptance
// order. Durable storage is outside this server's contract.
type submissionStore struct {
	mu    sync.Mutex
	byID  map[string]*Submission
	order []string
}

func newSubmissionStore() *submissionStore {
	return &submissionStore{byID: make(map[string]*Submission)}
}

// Create assigns an id and timestamp and stores the submission.
func (s *submissionStore) Create(sub *Submission) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = uuid.NewString()
	sub.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	s.byID[sub.ID] = sub
	s.order = append(s.order, sub.ID)
	return sub.ID
}

// Get returns a submission by id.
func (s *submissionStore) Get(id string) (*Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("submission %q not found", id)
	}
	return sub, nil
}

// List returns all submissions, oldest first.
func (s *submissionStore) List() []*Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Submission, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
