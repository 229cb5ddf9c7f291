package player

import (
	"context"
	"sync"
	"time"

	"learnpath-backend/internal/domain"
	"learnpath-backend/internal/progression"
)

// ProgressAPI is the subset of Client the Store needs.
type ProgressAPI interface {
	LessonProgress(ctx context.Context, studentID uint) ([]domain.LessonProgress, error)
	SubmitProgress(ctx context.Context, update domain.ProgressUpdate) (*domain.LessonProgress, error)
	MarkComplete(ctx context.Context, lessonID string) (*domain.LessonProgress, error)
}

// Store keeps a learner's lesson progress. Local changes are applied
// optimistically and either replaced by the server's acknowledgement or
// reverted to the last confirmed value when the server refuses them.
type Store struct {
	api       ProgressAPI
	studentID uint
	now       func() time.Time

	mu         sync.Mutex
	confirmed  map[string]domain.LessonProgress
	local      map[string]domain.LessonProgress
	lastSynced map[string]float64
}

func NewStore(api ProgressAPI, studentID uint) *Store {
	return &Store{
		api:        api,
		studentID:  studentID,
		now:        time.Now,
		confirmed:  make(map[string]domain.LessonProgress),
		local:      make(map[string]domain.LessonProgress),
		lastSynced: make(map[string]float64),
	}
}

func (s *Store) blank(lessonID string) domain.LessonProgress {
	return domain.LessonProgress{UserID: s.studentID, LessonID: lessonID, Status: domain.StatusNotStarted}
}

// Get returns the local view of a lesson, including unacknowledged changes.
func (s *Store) Get(lessonID string) domain.LessonProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.local[lessonID]; ok {
		return p
	}
	return s.blank(lessonID)
}

// Confirmed returns the last value the server acknowledged.
func (s *Store) Confirmed(lessonID string) domain.LessonProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.confirmed[lessonID]; ok {
		return p
	}
	return s.blank(lessonID)
}

// Snapshot returns the local view of every known lesson.
func (s *Store) Snapshot() map[string]domain.LessonProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.LessonProgress, len(s.local))
	for id, p := range s.local {
		out[id] = p
	}
	return out
}

// Refresh replaces all state with what the server holds.
func (s *Store) Refresh(ctx context.Context) error {
	records, err := s.api.LessonProgress(ctx, s.studentID)
	if err != nil {
		return err
	}
	s.Replace(records)
	return nil
}

// Replace installs records as the confirmed state. Used by Refresh and by a
// Poller applying a fetched list.
func (s *Store) Replace(records []domain.LessonProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = make(map[string]domain.LessonProgress, len(records))
	s.local = make(map[string]domain.LessonProgress, len(records))
	s.lastSynced = make(map[string]float64, len(records))
	for _, p := range records {
		s.confirmed[p.LessonID] = p
		s.local[p.LessonID] = p
		s.lastSynced[p.LessonID] = float64(p.LastPosition)
	}
}

// Tick folds a playback position into the local state and syncs with the
// server once enough media time has passed, or when the lesson just
// completed. It returns the local view after the tick.
func (s *Store) Tick(ctx context.Context, lessonID string, position, duration float64) (domain.LessonProgress, error) {
	s.mu.Lock()
	cur, ok := s.local[lessonID]
	if !ok {
		cur = s.blank(lessonID)
	}
	next := progression.ApplyPlayback(cur, position, duration, s.now())
	s.local[lessonID] = next

	justCompleted := next.Status == domain.StatusCompleted && cur.Status != domain.StatusCompleted
	last := s.lastSynced[lessonID]
	if !justCompleted && !progression.DueForSync(last, position) {
		s.mu.Unlock()
		return next, nil
	}
	s.lastSynced[lessonID] = position
	s.mu.Unlock()

	stored, err := s.submit(ctx, domain.ProgressUpdate{
		StudentID:    s.studentID,
		LessonID:     lessonID,
		Percentage:   next.Percentage,
		LastPosition: next.LastPosition,
		Status:       next.Status,
	}, nil)
	if err != nil {
		s.mu.Lock()
		s.lastSynced[lessonID] = last
		s.mu.Unlock()
	}
	return stored, err
}

// Update sends an explicit progress update and waits for the server.
func (s *Store) Update(ctx context.Context, update domain.ProgressUpdate) (domain.LessonProgress, error) {
	update.StudentID = s.studentID
	s.mu.Lock()
	cur, ok := s.local[update.LessonID]
	if !ok {
		cur = s.blank(update.LessonID)
	}
	optimistic, _ := progression.Merge(cur, update, s.now())
	s.local[update.LessonID] = optimistic
	s.mu.Unlock()

	return s.submit(ctx, update, nil)
}

// MarkComplete forces the lesson to completed at 100%.
func (s *Store) MarkComplete(ctx context.Context, lessonID string) (domain.LessonProgress, error) {
	s.mu.Lock()
	cur, ok := s.local[lessonID]
	if !ok {
		cur = s.blank(lessonID)
	}
	optimistic, _ := progression.MarkComplete(cur, s.studentID, lessonID, s.now())
	s.local[lessonID] = optimistic
	s.mu.Unlock()

	return s.submit(ctx, domain.ProgressUpdate{LessonID: lessonID}, func(ctx context.Context) (*domain.LessonProgress, error) {
		return s.api.MarkComplete(ctx, lessonID)
	})
}

// submit sends the mutation (SubmitProgress unless send is given) and
// settles the local state on the outcome.
func (s *Store) submit(ctx context.Context, update domain.ProgressUpdate, send func(context.Context) (*domain.LessonProgress, error)) (domain.LessonProgress, error) {
	if send == nil {
		send = func(ctx context.Context) (*domain.LessonProgress, error) {
			return s.api.SubmitProgress(ctx, update)
		}
	}
	stored, err := send(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if p, ok := s.confirmed[update.LessonID]; ok {
			s.local[update.LessonID] = p
			return p, err
		}
		delete(s.local, update.LessonID)
		return s.blank(update.LessonID), err
	}
	s.confirmed[stored.LessonID] = *stored
	s.local[stored.LessonID] = *stored
	return *stored, nil
}
