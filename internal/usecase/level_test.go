package usecase

import (
	"context"
	"testing"
	"time"

	"learnpath-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type levelFixture struct {
	levels      *MockLevelRepo
	enrollments *MockEnrollmentRepo
	progress    *MockProgressRepo
	requests    *MockLevelRequestRepo
	uc          *levelUsecase
}

func newLevelFixture() *levelFixture {
	f := &levelFixture{
		levels:      new(MockLevelRepo),
		enrollments: new(MockEnrollmentRepo),
		progress:    new(MockProgressRepo),
		requests:    new(MockLevelRequestRepo),
	}
	tx := passThroughTx{repos: domain.TxRepositories{
		Enrollments:   f.enrollments,
		Progress:      f.progress,
		LevelRequests: f.requests,
	}}
	f.uc = NewLevelUsecase(f.enrollments, f.requests, f.levels, nopCache{}, tx).(*levelUsecase)
	f.uc.now = func() time.Time { return fixedNow }
	f.levels.On("GetByTrackID", mock.Anything, uint(3)).Return(trackLevels(), nil)
	return f
}

func onLevel(levelID string, order int) *domain.Enrollment {
	trackID := uint(3)
	return &domain.Enrollment{ID: 9, UserID: 7, TrackID: &trackID, CurrentLevelID: levelID, CurrentLevelOrder: order}
}

func TestSubmitRequest_Eligibility(t *testing.T) {
	// lv3 has three required lessons, two of them completed.
	f := newLevelFixture()
	levels := []domain.Level{{ID: "lv3", TrackID: 4, OrderIndex: 1, Lessons: []domain.Lesson{
		lesson("x", 0, true), lesson("y", 1, true), lesson("z", 2, true),
	}}}
	trackID := uint(4)
	f.levels.On("GetByTrackID", mock.Anything, trackID).Return(levels, nil)
	f.enrollments.On("GetByUserAndTrack", mock.Anything, uint(7), trackID).
		Return(&domain.Enrollment{UserID: 7, TrackID: &trackID, CurrentLevelID: "lv3", CurrentLevelOrder: 1}, nil)
	f.requests.On("FindPending", mock.Anything, uint(7), "lv3").Return(nil, nil).Twice()

	twoDone := []domain.LessonProgress{
		{LessonID: "x", Status: domain.StatusCompleted},
		{LessonID: "y", Status: domain.StatusCompleted},
	}
	f.progress.On("GetByUserAndLessons", mock.Anything, uint(7), []string{"x", "y", "z"}).Return(twoDone, nil).Once()

	_, _, err := f.uc.SubmitRequest(context.Background(), 7, trackID)
	assert.ErrorIs(t, err, domain.ErrLevelNotEligible)
	f.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	allDone := append(twoDone, domain.LessonProgress{LessonID: "z", Status: domain.StatusCompleted})
	f.progress.On("GetByUserAndLessons", mock.Anything, uint(7), []string{"x", "y", "z"}).Return(allDone, nil).Once()
	f.requests.On("Create", mock.Anything, mock.AnythingOfType("*domain.LevelAdvancementRequest")).Return(nil).Once()

	req, created, err := f.uc.SubmitRequest(context.Background(), 7, trackID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RequestPending, req.Status)
	assert.Equal(t, "lv3", req.LevelID)

	// A second submit sees the pending request and creates nothing.
	f.requests.On("FindPending", mock.Anything, uint(7), "lv3").Return(req, nil).Once()
	again, created, err := f.uc.SubmitRequest(context.Background(), 7, trackID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, req, again)
	f.requests.AssertNumberOfCalls(t, "Create", 1)
}

func TestSubmitRequest_ConcurrentSubmitReturnsWinner(t *testing.T) {
	f := newLevelFixture()
	f.enrollments.On("GetByUserAndTrack", mock.Anything, uint(7), uint(3)).Return(onLevel("lv1", 1), nil)
	f.progress.On("GetByUserAndLessons", mock.Anything, uint(7), mock.Anything).
		Return([]domain.LessonProgress{{LessonID: "a", Status: domain.StatusCompleted}}, nil)

	// The other submit inserts between our read and our write.
	winner := &domain.LevelAdvancementRequest{ID: 40, UserID: 7, TrackID: 3, LevelID: "lv1", Status: domain.RequestPending}
	f.requests.On("FindPending", mock.Anything, uint(7), "lv1").Return(nil, nil).Once()
	f.requests.On("Create", mock.Anything, mock.Anything).Return(domain.ErrRequestPending).Once()
	f.requests.On("FindPending", mock.Anything, uint(7), "lv1").Return(winner, nil).Once()

	got, created, err := f.uc.SubmitRequest(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, winner, got)
	f.requests.AssertExpectations(t)
}

func TestSubmitRequest_Preconditions(t *testing.T) {
	t.Run("not enrolled", func(t *testing.T) {
		f := newLevelFixture()
		f.enrollments.On("GetByUserAndTrack", mock.Anything, uint(7), uint(3)).Return(nil, nil)
		_, _, err := f.uc.SubmitRequest(context.Background(), 7, 3)
		assert.ErrorIs(t, err, domain.ErrNotEnrolled)
	})

	t.Run("finished", func(t *testing.T) {
		f := newLevelFixture()
		e := onLevel("", 3)
		e.IsFinished = true
		f.enrollments.On("GetByUserAndTrack", mock.Anything, uint(7), uint(3)).Return(e, nil)
		_, _, err := f.uc.SubmitRequest(context.Background(), 7, 3)
		assert.ErrorIs(t, err, domain.ErrTrackFinished)
	})
}

func TestApproveRequest_AdvancesEnrollment(t *testing.T) {
	f := newLevelFixture()
	req := &domain.LevelAdvancementRequest{ID: 11, UserID: 7, TrackID: 3, LevelID: "lv1", LevelOrder: 1, Status: domain.RequestPending}
	enrollment := onLevel("lv1", 1)

	f.requests.On("GetByID", mock.Anything, uint(11)).Return(req, nil)
	f.enrollments.On("GetByUserAndTrack", mock.Anything, uint(7), uint(3)).Return(enrollment, nil)
	f.enrollments.On("Update", mock.Anything, enrollment).Return(nil)
	f.requests.On("Update", mock.Anything, req).Return(nil)

	got, err := f.uc.ApproveRequest(context.Background(), 11, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.RequestApproved, got.Status)
	require.NotNil(t, got.ResolvedByID)
	assert.Equal(t, uint(1), *got.ResolvedByID)
	assert.Equal(t, "lv2", enrollment.CurrentLevelID)
	assert.Equal(t, 2, enrollment.CurrentLevelOrder)
	assert.Equal(t, 50, enrollment.Progress)
}

func TestApproveRequest_LastLevelFinishesTrack(t *testing.T) {
	f := newLevelFixture()
	req := &domain.LevelAdvancementRequest{ID: 12, UserID: 7, TrackID: 3, LevelID: "lv2", LevelOrder: 2, Status: domain.RequestPending}
	enrollment := onLevel("lv2", 2)

	f.requests.On("GetByID", mock.Anything, uint(12)).Return(req, nil)
	f.enrollments.On("GetByUserAndTrack", mock.Anything, uint(7), uint(3)).Return(enrollment, nil)
	f.enrollments.On("Update", mock.Anything, enrollment).Return(nil)
	f.requests.On("Update", mock.Anything, req).Return(nil)

	_, err := f.uc.ApproveRequest(context.Background(), 12, 1)
	require.NoError(t, err)

	assert.True(t, enrollment.IsFinished)
	assert.Empty(t, enrollment.CurrentLevelID)
	assert.Equal(t, 100, enrollment.Progress)
}

func TestApproveRequest_StaleRequestDoesNotMoveEnrollment(t *testing.T) {
	f := newLevelFixture()
	req := &domain.LevelAdvancementRequest{ID: 13, UserID: 7, TrackID: 3, LevelID: "lv1", LevelOrder: 1, Status: domain.RequestPending}
	enrollment := onLevel("lv2", 2)

	f.requests.On("GetByID", mock.Anything, uint(13)).Return(req, nil)
	f.enrollments.On("GetByUserAndTrack", mock.Anything, uint(7), uint(3)).Return(enrollment, nil)
	f.requests.On("Update", mock.Anything, req).Return(nil)

	_, err := f.uc.ApproveRequest(context.Background(), 13, 1)
	require.NoError(t, err)
	assert.Equal(t, "lv2", enrollment.CurrentLevelID)
	f.enrollments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestResolve_AlreadyResolved(t *testing.T) {
	f := newLevelFixture()
	resolvedAt := fixedNow.Add(-time.Hour)
	req := &domain.LevelAdvancementRequest{ID: 14, UserID: 7, TrackID: 3, Status: domain.RequestRejected, ResolvedAt: &resolvedAt}
	f.requests.On("GetByID", mock.Anything, uint(14)).Return(req, nil)

	_, err := f.uc.ApproveRequest(context.Background(), 14, 1)
	assert.ErrorIs(t, err, domain.ErrRequestResolved)

	_, err = f.uc.RejectRequest(context.Background(), 14, 1, "again")
	assert.ErrorIs(t, err, domain.ErrRequestResolved)

	f.requests.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Equal(t, domain.RequestRejected, req.Status)
}

func TestRejectRequest(t *testing.T) {
	f := newLevelFixture()
	req := &domain.LevelAdvancementRequest{ID: 15, UserID: 7, TrackID: 3, LevelID: "lv1", Status: domain.RequestPending}
	f.requests.On("GetByID", mock.Anything, uint(15)).Return(req, nil)
	f.requests.On("Update", mock.Anything, req).Return(nil)

	got, err := f.uc.RejectRequest(context.Background(), 15, 2, "finish the project first")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, got.Status)
	assert.Equal(t, "finish the project first", got.RejectionReason)
	f.enrollments.AssertNotCalled(t, "GetByUserAndTrack", mock.Anything, mock.Anything, mock.Anything)
}
