package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/carecircle/carecircle-api/internal/clock"
	"github.com/carecircle/carecircle-api/internal/models"
	"github.com/carecircle/carecircle-api/internal/recurrence"
)

type TaskStoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	clock *clock.FakeClock
	store *TaskStore
}

func (suite *TaskStoreTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.AutoMigrate(&models.User{}, &models.Task{}))

	suite.clock = clock.NewFakeClock(time.Date(2025, 3, 4, 12, 0, 0, 0, time.Local))
	suite.store = NewTaskStore(suite.db, suite.clock)
}

func (suite *TaskStoreTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskStoreTestSuite) nowMs() int64 {
	return suite.clock.Now().UnixMilli()
}

func (suite *TaskStoreTestSuite) createTask(in CreateTaskInput) *models.Task {
	task, err := suite.store.Create(in)
	suite.Require().NoError(err)
	return task
}

func (suite *TaskStoreTestSuite) TestCreateAssignsIDAndDefaults() {
	task := suite.createTask(CreateTaskInput{Title: "  Clean room  "})
	suite.NotEmpty(task.ID)
	suite.Equal("Clean room", task.Title)
	suite.False(task.Completed)
	suite.Nil(task.AckAt)
	suite.Nil(task.EnforcedAt)
	suite.Nil(task.HoldUntil)
	suite.Equal(recurrence.KindNone, task.Repeat)
}

func (suite *TaskStoreTestSuite) TestCreateRejectsEmptyTitle() {
	_, err := suite.store.Create(CreateTaskInput{Title: "   "})
	suite.ErrorIs(err, ErrTitleRequired)
}

func (suite *TaskStoreTestSuite) TestCreateWeeklyWithoutDaysRejected() {
	_, err := suite.store.Create(CreateTaskInput{
		Title:  "Take out trash",
		Repeat: recurrence.KindWeekly,
		RepeatRule: &recurrence.Rule{
			Kind:     recurrence.KindWeekly,
			TimeHHMM: "17:00",
		},
	})
	suite.ErrorIs(err, recurrence.ErrWeeklyNeedsDays)
}

func (suite *TaskStoreTestSuite) TestCreateDailyComputesFirstDue() {
	task := suite.createTask(CreateTaskInput{
		Title:  "Brush teeth",
		Repeat: recurrence.KindDaily,
		RepeatRule: &recurrence.Rule{
			Kind:     recurrence.KindDaily,
			TimeHHMM: "17:00",
		},
	})
	suite.Require().NotNil(task.Due)
	suite.Greater(*task.Due, suite.nowMs())
	suite.LessOrEqual(*task.Due-suite.nowMs(), int64(24*time.Hour/time.Millisecond))
}

func (suite *TaskStoreTestSuite) TestCreateWeeklyDueLandsOnListedDay() {
	// Clock starts on a Tuesday; Mon/Wed/Fri at 17:00 should land on
	// Wednesday of the same week.
	task := suite.createTask(CreateTaskInput{
		Title:  "Practice piano",
		Repeat: recurrence.KindWeekly,
		RepeatRule: &recurrence.Rule{
			Kind:       recurrence.KindWeekly,
			DaysOfWeek: []int{1, 3, 5},
			TimeHHMM:   "17:00",
		},
	})
	suite.Require().NotNil(task.Due)
	due := time.UnixMilli(*task.Due)
	suite.Equal(time.Wednesday, due.Weekday())
	suite.Equal(17, due.Hour())
}

func (suite *TaskStoreTestSuite) TestCreateAutoEnforceDefaultsAction() {
	task := suite.createTask(CreateTaskInput{Title: "Homework", AutoEnforce: true})
	suite.Equal(models.ActionScreenLock, task.AutoAction)
}

func (suite *TaskStoreTestSuite) TestCreateRejectsUnknownAutoAction() {
	_, err := suite.store.Create(CreateTaskInput{Title: "Homework", AutoAction: "explode"})
	suite.ErrorIs(err, ErrInvalidAutoAction)
}

func (suite *TaskStoreTestSuite) TestAckIsIdempotentAndOverwrites() {
	task := suite.createTask(CreateTaskInput{Title: "Homework", AckRequired: true})

	first, err := suite.store.Ack(task.ID, "kid-1")
	suite.Require().NoError(err)
	suite.Require().NotNil(first.AckAt)
	suite.Equal("kid-1", *first.AckBy)

	suite.clock.Advance(5 * time.Minute)
	second, err := suite.store.Ack(task.ID, "owner")
	suite.Require().NoError(err)
	suite.Equal("owner", *second.AckBy)
	suite.Greater(*second.AckAt, *first.AckAt)
}

func (suite *TaskStoreTestSuite) TestActionsOnMissingTaskReturnNotFound() {
	_, err := suite.store.Ack("nope", "owner")
	suite.ErrorIs(err, ErrNotFound)
	_, err = suite.store.Hold("nope", 30)
	suite.ErrorIs(err, ErrNotFound)
	_, err = suite.store.Resume("nope")
	suite.ErrorIs(err, ErrNotFound)
	_, err = suite.store.Enforce("nope", "")
	suite.ErrorIs(err, ErrNotFound)
	_, err = suite.store.ClearEnforcement("nope")
	suite.ErrorIs(err, ErrNotFound)
	_, err = suite.store.Cancel("nope")
	suite.ErrorIs(err, ErrNotFound)
	_, err = suite.store.Patch("nope", TaskPatch{})
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *TaskStoreTestSuite) TestHoldAndResume() {
	task := suite.createTask(CreateTaskInput{Title: "Homework"})

	held, err := suite.store.Hold(task.ID, 30)
	suite.Require().NoError(err)
	suite.Require().NotNil(held.HoldUntil)
	suite.Equal(suite.nowMs()+30*60_000, *held.HoldUntil)

	resumed, err := suite.store.Resume(task.ID)
	suite.Require().NoError(err)
	suite.Nil(resumed.HoldUntil)
	suite.False(resumed.PausedByParent)
}

func (suite *TaskStoreTestSuite) TestHoldRejectsNonPositiveMinutes() {
	task := suite.createTask(CreateTaskInput{Title: "Homework"})
	_, err := suite.store.Hold(task.ID, 0)
	suite.ErrorIs(err, ErrHoldMinutes)
	_, err = suite.store.Hold(task.ID, -5)
	suite.ErrorIs(err, ErrHoldMinutes)
}

func (suite *TaskStoreTestSuite) TestEnforceAndClear() {
	task := suite.createTask(CreateTaskInput{Title: "Homework"})

	enforced, err := suite.store.Enforce(task.ID, "")
	suite.Require().NoError(err)
	suite.Require().NotNil(enforced.EnforcedAt)
	suite.Equal(DefaultEnforceChannel, *enforced.EnforceChannel)

	suite.Require().NoError(suite.store.RecordEnforceError(task.ID, "device unreachable"))
	got, err := suite.store.Get(task.ID)
	suite.Require().NoError(err)
	suite.Equal("device unreachable", *got.LastEnforceError)

	cleared, err := suite.store.ClearEnforcement(task.ID)
	suite.Require().NoError(err)
	suite.Nil(cleared.EnforcedAt)
	suite.Nil(cleared.EnforceChannel)
	suite.Nil(cleared.LastEnforceError)
}

func (suite *TaskStoreTestSuite) TestCancelMarksAndExcludesFromListing() {
	task := suite.createTask(CreateTaskInput{Title: "Homework"})

	cancelled, err := suite.store.Cancel(task.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(cancelled.CancelledAt)

	active, err := suite.store.List(ListFilter{})
	suite.Require().NoError(err)
	suite.Empty(active)

	all, err := suite.store.List(ListFilter{IncludeCancelled: true})
	suite.Require().NoError(err)
	suite.Len(all, 1)

	// Cancelling twice keeps the original timestamp.
	suite.clock.Advance(time.Minute)
	again, err := suite.store.Cancel(task.ID)
	suite.Require().NoError(err)
	suite.Equal(*cancelled.CancelledAt, *again.CancelledAt)
}

func (suite *TaskStoreTestSuite) TestCancelRejectsCompleted() {
	task := suite.createTask(CreateTaskInput{Title: "Homework"})
	done := true
	_, err := suite.store.Patch(task.ID, TaskPatch{Completed: &done})
	suite.Require().NoError(err)

	_, err = suite.store.Cancel(task.ID)
	suite.ErrorIs(err, ErrAlreadyCompleted)
}

func (suite *TaskStoreTestSuite) TestDeleteOnlyRemovesCompleted() {
	task := suite.createTask(CreateTaskInput{Title: "Homework"})

	_, err := suite.store.Delete(task.ID)
	suite.ErrorIs(err, ErrNotCompleted)

	done := true
	_, err = suite.store.Patch(task.ID, TaskPatch{Completed: &done})
	suite.Require().NoError(err)

	deleted, err := suite.store.Delete(task.ID)
	suite.Require().NoError(err)
	suite.True(deleted)

	// Missing id is an idempotent signal, not an error.
	deleted, err = suite.store.Delete(task.ID)
	suite.Require().NoError(err)
	suite.False(deleted)
}

func (suite *TaskStoreTestSuite) TestPatchAppliesProvidedFieldsOnly() {
	assignee := "kid-1"
	due := suite.nowMs() + 3_600_000
	task := suite.createTask(CreateTaskInput{
		Title:      "Old title",
		AssignedTo: &assignee,
		Due:        &due,
	})

	title := "New title"
	patched, err := suite.store.Patch(task.ID, TaskPatch{Title: &title})
	suite.Require().NoError(err)
	suite.Equal("New title", patched.Title)
	suite.Equal("kid-1", *patched.AssignedTo)
	suite.Equal(due, *patched.Due)
}

func (suite *TaskStoreTestSuite) TestPatchClearsDueWhenSetToNull() {
	due := suite.nowMs() + 3_600_000
	task := suite.createTask(CreateTaskInput{Title: "Homework", Due: &due})

	patched, err := suite.store.Patch(task.ID, TaskPatch{DueSet: true})
	suite.Require().NoError(err)
	suite.Nil(patched.Due)
}

func (suite *TaskStoreTestSuite) TestPatchRejectsEmptyTitle() {
	task := suite.createTask(CreateTaskInput{Title: "Homework"})
	empty := "  "
	_, err := suite.store.Patch(task.ID, TaskPatch{Title: &empty})
	suite.ErrorIs(err, ErrTitleRequired)
}

func (suite *TaskStoreTestSuite) TestPatchWeeklyWithoutDaysRejected() {
	task := suite.createTask(CreateTaskInput{Title: "Homework"})
	weekly := recurrence.KindWeekly
	_, err := suite.store.Patch(task.ID, TaskPatch{Repeat: &weekly})
	suite.ErrorIs(err, recurrence.ErrWeeklyNeedsDays)
}

func (suite *TaskStoreTestSuite) TestListFiltersByAssignee() {
	a, b := "kid-1", "kid-2"
	suite.createTask(CreateTaskInput{Title: "Task A", AssignedTo: &a})
	suite.createTask(CreateTaskInput{Title: "Task B", AssignedTo: &b})

	got, err := suite.store.List(ListFilter{AssignedTo: &a})
	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal("Task A", got[0].Title)
}

func TestTaskStoreTestSuite(t *testing.T) {
	suite.Run(t, new(TaskStoreTestSuite))
}
