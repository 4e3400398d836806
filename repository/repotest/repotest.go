// Package repotest holds the behaviour every TaskRepository implementation must share.
package repotest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Factory returns an empty repository for one test.
type Factory func(t *testing.T) repository.TaskRepository

// NewTask builds a valid task due in the given number of days.
func NewTask(title, description, owner string, priority domain.Priority, status domain.Status, dueInDays int) *domain.Task {
	return &domain.Task{
		Title:       title,
		Description: description,
		Owner:       owner,
		Priority:    priority,
		Status:      status,
		DueDate:     domain.DateOf(time.Now().AddDate(0, 0, dueInDays)),
	}
}

// Run executes the conformance suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("SaveThenFind", func(t *testing.T) { testSaveThenFind(t, newRepo(t)) })
	t.Run("SaveRejectsAssignedID", func(t *testing.T) { testSaveRejectsAssignedID(t, newRepo(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newRepo(t)) })
	t.Run("RejectsInvalidTask", func(t *testing.T) { testRejectsInvalidTask(t, newRepo(t)) })
	t.Run("UpdateKeepsOverdueTask", func(t *testing.T) { testUpdateKeepsOverdueTask(t, newRepo(t)) })
	t.Run("UpdateUnknownID", func(t *testing.T) { testUpdateUnknownID(t, newRepo(t)) })
	t.Run("Remove", func(t *testing.T) { testRemove(t, newRepo(t)) })
	t.Run("ListAll", func(t *testing.T) { testListAll(t, newRepo(t)) })
	t.Run("Filter", func(t *testing.T) { testFilter(t, newRepo(t)) })
	t.Run("FilterEmptyResult", func(t *testing.T) { testFilterEmptyResult(t, newRepo(t)) })
}

func testSaveThenFind(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	task := NewTask("Implement feature", "Create endpoint", "João", domain.PriorityHigh, domain.StatusInProgress, 3)
	want := *task

	require.NoError(t, repo.Save(ctx, task))
	require.NotZero(t, task.ID)

	got, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)

	want.ID = task.ID
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Owner, got.Owner)
	assert.Equal(t, want.Priority, got.Priority)
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.DueDate.Equal(got.DueDate), "due date %s != %s", want.DueDate, got.DueDate)
}

func testSaveRejectsAssignedID(t *testing.T, repo repository.TaskRepository) {
	task := NewTask("Title", "Description", "Ana", domain.PriorityLow, domain.StatusInProgress, 1)
	task.ID = 42
	assert.ErrorIs(t, repo.Save(context.Background(), task), domain.ErrTaskAlreadySaved)
}

func testRejectsInvalidTask(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()

	invalid := map[string]func(*domain.Task){
		"empty":          func(task *domain.Task) { *task = domain.Task{} },
		"blank title":    func(task *domain.Task) { task.Title = "   " },
		"blank owner":    func(task *domain.Task) { task.Owner = "" },
		"long title":     func(task *domain.Task) { task.Title = strings.Repeat("t", domain.MaxTitleLength+1) },
		"no priority":    func(task *domain.Task) { task.Priority = "" },
		"unknown status": func(task *domain.Task) { task.Status = "PAUSED" },
		"no due date":    func(task *domain.Task) { task.DueDate = time.Time{} },
	}

	for name, mutate := range invalid {
		task := NewTask("Title", "Description", "Ana", domain.PriorityLow, domain.StatusInProgress, 1)
		mutate(task)
		assert.ErrorIs(t, repo.Save(ctx, task), domain.ErrTaskConstraint, "save %s", name)
		assert.Zero(t, task.ID, "save %s", name)
	}

	stored := NewTask("Plan sprint", "Draft backlog", "Ana", domain.PriorityHigh, domain.StatusInProgress, 4)
	require.NoError(t, repo.Save(ctx, stored))

	for name, mutate := range invalid {
		task := *stored
		mutate(&task)
		task.ID = stored.ID
		assert.ErrorIs(t, repo.Update(ctx, &task), domain.ErrTaskConstraint, "update %s", name)
	}

	got, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plan sprint", got.Title)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, domain.StatusInProgress, got.Status)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testUpdateKeepsOverdueTask(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	task := NewTask("Late report", "Was due last week", "Maria", domain.PriorityMedium, domain.StatusInProgress, -7)
	require.NoError(t, repo.Save(ctx, task))

	task.Status = domain.StatusDone
	require.NoError(t, repo.Update(ctx, task))

	got, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
}

func testUpdate(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	task := NewTask("Review layout", "Adjust CSS", "Maria", domain.PriorityMedium, domain.StatusInProgress, 5)
	require.NoError(t, repo.Save(ctx, task))

	task.Title = "Review main layout"
	task.Description = "Adjust CSS and components"
	task.Owner = "Carlos"
	task.Priority = domain.PriorityLow
	task.Status = domain.StatusDone
	task.DueDate = domain.DateOf(time.Now().AddDate(0, 0, 9))
	require.NoError(t, repo.Update(ctx, task))

	got, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Review main layout", got.Title)
	assert.Equal(t, "Adjust CSS and components", got.Description)
	assert.Equal(t, "Carlos", got.Owner)
	assert.Equal(t, domain.PriorityLow, got.Priority)
	assert.Equal(t, domain.StatusDone, got.Status)
	assert.True(t, task.DueDate.Equal(got.DueDate))

	assert.ErrorIs(t, repo.Update(ctx, &domain.Task{Title: "no id"}), domain.ErrTaskNotSaved)
}

func testUpdateUnknownID(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	ghost := NewTask("Ghost", "Never stored", "Ana", domain.PriorityLow, domain.StatusInProgress, 1)
	ghost.ID = 9999

	require.NoError(t, repo.Update(ctx, ghost))

	_, err := repo.FindByID(ctx, ghost.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func testRemove(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	task := NewTask("Remove task", "Check deletion", "Carlos", domain.PriorityLow, domain.StatusInProgress, 2)
	require.NoError(t, repo.Save(ctx, task))

	require.NoError(t, repo.Remove(ctx, task.ID))

	_, err := repo.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	assert.NoError(t, repo.Remove(ctx, task.ID), "removing an absent id is a no-op")

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testListAll(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	for _, title := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Save(ctx, NewTask(title, "desc", "Ana", domain.PriorityLow, domain.StatusInProgress, 1)))
	}

	all, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func testFilter(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	a := NewTask("Plan sprint", "Create initial backlog", "Ana", domain.PriorityHigh, domain.StatusInProgress, 4)
	b := NewTask("Production deploy", "Run the full checklist", "carlos", domain.PriorityMedium, domain.StatusDone, 7)
	c := NewTask("Refactor module", "Improve performance", "Joana", domain.PriorityLow, domain.StatusInProgress, 10)
	for _, task := range []*domain.Task{a, b, c} {
		require.NoError(t, repo.Save(ctx, task))
	}

	titles := func(filter domain.TaskFilter) []string {
		t.Helper()
		tasks, err := repo.Filter(ctx, filter)
		require.NoError(t, err)
		out := []string{}
		for _, task := range tasks {
			out = append(out, task.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Plan sprint"}, titles(domain.TaskFilter{Text: "sprint"}), "title match")
	assert.Equal(t, []string{"Production deploy"}, titles(domain.TaskFilter{Text: "CHECKLIST"}), "description match, case-insensitive")
	assert.Empty(t, titles(domain.TaskFilter{Text: "nowhere"}))

	assert.Equal(t, []string{"Production deploy"}, titles(domain.TaskFilter{Owner: "CARLOS"}), "owner is case-insensitive")
	assert.Empty(t, titles(domain.TaskFilter{Owner: "Carlos Silva"}), "owner requires exact equality")
	assert.Empty(t, titles(domain.TaskFilter{Owner: "carl"}), "owner is not a substring match")

	assert.Equal(t, []string{"Refactor module"},
		titles(domain.TaskFilter{Priority: domain.PriorityLow, Status: domain.StatusInProgress}))
	assert.Empty(t, titles(domain.TaskFilter{Priority: domain.PriorityMedium, Status: domain.StatusInProgress}))

	assert.Equal(t, []string{"Plan sprint"}, titles(domain.TaskFilter{ID: a.ID}))
	assert.Empty(t, titles(domain.TaskFilter{ID: a.ID, Owner: "Joana"}), "predicates are ANDed")

	assert.Len(t, titles(domain.TaskFilter{}), 3, "no criteria returns everything")
	assert.Len(t, titles(domain.TaskFilter{Text: "  "}), 3, "blank text imposes no constraint")
}

func testFilterEmptyResult(t *testing.T, repo repository.TaskRepository) {
	tasks, err := repo.Filter(context.Background(), domain.TaskFilter{Owner: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
