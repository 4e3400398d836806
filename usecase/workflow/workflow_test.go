package workflow

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	sqliteInfra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/repotest"
	sqliteRepo "github.com/fastygo/taskboard/repository/sqlite"
	"github.com/fastygo/taskboard/usecase"
)

type fixture struct {
	ctx     context.Context
	repo    repository.TaskRepository
	ctrl    *Controller
	session *domain.Session
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqliteInfra.Open(filepath.Join(t.TempDir(), "tasks.db"), nil, sqliteRepo.Models()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteInfra.Close(db) })

	now := time.Now()
	repo := sqliteRepo.NewTaskRepository(db)
	return &fixture{
		ctx:     context.Background(),
		repo:    repo,
		ctrl:    New(repo, nil, WithClock(func() time.Time { return now })),
		session: domain.NewSession("test", time.Hour),
		now:     now,
	}
}

func (f *fixture) due(days int) time.Time {
	return domain.DateOf(f.now.AddDate(0, 0, days))
}

func (f *fixture) form(title, description, owner string, priority domain.Priority, days int) Form {
	return Form{
		Title:       title,
		Description: description,
		Owner:       owner,
		Priority:    priority,
		DueDate:     f.due(days),
	}
}

func (f *fixture) submitNew(t *testing.T, form Form) {
	t.Helper()
	f.ctrl.PrepareCreate(f.session)
	f.ctrl.BindEdit(f.session, form)
	require.NoError(t, f.ctrl.SubmitEditBuffer(f.ctx, f.session))
}

func titles(tasks []domain.Task) []string {
	out := []string{}
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestInitializeShowsOnlyInProgress(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.Save(f.ctx, repotest.NewTask("Open", "d", "Ana", domain.PriorityHigh, domain.StatusInProgress, 1)))
	require.NoError(t, f.repo.Save(f.ctx, repotest.NewTask("Closed", "d", "Ana", domain.PriorityHigh, domain.StatusDone, 1)))

	require.NoError(t, f.ctrl.Initialize(f.ctx, f.session))
	assert.Equal(t, []string{"Open"}, titles(f.session.Listing))
	assert.True(t, f.session.Initialized)

	// A second activation keeps whatever the session is showing.
	f.session.Listing = nil
	require.NoError(t, f.ctrl.Initialize(f.ctx, f.session))
	assert.Nil(t, f.session.Listing)
}

func TestPlanSprintScenario(t *testing.T) {
	f := newFixture(t)

	f.submitNew(t, f.form("Plan sprint", "Draft backlog", "Ana", domain.PriorityHigh, 4))
	assert.Equal(t, []string{"Plan sprint"}, titles(f.session.Listing))

	deploy := repotest.NewTask("Deploy", "Run checklist", "carlos", domain.PriorityMedium, domain.StatusDone, 7)
	require.NoError(t, f.repo.Save(f.ctx, deploy))

	require.NoError(t, f.ctrl.ListDefault(f.ctx, f.session))
	assert.Equal(t, []string{"Plan sprint"}, titles(f.session.Listing), "done tasks are hidden by default")

	f.ctrl.SetFilter(f.session, domain.TaskFilter{Owner: "CARLOS"})
	require.NoError(t, f.ctrl.ApplyFilter(f.ctx, f.session))
	assert.Equal(t, []string{"Deploy"}, titles(f.session.Listing))
}

func TestSubmitCreatesInProgressAndResetsBuffer(t *testing.T) {
	f := newFixture(t)

	f.ctrl.PrepareCreate(f.session)
	form := f.form("Write docs", "Describe the API", "Maria", domain.PriorityLow, 2)
	form.Status = domain.StatusDone
	f.ctrl.BindEdit(f.session, form)
	require.NoError(t, f.ctrl.SubmitEditBuffer(f.ctx, f.session))

	require.Len(t, f.session.Listing, 1)
	created := f.session.Listing[0]
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.StatusInProgress, created.Status)
	assert.True(t, created.DueDate.Equal(f.due(2)))

	assert.Equal(t, domain.NewTask(), f.session.EditBuffer)
	assert.Nil(t, f.session.PendingDue)
	assert.Empty(t, f.session.Messages)
}

func TestSubmitBlankFieldsDeduplicatesMessages(t *testing.T) {
	f := newFixture(t)
	f.submitNew(t, f.form("Existing", "Already there", "Ana", domain.PriorityHigh, 1))
	before := f.session.Listing

	f.ctrl.PrepareCreate(f.session)
	f.ctrl.BindEdit(f.session, f.form("", "   ", "Ana", domain.PriorityHigh, 1))

	err := f.ctrl.SubmitEditBuffer(f.ctx, f.session)
	assert.ErrorIs(t, err, domain.ErrValidation)
	err = f.ctrl.SubmitEditBuffer(f.ctx, f.session)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, []domain.Message{
		{Severity: domain.SeverityError, Text: "Enter the task title."},
		{Severity: domain.SeverityError, Text: "Enter the task description."},
	}, f.session.Messages)
	assert.Equal(t, before, f.session.Listing, "listing is untouched on validation failure")

	all, err := f.repo.ListAll(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	f.session.DrainMessages()
	assert.ErrorIs(t, f.ctrl.SubmitEditBuffer(f.ctx, f.session), domain.ErrValidation)
	assert.Len(t, f.session.Messages, 2, "a new display cycle reports the messages again")
}

func TestSubmitRejectsPastDueDate(t *testing.T) {
	f := newFixture(t)

	f.ctrl.PrepareCreate(f.session)
	f.ctrl.BindEdit(f.session, f.form("Late", "Too late", "Ana", domain.PriorityLow, -1))

	assert.ErrorIs(t, f.ctrl.SubmitEditBuffer(f.ctx, f.session), domain.ErrValidation)
	require.Len(t, f.session.Messages, 1)
	assert.Equal(t, "The due date cannot be in the past.", f.session.Messages[0].Text)
}

func TestSubmitRequiresPendingDueDate(t *testing.T) {
	f := newFixture(t)

	f.ctrl.PrepareCreate(f.session)
	form := f.form("Title", "Description", "Ana", domain.PriorityLow, 3)
	form.DueDate = time.Time{}
	f.ctrl.BindEdit(f.session, form)

	assert.ErrorIs(t, f.ctrl.SubmitEditBuffer(f.ctx, f.session), domain.ErrValidation)
	assert.Equal(t, "Enter the due date.", f.session.Messages[0].Text)
}

func TestPrepareEditCopiesAndSubmitUpdates(t *testing.T) {
	f := newFixture(t)
	f.submitNew(t, f.form("Review layout", "Adjust CSS", "Maria", domain.PriorityMedium, 5))
	original := f.session.Listing[0]

	f.ctrl.PrepareEdit(f.session, f.session.Listing[0])
	require.NotNil(t, f.session.PendingDue)
	assert.True(t, f.session.PendingDue.Equal(original.DueDate))

	f.session.EditBuffer.Title = "Changed in buffer"
	assert.Equal(t, "Review layout", f.session.Listing[0].Title, "buffer never aliases the listing")

	f.ctrl.BindEdit(f.session, f.form("Review main layout", "Adjust CSS and components", "Maria", domain.PriorityHigh, 6))
	require.NoError(t, f.ctrl.SubmitEditBuffer(f.ctx, f.session))

	stored, err := f.repo.FindByID(f.ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "Review main layout", stored.Title)
	assert.Equal(t, domain.PriorityHigh, stored.Priority)
	assert.True(t, stored.DueDate.Equal(f.due(6)))
}

func TestEditCannotReopenDoneTask(t *testing.T) {
	f := newFixture(t)
	task := repotest.NewTask("Shipped", "Released", "Ana", domain.PriorityLow, domain.StatusInProgress, 2)
	require.NoError(t, f.repo.Save(f.ctx, task))

	stale := *task
	require.NoError(t, f.ctrl.Complete(f.ctx, f.session, task.ID))

	f.ctrl.PrepareEdit(f.session, stale)
	require.NoError(t, f.ctrl.SubmitEditBuffer(f.ctx, f.session))

	stored, err := f.repo.FindByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, stored.Status)
}

func TestCompleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	task := repotest.NewTask("Finish", "Wrap up", "Ana", domain.PriorityHigh, domain.StatusInProgress, 1)
	require.NoError(t, f.repo.Save(f.ctx, task))

	require.NoError(t, f.ctrl.Complete(f.ctx, f.session, task.ID))
	stored, err := f.repo.FindByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, stored.Status)
	assert.Empty(t, f.session.Listing)

	require.NoError(t, f.ctrl.Complete(f.ctx, f.session, task.ID))
	stored, err = f.repo.FindByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, stored.Status)

	assert.NoError(t, f.ctrl.Complete(f.ctx, f.session, 4242), "unknown id is a no-op")
}

func TestCreateAndUpdateActiveTask(t *testing.T) {
	f := newFixture(t)

	form := f.form("Active", "From the main form", "Carlos", domain.PriorityMedium, 3)
	form.Status = domain.StatusDone
	f.ctrl.BindActive(f.session, form)
	require.NoError(t, f.ctrl.Create(f.ctx, f.session))

	require.Len(t, f.session.Listing, 1)
	created := f.session.Listing[0]
	assert.Equal(t, domain.StatusInProgress, created.Status)
	assert.Equal(t, domain.Task{}, f.session.ActiveTask)
	assert.Nil(t, f.session.PendingDue)

	update := f.form("Active renamed", "From the main form", "Carlos", domain.PriorityLow, 8)
	update.ID = created.ID
	update.Status = domain.StatusInProgress
	f.ctrl.BindActive(f.session, update)
	require.NoError(t, f.ctrl.Update(f.ctx, f.session))

	stored, err := f.repo.FindByID(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Active renamed", stored.Title)
	assert.True(t, stored.DueDate.Equal(f.due(8)))
	assert.Equal(t, []string{"Active renamed"}, titles(f.session.Listing))
}

func TestRemoveRefreshesListing(t *testing.T) {
	f := newFixture(t)
	f.submitNew(t, f.form("Keep", "stays", "Ana", domain.PriorityLow, 1))
	f.submitNew(t, f.form("Drop", "goes", "Ana", domain.PriorityLow, 1))
	require.Len(t, f.session.Listing, 2)

	require.NoError(t, f.ctrl.Remove(f.ctx, f.session, f.session.Listing[1].ID))
	assert.Equal(t, []string{"Keep"}, titles(f.session.Listing))

	assert.NoError(t, f.ctrl.Remove(f.ctx, f.session, 999))
}

func TestApplyFilterWithoutCriteriaReturnsEverything(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.Save(f.ctx, repotest.NewTask("Open", "d", "Ana", domain.PriorityHigh, domain.StatusInProgress, 1)))
	require.NoError(t, f.repo.Save(f.ctx, repotest.NewTask("Closed", "d", "Ana", domain.PriorityHigh, domain.StatusDone, 1)))

	assert.Equal(t, domain.StatusInProgress, f.session.Filter.Status, "new sessions preselect in-progress")

	f.ctrl.SetFilter(f.session, domain.TaskFilter{})
	require.NoError(t, f.ctrl.ApplyFilter(f.ctx, f.session))
	assert.ElementsMatch(t, []string{"Open", "Closed"}, titles(f.session.Listing))
}

func TestRegisteredActions(t *testing.T) {
	f := newFixture(t)
	d := usecase.NewDispatcher()
	f.ctrl.Register(d)

	assert.Equal(t, []string{
		ActionComplete, ActionCreate, ActionFilter, ActionList,
		ActionPrepareCreate, ActionPrepareEdit, ActionRemove, ActionSubmit, ActionUpdate,
	}, d.Actions())

	form := f.form("Via dispatcher", "Posted form", "Ana", domain.PriorityHigh, 2)
	require.NoError(t, d.Execute(f.ctx, ActionPrepareCreate, f.session, nil))
	require.NoError(t, d.Execute(f.ctx, ActionSubmit, f.session, Input{Task: &form}))
	require.Len(t, f.session.Listing, 1)
	id := f.session.Listing[0].ID

	require.NoError(t, d.Execute(f.ctx, ActionPrepareEdit, f.session, &Input{ID: id}))
	assert.Equal(t, "Via dispatcher", f.session.EditBuffer.Title)
	assert.Equal(t, id, f.session.EditBuffer.ID)

	err := d.Execute(f.ctx, ActionPrepareEdit, f.session, Input{ID: 777})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	err = d.Execute(f.ctx, ActionRemove, f.session, Input{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	err = d.Execute(f.ctx, ActionList, f.session, "not an input")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	filter := domain.TaskFilter{Text: "POSTED"}
	require.NoError(t, d.Execute(f.ctx, ActionFilter, f.session, Input{Filter: &filter}))
	assert.Equal(t, []string{"Via dispatcher"}, titles(f.session.Listing))

	require.NoError(t, d.Execute(f.ctx, ActionComplete, f.session, Input{ID: id}))
	assert.Empty(t, f.session.Listing)
}

func TestActiveFormCannotStoreIncompleteTask(t *testing.T) {
	f := newFixture(t)
	task := repotest.NewTask("Plan sprint", "Draft backlog", "Ana", domain.PriorityHigh, domain.StatusInProgress, 4)
	require.NoError(t, f.repo.Save(f.ctx, task))

	f.ctrl.BindActive(f.session, Form{ID: task.ID, Title: "Plan sprint"})
	err := f.ctrl.Update(f.ctx, f.session)
	assert.ErrorIs(t, err, domain.ErrTaskConstraint)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	stored, err := f.repo.FindByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft backlog", stored.Description)
	assert.Equal(t, domain.PriorityHigh, stored.Priority)
	assert.Equal(t, domain.StatusInProgress, stored.Status)

	require.NoError(t, f.ctrl.Complete(f.ctx, f.session, task.ID))
	stored, err = f.repo.FindByID(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, stored.Status)

	f.ctrl.BindActive(f.session, Form{Title: "No owner", Description: "Missing fields"})
	assert.ErrorIs(t, f.ctrl.Create(f.ctx, f.session), domain.ErrTaskConstraint)

	all, err := f.repo.ListAll(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOverdueTaskStaysVisibleAndCompletable(t *testing.T) {
	f := newFixture(t)
	late := repotest.NewTask("Send invoice", "Was due last week", "Maria", domain.PriorityMedium, domain.StatusInProgress, -5)
	require.NoError(t, f.repo.Save(f.ctx, late))

	require.NoError(t, f.ctrl.ListDefault(f.ctx, f.session))
	require.Equal(t, []string{"Send invoice"}, titles(f.session.Listing))

	view := transport.NewTaskView(f.session.Listing[0], f.ctrl.Today())
	assert.True(t, view.Overdue)
	assert.Equal(t, late.DueDate.Format(domain.DateLayout), view.DueDate)

	require.NoError(t, f.ctrl.Complete(f.ctx, f.session, late.ID))
	stored, err := f.repo.FindByID(f.ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, stored.Status)
	assert.False(t, transport.NewTaskView(*stored, f.ctrl.Today()).Overdue, "done tasks are never overdue")
	assert.Empty(t, f.session.Listing)
}
