package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// memStore: in-memory TxRunner / IssueRepository / CommentRepository.
// RunInTx works on a deep copy of the state and swaps it in only when fn
// returns nil, so a failed transaction leaves nothing behind.
// ---------------------------------------------------------------------------

type memState struct {
	nextID      int64
	issues      map[int64]*model.Issue
	users       map[int64]*model.User
	labels      map[int64]model.Label
	issueLabels map[int64][]int64
	comments    []*model.Comment
	history     []*model.IssueHistory
}

func (s *memState) clone() *memState {
	c := &memState{
		nextID:      s.nextID,
		issues:      make(map[int64]*model.Issue, len(s.issues)),
		users:       s.users,
		labels:      s.labels,
		issueLabels: make(map[int64][]int64, len(s.issueLabels)),
		comments:    append([]*model.Comment(nil), s.comments...),
		history:     append([]*model.IssueHistory(nil), s.history...),
	}
	for id, issue := range s.issues {
		c.issues[id] = copyIssue(issue)
	}
	for id, labels := range s.issueLabels {
		c.issueLabels[id] = append([]int64(nil), labels...)
	}
	return c
}

func copyIssue(i *model.Issue) *model.Issue {
	c := *i
	c.Description = clonePtr(i.Description)
	c.AssigneeID = clonePtr(i.AssigneeID)
	c.ResolvedAt = clonePtr(i.ResolvedAt)
	c.Labels = append([]model.Label(nil), i.Labels...)
	return &c
}

type memStore struct {
	mu    sync.Mutex
	state *memState
	clock time.Time

	// failOn makes the named Tx method return the error once it has been
	// called more than failAfter[name] times.
	failOn    map[string]error
	failAfter map[string]int
	calls     map[string]int

	// beforeUpdate runs inside UpdateIssue before the version guard, with
	// the transaction's working state. Tests use it to simulate a writer
	// that committed after our read.
	beforeUpdate func(state *memState, id int64)
}

func newMemStore() *memStore {
	return &memStore{
		state: &memState{
			issues:      map[int64]*model.Issue{},
			users:       map[int64]*model.User{},
			labels:      map[int64]model.Label{},
			issueLabels: map[int64][]int64{},
		},
		clock:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		failOn:    map[string]error{},
		failAfter: map[string]int{},
		calls:     map[string]int{},
	}
}

func (m *memStore) addUser(id int64, name string) {
	m.state.users[id] = &model.User{ID: id, Name: name, Email: name + "@example.com"}
}

func (m *memStore) addLabel(id int64, name string) {
	m.state.labels[id] = model.Label{ID: id, Name: name}
}

func (m *memStore) issue(id int64) *model.Issue {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.state.issues[id]; ok {
		return copyIssue(i)
	}
	return nil
}

func (m *memStore) historyFor(id int64) []*model.IssueHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.IssueHistory
	for _, h := range m.state.history {
		if h.IssueID == id {
			out = append(out, h)
		}
	}
	return out
}

func (m *memStore) RunInTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memTx{store: m, state: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

// --- reads ------------------------------------------------------------------

func (m *memStore) List(ctx context.Context, opts model.IssueListOptions) ([]*model.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Issue
	for _, i := range m.state.issues {
		if opts.Status == "" || i.Status == opts.Status {
			out = append(out, copyIssue(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	if opts.Offset >= len(out) {
		return nil, nil
	}
	out = out[opts.Offset:]
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*model.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.state.issues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := copyIssue(i)
	if c.AssigneeID != nil {
		if u, ok := m.state.users[*c.AssigneeID]; ok {
			assignee := *u
			c.Assignee = &assignee
		}
	}
	c.Labels = []model.Label{}
	for _, lid := range m.state.issueLabels[id] {
		c.Labels = append(c.Labels, m.state.labels[lid])
	}
	return c, nil
}

func (m *memStore) Timeline(ctx context.Context, issueID int64) ([]*model.IssueHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.IssueHistory
	for i := len(m.state.history) - 1; i >= 0; i-- {
		if m.state.history[i].IssueID == issueID {
			out = append(out, m.state.history[i])
		}
	}
	return out, nil
}

func (m *memStore) ListByIssueID(ctx context.Context, issueID int64) ([]*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Comment
	for _, c := range m.state.comments {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	return out, nil
}

// memComments adapts memStore to CommentRepository, whose List takes
// different options than the issue listing.
type memComments struct {
	*memStore
}

func (c memComments) List(ctx context.Context, opts model.ListOptions) ([]*model.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]*model.Comment(nil), c.state.comments...)
	if opts.Offset >= len(out) {
		return nil, nil
	}
	out = out[opts.Offset:]
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// --- transaction ------------------------------------------------------------

type memTx struct {
	store *memStore
	state *memState
}

func (t *memTx) check(method string) error {
	t.store.calls[method]++
	if err, ok := t.store.failOn[method]; ok && t.store.calls[method] > t.store.failAfter[method] {
		return err
	}
	return nil
}

func (t *memTx) id() int64 {
	t.state.nextID++
	return t.state.nextID
}

func (t *memTx) GetIssue(ctx context.Context, id int64) (*model.Issue, error) {
	if err := t.check("GetIssue"); err != nil {
		return nil, err
	}
	i, ok := t.state.issues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyIssue(i), nil
}

func (t *memTx) LockIssues(ctx context.Context, ids []int64) ([]*model.Issue, error) {
	if err := t.check("LockIssues"); err != nil {
		return nil, err
	}
	var out []*model.Issue
	for _, id := range ids {
		if i, ok := t.state.issues[id]; ok {
			out = append(out, copyIssue(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (t *memTx) InsertIssue(ctx context.Context, issue *model.Issue) error {
	if err := t.check("InsertIssue"); err != nil {
		return err
	}
	issue.ID = t.id()
	issue.Version = 1
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = t.store.clock
	}
	t.state.issues[issue.ID] = copyIssue(issue)
	return nil
}

func (t *memTx) UpdateIssue(ctx context.Context, issue *model.Issue, expectedVersion int) error {
	if err := t.check("UpdateIssue"); err != nil {
		return err
	}
	if t.store.beforeUpdate != nil {
		t.store.beforeUpdate(t.state, issue.ID)
	}
	stored, ok := t.state.issues[issue.ID]
	if !ok || stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	issue.Version = stored.Version + 1
	updated := copyIssue(issue)
	updated.CreatedAt = stored.CreatedAt
	t.state.issues[issue.ID] = updated
	return nil
}

func (t *memTx) SetIssueStatus(ctx context.Context, id int64, status string) error {
	if err := t.check("SetIssueStatus"); err != nil {
		return err
	}
	i, ok := t.state.issues[id]
	if !ok {
		return repository.ErrNotFound
	}
	i.Status = status
	return nil
}

func (t *memTx) UserExists(ctx context.Context, id int64) (bool, error) {
	if err := t.check("UserExists"); err != nil {
		return false, err
	}
	_, ok := t.state.users[id]
	return ok, nil
}

func (t *memTx) GetLabelsByIDs(ctx context.Context, ids []int64) ([]model.Label, error) {
	if err := t.check("GetLabelsByIDs"); err != nil {
		return nil, err
	}
	var out []model.Label
	for _, id := range ids {
		if l, ok := t.state.labels[id]; ok {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (t *memTx) ReplaceIssueLabels(ctx context.Context, issueID int64, labelIDs []int64) error {
	if err := t.check("ReplaceIssueLabels"); err != nil {
		return err
	}
	t.state.issueLabels[issueID] = append([]int64(nil), labelIDs...)
	return nil
}

func (t *memTx) InsertComment(ctx context.Context, comment *model.Comment) error {
	if err := t.check("InsertComment"); err != nil {
		return err
	}
	comment.ID = t.id()
	comment.CreatedAt = t.store.clock
	c := *comment
	t.state.comments = append(t.state.comments, &c)
	return nil
}

func (t *memTx) AppendHistory(ctx context.Context, entry *model.IssueHistory) error {
	if err := t.check("AppendHistory"); err != nil {
		return err
	}
	entry.ID = t.id()
	entry.CreatedAt = t.store.clock
	h := *entry
	t.state.history = append(t.state.history, &h)
	return nil
}

// ---------------------------------------------------------------------------
// recordingObserver captures outcomes for assertions.
// ---------------------------------------------------------------------------

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	history  map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{history: map[string]int{}}
}

func (o *recordingObserver) MutationCompleted(op, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, op+"/"+outcome)
}

func (o *recordingObserver) HistoryAppended(eventType string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history[eventType] += n
}

func (o *recordingObserver) last() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.outcomes) == 0 {
		return ""
	}
	return o.outcomes[len(o.outcomes)-1]
}

// newTestIssueService wires an IssueServiceImpl to a fresh memStore with a
// pinned clock.
func newTestIssueService() (*IssueServiceImpl, *memStore, *recordingObserver) {
	store := newMemStore()
	obs := newRecordingObserver()
	svc := NewIssueService(store, store, memComments{store}, IssueServiceOptions{
		Observer: obs,
		Now:      func() time.Time { return store.clock.Add(90 * time.Minute) },
	}).(*IssueServiceImpl)
	return svc, store, obs
}
