package journey

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/compasslearn/compass/internal/curriculum"
	"github.com/compasslearn/compass/internal/graph"
	"github.com/compasslearn/compass/internal/store"
)

// memRepo is an in-memory SessionRepo for service tests.
type memRepo struct {
	mu   sync.Mutex
	docs map[string][]byte
	meta map[string]store.SessionMeta
}

func newMemRepo() *memRepo {
	return &memRepo{docs: map[string][]byte{}, meta: map[string]store.SessionMeta{}}
}

func (r *memRepo) Get(_ context.Context, id string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[id], nil
}

func (r *memRepo) Put(_ context.Context, meta store.SessionMeta, doc []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[meta.ID] = doc
	r.meta[meta.ID] = meta
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	delete(r.meta, id)
	return nil
}

func (r *memRepo) List(_ context.Context) ([]store.SessionMeta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []store.SessionMeta
	for _, m := range r.meta {
		out = append(out, m)
	}
	return out, nil
}

// fakeGen is a scriptable Generator. Hooks run before each call so tests
// can race mutations against in-flight generation.
type fakeGen struct {
	outline    *curriculum.Outline
	subOutline *curriculum.Outline
	followOns  []graph.Draft
	err        error

	beforeFollowOns func()
	beforeSub       func()
}

func (f *fakeGen) Outline(context.Context, string) (*curriculum.Outline, error) {
	return f.outline, f.err
}

func (f *fakeGen) FollowOns(context.Context, curriculum.FollowOnInput) ([]graph.Draft, error) {
	if f.beforeFollowOns != nil {
		f.beforeFollowOns()
	}
	return f.followOns, f.err
}

func (f *fakeGen) SubOutline(context.Context, curriculum.DeepStudyInput) (*curriculum.Outline, error) {
	if f.beforeSub != nil {
		f.beforeSub()
	}
	return f.subOutline, f.err
}

func diamondOutline() *curriculum.Outline {
	return &curriculum.Outline{
		Units: []curriculum.OutlineUnit{
			{ID: "1", Title: "Foundations"},
			{ID: "2", Title: "Branch A", Dependencies: []string{"1"}},
			{ID: "3", Title: "Branch B", Dependencies: []string{"1"}},
			{ID: "4", Title: "Capstone", Dependencies: []string{"2", "3"}},
		},
		Glossary: []graph.Term{{Term: "DAG", Definition: "directed acyclic graph"}},
	}
}

func TestServiceStartAndReload(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &fakeGen{outline: diamondOutline()})
	ctx := context.Background()

	sess, err := svc.Start(ctx, "graph theory")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.Root.Len() != 4 {
		t.Errorf("root size = %d, want 4", sess.Root.Len())
	}
	if len(sess.Root.Glossary()) != 1 {
		t.Errorf("glossary size = %d, want 1", len(sess.Root.Glossary()))
	}

	// A second service over the same repo loads the same journey.
	svc2 := NewService(repo, &fakeGen{})
	loaded, err := svc2.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Context != "graph theory" {
		t.Errorf("context = %q", loaded.Context)
	}
	st, _ := loaded.StatusOf("1")
	if st != graph.StatusAvailable {
		t.Errorf("status of 1 = %v, want Available", st)
	}
}

func TestServiceStart_GeneratorFailure(t *testing.T) {
	wantErr := errors.New("provider down")
	svc := NewService(newMemRepo(), &fakeGen{err: wantErr})

	_, err := svc.Start(context.Background(), "anything")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
	metas, _ := svc.List(context.Background())
	if len(metas) != 0 {
		t.Error("failed start left a stored session behind")
	}
}

func TestServiceComplete_Persists(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &fakeGen{outline: diamondOutline()})
	ctx := context.Background()

	sess, err := svc.Start(ctx, "topic")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := svc.Complete(ctx, sess.ID, "1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Next != "2" {
		t.Errorf("next = %q, want 2", res.Next)
	}

	// Fresh service sees the completion.
	svc2 := NewService(repo, &fakeGen{})
	loaded, err := svc2.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	st, _ := loaded.StatusOf("1")
	if st != graph.StatusCompleted {
		t.Errorf("status of 1 = %v, want Completed", st)
	}
}

func TestServiceComplete_UnknownSession(t *testing.T) {
	svc := NewService(newMemRepo(), &fakeGen{})
	_, err := svc.Complete(context.Background(), "ghost", "1")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestServiceExpand(t *testing.T) {
	repo := newMemRepo()
	gen := &fakeGen{
		outline:   diamondOutline(),
		followOns: []graph.Draft{{Title: "A"}, {Title: "B"}},
	}
	svc := NewService(repo, gen)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "topic")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, id := range []string{"1", "2", "3", "4"} {
		if _, err := svc.Complete(ctx, sess.ID, id); err != nil {
			t.Fatalf("complete %q: %v", id, err)
		}
	}

	ids, err := svc.Expand(ctx, sess.ID, "4")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d new units, want 2", len(ids))
	}
	if sess.Root.Len() != 6 {
		t.Errorf("root size = %d, want 6", sess.Root.Len())
	}
}

func TestServiceExpand_RequiresCompletedParent(t *testing.T) {
	repo := newMemRepo()
	gen := &fakeGen{
		outline:   diamondOutline(),
		followOns: []graph.Draft{{Title: "A"}},
	}
	gen.beforeFollowOns = func() {
		t.Error("generator called for an uncompleted unit")
	}
	svc := NewService(repo, gen)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "topic")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	before := sess.Root.Len()
	_, err = svc.Expand(ctx, sess.ID, "1")
	if !errors.Is(err, graph.ErrParentNotCompleted) {
		t.Fatalf("expected ErrParentNotCompleted, got %v", err)
	}
	if sess.Root.Len() != before {
		t.Error("rejected expansion mutated the graph")
	}
}

func TestServiceExpand_StaleResultDropped(t *testing.T) {
	repo := newMemRepo()
	gen := &fakeGen{
		outline:   diamondOutline(),
		followOns: []graph.Draft{{Title: "A"}},
	}
	svc := NewService(repo, gen)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "topic")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Complete(ctx, sess.ID, "1"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Another mutation lands while the suggestion call is in flight.
	gen.beforeFollowOns = func() {
		if _, err := svc.Complete(ctx, sess.ID, "2"); err != nil {
			t.Errorf("interleaved complete: %v", err)
		}
	}

	before := sess.Root.Len()
	_, err = svc.Expand(ctx, sess.ID, "1")
	if !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("expected ErrStaleGeneration, got %v", err)
	}
	if sess.Root.Len() != before {
		t.Error("stale expansion mutated the graph")
	}
}

func TestServiceExpand_GeneratorFailureLeavesGraph(t *testing.T) {
	repo := newMemRepo()
	gen := &fakeGen{outline: diamondOutline()}
	svc := NewService(repo, gen)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "topic")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Complete(ctx, sess.ID, "1"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	gen.err = errors.New("timeout")
	before := sess.Root.Len()
	if _, err := svc.Expand(ctx, sess.ID, "1"); err == nil {
		t.Fatal("expected expansion error")
	}
	if sess.Root.Len() != before {
		t.Error("failed expansion mutated the graph")
	}

	// Empty suggestions are reported, graph untouched.
	gen.err = nil
	gen.followOns = nil
	_, err = svc.Expand(ctx, sess.ID, "1")
	if !errors.Is(err, graph.ErrNoSuggestions) {
		t.Fatalf("expected ErrNoSuggestions, got %v", err)
	}
	if sess.Root.Len() != before {
		t.Error("empty expansion mutated the graph")
	}
}

func TestServiceDeepStudy_MaterializeAndRollUp(t *testing.T) {
	repo := newMemRepo()
	gen := &fakeGen{
		outline: &curriculum.Outline{
			Units: []curriculum.OutlineUnit{
				{ID: "M", Title: "Milestone"},
				{ID: "N", Title: "Next", Dependencies: []string{"M"}},
			},
		},
		subOutline: &curriculum.Outline{
			Units: []curriculum.OutlineUnit{
				{ID: "s1", Title: "Step 1"},
				{ID: "s2", Title: "Step 2", Dependencies: []string{"s1"}},
				{ID: "s3", Title: "Step 3", Dependencies: []string{"s2"}},
			},
		},
	}
	svc := NewService(repo, gen)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "topic")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.DeepStudy(ctx, sess.ID, "M"); err != nil {
		t.Fatalf("deep study: %v", err)
	}
	if sess.View != "M" {
		t.Fatalf("view = %q, want M", sess.View)
	}

	for _, id := range []string{"s1", "s2"} {
		if _, err := svc.Complete(ctx, sess.ID, id); err != nil {
			t.Fatalf("complete %q: %v", id, err)
		}
	}
	res, err := svc.Complete(ctx, sess.ID, "s3")
	if err != nil {
		t.Fatalf("complete s3: %v", err)
	}
	if !res.RolledUp || res.Milestone != "M" {
		t.Fatalf("expected roll-up of M, got %+v", res)
	}

	// Roll-up persisted: a fresh service sees N available at root view.
	svc2 := NewService(repo, &fakeGen{})
	loaded, err := svc2.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.View != "" {
		t.Errorf("reloaded view = %q, want root", loaded.View)
	}
	st, _ := loaded.StatusOf("N")
	if st != graph.StatusAvailable {
		t.Errorf("N = %v, want Available", st)
	}
}

func TestServiceDeepStudy_FailureLeavesRootView(t *testing.T) {
	repo := newMemRepo()
	gen := &fakeGen{outline: diamondOutline()}
	svc := NewService(repo, gen)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "topic")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	gen.err = errors.New("timeout")
	if err := svc.DeepStudy(ctx, sess.ID, "1"); err == nil {
		t.Fatal("expected materialization error")
	}
	if sess.View != "" {
		t.Errorf("view = %q, want root after failure", sess.View)
	}
	u, _ := sess.Root.Unit("1")
	if u.SubGraph != nil {
		t.Error("failed materialization attached a partial sub-graph")
	}
}

func TestServiceDeepStudy_StaleMaterializationDropped(t *testing.T) {
	repo := newMemRepo()
	gen := &fakeGen{
		outline: diamondOutline(),
		subOutline: &curriculum.Outline{
			Units: []curriculum.OutlineUnit{{ID: "s1", Title: "Step 1"}},
		},
	}
	svc := NewService(repo, gen)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "topic")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	gen.beforeSub = func() {
		if _, err := svc.Complete(ctx, sess.ID, "1"); err != nil {
			t.Errorf("interleaved complete: %v", err)
		}
	}

	err = svc.DeepStudy(ctx, sess.ID, "2")
	if !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("expected ErrStaleGeneration, got %v", err)
	}
	u, _ := sess.Root.Unit("2")
	if u.SubGraph != nil {
		t.Error("stale materialization attached a sub-graph")
	}
	if sess.View != "" {
		t.Errorf("view = %q, want root", sess.View)
	}
}

func TestServiceDelete_IsolatedFromOtherSessions(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &fakeGen{outline: diamondOutline()})
	ctx := context.Background()

	a, err := svc.Start(ctx, "topic a")
	if err != nil {
		t.Fatalf("start a: %v", err)
	}
	b, err := svc.Start(ctx, "topic b")
	if err != nil {
		t.Fatalf("start b: %v", err)
	}
	if _, err := svc.Complete(ctx, a.ID, "1"); err != nil {
		t.Fatalf("complete in a: %v", err)
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete a: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("deleted session still loads: %v", err)
	}

	// b untouched.
	st, err := b.StatusOf("1")
	if err != nil {
		t.Fatalf("status in b: %v", err)
	}
	if st != graph.StatusAvailable {
		t.Errorf("b's unit 1 = %v, want Available", st)
	}
}

func TestServiceSnapshot_CopiesView(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &fakeGen{outline: diamondOutline()})
	ctx := context.Background()

	sess, err := svc.Start(ctx, "graphs")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Complete(ctx, sess.ID, "1"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	snap, err := svc.Snapshot(ctx, sess.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Context != "graphs" || snap.View != "" {
		t.Errorf("snapshot header = (%q, %q), want (graphs, root)", snap.Context, snap.View)
	}
	if snap.Done != 1 || snap.Total != 4 {
		t.Errorf("progress = %d/%d, want 1/4", snap.Done, snap.Total)
	}
	if got := len(snap.Units); got != 4 {
		t.Fatalf("got %d rows, want 4", got)
	}
	if row := snap.UnitByID("2"); row == nil || row.Status != graph.StatusAvailable {
		t.Errorf("row 2 = %+v, want Available", row)
	}
	capstone := snap.UnitByID("4")
	if capstone == nil {
		t.Fatal("row 4 missing")
	}
	wantReqs := []DepRow{{Title: "Branch A"}, {Title: "Branch B"}}
	if len(capstone.Requires) != len(wantReqs) {
		t.Fatalf("row 4 requires = %+v, want %+v", capstone.Requires, wantReqs)
	}
	for i, want := range wantReqs {
		if capstone.Requires[i] != want {
			t.Errorf("row 4 requires[%d] = %+v, want %+v", i, capstone.Requires[i], want)
		}
	}
	if row := snap.UnitByID("1"); row == nil || len(row.Unlocks) != 2 {
		t.Errorf("row 1 unlocks = %+v, want 2 titles", row)
	}
	if len(snap.Glossary) != 1 || snap.Glossary[0].Term != "DAG" {
		t.Errorf("glossary = %+v, want the DAG entry", snap.Glossary)
	}
}

func TestServiceSnapshot_DetachedFromLiveSession(t *testing.T) {
	repo := newMemRepo()
	gen := &fakeGen{
		outline:   diamondOutline(),
		followOns: []graph.Draft{{Title: "A"}, {Title: "B"}},
	}
	svc := NewService(repo, gen)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "graphs")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, id := range []string{"1", "2", "3", "4"} {
		if _, err := svc.Complete(ctx, sess.ID, id); err != nil {
			t.Fatalf("complete %q: %v", id, err)
		}
	}

	snap, err := svc.Snapshot(ctx, sess.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	rows, done := len(snap.Units), snap.Done

	if _, err := svc.Expand(ctx, sess.ID, "4"); err != nil {
		t.Fatalf("expand: %v", err)
	}

	if len(snap.Units) != rows || snap.Done != done {
		t.Errorf("snapshot changed under a later mutation: %d rows %d done, want %d rows %d done",
			len(snap.Units), snap.Done, rows, done)
	}
	after, err := svc.Snapshot(ctx, sess.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(after.Units) != rows+2 {
		t.Errorf("fresh snapshot has %d rows, want %d", len(after.Units), rows+2)
	}
}

func TestServiceSnapshot_SubView(t *testing.T) {
	repo := newMemRepo()
	gen := &fakeGen{
		outline: &curriculum.Outline{
			Units: []curriculum.OutlineUnit{{ID: "M", Title: "Milestone"}},
		},
		subOutline: &curriculum.Outline{
			Units: []curriculum.OutlineUnit{
				{ID: "s1", Title: "Step 1"},
				{ID: "s2", Title: "Step 2", Dependencies: []string{"s1"}},
			},
		},
	}
	svc := NewService(repo, gen)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "graphs")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.DeepStudy(ctx, sess.ID, "M"); err != nil {
		t.Fatalf("deep study: %v", err)
	}
	if _, err := svc.Complete(ctx, sess.ID, "s1"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	snap, err := svc.Snapshot(ctx, sess.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.View != "M" || snap.ViewTitle != "Milestone" {
		t.Errorf("view = (%q, %q), want (M, Milestone)", snap.View, snap.ViewTitle)
	}
	if snap.Done != 1 || snap.Total != 2 {
		t.Errorf("view progress = %d/%d, want 1/2", snap.Done, snap.Total)
	}
	if snap.RootDone != 0 || snap.RootTotal != 1 {
		t.Errorf("root progress = %d/%d, want 0/1", snap.RootDone, snap.RootTotal)
	}
	if row := snap.UnitByID("s2"); row == nil || row.Status != graph.StatusAvailable {
		t.Errorf("row s2 = %+v, want Available", row)
	}
}
