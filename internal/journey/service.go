package journey

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/compasslearn/compass/internal/curriculum"
	"github.com/compasslearn/compass/internal/graph"
	"github.com/compasslearn/compass/internal/store"
)

var (
	// ErrSessionNotFound reports an operation against an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStaleGeneration reports a generation result that arrived after
	// its target session moved on. The result is discarded; the session
	// is untouched.
	ErrStaleGeneration = errors.New("generation result is stale")

	// ErrNoGenerator reports a generation operation on a service built
	// without a curriculum generator.
	ErrNoGenerator = errors.New("no curriculum generator configured")
)

// Service orchestrates sessions: it loads and saves them through the
// repository, calls the curriculum generator, and serializes mutations
// per session so concurrent event dispatch can never interleave a
// half-applied expansion.
//
// External generation calls run outside the session lock. Each one is
// tagged with the session revision it was issued against; a response
// landing after any other mutation has committed is dropped.
type Service struct {
	repo store.SessionRepo
	gen  curriculum.Generator

	mu      sync.Mutex
	handles map[string]*handle
}

// handle pairs a cached live session with its mutation lock.
type handle struct {
	mu   sync.Mutex
	sess *Session
}

// NewService creates a session service.
func NewService(repo store.SessionRepo, gen curriculum.Generator) *Service {
	return &Service{
		repo:    repo,
		gen:     gen,
		handles: make(map[string]*handle),
	}
}

// Start generates the initial curriculum for a topic and creates a new
// session around it.
func (s *Service) Start(ctx context.Context, topic string) (*Session, error) {
	if s.gen == nil {
		return nil, ErrNoGenerator
	}
	outline, err := s.gen.Outline(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("generate curriculum: %w", err)
	}
	g, err := outline.BuildGraph()
	if err != nil {
		return nil, fmt.Errorf("build curriculum graph: %w", err)
	}

	sess := New(uuid.NewString(), topic, g)
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.handles[sess.ID] = &handle{sess: sess}
	s.mu.Unlock()
	return sess, nil
}

// Get returns the live session for id, loading it from the repository on
// first access.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	h, err := s.handle(ctx, id)
	if err != nil {
		return nil, err
	}
	return h.sess, nil
}

// List returns metadata for every stored session, newest first.
func (s *Service) List(ctx context.Context) ([]store.SessionMeta, error) {
	return s.repo.List(ctx)
}

// Delete discards a session and its completed-set. This is the only way
// a completion is ever removed.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.handles, id)
	s.mu.Unlock()
	return s.repo.Delete(ctx, id)
}

// Complete marks a unit in the session's current view complete and
// persists the result. Failures of any kind leave the stored session
// unchanged.
func (s *Service) Complete(ctx context.Context, sessionID, unitID string) (CompleteResult, error) {
	h, err := s.handle(ctx, sessionID)
	if err != nil {
		return CompleteResult{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.sess.Complete(unitID)
	if err != nil {
		return CompleteResult{}, err
	}
	if res.AlreadyDone && !res.RolledUp {
		return res, nil
	}
	if err := s.save(ctx, h.sess); err != nil {
		return CompleteResult{}, err
	}
	return res, nil
}

// Open marks a unit as the one currently being studied. The overlay is
// in-memory only, so nothing is persisted.
func (s *Service) Open(ctx context.Context, sessionID, unitID string) error {
	h, err := s.handle(ctx, sessionID)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sess.SetActive(unitID)
}

// Expand asks the generator for follow-on units under a completed leaf
// and appends them. The generation call runs unlocked; if the session
// mutates meanwhile, the result is dropped with ErrStaleGeneration. A
// generator failure or an empty suggestion list leaves the graph
// untouched.
func (s *Service) Expand(ctx context.Context, sessionID, unitID string) ([]string, error) {
	if s.gen == nil {
		return nil, ErrNoGenerator
	}
	h, err := s.handle(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	sess := h.sess
	g := sess.CurrentGraph()
	u, ok := g.Unit(unitID)
	if !ok {
		h.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", graph.ErrNotFound, unitID)
	}
	if !sess.Completed.Has(sess.View, unitID) {
		h.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", graph.ErrParentNotCompleted, unitID)
	}
	in := curriculum.FollowOnInput{
		Topic:          sess.Context,
		Unit:           *u,
		ExistingTitles: unitTitles(g),
	}
	rev := sess.Revision
	view := sess.View
	h.mu.Unlock()

	drafts, err := s.gen.FollowOns(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("suggest follow-ons: %w", err)
	}
	if len(drafts) == 0 {
		return nil, graph.ErrNoSuggestions
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if sess.Revision != rev || sess.View != view {
		return nil, ErrStaleGeneration
	}
	ids, err := sess.Expand(unitID, drafts)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return ids, nil
}

// DeepStudy switches the session's view into a unit's sub-graph,
// materializing one through the generator on first entry. A generation
// failure leaves the view at root with no partial sub-graph attached.
func (s *Service) DeepStudy(ctx context.Context, sessionID, unitID string) error {
	h, err := s.handle(ctx, sessionID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	sess := h.sess
	u, ok := sess.Root.Unit(unitID)
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("%w: %q", graph.ErrNotFound, unitID)
	}
	if u.SubGraph != nil {
		defer h.mu.Unlock()
		if err := sess.EnterSubGraph(unitID); err != nil {
			return err
		}
		return s.save(ctx, sess)
	}
	if s.gen == nil {
		h.mu.Unlock()
		return ErrNoGenerator
	}
	in := curriculum.DeepStudyInput{Topic: sess.Context, Unit: *u}
	rev := sess.Revision
	h.mu.Unlock()

	outline, err := s.gen.SubOutline(ctx, in)
	if err != nil {
		return fmt.Errorf("materialize sub-graph: %w", err)
	}
	sub, err := outline.BuildGraph()
	if err != nil {
		return fmt.Errorf("materialize sub-graph: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if sess.Revision != rev {
		return ErrStaleGeneration
	}
	if err := sess.AttachSubGraph(unitID, sub); err != nil {
		return err
	}
	if err := sess.EnterSubGraph(unitID); err != nil {
		return err
	}
	return s.save(ctx, sess)
}

// Back returns the session's view to the root graph.
func (s *Service) Back(ctx context.Context, sessionID string) error {
	h, err := s.handle(ctx, sessionID)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sess.View == "" {
		return nil
	}
	h.sess.ExitSubGraph()
	return s.save(ctx, h.sess)
}

func (s *Service) handle(ctx context.Context, id string) (*handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[id]; ok {
		return h, nil
	}

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	sess, err := Load(doc)
	if err != nil {
		return nil, err
	}
	h := &handle{sess: sess}
	s.handles[id] = h
	return h, nil
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	doc, err := sess.Marshal()
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	meta := store.SessionMeta{ID: sess.ID, Context: sess.Context}
	if err := s.repo.Put(ctx, meta, doc); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func unitTitles(g *graph.Graph) []string {
	units := g.Units()
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.Title)
	}
	return out
}
