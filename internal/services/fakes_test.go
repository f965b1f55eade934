package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/providers/llm"
	"github.com/yoockh/studycounsel/internal/utils"
)

// scriptedLLM answers by inspecting the system prompt so one fake can serve
// the extractors and the counselor in a single turn.
type scriptedLLM struct {
	mu      sync.Mutex
	profile string
	intent  string
	answer  string
	err     error // returned for the answer call only
	calls   [][]llm.Message
}

func (f *scriptedLLM) Complete(_ context.Context, msgs []llm.Message, _ llm.Options) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, msgs)
	f.mu.Unlock()

	switch msgs[0].Content {
	case profileSystemPrompt:
		return f.profile, nil
	case intentSystemPrompt:
		return f.intent, nil
	}
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *scriptedLLM) Name() string { return "scripted" }
func (f *scriptedLLM) Close() error { return nil }

func (f *scriptedLLM) last() []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fakeEmbedder) Model() string { return "fake-embed" }

type fakeEmbeddingStore struct {
	rows map[string]map[string]models.Embedding
	err  error
}

func newFakeEmbeddingStore() *fakeEmbeddingStore {
	return &fakeEmbeddingStore{rows: map[string]map[string]models.Embedding{}}
}

func (f *fakeEmbeddingStore) put(col, id string, vec []float32) {
	if f.rows[col] == nil {
		f.rows[col] = map[string]models.Embedding{}
	}
	f.rows[col][id] = models.Embedding{CollectionName: col, DocumentID: id, Vector: vec}
}

func (f *fakeEmbeddingStore) Upsert(_ context.Context, e *models.Embedding) error {
	if f.err != nil {
		return f.err
	}
	f.put(e.CollectionName, e.DocumentID, e.Vector)
	return nil
}

func (f *fakeEmbeddingStore) ListByCollection(_ context.Context, col string) ([]models.Embedding, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]string, 0, len(f.rows[col]))
	for id := range f.rows[col] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]models.Embedding, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.rows[col][id])
	}
	return out, nil
}

type fakeDocs struct {
	docs map[string]map[string]map[string]any
}

func (f *fakeDocs) FindByID(_ context.Context, col, id string) (map[string]any, error) {
	d, ok := f.docs[col][id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := make(map[string]any, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp, nil
}

func (f *fakeDocs) Each(_ context.Context, col string, fn func(string, map[string]any) error) error {
	ids := make([]string, 0, len(f.docs[col]))
	for id := range f.docs[col] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := fn(id, f.docs[col][id]); err != nil {
			return err
		}
	}
	return nil
}

type fakeCatalog struct {
	programmes   []models.Programme
	universities []models.University
	err          error
	progFilter   models.ProgrammeFilter
	uniFilter    models.UniversityFilter
	progQueried  bool
	unisQueried  bool
}

func (f *fakeCatalog) FindProgrammes(_ context.Context, flt models.ProgrammeFilter, limit int) ([]models.Programme, error) {
	f.progQueried, f.progFilter = true, flt
	if f.err != nil {
		return nil, f.err
	}
	if len(f.programmes) > limit {
		return f.programmes[:limit], nil
	}
	return f.programmes, nil
}

func (f *fakeCatalog) FindUniversities(_ context.Context, flt models.UniversityFilter, limit int) ([]models.University, error) {
	f.unisQueried, f.uniFilter = true, flt
	if f.err != nil {
		return nil, f.err
	}
	if len(f.universities) > limit {
		return f.universities[:limit], nil
	}
	return f.universities, nil
}

type fakeSessions struct {
	sessions map[string]models.Session
	touched  map[string]time.Time
}

func newFakeSessions(ss ...models.Session) *fakeSessions {
	f := &fakeSessions{sessions: map[string]models.Session{}, touched: map[string]time.Time{}}
	for _, s := range ss {
		f.sessions[s.SessionID] = s
	}
	return f
}

func (f *fakeSessions) Create(_ context.Context, s *models.Session) error {
	f.sessions[s.SessionID] = *s
	return nil
}

func (f *fakeSessions) GetForUser(_ context.Context, sessionID, userID string) (*models.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, utils.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSessions) ListByUser(_ context.Context, userID string, limit int) ([]models.Session, error) {
	out := []models.Session{}
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessions) Touch(_ context.Context, sessionID string, at time.Time) error {
	f.touched[sessionID] = at
	return nil
}

type fakeMessages struct {
	msgs []models.Message
	err  error
}

func (f *fakeMessages) Insert(_ context.Context, m *models.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, *m)
	return nil
}

func (f *fakeMessages) bySession(sessionID string) []models.Message {
	out := []models.Message{}
	for _, m := range f.msgs {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeMessages) ListRecent(_ context.Context, sessionID string, n int) ([]models.Message, error) {
	out := f.bySession(sessionID)
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (f *fakeMessages) ListBySession(_ context.Context, sessionID string, _ int) ([]models.Message, error) {
	return f.bySession(sessionID), nil
}

// fakeProfiles keeps profiles as field maps, the shape $set writes.
type fakeProfiles struct {
	fields map[string]map[string]any
	err    error
}

func newFakeProfiles() *fakeProfiles { return &fakeProfiles{fields: map[string]map[string]any{}} }

func (f *fakeProfiles) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	doc, ok := f.fields[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return decodeProfile(userID, doc)
}

func (f *fakeProfiles) SetFields(_ context.Context, userID string, fields map[string]any, at time.Time) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.fields[userID]
	if !ok {
		doc = map[string]any{"created_at": at}
		f.fields[userID] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	doc["updated_at"] = at
	return decodeProfile(userID, doc)
}

func decodeProfile(userID string, doc map[string]any) (*models.Profile, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	p.UserID = userID
	return &p, nil
}

type fakeAssessments struct {
	byUser map[string]models.Assessment
}

func (f *fakeAssessments) Latest(_ context.Context, userID string) (*models.Assessment, error) {
	a, ok := f.byUser[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &a, nil
}

type planKey struct{ user, session string }

type fakePlans struct {
	plans map[planKey]*models.Plan
	err   error
}

func newFakePlans() *fakePlans { return &fakePlans{plans: map[planKey]*models.Plan{}} }

func (f *fakePlans) clone(p *models.Plan) *models.Plan {
	cp := *p
	cp.Steps = append([]models.PlanStep(nil), p.Steps...)
	return &cp
}

func (f *fakePlans) Get(_ context.Context, userID, sessionID string) (*models.Plan, error) {
	p, ok := f.plans[planKey{userID, sessionID}]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return f.clone(p), nil
}

func (f *fakePlans) Latest(_ context.Context, userID string) (*models.Plan, error) {
	var best *models.Plan
	for k, p := range f.plans {
		if k.user == userID && (best == nil || p.LastUpdatedAt.After(best.LastUpdatedAt)) {
			best = p
		}
	}
	if best == nil {
		return nil, utils.ErrNotFound
	}
	return f.clone(best), nil
}

func (f *fakePlans) Ensure(_ context.Context, userID, sessionID, country string, at time.Time) (*models.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	k := planKey{userID, sessionID}
	p, ok := f.plans[k]
	if !ok {
		p = &models.Plan{UserID: userID, SessionID: sessionID, CountryTarget: country, Steps: []models.PlanStep{}, CreatedAt: at, LastUpdatedAt: at}
		f.plans[k] = p
	}
	return f.clone(p), nil
}

func (f *fakePlans) PushSteps(_ context.Context, userID, sessionID string, steps []models.PlanStep, at time.Time) error {
	p, ok := f.plans[planKey{userID, sessionID}]
	if !ok {
		return errors.New("no plan")
	}
	p.Steps = append(p.Steps, steps...)
	p.LastUpdatedAt = at
	return nil
}

func (f *fakePlans) ReplaceStep(_ context.Context, userID, sessionID string, step models.PlanStep, at time.Time) (bool, error) {
	p, ok := f.plans[planKey{userID, sessionID}]
	if !ok {
		return false, nil
	}
	for i := range p.Steps {
		if p.Steps[i].StepID == step.StepID {
			p.Steps[i] = step
			p.LastUpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePlans) PullStep(_ context.Context, userID, sessionID, stepID string, at time.Time) (bool, error) {
	p, ok := f.plans[planKey{userID, sessionID}]
	if !ok {
		return false, nil
	}
	for i := range p.Steps {
		if p.Steps[i].StepID == stepID {
			p.Steps = append(p.Steps[:i], p.Steps[i+1:]...)
			p.LastUpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePlans) Touch(_ context.Context, userID, sessionID string, at time.Time) error {
	if p, ok := f.plans[planKey{userID, sessionID}]; ok {
		p.LastUpdatedAt = at
	}
	return nil
}

// tickingClock returns strictly increasing instants.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
