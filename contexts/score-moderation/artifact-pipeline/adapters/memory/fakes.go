package memory

import (
	"context"
	"sync"

	"scorewatch/contexts/score-moderation/artifact-pipeline/domain/entities"
	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
	"scorewatch/contexts/score-moderation/artifact-pipeline/ports"
)

// ContentStore is an in-memory object store for tests and local wiring.
type ContentStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewContentStore() *ContentStore {
	return &ContentStore{objects: make(map[string][]byte)}
}

func (s *ContentStore) GetObject(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, domainerrors.ErrObjectNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *ContentStore) PutObject(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

// ScoreProvider serves seeded score records keyed by score id.
type ScoreProvider struct {
	mu     sync.RWMutex
	scores map[int64]entities.Score
}

func NewScoreProvider() *ScoreProvider {
	return &ScoreProvider{scores: make(map[int64]entities.Score)}
}

func (p *ScoreProvider) Seed(score entities.Score) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scores[score.ID] = score
}

func (p *ScoreProvider) FetchScore(
	_ context.Context,
	scoreID int64,
	_ entities.Ruleset,
) (entities.Score, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	score, ok := p.scores[scoreID]
	if !ok {
		return entities.Score{}, domainerrors.ErrScoreNotFound
	}
	return score, nil
}

// PerformanceService returns a fixed result, or not-found when unset.
type PerformanceService struct {
	mu     sync.RWMutex
	result *entities.Performance
	inputs []ports.PerformanceInput
}

func NewPerformanceService() *PerformanceService {
	return &PerformanceService{}
}

func (s *PerformanceService) SetResult(result entities.Performance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &result
}

func (s *PerformanceService) Calculate(
	_ context.Context,
	input ports.PerformanceInput,
) (entities.Performance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, input)
	if s.result == nil {
		return entities.Performance{}, domainerrors.ErrPerformanceNotFound
	}
	return *s.result, nil
}

func (s *PerformanceService) Inputs() []ports.PerformanceInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.PerformanceInput(nil), s.inputs...)
}

// Renderer echoes the capture bytes it was seeded with; tests seed a real
// PNG so the transcode step still runs.
type Renderer struct {
	mu       sync.RWMutex
	capture  []byte
	fail     error
	lastDoc  string
	lastSize [2]int
}

func NewRenderer(capture []byte) *Renderer {
	return &Renderer{capture: capture}
}

func (r *Renderer) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func (r *Renderer) Rasterize(_ context.Context, document string, width, height int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastDoc = document
	r.lastSize = [2]int{width, height}
	if r.fail != nil {
		return nil, r.fail
	}
	return append([]byte(nil), r.capture...), nil
}

func (r *Renderer) LastDocument() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastDoc
}

// Messenger records deliveries for assertion.
type Messenger struct {
	mu        sync.RWMutex
	artifacts []entities.ScoreUploadArtifact
	failures  []string
}

func NewMessenger() *Messenger {
	return &Messenger{}
}

func (m *Messenger) DeliverArtifact(
	_ context.Context,
	_ int64,
	artifact entities.ScoreUploadArtifact,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts = append(m.artifacts, artifact)
	return nil
}

func (m *Messenger) DeliverFailure(_ context.Context, _ int64, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, reason)
	return nil
}

func (m *Messenger) Artifacts() []entities.ScoreUploadArtifact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entities.ScoreUploadArtifact(nil), m.artifacts...)
}

func (m *Messenger) Failures() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.failures...)
}

var (
	_ ports.ContentStore       = (*ContentStore)(nil)
	_ ports.ScoreProvider      = (*ScoreProvider)(nil)
	_ ports.PerformanceService = (*PerformanceService)(nil)
	_ ports.Renderer           = (*Renderer)(nil)
	_ ports.ArtifactMessenger  = (*Messenger)(nil)
)
