package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"mailflow/models"
)

// MemoryStore keeps everything in maps. It backs tests and
// STORE_DRIVER=memory.
type MemoryStore struct {
	mu          sync.RWMutex
	automations map[string]models.Automation
	steps       map[string]models.StepRecord
	websites    map[string]models.Website
	lists       map[string]models.SubscriberList
	templates   map[string]models.Template
	servers     map[string]models.MailServer
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		automations: map[string]models.Automation{},
		steps:       map[string]models.StepRecord{},
		websites:    map[string]models.Website{},
		lists:       map[string]models.SubscriberList{},
		templates:   map[string]models.Template{},
		servers:     map[string]models.MailServer{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) GetAutomation(_ context.Context, id string) (models.Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.automations[id]
	if !ok {
		return models.Automation{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) CreateAutomation(_ context.Context, a *models.Automation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = models.NewID()
	}
	a.CreatedAt, a.UpdatedAt = s.now(), s.now()
	s.automations[a.ID] = *a
	return nil
}

func (s *MemoryStore) UpdateAutomation(_ context.Context, id string, data models.FlowUpdateData) (models.Automation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.automations[id]
	if !ok {
		return models.Automation{}, ErrNotFound
	}
	if data.Name != nil {
		a.Name = *data.Name
	}
	if data.IsActive != nil {
		a.IsActive = *data.IsActive
	}
	a.UpdatedAt = s.now()
	s.automations[id] = a
	return a, nil
}

func (s *MemoryStore) DeleteAutomation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.automations[id]; !ok {
		return ErrNotFound
	}
	delete(s.automations, id)
	for stepID, step := range s.steps {
		if step.FlowID == id {
			delete(s.steps, stepID)
		}
	}
	return nil
}

func (s *MemoryStore) ListSteps(_ context.Context, flowID string) ([]models.StepRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StepRecord, 0)
	for _, step := range s.steps {
		if step.FlowID == flowID {
			out = append(out, step)
		}
	}
	sortSteps(out)
	return out, nil
}

func (s *MemoryStore) CreateStep(_ context.Context, step *models.StepRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step.ID == "" {
		step.ID = models.NewID()
	}
	if step.StepCount == 0 {
		last := 0
		for _, existing := range s.steps {
			if existing.FlowID == step.FlowID && existing.StepCount > last {
				last = existing.StepCount
			}
		}
		step.StepCount = last + 1
	}
	step.CreatedAt, step.UpdatedAt = s.now(), s.now()
	s.steps[step.ID] = *step
	return nil
}

func (s *MemoryStore) UpdateStep(_ context.Context, flowID, stepID string, data models.StepUpdate) (models.StepRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.steps[stepID]
	if !ok || step.FlowID != flowID {
		return models.StepRecord{}, ErrNotFound
	}
	step.Apply(data)
	step.UpdatedAt = s.now()
	s.steps[stepID] = step
	return step, nil
}

func (s *MemoryStore) DeleteStep(_ context.Context, flowID, stepID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.steps[stepID]
	if !ok || step.FlowID != flowID {
		return ErrNotFound
	}
	delete(s.steps, stepID)
	return nil
}

func (s *MemoryStore) GetWebsite(_ context.Context, id string) (models.Website, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.websites[id]
	if !ok {
		return models.Website{}, ErrNotFound
	}
	return w, nil
}

func (s *MemoryStore) ListWebsites(_ context.Context) ([]models.Website, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Website, 0, len(s.websites))
	for _, w := range s.websites {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateWebsite(_ context.Context, w *models.Website) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		w.ID = models.NewID()
	}
	w.CreatedAt, w.UpdatedAt = s.now(), s.now()
	s.websites[w.ID] = *w
	return nil
}

func (s *MemoryStore) GetList(_ context.Context, id string) (models.SubscriberList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lists[id]
	if !ok {
		return models.SubscriberList{}, ErrNotFound
	}
	return l, nil
}

func (s *MemoryStore) ListLists(_ context.Context, websiteID string) ([]models.SubscriberList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SubscriberList, 0)
	for _, l := range s.lists {
		if websiteID == "" || l.WebsiteID == websiteID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateList(_ context.Context, l *models.SubscriberList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = models.NewID()
	}
	l.CreatedAt, l.UpdatedAt = s.now(), s.now()
	s.lists[l.ID] = *l
	return nil
}

func (s *MemoryStore) ListTemplates(_ context.Context) ([]models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateTemplate(_ context.Context, t *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = models.NewID()
	}
	t.CreatedAt, t.UpdatedAt = s.now(), s.now()
	s.templates[t.ID] = *t
	return nil
}

func (s *MemoryStore) ListServers(_ context.Context) ([]models.MailServer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MailServer, 0, len(s.servers))
	for _, srv := range s.servers {
		out = append(out, srv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateServer(_ context.Context, srv *models.MailServer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if srv.ID == "" {
		srv.ID = models.NewID()
	}
	srv.CreatedAt, srv.UpdatedAt = s.now(), s.now()
	s.servers[srv.ID] = *srv
	return nil
}

// sortSteps orders by stepCount, oldest first on ties.
func sortSteps(steps []models.StepRecord) {
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].StepCount != steps[j].StepCount {
			return steps[i].StepCount < steps[j].StepCount
		}
		if !steps[i].CreatedAt.Equal(steps[j].CreatedAt) {
			return steps[i].CreatedAt.Before(steps[j].CreatedAt)
		}
		return steps[i].ID < steps[j].ID
	})
}
