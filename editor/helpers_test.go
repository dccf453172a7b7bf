package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"mailflow/models"
)

func quietLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

var errBoom = errors.New("boom")

// fakeAPI is an in-memory step backend that records every call.
type fakeAPI struct {
	mu      sync.Mutex
	records map[string]models.StepRecord
	nextID  int

	creates int
	updates []string
	orders  map[string]int
	deletes []string
	lists   int

	// failCreateAt fails the n-th create (1-based) when > 0.
	failCreateAt int
	failUpdate   map[string]bool
	failDelete   map[string]bool
	failList     bool

	flow        models.Automation
	flowUpdates []string
	failFlow    bool
	failStatus  bool
}

func newFakeAPI(records ...models.StepRecord) *fakeAPI {
	f := &fakeAPI{
		records:    map[string]models.StepRecord{},
		orders:     map[string]int{},
		failUpdate: map[string]bool{},
		failDelete: map[string]bool{},
		flow:       models.Automation{ID: "flow-1", Name: "Onboarding", WebsiteID: "web-1", ListID: "list-1"},
	}
	for _, r := range records {
		r.FlowID = "flow-1"
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeAPI) ListSteps(_ context.Context, flowID string) ([]models.StepRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.failList {
		return nil, errBoom
	}
	out := []models.StepRecord{}
	for _, r := range f.records {
		if r.FlowID == flowID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAPI) CreateStep(_ context.Context, flowID string, step models.StepRecord) (models.StepRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.failCreateAt > 0 && f.creates == f.failCreateAt {
		return models.StepRecord{}, errBoom
	}
	f.nextID++
	step.ID = fmt.Sprintf("srv-%d", f.nextID)
	step.FlowID = flowID
	f.records[step.ID] = step
	return step, nil
}

func (f *fakeAPI) UpdateStep(_ context.Context, flowID, stepID string, data models.StepUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate[stepID] {
		return errBoom
	}
	rec, ok := f.records[stepID]
	if !ok {
		return fmt.Errorf("step %s: not found", stepID)
	}
	if data.Title == nil && data.StepCount != nil {
		f.orders[stepID] = *data.StepCount
	} else {
		f.updates = append(f.updates, stepID)
	}
	rec.Apply(data)
	f.records[stepID] = rec
	return nil
}

func (f *fakeAPI) DeleteStep(_ context.Context, flowID, stepID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete[stepID] {
		return errBoom
	}
	f.deletes = append(f.deletes, stepID)
	delete(f.records, stepID)
	return nil
}

func (f *fakeAPI) GetFlow(_ context.Context, automationID string) (FlowShell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFlow {
		return FlowShell{}, errBoom
	}
	return FlowShell{
		Automation:    f.flow,
		WebsiteData:   &models.Website{ID: "web-1", Name: "Shop"},
		ConnectedList: &models.SubscriberList{ID: "list-1", Name: "Customers"},
	}, nil
}

func (f *fakeAPI) UpdateFlow(_ context.Context, automationID, status string, data models.FlowUpdateData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == models.FlowUpdateStatus && f.failStatus {
		return errBoom
	}
	f.flowUpdates = append(f.flowUpdates, status)
	if data.Name != nil {
		f.flow.Name = *data.Name
	}
	if data.IsActive != nil {
		f.flow.IsActive = *data.IsActive
	}
	return nil
}

func (f *fakeAPI) ListLists(_ context.Context, websiteID string) ([]models.SubscriberList, error) {
	return []models.SubscriberList{{ID: "list-1", WebsiteID: websiteID, Name: "Customers"}}, nil
}

func (f *fakeAPI) ListTemplates(context.Context) ([]models.Template, error) {
	return []models.Template{{ID: "tpl-1", Name: "Welcome"}}, nil
}

func (f *fakeAPI) ListServers(context.Context) ([]models.MailServer, error) {
	return []models.MailServer{}, nil
}

// failingKV rejects every call.
type failingKV struct{}

func (failingKV) Get(string) ([]byte, error)    { return nil, errBoom }
func (failingKV) Set(string, []byte) error      { return errBoom }
func (failingKV) Delete(string) error           { return errBoom }
func (failingKV) Keys(string) ([]string, error) { return nil, errBoom }

func rec(id string, count int, t models.StepType, title string) models.StepRecord {
	r := models.StepRecord{ID: id, StepType: t, StepCount: count, Title: title}
	switch t {
	case models.StepTypeWait:
		r.WaitDuration, r.WaitUnit = 1, "days"
	case models.StepTypeSendMail:
		r.SendMailTemplate = "tpl-" + id
	}
	return r
}
