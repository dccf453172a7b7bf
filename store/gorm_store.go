package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mailflow/models"
)

// GormStore persists to Postgres through GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the tables of every model.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.Website{},
		&models.SubscriberList{},
		&models.Template{},
		&models.MailServer{},
		&models.Automation{},
		&models.StepRecord{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) GetAutomation(ctx context.Context, id string) (models.Automation, error) {
	var a models.Automation
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return models.Automation{}, notFound(err)
	}
	return a, nil
}

func (s *GormStore) CreateAutomation(ctx context.Context, a *models.Automation) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *GormStore) UpdateAutomation(ctx context.Context, id string, data models.FlowUpdateData) (models.Automation, error) {
	updates := map[string]interface{}{}
	if data.Name != nil {
		updates["name"] = *data.Name
	}
	if data.IsActive != nil {
		updates["is_active"] = *data.IsActive
	}

	var a models.Automation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&a).Updates(updates).Error
	})
	if err != nil {
		return models.Automation{}, err
	}
	return a, nil
}

func (s *GormStore) DeleteAutomation(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flow_id = ?", id).Delete(&models.StepRecord{}).Error; err != nil {
			return fmt.Errorf("delete steps: %w", err)
		}
		res := tx.Delete(&models.Automation{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *GormStore) ListSteps(ctx context.Context, flowID string) ([]models.StepRecord, error) {
	var steps []models.StepRecord
	err := s.db.WithContext(ctx).
		Where("flow_id = ?", flowID).
		Order("step_count ASC").Order("created_at ASC").Order("id ASC").
		Find(&steps).Error
	if err != nil {
		return nil, err
	}
	return steps, nil
}

func (s *GormStore) CreateStep(ctx context.Context, step *models.StepRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if step.StepCount == 0 {
			var last int
			err := tx.Model(&models.StepRecord{}).
				Where("flow_id = ?", step.FlowID).
				Select("COALESCE(MAX(step_count), 0)").
				Scan(&last).Error
			if err != nil {
				return err
			}
			step.StepCount = last + 1
		}
		return tx.Create(step).Error
	})
}

func (s *GormStore) UpdateStep(ctx context.Context, flowID, stepID string, data models.StepUpdate) (models.StepRecord, error) {
	var step models.StepRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&step, "id = ? AND flow_id = ?", stepID, flowID).Error
		if err != nil {
			return notFound(err)
		}
		step.Apply(data)
		return tx.Save(&step).Error
	})
	if err != nil {
		return models.StepRecord{}, err
	}
	return step, nil
}

func (s *GormStore) DeleteStep(ctx context.Context, flowID, stepID string) error {
	res := s.db.WithContext(ctx).Delete(&models.StepRecord{}, "id = ? AND flow_id = ?", stepID, flowID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) GetWebsite(ctx context.Context, id string) (models.Website, error) {
	var w models.Website
	if err := s.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return models.Website{}, notFound(err)
	}
	return w, nil
}

func (s *GormStore) ListWebsites(ctx context.Context) ([]models.Website, error) {
	var out []models.Website
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) CreateWebsite(ctx context.Context, w *models.Website) error {
	return s.db.WithContext(ctx).Create(w).Error
}

func (s *GormStore) GetList(ctx context.Context, id string) (models.SubscriberList, error) {
	var l models.SubscriberList
	if err := s.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return models.SubscriberList{}, notFound(err)
	}
	return l, nil
}

func (s *GormStore) ListLists(ctx context.Context, websiteID string) ([]models.SubscriberList, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if websiteID != "" {
		q = q.Where("website_id = ?", websiteID)
	}
	var out []models.SubscriberList
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) CreateList(ctx context.Context, l *models.SubscriberList) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *GormStore) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var out []models.Template
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) CreateTemplate(ctx context.Context, t *models.Template) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *GormStore) ListServers(ctx context.Context) ([]models.MailServer, error) {
	var out []models.MailServer
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) CreateServer(ctx context.Context, srv *models.MailServer) error {
	return s.db.WithContext(ctx).Create(srv).Error
}
