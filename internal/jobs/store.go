package jobs

import (
	"errors"

	"ghl-timezone-sync/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("jobs: run not found")

// Store persists job runs for inspection.
type Store interface {
	Create(run *models.JobRun) error
	Save(run *models.JobRun) error
	Get(id string) (*models.JobRun, error)
	List(deadOnly bool, limit int) ([]models.JobRun, error)
	Prune(keep int) (int64, error)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Create(run *models.JobRun) error {
	return s.DB.Create(run).Error
}

func (s *GormStore) Save(run *models.JobRun) error {
	return s.DB.Save(run).Error
}

func (s *GormStore) Get(id string) (*models.JobRun, error) {
	var run models.JobRun
	if err := s.DB.Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// List returns the most recent runs first.
func (s *GormStore) List(deadOnly bool, limit int) ([]models.JobRun, error) {
	query := s.DB.Order("created_at DESC").Limit(limit)
	if deadOnly {
		query = query.Where("dead_letter = ?", true)
	}

	runs := []models.JobRun{}
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Prune deletes finished runs beyond the newest keep. Queued and running
// runs are never removed.
func (s *GormStore) Prune(keep int) (int64, error) {
	newest := s.DB.Model(&models.JobRun{}).
		Select("id").
		Where("finished_at IS NOT NULL").
		Order("finished_at DESC").
		Limit(keep)

	result := s.DB.
		Where("finished_at IS NOT NULL").
		Where("id NOT IN (?)", newest).
		Delete(&models.JobRun{})
	return result.RowsAffected, result.Error
}
