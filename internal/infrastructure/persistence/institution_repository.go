package persistence

import (
	"context"
	"errors"

	"github.com/bancentral/corebank/internal/domain/party"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInstitutionRepository implements InstitutionRepository using GORM
type GormInstitutionRepository struct {
	db *gorm.DB
}

// NewGormInstitutionRepository creates a new GormInstitutionRepository
func NewGormInstitutionRepository(db *gorm.DB) *GormInstitutionRepository {
	return &GormInstitutionRepository{db: db}
}

// FindByID finds an institution by its ID
func (r *GormInstitutionRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Institution, error) {
	var model models.InstitutionModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySIBCode finds an institution by its SIB registry code
func (r *GormInstitutionRepository) FindBySIBCode(ctx context.Context, sibCode string) (*party.Institution, error) {
	var model models.InstitutionModel
	if err := r.db.WithContext(ctx).
		Where("sib_code = ?", sibCode).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsBySIBCode reports whether the SIB code is registered
func (r *GormInstitutionRepository) ExistsBySIBCode(ctx context.Context, sibCode string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InstitutionModel{}).
		Where("sib_code = ?", sibCode).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an institution
func (r *GormInstitutionRepository) Save(ctx context.Context, institution *party.Institution) error {
	model := models.InstitutionModelFromDomain(institution)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormInstitutionRepository implements InstitutionRepository
var _ party.InstitutionRepository = (*GormInstitutionRepository)(nil)
