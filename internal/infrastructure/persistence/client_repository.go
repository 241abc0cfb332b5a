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

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrClientNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCedulaRNC finds a client by its identity document
func (r *GormClientRepository) FindByCedulaRNC(ctx context.Context, cedulaRNC string) (*party.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("cedula_rnc = ?", cedulaRNC).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrClientNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByCedulaRNC reports whether the identity document is registered
func (r *GormClientRepository) ExistsByCedulaRNC(ctx context.Context, cedulaRNC string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("cedula_rnc = ?", cedulaRNC).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists clients with filtering and returns the unpaged total
func (r *GormClientRepository) FindAll(ctx context.Context, filter party.ClientFilter) ([]party.Client, int64, error) {
	f := filter
	f.Filter = f.Filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.ClientModel{})
	if f.Search != "" {
		searchPattern := "%" + f.Search + "%"
		query = query.Where("cedula_rnc ILIKE ? OR full_name ILIKE ?", searchPattern, searchPattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clientModels []models.ClientModel
	if err := query.
		Order("full_name ASC").
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&clientModels).Error; err != nil {
		return nil, 0, err
	}

	clients := make([]party.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, total, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *party.Client) error {
	model := models.ClientModelFromDomain(client)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormClientRepository implements ClientRepository
var _ party.ClientRepository = (*GormClientRepository)(nil)
