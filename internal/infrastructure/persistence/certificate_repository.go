package persistence

import (
	"context"
	"errors"

	"github.com/bancentral/corebank/internal/domain/cert"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCertificateRepository implements CertificateRepository using GORM
type GormCertificateRepository struct {
	db *gorm.DB
}

// NewGormCertificateRepository creates a new GormCertificateRepository
func NewGormCertificateRepository(db *gorm.DB) *GormCertificateRepository {
	return &GormCertificateRepository{db: db}
}

// FindByID finds a certificate by its ID
func (r *GormCertificateRepository) FindByID(ctx context.Context, id uuid.UUID) (*cert.Certificate, error) {
	var model models.CertificateModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount lists certificates issued for an account
func (r *GormCertificateRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]cert.Certificate, error) {
	var certificateModels []models.CertificateModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("issued_at DESC").
		Find(&certificateModels).Error; err != nil {
		return nil, err
	}

	certificates := make([]cert.Certificate, len(certificateModels))
	for i, model := range certificateModels {
		certificates[i] = *model.ToDomain()
	}
	return certificates, nil
}

// FindByClient lists certificates issued for a client
func (r *GormCertificateRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]cert.Certificate, error) {
	var certificateModels []models.CertificateModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("issued_at DESC").
		Find(&certificateModels).Error; err != nil {
		return nil, err
	}

	certificates := make([]cert.Certificate, len(certificateModels))
	for i, model := range certificateModels {
		certificates[i] = *model.ToDomain()
	}
	return certificates, nil
}

// Save creates or updates a certificate
func (r *GormCertificateRepository) Save(ctx context.Context, certificate *cert.Certificate) error {
	model := models.CertificateModelFromDomain(certificate)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormCertificateRepository implements CertificateRepository
var _ cert.CertificateRepository = (*GormCertificateRepository)(nil)
