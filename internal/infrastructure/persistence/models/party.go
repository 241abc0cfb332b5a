package models

import (
	"time"

	"github.com/bancentral/corebank/internal/domain/party"
)

// ClientModel is the persistence model for the Client aggregate root.
type ClientModel struct {
	AggregateModel
	CedulaRNC     string           `gorm:"type:varchar(20);not null;uniqueIndex:idx_clients_cedula_rnc"`
	FullName      string           `gorm:"type:varchar(200);not null;index"`
	Type          party.ClientType `gorm:"type:varchar(10);not null"`
	KYCValidUntil *time.Time       `gorm:"column:kyc_valid_until"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *party.Client {
	return &party.Client{
		BaseAggregateRoot: m.toAggregateRoot(),
		CedulaRNC:         m.CedulaRNC,
		FullName:          m.FullName,
		Type:              m.Type,
		KYCValidUntil:     m.KYCValidUntil,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *party.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CedulaRNC = c.CedulaRNC
	m.FullName = c.FullName
	m.Type = c.Type
	m.KYCValidUntil = c.KYCValidUntil
}

// ClientModelFromDomain creates a new persistence model from a domain Client.
func ClientModelFromDomain(c *party.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

// InstitutionModel is the persistence model for the Institution aggregate root.
type InstitutionModel struct {
	AggregateModel
	SIBCode string                `gorm:"type:varchar(20);not null;uniqueIndex:idx_institutions_sib_code"`
	Name    string                `gorm:"type:varchar(200);not null"`
	Type    party.InstitutionType `gorm:"type:varchar(30);not null"`
	Active  bool                  `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (InstitutionModel) TableName() string {
	return "institutions"
}

// ToDomain converts the persistence model to a domain Institution entity.
func (m *InstitutionModel) ToDomain() *party.Institution {
	return &party.Institution{
		BaseAggregateRoot: m.toAggregateRoot(),
		SIBCode:           m.SIBCode,
		Name:              m.Name,
		Type:              m.Type,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Institution entity.
func (m *InstitutionModel) FromDomain(i *party.Institution) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.SIBCode = i.SIBCode
	m.Name = i.Name
	m.Type = i.Type
	m.Active = i.Active
}

// InstitutionModelFromDomain creates a new persistence model from a domain Institution.
func InstitutionModelFromDomain(i *party.Institution) *InstitutionModel {
	m := &InstitutionModel{}
	m.FromDomain(i)
	return m
}
