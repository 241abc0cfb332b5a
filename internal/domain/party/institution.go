package party

import (
	"github.com/bancentral/corebank/internal/domain/shared"
)

// InstitutionType classifies supervised institutions
type InstitutionType string

const (
	InstitutionTypeBank        InstitutionType = "BANCO_MULTIPLE"
	InstitutionTypeSavings     InstitutionType = "ASOCIACION_AHORROS"
	InstitutionTypeCooperative InstitutionType = "COOPERATIVA"
)

// IsValid checks if the institution type is valid
func (t InstitutionType) IsValid() bool {
	switch t {
	case InstitutionTypeBank, InstitutionTypeSavings, InstitutionTypeCooperative:
		return true
	}
	return false
}

// Institution is a supervised financial institution registered with the
// central bank. Reserve accounts reference it for encaje computations.
type Institution struct {
	shared.BaseAggregateRoot
	SIBCode string          `json:"sib_code"`
	Name    string          `json:"name"`
	Type    InstitutionType `json:"type"`
	Active  bool            `json:"active"`
}

// NewInstitution registers a new institution
func NewInstitution(sibCode, name string, instType InstitutionType) (*Institution, error) {
	if sibCode == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "SIB code is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "institution name is required")
	}
	if !instType.IsValid() {
		return nil, shared.NewDomainError("INVALID_FORMAT", "unknown institution type")
	}

	return &Institution{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SIBCode:           sibCode,
		Name:              name,
		Type:              instType,
		Active:            true,
	}, nil
}

// Deactivate removes the institution from the active registry
func (i *Institution) Deactivate() {
	i.Active = false
	i.Touch()
	i.IncrementVersion()
}
