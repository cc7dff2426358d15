package organization

import (
	"regexp"
	"strings"

	"github.com/roofpo/backend/internal/domain/shared"
)

var divisionCodeRegex = regexp.MustCompile(`^[A-Z0-9]{2,3}$`)

// Division is a cost center that scopes POs, work orders and user access
type Division struct {
	shared.BaseAggregateRoot
	// Code is embedded in PO numbers, 2-3 upper-case letters or digits
	Code        string
	Name        string
	Description string
	Active      bool
}

// NewDivision creates an active division
func NewDivision(code, name string) (*Division, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !divisionCodeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_DIVISION_CODE", "Division code must be 2-3 letters or digits")
	}
	if err := validateName(name, "division"); err != nil {
		return nil, err
	}

	return &Division{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              strings.TrimSpace(name),
		Active:            true,
	}, nil
}

// Update changes the descriptive fields. The code is immutable once POs reference it.
func (d *Division) Update(name, description string) error {
	if err := validateName(name, "division"); err != nil {
		return err
	}
	d.Name = strings.TrimSpace(name)
	d.Description = description
	d.MarkModified()
	return nil
}

// Deactivate stops new work orders and POs from being raised in the division
func (d *Division) Deactivate() error {
	if !d.Active {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "Division is already inactive")
	}
	d.Active = false
	d.MarkModified()
	return nil
}

// Activate re-enables the division
func (d *Division) Activate() {
	d.Active = true
	d.MarkModified()
}

func validateName(name, what string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "The "+what+" name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "The "+what+" name cannot exceed 200 characters")
	}
	return nil
}
