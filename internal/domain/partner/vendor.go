package partner

import (
	"regexp"
	"strings"

	"github.com/roofpo/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PaymentTerms is the agreed settlement window for vendor invoices
type PaymentTerms string

const (
	PaymentTermsDueOnReceipt PaymentTerms = "DUE_ON_RECEIPT"
	PaymentTermsNet15        PaymentTerms = "NET15"
	PaymentTermsNet30        PaymentTerms = "NET30"
	PaymentTermsNet45        PaymentTerms = "NET45"
	PaymentTermsNet60        PaymentTerms = "NET60"
)

// Days returns the number of days after the invoice date that payment is due
func (p PaymentTerms) Days() int {
	switch p {
	case PaymentTermsNet15:
		return 15
	case PaymentTermsNet30:
		return 30
	case PaymentTermsNet45:
		return 45
	case PaymentTermsNet60:
		return 60
	}
	return 0
}

// IsValid checks if the terms are known
func (p PaymentTerms) IsValid() bool {
	switch p {
	case PaymentTermsDueOnReceipt, PaymentTermsNet15, PaymentTermsNet30, PaymentTermsNet45, PaymentTermsNet60:
		return true
	}
	return false
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	codeRegex  = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_\-]{0,49}$`)
	titleCaser = cases.Title(language.English, cases.NoLower)
)

// Vendor is a supplier of roofing materials, equipment rental or subcontracted labor
type Vendor struct {
	shared.BaseAggregateRoot
	Code         string
	Name         string
	ContactName  string
	Email        string
	Phone        string
	Address      string
	PaymentTerms PaymentTerms
	TaxID        string
	Active       bool
}

// NewVendor creates an active vendor. Names are title-cased so that
// "abc supply" and "ABC Supply" list together.
func NewVendor(code, name string) (*Vendor, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !codeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Vendor code must be 1-50 letters, digits, underscores or hyphens")
	}
	normalized, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	return &Vendor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              normalized,
		PaymentTerms:      PaymentTermsNet30,
		Active:            true,
	}, nil
}

// ContactInfo groups the optional contact fields
type ContactInfo struct {
	ContactName string
	Email       string
	Phone       string
	Address     string
}

// SetContact replaces the contact details
func (v *Vendor) SetContact(info ContactInfo) error {
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email != "" && !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(info.Phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if len(info.Address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	v.ContactName = strings.TrimSpace(info.ContactName)
	v.Email = email
	v.Phone = strings.TrimSpace(info.Phone)
	v.Address = strings.TrimSpace(info.Address)
	v.MarkModified()
	return nil
}

// Rename changes the vendor name
func (v *Vendor) Rename(name string) error {
	normalized, err := normalizeName(name)
	if err != nil {
		return err
	}
	v.Name = normalized
	v.MarkModified()
	return nil
}

// SetPaymentTerms changes the payment terms
func (v *Vendor) SetPaymentTerms(terms PaymentTerms) error {
	if !terms.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Unknown payment terms")
	}
	v.PaymentTerms = terms
	v.MarkModified()
	return nil
}

// SetTaxID records the vendor's tax identifier (EIN or SSN for 1099 reporting)
func (v *Vendor) SetTaxID(taxID string) error {
	if len(taxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}
	v.TaxID = strings.TrimSpace(taxID)
	v.MarkModified()
	return nil
}

// Deactivate blocks new POs against the vendor
func (v *Vendor) Deactivate() error {
	if !v.Active {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "Vendor is already inactive")
	}
	v.Active = false
	v.MarkModified()
	return nil
}

// Activate re-enables the vendor
func (v *Vendor) Activate() {
	v.Active = true
	v.MarkModified()
}

func normalizeName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", shared.NewDomainError("INVALID_NAME", "Vendor name cannot be empty")
	}
	if len(name) > 200 {
		return "", shared.NewDomainError("INVALID_NAME", "Vendor name cannot exceed 200 characters")
	}
	return titleCaser.String(name), nil
}
