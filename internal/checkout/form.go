package checkout

import (
	"errors"
	"strings"

	"lovmeds/internal/domain"
)

// ErrInvalidForm is wrapped by every FormError.
var ErrInvalidForm = errors.New("checkout form is incomplete")

// Form is the contact and shipping data a shopper submits at checkout.
// Billing defaults to the shipping address when nil.
type Form struct {
	CustomerName  string          `json:"customerName" form:"customerName"`
	CustomerEmail string          `json:"customerEmail" form:"customerEmail"`
	CustomerPhone string          `json:"customerPhone" form:"customerPhone"`
	Street        string          `json:"street" form:"street"`
	City          string          `json:"city" form:"city"`
	Region        string          `json:"region" form:"region"`
	PostalCode    string          `json:"postalCode" form:"postalCode"`
	Notes         string          `json:"notes" form:"notes"`
	Billing       *domain.Address `json:"billingAddress,omitempty" form:"-"`
}

// FormError lists every required field that was left blank.
type FormError struct {
	Missing []string
}

func (e *FormError) Error() string {
	return ErrInvalidForm.Error() + ": missing " + strings.Join(e.Missing, ", ")
}

func (e *FormError) Unwrap() error { return ErrInvalidForm }

type field struct {
	name  string
	value string
}

// Validate checks presence only; contents are not otherwise validated.
func (f Form) Validate() error {
	fields := []field{
		{"customerName", f.CustomerName},
		{"customerEmail", f.CustomerEmail},
		{"customerPhone", f.CustomerPhone},
		{"street", f.Street},
		{"city", f.City},
		{"region", f.Region},
	}
	if f.Billing != nil {
		fields = append(fields,
			field{"billingAddress.street", f.Billing.Street},
			field{"billingAddress.city", f.Billing.City},
			field{"billingAddress.region", f.Billing.Region},
		)
	}

	var missing []string
	for _, fd := range fields {
		if strings.TrimSpace(fd.value) == "" {
			missing = append(missing, fd.name)
		}
	}
	if len(missing) > 0 {
		return &FormError{Missing: missing}
	}
	return nil
}

func (f Form) customer() domain.Customer {
	return domain.Customer{
		Name:  strings.TrimSpace(f.CustomerName),
		Email: strings.TrimSpace(f.CustomerEmail),
		Phone: strings.TrimSpace(f.CustomerPhone),
	}
}

func (f Form) shipping() domain.Address {
	return domain.Address{
		Street:     strings.TrimSpace(f.Street),
		City:       strings.TrimSpace(f.City),
		Region:     strings.TrimSpace(f.Region),
		PostalCode: strings.TrimSpace(f.PostalCode),
	}
}

func (f Form) billing() domain.Address {
	if f.Billing == nil {
		return f.shipping()
	}
	return domain.Address{
		Street:     strings.TrimSpace(f.Billing.Street),
		City:       strings.TrimSpace(f.Billing.City),
		Region:     strings.TrimSpace(f.Billing.Region),
		PostalCode: strings.TrimSpace(f.Billing.PostalCode),
	}
}
