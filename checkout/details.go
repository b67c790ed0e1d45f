package checkout

import (
	"urbane-subscription-api/models"
)

// Collector owns the customer-details form state for the lifetime of
// the checkout modal. Editing a field clears only that field's error;
// full validation runs again on submit, reporting every violation at
// once.
type Collector struct {
	details         models.CustomerDetails
	fieldErrors     map[string]string
	requiresAddress bool
}

func NewCollector(requiresAddress bool) *Collector {
	return &Collector{
		fieldErrors:     make(map[string]string),
		requiresAddress: requiresAddress,
	}
}

// Restore seeds the form from a saved draft.
func (c *Collector) Restore(details models.CustomerDetails) {
	c.details = details
}

func (c *Collector) Details() models.CustomerDetails {
	return c.details
}

// FieldErrors is the current error map, keyed by field name.
func (c *Collector) FieldErrors() map[string]string {
	return c.fieldErrors
}

// SetField updates one form field and optimistically clears its error.
// No other field's error is touched and validation is not re-run.
func (c *Collector) SetField(field, value string) {
	switch field {
	case "name":
		c.details.Name = value
	case "email":
		c.details.Email = value
	case "phone":
		c.details.Phone = value
	case "password":
		c.details.Password = value
	case "confirm_password":
		c.details.ConfirmPassword = value
	case "address_line1":
		c.details.Address.Line1 = value
	case "address_line2":
		c.details.Address.Line2 = value
	case "city":
		c.details.Address.City = value
	case "state":
		c.details.Address.State = value
	case "postal_code":
		c.details.Address.PostalCode = value
	case "country":
		c.details.Address.Country = value
	default:
		return
	}

	delete(c.fieldErrors, field)
}

// Submit runs full validation. On success the normalized details are
// returned; on failure every violated field is recorded and submission
// must be blocked.
func (c *Collector) Submit() (models.CustomerDetails, models.ValidationResult) {
	result := c.details.Validate(c.requiresAddress)
	if !result.Valid {
		c.fieldErrors = result.FieldErrors
		return models.CustomerDetails{}, result
	}

	c.fieldErrors = make(map[string]string)
	return c.details.Normalized(), result
}
