package models

import (
	"regexp"
	"strings"
)

// DefaultCountry is filled in when the buyer leaves the country blank.
const DefaultCountry = "India"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// Address is the postal sub-record, required only for plans that ship
// a physical magazine.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`
}

// CustomerDetails is the buyer identity collected before an order may
// be created. Password fields exist because account creation is bundled
// into checkout.
type CustomerDetails struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
	Address         Address `json:"address"`
}

// ValidationResult reports every violated field at once so the form can
// surface all errors on a single submit.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// Validate checks the plan-dependent completeness rules. Address fields
// are mandatory iff the plan requires physical delivery.
func (d *CustomerDetails) Validate(planRequiresAddress bool) ValidationResult {
	errs := make(map[string]string)

	if strings.TrimSpace(d.Name) == "" {
		errs["name"] = "Full name is required"
	}

	if strings.TrimSpace(d.Email) == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(d.Email) {
		errs["email"] = "Enter a valid email address"
	}

	if strings.TrimSpace(d.Phone) == "" {
		errs["phone"] = "Phone number is required"
	} else if !phonePattern.MatchString(d.Phone) {
		errs["phone"] = "Enter a valid 10-digit mobile number"
	}

	if d.Password == "" {
		errs["password"] = "Password is required"
	} else if len(d.Password) < 6 {
		errs["password"] = "Password must be at least 6 characters"
	}

	if d.ConfirmPassword == "" {
		errs["confirm_password"] = "Please confirm your password"
	} else if d.Password != d.ConfirmPassword {
		errs["confirm_password"] = "Passwords do not match"
	}

	if planRequiresAddress {
		if strings.TrimSpace(d.Address.Line1) == "" {
			errs["address_line1"] = "Address is required"
		}
		if strings.TrimSpace(d.Address.City) == "" {
			errs["city"] = "City is required"
		}
		if strings.TrimSpace(d.Address.State) == "" {
			errs["state"] = "State is required"
		}
		if strings.TrimSpace(d.Address.PostalCode) == "" {
			errs["postal_code"] = "Postal code is required"
		}
	}

	if len(errs) > 0 {
		return ValidationResult{Valid: false, FieldErrors: errs}
	}
	return ValidationResult{Valid: true}
}

// Normalized returns a copy with whitespace trimmed and the country
// defaulted. Called once validation has passed.
func (d CustomerDetails) Normalized() CustomerDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	if d.Address.Country == "" {
		d.Address.Country = DefaultCountry
	}
	return d
}
