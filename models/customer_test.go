package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbane-subscription-api/models"
)

func validDetails() models.CustomerDetails {
	return models.CustomerDetails{
		Name:            "Priya Sharma",
		Email:           "priya@example.com",
		Phone:           "9876543210",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Address: models.Address{
			Line1:      "12 MG Road",
			City:       "Mumbai",
			State:      "Maharashtra",
			PostalCode: "400001",
		},
	}
}

func TestCustomerDetailsValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid details pass", func(t *testing.T) {
		d := validDetails()
		result := d.Validate(true)
		assert.True(t, result.Valid)
		assert.Empty(t, result.FieldErrors)
	})

	t.Run("all violations reported at once", func(t *testing.T) {
		d := models.CustomerDetails{}
		result := d.Validate(true)
		require.False(t, result.Valid)
		for _, field := range []string{
			"name", "email", "phone", "password", "confirm_password",
			"address_line1", "city", "state", "postal_code",
		} {
			assert.Contains(t, result.FieldErrors, field)
		}
	})

	t.Run("email shape", func(t *testing.T) {
		for _, bad := range []string{"plainaddress", "a @b.com", "a@b", "a@b com", "@b.com"} {
			d := validDetails()
			d.Email = bad
			result := d.Validate(false)
			assert.Contains(t, result.FieldErrors, "email", "email %q should fail", bad)
		}

		d := validDetails()
		d.Email = "reader.one+tag@urbane.co.in"
		assert.True(t, d.Validate(false).Valid)
	})

	t.Run("phone must be ten digits starting 6-9", func(t *testing.T) {
		for _, bad := range []string{"1234567890", "987654321", "98765432101", "98765abc10", "5876543210"} {
			d := validDetails()
			d.Phone = bad
			result := d.Validate(false)
			assert.Contains(t, result.FieldErrors, "phone", "phone %q should fail", bad)
		}

		for _, ok := range []string{"6000000000", "7123456789", "8999999999", "9876543210"} {
			d := validDetails()
			d.Phone = ok
			assert.True(t, d.Validate(false).Valid, "phone %q should pass", ok)
		}
	})

	t.Run("password length and confirmation", func(t *testing.T) {
		d := validDetails()
		d.Password = "abc12"
		d.ConfirmPassword = "abc12"
		result := d.Validate(false)
		assert.Equal(t, "Password must be at least 6 characters", result.FieldErrors["password"])

		d = validDetails()
		d.ConfirmPassword = "different"
		result = d.Validate(false)
		assert.Equal(t, "Passwords do not match", result.FieldErrors["confirm_password"])
	})

	t.Run("address required only for physical plans", func(t *testing.T) {
		d := validDetails()
		d.Address = models.Address{}

		result := d.Validate(false)
		assert.True(t, result.Valid, "digital-only plan must not demand an address")

		result = d.Validate(true)
		require.False(t, result.Valid)
		assert.Contains(t, result.FieldErrors, "address_line1")
		assert.Contains(t, result.FieldErrors, "postal_code")
	})

	t.Run("whitespace-only values are missing", func(t *testing.T) {
		d := validDetails()
		d.Name = "   "
		result := d.Validate(false)
		assert.Equal(t, "Full name is required", result.FieldErrors["name"])
	})
}

func TestCustomerDetailsNormalized(t *testing.T) {
	t.Parallel()

	d := validDetails()
	d.Name = "  Priya Sharma "
	d.Email = " Priya@Example.COM "
	d.Phone = " 9876543210 "
	d.Address.Country = ""

	n := d.Normalized()
	assert.Equal(t, "Priya Sharma", n.Name)
	assert.Equal(t, "priya@example.com", n.Email)
	assert.Equal(t, "9876543210", n.Phone)
	assert.Equal(t, models.DefaultCountry, n.Address.Country)

	d.Address.Country = "Singapore"
	assert.Equal(t, "Singapore", d.Normalized().Address.Country)
}
