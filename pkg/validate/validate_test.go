package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type registerPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"nullable,digits=10"`
	Role     string `json:"role" validate:"nullable,in=user,admin"`
	Quantity int    `json:"quantity" validate:"nullable,gte=1,lte=99"`
}

func TestStructValid(t *testing.T) {
	errs := Struct(&registerPayload{
		Name:     "سارة",
		Email:    "sara@example.com",
		Phone:    "0501234567",
		Role:     "admin",
		Quantity: 3,
	})
	assert.False(t, HasErrors(errs))
}

func TestStructRequired(t *testing.T) {
	errs := Struct(&registerPayload{Email: "sara@example.com"})

	assert.Contains(t, errs, "name")
	assert.NotContains(t, errs, "email")
	// Keys use the json field name, not the Go name.
	assert.NotContains(t, errs, "Name")
}

func TestStructRequiredRejectsWhitespace(t *testing.T) {
	errs := Struct(&registerPayload{Name: "   ", Email: "sara@example.com"})
	assert.Contains(t, errs, "name")
}

func TestStructEmail(t *testing.T) {
	for _, bad := range []string{"plain", "a@b", "@example.com", "a b@example.com"} {
		errs := Struct(&registerPayload{Name: "سارة", Email: bad})
		assert.Contains(t, errs, "email", "email %q", bad)
	}
}

func TestNullableSkipsEmpty(t *testing.T) {
	// Phone, role and quantity are nullable: absent is fine, present
	// values are still checked.
	errs := Struct(&registerPayload{Name: "سارة", Email: "sara@example.com"})
	assert.False(t, HasErrors(errs))

	errs = Struct(&registerPayload{Name: "سارة", Email: "sara@example.com", Phone: "12345"})
	assert.Contains(t, errs, "phone")

	errs = Struct(&registerPayload{Name: "سارة", Email: "sara@example.com", Role: "root"})
	assert.Contains(t, errs, "role")

	errs = Struct(&registerPayload{Name: "سارة", Email: "sara@example.com", Quantity: 100})
	assert.Contains(t, errs, "quantity")
}

func TestFirstFailingRuleWins(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}
	errs := Struct(&payload{})

	// One message per field, from the first rule that failed.
	assert.Len(t, errs, 1)
	assert.Equal(t, "حقل email مطلوب", errs["email"])
}

func TestMinMaxOnStringsAndNumbers(t *testing.T) {
	type payload struct {
		Password string  `json:"password" validate:"required,min=8"`
		Price    float64 `json:"price" validate:"nullable,min=0,max=10000"`
	}

	errs := Struct(&payload{Password: "short"})
	assert.Contains(t, errs, "password")

	errs = Struct(&payload{Password: "longenough", Price: 20000})
	assert.Contains(t, errs, "price")

	errs = Struct(&payload{Password: "longenough", Price: 9999})
	assert.False(t, HasErrors(errs))
}

func TestStructIgnoresNonStructs(t *testing.T) {
	assert.Empty(t, Struct("not a struct"))
	assert.Empty(t, Struct(42))
}
