package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Slug  string `validate:"required,slug"`
	Date  string `validate:"omitempty,isodate"`
	Image string `validate:"omitempty,url"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(sample{Slug: "about-us", Date: "2024-03-01"}))
	assert.NoError(t, v.Validate(sample{Slug: "missions"}))

	assert.Error(t, v.Validate(sample{Slug: "About Us"}))
	assert.Error(t, v.Validate(sample{Slug: ""}))
	assert.Error(t, v.Validate(sample{Slug: "news", Date: "01/03/2024"}))
	assert.Error(t, v.Validate(sample{Slug: "news", Image: "not a url"}))
}
