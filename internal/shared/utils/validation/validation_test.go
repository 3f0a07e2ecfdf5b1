package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type window struct {
	From string `binding:"required,calendar_date"`
	To   string `binding:"omitempty,calendar_date"`
}

func TestCalendarDateTag(t *testing.T) {
	Register()
	Register()

	assert.NoError(t, binding.Validator.ValidateStruct(window{From: "2024-01-01"}))
	assert.NoError(t, binding.Validator.ValidateStruct(window{From: "2024-01-01T09:00:00Z", To: "2024-01-03"}))
	assert.Error(t, binding.Validator.ValidateStruct(window{From: "01/02/2024"}))
	assert.Error(t, binding.Validator.ValidateStruct(window{From: "2024-01-01", To: "2024-13-01"}))
}
