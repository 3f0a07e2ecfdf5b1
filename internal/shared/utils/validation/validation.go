package validation

import (
	"sync"
	"time"

	"festpass/pkg/calendar"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var once sync.Once

// Register installs the custom tags on gin's binding validator. Safe to call repeatedly.
func Register() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("calendar_date", isCalendarDate)
		}
	})
}

// isCalendarDate accepts YYYY-MM-DD or RFC3339
func isCalendarDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := calendar.Parse(value, time.UTC)
	return err == nil
}
