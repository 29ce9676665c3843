package utils

import (
	"time"
	"unicode"

	"atomichabits/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterCustomValidators(v *validator.Validate) {
	v.RegisterValidation("password", ValidatePasswordRule)
	v.RegisterValidation("habit_frequency", validateFrequency)
	v.RegisterValidation("habit_category", validateCategory)
	v.RegisterValidation("clock", validateClock)
}

// InitValidator registers the custom rules with gin's binding validator.
func InitValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterCustomValidators(v)
	}
}

func ValidatePasswordRule(fl validator.FieldLevel) bool {
	return ValidatePassword(fl.Field().String())
}

// ValidatePassword requires at least 8 characters including a number.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	for _, char := range password {
		if unicode.IsNumber(char) {
			return true
		}
	}
	return false
}

func validateFrequency(fl validator.FieldLevel) bool {
	return model.Frequency(fl.Field().String()).Valid()
}

func validateCategory(fl validator.FieldLevel) bool {
	return model.Category(fl.Field().String()).Valid()
}

// validateClock accepts 24h "HH:MM".
func validateClock(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}
