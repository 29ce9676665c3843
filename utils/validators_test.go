package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"short1", false},
		{"longenoughbutnodigit", false},
		{"password123", true},
		{"12345678", true},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password))
		})
	}
}

func TestHabitValidationRules(t *testing.T) {
	v := validator.New()
	RegisterCustomValidators(v)

	type request struct {
		Frequency string `validate:"habit_frequency"`
		Category  string `validate:"habit_category"`
		TimeOfDay string `validate:"omitempty,clock"`
	}

	assert.NoError(t, v.Struct(request{Frequency: "weekly", Category: "Fitness", TimeOfDay: "06:30"}))
	assert.NoError(t, v.Struct(request{Frequency: "daily", Category: "Other"}))
	assert.Error(t, v.Struct(request{Frequency: "hourly", Category: "Other"}))
	assert.Error(t, v.Struct(request{Frequency: "daily", Category: "fitness"}))
	assert.Error(t, v.Struct(request{Frequency: "daily", Category: "Other", TimeOfDay: "25:00"}))
}

func TestRecoveryCodes(t *testing.T) {
	codes, err := GenerateRecoveryCodes()
	assert.NoError(t, err)
	assert.Len(t, codes, NumRecoveryCodes)
	assert.Regexp(t, `^[0-9A-F]{4}-[0-9A-F]{4}$`, codes[0])

	assert.Equal(t, HashRecoveryCode("ab12-cd34"), HashRecoveryCode("AB12CD34"))
}
