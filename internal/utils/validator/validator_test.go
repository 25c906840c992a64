package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usernamePayload struct {
	Username string `json:"username" binding:"required,username"`
}

func testEngine(t *testing.T) *validator.Validate {
	t.Helper()
	require.NoError(t, RegisterCustomValidators())
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v
}

func TestUsernameRule(t *testing.T) {
	v := testEngine(t)

	valid := []string{"budi", "budi.santoso", "a_1", "abc"}
	for _, name := range valid {
		assert.NoError(t, v.Struct(usernamePayload{Username: name}), name)
	}

	invalid := []string{"Budi", "1budi", "ab", "budi santoso", "budi@x", ".budi"}
	for _, name := range invalid {
		assert.Error(t, v.Struct(usernamePayload{Username: name}), name)
	}
}

func TestValidationErrorsUseJSONFieldNames(t *testing.T) {
	v := testEngine(t)

	err := v.Struct(usernamePayload{Username: "Not Valid"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "username", verrs[0].Field())
}

func TestDescribe(t *testing.T) {
	v := testEngine(t)

	err := v.Struct(usernamePayload{Username: ""})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "is required", Describe(verrs[0]))
}
