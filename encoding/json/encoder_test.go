package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string `json:"name" jsonschema:"description=person name" validate:"required"`
	Age  int    `json:"age" jsonschema:"description=Age of a person"`
}

func TestFormatInstructions(t *testing.T) {
	var p person
	enc, err := NewEncoder(p)
	require.NoError(t, err)

	ins := enc.GetFormatInstructions()
	assert.Contains(t, ins, "Respond with JSON in the following JSON schema:")
	assert.Contains(t, ins, "```json")
	assert.Contains(t, ins, `"description": "person name"`)
	assert.Contains(t, ins, `"description": "Age of a person"`)
	assert.NotNil(t, enc.Schema())
}

func TestUnmarshal_Lenient(t *testing.T) {
	enc, err := NewEncoder(person{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
	}{
		{"plain", `{"name":"Ada","age":36}`},
		{"prefixed", `Sure, here you go: {"name":"Ada","age":36}`},
		{"fenced", "```json\n{\"name\":\"Ada\",\"age\":36}\n```"},
		{"postfixed", `{"name":"Ada","age":36} Let me know if you need more.`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var got person
			require.NoError(t, enc.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, "Ada", got.Name)
			assert.Equal(t, 36, got.Age)
		})
	}
}

func TestValidate(t *testing.T) {
	enc, err := NewEncoder(person{})
	require.NoError(t, err)

	assert.NoError(t, enc.Validate(person{Name: "Ada"}))
	assert.Error(t, enc.Validate(person{}))
}
