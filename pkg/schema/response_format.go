package schema

import (
	"reflect"

	"github.com/agentis-ai/agentis/pkg/llms"
	"github.com/invopop/jsonschema"
)

// NewResponseFormat builds a structured-output response format for the type.
func NewResponseFormat(t reflect.Type, strict bool) (*llms.ResponseFormat, error) {
	sc, err := New(t)
	if err != nil {
		return nil, err
	}
	return &llms.ResponseFormat{
		Type: "json_schema",
		JSONSchema: &llms.ResponseFormatJSONSchema{
			Name:   t.Name(),
			Strict: strict,
			Schema: toStrictSchema(sc.Parameters, strict),
		},
	}, nil
}

type responseProperty struct {
	Type                 string                       `json:"type"`
	Title                string                       `json:"title,omitempty"`
	Description          string                       `json:"description,omitempty"`
	Enum                 []any                        `json:"enum,omitempty"`
	Default              any                          `json:"default,omitempty"`
	Items                *responseProperty            `json:"items,omitempty"`
	Properties           map[string]*responseProperty `json:"properties,omitempty"`
	AdditionalProperties *bool                        `json:"additionalProperties,omitempty"`
	Required             []string                     `json:"required,omitempty"`
}

var (
	trueVal  = true
	falseVal = false
)

// toStrictSchema converts a reflected schema into the subset the structured
// output APIs accept. Objects get additionalProperties=false unless the
// source schema explicitly allows them.
func toStrictSchema(in *jsonschema.Schema, strict bool) *responseProperty {
	if in == nil {
		return nil
	}

	result := &responseProperty{
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Enum:        in.Enum,
		Default:     in.Default,
		Required:    in.Required,
	}

	if in.AdditionalProperties != nil {
		result.AdditionalProperties = &trueVal
	} else if in.Type == "object" {
		result.AdditionalProperties = &falseVal
	}

	if in.Properties != nil {
		result.Properties = make(map[string]*responseProperty)
		for pair := in.Properties.Oldest(); pair != nil; pair = pair.Next() {
			result.Properties[pair.Key] = toStrictSchema(pair.Value, strict)
			if strict {
				result.Required = appendMissing(result.Required, pair.Key)
			}
		}
	}

	if in.Items != nil {
		result.Items = toStrictSchema(in.Items, strict)
	}

	return result
}

func appendMissing(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}
