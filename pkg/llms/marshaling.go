package llms

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Polymorphic JSON encoding of messages, used by the chat stores.

// messageJSON represents the JSON structure for Message.
type messageJSON struct {
	Role  Role              `json:"role"`
	Text  string            `json:"text,omitempty"`
	Parts []contentPartJSON `json:"parts,omitempty"`
}

// contentPartJSON represents the JSON structure for content parts.
type contentPartJSON struct {
	Type         string            `json:"type"`
	Text         string            `json:"text,omitempty"`
	ToolCall     *ToolCall         `json:"tool_call,omitempty"`
	ToolResponse *ToolCallResponse `json:"tool_response,omitempty"`
}

// MarshalJSON implements json.Marshaler for Message.
func (m Message) MarshalJSON() ([]byte, error) {
	// single text part is simplified to a text field
	if len(m.Parts) == 1 {
		if tp, ok := m.Parts[0].(TextContent); ok {
			return json.Marshal(messageJSON{
				Role: m.Role,
				Text: tp.Text,
			})
		}
	}

	msg := messageJSON{
		Role:  m.Role,
		Parts: make([]contentPartJSON, 0, len(m.Parts)),
	}
	for _, part := range m.Parts {
		switch typ := part.(type) {
		case TextContent:
			msg.Parts = append(msg.Parts, contentPartJSON{
				Type: "text",
				Text: typ.Text,
			})
		case ToolCall:
			tc := typ
			msg.Parts = append(msg.Parts, contentPartJSON{
				Type:     "tool_call",
				ToolCall: &tc,
			})
		case ToolCallResponse:
			tr := typ
			msg.Parts = append(msg.Parts, contentPartJSON{
				Type:         "tool_response",
				ToolResponse: &tr,
			})
		default:
			return nil, errors.Newf("unsupported content part type: %T", part)
		}
	}
	return json.Marshal(msg)
}

// UnmarshalJSON implements json.Unmarshaler for Message.
func (m *Message) UnmarshalJSON(data []byte) error {
	var msg messageJSON
	if err := json.Unmarshal(data, &msg); err != nil {
		return errors.WithStack(err)
	}

	m.Role = msg.Role
	m.Parts = nil

	if msg.Text != "" {
		m.Parts = []ContentPart{TextContent{Text: msg.Text}}
		return nil
	}

	for _, part := range msg.Parts {
		switch part.Type {
		case "text":
			m.Parts = append(m.Parts, TextContent{Text: part.Text})
		case "tool_call":
			if part.ToolCall == nil {
				return errors.New("tool_call part without tool call")
			}
			m.Parts = append(m.Parts, *part.ToolCall)
		case "tool_response":
			if part.ToolResponse == nil {
				return errors.New("tool_response part without tool response")
			}
			m.Parts = append(m.Parts, *part.ToolResponse)
		default:
			return errors.Newf("unsupported content part type: %q", part.Type)
		}
	}
	return nil
}
