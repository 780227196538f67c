// Package inference models the structured-inference collaborator contract:
// a prompt template plus context goes in, a reply constrained to a declared
// schema comes out.
package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldType is the JSON shape of a schema field.
type FieldType string

const (
	TypeString     FieldType = "string"
	TypeStringList FieldType = "string_list"
	TypeStringMap  FieldType = "string_map"
)

// Field describes one named field of a reply.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool

	// Enum lists the legal values of a classification field. Values outside the
	// enum are not a schema violation; the workflow treats them as unresolved.
	Enum []string
}

// Schema is the fixed set of named fields a reply must carry.
type Schema struct {
	Name   string
	Fields []Field
}

// Request is one call to the collaborator.
type Request struct {
	// Template is the stage prompt; "{{context}}" is replaced by Context.
	Template string
	Context  string
	Schema   Schema
}

// Prompt renders the template with the context substituted.
func (r Request) Prompt() string {
	if strings.Contains(r.Template, ContextPlaceholder) {
		return strings.ReplaceAll(r.Template, ContextPlaceholder, r.Context)
	}
	return r.Template + "\n\nContext: " + r.Context
}

// ContextPlaceholder marks where the briefing is spliced into a template.
const ContextPlaceholder = "{{context}}"

// Reply is a schema-shaped result keyed by field name.
type Reply map[string]any

// ErrSchemaViolation is returned when a reply does not satisfy its schema.
var ErrSchemaViolation = errors.New("reply violates schema")

// JSONSchema renders s as a JSON Schema object, as accepted by
// OpenAI-compatible structured output.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		var prop map[string]any
		switch f.Type {
		case TypeStringList:
			prop = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
		case TypeStringMap:
			prop = map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}}
		default:
			prop = map[string]any{"type": "string"}
			if len(f.Enum) > 0 {
				prop["enum"] = append([]string{}, f.Enum...)
			}
		}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		props[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// Instructions describes the expected JSON shape in prose, for providers that
// only offer a plain JSON mode.
func (s Schema) Instructions() string {
	var sb strings.Builder
	sb.WriteString("Respond with a single JSON object with these fields:\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&sb, "- %s (%s", f.Name, f.Type)
		if f.Required {
			sb.WriteString(", required")
		}
		sb.WriteString(")")
		if len(f.Enum) > 0 {
			fmt.Fprintf(&sb, " one of: %s", strings.Join(f.Enum, ", "))
		}
		if f.Description != "" {
			sb.WriteString(": " + f.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ParseReply decodes a raw JSON object and validates it against s.
// Markdown code fences around the object are tolerated.
func (s Schema) ParseReply(raw string) (Reply, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var reply Reply
	if err := json.Unmarshal([]byte(clean), &reply); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrSchemaViolation, err)
	}
	if err := s.Validate(reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Validate checks required fields are present and every declared field has the
// declared shape. Enum membership is deliberately not checked.
func (s Schema) Validate(reply Reply) error {
	var problems []string
	for _, f := range s.Fields {
		v, ok := reply[f.Name]
		if !ok || v == nil {
			if f.Required {
				problems = append(problems, fmt.Sprintf("missing required field %q", f.Name))
			}
			continue
		}
		if !hasShape(v, f.Type) {
			problems = append(problems, fmt.Sprintf("field %q is not a %s", f.Name, f.Type))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w %s: %s", ErrSchemaViolation, s.Name, strings.Join(problems, "; "))
	}
	return nil
}

func hasShape(v any, t FieldType) bool {
	switch t {
	case TypeStringList:
		switch list := v.(type) {
		case []string:
			return true
		case []any:
			for _, item := range list {
				if _, ok := item.(string); !ok {
					return false
				}
			}
			return true
		}
		return false
	case TypeStringMap:
		switch m := v.(type) {
		case map[string]string:
			return true
		case map[string]any:
			for _, item := range m {
				if _, ok := item.(string); !ok {
					return false
				}
			}
			return true
		}
		return false
	default:
		_, ok := v.(string)
		return ok
	}
}
