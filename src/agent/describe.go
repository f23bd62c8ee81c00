package agent

import (
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// Wire grammar shared by the catalog text and the call parser.
const (
	CallPrefix   = "[TOOL_CALL:"
	ResultPrefix = "[TOOL_RESULT:"
)

const callSyntax = `Tool calling format:
- For tools with no parameters: [TOOL_CALL:tool_name:{}]
- For tools with parameters: [TOOL_CALL:tool_name:{"param": "value"}]
Emit one marker per call, in the order the calls should run.`

// FormatCall renders a call marker for name and a JSON object of arguments.
func FormatCall(name, args string) string {
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	return CallPrefix + name + ":" + args + "]"
}

// FormatResult renders the synthetic turn that carries a tool result back
// to the model.
func FormatResult(name, result string) string {
	return fmt.Sprintf("%s%s]: %s", ResultPrefix, name, result)
}

// Describe renders the tool catalog and the call syntax for the system prompt.
func (tm *Toolbox[T]) Describe() string {
	tools := tm.Tools()
	if len(tools) == 0 {
		return "No tools available."
	}

	toolStrings := make([]string, 0, len(tools))
	for _, tool := range tools {
		parts := []string{
			fmt.Sprintf("Tool: %s", tool.GetName()),
			fmt.Sprintf("Description: %s", tool.GetDescription()),
			"Input Schema:",
		}

		if params := tool.GetParameters(); params != nil && len(params.Properties) > 0 {
			parts = append(parts, FormatSchemaForPrompt(params, 1))
		} else {
			parts = append(parts, "  (no parameters)")
		}

		toolStrings = append(toolStrings, strings.Join(parts, "\n"))
	}

	return fmt.Sprintf("You have access to the following tools:\n\n%s\n\n%s",
		strings.Join(toolStrings, "\n\n---\n\n"), callSyntax)
}

func schemaType(schema *jsonschema.Schema) string {
	if schema.Type != nil {
		if schema.Type.SimpleTypes != nil {
			return string(*schema.Type.SimpleTypes)
		}
		if len(schema.Type.SliceOfSimpleTypeValues) > 0 {
			return string(schema.Type.SliceOfSimpleTypeValues[0])
		}
	}
	return "object"
}

func enumSuffix(values []interface{}) string {
	enumStrs := make([]string, 0, len(values))
	for _, e := range values {
		enumStrs = append(enumStrs, fmt.Sprintf(`"%v"`, e))
	}
	return fmt.Sprintf("(enum: %s)", strings.Join(enumStrs, " | "))
}

// FormatSchemaForPrompt formats a JSON schema for display in the prompt
func FormatSchemaForPrompt(schema *jsonschema.Schema, indentLevel int) string {
	if schema == nil {
		return "unknown"
	}

	indent := strings.Repeat("  ", indentLevel)
	parts := []string{}

	if schema.Description != nil && *schema.Description != "" {
		parts = append(parts, fmt.Sprintf("%s# %s", indent, *schema.Description))
	}

	detailParts := []string{}
	if len(schema.Enum) > 0 {
		detailParts = append(detailParts, enumSuffix(schema.Enum))
	}

	// required is only meaningful for objects
	if schema.Items == nil && len(schema.Properties) > 0 && len(schema.Required) > 0 {
		detailParts = append(detailParts, fmt.Sprintf("(required: %s)", strings.Join(schema.Required, ", ")))
	}

	if len(detailParts) > 0 {
		parts = append(parts, fmt.Sprintf("%s%s %s", indent, schemaType(schema), strings.Join(detailParts, " ")))
	} else {
		parts = append(parts, fmt.Sprintf("%s%s", indent, schemaType(schema)))
	}

	if len(schema.Properties) > 0 {
		propNames := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, propName := range propNames {
			propSchema := schema.Properties[propName].TypeObject
			if propSchema == nil {
				continue
			}

			propType := schemaType(propSchema)
			if len(propSchema.Enum) > 0 {
				propType += " " + enumSuffix(propSchema.Enum)
			}

			line := fmt.Sprintf("%s  %s: %s", indent, propName, propType)
			if propSchema.Description != nil && *propSchema.Description != "" {
				line += fmt.Sprintf(" # %s", *propSchema.Description)
			}
			parts = append(parts, line)
		}
	}

	if schema.Items != nil && schema.Items.SchemaOrBool != nil && schema.Items.SchemaOrBool.TypeObject != nil {
		itemSchemaString := FormatSchemaForPrompt(schema.Items.SchemaOrBool.TypeObject, indentLevel+1)
		parts = append(parts, fmt.Sprintf("%s  items: %s", indent, strings.TrimSpace(itemSchemaString)))
	}

	return strings.Join(parts, "\n")
}
