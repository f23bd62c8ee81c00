package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/go-playground/validator/v10"
	"github.com/swaggest/jsonschema-go"
)

var inputValidator = validator.New()

// GenericToolHandler is a type-safe handler function
type GenericToolHandler[TInput any, TOutput any] func(ctx context.Context, input TInput) (TOutput, error)

// GenericTool is a type-safe tool whose parameter schema is reflected from
// its input struct. Inputs are decoded from the call arguments, checked
// against the schema's required list and any `validate` tags, then handed
// to the handler. The handler's output is returned as JSON.
type GenericTool[TInput any, TOutput any] struct {
	Type        string
	Name        string
	Description string
	InputType   reflect.Type
	OutputType  reflect.Type
	Schema      *jsonschema.Schema
	Handler     GenericToolHandler[TInput, TOutput]
	suspends    bool
}

// GetType returns the tool type (always "function" for now)
func (gt *GenericTool[TInput, TOutput]) GetType() string {
	return gt.Type
}

// GetName returns the tool's name
func (gt *GenericTool[TInput, TOutput]) GetName() string {
	return gt.Name
}

// GetDescription returns the tool's description
func (gt *GenericTool[TInput, TOutput]) GetDescription() string {
	return gt.Description
}

// GetParameters returns the JSON schema for the tool's parameters
func (gt *GenericTool[TInput, TOutput]) GetParameters() *jsonschema.Schema {
	return gt.Schema
}

func (gt *GenericTool[TInput, TOutput]) MaySuspend() bool {
	return gt.suspends
}

// Execute runs the tool with the given parameters. Failures are reported
// as error responses, never as a returned error.
func (gt *GenericTool[TInput, TOutput]) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	args := call.Function.Arguments
	if len(strings.TrimSpace(string(args))) == 0 {
		args = json.RawMessage("{}")
	}

	var input TInput
	if err := json.Unmarshal(args, &input); err != nil {
		return errorResponse(fmt.Sprintf("failed to parse input: %v", err)), nil
	}

	if err := gt.validateRequired(input); err != nil {
		return errorResponse(fmt.Sprintf("validation failed: %v", err)), nil
	}

	if err := validateTags(input); err != nil {
		return errorResponse(fmt.Sprintf("validation failed: %v", err)), nil
	}

	output, err := gt.Handler(ctx, input)
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	content, err := json.Marshal(output)
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return &aisdk.ToolResponse{
		Type:    "success",
		Content: content,
		IsError: false,
	}, nil
}

func errorResponse(msg string) *aisdk.ToolResponse {
	return &aisdk.ToolResponse{
		Type:    "error",
		Content: []byte(msg),
		IsError: true,
	}
}

// validateRequired checks that required fields are not empty
func (gt *GenericTool[TInput, TOutput]) validateRequired(input TInput) error {
	if gt.Schema == nil || gt.Schema.Required == nil {
		return nil
	}

	val := reflect.Indirect(reflect.ValueOf(input))
	if !val.IsValid() {
		return fmt.Errorf("input is empty")
	}
	typ := val.Type()

	for _, requiredField := range gt.Schema.Required {
		found := false
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			fieldName := strings.Split(field.Tag.Get("json"), ",")[0]

			if fieldName == requiredField {
				found = true
				if val.Field(i).IsZero() {
					return fmt.Errorf("required field '%s' is missing", requiredField)
				}
				break
			}
		}

		if !found {
			return fmt.Errorf("required field '%s' not found in struct", requiredField)
		}
	}

	return nil
}

// validateTags applies `validate` struct tags, reporting the first failure
// by its json name.
func validateTags(input any) error {
	err := inputValidator.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("field '%s' failed '%s' check", jsonName(reflect.TypeOf(input), e.StructField()), e.Tag())
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil
	}
	return err
}

func jsonName(typ reflect.Type, structField string) string {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if f, ok := typ.FieldByName(structField); ok {
		if name := strings.Split(f.Tag.Get("json"), ",")[0]; name != "" {
			return name
		}
	}
	return structField
}

// NewGenericTool creates a new generic tool with automatic schema generation
func NewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput], opts ...ToolOption) (Tool, error) {
	var input TInput
	inputType := reflect.TypeOf(input)
	if inputType == nil {
		return nil, fmt.Errorf("tool input type must be a struct, got interface")
	}

	if inputType.Kind() == reflect.Ptr {
		if inputType.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("tool input type must be a struct, got %s", inputType.Elem().Kind())
		}
	} else if inputType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool input type must be a struct, got %s", inputType.Kind())
	}

	// Outputs may be any JSON-encodable type so list and count tools can
	// return plain arrays, maps and numbers.
	var output TOutput
	outputType := reflect.TypeOf(output)

	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	o := applyOptions(opts)
	return &GenericTool[TInput, TOutput]{
		Type:        "function",
		Name:        name,
		Description: description,
		InputType:   inputType,
		OutputType:  outputType,
		Schema:      &schema,
		Handler:     handler,
		suspends:    o.maySuspend,
	}, nil
}

// MustNewGenericTool creates a new generic tool and panics on error
func MustNewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput], opts ...ToolOption) Tool {
	tool, err := NewGenericTool(name, description, handler, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create generic tool: %v", err))
	}
	return tool
}

var _ Tool = (*GenericTool[struct{}, struct{}])(nil)
