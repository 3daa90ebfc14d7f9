// Package parser extracts form-shaped request bodies from OpenAPI documents
// using kin-openapi.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Options tunes parsing.
type Options struct {
	// ResolveReferences validates the document, which also resolves refs.
	ResolveReferences bool
	// AllowPartialDocuments accepts documents without operations.
	AllowPartialDocuments bool
}

// Operation is one request the document describes.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	Request Schema
}

// Parser turns raw documents into operations.
type Parser struct {
	options Options
}

// New constructs a Parser with the given options.
func New(options Options) *Parser {
	return &Parser{options: options}
}

// Operations converts a document into a map keyed by operationId. Operations
// without an id are keyed "method:path".
func (p *Parser) Operations(ctx context.Context, raw []byte) (map[string]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}

	if spec.Paths == nil || spec.Paths.Len() == 0 {
		if !p.options.AllowPartialDocuments {
			return nil, errors.New("openapi parser: document does not contain any paths")
		}
	}

	if p.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	operations := make(map[string]Operation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			collectOperation(operations, "POST", path, item.Post)
			collectOperation(operations, "PUT", path, item.Put)
			collectOperation(operations, "PATCH", path, item.Patch)
		}
	}

	if len(operations) == 0 && !p.options.AllowPartialDocuments {
		return nil, errors.New("openapi parser: no operations extracted")
	}
	return operations, nil
}

// Operation returns a single operation by id.
func (p *Parser) Operation(ctx context.Context, raw []byte, id string) (Operation, error) {
	operations, err := p.Operations(ctx, raw)
	if err != nil {
		return Operation{}, err
	}
	op, ok := operations[id]
	if !ok {
		return Operation{}, fmt.Errorf("openapi parser: operation %q not found", id)
	}
	return op, nil
}

func collectOperation(target map[string]Operation, method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	opID := operation.OperationID
	if opID == "" {
		opID = strings.ToLower(method) + ":" + path
	}
	target[opID] = Operation{
		ID:      opID,
		Method:  method,
		Path:    path,
		Summary: operation.Summary,
		Request: extractRequestSchema(operation.RequestBody),
	}
}

func extractRequestSchema(requestBody *openapi3.RequestBodyRef) Schema {
	if requestBody == nil || requestBody.Value == nil {
		return Schema{}
	}
	content := requestBody.Value.Content
	for _, mediaType := range []string{"multipart/form-data", "application/x-www-form-urlencoded", "application/json"} {
		if mt, ok := content[mediaType]; ok {
			return convertSchema(mt.Schema)
		}
	}
	for _, mt := range content {
		return convertSchema(mt.Schema)
	}
	return Schema{}
}

func convertSchema(ref *openapi3.SchemaRef) Schema {
	if ref == nil || ref.Value == nil {
		return Schema{}
	}
	src := ref.Value
	schema := Schema{
		Type:        firstSchemaType(src.Type),
		Format:      src.Format,
		Pattern:     src.Pattern,
		Title:       src.Title,
		Description: src.Description,
	}
	required := make(map[string]bool, len(src.Required))
	for _, name := range src.Required {
		required[name] = true
	}
	for _, value := range src.Enum {
		schema.Enum = append(schema.Enum, fmt.Sprint(value))
	}
	if schema.Type != "object" || len(src.Properties) == 0 {
		return schema
	}

	for name, prop := range src.Properties {
		if prop == nil || prop.Value == nil {
			continue
		}
		if prop.Value.ReadOnly {
			continue
		}
		child := convertSchema(&openapi3.SchemaRef{Value: leaf(prop.Value)})
		schema.Properties = append(schema.Properties, Property{
			Name:        name,
			Schema:      child,
			Required:    required[name],
			Step:        intExtension(prop.Value.Extensions, StepExtension),
			Order:       intExtension(prop.Value.Extensions, OrderExtension),
			Label:       stringExtension(prop.Value.Extensions, LabelExtension),
			Placeholder: stringExtension(prop.Value.Extensions, PlaceholderExtension),
		})
	}
	sort.SliceStable(schema.Properties, func(i, j int) bool {
		a, b := schema.Properties[i], schema.Properties[j]
		if a.Step != b.Step {
			return a.Step < b.Step
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Name < b.Name
	})
	return schema
}

// leaf drops nested properties so recursive schemas terminate; wizards only
// consume flat forms.
func leaf(src *openapi3.Schema) *openapi3.Schema {
	clone := *src
	clone.Properties = nil
	return &clone
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values, ",")
	}
}
