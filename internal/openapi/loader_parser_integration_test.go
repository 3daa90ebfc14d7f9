package openapi_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-stepform/internal/openapi/loader"
	"github.com/goliatone/go-stepform/internal/openapi/parser"
)

const spouseDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "Spouse", "version": "1.0.0"},
  "paths": {
    "/api/spouse/{id}/": {
      "patch": {
        "operationId": "updateSpouse",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "requestBody": {
          "content": {
            "application/x-www-form-urlencoded": {
              "schema": {
                "type": "object",
                "required": ["first_name", "dob"],
                "properties": {
                  "first_name": {"type": "string", "x-order": 1},
                  "dob": {"type": "string", "format": "date", "x-step": 1}
                }
              }
            }
          }
        },
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`

func TestLoaderFeedsParser(t *testing.T) {
	l := loader.New(loader.Options{FileSystem: fstest.MapFS{
		"spouse.json": {Data: []byte(spouseDocument)},
	}})
	raw, err := l.Load(context.Background(), "spouse.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	op, err := parser.New(parser.Options{ResolveReferences: true}).Operation(context.Background(), raw, "updateSpouse")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if op.Method != "PATCH" || len(op.Request.Properties) != 2 {
		t.Fatalf("unexpected operation %+v", op)
	}
	if got := op.Request.Properties[1]; got.Name != "dob" || got.Schema.Format != "date" {
		t.Fatalf("unexpected dob property %+v", got)
	}
}
