// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// resultsSchemaJSON is the subset of the provider response we rely on.
// Fields outside it pass through unchecked.
const resultsSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["results"],
  "properties": {
    "results": {
      "type": "object",
      "anyOf": [
        {"required": ["error"]},
        {"required": ["results_available"]}
      ],
      "properties": {
        "api_version": {"type": "string"},
        "results_available": {"type": "integer", "minimum": 0},
        "results_returned": {
          "type": ["string", "integer"],
          "pattern": "^[0-9]+$",
          "minimum": 0
        },
        "results_start": {"type": "integer", "minimum": 1},
        "shop": {"type": "array", "items": {"$ref": "#/definitions/shop"}},
        "error": {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "object",
            "required": ["code"],
            "properties": {
              "code": {"type": "integer"},
              "message": {"type": "string"}
            }
          }
        }
      }
    }
  },
  "definitions": {
    "shop": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string"},
        "lat": {"type": "number", "minimum": -90, "maximum": 90},
        "lng": {"type": "number", "minimum": -180, "maximum": 180},
        "genre": {"type": "object"},
        "budget": {"type": "object"},
        "photo": {"type": "object"},
        "urls": {"type": "object"}
      }
    }
  }
}`

var resultsSchema = mustCompileSchema(resultsSchemaJSON)

func mustCompileSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("compiling provider schema: %v", err))
	}
	return schema
}

// maxSchemaErrors limits how many violations are quoted in an error.
const maxSchemaErrors = 3

// validateBody checks a raw provider response against resultsSchema.
func validateBody(body []byte) error {
	res, err := resultsSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if res.Valid() {
		return nil
	}
	var msgs []string
	for i, e := range res.Errors() {
		if i == maxSchemaErrors {
			msgs = append(msgs, fmt.Sprintf("and %d more", len(res.Errors())-maxSchemaErrors))
			break
		}
		msgs = append(msgs, e.String())
	}
	return errors.New("response failed schema validation: " + strings.Join(msgs, "; "))
}
