package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	queryRequestSchema  = "query_request.schema.json"
	targetRequestSchema = "target_request.schema.json"
	maxBodyBytes        = 64 << 10
)

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

var errEmptyBody = errors.New("request body is empty")

type queryRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
	Wait   bool   `json:"wait"`
}

type targetRequest struct {
	Target string `json:"target"`
}

var (
	compileOnce     sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	compileErr      error
)

func loadSchema(name string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		schemas := make(map[string]*jsonschema.Schema, 2)
		for _, schemaName := range []string{queryRequestSchema, targetRequestSchema} {
			raw, err := schemaFiles.ReadFile("schemas/" + schemaName)
			if err != nil {
				compileErr = fmt.Errorf("read schema %s: %w", schemaName, err)
				return
			}
			if err := compiler.AddResource(schemaName, bytes.NewReader(raw)); err != nil {
				compileErr = fmt.Errorf("add schema resource %s: %w", schemaName, err)
				return
			}
			schema, err := compiler.Compile(schemaName)
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", schemaName, err)
				return
			}
			schemas[schemaName] = schema
		}
		compiledSchemas = schemas
	})

	if compileErr != nil {
		return nil, compileErr
	}
	schema, ok := compiledSchemas[name]
	if !ok {
		return nil, fmt.Errorf("schema %s not initialized", name)
	}
	return schema, nil
}

// decodeValidated reads a JSON body, validates it against the named schema
// and decodes it into out. A non-nil field map reports client errors; the
// returned error is reserved for server faults.
func decodeValidated(body io.Reader, schemaName string, out any) (map[string]string, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes+1))
	if err != nil {
		return map[string]string{"body": "could not be read"}, nil
	}
	if len(raw) > maxBodyBytes {
		return map[string]string{"body": "is too large"}, nil
	}

	value, err := decodeStrictJSON(raw)
	if err != nil {
		return map[string]string{"body": err.Error()}, nil
	}

	schema, err := loadSchema(schemaName)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(value); err != nil {
		return schemaFieldErrors(err), nil
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize request JSON: %w", err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return map[string]string{"body": err.Error()}, nil
	}
	return nil, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errEmptyBody
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("request body contains trailing content")
	}
	return value, nil
}

// schemaFieldErrors flattens a validation error tree into one message per
// instance location. Errors on the document root are reported as "body".
func schemaFieldErrors(err error) map[string]string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return map[string]string{"body": err.Error()}
	}

	fields := make(map[string]string)
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.Trim(e.InstanceLocation, "/")
			if field == "" {
				field = "body"
			}
			if _, exists := fields[field]; !exists {
				fields[field] = e.Message
			}
			return
		}
		causes := append([]*jsonschema.ValidationError(nil), e.Causes...)
		sort.SliceStable(causes, func(i, j int) bool {
			return causes[i].InstanceLocation < causes[j].InstanceLocation
		})
		for _, cause := range causes {
			walk(cause)
		}
	}
	walk(validationErr)
	if len(fields) == 0 {
		fields["body"] = validationErr.Message
	}
	return fields
}
