// Package main generates JSON schemas for the codefix config file and the
// MCP tool payloads.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/codefix/internal/config"
	"github.com/Sumatoshi-tech/codefix/internal/mcp"
)

const draft07 = "http://json-schema.org/draft-07/schema#"

// Schema represents a JSON Schema.
type Schema struct {
	Schema               string             `json:"$schema,omitempty"`
	Title                string             `json:"title,omitempty"`
	Description          string             `json:"description,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Pattern              string             `json:"pattern,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	Definitions          map[string]*Schema `json:"definitions,omitempty"`
}

// target is one generated file.
type target struct {
	file  string
	title string
	// tag is the struct tag naming fields: mapstructure for viper input,
	// json for tool output.
	tag string
	// strict forbids unknown properties and marks nothing required.
	strict bool
	value  any
}

// durationPattern accepts what time.ParseDuration accepts, as viper does.
const durationPattern = `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`

func targets() []target {
	return []target{
		{file: "config.json", title: "codefix configuration", tag: "mapstructure", strict: true, value: &config.Config{}},
		{file: "list_actions.json", title: mcp.ToolNameListActions + " result", tag: "json", value: &mcp.ListActionsResult{}},
		{file: "apply_action.json", title: mcp.ToolNameApplyAction + " result", tag: "json", value: &mcp.ApplyActionResult{}},
	}
}

func main() {
	outputDir := flag.String("o", "docs/schemas", "Output directory for schemas")
	flag.Parse()

	if err := run(*outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil { //nolint:gosec // docs directory.
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, tgt := range targets() {
		if err := writeSchema(filepath.Join(outputDir, tgt.file), generate(tgt)); err != nil {
			return fmt.Errorf("write %s: %w", tgt.file, err)
		}

		fmt.Printf("Generated %s\n", tgt.file)
	}

	return nil
}

func generate(tgt target) *Schema {
	gen := generator{tag: tgt.tag, strict: tgt.strict, defs: map[string]*Schema{}}

	typ := reflect.TypeOf(tgt.value)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	root := gen.object(typ)
	root.Schema = draft07
	root.Title = tgt.title

	if len(gen.defs) > 0 {
		root.Definitions = gen.defs
	}

	return root
}

type generator struct {
	tag    string
	strict bool
	defs   map[string]*Schema
}

func (gen generator) object(typ reflect.Type) *Schema {
	obj := &Schema{Type: "object", Properties: map[string]*Schema{}}

	if gen.strict {
		closed := false
		obj.AdditionalProperties = &closed
	}

	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := gen.fieldName(field)
		if skip {
			continue
		}

		obj.Properties[name] = gen.schemaFor(field.Type)

		if !gen.strict && !omitEmpty {
			obj.Required = append(obj.Required, name)
		}
	}

	sort.Strings(obj.Required)

	return obj
}

// fieldName follows the tag, falling back to the Go field name as the
// json and mapstructure decoders both do.
func (gen generator) fieldName(field reflect.StructField) (string, bool, bool) {
	tag := field.Tag.Get(gen.tag)
	if tag == "-" {
		return "", false, true
	}

	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}

	return name, strings.Contains(opts, "omitempty"), false
}

func (gen generator) schemaFor(typ reflect.Type) *Schema {
	if typ == reflect.TypeOf(time.Duration(0)) {
		if gen.tag == "mapstructure" {
			return &Schema{Type: "string", Pattern: durationPattern, Description: "Go duration such as 5s"}
		}

		return &Schema{Type: "integer", Description: "Duration in nanoseconds"}
	}

	switch typ.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: gen.schemaFor(typ.Elem())}
	case reflect.Map:
		return &Schema{Type: "object", Description: "Map with " + typ.Key().Kind().String() + " keys"}
	case reflect.Ptr:
		return gen.schemaFor(typ.Elem())
	case reflect.Struct:
		return gen.named(typ)
	default:
		return &Schema{}
	}
}

// named inlines config sections and shares output structs by reference.
func (gen generator) named(typ reflect.Type) *Schema {
	if gen.strict || typ.Name() == "" {
		return gen.object(typ)
	}

	if _, ok := gen.defs[typ.Name()]; !ok {
		gen.defs[typ.Name()] = &Schema{}
		gen.defs[typ.Name()] = gen.object(typ)
	}

	return &Schema{Ref: "#/definitions/" + typ.Name()}
}

func writeSchema(path string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0o644) //nolint:gosec // generated docs are world-readable.
}
