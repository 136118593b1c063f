package binder

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

// ErrInvalidCatalog is returned when a catalog document fails schema
// validation.
var ErrInvalidCatalog = errors.New("invalid type catalog")

// Catalog describes library types and extension methods known to the binder.
type Catalog struct {
	Types      []TypeDefinition      `yaml:"types"`
	Extensions []ExtensionDefinition `yaml:"extensions"`
}

// TypeDefinition describes one library type.
type TypeDefinition struct {
	Name           string             `yaml:"name"`
	Namespace      string             `yaml:"namespace"`
	Aliases        []string           `yaml:"aliases"`
	Kind           string             `yaml:"kind"`
	TypeParameters []string           `yaml:"type_parameters"`
	Element        string             `yaml:"element"`
	Implements     []string           `yaml:"implements"`
	Integral       bool               `yaml:"integral"`
	ArrayLike      bool               `yaml:"array_like"`
	Members        []MemberDefinition `yaml:"members"`
}

// MemberDefinition describes a member of a library type. Type expressions may
// refer to the type parameters of the declaring type.
type MemberDefinition struct {
	Name          string   `yaml:"name"`
	Kind          string   `yaml:"kind"`
	Type          string   `yaml:"type"`
	Parameters    []string `yaml:"parameters"`
	Accessibility string   `yaml:"accessibility"`
	Writable      bool     `yaml:"writable"`
	WriteOnly     bool     `yaml:"write_only"`
}

// ExtensionDefinition describes an extension method on IEnumerable. Returns
// is a type expression, or "element" for the receiver's element type.
type ExtensionDefinition struct {
	Name       string   `yaml:"name"`
	Container  string   `yaml:"container"`
	Returns    string   `yaml:"returns"`
	Parameters []string `yaml:"parameters"`
}

// returnsElement marks extensions returning the receiver's element type.
const returnsElement = "element"

//nolint:gochecknoglobals // Parsed once per process.
var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	errDefault     error
)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, errDefault = ParseCatalog(defaultCatalogYAML)
	})

	return defaultCatalog, errDefault
}

// ParseCatalog validates a YAML catalog document against the catalog schema
// and decodes it.
func ParseCatalog(data []byte) (*Catalog, error) {
	var document any

	err := yaml.Unmarshal(data, &document)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if document == nil {
		return &Catalog{}, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(catalogSchemaJSON),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			messages = append(messages, resultErr.Field()+": "+resultErr.Description())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(messages, "; "))
	}

	var catalog Catalog

	err = yaml.Unmarshal(data, &catalog)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return &catalog, nil
}

// LoadCatalog reads a catalog file and merges it over the embedded default.
// An empty path returns the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	base, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}

	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	extra, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	return base.Merge(extra), nil
}

// Merge returns a catalog holding the receiver's entries overridden by the
// entries of other. Types are matched by name and arity, extensions by name.
func (catalog *Catalog) Merge(other *Catalog) *Catalog {
	merged := &Catalog{}

	overridden := make(map[string]bool)
	for _, def := range other.Types {
		overridden[typeKey(def.Name, len(def.TypeParameters))] = true
	}

	for _, def := range catalog.Types {
		if !overridden[typeKey(def.Name, len(def.TypeParameters))] {
			merged.Types = append(merged.Types, def)
		}
	}

	merged.Types = append(merged.Types, other.Types...)

	replaced := make(map[string]bool)
	for _, ext := range other.Extensions {
		replaced[ext.Name] = true
	}

	for _, ext := range catalog.Extensions {
		if !replaced[ext.Name] {
			merged.Extensions = append(merged.Extensions, ext)
		}
	}

	merged.Extensions = append(merged.Extensions, other.Extensions...)

	return merged
}

func typeKey(name string, arity int) string {
	if arity == 0 {
		return name
	}

	return fmt.Sprintf("%s`%d", name, arity)
}

func parseTypeKind(kind string) semantic.TypeKind {
	switch kind {
	case "primitive":
		return semantic.TypeKindPrimitive
	case "textual":
		return semantic.TypeKindTextual
	case "struct":
		return semantic.TypeKindStruct
	case "interface":
		return semantic.TypeKindInterface
	default:
		return semantic.TypeKindClass
	}
}

func parseMemberKind(kind string) semantic.MemberKind {
	switch kind {
	case "indexer":
		return semantic.MemberIndexer
	case "method":
		return semantic.MemberMethod
	case "field":
		return semantic.MemberField
	default:
		return semantic.MemberProperty
	}
}

func parseAccessibility(accessibility string) semantic.Accessibility {
	switch accessibility {
	case "private":
		return semantic.AccessPrivate
	case "protected":
		return semantic.AccessProtected
	case "internal":
		return semantic.AccessInternal
	default:
		return semantic.AccessPublic
	}
}
