// Package codestyle_test holds repository-wide source checks: file and
// package naming, interface size, stuttering exports and import layering.
package codestyle_test

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/Sumatoshi-tech/codefix"

// maxInterfaceMethods bounds interface size outside allowedFatInterfaces.
const maxInterfaceMethods = 5

// allowedFatInterfaces are the semantic model contracts. Providers consume
// them through the oracle, and a smaller split would only be re-embedded.
var allowedFatInterfaces = map[string]bool{
	"pkg/semantic.Type":   true,
	"pkg/semantic.Member": true,
	"pkg/semantic.Symbol": true,
	"pkg/semantic.Oracle": true,
}

var bannedFilenames = map[string]string{
	"types.go":     "put each type next to the code that uses it",
	"utils.go":     "move each function to the file that owns its domain",
	"helpers.go":   "move each function to the file that owns its domain",
	"common.go":    "move each symbol to the file that owns its concept",
	"constants.go": "declare constants where they are used",
	"errors.go":    "declare sentinel errors next to the functions returning them",
}

var bannedPackages = []string{"util", "utils", "misc", "shared", "base", "generic"}

// layering maps a package prefix to the module prefixes it must not import.
var layering = map[string][]string{
	"pkg/":      {"internal/", "cmd/"},
	"internal/": {"cmd/"},
}

// treeSitterImporters are the only packages allowed to see the parser
// runtime. Everything else works on pkg/syntax trees.
var treeSitterImporters = []string{"pkg/syntax/csharp"}

type sourceFile struct {
	rel  string
	pkg  string
	file *ast.File
}

func projectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, statErr := os.Stat(filepath.Join(dir, "go.mod")); statErr == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "no go.mod above the test")

		dir = parent
	}
}

func skipDir(name string) bool {
	if name == "vendor" || name == "testdata" {
		return true
	}

	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// loadSources parses every non-test Go file in the module.
func loadSources(t *testing.T) []sourceFile {
	t.Helper()

	root := projectRoot(t)

	var files []sourceFile

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if path != root && skipDir(entry.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		parsed, parseErr := parser.ParseFile(token.NewFileSet(), path, nil, parser.SkipObjectResolution)
		if parseErr != nil {
			return fmt.Errorf("parse %s: %w", path, parseErr)
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("rel %s: %w", path, relErr)
		}

		rel = filepath.ToSlash(rel)
		files = append(files, sourceFile{rel: rel, pkg: filepath.ToSlash(filepath.Dir(rel)), file: parsed})

		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, files)

	return files
}

func typeSpecs(file *ast.File) []*ast.TypeSpec {
	var specs []*ast.TypeSpec

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}

		for _, spec := range gen.Specs {
			if typeSpec, isType := spec.(*ast.TypeSpec); isType {
				specs = append(specs, typeSpec)
			}
		}
	}

	return specs
}

func TestNoBannedFilenames(t *testing.T) {
	t.Parallel()

	for _, src := range loadSources(t) {
		if fix, banned := bannedFilenames[filepath.Base(src.rel)]; banned {
			t.Errorf("%s: grab-bag file name; %s", src.rel, fix)
		}
	}
}

func TestNoGrabBagPackages(t *testing.T) {
	t.Parallel()

	for _, src := range loadSources(t) {
		if slices.Contains(bannedPackages, src.file.Name.Name) {
			t.Errorf("%s: package %q says nothing about what it provides", src.rel, src.file.Name.Name)
		}
	}
}

func TestNoFatInterfaces(t *testing.T) {
	t.Parallel()

	for _, src := range loadSources(t) {
		for _, spec := range typeSpecs(src.file) {
			iface, ok := spec.Type.(*ast.InterfaceType)
			if !ok {
				continue
			}

			methods := 0

			for _, field := range iface.Methods.List {
				if _, isFunc := field.Type.(*ast.FuncType); isFunc {
					methods++
				}
			}

			key := src.pkg + "." + spec.Name.Name
			if methods > maxInterfaceMethods && !allowedFatInterfaces[key] {
				t.Errorf("%s: interface %s has %d methods (max %d); split it", src.rel, spec.Name.Name,
					methods, maxInterfaceMethods)
			}
		}
	}
}

// stutters reports whether exported repeats the package name followed by a
// word boundary, returning the remainder. config.Config and engine.Engines
// do not stutter; config.ConfigLoader does.
func stutters(pkgName, exported string) (string, bool) {
	titled := strings.ToUpper(pkgName[:1]) + pkgName[1:]

	rest, ok := strings.CutPrefix(exported, titled)
	if !ok || rest == "" {
		return "", false
	}

	first := rune(rest[0])

	return rest, unicode.IsUpper(first) || unicode.IsDigit(first)
}

func TestStutters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pkg, name string
		want      bool
	}{
		{pkg: "config", name: "Config"},
		{pkg: "engine", name: "Engines"},
		{pkg: "config", name: "ConfigLoader", want: true},
		{pkg: "lsp", name: "LspServer", want: true},
		{pkg: "analyze", name: "Analyzer"},
		{pkg: "rewrite", name: "Rewrite2", want: true},
	}

	for _, tt := range tests {
		_, got := stutters(tt.pkg, tt.name)
		assert.Equal(t, tt.want, got, "%s.%s", tt.pkg, tt.name)
	}
}

func TestNoStutteringExports(t *testing.T) {
	t.Parallel()

	for _, src := range loadSources(t) {
		for _, spec := range typeSpecs(src.file) {
			if !ast.IsExported(spec.Name.Name) {
				continue
			}

			if rest, bad := stutters(src.file.Name.Name, spec.Name.Name); bad {
				t.Errorf("%s: %s.%s stutters; name it %s", src.rel, src.file.Name.Name, spec.Name.Name, rest)
			}
		}
	}
}

func TestImportLayering(t *testing.T) {
	t.Parallel()

	for _, src := range loadSources(t) {
		for _, spec := range src.file.Imports {
			path, err := strconv.Unquote(spec.Path.Value)
			require.NoError(t, err)

			local, inModule := strings.CutPrefix(path, modulePath+"/")
			if !inModule {
				continue
			}

			for layer, forbidden := range layering {
				if !strings.HasPrefix(src.rel, layer) {
					continue
				}

				for _, prefix := range forbidden {
					if strings.HasPrefix(local, prefix) {
						t.Errorf("%s: %s must not import %s", src.rel, layer, path)
					}
				}
			}
		}
	}
}

func TestTreeSitterIsContained(t *testing.T) {
	t.Parallel()

	for _, src := range loadSources(t) {
		if slices.Contains(treeSitterImporters, src.pkg) {
			continue
		}

		for _, spec := range src.file.Imports {
			if strings.Contains(spec.Path.Value, "tree-sitter") || strings.Contains(spec.Path.Value, "go-sitter-forest") {
				t.Errorf("%s: imports %s; parse through pkg/syntax/csharp", src.rel, spec.Path.Value)
			}
		}
	}
}
