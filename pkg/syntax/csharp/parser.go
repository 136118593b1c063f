// Package csharp builds syntax trees for C# sources on top of the
// tree-sitter C# grammar. Every byte of the input is preserved: text that
// belongs to no grammar token becomes trivia on the neighboring tokens.
package csharp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/c_sharp"

	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// Sentinel errors for parsing.
var (
	errPoolType      = errors.New("unexpected parser pool type")
	errNoRootNode    = errors.New("parser returned no root node")
	errLanguageNotOK = errors.New("c# grammar is not available")
)

// Parser converts C# source text into syntax trees. It is safe for
// concurrent use.
type Parser struct {
	pool sync.Pool
}

//nolint:gochecknoglobals // The grammar is loaded once per process.
var (
	languageOnce sync.Once
	language     *sitter.Language
)

func loadLanguage() *sitter.Language {
	languageOnce.Do(func() {
		defer func() {
			_ = recover() //nolint:errcheck // recover() returns any, not error
		}()

		language = sitter.NewLanguage(c_sharp.GetLanguage())
	})

	return language
}

// NewParser creates a parser backed by a pool of tree-sitter parsers.
func NewParser() (*Parser, error) {
	lang := loadLanguage()
	if lang == nil {
		return nil, errLanguageNotOK
	}

	parser := &Parser{}
	parser.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return parser, nil
}

// Parse builds a syntax tree for source. Syntax errors do not fail the
// parse: they surface as Error nodes and missing tokens in the tree.
func (parser *Parser) Parse(ctx context.Context, source []byte) (*syntax.Tree, error) {
	tsParser, ok := parser.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer parser.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("csharp parser: failed to parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	return syntax.NewTree(convert(root, source)), nil
}
