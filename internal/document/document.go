// Package document loads C# source files into syntax trees and writes
// rewritten trees back.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax/csharp"
)

// LanguageCSharp is the enry name of the only supported language.
const LanguageCSharp = "C#"

// binarySniffLength is how far Detect looks for a NUL byte, as git does.
const binarySniffLength = 8000

// Sentinel errors for loading.
var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrTooLarge            = errors.New("document too large")
	ErrBinary              = errors.New("binary content")
)

// Document is a parsed source file.
type Document struct {
	Path string
	Text []byte
	Tree *syntax.Tree
}

// Detect rejects binary content and content that enry does not classify
// as C#.
func Detect(path string, content []byte) error {
	if isBinary(content) {
		return fmt.Errorf("%w: %s", ErrBinary, path)
	}

	lang := enry.GetLanguage(filepath.Base(path), content)
	if lang != LanguageCSharp {
		if lang == "" {
			lang = "unknown"
		}

		return fmt.Errorf("%w: %s is %s", ErrUnsupportedLanguage, path, lang)
	}

	return nil
}

// Loader reads and parses documents.
type Loader struct {
	parser  *csharp.Parser
	maxSize uint64
}

// NewLoader creates a loader. A zero maxSize disables the size check.
func NewLoader(parser *csharp.Parser, maxSize uint64) *Loader {
	return &Loader{parser: parser, maxSize: maxSize}
}

// Load reads path and parses it.
func (loader *Loader) Load(ctx context.Context, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if err = loader.checkSize(path, uint64(info.Size())); err != nil { //nolint:gosec // file sizes are non-negative.
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return loader.FromText(ctx, path, content)
}

// FromText parses in-memory content attributed to path.
func (loader *Loader) FromText(ctx context.Context, path string, content []byte) (*Document, error) {
	if err := loader.checkSize(path, uint64(len(content))); err != nil {
		return nil, err
	}

	if err := Detect(path, content); err != nil {
		return nil, err
	}

	tree, err := loader.parser.Parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &Document{Path: path, Text: content, Tree: tree}, nil
}

func (loader *Loader) checkSize(path string, size uint64) error {
	if loader.maxSize > 0 && size > loader.maxSize {
		return fmt.Errorf("%w: %s is %s, limit %s", ErrTooLarge, path,
			humanize.Bytes(size), humanize.Bytes(loader.maxSize))
	}

	return nil
}

func isBinary(content []byte) bool {
	sniff := content
	if len(sniff) > binarySniffLength {
		sniff = sniff[:binarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}
