package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// AutoGeneratedTag marks generated files.
const AutoGeneratedTag = "<auto-generated>"

// WriteStatus tells whether WriteIfChanged touched the file.
type WriteStatus int

// Write statuses.
const (
	StatusUnchanged WriteStatus = iota
	StatusSaved
)

func (status WriteStatus) String() string {
	if status == StatusSaved {
		return "saved"
	}

	return "unchanged"
}

// WriteOptions shape the written text.
type WriteOptions struct {
	// Banner is written as a line comment at the top unless already there.
	Banner string
	// AutoGenerated adds the <auto-generated> comment after the banner.
	AutoGenerated bool
	// NormalizeWhitespace formats the whole tree before writing.
	NormalizeWhitespace bool
}

// Render produces the text WriteIfChanged would write.
func Render(tree *syntax.Tree, opts WriteOptions) string {
	if opts.NormalizeWhitespace {
		tree = syntax.FormatAll(tree)
	}

	root := tree.Root()
	leading := root.LeadingTrivia()

	var header strings.Builder

	for _, line := range headerLines(opts) {
		if !strings.Contains(string(leading), line) {
			header.WriteString(line)
			header.WriteString("\n\n")
		}
	}

	if header.Len() == 0 {
		return root.FullText()
	}

	return root.WithLeadingTrivia(syntax.Trivia(header.String()) + leading).FullText()
}

func headerLines(opts WriteOptions) []string {
	var lines []string

	if opts.Banner != "" {
		lines = append(lines, "// "+opts.Banner)
	}

	if opts.AutoGenerated {
		lines = append(lines, "// "+AutoGeneratedTag)
	}

	return lines
}

// WriteIfChanged renders tree and writes it to path when the text differs
// from the file content. The file must already exist.
func WriteIfChanged(path string, tree *syntax.Tree, opts WriteOptions) (WriteStatus, error) {
	info, err := os.Stat(path)
	if err != nil {
		return StatusUnchanged, fmt.Errorf("stat %s: %w", path, err)
	}

	current, err := os.ReadFile(path)
	if err != nil {
		return StatusUnchanged, fmt.Errorf("read %s: %w", path, err)
	}

	text := []byte(Render(tree, opts))
	if bytes.Equal(current, text) {
		return StatusUnchanged, nil
	}

	if err = os.WriteFile(path, text, info.Mode().Perm()); err != nil {
		return StatusUnchanged, fmt.Errorf("write %s: %w", path, err)
	}

	return StatusSaved, nil
}
