// Package refactorings holds the concrete refactoring and code fix
// providers.
package refactorings

import (
	"github.com/Sumatoshi-tech/codefix/pkg/engine"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// Provider ids.
const (
	ChangeExplicitTypeToVar                   = "ChangeExplicitTypeToVar"
	ChangeVarToExplicitType                   = "ChangeVarToExplicitType"
	ChangeTypeAccordingToExpression           = "ChangeTypeAccordingToExpression"
	RenameIdentifierAccordingToTypeName       = "RenameIdentifierAccordingToTypeName"
	ReplaceForEachWithFor                     = "ReplaceForEachWithFor"
	InvertIfElse                              = "InvertIfElse"
	UseElementAccessInsteadOfEnumerableMethod = "UseElementAccessInsteadOfEnumerableMethod"
	RemoveNewModifier                         = "RemoveNewModifier"
)

// DiagnosticMemberDoesNotHide is reported for a new modifier on a member that
// hides nothing.
const DiagnosticMemberDoesNotHide = "CS0109"

// All returns every provider in declaration order.
func All() []engine.Provider {
	return []engine.Provider{
		changeExplicitTypeToVar{},
		changeVarToExplicitType{},
		changeTypeAccordingToExpression{},
		renameIdentifierAccordingToTypeName{},
		replaceForEachWithFor{},
		invertIfElse{},
		useElementAccessInsteadOfEnumerableMethod{},
		removeNewModifier{},
	}
}

// NewRegistry returns a registry holding All.
func NewRegistry() (*engine.Registry, error) {
	return engine.NewRegistry(All()...)
}

func within(pc *engine.Context, node *syntax.Node) bool {
	return node != nil && pc.Tree().Span(node).Contains(pc.Span())
}
