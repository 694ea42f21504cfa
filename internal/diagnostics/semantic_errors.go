package diagnostics

import (
	"fmt"
	"strings"

	"github.com/salaheldinsoliman/solang/internal/pt"
)

// NotFound reports an unknown name, suggesting close matches from candidates.
func NotFound(name string, loc pt.Loc, candidates []string) Diagnostic {
	b := NewError(ErrorUndefinedVariable, loc, fmt.Sprintf("'%s' not found", name))

	similar := findSimilarNames(name, candidates)
	switch len(similar) {
	case 0:
	case 1:
		b.WithHelp(fmt.Sprintf("did you mean '%s'?", similar[0]))
	default:
		b.WithHelp(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '")))
	}

	return b.Build()
}

func DuplicateDeclaration(name string, loc pt.Loc, previous pt.Loc) Diagnostic {
	return NewError(ErrorDuplicateDeclaration, loc, fmt.Sprintf("'%s' is already declared", name)).
		WithNote(previous, fmt.Sprintf("previous declaration of '%s'", name)).
		Build()
}

func ShadowingWarning(name string, loc pt.Loc, previous pt.Loc) Diagnostic {
	return NewWarning(ErrorDuplicateDeclaration, loc, fmt.Sprintf("declaration of '%s' shadows state variable", name)).
		WithNote(previous, fmt.Sprintf("previous declaration of '%s'", name)).
		Build()
}

func UnreachableStatement(loc pt.Loc) Diagnostic {
	return WarningAt(WarningUnreachableCode, loc, "unreachable statement")
}

func NumericOverflow(loc pt.Loc, message string) Diagnostic {
	return ErrorAt(ErrorNumericOverflow, loc, message)
}

// findSimilarNames finds names within edit distance 2 of target
func findSimilarNames(target string, candidates []string) []string {
	var similar []string
	for _, candidate := range candidates {
		if candidate == target {
			continue
		}
		if levenshteinDistance(target, candidate) <= 2 {
			similar = append(similar, candidate)
		}
	}
	return similar
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
