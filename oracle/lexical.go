// Package oracle provides similarity oracles that score how alike two short
// texts are on a [0,1] scale.
//
// Every oracle shares the same contract: identical normalized texts score 1.0,
// texts without a common significant (non-stopword) word score 0.0, and scores
// are deterministic for a fixed pair of inputs.
package oracle

import "context"

// Lexical scores texts by the Jaccard index of their significant word sets.
// It needs no external service.
type Lexical struct{}

// NewLexical returns the token-overlap oracle.
func NewLexical() *Lexical {
	return &Lexical{}
}

// Score implements the similarity oracle contract.
func (l *Lexical) Score(_ context.Context, a, b string) (float64, error) {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1.0, nil
	}
	ta, tb := Tokens(na), Tokens(nb)
	if !sharesToken(ta, tb) {
		return 0.0, nil
	}

	set := make(map[string]struct{}, len(ta))
	for _, w := range ta {
		set[w] = struct{}{}
	}
	shared := 0
	for _, w := range tb {
		if _, ok := set[w]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union), nil
}
