package zkp

import "fmt"

// Term is one summand secret*base of a linear constraint's right-hand
// side. Base names a public point (a fixed generator like "A"/"B", an
// issuer public-key component like "X1", or a per-request published
// point like "Ci") that both prover and verifier can look up in the
// Assignment passed to Prove/Verify.
type Term struct {
	Secret string
	Base   string
}

// Constraint asserts that the public point named Point equals the sum
// of Terms, each a secret scalar times a public base point:
//
//	Point = Σ Terms[i].Secret * Terms[i].Base
//
// This is the only shape of equation the DSL can express — it is
// exactly what every MAC, showing, and issuance relation in §4.1
// reduces to.
type Constraint struct {
	Point string
	Terms []Term
}

// Eq constructs a Constraint. Example, the blind-show verification
// point from §4.1 step 4 ("V = Σ zi·X[i] + negzQ·A"):
//
//	Eq("V", Term{"z1", "X1"}, Term{"z2", "X2"}, Term{"negzQ", "A"})
func Eq(point string, terms ...Term) Constraint {
	return Constraint{Point: point, Terms: terms}
}

// T is shorthand for constructing a Term.
func T(secret, base string) Term { return Term{Secret: secret, Base: base} }

// Statement is a reusable compiled description of a proof: a transcript
// label plus the list of linear constraints the secrets must satisfy.
// Prover and verifier each build the same Statement (same label, same
// constraints) with NewStatement on every request; Prove and Verify
// agree only when the two match.
type Statement struct {
	Label       string
	Constraints []Constraint
}

// NewStatement compiles constraints under label, validating that every
// constraint has at least one term and that no secret name is empty.
func NewStatement(label string, constraints ...Constraint) (*Statement, error) {
	if len(constraints) == 0 {
		return nil, fmt.Errorf("zkp: statement %q has no constraints", label)
	}
	for _, c := range constraints {
		if c.Point == "" {
			return nil, fmt.Errorf("zkp: statement %q has a constraint with no point name", label)
		}
		if len(c.Terms) == 0 {
			return nil, fmt.Errorf("zkp: statement %q constraint on %q has no terms", label, c.Point)
		}
		for _, term := range c.Terms {
			if term.Secret == "" || term.Base == "" {
				return nil, fmt.Errorf("zkp: statement %q constraint on %q has an unnamed term", label, c.Point)
			}
		}
	}
	// secretNames is derived lazily by Prove/Verify rather than stored,
	// since two constraints may legitimately share a secret (that is
	// exactly how the DSL expresses cross-credential linking, e.g. the
	// same "bucket" secret appearing in both the old and new
	// credential's constraints).
	return &Statement{Label: label, Constraints: constraints}, nil
}

// secretNames returns the deduplicated, order-stable list of secret
// variable names referenced anywhere in the statement.
func (s *Statement) secretNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range s.Constraints {
		for _, term := range c.Terms {
			if !seen[term.Secret] {
				seen[term.Secret] = true
				names = append(names, term.Secret)
			}
		}
	}
	return names
}
