package zkp

import (
	"fmt"

	"github.com/asv/lox/group"
)

// Assignment supplies the concrete values a Statement's names refer to:
// Points holds every public point (bases and constraint left-hand
// sides), Secrets holds the prover's witness for each secret name.
// Verify only ever needs Points; Prove needs both.
type Assignment struct {
	Points  map[string]*group.Point
	Secrets map[string]*group.Scalar
}

// Proof is the compact Fiat-Shamir proof: one challenge scalar and one
// response scalar per secret, independent of how many constraints the
// statement has. A proof for N secrets and any number M of constraints
// serializes to (1+N) scalars plus N secret-name tags — no per-equation
// commitment points are transmitted, because the verifier recomputes
// them from the responses and challenge (§9's "compact" proof).
type Proof struct {
	Challenge *group.Scalar
	Responses map[string]*group.Scalar
}

// Prove constructs a compact proof that the prover knows secrets
// satisfying every constraint in s, without revealing them. Blindings
// come from crypto/rand (group.RandomScalar with a nil reader); a fresh
// blinding scalar is drawn per secret name, shared across every
// constraint that references it — this sharing is what lets the proof
// express equality of an attribute across two credentials: name the
// same secret "bucket" in both credentials' constraints, and the
// response for "bucket" is unique, tying the two recomputed commitments
// together under one challenge.
func Prove(s *Statement, a Assignment) (*Proof, error) {
	secretNames := s.secretNames()
	blind := make(map[string]*group.Scalar, len(secretNames))
	for _, name := range secretNames {
		if _, ok := a.Secrets[name]; !ok {
			return nil, fmt.Errorf("zkp: statement %q missing witness for secret %q", s.Label, name)
		}
		b, err := group.RandomScalar(nil)
		if err != nil {
			return nil, fmt.Errorf("zkp: drawing blinding for %q: %w", name, err)
		}
		blind[name] = b
	}

	tr := NewTranscript(s.Label)
	// Bind every public point referenced anywhere in the statement
	// before computing commitments, so the challenge also commits to
	// the statement's own shape (which points play which role).
	for _, c := range s.Constraints {
		point, ok := a.Points[c.Point]
		if !ok {
			return nil, fmt.Errorf("zkp: statement %q missing value for point %q", s.Label, c.Point)
		}
		tr.AppendPoint(c.Point, point)
		for _, term := range c.Terms {
			base, ok := a.Points[term.Base]
			if !ok {
				return nil, fmt.Errorf("zkp: statement %q missing base %q", s.Label, term.Base)
			}
			tr.AppendPoint(term.Base, base)
		}
	}

	// Commitment_j = Σ blind(secret_i) * base_i, for each constraint j.
	for _, c := range s.Constraints {
		commitment, err := weightedSum(c, blind, a.Points)
		if err != nil {
			return nil, err
		}
		tr.AppendPoint("commit:"+c.Point, commitment)
	}

	challenge := tr.Challenge()

	responses := make(map[string]*group.Scalar, len(secretNames))
	for _, name := range secretNames {
		// response = blind + challenge*secret
		responses[name] = blind[name].Add(challenge.Mul(a.Secrets[name]))
	}

	return &Proof{Challenge: challenge, Responses: responses}, nil
}

// Verify checks p against s using only public values: for each
// constraint, it recomputes the commitment as
// Σ response_i*base_i - challenge*point, rebuilds the same transcript
// the prover built, and accepts iff the recomputed challenge equals the
// one carried in the proof. Any single substituted scalar or point
// changes the recomputed challenge with overwhelming probability (§8
// testable property 4); any mismatch collapses to the single generic
// VerificationFailure the issuer returns (§4.6).
func Verify(s *Statement, p *Proof, points map[string]*group.Point) error {
	secretNames := s.secretNames()
	for _, name := range secretNames {
		if _, ok := p.Responses[name]; !ok {
			return fmt.Errorf("zkp: proof missing response for secret %q", name)
		}
	}

	tr := NewTranscript(s.Label)
	for _, c := range s.Constraints {
		point, ok := points[c.Point]
		if !ok {
			return fmt.Errorf("zkp: missing value for point %q", c.Point)
		}
		tr.AppendPoint(c.Point, point)
		for _, term := range c.Terms {
			base, ok := points[term.Base]
			if !ok {
				return fmt.Errorf("zkp: missing base %q", term.Base)
			}
			tr.AppendPoint(term.Base, base)
		}
	}

	negChallenge := p.Challenge.Neg()
	for _, c := range s.Constraints {
		point, _ := points[c.Point]
		recomputed, err := weightedSum(c, p.Responses, points)
		if err != nil {
			return err
		}
		recomputed = recomputed.Add(point.Mul(negChallenge))
		tr.AppendPoint("commit:"+c.Point, recomputed)
	}

	recomputedChallenge := tr.Challenge()
	if !recomputedChallenge.Equal(p.Challenge) {
		return fmt.Errorf("zkp: challenge mismatch")
	}
	return nil
}

// weightedSum computes Σ scalars[term.Secret] * points[term.Base] for
// every term in c, used both to build a prover's commitment (scalars =
// blindings) and a verifier's recomputed commitment (scalars =
// responses).
func weightedSum(c Constraint, scalars map[string]*group.Scalar, points map[string]*group.Point) (*group.Point, error) {
	bases := make([]*group.Point, 0, len(c.Terms))
	weights := make([]*group.Scalar, 0, len(c.Terms))
	for _, term := range c.Terms {
		s, ok := scalars[term.Secret]
		if !ok {
			return nil, fmt.Errorf("zkp: missing scalar for %q", term.Secret)
		}
		b, ok := points[term.Base]
		if !ok {
			return nil, fmt.Errorf("zkp: missing base %q", term.Base)
		}
		bases = append(bases, b)
		weights = append(weights, s)
	}
	return group.MultiMul(bases, weights)
}
