package group

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
)

// Order is the scalar-field order of the BLS12-381 G1 subgroup:
// 0x73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001
var Order, _ = new(big.Int).SetString(
	"52435875175126190479447740508185965837690552500527637822603658699938581184513", 10)

// ScalarSize is the canonical byte length of a serialized scalar.
const ScalarSize = 32

// Scalar is a field element modulo Order. The zero value is not a valid
// scalar; use Zero() or NewScalar.
type Scalar struct {
	v *big.Int
}

// NewScalar wraps a big.Int, reducing it modulo Order.
func NewScalar(v *big.Int) *Scalar {
	return &Scalar{v: new(big.Int).Mod(v, Order)}
}

// Zero returns the additive identity.
func Zero() *Scalar { return &Scalar{v: big.NewInt(0)} }

// One returns the multiplicative identity.
func One() *Scalar { return &Scalar{v: big.NewInt(1)} }

// RandomScalar draws a scalar from rng by reducing a value 64 bits
// longer than Order modulo Order, which keeps the bias negligible. A nil rng
// defaults to crypto/rand, never to a non-cryptographic source: per
// SPEC_FULL.md's randomness requirement, callers that can't supply a
// strong source must fail closed rather than silently weaken
// unlinkability.
func RandomScalar(rng io.Reader) (*Scalar, error) {
	if rng == nil {
		rng = rand.Reader
	}
	byteLen := (Order.BitLen() + 64 + 7) / 8
	buf := make([]byte, byteLen)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, fmt.Errorf("group: reading randomness: %w", err)
	}
	result := new(big.Int).SetBytes(buf)
	result.Mod(result, Order)
	return &Scalar{v: result}, nil
}

// RandomNonZeroScalar draws a uniform non-zero scalar, redrawing on the
// (astronomically unlikely) zero outcome.
func RandomNonZeroScalar(rng io.Reader) (*Scalar, error) {
	for {
		s, err := RandomScalar(rng)
		if err != nil {
			return nil, err
		}
		if !s.IsZero() {
			return s, nil
		}
	}
}

// ScalarFromBytes decodes a big-endian scalar, rejecting non-canonical
// encodings (values at or above Order).
func ScalarFromBytes(b []byte) (*Scalar, error) {
	if len(b) != ScalarSize {
		return nil, fmt.Errorf("group: scalar must be %d bytes, got %d", ScalarSize, len(b))
	}
	v := new(big.Int).SetBytes(b)
	if v.Cmp(Order) >= 0 {
		return nil, fmt.Errorf("group: non-canonical scalar encoding")
	}
	return &Scalar{v: v}, nil
}

// Bytes returns the canonical big-endian, zero-padded encoding.
func (s *Scalar) Bytes() []byte {
	out := make([]byte, ScalarSize)
	b := s.v.Bytes()
	copy(out[ScalarSize-len(b):], b)
	return out
}

// MarshalJSON encodes s as a base64 string of its canonical encoding,
// mirroring Point's MarshalJSON.
func (s *Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(s.Bytes()))
}

// UnmarshalJSON is MarshalJSON's inverse.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		return fmt.Errorf("group: invalid scalar JSON: %w", err)
	}
	decoded, err := ScalarFromBytes(raw)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

// BigInt exposes the underlying value. Callers must not mutate the
// returned pointer.
func (s *Scalar) BigInt() *big.Int { return s.v }

func (s *Scalar) clone() *Scalar { return &Scalar{v: new(big.Int).Set(s.v)} }

// Add returns s + o mod Order.
func (s *Scalar) Add(o *Scalar) *Scalar {
	r := new(big.Int).Add(s.v, o.v)
	return &Scalar{v: r.Mod(r, Order)}
}

// Sub returns s - o mod Order.
func (s *Scalar) Sub(o *Scalar) *Scalar {
	r := new(big.Int).Sub(s.v, o.v)
	return &Scalar{v: r.Mod(r, Order)}
}

// Mul returns s * o mod Order.
func (s *Scalar) Mul(o *Scalar) *Scalar {
	r := new(big.Int).Mul(s.v, o.v)
	return &Scalar{v: r.Mod(r, Order)}
}

// Neg returns -s mod Order.
func (s *Scalar) Neg() *Scalar {
	r := new(big.Int).Neg(s.v)
	return &Scalar{v: r.Mod(r, Order)}
}

// Inverse returns the multiplicative inverse of s mod Order. s must be
// non-zero.
func (s *Scalar) Inverse() (*Scalar, error) {
	if s.IsZero() {
		return nil, fmt.Errorf("group: cannot invert zero scalar")
	}
	inv := new(big.Int).ModInverse(s.v, Order)
	if inv == nil {
		return nil, fmt.Errorf("group: modular inverse does not exist")
	}
	return &Scalar{v: inv}, nil
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool { return s.v.Sign() == 0 }

// Equal reports whether s and o represent the same field element.
func (s *Scalar) Equal(o *Scalar) bool { return s.v.Cmp(o.v) == 0 }

// FromUint64 builds a scalar from a small non-negative integer, used for
// packing bucket ids, dates, and counters into attributes.
func FromUint64(v uint64) *Scalar {
	return &Scalar{v: new(big.Int).SetUint64(v)}
}

// Int64 returns the scalar's value truncated to int64, valid only for
// scalars known (by protocol invariant) to fit in that range, such as
// packed dates and small counters.
func (s *Scalar) Int64() int64 { return s.v.Int64() }

// HashToScalar reduces an arbitrary-length digest into a scalar, used by
// Fiat-Shamir challenges and the migration-table key schedule.
func HashToScalar(digest []byte) *Scalar {
	v := new(big.Int).SetBytes(digest)
	return &Scalar{v: v.Mod(v, Order)}
}
