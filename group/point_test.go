package group

import "testing"

func TestPointJSONRoundTrip(t *testing.T) {
	s, err := RandomScalar(nil)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	pt := A.Mul(s)

	b, err := pt.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var decoded Point
	if err := decoded.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !pt.Equal(&decoded) {
		t.Fatalf("round trip changed the point")
	}
}

func TestPointDecompressRejectsIdentity(t *testing.T) {
	id := IdentityPoint()
	if _, err := Decompress(id.Compress()); err == nil {
		t.Fatalf("Decompress accepted the identity point")
	}
}

func TestScalarJSONRoundTrip(t *testing.T) {
	s, err := RandomScalar(nil)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	b, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var decoded Scalar
	if err := decoded.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !s.Equal(&decoded) {
		t.Fatalf("round trip changed the scalar")
	}
}

func TestScalarFromBytesRejectsNonCanonical(t *testing.T) {
	over := Order.Bytes()
	padded := make([]byte, ScalarSize)
	copy(padded[ScalarSize-len(over):], over)
	if _, err := ScalarFromBytes(padded); err == nil {
		t.Fatalf("ScalarFromBytes accepted a value >= Order")
	}
}
