package issuer

import (
	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
)

func groupFromUint32(v uint32) *group.Scalar { return group.FromUint64(uint64(v)) }

// levelInRange reports whether the revealed trust_level scalar v equals
// one of lo..hi. Trust levels are a small bounded domain (0..MaxLevel),
// so direct equality checks are simpler than a general scalar
// comparison, which the prime-order group deliberately does not expose.
func levelInRange(v *group.Scalar, lo, hi uint32) bool {
	for l := lo; l <= hi; l++ {
		if v.Equal(groupFromUint32(l)) {
			return true
		}
	}
	return false
}

// decodeLevel recovers the small uint32 trust_level a revealed scalar
// encodes, trying every value in the credential's bounded domain.
func decodeLevel(v *group.Scalar) (uint32, bool) {
	for l := uint32(0); l <= cred.MaxLevel; l++ {
		if v.Equal(groupFromUint32(l)) {
			return l, true
		}
	}
	return 0, false
}
