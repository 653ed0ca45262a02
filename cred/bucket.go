package cred

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/asv/lox/group"
)

// PackBucket bijectively packs a 32-bit bucket id and a 128-bit AES key
// into a single scalar: the id occupies bits 128..159 and the key
// occupies bits 0..127 of a 160-bit big-endian value, well within the
// group's ~255-bit scalar field, so no reduction ever occurs and the
// packing is exactly invertible by UnpackBucket.
func PackBucket(bucketID uint32, key [16]byte) *group.Scalar {
	buf := make([]byte, 20)
	binary.BigEndian.PutUint32(buf[:4], bucketID)
	copy(buf[4:], key[:])
	return group.NewScalar(new(big.Int).SetBytes(buf))
}

// UnpackBucket is PackBucket's inverse. It rejects any scalar whose
// high 96 bits (above the 160-bit packed range) are non-zero, since no
// honestly packed bucket attribute ever sets them.
func UnpackBucket(s *group.Scalar) (bucketID uint32, key [16]byte, err error) {
	b := s.Bytes()
	for _, x := range b[:12] {
		if x != 0 {
			return 0, key, fmt.Errorf("cred: bucket attribute out of packed range")
		}
	}
	bucketID = binary.BigEndian.Uint32(b[12:16])
	copy(key[:], b[16:32])
	return bucketID, key, nil
}
