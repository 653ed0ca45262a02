package client

import (
	"fmt"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
)

// decodeLevel recovers the small uint32 trust_level a revealed scalar
// encodes. Trust levels are a small bounded domain (0..MaxLevel), so
// direct equality search is simpler than a general scalar comparison,
// which the prime-order group deliberately does not expose.
func decodeLevel(v *group.Scalar) (uint32, error) {
	for l := uint32(0); l <= cred.MaxLevel; l++ {
		if v.Equal(group.FromUint64(uint64(l))) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("client: scalar is not a valid trust level")
}

// errNoLoxCredential and errNoMigrationCredential guard Session methods
// that depend on a credential a prior step should have already stored.
var (
	errNoLoxCredential        = fmt.Errorf("client: session has no Lox credential")
	errNoInvitationCredential = fmt.Errorf("client: session has no Invitation credential")
	errNoMigrationCredential  = fmt.Errorf("client: session has no Migration credential")
)

// maxBlockagesSearch generously bounds decodeBlockages' search: blockage
// counts never reset, but no real account accrues anywhere near this
// many blockage_migration events over its lifetime.
const maxBlockagesSearch = 4096

// decodeBlockages recovers the small uint32 blockages count a revealed
// scalar encodes.
func decodeBlockages(v *group.Scalar) (uint32, error) {
	for b := uint32(0); b <= maxBlockagesSearch; b++ {
		if v.Equal(group.FromUint64(uint64(b))) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("client: scalar is not a valid blockages count")
}
