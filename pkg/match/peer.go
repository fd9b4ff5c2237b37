package match

import (
	"strings"

	"github.com/google/uuid"
)

// Peer identifies one side of a match. ID must be stable for the lifetime of
// the connection since host election depends on it.
type Peer struct {
	ID   uuid.UUID
	Name string
}

func NewPeer(name string) Peer {
	return Peer{
		ID:   uuid.New(),
		Name: name,
	}
}

// IsHost reports whether local is the authoritative host against remote. The
// peer with the lower identifier hosts, so both sides agree without a round
// trip. Equal identifiers elect nobody.
func IsHost(local, remote uuid.UUID) bool {
	return strings.Compare(local.String(), remote.String()) < 0
}
