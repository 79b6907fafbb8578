package federation

import (
	"fmt"
	"strconv"
	"strings"
)

const compositeSep = "-"

// CompositeID is the only globally unique identifier in the federation:
// a local id is unique only within its owning shard.
type CompositeID struct {
	Shard   string
	LocalID int64
}

// String serializes to "{shard}-{localId}". The registry guarantees shard
// names never contain the separator, so the encoding is reversible.
func (id CompositeID) String() string {
	return id.Shard + compositeSep + strconv.FormatInt(id.LocalID, 10)
}

// ParseCompositeID recovers the originating (shard, localId) pair.
func ParseCompositeID(s string) (CompositeID, error) {
	name, rest, ok := strings.Cut(s, compositeSep)
	if !ok || name == "" || rest == "" {
		return CompositeID{}, fmt.Errorf("malformed composite id %q", s)
	}
	localID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || localID <= 0 {
		return CompositeID{}, fmt.Errorf("malformed composite id %q: bad local id", s)
	}
	return CompositeID{Shard: name, LocalID: localID}, nil
}
