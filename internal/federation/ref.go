package federation

import (
	"fmt"
	"strconv"
)

// Ref is how callers address an existing entity: either a full composite
// id ("guayaquil-12"), which names the owning shard explicitly, or a bare
// local id ("12"), which forces a locate across all shards.
type Ref struct {
	LocalID int64
	Shard   string // empty when the caller supplied only the bare id
}

// ParseRef accepts either form.
func ParseRef(s string) (Ref, error) {
	if localID, err := strconv.ParseInt(s, 10, 64); err == nil {
		if localID <= 0 {
			return Ref{}, fmt.Errorf("invalid id %q", s)
		}
		return Ref{LocalID: localID}, nil
	}
	cid, err := ParseCompositeID(s)
	if err != nil {
		return Ref{}, err
	}
	return Ref{LocalID: cid.LocalID, Shard: cid.Shard}, nil
}

// Resolve returns the shard a ref addresses. A composite ref routes
// directly; a bare ref returns nil, meaning the caller must locate.
func (r Ref) Resolve(reg *Registry) (*Shard, error) {
	if r.Shard == "" {
		return nil, nil
	}
	shard, ok := reg.ByName(r.Shard)
	if !ok {
		return nil, fmt.Errorf("composite id names unknown shard %q", r.Shard)
	}
	return shard, nil
}
