package federation

// Route returns the one shard owning the given region id. Used whenever
// the caller already names the region explicitly: creates, and updates or
// deletes addressed by composite id.
func (r *Registry) Route(regionID int) (*Shard, error) {
	s, ok := r.byRegion[regionID]
	if !ok {
		return nil, &UnknownRegionError{RegionID: regionID}
	}
	return s, nil
}
