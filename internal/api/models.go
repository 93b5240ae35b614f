package api

// TrackSummary is one entry of the track list endpoint. Only the name is
// used for matching; the ID keys the detail fetch.
type TrackSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TrackDetail is the full per-track record.
type TrackDetail struct {
	ID         int64           `json:"id"`
	Properties TrackProperties `json:"properties"`
}

// TrackProperties carries the route geometry and the metadata shown during
// disambiguation. Profile and ViaPoints are encoded strings decoded by the
// profile package.
type TrackProperties struct {
	Profile    string `json:"profile"`
	ViaPoints  string `json:"via_points"`
	FilterName string `json:"filter_name"`
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
}
