package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when a profile or via-point string cannot be
// decoded into the expected numeric tuples.
var ErrMalformed = errors.New("malformed profile")

// RoutePoint is one sample of the route geometry in LV03 coordinates.
// Distance is the cumulative distance from the route start in metres.
type RoutePoint struct {
	Easting   float64
	Northing  float64
	Elevation float64
	Distance  float64
}

// ViaPoint is a user-designated stop along the route, in LV03 coordinates.
type ViaPoint struct {
	Easting  float64
	Northing float64
}

// Parse decodes the track "profile" property, a list of
// [easting, northing, elevation, distance] tuples. The API serializes it
// with single quotes, so the text is normalized before decoding. An empty
// value yields an empty route.
func Parse(raw string) ([]RoutePoint, error) {
	tuples, err := decodeTuples(normalizeQuotes(raw), 4)
	if err != nil {
		return nil, err
	}
	points := make([]RoutePoint, len(tuples))
	for i, t := range tuples {
		points[i] = RoutePoint{Easting: t[0], Northing: t[1], Elevation: t[2], Distance: t[3]}
	}
	return points, nil
}

// ParseViaPoints decodes the "via_points" property, a list of
// [easting, northing] pairs. Unlike the profile it arrives as plain JSON.
func ParseViaPoints(raw string) ([]ViaPoint, error) {
	tuples, err := decodeTuples(raw, 2)
	if err != nil {
		return nil, err
	}
	vias := make([]ViaPoint, len(tuples))
	for i, t := range tuples {
		vias[i] = ViaPoint{Easting: t[0], Northing: t[1]}
	}
	return vias, nil
}

// normalizeQuotes rewrites the upstream single-quote convention to JSON
// double quotes. Kept separate so an upstream format change stays contained.
func normalizeQuotes(raw string) string {
	return strings.ReplaceAll(raw, "'", `"`)
}

func decodeTuples(raw string, arity int) ([][]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var tuples [][]float64
	if err := json.Unmarshal([]byte(raw), &tuples); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i, t := range tuples {
		if len(t) != arity {
			return nil, fmt.Errorf("%w: tuple %d has %d elements, want %d", ErrMalformed, i, len(t), arity)
		}
	}
	return tuples, nil
}
