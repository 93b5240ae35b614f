package gpx

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/PhilKu7/schweizmobil-downloader/internal/profile"
)

// Transformer maps planar LV03 coordinates to WGS84 degrees.
type Transformer interface {
	ToWGS84(easting, northing float64) (lat, lon float64, err error)
}

// TransformFunc adapts a plain function to the Transformer interface.
type TransformFunc func(easting, northing float64) (lat, lon float64, err error)

func (f TransformFunc) ToWGS84(easting, northing float64) (float64, float64, error) {
	return f(easting, northing)
}

// Write emits a GPX 1.1 document in a single forward pass: metadata, one
// waypoint per via-point, then one track segment with every route point.
// Waypoint elevations are intentionally left empty; only trackpoints carry
// them. Transform errors abort immediately and leave the output partial.
func Write(w io.Writer, name string, points []profile.RoutePoint, viaPoints []profile.ViaPoint, transform Transformer) error {
	bw := bufio.NewWriter(w)
	escaped := escape(name)

	fmt.Fprintf(bw, "<?xml version=\"1.0\"?>\n")
	fmt.Fprintf(bw, "<gpx version=\"1.1\" creator=\"schweizmobil.ch-API converter\">\n")
	fmt.Fprintf(bw, "  <metadata><name>%s</name></metadata>\n", escaped)

	for i, vp := range viaPoints {
		lat, lon, err := transform.ToWGS84(vp.Easting, vp.Northing)
		if err != nil {
			return fmt.Errorf("via point %d: %w", i, err)
		}
		fmt.Fprintf(bw, "  <wpt lat=\"%.10f\" lon=\"%.10f\">\n", lat, lon)
		fmt.Fprintf(bw, "    <ele></ele>\n")
		fmt.Fprintf(bw, "    <name>%s</name>\n", waypointLabel(i, len(viaPoints)))
		fmt.Fprintf(bw, "  </wpt>\n")
	}

	fmt.Fprintf(bw, "  <trk><name>%s</name><trkseg>\n", escaped)
	for i, pt := range points {
		lat, lon, err := transform.ToWGS84(pt.Easting, pt.Northing)
		if err != nil {
			return fmt.Errorf("route point %d: %w", i, err)
		}
		fmt.Fprintf(bw, "    <trkpt lat=\"%.10f\" lon=\"%.10f\"><ele>%.1f</ele></trkpt>\n", lat, lon, pt.Elevation)
	}
	fmt.Fprintf(bw, "  </trkseg></trk>\n")
	fmt.Fprintf(bw, "</gpx>\n")

	return bw.Flush()
}

// waypointLabel names via-points by position. The first-index check wins,
// so a single via-point is the "Starting point".
func waypointLabel(idx, total int) string {
	switch {
	case idx == 0:
		return "Starting point"
	case idx == total-1:
		return "Destination"
	default:
		return "Waypoint"
	}
}

func escape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
