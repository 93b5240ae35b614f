package geo

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

// Reference outputs of the rigorous EPSG:21781 -> EPSG:4326 pipeline
// (oblique Mercator inverse on Bessel 1841, then the EPSG geocentric
// shift), as produced by proj-based tooling for the same points.
var forwardFixtures = []struct {
	easting, northing float64
	lat, lon          string
}{
	{600000, 200000, "46.9510827719", "7.4386324209"}, // Bern, projection origin
	{600100, 200010, "46.9511727270", "7.4399460335"},
	{679520.05, 212273.44, "47.0567175341", "8.4853058994"}, // Rigi
	{700000, 100000, "46.0441302433", "8.7304969871"},
	{500000, 150000, "46.4938274690", "6.1360612855"},
	{650000, 250000, "47.3989249793", "8.1009634750"},
}

func TestLV03ToWGS84Fixtures(t *testing.T) {
	for _, fx := range forwardFixtures {
		lat, lon, err := LV03ToWGS84(fx.easting, fx.northing)
		if err != nil {
			t.Fatalf("convert (%v,%v): %v", fx.easting, fx.northing, err)
		}
		if got := fmt.Sprintf("%.10f", lat); got != fx.lat {
			t.Fatalf("lat for (%v,%v): got %s want %s", fx.easting, fx.northing, got, fx.lat)
		}
		if got := fmt.Sprintf("%.10f", lon); got != fx.lon {
			t.Fatalf("lon for (%v,%v): got %s want %s", fx.easting, fx.northing, got, fx.lon)
		}
	}
}

func TestLV03ToWGS84Deterministic(t *testing.T) {
	lat1, lon1, err := LV03ToWGS84(612345.6, 234567.8)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	lat2, lon2, err := LV03ToWGS84(612345.6, 234567.8)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if lat1 != lat2 || lon1 != lon2 {
		t.Fatalf("transform not deterministic: (%v,%v) vs (%v,%v)", lat1, lon1, lat2, lon2)
	}
}

func TestRoundTripWithinDomain(t *testing.T) {
	// LV03 covers roughly E 480k-840k, N 70k-300k. The rigorous forward
	// and inverse close to within millimetres.
	for e := 500000.0; e <= 800000.0; e += 50000.0 {
		for n := 100000.0; n <= 280000.0; n += 30000.0 {
			lat, lon, err := LV03ToWGS84(e, n)
			if err != nil {
				t.Fatalf("forward (%v,%v): %v", e, n, err)
			}
			e2, n2, err := wgs84ToLV03(lat, lon)
			if err != nil {
				t.Fatalf("inverse (%v,%v): %v", lat, lon, err)
			}
			if math.Abs(e2-e) > 0.005 || math.Abs(n2-n) > 0.005 {
				t.Fatalf("round trip (%v,%v) drifted to (%v,%v)", e, n, e2, n2)
			}
		}
	}
}

func TestNonFiniteInput(t *testing.T) {
	cases := [][2]float64{
		{math.NaN(), 200000},
		{600000, math.NaN()},
		{math.Inf(1), 200000},
		{600000, math.Inf(-1)},
	}
	for _, c := range cases {
		if _, _, err := LV03ToWGS84(c[0], c[1]); !errors.Is(err, ErrInvalidCoordinate) {
			t.Fatalf("LV03ToWGS84(%v,%v): expected ErrInvalidCoordinate, got %v", c[0], c[1], err)
		}
	}
	if _, _, err := wgs84ToLV03(math.NaN(), 7.44); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate for NaN latitude")
	}
}
