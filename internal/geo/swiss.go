package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned when a transform input is NaN or infinite.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// CH1903 is an oblique Mercator projection of the Bessel 1841 ellipsoid;
// the datum is carried to WGS84 with the EPSG geocentric shift for
// EPSG:21781. Constants follow the swisstopo reference formulas.
const (
	besselA  = 6377397.155
	besselE2 = 0.006674372230614
	wgs84A   = 6378137.0
	wgs84E2  = 0.00669437999014

	shiftX = 674.374
	shiftY = 15.056
	shiftZ = 405.346
)

var (
	besselE = math.Sqrt(besselE2)
	phi0    = (46.0 + 57.0/60.0 + 8.66/3600.0) * math.Pi / 180.0
	lambda0 = (7.0 + 26.0/60.0 + 22.5/3600.0) * math.Pi / 180.0

	sphereR = besselA * math.Sqrt(1.0-besselE2) / (1.0 - besselE2*math.Sin(phi0)*math.Sin(phi0))
	alpha   = math.Sqrt(1.0 + (besselE2/(1.0-besselE2))*math.Pow(math.Cos(phi0), 4))
	b0      = math.Asin(math.Sin(phi0) / alpha)
	projK   = math.Log(math.Tan(math.Pi/4.0+b0/2.0)) -
		alpha*math.Log(math.Tan(math.Pi/4.0+phi0/2.0)) +
		alpha*besselE/2.0*math.Log((1.0+besselE*math.Sin(phi0))/(1.0-besselE*math.Sin(phi0)))
)

// LV03ToWGS84 converts Swiss LV03 (EPSG:21781) easting/northing to WGS84
// latitude/longitude in degrees: the rigorous inverse projection onto the
// Bessel ellipsoid followed by the geocentric datum shift.
func LV03ToWGS84(easting, northing float64) (lat, lon float64, err error) {
	if !finite(easting) || !finite(northing) {
		return 0, 0, fmt.Errorf("%w: easting=%v northing=%v", ErrInvalidCoordinate, easting, northing)
	}
	phi, lambda := lv03ToBessel(easting, northing)
	lat, lon = besselToWGS84(phi, lambda)
	return lat, lon, nil
}

// lv03ToBessel undoes the oblique Mercator projection: plane to conformal
// sphere, rotation off the pseudo-equator, then the iterative step back to
// ellipsoidal latitude.
func lv03ToBessel(easting, northing float64) (phi, lambda float64) {
	lbar := (easting - 600000.0) / sphereR
	bbar := 2.0 * (math.Atan(math.Exp((northing-200000.0)/sphereR)) - math.Pi/4.0)

	b := math.Asin(math.Cos(b0)*math.Sin(bbar) + math.Sin(b0)*math.Cos(bbar)*math.Cos(lbar))
	l := math.Atan(math.Sin(lbar) / (math.Cos(b0)*math.Cos(lbar) - math.Sin(b0)*math.Tan(bbar)))

	lambda = lambda0 + l/alpha
	phi = b
	for i := 0; i < 8; i++ {
		phi = 2.0*math.Atan(math.Exp((math.Log(math.Tan(math.Pi/4.0+b/2.0))-projK)/alpha+besselE*math.Atanh(besselE*math.Sin(phi)))) - math.Pi/2.0
	}
	return phi, lambda
}

// besselToWGS84 applies the CH1903->WGS84 geocentric shift and converts
// back to geodetic coordinates, in degrees. Heights are taken as zero.
func besselToWGS84(phi, lambda float64) (lat, lon float64) {
	n := besselA / math.Sqrt(1.0-besselE2*math.Sin(phi)*math.Sin(phi))
	x := n*math.Cos(phi)*math.Cos(lambda) + shiftX
	y := n*math.Cos(phi)*math.Sin(lambda) + shiftY
	z := n*(1.0-besselE2)*math.Sin(phi) + shiftZ

	lonRad := math.Atan2(y, x)
	p := math.Sqrt(x*x + y*y)
	latRad := math.Atan2(z, p*(1.0-wgs84E2))
	for i := 0; i < 8; i++ {
		nw := wgs84A / math.Sqrt(1.0-wgs84E2*math.Sin(latRad)*math.Sin(latRad))
		latRad = math.Atan2(z+wgs84E2*nw*math.Sin(latRad), p)
	}
	return latRad * (180.0 / math.Pi), lonRad * (180.0 / math.Pi)
}

// wgs84ToLV03 is the inverse transform. It exists to close the loop in the
// round-trip consistency tests; the export pipeline only runs forward.
func wgs84ToLV03(lat, lon float64) (easting, northing float64, err error) {
	if !finite(lat) || !finite(lon) {
		return 0, 0, fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinate, lat, lon)
	}

	latRad := lat * (math.Pi / 180.0)
	lonRad := lon * (math.Pi / 180.0)

	nw := wgs84A / math.Sqrt(1.0-wgs84E2*math.Sin(latRad)*math.Sin(latRad))
	x := nw*math.Cos(latRad)*math.Cos(lonRad) - shiftX
	y := nw*math.Cos(latRad)*math.Sin(lonRad) - shiftY
	z := nw*(1.0-wgs84E2)*math.Sin(latRad) - shiftZ

	lambda := math.Atan2(y, x)
	p := math.Sqrt(x*x + y*y)
	phi := math.Atan2(z, p*(1.0-besselE2))
	for i := 0; i < 8; i++ {
		n := besselA / math.Sqrt(1.0-besselE2*math.Sin(phi)*math.Sin(phi))
		phi = math.Atan2(z+besselE2*n*math.Sin(phi), p)
	}

	s := math.Log(math.Tan(math.Pi/4.0 + phi/2.0))
	b := 2.0 * (math.Atan(math.Exp(alpha*s-alpha*besselE/2.0*math.Log((1.0+besselE*math.Sin(phi))/(1.0-besselE*math.Sin(phi)))+projK)) - math.Pi/4.0)
	l := alpha * (lambda - lambda0)

	lbar := math.Atan2(math.Sin(l), math.Sin(b0)*math.Tan(b)+math.Cos(b0)*math.Cos(l))
	bbar := math.Asin(math.Cos(b0)*math.Sin(b) - math.Sin(b0)*math.Cos(b)*math.Cos(l))

	easting = 600000.0 + sphereR*lbar
	northing = 200000.0 + sphereR*math.Log(math.Tan(math.Pi/4.0+bbar/2.0))
	return easting, northing, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
