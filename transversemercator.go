package egbt22trans

import (
	"errors"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const nTerms = 6

// MapCoords is a projected coordinate in meters.
type MapCoords struct {
	Easting  float64
	Northing float64
}

// Distortion holds the local distortion of a conformal projection at a
// point: the meridian convergence (angle from grid north to true north,
// positive east of the central meridian) and the point scale factor.
type Distortion struct {
	Convergence s1.Angle
	Scale       float64
}

// TransverseMercator provides conversions between geodetic coordinates
// (latitude and longitude) and Transverse Mercator projection coordinates
// (easting and northing) using the Krüger series to sixth order.
type TransverseMercator struct {
	ellipsoid Ellipsoid

	eps float64 // Eccentricity

	k0R4    float64 // scale factor * R4
	k0R4inv float64 // 1/(scale factor * R4)
	k0R4oa  float64 // scale factor * R4 / a

	aCoeff [8]float64
	bCoeff [8]float64

	originLat     float64 // Latitude of origin in radians
	originLong    float64 // Longitude of origin in radians
	falseNorthing float64
	falseEasting  float64
	scaleFactor   float64

	// northing/easting of the origin before false offsets are applied
	originNorthing float64
	originEasting  float64

	// Maximum variance for easting and northing values
	deltaEasting  float64
	deltaNorthing float64
}

// NewTransverseMercator constructs a new TransverseMercator converter. The
// central meridian and latitude of origin are in radians.
func NewTransverseMercator(e Ellipsoid, centralMeridian, originLatitude,
	falseEasting, falseNorthing, scaleFactor float64) (*TransverseMercator, error) {
	if e.Code == "" {
		return nil, errors.New("missing ellipsoid code")
	}
	if e.SemiMajorAxis <= 0.0 {
		return nil, errors.New("semi-major axis must be greater than zero")
	}
	invFlattening := 1.0 / e.Flattening
	if invFlattening < 150 {
		return nil, errors.New("inverse ellipsoid flattening out of range")
	}
	if (originLatitude < -math.Pi/2) || (originLatitude > math.Pi/2) {
		return nil, errors.New("origin latitude out of range")
	}
	if (centralMeridian < -math.Pi) || (centralMeridian > (2 * math.Pi)) {
		return nil, errors.New("central meridian out of range")
	}
	const minScaleFactor = 0.1
	const maxScaleFactor = 10.0
	if (scaleFactor < minScaleFactor) || (scaleFactor > maxScaleFactor) {
		return nil, errors.New("scale factor out of range")
	}

	t := &TransverseMercator{
		ellipsoid:     e,
		originLong:    centralMeridian,
		originLat:     originLatitude,
		falseEasting:  falseEasting,
		falseNorthing: falseNorthing,
		scaleFactor:   scaleFactor,
		deltaEasting:  20000000.0,
		deltaNorthing: 10000000.0,
	}
	if t.originLong > math.Pi {
		t.originLong -= (2 * math.Pi)
	}

	t.eps = math.Sqrt(e.EccentricitySquared())

	var r4oa float64
	t.aCoeff, t.bCoeff, r4oa = generateCoefficients(invFlattening, e.Code)

	t.k0R4oa = r4oa * scaleFactor
	t.k0R4 = t.k0R4oa * e.SemiMajorAxis
	t.k0R4inv = 1.0 / t.k0R4

	// The origin may move from (0,0); this is folded into the false
	// northing/easting.
	n, east, _, err := t.latLonToNorthingEasting(t.originLat, t.originLong)
	if err != nil {
		return nil, err
	}
	t.originNorthing, t.originEasting = n, east
	return t, nil
}

// Ellipsoid returns the ellipsoid the projection is defined on.
func (t *TransverseMercator) Ellipsoid() Ellipsoid { return t.ellipsoid }

// generateCoefficients computes the Krüger series coefficients for the
// ellipsoid. omega is rectifying latitude and chi conformal latitude; aCoeff
// holds omega as a trig series in chi, bCoeff chi as a trig series in omega.
// r4oa is the rectifying radius over the semi-major axis. Precomputed
// values are used for known ellipsoid codes.
func generateCoefficients(invfla float64, ellipsoidCode string) (aCoeff, bCoeff [8]float64, r4oa float64) {
	n1 := 1.0 / (2*invfla - 1.0)

	n2 := n1 * n1
	n3 := n2 * n1
	n4 := n3 * n1
	n5 := n4 * n1
	n6 := n5 * n1
	n7 := n6 * n1
	n8 := n7 * n1
	n9 := n8 * n1
	n10 := n9 * n1

	switch ellipsoidCode {
	case "BN", "BR":
		aCoeff[0] = 8.3522527226849818552e-04
		aCoeff[1] = 7.563048340614894422e-07
		aCoeff[2] = 1.18692075307408346e-09
		aCoeff[3] = 2.4002054791393298e-12
		aCoeff[4] = 5.626801597980756e-15
		aCoeff[5] = 1.45360057224474e-17

		bCoeff[0] = -8.3522561262703079182e-04
		bCoeff[1] = -5.870409978661008580e-08
		bCoeff[2] = -1.65848307463131468e-10
		bCoeff[3] = -2.1389565927064571e-13
		bCoeff[4] = -3.731493368666479e-16
		bCoeff[5] = -7.10756898071999e-19
	case "RF":
		aCoeff[0] = 8.3773182472855134012e-04
		aCoeff[1] = 7.608527848149655006e-07
		aCoeff[2] = 1.19764552085530681e-09
		aCoeff[3] = 2.4291707280369697e-12
		aCoeff[4] = 5.711818509192422e-15
		aCoeff[5] = 1.47999807059922e-17

		bCoeff[0] = -8.3773216816203523672e-04
		bCoeff[1] = -5.905870210369121594e-08
		bCoeff[2] = -1.67348268997717031e-10
		bCoeff[3] = -2.1647981529928124e-13
		bCoeff[4] = -3.787931061803592e-16
		bCoeff[5] = -7.23676950110361e-19
	default:
		// computation below is for user defined ellipsoids
		// Computation of coefficient a2
		coeff := 0.0
		coeff += (-18975107.0) * n8 / 50803200.0
		coeff += (72161.0) * n7 / 387072.0
		coeff += (7891.0) * n6 / 37800.0
		coeff += (-127.0) * n5 / 288.0
		coeff += (41.0) * n4 / 180.0
		coeff += (5.0) * n3 / 16.0
		coeff += (-2.0) * n2 / 3.0
		coeff += (1.0) * n1 / 2.0

		aCoeff[0] = coeff

		//   Computation of coefficient a4
		coeff = 0.0
		coeff += (148003883.0) * n8 / 174182400.0
		coeff += (13769.0) * n7 / 28800.0
		coeff += (-1983433.0) * n6 / 1935360.0
		coeff += (281.0) * n5 / 630.0
		coeff += (557.0) * n4 / 1440.0
		coeff += (-3.0) * n3 / 5.0
		coeff += (13.0) * n2 / 48.0

		aCoeff[1] = coeff

		//   Computation of coefficient a6
		coeff = 0.0
		coeff += (79682431.0) * n8 / 79833600.0
		coeff += (-67102379.0) * n7 / 29030400.0
		coeff += (167603.0) * n6 / 181440.0
		coeff += (15061.0) * n5 / 26880.0
		coeff += (-103.0) * n4 / 140.0
		coeff += (61.0) * n3 / 240.0

		aCoeff[2] = coeff

		//   Computation of coefficient a8
		coeff = 0.0
		coeff += (-40176129013.0) * n8 / 7664025600.0
		coeff += (97445.0) * n7 / 49896.0
		coeff += (6601661.0) * n6 / 7257600.0
		coeff += (-179.0) * n5 / 168.0
		coeff += (49561.0) * n4 / 161280.0

		aCoeff[3] = coeff

		//   Computation of coefficient a10
		coeff = 0.0
		coeff += (2605413599.0) * n8 / 622702080.0
		coeff += (14644087.0) * n7 / 9123840.0
		coeff += (-3418889.0) * n6 / 1995840.0
		coeff += (34729.0) * n5 / 80640.0

		aCoeff[4] = coeff

		//   Computation of coefficient a12
		coeff = 0.0
		coeff += (175214326799.0) * n8 / 58118860800.0
		coeff += (-30705481.0) * n7 / 10378368.0
		coeff += (212378941.0) * n6 / 319334400.0

		aCoeff[5] = coeff

		//   Computation of coefficient a14
		coeff = 0.0
		coeff += (-16759934899.0) * n8 / 3113510400.0
		coeff += (1522256789.0) * n7 / 1383782400.0

		aCoeff[6] = coeff

		//   Computation of coefficient a16
		coeff = 0.0
		coeff += (1424729850961.0) * n8 / 743921418240.0

		aCoeff[7] = coeff

		//   Computation of coefficient b2
		coeff = 0.0
		coeff += (-7944359.0) * n8 / 67737600.0
		coeff += (5406467.0) * n7 / 38707200.0
		coeff += (-96199.0) * n6 / 604800.0
		coeff += (81.0) * n5 / 512.0
		coeff += (1.0) * n4 / 360.0
		coeff += (-37.0) * n3 / 96.0
		coeff += (2.0) * n2 / 3.0
		coeff += (-1.0) * n1 / 2.0

		bCoeff[0] = coeff

		//   Computation of coefficient b4
		coeff = 0.0
		coeff += (-24749483.0) * n8 / 348364800.0
		coeff += (-51841.0) * n7 / 1209600.0
		coeff += (1118711.0) * n6 / 3870720.0
		coeff += (-46.0) * n5 / 105.0
		coeff += (437.0) * n4 / 1440.0
		coeff += (-1.0) * n3 / 15.0
		coeff += (-1.0) * n2 / 48.0

		bCoeff[1] = coeff

		//   Computation of coefficient b6
		coeff = 0.0
		coeff += (6457463.0) * n8 / 17740800.0
		coeff += (-9261899.0) * n7 / 58060800.0
		coeff += (-5569.0) * n6 / 90720.0
		coeff += (209.0) * n5 / 4480.0
		coeff += (37.0) * n4 / 840.0
		coeff += (-17.0) * n3 / 480.0

		bCoeff[2] = coeff

		//   Computation of coefficient b8
		coeff = 0.0
		coeff += (-324154477.0) * n8 / 7664025600.0
		coeff += (-466511.0) * n7 / 2494800.0
		coeff += (830251.0) * n6 / 7257600.0
		coeff += (11.0) * n5 / 504.0
		coeff += (-4397.0) * n4 / 161280.0

		bCoeff[3] = coeff

		//   Computation of coefficient b10
		coeff = 0.0
		coeff += (-22894433.0) * n8 / 124540416.0
		coeff += (8005831.0) * n7 / 63866880.0
		coeff += (108847.0) * n6 / 3991680.0
		coeff += (-4583.0) * n5 / 161280.0

		bCoeff[4] = coeff

		//   Computation of coefficient b12
		coeff = 0.0
		coeff += (2204645983.0) * n8 / 12915302400.0
		coeff += (16363163.0) * n7 / 518918400.0
		coeff += (-20648693.0) * n6 / 638668800.0

		bCoeff[5] = coeff

		//   Computation of coefficient b14
		coeff = 0.0
		coeff += (497323811.0) * n8 / 12454041600.0
		coeff += (-219941297.0) * n7 / 5535129600.0

		bCoeff[6] = coeff

		//   Computation of coefficient b16
		coeff = 0.0
		coeff += (-191773887257.0) * n8 / 3719607091200.0

		bCoeff[7] = coeff
	}


	coeff := 0.0
	coeff += 49 * n10 / 65536.0
	coeff += 25 * n8 / 16384.0
	coeff += n6 / 256.0
	coeff += n4 / 64.0
	coeff += n2 / 4
	coeff++
	r4oa = coeff / (1 + n1)
	return aCoeff, bCoeff, r4oa
}

func (t *TransverseMercator) checkLatLon(latitude, deltaLon float64) error {
	// test is based on distance from central meridian = deltaLon
	if deltaLon > math.Pi {
		deltaLon -= (2 * math.Pi)
	}
	if deltaLon < -math.Pi {
		deltaLon += (2 * math.Pi)
	}

	testAngle := math.Abs(deltaLon)

	delta := math.Abs(deltaLon - math.Pi)
	if delta < testAngle {
		testAngle = delta
	}

	delta = math.Abs(deltaLon + math.Pi)
	if delta < testAngle {
		testAngle = delta
	}

	// Away from the equator, is also valid
	delta = math.Pi/2 - latitude
	if delta < testAngle {
		testAngle = delta
	}

	delta = math.Pi/2 + latitude
	if delta < testAngle {
		testAngle = delta
	}
	const maxDeltaLong = ((math.Pi * 70) / 180.0)
	if testAngle > maxDeltaLong {
		return errors.New("longitude out of range")
	}
	return nil
}

// latLonToNorthingEasting projects without false offsets and returns the
// distortion at the point.
func (t *TransverseMercator) latLonToNorthingEasting(latitude, longitude float64) (northing, easting float64, d Distortion, err error) {
	lambda := longitude - t.originLong
	if lambda > math.Pi {
		lambda -= (2 * math.Pi)
	}
	if lambda < -math.Pi {
		lambda += (2 * math.Pi)
	}
	if err := t.checkLatLon(latitude, lambda); err != nil {
		return 0, 0, Distortion{}, err
	}

	sinLam, cosLam := math.Sincos(lambda)
	sinPhi, cosPhi := math.Sincos(latitude)

	var c2ku, s2ku [8]float64
	var c2kv, s2kv [8]float64

	//  Convert geodetic latitude, Phi, to conformal latitude, Chi
	//  Only the cosine and sine of Chi are actually needed.
	P := math.Exp(t.eps * aTanH(t.eps*sinPhi))
	part1 := (1 + sinPhi) / P
	part2 := (1 - sinPhi) * P
	denom := part1 + part2
	cosChi := 2 * cosPhi / denom
	sinChi := (part1 - part2) / denom

	// Apply spherical theory of transverse Mercator to get (u,v) coord.s
	U := aTanH(cosChi * sinLam)
	V := math.Atan2(sinChi, cosChi*cosLam)

	computeHyperbolicSeries(2.0*U, c2ku[:], s2ku[:])
	computeTrigSeries(2.0*V, c2kv[:], s2kv[:])

	//  First plane to second plane, along with the derivative p - iq
	xStar := 0.0
	yStar := 0.0
	p := 1.0
	q := 0.0
	for k := nTerms - 1; k >= 0; k-- {
		xStar += t.aCoeff[k] * s2ku[k] * c2kv[k]
		yStar += t.aCoeff[k] * c2ku[k] * s2kv[k]
		twoJ := float64(2 * (k + 1))
		p += twoJ * t.aCoeff[k] * c2kv[k] * c2ku[k]
		q += twoJ * t.aCoeff[k] * s2kv[k] * s2ku[k]
	}
	xStar += U
	yStar += V

	gammaSphere := math.Atan2(sinChi*sinLam, cosLam)
	d = Distortion{
		Convergence: s1.Angle(gammaSphere + math.Atan2(q, p)),
		Scale: t.sphereScale(sinPhi, cosPhi, sinChi, cosChi, cosLam) *
			t.k0R4oa * math.Hypot(p, q),
	}

	// Apply isoperimetric radius, scale adjustment
	return t.k0R4 * yStar, t.k0R4 * xStar, d, nil
}

// sphereScale is the scale of the ellipsoid to conformal sphere mapping
// combined with the spherical transverse Mercator.
func (t *TransverseMercator) sphereScale(sinPhi, cosPhi, sinChi, cosChi, cosLam float64) float64 {
	e2 := t.eps * t.eps
	return math.Sqrt(1-e2*sinPhi*sinPhi) / cosPhi *
		cosChi / math.Sqrt(sinChi*sinChi+cosChi*cosChi*cosLam*cosLam)
}

// ConvertFromGeodetic converts a geodetic coordinate to projected easting
// and northing, returning the convergence and point scale at that point.
func (t *TransverseMercator) ConvertFromGeodetic(geodeticCoordinates s2.LatLng) (MapCoords, Distortion, error) {
	longitude := geodeticCoordinates.Lng.Radians()
	latitude := geodeticCoordinates.Lat.Radians()
	if math.IsNaN(longitude) || math.IsNaN(latitude) {
		return MapCoords{}, Distortion{}, errors.New("latitude or longitude undefined")
	}

	if longitude > math.Pi {
		longitude -= (2 * math.Pi)
	}
	if longitude < -math.Pi {
		longitude += (2 * math.Pi)
	}

	northing, easting, d, err := t.latLonToNorthingEasting(latitude, longitude)
	if err != nil {
		return MapCoords{}, Distortion{}, err
	}

	return MapCoords{
		Easting:  easting + t.falseEasting - t.originEasting,
		Northing: northing + t.falseNorthing - t.originNorthing,
	}, d, nil
}

// ConvertToGeodetic converts projected easting and northing to a geodetic
// coordinate, returning the convergence and point scale at that point.
func (t *TransverseMercator) ConvertToGeodetic(mapProjectionCoordinates MapCoords) (s2.LatLng, Distortion, error) {
	easting := mapProjectionCoordinates.Easting
	northing := mapProjectionCoordinates.Northing

	if math.IsNaN(easting) || (easting < (t.falseEasting - t.deltaEasting)) ||
		(easting > (t.falseEasting + t.deltaEasting)) {
		return s2.LatLng{}, Distortion{}, errors.New("easting out of range")
	}
	if math.IsNaN(northing) || (northing < (t.falseNorthing - t.deltaNorthing)) ||
		(northing > (t.falseNorthing + t.deltaNorthing)) {
		return s2.LatLng{}, Distortion{}, errors.New("northing out of range")
	}

	easting -= (t.falseEasting - t.originEasting)
	northing -= (t.falseNorthing - t.originNorthing)

	latitude, longitude, d := t.northingEastingToLatLon(northing, easting)

	if longitude > math.Pi {
		longitude -= (2 * math.Pi)
	}
	if longitude <= -math.Pi {
		longitude += (2 * math.Pi)
	}
	if math.Abs(latitude) > (90.0 * math.Pi / 180.0) {
		return s2.LatLng{}, Distortion{}, errors.New("northing out of range")
	}
	return s2.LatLng{Lat: s1.Angle(latitude), Lng: s1.Angle(longitude)}, d, nil
}

func (t *TransverseMercator) northingEastingToLatLon(northing, easting float64) (latitude, longitude float64, d Distortion) {
	var c2kx, s2kx, c2ky, s2ky [8]float64

	//  Undo scale change, and factor R4
	xStar := t.k0R4inv * easting
	yStar := t.k0R4inv * northing

	computeHyperbolicSeries(2.0*xStar, c2kx[:], s2kx[:])
	computeTrigSeries(2.0*yStar, c2ky[:], s2ky[:])

	//  Second plane (x*, y*) to first plane (u, v), along with the
	//  derivative P - iQ of the inverse series
	U := 0.0
	V := 0.0
	P := 1.0
	Q := 0.0
	for k := nTerms - 1; k >= 0; k-- {
		U += t.bCoeff[k] * s2kx[k] * c2ky[k]
		V += t.bCoeff[k] * c2kx[k] * s2ky[k]
		twoJ := float64(2 * (k + 1))
		P += twoJ * t.bCoeff[k] * c2ky[k] * c2kx[k]
		Q += twoJ * t.bCoeff[k] * s2ky[k] * s2kx[k]
	}
	U += xStar
	V += yStar

	//  First plane to sphere
	coshU := math.Cosh(U)
	sinhU := math.Sinh(U)
	sinV, cosV := math.Sincos(V)

	var lambda float64
	//   Longitude from central meridian
	if (math.Abs(cosV) < 10e-12) && (math.Abs(coshU) < 10e-12) {
		lambda = 0
	} else {
		lambda = math.Atan2(sinhU, cosV)
	}

	//   Conformal latitude
	sinChi := sinV / coshU
	cosChi := math.Sqrt(math.Max(0, 1-sinChi*sinChi))
	latitude = geodeticLat(sinChi, t.eps)
	longitude = t.originLong + lambda

	sinPhi, cosPhi := math.Sincos(latitude)
	d = Distortion{
		Convergence: s1.Angle(math.Atan2(sinV*sinhU, cosV*coshU) + math.Atan2(-Q, P)),
		Scale: t.sphereScale(sinPhi, cosPhi, sinChi, cosChi, math.Cos(lambda)) *
			t.k0R4oa / math.Hypot(P, Q),
	}
	return latitude, longitude, d
}

func geodeticLat(sinChi, e float64) float64 {
	sOld := 1.0e99
	s := sinChi
	onePlusSinChi := 1.0 + sinChi
	oneMinusSinChi := 1.0 - sinChi

	for n := 0; n < 30; n++ {
		p := math.Exp(e * aTanH(e*s))
		pSq := p * p
		s = (onePlusSinChi*pSq - oneMinusSinChi) /
			(onePlusSinChi*pSq + oneMinusSinChi)

		if math.Abs(s-sOld) < 1.0e-12 {
			break
		}
		sOld = s
	}
	return math.Asin(s)
}

func computeHyperbolicSeries(twoX float64, c2kx, s2kx []float64) {
	// c2kx[k] = cosh(2(k+1)X), s2kx[k] = sinh(2(k+1)X)
	c2kx[0] = math.Cosh(twoX)
	s2kx[0] = math.Sinh(twoX)
	c2kx[1] = 2.0*c2kx[0]*c2kx[0] - 1.0
	s2kx[1] = 2.0 * c2kx[0] * s2kx[0]
	c2kx[2] = c2kx[0]*c2kx[1] + s2kx[0]*s2kx[1]
	s2kx[2] = c2kx[1]*s2kx[0] + c2kx[0]*s2kx[1]
	c2kx[3] = 2.0*c2kx[1]*c2kx[1] - 1.0
	s2kx[3] = 2.0 * c2kx[1] * s2kx[1]
	c2kx[4] = c2kx[0]*c2kx[3] + s2kx[0]*s2kx[3]
	s2kx[4] = c2kx[3]*s2kx[0] + c2kx[0]*s2kx[3]
	c2kx[5] = 2.0*c2kx[2]*c2kx[2] - 1.0
	s2kx[5] = 2.0 * c2kx[2] * s2kx[2]
	c2kx[6] = c2kx[0]*c2kx[5] + s2kx[0]*s2kx[5]
	s2kx[6] = c2kx[5]*s2kx[0] + c2kx[0]*s2kx[5]
	c2kx[7] = 2.0*c2kx[3]*c2kx[3] - 1.0
	s2kx[7] = 2.0 * c2kx[3] * s2kx[3]
}

func computeTrigSeries(twoY float64, c2ky, s2ky []float64) {
	// c2ky[k] = cos(2(k+1)Y), s2ky[k] = sin(2(k+1)Y)
	c2ky[0] = math.Cos(twoY)
	s2ky[0] = math.Sin(twoY)
	c2ky[1] = 2.0*c2ky[0]*c2ky[0] - 1.0
	s2ky[1] = 2.0 * c2ky[0] * s2ky[0]
	c2ky[2] = c2ky[1]*c2ky[0] - s2ky[1]*s2ky[0]
	s2ky[2] = c2ky[1]*s2ky[0] + c2ky[0]*s2ky[1]
	c2ky[3] = 2.0*c2ky[1]*c2ky[1] - 1.0
	s2ky[3] = 2.0 * c2ky[1] * s2ky[1]
	c2ky[4] = c2ky[3]*c2ky[0] - s2ky[3]*s2ky[0]
	s2ky[4] = c2ky[3]*s2ky[0] + c2ky[0]*s2ky[3]
	c2ky[5] = 2.0*c2ky[2]*c2ky[2] - 1.0
	s2ky[5] = 2.0 * c2ky[2] * s2ky[2]
	c2ky[6] = c2ky[5]*c2ky[0] - s2ky[5]*s2ky[0]
	s2ky[6] = c2ky[5]*s2ky[0] + c2ky[0]*s2ky[5]
	c2ky[7] = 2.0*c2ky[3]*c2ky[3] - 1.0
	s2ky[7] = 2.0 * c2ky[3] * s2ky[3]
}

func aTanH(x float64) float64 {
	return (0.5 * math.Log((1+x)/(1-x)))
}
