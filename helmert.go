package egbt22trans

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
)

const arcSecond = s1.Degree / 3600

// HelmertParameters are the seven parameters of a similarity transformation
// between two geocentric frames. Rotations are in arc-seconds using the
// coordinate frame convention, the scale difference in parts per million.
type HelmertParameters struct {
	TX, TY, TZ float64
	RX, RY, RZ float64
	ScalePPM   float64
}

// Helmert is a similarity transformation between two geocentric frames. Any
// of rotation, scale and translation may be absent, in which case it is the
// identity in both directions.
type Helmert struct {
	translation *r3.Vector
	rotation    *[3]r3.Vector // rows of the coordinate frame rotation matrix
	scale       float64       // multiplicative, 0 if absent
}

// HelmertOption configures one component of a Helmert transformation.
type HelmertOption func(*Helmert)

// WithTranslation sets the translation in meters.
func WithTranslation(tx, ty, tz float64) HelmertOption {
	return func(h *Helmert) {
		h.translation = &r3.Vector{X: tx, Y: ty, Z: tz}
	}
}

// WithRotation sets the rotation angles in arc-seconds.
func WithRotation(rx, ry, rz float64) HelmertOption {
	return func(h *Helmert) {
		m := rotationMatrix((s1.Angle(rx) * arcSecond).Radians(),
			(s1.Angle(ry) * arcSecond).Radians(),
			(s1.Angle(rz) * arcSecond).Radians())
		h.rotation = &m
	}
}

// WithScale sets the scale difference in parts per million.
func WithScale(ppm float64) HelmertOption {
	return func(h *Helmert) {
		h.scale = 1 + ppm*1e-6
	}
}

// NewHelmert constructs a transformation from at least one component.
func NewHelmert(opts ...HelmertOption) (*Helmert, error) {
	h := &Helmert{}
	for _, opt := range opts {
		opt(h)
	}
	if h.translation == nil && h.rotation == nil && h.scale == 0 {
		return nil, errors.New("helmert transformation needs a rotation, scale or translation")
	}
	return h, nil
}

// NewHelmertFromParameters constructs the full seven parameter transformation.
func NewHelmertFromParameters(p HelmertParameters) *Helmert {
	h, _ := NewHelmert(
		WithRotation(p.RX, p.RY, p.RZ),
		WithScale(p.ScalePPM),
		WithTranslation(p.TX, p.TY, p.TZ),
	)
	return h
}

// rotationMatrix returns R1(rx)·R2(ry)·R3(rz) for the coordinate frame
// convention. For small angles this is
//
//	|  1   rz  -ry |
//	| -rz  1    rx |
//	|  ry  -rx  1  |
func rotationMatrix(rx, ry, rz float64) [3]r3.Vector {
	sx, cx := math.Sincos(rx)
	sy, cy := math.Sincos(ry)
	sz, cz := math.Sincos(rz)
	return [3]r3.Vector{
		{X: cy * cz, Y: cy * sz, Z: -sy},
		{X: sx*sy*cz - cx*sz, Y: sx*sy*sz + cx*cz, Z: sx * cy},
		{X: cx*sy*cz + sx*sz, Y: cx*sy*sz - sx*cz, Z: cx * cy},
	}
}

// Forward applies rotation, then scale, then translation.
func (h *Helmert) Forward(v r3.Vector) r3.Vector {
	if h.rotation != nil {
		m := h.rotation
		v = r3.Vector{X: m[0].Dot(v), Y: m[1].Dot(v), Z: m[2].Dot(v)}
	}
	if h.scale != 0 {
		v = v.Mul(h.scale)
	}
	if h.translation != nil {
		v = v.Add(*h.translation)
	}
	return v
}

// Reverse undoes Forward: translation, then scale, then the transposed
// rotation.
func (h *Helmert) Reverse(v r3.Vector) r3.Vector {
	if h.translation != nil {
		v = v.Sub(*h.translation)
	}
	if h.scale != 0 {
		v = v.Mul(1 / h.scale)
	}
	if h.rotation != nil {
		m := h.rotation
		v = m[0].Mul(v.X).Add(m[1].Mul(v.Y)).Add(m[2].Mul(v.Z))
	}
	return v
}
