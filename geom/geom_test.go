package geom_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/katalvlaran/cablecore/geom"
)

const tol = 1e-12

// TestSphere checks area and volume of spheres. The 6.30785 µm radius is
// the classic "500 µm² soma" used throughout the morphology literature.
func TestSphere(t *testing.T) {
	if got, want := geom.AreaSphere(1), 4*math.Pi; !scalar.EqualWithinRel(got, want, tol) {
		t.Errorf("AreaSphere(1) = %v; want %v", got, want)
	}
	if got, want := geom.VolumeSphere(1), 4*math.Pi/3; !scalar.EqualWithinRel(got, want, tol) {
		t.Errorf("VolumeSphere(1) = %v; want %v", got, want)
	}
	if got := geom.AreaSphere(6.30785); !scalar.EqualWithinRel(got, 500, 1e-4) {
		t.Errorf("AreaSphere(6.30785) = %v; want ≈500", got)
	}
}

// TestFrustumReducesToCylinder verifies the degenerate, untapered case.
func TestFrustumReducesToCylinder(t *testing.T) {
	l, r := 200.0, 0.5
	if got, want := geom.AreaFrustum(l, r, r), 2*math.Pi*r*l; !scalar.EqualWithinRel(got, want, tol) {
		t.Errorf("AreaFrustum cylinder = %v; want %v", got, want)
	}
	if got, want := geom.VolumeFrustum(l, r, r), math.Pi*r*r*l; !scalar.EqualWithinRel(got, want, tol) {
		t.Errorf("VolumeFrustum cylinder = %v; want %v", got, want)
	}
}

// TestFrustumTapered checks the slant-corrected area formula
// A = 2πLr̄√(1+m²), m = δr/L, against AreaFrustum on a tapered cone.
func TestFrustumTapered(t *testing.T) {
	l, r1, r2 := 10.0, 10.0, 5.0
	want := 2 * math.Pi * l * (r1 + r2) / 2 * math.Sqrt(1.25)
	if got := geom.AreaFrustum(l, r1, r2); !scalar.EqualWithinRel(got, want, tol) {
		t.Errorf("AreaFrustum(%v,%v,%v) = %v; want %v", l, r1, r2, got, want)
	}
}

// TestFrustumAdditivity: splitting a frustum at its arc midpoint must
// preserve total area and volume exactly (up to float rounding).
func TestFrustumAdditivity(t *testing.T) {
	l, r1, r2 := 200.0, 0.5, 0.1
	rm := geom.LerpRadius(r1, r2, 0.5)

	whole := geom.AreaFrustum(l, r1, r2)
	split := geom.AreaFrustum(l/2, r1, rm) + geom.AreaFrustum(l/2, rm, r2)
	if !scalar.EqualWithinRel(whole, split, 10*eps) {
		t.Errorf("area additivity: whole %v, split %v", whole, split)
	}

	wholeV := geom.VolumeFrustum(l, r1, r2)
	splitV := geom.VolumeFrustum(l/2, r1, rm) + geom.VolumeFrustum(l/2, rm, r2)
	if !scalar.EqualWithinRel(wholeV, splitV, 10*eps) {
		t.Errorf("volume additivity: whole %v, split %v", wholeV, splitV)
	}
}

var eps = math.Nextafter(1, 2) - 1
