package worldgen

import "testing"

func TestEval2DIsNormalizedToUnitInterval(t *testing.T) {
	n := NewNoiseGenerator(1)
	for x := 0.0; x < 50; x += 3.7 {
		v := n.Eval2D(x, x*1.3)
		if v < 0 || v > 1 {
			t.Fatalf("expected Eval2D in [0,1], got %f at x=%f", v, x)
		}
	}
}

func TestEval2DIsDeterministicForSameSeedAndCoordinate(t *testing.T) {
	a := NewNoiseGenerator(99)
	b := NewNoiseGenerator(99)
	if a.Eval2D(3.2, 5.1) != b.Eval2D(3.2, 5.1) {
		t.Fatal("expected identical seeds to produce identical noise values")
	}
}

func TestOctave2DIsNormalizedToUnitInterval(t *testing.T) {
	n := NewNoiseGenerator(1)
	v := n.Octave2D(12.0, 7.0, 4, 0.05, 0.5)
	if v < 0 || v > 1 {
		t.Fatalf("expected Octave2D in [0,1], got %f", v)
	}
}

func TestOctave2DSingleOctaveMatchesEval2D(t *testing.T) {
	n := NewNoiseGenerator(1)
	single := n.Octave2D(4.0, 9.0, 1, 0.1, 0.5)
	direct := n.Eval2D(4.0*0.1, 9.0*0.1)
	if single != direct {
		t.Fatalf("expected a single octave to equal a direct Eval2D call, got %f vs %f", single, direct)
	}
}

func TestOctave2DZeroOctavesReturnsZero(t *testing.T) {
	n := NewNoiseGenerator(1)
	if v := n.Octave2D(1, 1, 0, 0.1, 0.5); v != 0 {
		t.Fatalf("expected zero octaves to return 0, got %f", v)
	}
}
