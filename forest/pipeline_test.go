package forest_test

import (
	"math"
	"testing"

	"selfheal.io/anomaly/forest"
)

func TestScaler(t *testing.T) {
	s := &forest.Scaler{}
	x := [][]float64{{1, 10}, {2, 10}, {3, 10}}
	if err := s.Fit(x); err != nil {
		t.Fatalf("Fit: %+v.", err)
	}
	out, err := s.Transform(x)
	if err != nil {
		t.Fatalf("Transform: %+v.", err)
	}
	if math.Abs(out[0][0]+1) > 1e-12 || math.Abs(out[1][0]) > 1e-12 || math.Abs(out[2][0]-1) > 1e-12 {
		t.Fatalf("first column scaled to %v %v %v.", out[0][0], out[1][0], out[2][0])
	}
	// Constant column maps to zero, not a division by zero.
	for i := range out {
		if out[i][1] != 0 {
			t.Fatalf("constant column row %d scaled to %v, want 0.", i, out[i][1])
		}
	}

	if _, err := s.Transform([][]float64{{1}}); err == nil {
		t.Fatal("width mismatch should fail.")
	}
	if err := (&forest.Scaler{}).Fit(nil); err == nil {
		t.Fatal("fit on empty matrix should fail.")
	}
	if _, err := (&forest.Scaler{}).Transform(x); err == nil {
		t.Fatal("transform before fit should fail.")
	}
}

func TestPipelineFitScorePredict(t *testing.T) {
	x := trainingSet(5)
	p := forest.NewPipeline([]string{"a", "b"}, testConfig())
	if err := p.Fit(x); err != nil {
		t.Fatalf("Fit: %+v.", err)
	}

	scores, err := p.Score(x)
	if err != nil {
		t.Fatalf("Score: %+v.", err)
	}
	if len(scores) != len(x) {
		t.Fatalf("got %d scores for %d rows.", len(scores), len(x))
	}

	rate, err := p.AnomalyRate(x)
	if err != nil {
		t.Fatalf("AnomalyRate: %+v.", err)
	}
	if rate <= 0 || rate > 15 {
		t.Fatalf("anomaly rate %.2f%% outside the plausible band.", rate)
	}
}

func TestPipelineSaveLoadRoundtrip(t *testing.T) {
	x := trainingSet(5)
	p := forest.NewPipeline([]string{"a", "b"}, testConfig())
	if err := p.Fit(x); err != nil {
		t.Fatalf("Fit: %+v.", err)
	}

	raw, err := p.Save()
	if err != nil {
		t.Fatalf("Save: %+v.", err)
	}
	restored, err := forest.Load(raw)
	if err != nil {
		t.Fatalf("Load: %+v.", err)
	}

	if len(restored.Features) != 2 || restored.Features[0] != "a" {
		t.Fatalf("features lost in roundtrip: %v.", restored.Features)
	}
	if restored.CatalogFingerprint != p.CatalogFingerprint {
		t.Fatal("catalog fingerprint lost in roundtrip.")
	}

	want, err := p.Score(x)
	if err != nil {
		t.Fatalf("Score: %+v.", err)
	}
	got, err := restored.Score(x)
	if err != nil {
		t.Fatalf("restored Score: %+v.", err)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("score %d drifted after roundtrip: %v vs %v.", i, want[i], got[i])
		}
	}

	sum := forest.Checksum(raw)
	if sum == 0 {
		t.Fatal("checksum of a real model should not be zero.")
	}
	raw[len(raw)/2]++
	if forest.Checksum(raw) == sum {
		t.Fatal("checksum ignored a flipped byte.")
	}
}

func TestPipelineSaveUntrained(t *testing.T) {
	p := forest.NewPipeline([]string{"a"}, testConfig())
	if _, err := p.Save(); err == nil {
		t.Fatal("saving an untrained pipeline should fail.")
	}
}

func TestLoadRejectsWrongFormat(t *testing.T) {
	if _, err := forest.Load([]byte(`{"format": 99}`)); err == nil {
		t.Fatal("unknown format should be rejected.")
	}
	if _, err := forest.Load([]byte(`not json`)); err == nil {
		t.Fatal("garbage should be rejected.")
	}
}
