package mfcc

import (
	"errors"
	"math"
	"testing"
)

func sine(n, sampleRate int, freq, amp float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return x
}

func TestHammingWindow(t *testing.T) {
	w := hammingWindow(2048)
	if len(w) != 2048 {
		t.Fatalf("expected 2048, got %d", len(w))
	}
	// Periodic Hamming: w[0] = 0.08, peak of 1.0 at n/2
	if math.Abs(w[0]-0.08) > 1e-12 {
		t.Errorf("w[0] = %f, want 0.08", w[0])
	}
	if math.Abs(w[1024]-1.0) > 1e-12 {
		t.Errorf("w[1024] = %f, want 1.0", w[1024])
	}
	// Symmetric around n/2
	if math.Abs(w[1]-w[2047]) > 1e-12 {
		t.Errorf("w[1] = %f, w[2047] = %f, want equal", w[1], w[2047])
	}
}

func TestPadCenter(t *testing.T) {
	w := padCenter([]float64{1, 1}, 6)
	want := []float64{0, 0, 1, 1, 0, 0}
	for i := range want {
		if w[i] != want[i] {
			t.Fatalf("padCenter = %v, want %v", w, want)
		}
	}
}

func TestMelConversion(t *testing.T) {
	tests := []struct {
		hz, mel float64
	}{
		{0, 0},
		{500, 7.5},
		{1000, 15},
		{6400, 42},
	}
	for _, tt := range tests {
		if got := hzToMel(tt.hz); math.Abs(got-tt.mel) > 1e-9 {
			t.Errorf("hzToMel(%g) = %f, want %f", tt.hz, got, tt.mel)
		}
		if got := melToHz(tt.mel); math.Abs(got-tt.hz) > 1e-6 {
			t.Errorf("melToHz(%g) = %f, want %f", tt.mel, got, tt.hz)
		}
	}
}

func TestMelFilterBank(t *testing.T) {
	bank := melFilterBank(128, 2048, 22050, 0, 11025)
	if len(bank) != 128 {
		t.Fatalf("expected 128 filters, got %d", len(bank))
	}
	for i, f := range bank {
		if len(f) != 1025 {
			t.Fatalf("filter %d: expected 1025 bins, got %d", i, len(f))
		}
		hasNonZero := false
		for _, v := range f {
			if v < 0 {
				t.Fatalf("filter %d has negative weight %f", i, v)
			}
			if v > 0 {
				hasNonZero = true
			}
		}
		if !hasNonZero {
			t.Errorf("filter %d is all zeros", i)
		}
	}
}

func TestDCTMatrix(t *testing.T) {
	basis := dctMatrix(20, 128)
	x := make([]float64, 128)
	for i := range x {
		x[i] = 3
	}
	for k, row := range basis {
		sum := 0.0
		for i, b := range row {
			sum += b * x[i]
		}
		want := 0.0
		if k == 0 {
			want = 3 * math.Sqrt(128)
		}
		if math.Abs(sum-want) > 1e-9 {
			t.Errorf("coefficient %d = %f, want %f", k, sum, want)
		}
	}

	// Rows are orthonormal.
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			dot := 0.0
			for i := range basis[a] {
				dot += basis[a][i] * basis[b][i]
			}
			want := 0.0
			if a == b {
				want = 1
			}
			if math.Abs(dot-want) > 1e-9 {
				t.Errorf("<row%d,row%d> = %f, want %f", a, b, dot, want)
			}
		}
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"zero hop", func(c *Config) { c.HopSize = 0 }},
		{"window larger than fft", func(c *Config) { c.WindowSize = c.FFTSize + 1 }},
		{"too many coefficients", func(c *Config) { c.NumMFCC = c.NumMels + 1 }},
		{"inverted range", func(c *Config) { c.LowFreq = 12000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if _, err := New(cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNumFrames(t *testing.T) {
	ext, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got := ext.NumFrames(55125); got != 108 {
		t.Errorf("NumFrames(55125) = %d, want 108", got)
	}

	cfg := DefaultConfig()
	cfg.Center = false
	ext, err = New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := ext.NumFrames(2047); got != 0 {
		t.Errorf("uncentered NumFrames(2047) = %d, want 0", got)
	}
	if got := ext.NumFrames(2048 + 512*3); got != 4 {
		t.Errorf("uncentered NumFrames = %d, want 4", got)
	}
}

func TestExtract(t *testing.T) {
	ext, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	pcm := sine(55125, 22050, 440, 0.5)
	m, err := ext.Extract(pcm)
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 20 {
		t.Fatalf("expected 20 coefficients, got %d", len(m))
	}
	for k, row := range m {
		if len(row) != 108 {
			t.Fatalf("coefficient %d: expected 108 frames, got %d", k, len(row))
		}
		for f, v := range row {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("m[%d][%d] = %f (not finite)", k, f, v)
			}
		}
	}

	// A loud tone has far more energy than silence, so c0 of a middle
	// frame must be well above the all-floor value.
	silent, err := ext.Extract(make([]float64, 55125))
	if err != nil {
		t.Fatal(err)
	}
	if m[0][54] <= silent[0][54] {
		t.Errorf("c0 tone = %f, silence = %f, want tone > silence", m[0][54], silent[0][54])
	}
}

func TestExtract_Silence(t *testing.T) {
	ext, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	m, err := ext.Extract(make([]float64, 4096))
	if err != nil {
		t.Fatal(err)
	}
	// Every mel band sits at the -100 dB floor, so only c0 is non-zero.
	want := float32(-100 * math.Sqrt(128))
	if math.Abs(float64(m[0][0]-want)) > 1e-3 {
		t.Errorf("c0 = %f, want %f", m[0][0], want)
	}
	for k := 1; k < len(m); k++ {
		if math.Abs(float64(m[k][0])) > 1e-3 {
			t.Errorf("c%d = %f, want 0", k, m[k][0])
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	ext, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	pcm := sine(30000, 22050, 220, 0.3)
	a, err := ext.Extract(pcm)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ext.Extract(pcm)
	if err != nil {
		t.Fatal(err)
	}
	for k := range a {
		for f := range a[k] {
			if math.Float32bits(a[k][f]) != math.Float32bits(b[k][f]) {
				t.Fatalf("m[%d][%d] differs: %v vs %v", k, f, a[k][f], b[k][f])
			}
		}
	}
}

func TestExtract_Empty(t *testing.T) {
	ext, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ext.Extract(nil); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func BenchmarkExtract(b *testing.B) {
	ext, err := New(DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	pcm := sine(55125, 22050, 440, 0.5)

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		_, _ = ext.Extract(pcm)
	}
}
