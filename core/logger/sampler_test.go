package logger

import "testing"

func TestRatioSamplerCycle(t *testing.T) {
	s := newRatioSampler(1, 4)

	var passed int
	for i := 0; i < 40; i++ {
		if s.Allow() {
			passed++
		}
	}
	if passed != 10 {
		t.Fatalf("expected 10 of 40 to pass at 1/4, got %d", passed)
	}
}

func TestRatioSamplerDisabled(t *testing.T) {
	s := newRatioSampler(0, 0)
	for i := 0; i < 5; i++ {
		if !s.Allow() {
			t.Fatal("disabled sampler must pass everything")
		}
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := []struct {
		spec     string
		num, den int
	}{
		{"", 0, 0},
		{"1/50", 1, 50},
		{" 2 / 10 ", 2, 10},
		{"50", 1, 50},
		{"0", 0, 0},
		{"x/y", 0, 0},
		{"abc", 0, 0},
	}
	for _, tc := range cases {
		num, den := parseRatioSpec(tc.spec)
		if num != tc.num || den != tc.den {
			t.Errorf("parseRatioSpec(%q) = %d/%d, want %d/%d", tc.spec, num, den, tc.num, tc.den)
		}
	}
}
