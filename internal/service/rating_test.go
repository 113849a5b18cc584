package service

import "testing"

func TestNextRating(t *testing.T) {
	tests := []struct {
		name             string
		rating, opponent int
		score            float64
		want             int
	}{
		{"win against equal", 1200, 1200, 1, 1216},
		{"loss against equal", 1200, 1200, 0, 1184},
		{"draw against equal", 1200, 1200, 0.5, 1200},
		{"win against much stronger", 1200, 1600, 1, 1229},
		{"loss against much stronger", 1200, 1600, 0, 1197},
		{"win against much weaker", 1600, 1200, 1, 1603},
		{"floor is enforced", 110, 1200, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextRating(tt.rating, tt.opponent, tt.score); got != tt.want {
				t.Errorf("nextRating(%d, %d, %v) = %d, want %d",
					tt.rating, tt.opponent, tt.score, got, tt.want)
			}
		})
	}
}

func TestExpectedScoreSymmetry(t *testing.T) {
	a := expectedScore(1350, 1180)
	b := expectedScore(1180, 1350)
	if diff := a + b - 1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected scores sum to %v, want 1", a+b)
	}
	if a <= 0.5 {
		t.Errorf("higher rated side expectation = %v, want > 0.5", a)
	}
}
