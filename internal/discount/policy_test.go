package discount

import (
	"math"
	"testing"
)

func TestRateTiers(t *testing.T) {
	tests := []struct {
		count int
		rate  int
		level int
	}{
		{-4, 3, 1},
		{0, 3, 1},
		{1, 6, 2},
		{2, 9, 3},
		{3, 9, 3},
		{5, 9, 3},
		{1 << 40, 9, 3},
	}
	for _, tt := range tests {
		got := Compute(1000, tt.count)
		if got.Rate != tt.rate {
			t.Errorf("count=%d: expected rate %d, got %d", tt.count, tt.rate, got.Rate)
		}
		if got.ReferralLevel != tt.level {
			t.Errorf("count=%d: expected level %d, got %d", tt.count, tt.level, got.ReferralLevel)
		}
	}
}

func TestComputeAmounts(t *testing.T) {
	prices := []float64{0, 1, 19.99, 500, 1000, 1234.56}
	for _, price := range prices {
		for count := 0; count < 5; count++ {
			got := Compute(price, count)
			wantAmount := math.Round(price*float64(got.Rate)) / 100
			if math.Abs(got.Amount-wantAmount) > 0.005 {
				t.Errorf("price=%v count=%d: expected amount %v, got %v", price, count, wantAmount, got.Amount)
			}
			if math.Abs(got.FinalPrice-(price-got.Amount)) > 0.005 {
				t.Errorf("price=%v count=%d: final %v != price - amount", price, count, got.FinalPrice)
			}
			if got.FinalPrice > price {
				t.Errorf("price=%v count=%d: final %v exceeds price", price, count, got.FinalPrice)
			}
			if got.OriginalPrice != math.Round(price*100)/100 {
				t.Errorf("price=%v: unexpected original %v", price, got.OriginalPrice)
			}
		}
	}
}

func TestComputeClampsNegativePrice(t *testing.T) {
	got := Compute(-50, 0)
	if got.OriginalPrice != 0 || got.Amount != 0 || got.FinalPrice != 0 {
		t.Errorf("expected zeroed result, got %+v", got)
	}
	if got.Rate != 3 {
		t.Errorf("expected rate 3, got %d", got.Rate)
	}
}

func TestComputeFirstReferral(t *testing.T) {
	got := Compute(1000, 0)
	if got.Amount != 30 || got.FinalPrice != 970 {
		t.Errorf("expected 30 off to 970, got %+v", got)
	}
}

func TestBonus(t *testing.T) {
	got := Bonus(910)
	if got.FinalPrice != 882.7 {
		t.Errorf("expected 882.7, got %v", got.FinalPrice)
	}
	if got.Amount != 27.3 {
		t.Errorf("expected 27.3, got %v", got.Amount)
	}
	if got.PreviousPrice != 910 {
		t.Errorf("expected previous 910, got %v", got.PreviousPrice)
	}
}

func TestPriceAt(t *testing.T) {
	if got := PriceAt(1000, 0); got != 1000 {
		t.Errorf("expected 1000, got %v", got)
	}
	if got := PriceAt(1000, 6); got != 940 {
		t.Errorf("expected 940, got %v", got)
	}
	if got := PriceAt(1000, 9); got != 910 {
		t.Errorf("expected 910, got %v", got)
	}
}

func TestLevelFor(t *testing.T) {
	for rate, want := range map[int]int{0: 0, 3: 1, 6: 2, 9: 3} {
		if got := LevelFor(rate); got != want {
			t.Errorf("rate=%d: expected %d, got %d", rate, want, got)
		}
	}
}

func TestSaved(t *testing.T) {
	if got := Saved(970, 940); got != 30 {
		t.Errorf("expected 30, got %v", got)
	}
	if got := Saved(0.3, 0.1); got != 0.2 {
		t.Errorf("expected 0.2, got %v", got)
	}
}
