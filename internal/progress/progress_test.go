package progress

import "testing"

func TestLevel(t *testing.T) {
	tests := []struct {
		xp   int64
		want int64
	}{
		{0, 1}, {999, 1}, {1000, 2}, {1450, 2}, {2000, 3}, {-5, 1},
	}
	for _, tt := range tests {
		if got := Level(tt.xp); got != tt.want {
			t.Errorf("Level(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestAward(t *testing.T) {
	xp, level, err := Award(950, BuyReward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if xp != 1050 || level != 2 {
		t.Errorf("got xp=%d level=%d, want 1050/2", xp, level)
	}

	xp, level, err = Award(300, -50)
	if err != ErrNegativeReward {
		t.Fatalf("expected ErrNegativeReward, got %v", err)
	}
	if xp != 300 || level != 1 {
		t.Errorf("rejected award changed xp to %d level %d", xp, level)
	}
}

func TestProgress(t *testing.T) {
	within, frac := Progress(2350)
	if within != 350 {
		t.Errorf("within = %d, want 350", within)
	}
	if frac != 0.35 {
		t.Errorf("fraction = %v, want 0.35", frac)
	}
}

func TestBadgesCatalog(t *testing.T) {
	badges := Badges()
	if len(badges) != 6 {
		t.Fatalf("expected 6 badges, got %d", len(badges))
	}
	if badges[0].Name != "First Launch" || badges[5].Name != "Oracle" {
		t.Errorf("unexpected catalog order: %q ... %q", badges[0].Name, badges[5].Name)
	}
}
