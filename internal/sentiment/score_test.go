package sentiment_test

import (
	"testing"
	"time"

	"github.com/atlas-desktop/orb-backtester/internal/sentiment"
)

func TestScoreDeterminism(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	a := sentiment.ScoreFor("AAPL", date)
	b := sentiment.ScoreFor("AAPL", date)
	if a == nil || b == nil {
		t.Fatal("expected scores for a known ticker")
	}
	if *a != *b {
		t.Fatalf("identical inputs diverged: %+v != %+v", a, b)
	}

	other := sentiment.ScoreFor("AAPL", date.AddDate(0, 0, 1))
	if *a == *other {
		t.Fatal("different dates should generally differ")
	}
}

func TestScoreRange(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		s := sentiment.ScoreFor("TSLA", date.AddDate(0, 0, i))
		if s.Composite < -100 || s.Composite > 100 {
			t.Fatalf("composite %v out of range on %s", s.Composite, s.Date)
		}
		switch s.Label {
		case "bullish", "bearish", "neutral":
		default:
			t.Fatalf("unexpected label %q", s.Label)
		}
	}
}

func TestScoreUnknownTicker(t *testing.T) {
	if s := sentiment.ScoreFor("WAT", time.Now()); s != nil {
		t.Fatal("unknown ticker must yield a nil score")
	}
}
