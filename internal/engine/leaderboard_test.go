package engine

import (
	"testing"

	"community-bot-backend/internal/models"
)

func TestLeaderboardStableDescending(t *testing.T) {
	e, st := newTestEngine(t, testConfig())

	seed := []struct {
		id    string
		money int64
	}{
		{"poor", 50},
		{"richA", 200},
		{"richB", 200},
	}
	for _, u := range seed {
		st.Update(u.id, func(rec *models.UserRecord) error {
			rec.Money = u.money
			return nil
		})
	}

	entries, err := e.Leaderboard("viewer", models.MetricMoney, 0)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}

	// Ties keep creation order: richA was created before richB.
	want := []models.LeaderboardEntry{
		{ID: "richA", Value: 200},
		{ID: "richB", Value: 200},
		{ID: "poor", Value: 50},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("rank %d: got %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestLeaderboardLimit(t *testing.T) {
	e, st := newTestEngine(t, testConfig())

	st.Update("a", func(rec *models.UserRecord) error { rec.Money = 10; return nil })
	st.Update("b", func(rec *models.UserRecord) error { rec.Money = 30; return nil })

	entries, err := e.Leaderboard("a", models.MetricMoney, 1)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "b" {
		t.Errorf("limit=1 should return only the top entry, got %v", entries)
	}
}

func TestLeaderboardMetrics(t *testing.T) {
	e, st := newTestEngine(t, testConfig())

	st.Update("a", func(rec *models.UserRecord) error {
		rec.Money = 5
		rec.Level = 9
		rec.TotalOnline = 100
		return nil
	})
	st.Update("b", func(rec *models.UserRecord) error {
		rec.Money = 50
		rec.Level = 2
		rec.TotalOnline = 9000
		return nil
	})

	cases := []struct {
		metric models.Metric
		top    string
	}{
		{models.MetricMoney, "b"},
		{models.MetricLevel, "a"},
		{models.MetricOnline, "b"},
	}
	for _, tc := range cases {
		entries, err := e.Leaderboard("a", tc.metric, 1)
		if err != nil {
			t.Fatalf("leaderboard %s failed: %v", tc.metric, err)
		}
		if entries[0].ID != tc.top {
			t.Errorf("metric %s: expected top %s, got %s", tc.metric, tc.top, entries[0].ID)
		}
	}
}

func TestParseMetricFallsBackToMoney(t *testing.T) {
	if got := models.ParseMetric("bogus"); got != models.MetricMoney {
		t.Errorf("unknown metric should fall back to money, got %s", got)
	}
	if got := models.ParseMetric("level"); got != models.MetricLevel {
		t.Errorf("expected level, got %s", got)
	}
}

func TestLeaderboardDoesNotMutate(t *testing.T) {
	e, st := newTestEngine(t, testConfig())

	st.Update("a", func(rec *models.UserRecord) error { rec.Money = 10; return nil })

	if _, err := e.Leaderboard("a", models.MetricMoney, 0); err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}

	st.View("a", func(rec *models.UserRecord) {
		if rec.CommandUsage != 0 {
			t.Error("ranking must not count as a command use against ranked records")
		}
	})
}
