package models

import "time"

// DailyReward is the outcome of a successful daily claim.
type DailyReward struct {
	Reward       int64 `json:"reward"`
	ExpGained    int64 `json:"exp_gained"`
	LeveledUp    bool  `json:"leveled_up"`
	LevelUpBonus int64 `json:"level_up_bonus,omitempty"`
	Level        int   `json:"level"`
	Exp          int64 `json:"exp"`
	Money        int64 `json:"money"`
}

// GachaResult is the outcome of a successful draw.
type GachaResult struct {
	Item          string `json:"item"`
	JackpotBonus  int64  `json:"jackpot_bonus,omitempty"`
	Money         int64  `json:"money"`
	InventorySize int    `json:"inventory_size"`
}

// ProfileView is the read-model for one record. OnlineSeconds projects an
// in-progress session on top of the folded total without mutating it.
type ProfileView struct {
	ID            string    `json:"id"`
	Status        string    `json:"status,omitempty"`
	Money         int64     `json:"money"`
	Level         int       `json:"level"`
	Exp           int64     `json:"exp"`
	OnlineSeconds int64     `json:"online_seconds"`
	Online        bool      `json:"online"`
	Inventory     []string  `json:"inventory"`
	CommandUsage  int64     `json:"command_usage"`
	JoinedAt      time.Time `json:"joined_at"`
}

type LeaderboardEntry struct {
	ID    string `json:"id"`
	Value int64  `json:"value"`
}

// Metric selects the leaderboard ordering.
type Metric string

const (
	MetricMoney  Metric = "money"
	MetricLevel  Metric = "level"
	MetricOnline Metric = "online"
)

// ParseMetric maps a query value to a supported metric. Anything
// unrecognized falls back to money.
func ParseMetric(s string) Metric {
	switch Metric(s) {
	case MetricLevel:
		return MetricLevel
	case MetricOnline:
		return MetricOnline
	default:
		return MetricMoney
	}
}
