package engine

import (
	"math/rand"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"community-bot-backend/internal/models"
	"community-bot-backend/internal/ratelimit"
	"community-bot-backend/internal/store"
)

const (
	// expPerLevel * level is the exp threshold for the next level-up.
	expPerLevel = 100
	// levelUpBonusPerLevel * newLevel money is granted on level-up.
	levelUpBonusPerLevel = 50

	maxStatusLen = 100
)

// Config carries the externally supplied tuning for the progression rules.
type Config struct {
	CommandCooldown     time.Duration
	LeaderboardCooldown time.Duration

	DailyBase       int64
	DailyLevelBonus int64
	DailyExp        int64
	DailyWait       time.Duration

	GachaCost  int64
	GachaTable []GachaItem
	JackpotMin int64
	JackpotMax int64

	LeaderboardLimit int
}

func DefaultConfig() Config {
	return Config{
		CommandCooldown:     3 * time.Second,
		LeaderboardCooldown: 10 * time.Second,
		DailyBase:           100,
		DailyLevelBonus:     10,
		DailyExp:            25,
		DailyWait:           24 * time.Hour,
		GachaCost:           50,
		GachaTable:          DefaultGachaTable(),
		JackpotMin:          100,
		JackpotMax:          500,
		LeaderboardLimit:    10,
	}
}

// Engine applies the progression rules against the record store. Every
// mutating operation passes the cooldown gate first, then runs as a single
// read-modify-write cycle inside store.Update, so two concurrent draws can
// never both observe a pre-deduction balance.
type Engine struct {
	store  *store.Store
	gate   *ratelimit.Cooldown
	cfg    Config
	logger *zap.Logger

	broadcaster Broadcaster

	// rng is only drawn inside store.Update callbacks, which serialize.
	rng *rand.Rand
	now func() time.Time
}

func New(st *store.Store, gate *ratelimit.Cooldown, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		store:  st,
		gate:   gate,
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// SetBroadcaster wires the optional push channel for profile updates. Must
// be called before the engine starts receiving events.
func (e *Engine) SetBroadcaster(b Broadcaster) {
	e.broadcaster = b
}

// ClaimDaily grants the daily reward if at least DailyWait has passed since
// the previous claim. Reward money scales with level; gained exp can
// trigger at most one level-up per claim.
func (e *Engine) ClaimDaily(userID string) (*models.DailyReward, error) {
	if err := e.admit(userID, e.cfg.CommandCooldown); err != nil {
		return nil, err
	}

	var out models.DailyReward
	err := e.store.Update(userID, func(rec *models.UserRecord) error {
		now := e.now()
		if rec.LastDaily != nil {
			if elapsed := now.Sub(*rec.LastDaily); elapsed < e.cfg.DailyWait {
				return &AlreadyClaimedError{RetryAfter: e.cfg.DailyWait - elapsed}
			}
		}

		reward := e.cfg.DailyBase + int64(rec.Level)*e.cfg.DailyLevelBonus
		rec.Money += reward
		rec.Exp += e.cfg.DailyExp
		claimed := now
		rec.LastDaily = &claimed
		rec.CommandUsage++

		out = models.DailyReward{Reward: reward, ExpGained: e.cfg.DailyExp}

		// Level-up is checked once per claim, not in a loop: the single
		// daily exp gain cannot cross two thresholds.
		if threshold := int64(rec.Level) * expPerLevel; rec.Exp >= threshold {
			rec.Exp -= threshold
			rec.Level++
			bonus := int64(rec.Level) * levelUpBonusPerLevel
			rec.Money += bonus
			out.LeveledUp = true
			out.LevelUpBonus = bonus
		}

		out.Level = rec.Level
		out.Exp = rec.Exp
		out.Money = rec.Money
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("daily reward claimed",
		zap.String("user", userID),
		zap.Int64("reward", out.Reward),
		zap.Bool("leveled_up", out.LeveledUp))
	e.notify(userID)
	return &out, nil
}

// DrawGacha deducts the fixed cost and appends a weighted-random item to
// the inventory. An insufficient balance fails before any mutation.
func (e *Engine) DrawGacha(userID string) (*models.GachaResult, error) {
	if err := e.admit(userID, e.cfg.CommandCooldown); err != nil {
		return nil, err
	}

	var out models.GachaResult
	err := e.store.Update(userID, func(rec *models.UserRecord) error {
		if rec.Money < e.cfg.GachaCost {
			return &InsufficientFundsError{Required: e.cfg.GachaCost, Available: rec.Money}
		}

		rec.Money -= e.cfg.GachaCost
		rec.CommandUsage++

		item := drawItem(e.rng, e.cfg.GachaTable)
		rec.Inventory = append(rec.Inventory, item.Label)

		out = models.GachaResult{Item: item.Label}
		if item.Jackpot {
			out.JackpotBonus = e.cfg.JackpotMin + e.rng.Int63n(e.cfg.JackpotMax-e.cfg.JackpotMin+1)
			rec.Money += out.JackpotBonus
		}
		out.Money = rec.Money
		out.InventorySize = len(rec.Inventory)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("gacha draw",
		zap.String("user", userID),
		zap.String("item", out.Item),
		zap.Int64("jackpot_bonus", out.JackpotBonus))
	e.notify(userID)
	return &out, nil
}

// Profile returns the read-model for targetID (the requester when empty).
// Viewing a profile counts as a command use against the viewed record, but
// the in-progress session is only projected, never folded.
func (e *Engine) Profile(requesterID, targetID string) (*models.ProfileView, error) {
	if err := e.admit(requesterID, e.cfg.CommandCooldown); err != nil {
		return nil, err
	}
	if targetID == "" {
		targetID = requesterID
	}

	var out *models.ProfileView
	err := e.store.Update(targetID, func(rec *models.UserRecord) error {
		rec.CommandUsage++
		out = e.viewOf(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus replaces the free-text relationship status.
func (e *Engine) SetStatus(userID, status string) (*models.ProfileView, error) {
	if err := e.admit(userID, e.cfg.CommandCooldown); err != nil {
		return nil, err
	}
	if status == "" {
		return nil, &InvalidInputError{Reason: "status must not be empty"}
	}
	if utf8.RuneCountInString(status) > maxStatusLen {
		return nil, &InvalidInputError{Reason: "status too long"}
	}

	var out *models.ProfileView
	err := e.store.Update(userID, func(rec *models.UserRecord) error {
		rec.Status = status
		rec.CommandUsage++
		out = e.viewOf(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.notify(userID)
	return out, nil
}

// admit consults the cooldown gate shared by all command operations.
func (e *Engine) admit(userID string, cooldown time.Duration) error {
	if userID == "" {
		return &InvalidInputError{Reason: "user id must not be empty"}
	}
	if ok, retry := e.gate.Admit(userID, cooldown); !ok {
		return &RateLimitedError{RetryAfter: retry}
	}
	return nil
}

// viewOf builds the read-model, projecting an in-progress session into the
// displayed online time without touching the stored total.
func (e *Engine) viewOf(rec *models.UserRecord) *models.ProfileView {
	online := rec.TotalOnline
	if rec.LastOnline != nil {
		if elapsed := e.now().Sub(*rec.LastOnline); elapsed > 0 {
			online += int64(elapsed / time.Second)
		}
	}
	inventory := make([]string, len(rec.Inventory))
	copy(inventory, rec.Inventory)

	return &models.ProfileView{
		ID:            rec.ID,
		Status:        rec.Status,
		Money:         rec.Money,
		Level:         rec.Level,
		Exp:           rec.Exp,
		OnlineSeconds: online,
		Online:        rec.Online(),
		Inventory:     inventory,
		CommandUsage:  rec.CommandUsage,
		JoinedAt:      rec.JoinedAt,
	}
}
