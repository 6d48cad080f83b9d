package engine

import (
	"time"

	"go.uber.org/zap"

	"community-bot-backend/internal/models"
)

// SetPresence routes a presence transition to the session state machine.
// Presence events are delivered by the platform, not typed by users, so
// they bypass the command cooldown gate; duplicates are idempotent anyway.
func (e *Engine) SetPresence(userID string, online bool) error {
	if userID == "" {
		return &InvalidInputError{Reason: "user id must not be empty"}
	}
	var err error
	if online {
		err = e.markOnline(userID)
	} else {
		err = e.markOffline(userID)
	}
	if err != nil {
		return err
	}
	e.notify(userID)
	return nil
}

// markOnline opens a session. A second online event while a session is in
// progress keeps the original start time.
func (e *Engine) markOnline(userID string) error {
	return e.store.Update(userID, func(rec *models.UserRecord) error {
		if rec.LastOnline != nil {
			return nil
		}
		started := e.now()
		rec.LastOnline = &started
		e.logger.Debug("user came online", zap.String("user", userID))
		return nil
	})
}

// markOffline folds the elapsed session into the running total exactly once
// and clears the session marker. Clock skew must never decrement the total,
// so a negative interval folds as zero.
func (e *Engine) markOffline(userID string) error {
	return e.store.Update(userID, func(rec *models.UserRecord) error {
		if rec.LastOnline == nil {
			return nil
		}
		elapsed := e.now().Sub(*rec.LastOnline)
		seconds := int64(elapsed / time.Second)
		if seconds > 0 {
			rec.TotalOnline += seconds
		}
		rec.LastOnline = nil
		e.logger.Debug("user went offline",
			zap.String("user", userID), zap.Int64("session_seconds", seconds))
		return nil
	})
}
