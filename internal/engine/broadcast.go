package engine

import "community-bot-backend/internal/models"

// Broadcaster receives a fresh profile view after every successful mutation
// so connected clients can render updates without polling. Implementations
// must not block.
type Broadcaster interface {
	ProfileUpdated(userID string, profile *models.ProfileView)
}

// notify pushes the current profile to the broadcaster, if any. Reads the
// record without counting a command use.
func (e *Engine) notify(userID string) {
	if e.broadcaster == nil {
		return
	}
	var view *models.ProfileView
	e.store.View(userID, func(rec *models.UserRecord) {
		view = e.viewOf(rec)
	})
	e.broadcaster.ProfileUpdated(userID, view)
}
