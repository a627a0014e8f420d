package engine

import (
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/engine/events"
)

// DefaultHealth is used when a confrontation sets no initial health.
const DefaultHealth = 5

// Penalty is the health lost for presenting the wrong evidence, or dealt to
// the opponent for presenting the right one.
const Penalty = 1

// Health is the score of a confrontation's health contest.
type Health struct {
	Player, Opponent       int
	PlayerMax, OpponentMax int
}

// NewHealth returns full health for both sides of c.
func NewHealth(c *conversation.Confrontation) Health {
	h := Health{PlayerMax: c.PlayerInitialHealth, OpponentMax: c.OpponentInitialHealth}
	if h.PlayerMax <= 0 {
		h.PlayerMax = DefaultHealth
	}
	if h.OpponentMax <= 0 {
		h.OpponentMax = DefaultHealth
	}
	h.Player, h.Opponent = h.PlayerMax, h.OpponentMax
	return h
}

// Damage lowers the player's or the opponent's health by amount, clamping
// to 0. It returns the remaining health.
func (h *Health) Damage(player bool, amount int) int {
	hp := &h.Opponent
	if player {
		hp = &h.Player
	}
	*hp = max(*hp-amount, 0)
	return *hp
}

// PlayerDefeated reports whether the player has run out of health.
func (h Health) PlayerDefeated() bool {
	return h.Player <= 0
}

// penalize applies a health change in a confrontation. Outside one it does
// nothing.
func (r *Runner) penalize(player bool) {
	if r.conf == nil {
		return
	}
	r.health.Damage(player, Penalty)
	r.emit(events.HealthChanged, "player", r.health.Player, "opponent", r.health.Opponent)
}

// afterWrong runs once the wrong-evidence actions finish: the player is
// defeated, or retry runs.
func (r *Runner) afterWrong(retry func()) func() {
	return func() {
		if r.conf != nil && r.health.PlayerDefeated() {
			r.defeat()
			return
		}
		if retry != nil {
			retry()
		}
	}
}

// defeat abandons the current topic and runs the player-defeated actions
// of the active topic selection.
func (r *Runner) defeat() {
	r.emit(events.PlayerDefeated)
	sel := r.selection
	if sel == nil || !r.unwind(owned(sel)) {
		return
	}
	r.push(&frame{list: sel.PlayerDefeated, owner: sel})
}
