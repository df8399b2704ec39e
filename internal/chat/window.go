package chat

import "paperchat/internal/models"

// Window returns the most recent k turns in order. k comes from
// configuration; the full history lives in storage untouched.
func Window(history []models.ChatTurn, k int) []models.ChatTurn {
	if k <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) <= k {
		return history
	}
	return history[len(history)-k:]
}
