package services

import (
	"testing"

	"pgregory.net/rapid"
)

// Property 8: only the owner is processed and everyone else gets the refusal.
func TestProperty8_OnlyOwnerIsProcessed(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ownerID := rapid.Int64Range(1, 1<<40).Draw(rt, "ownerID")
		userID := rapid.Int64Range(1, 1<<40).Draw(rt, "userID")
		m := NewAccessMiddleware(ownerID)

		ok, msg := m.ShouldProcessMessage(userID)
		if userID == ownerID {
			if !ok || msg != "" {
				rt.Fatalf("owner rejected: ok=%v msg=%q", ok, msg)
			}
			return
		}
		if ok || msg != RefusalMessage {
			rt.Fatalf("stranger %d processed: ok=%v msg=%q", userID, ok, msg)
		}
	})
}
