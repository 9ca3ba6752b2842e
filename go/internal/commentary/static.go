package commentary

import (
	"context"
	"fmt"
)

// StaticNarrator produces canned lines without any network call
type StaticNarrator struct{}

// Narrate implements Narrator.Narrate
func (StaticNarrator) Narrate(_ context.Context, req Request) string {
	if req.Sold && req.LeaderName != "" && req.LeaderName != NoLeader {
		return fmt.Sprintf("%s goes to %s for %s. What a signing!", req.PlayerName, req.LeaderName, req.Amount.String())
	}
	return fmt.Sprintf("No takers for %s today. %s", req.PlayerName, FallbackEmpty)
}
