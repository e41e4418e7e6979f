package tracker

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProfitEvent describes one profit or loss occurrence emitted by the
// reconciliation engine.
type ProfitEvent struct {
	ID         string `json:"id"`
	AccountKey string `json:"account_key"`
	SessionID  string `json:"session_id"`
	// Delta is the incremental profit value for the tick that produced the
	// event; negative for a loss.
	Delta int64 `json:"delta"`
	// Total is the accumulated profit after the tick.
	Total       int64 `json:"total"`
	TimestampMs int64 `json:"timestamp_ms"`
}

// ProfitPublisher receives profit notifications from the tracker. Each
// implementation may process or drop events as it sees fit; it must handle
// its own errors and retries internally, and must not block the tick it is
// called from for longer than it takes to hand the event off.
type ProfitPublisher interface {
	// ProfitDelta is called whenever a tick produces a nonzero profit
	// delta, or a manual adjustment is applied.
	ProfitDelta(ctx context.Context, logger Logger, event *ProfitEvent)

	// ProfitTotal is called whenever the accumulated profit total changes.
	ProfitTotal(ctx context.Context, logger Logger, accountKey string, total int64)
}

func newProfitEvent(ledger *AccountLedger, delta, total int64) *ProfitEvent {
	return &ProfitEvent{
		ID:          uuid.NewString(),
		AccountKey:  ledger.Key(),
		SessionID:   ledger.SessionID,
		Delta:       delta,
		Total:       total,
		TimestampMs: time.Now().UnixMilli(),
	}
}
