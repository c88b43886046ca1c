package ledger

import "github.com/avries/Asset-Ledger-Backend/internal/model"

// Subscribe registers for aggregate snapshots. After every committed
// mutation the ledger recomputes the aggregate and pushes it onto each
// subscriber channel. Channels are buffered with capacity one and a slow
// subscriber only ever misses intermediate snapshots, never the latest.
func (l *PositionLedger) Subscribe() <-chan model.AggregateSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan model.AggregateSummary, 1)
	l.subscribers = append(l.subscribers, ch)
	return ch
}

// Unsubscribe removes a channel previously returned by Subscribe and
// closes it.
func (l *PositionLedger) Unsubscribe(ch <-chan model.AggregateSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, sub := range l.subscribers {
		if sub == ch {
			l.subscribers = append(l.subscribers[:i], l.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// notifyLocked pushes the freshly recomputed aggregate to every
// subscriber. A full buffer holds a stale snapshot; it is replaced rather
// than blocking the mutation path.
func (l *PositionLedger) notifyLocked() {
	summary := l.aggregateLocked()
	for _, ch := range l.subscribers {
		select {
		case ch <- summary:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- summary:
			default:
			}
		}
	}
}
