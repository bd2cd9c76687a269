package observability

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Instrument wraps n so every delivery is counted. The result implements
// ports.Editor only when n does.
func Instrument(n ports.Notifier, m *Metrics) ports.Notifier {
	base := countingNotifier{next: n, metrics: m}
	if ed, ok := n.(ports.Editor); ok {
		return countingEditor{countingNotifier: base, editor: ed}
	}
	return base
}

type countingNotifier struct {
	next    ports.Notifier
	metrics *Metrics
}

func (c countingNotifier) Send(ctx context.Context, chatID int64, reply *domain.Reply) (domain.Receipt, error) {
	rc, err := c.next.Send(ctx, chatID, reply)
	c.metrics.Delivered(err)
	return rc, err
}

type countingEditor struct {
	countingNotifier
	editor ports.Editor
}

func (c countingEditor) Edit(ctx context.Context, chatID int64, messageID int, reply *domain.Reply) (domain.Receipt, error) {
	rc, err := c.editor.Edit(ctx, chatID, messageID, reply)
	c.metrics.Delivered(err)
	return rc, err
}
