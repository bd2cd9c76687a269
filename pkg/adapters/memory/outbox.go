package memory

import (
	"context"
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Delivery is one message recorded by an Outbox.
type Delivery struct {
	ChatID    int64
	MessageID int
	Edited    bool
	Reply     domain.Reply
}

// Outbox implements ports.Notifier and ports.Editor by recording deliveries.
type Outbox struct {
	mu     sync.Mutex
	sent   []Delivery
	nextID int
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{}
}

// Send records a new message.
func (o *Outbox) Send(ctx context.Context, chatID int64, reply *domain.Reply) (domain.Receipt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	o.sent = append(o.sent, Delivery{ChatID: chatID, MessageID: o.nextID, Reply: *reply})
	return domain.Receipt{MessageID: o.nextID}, nil
}

// Edit records a replacement of messageID.
func (o *Outbox) Edit(ctx context.Context, chatID int64, messageID int, reply *domain.Reply) (domain.Receipt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, Delivery{ChatID: chatID, MessageID: messageID, Edited: true, Reply: *reply})
	return domain.Receipt{MessageID: messageID}, nil
}

// Deliveries returns a snapshot of everything recorded so far.
func (o *Outbox) Deliveries() []Delivery {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Delivery, len(o.sent))
	copy(out, o.sent)
	return out
}

// To returns the deliveries addressed to chatID.
func (o *Outbox) To(chatID int64) []Delivery {
	var out []Delivery
	for _, d := range o.Deliveries() {
		if d.ChatID == chatID {
			out = append(out, d)
		}
	}
	return out
}

// Last returns the most recent delivery, if any.
func (o *Outbox) Last() (Delivery, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sent) == 0 {
		return Delivery{}, false
	}
	return o.sent[len(o.sent)-1], true
}

// Reset forgets every delivery.
func (o *Outbox) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = nil
}
