package app

import (
	"context"
	"log"
	"time"

	"commerce-engine/internal/core"
)

// TransitionRecord is one confirmed lifecycle move.
type TransitionRecord struct {
	OrderID string
	From    core.OrderState
	To      core.OrderState
	Actor   string
	At      time.Time
}

// AuditLog receives every confirmed order change. Entries are written only
// after the store has accepted the change.
type AuditLog interface {
	RecordTransition(ctx context.Context, rec TransitionRecord) error
	RecordPaymentStatus(ctx context.Context, change core.PaymentStatusChange) error
}

// LogAudit writes audit entries to the standard logger.
type LogAudit struct{}

func (LogAudit) RecordTransition(_ context.Context, rec TransitionRecord) error {
	log.Printf("audit: order %s estado %s -> %s by %q at %s",
		rec.OrderID, rec.From, rec.To, rec.Actor, rec.At.Format(time.RFC3339))
	return nil
}

func (LogAudit) RecordPaymentStatus(_ context.Context, c core.PaymentStatusChange) error {
	log.Printf("audit: order %s estado_pago %s -> %s by %q at %s",
		c.OrderID, c.From, c.To, c.Actor, c.At.Format(time.RFC3339))
	return nil
}
