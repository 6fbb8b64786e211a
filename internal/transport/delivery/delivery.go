// Package delivery bridges sent introductions to the platform's messaging
// channels. The real channels (in-app inbox, email digest) live in the member
// platform; this client hands records over and reports failures back.
package delivery

import (
	"context"

	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/domain/intro"
)

// LogDeliverer is the development deliverer: it records the handoff in the
// service log instead of calling the platform.
type LogDeliverer struct {
	logger *zap.Logger
}

// NewLogDeliverer creates a log-only deliverer.
func NewLogDeliverer(logger *zap.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}

// Deliver logs the introduction handoff.
func (d *LogDeliverer) Deliver(_ context.Context, i *intro.Introduction) error {
	d.logger.Info("introduction delivered",
		zap.String("introduction_id", i.ID()),
		zap.String("requester_id", i.RequesterID()),
		zap.String("target_id", i.TargetID()),
		zap.String("channel", i.Channel()),
		zap.String("rationale", i.Rationale()),
	)
	return nil
}
