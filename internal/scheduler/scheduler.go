// Package scheduler runs periodic reminder jobs for records stuck in
// pending-approval states.
package scheduler

import (
	"context"
	"time"

	"buildflow/internal/model"
	"buildflow/internal/websocket"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier pushes digest events to connected clients.
type Notifier interface {
	Publish(evt websocket.Event)
}

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	cron *cron.Cron
	db   *gorm.DB
	hub  Notifier
	log  *zap.Logger
}

// New wires the pending-approvals digest job on the given cron schedule.
func New(db *gorm.DB, hub Notifier, log *zap.Logger, spec string) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Scheduler{
		cron: cron.New(),
		db:   db,
		hub:  hub,
		log:  log,
	}

	if _, err := s.cron.AddFunc(spec, s.pendingApprovalsDigest); err != nil {
		return nil, err
	}

	return s, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop halts the cron runner and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// pendingApprovalsDigest counts records waiting on an approver and broadcasts
// the totals so dashboards can nudge the right people.
func (s *Scheduler) pendingApprovalsDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var pendingMRs int64
	if err := s.db.WithContext(ctx).Model(&model.MaterialRequest{}).
		Where("status IN ?", []string{model.MRStatusRequested, model.MRStatusEngineerApproved}).
		Count(&pendingMRs).Error; err != nil {
		s.log.Error("failed to count pending material requests", zap.Error(err))
		return
	}

	var pendingBills int64
	if err := s.db.WithContext(ctx).Model(&model.Bill{}).
		Where("status = ?", model.BillStatusGenerated).
		Count(&pendingBills).Error; err != nil {
		s.log.Error("failed to count pending bills", zap.Error(err))
		return
	}

	s.log.Info("pending approvals digest",
		zap.Int64("material_requests", pendingMRs),
		zap.Int64("bills", pendingBills),
	)

	if s.hub != nil {
		s.hub.Publish(websocket.Event{
			Type: websocket.EventDigest,
			Detail: map[string]interface{}{
				"pending_material_requests": pendingMRs,
				"pending_bills":             pendingBills,
			},
		})
	}
}
