package jobs

import (
	"context"
	"rentkart_server/services"
	"rentkart_server/structs"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the background sweeps: flipping overdue rentals to late
// and purging expired verification codes. All expressions carry a seconds
// field and run in UTC so a fleet of instances agrees on the schedule.
type Scheduler struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	orderService *services.OrderService
	otpService   *services.OTPService
	cron         *cron.Cron
}

func NewScheduler(
	logger *gecho.Logger,
	cfg *structs.Config,
	orderService *services.OrderService,
	otpService *services.OTPService,
) *Scheduler {
	return &Scheduler{
		logger:       logger,
		cfg:          cfg,
		orderService: orderService,
		otpService:   otpService,
		cron:         cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
	}
}

// Start registers the jobs and kicks off the cron loop. Registration
// failures are fatal: a silently missing sweep is worse than a crash at
// boot.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.MarkLateRentals, s.runMarkLateRentals); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.Scheduler.PurgeExpiredOTP, s.runPurgeExpiredOTP); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		gecho.Field("mark_late_rentals", s.cfg.Scheduler.MarkLateRentals),
		gecho.Field("purge_expired_otp", s.cfg.Scheduler.PurgeExpiredOTP),
	)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runMarkLateRentals() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := s.orderService.MarkLateRentals(ctx, time.Now())
	if err != nil {
		s.logger.Error("Late rental sweep failed", gecho.Field("error", err))
		return
	}
	if count > 0 {
		s.logger.Info("Late rental sweep done", gecho.Field("marked_late", count))
	}
}

func (s *Scheduler) runPurgeExpiredOTP() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := s.otpService.PurgeExpired(ctx)
	if err != nil {
		s.logger.Error("Verification code purge failed", gecho.Field("error", err))
		return
	}
	if count > 0 {
		s.logger.Info("Verification code purge done", gecho.Field("purged", count))
	}
}
