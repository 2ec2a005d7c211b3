package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	// DefaultSchedule запуск раз в минуту
	DefaultSchedule = "@every 1m"

	// DefaultBatchSize максимум напоминаний за один проход
	DefaultBatchSize = 100

	defaultRunTimeout = 50 * time.Second

	statusSent   = "sent"
	statusFailed = "failed"
)

// Dispatcher периодически отправляет напоминания, время которых наступило
type Dispatcher struct {
	reminderRepo   ReminderRepository
	bookingRepo    BookingRepository
	engagementRepo EngagementRepository
	notifier       Notifier
	metrics        Metrics
	timeProvider   TimeProvider
	logger         Logger

	schedule  string
	batchSize uint64

	mu   sync.Mutex
	cron *cron.Cron
}

// NewDispatcher создает диспетчер напоминаний
// Пустой schedule означает DefaultSchedule, нулевой batchSize - DefaultBatchSize
func NewDispatcher(
	reminderRepo ReminderRepository,
	bookingRepo BookingRepository,
	engagementRepo EngagementRepository,
	notifier Notifier,
	schedule string,
	batchSize uint64,
	metrics Metrics,
	logger Logger,
) *Dispatcher {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	return &Dispatcher{
		reminderRepo:   reminderRepo,
		bookingRepo:    bookingRepo,
		engagementRepo: engagementRepo,
		notifier:       notifier,
		metrics:        metrics,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
		schedule:       schedule,
		batchSize:      batchSize,
	}
}

// Start регистрирует задачу в cron и запускает планировщик
// Проход не запускается, пока не завершился предыдущий
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cron != nil {
		return ErrAlreadyStarted
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cron.DiscardLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	_, err := c.AddFunc(d.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
		defer cancel()

		sent, failed, err := d.RunOnce(ctx)
		if err != nil {
			d.logger.Error("ReminderDispatcher: run failed: %v", err)
			return
		}
		if sent+failed > 0 {
			d.logger.Info("ReminderDispatcher: sent=%d, failed=%d", sent, failed)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, d.schedule, err)
	}

	c.Start()
	d.cron = c
	d.logger.Info("ReminderDispatcher: started with schedule %q", d.schedule)
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущего прохода или отмены ctx
func (d *Dispatcher) Stop(ctx context.Context) {
	d.mu.Lock()
	c := d.cron
	d.cron = nil
	d.mu.Unlock()

	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
		d.logger.Info("ReminderDispatcher: stopped")
	case <-ctx.Done():
		d.logger.Warn("ReminderDispatcher: stop timed out: %v", ctx.Err())
	}
}

// RunOnce отправляет все наступившие напоминания одним проходом
// Ошибка отправки одного напоминания не влияет на остальные
func (d *Dispatcher) RunOnce(ctx context.Context) (sent int, failed int, err error) {
	now := d.timeProvider.Now()

	due, err := d.reminderRepo.ListDue(ctx, now, d.batchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	for _, item := range due {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}
		if d.dispatch(ctx, item, now) {
			sent++
		} else {
			failed++
		}
	}

	return sent, failed, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, item *domain.DueReminder, now time.Time) bool {
	reminder := item.Reminder
	booking := &item.Booking

	if err := d.notifier.NotifyReminder(ctx, booking, reminder.Kind); err != nil {
		d.logger.Warn("ReminderDispatcher: reminder id=%s (%s) for booking id=%s failed: %v",
			reminder.ID, reminder.Kind, booking.ID, err)
		if markErr := d.reminderRepo.MarkFailed(ctx, reminder.ID, err.Error()); markErr != nil {
			d.logger.Error("ReminderDispatcher: failed to mark reminder id=%s as failed: %v", reminder.ID, markErr)
		}
		d.metrics.IncReminder(statusFailed)
		return false
	}

	if err := d.reminderRepo.MarkSent(ctx, reminder.ID, now); err != nil {
		d.logger.Error("ReminderDispatcher: failed to mark reminder id=%s as sent: %v", reminder.ID, err)
	}
	if err := d.bookingRepo.SetLastReminderAt(ctx, booking.ID, now); err != nil {
		d.logger.Warn("ReminderDispatcher: failed to stamp booking id=%s: %v", booking.ID, err)
	}
	if err := d.engagementRepo.UpdateStage(ctx, booking.ID, domain.EngagementReminded); err != nil {
		d.logger.Warn("ReminderDispatcher: failed to update engagement of booking id=%s: %v", booking.ID, err)
	}

	d.metrics.IncReminder(statusSent)
	return true
}
