package services

import (
	"backoffice/utils"
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService запускает периодические задачи по cron-расписанию
type SchedulerService struct {
	cron    *cron.Cron
	timeout time.Duration
}

// NewSchedulerService создает новый экземпляр SchedulerService
func NewSchedulerService() *SchedulerService {
	logger := cron.PrintfLogger(utils.Log)
	return &SchedulerService{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		timeout: 5 * time.Minute,
	}
}

// Schedule регистрирует задачу. Ошибки задачи логируются, следующий запуск происходит по расписанию.
func (s *SchedulerService) Schedule(spec, name string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		err := job(ctx)
		utils.LogOperation(name, start, err)
	})
	if err != nil {
		return fmt.Errorf("неверное расписание %q для %s: %w", spec, name, err)
	}
	return nil
}

// Start запускает планировщик
func (s *SchedulerService) Start() {
	s.cron.Start()
	utils.LogInfo("Планировщик запущен, задач: %d", len(s.cron.Entries()))
}

// Stop останавливает планировщик и ждет завершения выполняющихся задач
func (s *SchedulerService) Stop() context.Context {
	return s.cron.Stop()
}
