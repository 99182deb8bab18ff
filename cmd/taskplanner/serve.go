package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"task-planner/internal/api"
	"task-planner/internal/bot"
	"task-planner/internal/repository"
	"task-planner/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the Telegram bot and the digest scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	userRepo := repository.NewUserRepository(db)
	vocabRepo := repository.NewVocabularyRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	settingsSvc := service.NewSettingsService(userRepo, vocabRepo, log)
	querySvc := service.NewQueryService(taskRepo, settingsSvc, log)
	taskSvc := service.NewTaskService(userRepo, taskRepo, settingsSvc, log)
	reminderSvc := service.NewReminderService(querySvc)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(api.NewHandler(settingsSvc, querySvc, taskSvc, cfg.APIPageSize, log)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 2)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if cfg.BotEnabled() {
		telegramBot, err := bot.New(cfg.TelegramToken, userRepo, settingsSvc, querySvc, taskSvc, reminderSvc, cfg.BotPageSize, log.Named("bot"))
		if err != nil {
			return err
		}

		scheduler := service.NewSchedulerService(time.Local, log.Named("scheduler"))
		if err := scheduleReports(scheduler, telegramBot); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()

		go func() {
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("bot stopped: %w", err)
			}
		}()
	} else {
		log.Info("TELEGRAM_TOKEN is empty, bot and digests disabled")
	}

	select {
	case <-ctx.Done():
	case err = <-errCh:
		log.Error("service failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Warn("http shutdown", zap.Error(serr))
	}
	log.Info("shutdown complete")
	return err
}

// scheduleReports registers the digest job: at REPORT_TIME every day when
// set, otherwise every REPORT_INTERVAL_HOURS.
func scheduleReports(scheduler *service.SchedulerService, telegramBot *bot.Bot) error {
	job := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("report", zap.Error(err))
		}
	}

	switch {
	case cfg.ReportTime != "":
		if _, err := scheduler.ScheduleDaily(cfg.ReportTime, job); err != nil {
			return fmt.Errorf("schedule reports: %w", err)
		}
	case cfg.ReportInterval() > 0:
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval(), job); err != nil {
			return fmt.Errorf("schedule reports: %w", err)
		}
	}
	return nil
}
