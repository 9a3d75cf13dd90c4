package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cadi-backend/internal/config"
	pg "cadi-backend/internal/infra/db/postgres"
	"cadi-backend/internal/infra/i18n"
	"cadi-backend/internal/infra/logging"
	"cadi-backend/internal/infra/mail"
	"cadi-backend/internal/infra/metrics"
	"cadi-backend/internal/infra/ops"
	red "cadi-backend/internal/infra/redis"
	"cadi-backend/internal/infra/sched"
	"cadi-backend/internal/infra/web"
	"cadi-backend/internal/infra/worker"
	"cadi-backend/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Config & logging ----
	cfg, err := config.LoadConfig()
	if err != nil {
		l := logging.New(config.LogConfig{}, false)
		l.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	logger.Info().Str("version", version).Bool("dev", cfg.Runtime.Dev).Msg("starting cadi backend")

	// ---- Postgres ----
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second, logging.Component(logger, "db_pool"))

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	limiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	tr, err := i18n.NewTranslator(i18n.LocalesFS, "es")
	if err != nil {
		logger.Fatal().Err(err).Msg("translations")
	}

	mailer, err := mail.New(cfg.Mail, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("mailer")
	}

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepoCacheDecorator(pg.NewPostgresUserRepo(pool), redisClient, cfg.Redis.TTL)
	prefRepo := pg.NewPreferenceRepo(pool)
	activityRepo := pg.NewActivityRepo(pool)
	activityEnrollRepo := pg.NewActivityEnrollmentRepo(pool)
	tournamentRepo := pg.NewTournamentRepo(pool)
	tournamentEnrollRepo := pg.NewTournamentEnrollmentRepo(pool)
	projectRepo := pg.NewProjectRepo(pool)
	projectEnrollRepo := pg.NewProjectEnrollmentRepo(pool)
	notifRepo := pg.NewNotificationRepo(pool)
	logRepo := pg.NewNotificationLogRepo(pool)
	campaignRepo := pg.NewCampaignRepo(pool)

	// ---- Workers ----
	mailPool := worker.NewPool(cfg.Workers.Mail, logger)
	mailPool.Start(ctx)
	defer mailPool.Stop()

	// ---- Use cases ----
	notifSettings := usecase.NotificationSettings{
		DedupWindow:          cfg.Notifications.DedupWindow,
		SendEmailImmediately: cfg.Notifications.SendEmailImmediately,
		Location:             cfg.Location(),
		ReleaseBatch:         cfg.Scheduler.ReleaseBatch,
	}
	userUC := usecase.NewUserUseCase(userRepo, prefRepo, tm, logging.Component(logger, "UserUC"))
	notifUC := usecase.NewNotificationUseCase(notifRepo, logRepo, userRepo, prefRepo, activityEnrollRepo, tm, mailer, tr, notifSettings, logging.Component(logger, "NotificationUC"))
	activityUC := usecase.NewActivityUseCase(activityRepo, activityEnrollRepo, userRepo, notifUC, tm, logging.Component(logger, "ActivityUC"))
	enrollUC := usecase.NewEnrollmentUseCase(activityRepo, activityEnrollRepo, tm, logging.Component(logger, "EnrollmentUC"))
	checkinUC := usecase.NewCheckinUseCase(activityRepo, activityEnrollRepo, tm, limiter, usecase.CheckinSettings{
		TokenTTL:    cfg.Checkin.TokenTTL,
		RateLimit:   cfg.Checkin.RateLimit,
		RateWindow:  cfg.Checkin.RateWindow,
		FrontendURL: cfg.Checkin.FrontendURL,
	}, logging.Component(logger, "CheckinUC"))
	tournamentUC := usecase.NewTournamentUseCase(tournamentRepo, tournamentEnrollRepo, tm, cfg.Location(), logging.Component(logger, "TournamentUC"))
	projectUC := usecase.NewProjectUseCase(projectRepo, projectEnrollRepo, tm, logging.Component(logger, "ProjectUC"))
	campaignUC := usecase.NewCampaignUseCase(campaignRepo, notifRepo, logRepo, userRepo, prefRepo, tm, mailer, tr, locker, mailPool, notifSettings, logging.Component(logger, "CampaignUC"))

	// ---- Scheduler ----
	scheduler, err := sched.NewScheduler(cfg.Location(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler")
	}
	if err := scheduler.Add(ctx, sched.ReleaseJob(cfg.Scheduler.ReleaseInterval, notifUC)); err != nil {
		logger.Fatal().Err(err).Msg("scheduler: release job")
	}
	if err := scheduler.Add(ctx, sched.CampaignJob(cfg.Scheduler.CampaignInterval, campaignUC)); err != nil {
		logger.Fatal().Err(err).Msg("scheduler: campaign job")
	}
	scheduler.Start()

	// ---- HTTP ----
	api := web.NewServer(web.UseCases{
		Users:         userUC,
		Activities:    activityUC,
		Enrollments:   enrollUC,
		Checkins:      checkinUC,
		Tournaments:   tournamentUC,
		Projects:      projectUC,
		Notifications: notifUC,
		Campaigns:     campaignUC,
	}, web.NewAuthManager(cfg.Auth), tr, cfg.HTTP.RequestTimeout, logging.Component(logger, "http"))
	opsSrv := ops.NewServer(map[string]ops.Pinger{"postgres": pool, "redis": redisClient}, logger)

	errc := make(chan error, 2)
	go func() { errc <- api.Start(cfg.HTTP) }()
	go func() { errc <- opsSrv.Start(cfg.Ops.Port) }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		if err != nil {
			logger.Error().Err(err).Msg("server stopped")
		}
	}

	// ---- Graceful shutdown ----
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops shutdown")
	}
	if err := scheduler.Shutdown(); err != nil {
		logger.Warn().Err(err).Msg("scheduler shutdown")
	}
	stop()
	logger.Info().Msg("bye")
}
