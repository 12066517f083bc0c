package http

import (
	"context"
	"net/http"
	"time"

	"Omamori/internal/config"
	jwtMiddleware "Omamori/internal/middleware/jwt"
	alertService "Omamori/internal/modules/alert/application/service"
	alertPersistence "Omamori/internal/modules/alert/infrastructure/persistence"
	"Omamori/internal/modules/alert/infrastructure/mq"
	"Omamori/internal/modules/alert/infrastructure/queue"
	alertHandler "Omamori/internal/modules/alert/interface/http"
	monitoringService "Omamori/internal/modules/monitoring/application/service"
	"Omamori/internal/modules/monitoring/infrastructure/cache"
	monitoringPersistence "Omamori/internal/modules/monitoring/infrastructure/persistence"
	monitoringHandler "Omamori/internal/modules/monitoring/interface/http"
	"Omamori/internal/modules/monitoring/interface/scheduler"
	orgService "Omamori/internal/modules/organization/application/service"
	orgPersistence "Omamori/internal/modules/organization/infrastructure/persistence"
	orgHandler "Omamori/internal/modules/organization/interface/http"
	userService "Omamori/internal/modules/user/application/service"
	userPersistence "Omamori/internal/modules/user/infrastructure/persistence"
	userHandler "Omamori/internal/modules/user/interface/http"
	"Omamori/pkg/metrics"
	"Omamori/pkg/redis"
	"Omamori/pkg/ssl"
	"Omamori/pkg/ws"
	"Omamori/pkg/zlog"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Server owns the gin engine and the two background workers.
type Server struct {
	GE        *gin.Engine
	monitor   *scheduler.MonitorScheduler
	relay     *queue.OutboxRelay
	publisher mq.Publisher
	cancel    context.CancelFunc
}

// NewServer wires every module. pub may be nil when Kafka is not configured.
func NewServer(conf *config.Config, db *gorm.DB, pub mq.Publisher, topic string) (*Server, error) {
	settings, err := monitoringService.SettingsFromConfig(conf.MonitoringConfig)
	if err != nil {
		return nil, err
	}

	GE := gin.New()
	GE.Use(gin.Logger(), gin.Recovery(), metrics.Middleware())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	if conf.MainConfig.TLS {
		GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	wsHub := ws.NewHub()
	latestRiskTTL := time.Duration(conf.MonitoringConfig.LatestRiskTTLSeconds) * time.Second

	userRepo := userPersistence.NewUserInfoRepository(db)
	orgUow := orgPersistence.NewOrganizationUnitOfWork(db)
	memberRepo := orgPersistence.NewMembershipRepository(db)
	alertRepo := alertPersistence.NewAlertRepository(db)
	alertUow := alertPersistence.NewAlertUnitOfWork(db)
	outboxRepo := alertPersistence.NewOutboxRepository(db)
	sessionRepo := monitoringPersistence.NewWorkSessionRepository(db)
	logRepo := monitoringPersistence.NewSafetyLogRepository(db)
	assessRepo := monitoringPersistence.NewRiskAssessmentRepository(db)
	monitoringUow := monitoringPersistence.NewMonitoringUnitOfWork(db)
	riskCache := cache.NewLatestRiskCache(latestRiskTTL)

	userSvc := userService.NewUserInfoService(userRepo)
	orgSvc := orgService.NewOrganizationService(orgUow, memberRepo, userRepo)
	alertSvc := alertService.NewAlertService(alertUow, alertRepo, sessionRepo, orgSvc, wsHub)
	sessionSvc := monitoringService.NewWorkSessionService(monitoringUow, sessionRepo, riskCache, orgSvc, settings)
	logSvc := monitoringService.NewSafetyLogService(monitoringUow, sessionRepo, logRepo, riskCache, orgSvc, alertSvc, settings)
	riskSvc := monitoringService.NewRiskAssessmentService(monitoringUow, sessionRepo, logRepo, assessRepo, riskCache, orgSvc,
		monitoringService.NewRiskAssessor(settings.Risk))
	timeoutSvc := monitoringService.NewTimeoutMonitorService(monitoringUow, alertSvc, conf.MonitoringConfig.OutboxBatchSize)

	userH := userHandler.NewUserInfoHandler(userSvc)
	orgH := orgHandler.NewOrganizationHandler(orgSvc)
	alertH := alertHandler.NewAlertHandler(alertSvc)
	wsH := alertHandler.NewWsHandler(wsHub, userRepo)
	monH := monitoringHandler.NewMonitoringHandler(sessionSvc, logSvc, riskSvc)

	GE.GET("/healthz", func(c *gin.Context) {
		ctx := c.Request.Context()
		checks := gin.H{"database": "ok", "redis": "disabled"}
		up := true

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			checks["database"] = "down"
			up = false
		}
		// redis is optional; only a configured but unreachable instance fails the check
		if redis.IsConnected() {
			if err := redis.Ping(ctx); err != nil {
				checks["redis"] = "down"
				up = false
			} else {
				checks["redis"] = "ok"
			}
		}

		if !up {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
	})
	GE.GET("/metrics", metrics.Handler())
	GE.POST("/login", userH.Login)
	GE.POST("/register", userH.Register)
	GE.GET("/wss", wsH.Connect)

	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth())
	authed.GET("/organizations", orgH.ListMine)
	authed.POST("/organizations", orgH.Create)
	authed.GET("/organizations/:id/members", orgH.ListMembers)
	authed.POST("/organizations/:id/members", orgH.AddMember)
	authed.GET("/organizations/:id/alerts", alertH.ListByOrganization)
	authed.GET("/organizations/:id/work_sessions", monH.ListOrganizationWorkSessions)

	authed.POST("/work_sessions", monH.StartWorkSession)
	authed.GET("/work_sessions/:id", monH.GetWorkSession)
	authed.POST("/work_sessions/:id/finish", monH.FinishWorkSession)
	authed.POST("/work_sessions/:id/cancel", monH.CancelWorkSession)
	authed.POST("/work_sessions/:id/safety_logs", monH.CreateSafetyLog)
	authed.GET("/work_sessions/:id/safety_logs", monH.ListSafetyLogs)
	authed.DELETE("/work_sessions/:id/safety_logs/:log_id", monH.UndoSafetyLog)
	authed.GET("/work_sessions/:id/risk", monH.LatestRisk)
	authed.POST("/safety_logs/:id/assess", monH.AssessRisk)

	authed.POST("/alerts", alertH.Create)
	authed.GET("/alerts/:id", alertH.Get)
	authed.PATCH("/alerts/:id/status", alertH.UpdateStatus)

	s := &Server{
		GE:        GE,
		monitor:   scheduler.NewMonitorScheduler(timeoutSvc, conf.MonitoringConfig.MonitorPollSpec),
		publisher: pub,
	}
	if pub != nil {
		pollInterval := time.Duration(conf.MonitoringConfig.OutboxPollMillis) * time.Millisecond
		s.relay = queue.NewOutboxRelay(outboxRepo, pub, topic, conf.MonitoringConfig.OutboxBatchSize, conf.MonitoringConfig.OutboxMaxRetries, pollInterval)
	}
	return s, nil
}

// StartWorkers starts the timeout monitor and, with Kafka, the outbox relay.
func (s *Server) StartWorkers() error {
	if err := s.monitor.Start(); err != nil {
		return err
	}
	if s.relay == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		if err := s.relay.Run(ctx); err != nil && ctx.Err() == nil {
			zlog.Error("outbox relay stopped: " + err.Error())
		}
	}()
	return nil
}

func (s *Server) StopWorkers() {
	s.monitor.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
}
