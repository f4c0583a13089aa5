package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"seclink_backend/internal/config"
	"seclink_backend/internal/controller"
	"seclink_backend/internal/repository"
	"seclink_backend/internal/service"
	"seclink_backend/pkg/configwatcher"
	"seclink_backend/pkg/database"
	"seclink_backend/pkg/logger"
	"seclink_backend/pkg/mailer"
	"seclink_backend/pkg/monitoring"
	"seclink_backend/pkg/tracing"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services *services
	tracer   *sdktrace.TracerProvider

	// 后台协程（限流清理等）随 Close 退出
	ctx    context.Context
	cancel context.CancelFunc

	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

// stores 服务层依赖的全部存储，生产环境为 gorm/redis 实现
type stores struct {
	accounts      service.AccountStore
	classes       service.ClassStore
	subjects      service.SubjectStore
	students      service.StudentStore
	grades        service.GradeStore
	notifications service.NotificationStore
	materials     service.MaterialStore
	resetTokens   service.ResetTokenStore
	denylist      service.TokenDenylist
}

type services struct {
	auth         *service.AuthService
	reset        *service.PasswordResetService
	account      *service.AccountService
	class        *service.ClassService
	subject      *service.SubjectService
	student      *service.StudentService
	grade        *service.GradeService
	notification *service.NotificationService
	material     *service.MaterialService
}

type controllers struct {
	auth         *controller.AuthController
	account      *controller.AccountController
	class        *controller.ClassController
	subject      *controller.SubjectController
	student      *controller.StudentController
	grade        *controller.GradeController
	notification *controller.NotificationController
	material     *controller.MaterialController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func newStores(db *gorm.DB, rdb *redis.Client) stores {
	return stores{
		accounts:      repository.NewAccountRepository(db),
		classes:       repository.NewClassRepository(db),
		subjects:      repository.NewSubjectRepository(db),
		students:      repository.NewStudentRepository(db),
		grades:        repository.NewGradeRepository(db),
		notifications: repository.NewNotificationRepository(db),
		materials:     repository.NewLearningMaterialRepository(db),
		resetTokens:   repository.NewPasswordResetRepository(db),
		denylist:      repository.NewTokenDenylistRepository(rdb),
	}
}

func newServices(st stores, cfg *config.Config, storage service.StorageProvider, m mailer.Mailer) *services {
	return &services{
		auth:         service.NewAuthService(st.accounts, st.denylist, &cfg.JWT),
		reset:        service.NewPasswordResetService(st.accounts, st.resetTokens, m, cfg),
		account:      service.NewAccountService(st.accounts, st.classes, st.subjects, st.students),
		class:        service.NewClassService(st.classes, st.students),
		subject:      service.NewSubjectService(st.subjects, st.classes, st.students),
		student:      service.NewStudentService(st.students, st.classes, st.subjects, st.accounts),
		grade:        service.NewGradeService(st.grades, st.students, st.subjects, cfg.Grading),
		notification: service.NewNotificationService(st.notifications, st.students, st.accounts),
		material:     service.NewMaterialService(st.materials, st.subjects, st.students, storage, &cfg.Storage),
	}
}

func newControllers(s *services, health *controller.HealthController) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, s.reset),
		account:      controller.NewAccountController(s.account),
		class:        controller.NewClassController(s.class),
		subject:      controller.NewSubjectController(s.subject),
		student:      controller.NewStudentController(s.student, s.material),
		grade:        controller.NewGradeController(s.grade),
		notification: controller.NewNotificationController(s.notification),
		material:     controller.NewMaterialController(s.material),
		health:       health,
	}
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, err
	}

	// release 模式默认不迁移，需显式 -migrate
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}

	app := &App{Config: cfg, DB: db}
	app.ctx, app.cancel = context.WithCancel(context.Background())
	if cfg.MigrateOnly {
		return app, nil
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	app.Redis = rdb

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("seclink-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	monitoring.Init()
	controller.RegisterValidators()

	storage := service.NewStorageService(cfg)
	app.services = newServices(newStores(db, rdb), cfg, storage, mailer.New(&cfg.Mail))
	ctrls := newControllers(app.services, controller.NewHealthController(db, rdb))

	app.Router = newRouter(app.ctx, cfg, ctrls, app.services.auth)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.services.grade.SetGradingConfig(newCfg.Grading)
	})

	return app, nil
}

func (a *App) applyConfig(newCfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		cb(newCfg)
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		configFile := filepath.Join(a.Config.Path, "config.yaml")
		if _, err := os.Stat(configFile); err != nil {
			return
		}
		if err := configwatcher.Watch(ctx, configFile, nil, a.applyConfig); err != nil {
			logger.Log.Warn("config watcher stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(shutdownCtx)
	logger.Log.Info("Server exiting")
}

// Close 释放数据库、Redis 与 tracer
func (a *App) Close(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
