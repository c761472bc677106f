package app

import (
	"context"

	"roomcare/config"
	"roomcare/internal/database"
	"roomcare/internal/events"
	"roomcare/internal/handlers/middleware"
	"roomcare/internal/jobs"
	"roomcare/internal/repositories"
	"roomcare/internal/services"
	"roomcare/internal/websockets"

	adminController "roomcare/internal/controllers/admin"
	authController "roomcare/internal/controllers/auth"
	cleaningController "roomcare/internal/controllers/cleaning"
	notificationController "roomcare/internal/controllers/notifications"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	// Services
	TransactionService *services.TransactionService
	SchedulerService   *services.SchedulerService
	RateLimitService   *services.RateLimitService

	// Repositories
	UserRepo         repositories.UserRepository
	RequestRepo      repositories.CleaningRequestRepository
	NotificationRepo repositories.NotificationRepository

	// Controllers
	AuthController         authController.AuthControllerInterface
	CleaningController     cleaningController.CleaningControllerInterface
	NotificationController notificationController.NotificationControllerInterface
	AdminController        adminController.AdminControllerInterface
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events)

	// Initialize services
	transactionService := services.NewTransactionService(db)
	schedulerService := services.NewSchedulerService()
	rateLimitService := services.NewRateLimitService()

	// Initialize repositories
	repos := repositories.New(db)

	// Initialize controllers
	authController := authController.New(repos.User, db, config)
	notificationController := notificationController.New(
		repos.Notification,
		repos.CleaningRequest,
		repos.User,
		eventBus,
	)
	cleaningController := cleaningController.New(
		repos.CleaningRequest,
		repos.User,
		transactionService,
		notificationController,
	)
	adminController := adminController.New(repos.User, repos.CleaningRequest)

	middleware := middleware.New(authController, rateLimitService, config)
	websocket := websockets.New(authController, eventBus)

	if config.SweepEnabled {
		sweepJob := jobs.NewDueDateSweepJob(notificationController, services.Daily)
		if err := schedulerService.AddJob(sweepJob); err != nil {
			return &App{}, log.Err("failed to register due-date sweep job", err)
		}
		if err := schedulerService.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
		log.Info("Registered due-date sweep job with scheduler")
	}

	app := &App{
		Database:               db,
		Config:                 config,
		Middleware:             middleware,
		Websocket:              websocket,
		EventBus:               eventBus,
		TransactionService:     transactionService,
		SchedulerService:       schedulerService,
		RateLimitService:       rateLimitService,
		UserRepo:               repos.User,
		RequestRepo:            repos.CleaningRequest,
		NotificationRepo:       repos.Notification,
		AuthController:         authController,
		CleaningController:     cleaningController,
		NotificationController: notificationController,
		AdminController:        adminController,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.TransactionService,
		a.SchedulerService,
		a.RateLimitService,
		a.AuthController,
		a.CleaningController,
		a.NotificationController,
		a.AdminController,
		a.UserRepo,
		a.RequestRepo,
		a.NotificationRepo,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.SchedulerService != nil {
		if closeErr := a.SchedulerService.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
