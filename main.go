package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "pickup-backend/cmd/api"
	"pickup-backend/internal/admin/delivery"
	mpdomain "pickup-backend/internal/marketplace/domain"
	mprepo "pickup-backend/internal/marketplace/repository"
	mpusecase "pickup-backend/internal/marketplace/usecase"
	"pickup-backend/internal/notification"
	notifdomain "pickup-backend/internal/notification/domain"
	notifrepo "pickup-backend/internal/notification/repository"
	"pickup-backend/internal/pickup/domain"
	"pickup-backend/internal/pickup/repository"
	"pickup-backend/internal/pickup/usecase"
	"pickup-backend/internal/trigger"
	"pickup-backend/pkg/config"
	"pickup-backend/pkg/database"
	"pickup-backend/pkg/fcm"
	pkgfirebase "pickup-backend/pkg/firebase"
	"pickup-backend/pkg/logger"

	firebase "firebase.google.com/go/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// stores groups the repositories of the selected backend
type stores struct {
	requests      repository.RequestRepository
	collectors    repository.CollectorRepository
	users         repository.UserRepository
	chats         repository.ChatRepository
	notifications notifrepo.NotificationRepository
	items         mprepo.ItemRepository
	close         func()
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Firebase backs Firestore and FCM. Without it the service runs with
	// pushes disabled, which is fine for the postgres and memory stores.
	var app *firebase.App
	if cfg.GoogleProjectID != "" || cfg.FirebaseCredentials != "" {
		var err error
		app, err = pkgfirebase.NewApp(ctx, cfg.GoogleProjectID, cfg.FirebaseCredentials)
		if err != nil {
			log.Warn("firebase unavailable", zap.Error(err))
		}
	}

	st, err := openStores(ctx, cfg, app, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer st.close()

	var sender notification.Sender
	if app != nil {
		client, err := fcm.NewClient(ctx, app, log)
		if err != nil {
			log.Warn("FCM client unavailable, push notifications disabled", zap.Error(err))
		} else {
			sender = client
		}
	}
	notifier := notification.NewService(sender, st.notifications, log)

	deps := usecase.Deps{
		Requests:   st.requests,
		Collectors: st.collectors,
		Users:      st.users,
		Chats:      st.chats,
		Notifier:   notifier,
		Picker:     usecase.NewRandomPicker(time.Now().UnixNano()),
		Log:        log,
	}
	assignment := usecase.NewAssignmentEngine(deps)
	marketplace := mpusecase.NewExpirySweeper(st.items, st.users, st.collectors, notifier, log)

	dispatcher := trigger.NewDispatcher(trigger.Handlers{
		Assignment:   assignment,
		Reassignment: usecase.NewReassignmentEngine(deps, cfg.ReassignBufferHours),
		Status:       usecase.NewStatusNotifier(deps),
		Chat:         usecase.NewChatNotifier(deps),
		Missed:       usecase.NewMissedSweeper(deps, cfg.Location),
		Reminder:     usecase.NewReminderSweeper(deps),
		Marketplace:  marketplace,
	}, log)

	scheduler, err := trigger.NewScheduler(ctx, map[trigger.SweepKind]string{
		trigger.SweepUnassigned:  cfg.ScheduleUnassigned,
		trigger.SweepDueDate:     cfg.ScheduleDueDate,
		trigger.SweepReminder:    cfg.ScheduleReminder,
		trigger.SweepMarketplace: cfg.ScheduleMarketplace,
		trigger.SweepMissed:      cfg.ScheduleMissed,
	}, dispatcher, log, cron.WithLocation(cfg.Location))
	if err != nil {
		log.Fatal("invalid sweep schedule", zap.Error(err))
	}

	adminHandler := delivery.NewAdminHandler(assignment, st.requests, st.collectors, marketplace, dispatcher, log)
	server := api.NewHandler(adminHandler, cfg, log).Server(":" + cfg.Port)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})

	if cfg.GoogleProjectID != "" {
		subscriber, err := trigger.NewSubscriber(ctx, cfg.GoogleProjectID, cfg.PubSubTopic, cfg.PubSubSubscription, cfg.FirebaseCredentials, dispatcher, log)
		if err != nil {
			log.Warn("pubsub subscriber unavailable, document events disabled", zap.Error(err))
		} else {
			defer subscriber.Close()
			g.Go(func() error {
				if err := subscriber.Start(gctx); err != nil {
					log.Error("subscriber stopped", zap.Error(err))
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		log.Error("shutdown with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func openStores(ctx context.Context, cfg *config.Config, app *firebase.App, log *zap.Logger) (*stores, error) {
	switch cfg.StoreBackend {
	case "firestore":
		if app == nil {
			return nil, errors.New("firestore store needs GOOGLE_PROJECT_ID or FIREBASE_CREDENTIALS")
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		return &stores{
			requests:      repository.NewFirestoreRequestRepository(client),
			collectors:    repository.NewFirestoreCollectorRepository(client),
			users:         repository.NewFirestoreUserRepository(client),
			chats:         repository.NewFirestoreChatRepository(client),
			notifications: notifrepo.NewFirestoreNotificationRepository(client),
			items:         mprepo.NewFirestoreItemRepository(client),
			close:         func() { _ = client.Close() },
		}, nil

	case "postgres":
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&domain.Request{}, &domain.Collector{}, &domain.User{}, &domain.Chat{}, &notifdomain.Notification{}, &mpdomain.Item{}); err != nil {
			return nil, err
		}
		return &stores{
			requests:      repository.NewGormRequestRepository(db),
			collectors:    repository.NewGormCollectorRepository(db),
			users:         repository.NewGormUserRepository(db),
			chats:         repository.NewGormChatRepository(db),
			notifications: notifrepo.NewGormNotificationRepository(db),
			items:         mprepo.NewGormItemRepository(db),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil

	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		store := repository.NewMemoryStore()
		return &stores{
			requests:      store.Requests(),
			collectors:    store.Collectors(),
			users:         store.Users(),
			chats:         store.Chats(),
			notifications: notifrepo.NewMemoryNotificationRepository(),
			items:         mprepo.NewMemoryItemRepository(),
			close:         func() {},
		}, nil
	}
	return nil, errors.New("unknown STORE_BACKEND " + cfg.StoreBackend)
}
