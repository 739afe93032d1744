package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zhwltlr/ggaba-sub000/internal/chat"
	"github.com/zhwltlr/ggaba-sub000/internal/config"
	"github.com/zhwltlr/ggaba-sub000/internal/controller"
	"github.com/zhwltlr/ggaba-sub000/internal/repository"
	"github.com/zhwltlr/ggaba-sub000/internal/router"
	"github.com/zhwltlr/ggaba-sub000/internal/service"

	"github.com/sirupsen/logrus"
)

type App struct {
	repo       *repository.Repository
	service    *service.Service
	controller *controller.Controller
	stopSig    chan os.Signal
	cfg        *config.Config

	Done chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

func NewApp(opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	setupLogger(app.cfg.LogLevel)

	var store service.Store
	if app.cfg.StoreBackend == "memory" {
		store = repository.NewMemoryStore()
	} else {
		app.repo, err = repository.NewRepository(nil, &app.cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store = app.repo
	}

	var opener chat.ChannelOpener = chat.Noop{}
	if len(app.cfg.ChatServiceURL) > 0 {
		opener = chat.NewClient(app.cfg.ChatServiceURL)
	}

	app.service = service.NewService(store, service.ContextIdentity{}, opener,
		service.WithStoreTimeout(app.cfg.RequestTimeout),
		service.WithDeadlineWindow(app.cfg.DeadlineWindow),
	)
	app.controller = controller.NewController(app.service)

	return app, nil
}

func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-app.stopSig
		logrus.WithField("signal", sig.String()).Info("received signal")
		cancel()
	}()

	server := http.Server{
		Addr:         app.cfg.ServerAddress,
		Handler:      router.NewRouter(app.controller),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("http server error")
		}
	}()

	logrus.WithField("addr", app.cfg.ServerAddress).Info("server started, listening for connections")
	<-ctx.Done()

	timeout, tcancel := context.WithTimeout(context.Background(), time.Second*10)
	defer tcancel()
	logrus.Info("shutting down http server")
	server.Shutdown(timeout)

	if app.repo != nil {
		logrus.Info("closing repository")
		err := app.repo.Close()
		if err != nil {
			logrus.WithError(err).Error("repository closing error")
		}
	}

	close(app.Done)
	logrus.Info("exiting app")
}

func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
