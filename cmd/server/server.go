package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/microblog/internal/config"
	"github.com/thereayou/microblog/internal/database"
	"github.com/thereayou/microblog/internal/email"
	"github.com/thereayou/microblog/internal/handlers"
	"github.com/thereayou/microblog/internal/lang"
	"github.com/thereayou/microblog/internal/search"
	"github.com/thereayou/microblog/internal/services"
	"github.com/thereayou/microblog/internal/translate"
	ws "github.com/thereayou/microblog/internal/websocket"
	"github.com/thereayou/microblog/pkg/auth"
)

type Server struct {
	Config     *config.Config
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *ws.Hub
}

// Connect открывает Postgres с зеркалированием в Elasticsearch
func Connect(cfg *config.Config) (*database.Database, error) {
	index, err := search.NewClient(cfg.Search.ElasticsearchURL)
	if err != nil {
		return nil, err
	}
	if !index.Configured() {
		slog.Info("ELASTICSEARCH_URL is not set, search is disabled")
	}
	return database.Connect(cfg.Database.URL, index)
}

// NewServer подключается ко всем внешним зависимостям и собирает сервер
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("connected to database")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, errors.Join(errors.New("invalid REDIS_URL"), err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Join(errors.New("redis connect failed"), err)
	}
	slog.Info("connected to redis")

	return New(cfg, db, rdb), nil
}

// New собирает обработчики и маршруты поверх готовых соединений
func New(cfg *config.Config, db *database.Database, rdb *redis.Client) *Server {
	jwtMgr := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL)
	hub := ws.NewHub()

	mailer := email.NewSender(cfg.Mail.Server, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.Sender)
	notifier := services.NewNotifier(hub)
	reset := services.NewPasswordReset(db, jwtMgr, mailer, cfg.Mail.Sender, cfg.Server.BaseURL)

	h := Handlers{
		Auth:      handlers.NewAuthHandler(db, jwtMgr, rdb, reset),
		User:      handlers.NewUserHandler(db, hub, cfg.App.PostsPerPage),
		Post:      handlers.NewPostHandler(db, lang.New(cfg.App.Languages), cfg.App.PostsPerPage),
		Message:   handlers.NewMessageHandler(db, notifier, cfg.App.PostsPerPage),
		Translate: handlers.NewTranslateHandler(translate.New(cfg.Translator.Key, cfg.Translator.Region)),
		WebSocket: handlers.NewWebSocketHandler(hub, cfg.Server.AllowedOrigins),
		Reporter:  services.NewErrorReporter(mailer, cfg.Mail.Sender, cfg.Mail.Admins),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	APIEndpoints(router, h, jwtMgr, rdb, db)

	return &Server{
		Config:     cfg,
		Router:     router,
		DB:         db,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
	}
}

// Run обслуживает запросы, пока не отменён ctx, затем мягко останавливается
func (s *Server) Run(ctx context.Context) error {
	go s.Hub.Run()
	defer s.Hub.Stop()

	srv := &http.Server{
		Addr:              ":" + s.Config.Server.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", s.Config.Server.Port, "env", s.Config.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server exited")
	return nil
}

// Close освобождает соединения с хранилищами
func (s *Server) Close() error {
	return errors.Join(s.DB.Close(), s.Redis.Close())
}
