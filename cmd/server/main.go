package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/audioshop/audioshop-api/internal/atomic"
	"github.com/audioshop/audioshop-api/internal/config"
	"github.com/audioshop/audioshop-api/internal/database"
	"github.com/audioshop/audioshop-api/internal/handler"
	"github.com/audioshop/audioshop-api/internal/media"
	"github.com/audioshop/audioshop-api/internal/payment"
	"github.com/audioshop/audioshop-api/internal/queue"
	"github.com/audioshop/audioshop-api/internal/repository"
	"github.com/audioshop/audioshop-api/internal/router"
	"github.com/audioshop/audioshop-api/internal/service"
	"github.com/audioshop/audioshop-api/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	store, err := database.Open(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatalf("mongo indexes: %v", err)
	}

	s3store, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AWSBucket)
	cancel()
	if err != nil {
		log.Fatalf("s3 client: %v", err)
	}

	users := repository.NewUserRepo(store.Users)
	products := repository.NewProductRepo(store.Products)
	comments := repository.NewCommentRepo(store.Comments)
	runner := atomic.NewSessionRunner(store.Client)
	images := media.NewManager(s3store)
	payments := payment.NewStripeProvider(cfg.StripeKey, cfg.ClientURL)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:      cfg,
		Auth:     handler.NewAuthHandler(cfg, users),
		Products: handler.NewProductHandler(cfg, products, comments, users, images, runner),
		Comments: handler.NewCommentHandler(comments, products, users, runner),
		Checkout: handler.NewCheckoutHandler(payments, service.NewQueuePublisher()),
		Users:    users,
		Redis:    config.NewRedisClient(),
	})

	go func() {
		if err := queue.StartCheckoutConsumer(); err != nil {
			log.Printf("checkout consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
