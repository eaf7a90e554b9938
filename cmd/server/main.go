package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ImSudipBiswas/swiftcart/internal/config"
	"github.com/ImSudipBiswas/swiftcart/internal/database"
	"github.com/ImSudipBiswas/swiftcart/internal/handler"
	"github.com/ImSudipBiswas/swiftcart/internal/mailer"
	"github.com/ImSudipBiswas/swiftcart/internal/media"
	"github.com/ImSudipBiswas/swiftcart/internal/middleware"
	"github.com/ImSudipBiswas/swiftcart/internal/queue"
	"github.com/ImSudipBiswas/swiftcart/internal/repository"
	"github.com/ImSudipBiswas/swiftcart/internal/router"
	"github.com/ImSudipBiswas/swiftcart/internal/service"
	"github.com/ImSudipBiswas/swiftcart/internal/token"
)

func main() {
	_ = godotenv.Load() // optional in containers; env may come from the orchestrator

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	colors := repository.NewColorRepo(db)
	sizes := repository.NewSizeRepo(db)

	codec := &token.Codec{
		Access:            token.KindConfig{Secret: cfg.AccessSecret, TTL: cfg.AccessTTL},
		Refresh:           token.KindConfig{Secret: cfg.RefreshSecret, TTL: cfg.RefreshTTL},
		EmailVerification: token.KindConfig{Secret: cfg.EmailTokenSecret, TTL: cfg.EmailTokenTTL},
	}

	uploader := media.NewCloudinary(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret)
	mailQueue := service.MailQueue{}

	sender := &mailer.SMTPSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	}
	go func() {
		if err := queue.StartMailConsumer(sender, cfg.DashboardURL, cfg.StoreURL); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	rdb := config.NewRedisClient()
	cache := middleware.CachePublicReads(config.LoadCacheConfig(), rdb)
	rateLimit := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	authenticate := middleware.Authenticate(codec, users, cfg.Production())
	requireAdmin := middleware.RequireAdmin()

	authH := handler.NewAuthHandler(cfg, users, codec, uploader, mailQueue)
	userH := handler.NewUserHandler(cfg, users, uploader)
	categoryH := handler.NewCategoryHandler(categories, colors, sizes, uploader)
	colorH := handler.NewColorHandler(colors, categories)
	sizeH := handler.NewSizeHandler(sizes, categories)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = router.ErrorHandler
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, rateLimit, authenticate)
	router.RegisterUser(e, userH, authenticate)
	router.RegisterCatalog(e, categoryH, colorH, sizeH, cache, authenticate, requireAdmin)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
