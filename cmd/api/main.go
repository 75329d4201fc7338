package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"elevateu/hr-coach/internal/config"
	"elevateu/hr-coach/internal/handlers"
	"elevateu/hr-coach/internal/live"
	"elevateu/hr-coach/internal/middleware"
	"elevateu/hr-coach/internal/repositories"
	"elevateu/hr-coach/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewPracticeSessionRepository(db)
	questionRepo := repositories.NewQuestionRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}
	audioProcessor := services.NewAudioProcessor(cfg.Audio.MP3Bitrate)
	resumeExtractor := services.NewResumeExtractor()
	tokens := middleware.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if cfg.Auth.JWTSecret == "change-me" {
		log.Println("⚠️  JWT_SECRET is not set, using the development default")
	}
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI. Without it the server still runs: the live coach
	// answers with a configuration notice and uploads are refused.
	var (
		geminiService services.GeminiService
		coach         services.InterviewCoach
		transcriber   services.Transcriber
	)
	geminiService, err = services.NewGeminiService(services.GeminiOptions{
		APIKey:             cfg.Gemini.APIKey,
		ChatModel:          cfg.Gemini.ChatModel,
		EmbedModel:         cfg.Gemini.EmbedModel,
		TranscriptionModel: cfg.Gemini.TranscriptionModel,
		MaxRetries:         cfg.Worker.RetryMaxAttempts,
		RetryInitialDelay:  cfg.Worker.RetryInitialDelay,
	})
	if err != nil {
		log.Printf("⚠️  Gemini AI unavailable, AI features disabled: %v", err)
	} else {
		coach = services.NewInterviewCoach(geminiService, cfg.Live.MaxAnalysisContextChars)
		transcriber = services.NewTranscriber(geminiService)
		log.Println("✅ Gemini AI initialized successfully")
	}

	// Initialize Qdrant (optional, only used for reference answers)
	var questionIndex services.QuestionIndex
	if cfg.Qdrant.Enabled && geminiService != nil {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			log.Printf("⚠️  Qdrant unavailable, reference answers disabled: %v", err)
		} else if err := qdrantService.InitCollection(); err != nil {
			log.Printf("⚠️  Failed to initialize Qdrant collection, reference answers disabled: %v", err)
		} else {
			questionIndex = qdrantService
			log.Println("✅ Qdrant initialized successfully")
		}
	}
	questionBank := services.NewQuestionBankService(questionRepo, questionIndex, geminiService)

	// Initialize analyzer and worker
	var worker services.Worker
	if geminiService != nil {
		analyzer := services.NewAnswerAnalyzer(
			sessionRepo,
			audioProcessor,
			transcriber,
			geminiService,
			questionBank,
			storageService,
			cfg.Worker.RetryMaxAttempts,
		)
		worker = services.NewWorker(sessionRepo, analyzer, cfg.Worker.Concurrency)
		worker.Start(context.Background())
		log.Println("✅ Worker started successfully")
	}

	// Initialize live interview coach
	liveManager := live.NewManager(
		live.NewStore(cfg.Live.MaxHistory),
		coach,
		transcriber,
		resumeExtractor,
		cfg.Live,
	)
	log.Println("✅ Live interview coach initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, tokens)
	practiceHandler := handlers.NewPracticeHandler(sessionRepo, storageService, worker, cfg.Storage.MaxFileSize)
	questionHandler := handlers.NewQuestionHandler(questionRepo, questionBank)
	// Base64 inflates the resume by a third; leave headroom for the envelope.
	liveHandler := handlers.NewLiveHandler(liveManager, cfg.Live.MaxResumeBytes*4/3+64*1024)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "HR Interview Coach API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Recorded answers for playback
	app.Static("/uploads", cfg.Storage.UploadPath)

	// Routes
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(tokens)

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":        "healthy",
			"time":          time.Now(),
			"ai_enabled":    geminiService != nil,
			"live_sessions": liveManager.Sessions(),
		})
	})

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.HandleRegister)
	auth.Post("/login", authHandler.HandleLogin)
	auth.Get("/me", requireAuth, authHandler.HandleMe)
	auth.Get("/hello", authHandler.HandleHello)

	practice := api.Group("/practice", requireAuth)
	practice.Post("/analyze", practiceHandler.HandleAnalyze)
	practice.Get("/", practiceHandler.HandleList)
	practice.Get("/:id", practiceHandler.HandleGetResult)

	questions := api.Group("/questions")
	questions.Get("/", questionHandler.HandleList)
	questions.Get("/random", questionHandler.HandleRandom)
	questions.Post("/", requireAuth, questionHandler.HandleCreate)
	questions.Delete("/:id", requireAuth, questionHandler.HandleDelete)

	app.Use("/live/ws", liveHandler.HandleUpgrade)
	app.Get("/live/ws", liveHandler.HandleSocket())

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "HR Interview Coach API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/auth/register",
				"POST /api/v1/auth/login",
				"GET /api/v1/auth/me",
				"POST /api/v1/practice/analyze",
				"GET /api/v1/practice",
				"GET /api/v1/practice/:id",
				"GET /api/v1/questions",
				"GET /api/v1/questions/random",
				"POST /api/v1/questions",
				"DELETE /api/v1/questions/:id",
				"GET /live/ws (websocket)",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if worker != nil {
			worker.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := liveManager.Shutdown(ctx); err != nil {
			log.Printf("⚠️  Live sessions did not finish in time: %v", err)
		}

		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
