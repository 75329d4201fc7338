package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"elevateu/hr-coach/internal/config"
	"elevateu/hr-coach/internal/repositories"
	"elevateu/hr-coach/internal/services"
)

func main() {
	seedPath := flag.String("file", "./scripts/questions.yaml", "YAML question bank to load")
	flag.Parse()

	log.Println("🚀 Starting question bank seeding...")

	// Load configuration
	cfg := config.Load()

	f, err := os.Open(*seedPath)
	if err != nil {
		log.Fatalf("❌ Failed to open %s: %v", *seedPath, err)
	}
	questions, err := services.LoadQuestionSeed(f)
	f.Close()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Printf("📖 Loaded %d questions from %s", len(questions), *seedPath)

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize services
	geminiService, err := services.NewGeminiService(services.GeminiOptions{
		APIKey:     cfg.Gemini.APIKey,
		EmbedModel: cfg.Gemini.EmbedModel,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	repo := repositories.NewQuestionRepository(db)
	ctx := context.Background()

	successCount := 0
	failCount := 0

	for i := range questions {
		q := &questions[i]
		log.Printf("\n📄 [%d/%d] %s", i+1, len(questions), q.QuestionText)

		if err := repo.Upsert(q); err != nil {
			log.Printf("   ❌ Failed to store question: %v", err)
			failCount++
			continue
		}

		// Index directly so that embedding failures count as failures here.
		embedding, err := geminiService.GenerateEmbedding(ctx, q.QuestionText)
		if err != nil {
			log.Printf("   ❌ Failed to generate embedding: %v", err)
			failCount++
			continue
		}
		if err := qdrantService.UpsertQuestion(ctx, q.ID, q.QuestionText, q.Category, embedding); err != nil {
			log.Printf("   ❌ Failed to index question: %v", err)
			failCount++
			continue
		}

		log.Printf("   ✅ Stored and indexed (%s)", q.ID)
		successCount++
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Seeding Summary:")
	log.Printf("   ✅ Successful: %d questions", successCount)
	log.Printf("   ❌ Failed: %d questions", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some questions failed to seed. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ Question bank seeded successfully!")
}
