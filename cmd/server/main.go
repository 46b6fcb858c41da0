package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/config"
	"github.com/atlastrail/cascade/internal/core/filter"
	"github.com/atlastrail/cascade/internal/core/ideate"
	"github.com/atlastrail/cascade/internal/core/pipeline"
	"github.com/atlastrail/cascade/internal/core/project"
	"github.com/atlastrail/cascade/internal/core/relate"
	"github.com/atlastrail/cascade/internal/core/resolve"
	"github.com/atlastrail/cascade/internal/graph"
	"github.com/atlastrail/cascade/internal/llm"
	"github.com/atlastrail/cascade/internal/semantic"
	"github.com/atlastrail/cascade/internal/server"
	"github.com/atlastrail/cascade/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.String("path", cfgPath), zap.Error(err))
	}

	ctx := context.Background()

	db, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to content store", zap.Error(err))
	}
	defer db.Close(ctx)

	graphDriver, err := graph.NewNeo4jDriver(cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password, logger)
	if err != nil {
		logger.Fatal("failed to connect to graph", zap.Error(err))
	}
	defer graphDriver.Close(ctx)
	if err := graphDriver.BuildIndices(ctx); err != nil {
		logger.Warn("graph index bootstrap failed", zap.Error(err))
	}

	llmClient, embedder, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Fatal("failed to initialize llm client", zap.Error(err))
	}

	searcher := semantic.NewVectorSearcher(
		embedder,
		db.DB.Collection(store.CollContentProjects),
		cfg.Pipeline.SearchIndex,
		logger,
	)

	progress := pipeline.NewReporter(db, logger)

	cascade := &pipeline.Cascade{
		Store:         db,
		Destinations:  resolve.NewDestinationResolver(db, logger),
		Properties:    resolve.NewPropertyResolver(db, logger),
		Relationships: relate.NewManager(graphDriver, logger),
		Projects:      project.NewGenerator(db, logger),
		Progress:      progress,
		Trigger:       server.NewHTTPTrigger(cfg.Pipeline.DecomposeBaseURL, logger),
		Log:           logger,
	}

	decomposer := &pipeline.Decomposer{
		Store:    db,
		Ideator:  ideate.NewGenerator(llmClient, cfg.Prompts.Ideas, cfg.Pipeline.MaxCandidates, logger),
		Filter:   filter.NewEngine(db, searcher, cfg.Pipeline.DuplicateThreshold, cfg.Pipeline.SearchTopK, logger),
		Shaper:   project.NewShaper(db, logger),
		Progress: progress,
		Log:      logger,
	}

	srv := server.New(cascade, decomposer, db, logger)
	r := srv.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("starting server", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
