package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"filevault/internal/auth"
	"filevault/internal/config"
	"filevault/internal/handler"
	"filevault/internal/middleware"
	"filevault/internal/repository/objectstore"
	"filevault/internal/repository/postgres"
	serviceAuth "filevault/internal/service/auth"
	"filevault/internal/service/files"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg.Environment, cfg.LogDir, cfg.LogMaxFiles)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"bucket", cfg.StorageBucket,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Token verification: legacy HS256 secret if configured, otherwise JWKS
	var jwtVerifier auth.JWTVerifier
	if cfg.SupabaseJWTSecret != "" {
		jwtVerifier, err = auth.NewHMACVerifier(cfg.SupabaseJWTSecret, logger)
		logger.Warn("using legacy HS256 JWT secret for token verification")
	} else {
		jwtVerifier, err = auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	}
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Session revocation is optional; without Redis, logout returns 501
	var denylist auth.SessionDenylist
	if cfg.RedisAddr != "" {
		redisDenylist, err := auth.NewRedisSessionDenylist(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisDenylist.Close()
		denylist = redisDenylist
		logger.Info("session revocation enabled", "redis_addr", cfg.RedisAddr)
	}
	resolver := auth.NewResolver(jwtVerifier, denylist, logger)

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
	)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	fileRepo := postgres.NewFileRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Blob store
	objects, err := objectstore.NewMinioStore(ctx, objectstore.Config{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Region:    cfg.StorageRegion,
		UseSSL:    cfg.StorageUseSSL,
		Bucket:    cfg.StorageBucket,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}

	// Bucket policy: operator file (or embedded default), then the bucket's real visibility
	bucketPolicy, err := config.LoadBucketPolicy(cfg.BucketPolicyFile, cfg.StorageBucket)
	if err != nil {
		log.Fatalf("Failed to load bucket policy: %v", err)
	}
	public, err := objects.IsPublic(ctx)
	if err != nil {
		log.Fatalf("Failed to read bucket visibility: %v", err)
	}
	if public && !bucketPolicy.Public {
		logger.Warn("bucket grants anonymous read access; uploads will be rejected", "bucket", cfg.StorageBucket)
		bucketPolicy.Public = true
	}

	logger.Info("bucket policy loaded",
		"bucket", bucketPolicy.Bucket,
		"public", bucketPolicy.Public,
		"max_object_size", bucketPolicy.MaxObjectSize,
		"allowed_mime_types", bucketPolicy.AllowedMimeTypes,
	)

	// Guards and services
	fileService := files.NewFileService(
		fileRepo,
		objects,
		txManager,
		serviceAuth.NewOwnerRecordGuard(),
		serviceAuth.NewOwnerBlobGuard(),
		serviceAuth.NewStaticBucketPolicy(bucketPolicy),
		logger,
	)

	// Handlers
	fileHandler := handler.NewFileHandler(fileService, logger)
	objectHandler := handler.NewObjectHandler(fileService, logger)
	authHandler := handler.NewAuthHandler(resolver, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// File record routes
	mux.HandleFunc("GET /api/files", fileHandler.ListFiles)
	mux.HandleFunc("POST /api/files", fileHandler.CreateFile)
	mux.HandleFunc("GET /api/files/{id}", fileHandler.GetFile)
	mux.HandleFunc("PATCH /api/files/{id}", fileHandler.UpdateFile)
	mux.HandleFunc("DELETE /api/files/{id}", fileHandler.DeleteFile)

	// Blob routes (path is owner/...)
	mux.HandleFunc("PUT /api/objects/{path...}", objectHandler.UploadObject)
	mux.HandleFunc("GET /api/objects/{path...}", objectHandler.DownloadObject)
	mux.HandleFunc("DELETE /api/objects/{path...}", objectHandler.DeleteObject)

	// Session routes
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	// Build middleware chain
	var handler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	handler = middleware.AuthMiddleware(resolver, logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-File-Name"},
		ExposedHeaders:   []string{"ETag", "Last-Modified"},
		AllowCredentials: true,
	})
	handler = corsHandler.Handler(handler)

	// Create HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       0, // Uploads stream up to the bucket size ceiling
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // Downloads stream
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
