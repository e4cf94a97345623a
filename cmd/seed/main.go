package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"filevault/internal/auth"
	"filevault/internal/config"
	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
	"filevault/internal/repository/objectstore"
	"filevault/internal/repository/postgres"
	serviceAuth "filevault/internal/service/auth"
	"filevault/internal/service/files"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// seedFile is a sample upload placed in the dev user's namespace
type seedFile struct {
	name     string
	mimeType string
	content  string
}

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop the files table before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed files")
	clearData := flag.Bool("clear-data", false, "Delete all file records (keep schema)")
	enableRLS := flag.Bool("rls", false, "Also enable Postgres row-level security policies on the files table")
	devEmail := flag.String("dev-user", "dev@filevault.local", "Email of the dev user to create and seed")
	devPassword := flag.String("dev-password", "filevault-dev-password", "Password for the dev user")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, logCloser, err := config.NewLogger(cfg.Environment, "", 0)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping files table...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	if *enableRLS {
		if err := postgres.EnableRowLevelSecurity(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to enable row-level security: %v", err)
		}
		log.Println("🔒 Row-level security enabled")
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := clearFiles(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully (blobs are left in the bucket)")
		return
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		log.Println("⚠️  SUPABASE_URL or SUPABASE_KEY not set; skipping dev user and sample files")
		return
	}

	// Dev user via the Admin API
	admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)
	userID, err := admin.EnsureUser(ctx, *devEmail, *devPassword)
	if err != nil {
		log.Fatalf("Failed to ensure dev user: %v", err)
	}
	log.Printf("👤 Dev user %s (ID: %s)", *devEmail, userID)

	// Sample files go through the same service the server uses
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

	bucketPolicy, err := config.LoadBucketPolicy(cfg.BucketPolicyFile, cfg.StorageBucket)
	if err != nil {
		log.Fatalf("Failed to load bucket policy: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	fileService := files.NewFileService(
		postgres.NewFileRepository(repoConfig),
		objects,
		postgres.NewTransactionManager(pool, logger),
		serviceAuth.NewOwnerRecordGuard(),
		serviceAuth.NewOwnerBlobGuard(),
		serviceAuth.NewStaticBucketPolicy(bucketPolicy),
		logger,
	)

	actor := models.ActorID(userID)
	samples := getSeedFiles()
	for i, sample := range samples {
		path := fmt.Sprintf("%s/samples/%s", actor, sample.name)
		record, err := fileService.UploadObject(ctx, actor, &services.UploadFileRequest{
			Path:     path,
			Name:     sample.name,
			Size:     int64(len(sample.content)),
			MimeType: sample.mimeType,
			Body:     strings.NewReader(sample.content),
		})
		if errors.Is(err, domain.ErrConflict) {
			log.Printf("⏭️  Skipped %s (already exists)", path)
			continue
		}
		if err != nil {
			log.Printf("❌ Failed to upload '%s': %v", path, err)
			continue
		}

		log.Printf("✅ Uploaded file %d/%d: %s (ID: %s, %d bytes)",
			i+1, len(samples), record.ObjectPath, record.ID, record.Size)
	}

	log.Println("🎉 Seeding complete!")
}

// clearFiles removes every record from the files table
func clearFiles(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	_, err := pool.Exec(ctx, "DELETE FROM "+tables.Files)
	return err
}

func getSeedFiles() []seedFile {
	return []seedFile{
		{
			name:     "README.txt",
			mimeType: "text/plain",
			content:  "Files under this folder belong to the dev user only.\n",
		},
		{
			name:     "settings.json",
			mimeType: "application/json",
			content:  `{"theme":"dark","notifications":true}` + "\n",
		},
		{
			name:     "hello.py",
			mimeType: "text/x-python",
			content:  "print(\"hello from filevault\")\n",
		},
	}
}
