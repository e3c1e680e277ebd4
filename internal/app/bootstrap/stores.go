package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	appconfig "github.com/wolfman30/nectar-lead-tracker/internal/config"
	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
	"github.com/wolfman30/nectar-lead-tracker/internal/media"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// OpenPostgres connects a pgx pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return pool, nil
}

// OpenSQL opens the database/sql handle used by the docs, projects and
// library repositories.
func OpenSQL(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open sql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: ping sql: %w", err)
	}
	return db, nil
}

// BuildLeadRepository picks the lead store named by cfg.LeadStore. pool must
// be set for postgres and awsCfg for dynamodb.
func BuildLeadRepository(cfg *appconfig.Config, pool *pgxpool.Pool, awsCfg *aws.Config, logger *logging.Logger) (leads.Repository, error) {
	switch cfg.LeadStore {
	case "", "memory":
		return leads.NewInMemoryRepository(), nil
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("bootstrap: postgres lead store requires DATABASE_URL")
		}
		return leads.NewPostgresRepository(pool), nil
	case "dynamodb":
		if awsCfg == nil {
			return nil, fmt.Errorf("bootstrap: dynamodb lead store requires AWS config")
		}
		if strings.TrimSpace(cfg.LeadsTable) == "" {
			return nil, fmt.Errorf("bootstrap: dynamodb lead store requires LEADS_TABLE")
		}
		return leads.NewDynamoRepository(dynamodb.NewFromConfig(*awsCfg), cfg.LeadsTable, logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown lead store %q", cfg.LeadStore)
	}
}

// BuildMediaStore returns the upload store. Without a bucket or AWS config the
// store is disabled and uploads answer ErrUploadsDisabled.
func BuildMediaStore(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) *media.Store {
	bucket := strings.TrimSpace(cfg.MediaBucket)
	if bucket == "" || awsCfg == nil {
		return media.NewStore(nil, "", cfg.AWSRegion, "", logger)
	}
	client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpointOverride != "" {
			o.UsePathStyle = true
		}
	})
	return media.NewStore(client, bucket, cfg.AWSRegion, cfg.MediaPublicBaseURL, logger)
}
