package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"resume-folio/internal/config"
	"resume-folio/internal/helper"
	"resume-folio/internal/models"
)

// ErrNotFound is returned when no portfolio matches the id and owner.
var ErrNotFound = errors.New("portfolio not found")

// Portfolio is one saved resume together with its site settings.
type Portfolio struct {
	bun.BaseModel `bun:"table:portfolios,alias:p"`

	ID               string               `bun:"id,pk,type:uuid" json:"id"`
	UserID           string               `bun:"user_id,notnull" json:"userId"`
	Name             string               `bun:"name,notnull" json:"name"`
	ResumeData       models.ParsedProfile `bun:"resume_data,type:jsonb,notnull" json:"resumeData"`
	Template         string               `bun:"template,nullzero" json:"template"`
	TemplateSettings map[string]any       `bun:"template_settings,type:jsonb,notnull" json:"templateSettings"`
	Deployed         bool                 `bun:"deployed,notnull,default:false" json:"deployed"`
	CreatedAt        time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens the Supabase Postgres database with pgdriver, or with
// lib/pq when the driver is "pq". No connection is made until first use.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.SupabaseURL == "" {
		return nil, errors.New("database url is required")
	}
	dsn := withSSLMode(cfg.SupabaseURL)
	switch cfg.Driver {
	case "pq", "postgres":
		return sql.Open("postgres", dsn)
	case "", "pgdriver":
		opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
		if cfg.SupabaseKey != "" {
			opts = append(opts, pgdriver.WithPassword(cfg.SupabaseKey))
		}
		return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// withSSLMode disables TLS unless the URL already chooses a mode.
func withSSLMode(dsn string) string {
	if strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&sslmode=disable"
	}
	return dsn + "?sslmode=disable"
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Portfolio)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewCreateIndex().
		Model((*Portfolio)(nil)).
		Index("portfolios_user_id_idx").
		IfNotExists().
		Column("user_id").
		Exec(ctx)
	return err
}

// drop table portfolios
func DropPortfolios(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Portfolio)(nil)).IfExists().Exec(ctx)
	return err
}

// Store runs portfolio queries scoped to their owner.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreatePortfolio inserts p, assigning an id when it has none.
func (s *Store) CreatePortfolio(ctx context.Context, p *Portfolio) error {
	if p.ID == "" {
		id, err := helper.GenerateUUID()
		if err != nil {
			return err
		}
		p.ID = id
	}
	if p.TemplateSettings == nil {
		p.TemplateSettings = map[string]any{}
	}
	if _, err := s.db.NewInsert().Model(p).Returning("created_at").Exec(ctx); err != nil {
		return fmt.Errorf("insert portfolio: %w", err)
	}
	return nil
}

func (s *Store) GetPortfolio(ctx context.Context, id, userID string) (*Portfolio, error) {
	var p Portfolio
	if err := s.selectOne(&p, id, userID).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ListPortfolios returns the user's portfolios, newest first.
func (s *Store) ListPortfolios(ctx context.Context, userID string) ([]Portfolio, error) {
	portfolios := []Portfolio{}
	if err := s.selectByUser(&portfolios, userID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	return portfolios, nil
}

// UpdateResumeData replaces the stored profile, as the editor does on save.
func (s *Store) UpdateResumeData(ctx context.Context, id, userID string, profile models.ParsedProfile) error {
	res, err := s.updateResumeData(id, userID, profile).Exec(ctx)
	if err != nil {
		return fmt.Errorf("update portfolio: %w", err)
	}
	return requireRow(res)
}

func (s *Store) DeletePortfolio(ctx context.Context, id, userID string) error {
	res, err := s.deleteOne(id, userID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete portfolio: %w", err)
	}
	return requireRow(res)
}

func (s *Store) selectOne(p *Portfolio, id, userID string) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(p).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Limit(1)
}

func (s *Store) selectByUser(out *[]Portfolio, userID string) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(out).
		Where("user_id = ?", userID).
		Order("created_at DESC")
}

func (s *Store) updateResumeData(id, userID string, profile models.ParsedProfile) *bun.UpdateQuery {
	return s.db.NewUpdate().
		Model(&Portfolio{ResumeData: profile}).
		Column("resume_data").
		Where("id = ?", id).
		Where("user_id = ?", userID)
}

func (s *Store) deleteOne(id, userID string) *bun.DeleteQuery {
	return s.db.NewDelete().
		Model((*Portfolio)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
