package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS articles (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	content      TEXT NOT NULL,
	excerpt      TEXT NOT NULL DEFAULT '',
	url          TEXT NOT NULL DEFAULT '',
	original     INTEGER NOT NULL DEFAULT 1,
	ai_enhanced  INTEGER NOT NULL DEFAULT 0,
	source_id    TEXT NOT NULL DEFAULT '',
	refs         TEXT NOT NULL DEFAULT '[]',
	analytics    TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS articles_source_id ON articles (source_id);`

var articleColumns = []string{
	"id", "title", "content", "excerpt", "url", "original", "ai_enhanced",
	"source_id", "refs", "analytics", "published_at", "updated_at",
}

// SQLiteRepository keeps articles in a local SQLite file. It serves offline runs and tests.
type SQLiteRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.ArticleStore = (*SQLiteRepository)(nil)

// OpenSQLite opens (and migrates) the database at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	repo, err := NewSQLiteRepository(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLiteRepository wires an existing sql.DB and ensures the schema exists.
func NewSQLiteRepository(ctx context.Context, db *sql.DB) (*SQLiteRepository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate articles: %w", err)
	}
	return &SQLiteRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// List returns all articles, oldest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]domain.Article, error) {
	query, args, err := r.builder.Select(articleColumns...).
		From("articles").
		OrderBy("published_at ASC", "rowid ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// Create inserts the article, assigning an ID when it has none.
func (r *SQLiteRepository) Create(ctx context.Context, article domain.Article) (domain.Article, error) {
	now := r.now()
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	if article.PublishedAt.IsZero() {
		article.PublishedAt = now
	}
	article.UpdatedAt = now

	refs, err := json.Marshal(nonNilStrings(article.References))
	if err != nil {
		return domain.Article{}, fmt.Errorf("marshal references: %w", err)
	}

	var analytics string
	if article.Analytics != nil {
		normalized := article.Analytics.Normalize()
		article.Analytics = &normalized
		raw, err := json.Marshal(normalized)
		if err != nil {
			return domain.Article{}, fmt.Errorf("marshal analytics: %w", err)
		}
		analytics = string(raw)
	}

	query, args, err := r.builder.Insert("articles").
		Columns(articleColumns...).
		Values(
			article.ID, article.Title, article.Content, article.Excerpt, article.URL,
			article.Original, article.AIEnhanced, article.SourceID, string(refs), analytics,
			article.PublishedAt, article.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return article, nil
}

// Delete removes an article by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.builder.Delete("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete article %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanArticle(rows *sql.Rows) (domain.Article, error) {
	var (
		article   domain.Article
		refs      string
		analytics string
	)
	if err := rows.Scan(
		&article.ID, &article.Title, &article.Content, &article.Excerpt, &article.URL,
		&article.Original, &article.AIEnhanced, &article.SourceID, &refs, &analytics,
		&article.PublishedAt, &article.UpdatedAt,
	); err != nil {
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}

	if err := json.Unmarshal([]byte(refs), &article.References); err != nil {
		return domain.Article{}, fmt.Errorf("decode references of %s: %w", article.ID, err)
	}
	if analytics != "" {
		var an domain.Analytics
		if err := json.Unmarshal([]byte(analytics), &an); err != nil {
			return domain.Article{}, fmt.Errorf("decode analytics of %s: %w", article.ID, err)
		}
		an = an.Normalize()
		article.Analytics = &an
	}
	return article, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
