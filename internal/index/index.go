package index

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"resume-folio/internal/config"
	"resume-folio/internal/models"
)

var (
	// ErrEmptyQuery is returned by Search for a blank query.
	ErrEmptyQuery = errors.New("search query is empty")
	ErrNoUser     = errors.New("user id is required")
)

const compress = false

// Hit is one search result.
type Hit struct {
	PortfolioID string  `json:"portfolioId"`
	UserID      string  `json:"userId"`
	Name        string  `json:"name"`
	Similarity  float32 `json:"similarity"`
}

// ProfileIndex keeps one embedded document per saved portfolio so profiles
// can be found by free-text similarity.
type ProfileIndex struct {
	db            *chromem.DB
	embed         chromem.EmbeddingFunc
	name          string
	encryptionKey string
	filePath      string

	mu         sync.RWMutex
	collection *chromem.Collection
}

// NewProfileIndex opens the index described by cfg. The index lives in memory
// when cfg.InMemory is set and under cfg.Path otherwise.
func NewProfileIndex(cfg config.IndexConfig, embed chromem.EmbeddingFunc) (*ProfileIndex, error) {
	if embed == nil {
		return nil, errors.New("embedding function is required")
	}
	var (
		db  *chromem.DB
		err error
	)
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	c, err := db.GetOrCreateCollection(cfg.Collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	return &ProfileIndex{
		db:            db,
		embed:         embed,
		name:          cfg.Collection,
		encryptionKey: cfg.EncryptionKey,
		filePath:      filepath.Join(cfg.Path, cfg.Collection+".chromem"),
		collection:    c,
	}, nil
}

func (x *ProfileIndex) current() *chromem.Collection {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.collection
}

func (x *ProfileIndex) Count() int {
	return x.current().Count()
}

// Add embeds profile and stores it under portfolioID, replacing any earlier
// version. Profiles with no searchable text are skipped.
func (x *ProfileIndex) Add(ctx context.Context, portfolioID, userID, name string, profile models.ParsedProfile) error {
	content := ProfileDocument(profile)
	if content == "" {
		log.Debug().Str("portfolio_id", portfolioID).Msg("nothing to index")
		return nil
	}
	doc := chromem.Document{
		ID:      portfolioID,
		Content: content,
		Metadata: map[string]string{
			"user_id": userID,
			"name":    name,
		},
	}
	if err := x.current().AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}
	return nil
}

func (x *ProfileIndex) Remove(ctx context.Context, portfolioID string) error {
	if err := x.current().Delete(ctx, nil, nil, portfolioID); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	return nil
}

// Search returns up to n of userID's portfolios ordered by similarity to query.
// Other users' portfolios are never returned.
func (x *ProfileIndex) Search(ctx context.Context, userID, query string, n int) ([]Hit, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrNoUser
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	c := x.current()
	if count := c.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return []Hit{}, nil
	}

	// chromem caps the result at the number of documents left after the filter
	results, err := c.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryText: query,
		NResults:  n,
		Where:     map[string]string{"user_id": userID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}
	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			PortfolioID: r.ID,
			UserID:      r.Metadata["user_id"],
			Name:        r.Metadata["name"],
			Similarity:  r.Similarity,
		})
	}
	return hits, nil
}

// Export writes the collection to <path>/<collection>.chromem, encrypted when
// an encryption key is configured.
func (x *ProfileIndex) Export() error {
	log.Debug().Str("collection", x.name).Str("file", x.filePath).Msg("exporting index")
	if err := x.db.ExportToFile(x.filePath, compress, x.encryptionKey, x.name); err != nil {
		return fmt.Errorf("failed to export index: %w", err)
	}
	return nil
}

// Import replaces the collection with the one in the export file.
func (x *ProfileIndex) Import() error {
	if err := x.db.ImportFromFile(x.filePath, x.encryptionKey, x.name); err != nil {
		return fmt.Errorf("failed to import index: %w", err)
	}
	c := x.db.GetCollection(x.name, x.embed)
	if c == nil {
		return fmt.Errorf("collection %q not found in %s", x.name, x.filePath)
	}
	x.mu.Lock()
	x.collection = c
	x.mu.Unlock()
	return nil
}

// ProfileDocument is the text embedded for a profile: headline, summary,
// skills, then roles and projects.
func ProfileDocument(p models.ParsedProfile) string {
	var parts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	add(p.BasicInfo.Title)
	add(p.BasicInfo.Summary)
	if len(p.Skills) > 0 {
		add("Skills: " + strings.Join(p.Skills, ", "))
	}
	for _, e := range p.Experience {
		add(strings.TrimSpace(e.Title + " " + e.Company))
		add(e.Description)
	}
	for _, pr := range p.Projects {
		add(pr.Name + " " + pr.Description + " " + strings.Join(pr.Technologies, " "))
	}
	for _, ed := range p.Education {
		add(ed.Degree + " " + ed.Institution)
	}
	return strings.Join(parts, "\n")
}
