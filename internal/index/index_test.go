package index

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-folio/internal/config"
	"resume-folio/internal/models"
)

var vocabulary = []string{"go", "kubernetes", "backend", "figma", "design", "sketch"}

// keywordEmbed counts vocabulary words, plus a constant so no vector is zero.
func keywordEmbed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(vocabulary)+1)
	vec[len(vocabulary)] = 0.1
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		for i, v := range vocabulary {
			if word == v {
				vec[i]++
			}
		}
	}
	return vec, nil
}

func engineer() models.ParsedProfile {
	p := models.NewParsedProfile()
	p.BasicInfo.Title = "Backend Engineer"
	p.BasicInfo.Summary = "Builds backend services in Go."
	p.Skills = []string{"Go", "Kubernetes"}
	p.Experience = []models.Experience{{Title: "Engineer", Company: "Acme", Description: "Go microservices"}}
	return p
}

func designer() models.ParsedProfile {
	p := models.NewParsedProfile()
	p.BasicInfo.Title = "Product Designer"
	p.Skills = []string{"Figma", "Sketch"}
	p.Projects = []models.Project{{Name: "Design System", Technologies: []string{"Figma"}}}
	return p
}

func memoryIndex(t *testing.T, cfg config.IndexConfig) *ProfileIndex {
	t.Helper()
	cfg.InMemory = true
	if cfg.Collection == "" {
		cfg.Collection = "profiles"
	}
	x, err := NewProfileIndex(cfg, keywordEmbed)
	require.NoError(t, err)
	return x
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	x := memoryIndex(t, config.IndexConfig{})

	hits, err := x.Search(ctx, "user-1", "go", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, x.Add(ctx, "p-1", "user-1", "Jane", engineer()))
	require.NoError(t, x.Add(ctx, "p-2", "user-1", "Jane designs", designer()))
	require.NoError(t, x.Add(ctx, "p-3", "user-2", "Sam", designer()))
	assert.Equal(t, 3, x.Count())

	hits, err = x.Search(ctx, "user-1", "figma design", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "p-2", hits[0].PortfolioID)
	assert.Equal(t, "user-1", hits[0].UserID)
	assert.Equal(t, "Jane designs", hits[0].Name)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)

	hits, err = x.Search(ctx, "user-1", "Go kubernetes", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p-1", hits[0].PortfolioID)

	_, err = x.Search(ctx, "user-1", "   ", 3)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	_, err = x.Search(ctx, " ", "go", 3)
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestSearchScopedToUser(t *testing.T) {
	ctx := context.Background()
	x := memoryIndex(t, config.IndexConfig{})

	require.NoError(t, x.Add(ctx, "p-1", "user-1", "Jane", engineer()))
	require.NoError(t, x.Add(ctx, "p-2", "user-2", "Sam", designer()))
	require.NoError(t, x.Add(ctx, "p-3", "user-2", "Sam again", designer()))

	hits, err := x.Search(ctx, "user-1", "figma sketch design", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p-1", hits[0].PortfolioID)

	hits, err = x.Search(ctx, "user-2", "go", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, "user-2", h.UserID)
	}

	hits, err = x.Search(ctx, "user-3", "go", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestAddReplacesAndRemove(t *testing.T) {
	ctx := context.Background()
	x := memoryIndex(t, config.IndexConfig{})

	require.NoError(t, x.Add(ctx, "p-1", "user-1", "Jane", engineer()))
	require.NoError(t, x.Add(ctx, "p-1", "user-1", "Jane", designer()))
	assert.Equal(t, 1, x.Count())

	require.NoError(t, x.Add(ctx, "p-2", "user-1", "Empty", models.NewParsedProfile()))
	assert.Equal(t, 1, x.Count())

	require.NoError(t, x.Remove(ctx, "p-1"))
	assert.Zero(t, x.Count())
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	cfg := config.IndexConfig{
		Path:          t.TempDir(),
		EncryptionKey: strings.Repeat("k", 32),
	}

	src := memoryIndex(t, cfg)
	require.NoError(t, src.Add(ctx, "p-1", "user-1", "Jane", engineer()))
	require.NoError(t, src.Add(ctx, "p-2", "user-2", "Sam", designer()))
	require.NoError(t, src.Export())

	dst := memoryIndex(t, cfg)
	assert.Zero(t, dst.Count())
	require.NoError(t, dst.Import())
	assert.Equal(t, 2, dst.Count())

	hits, err := dst.Search(ctx, "user-2", "sketch", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p-2", hits[0].PortfolioID)

	wrongKey := memoryIndex(t, config.IndexConfig{Path: cfg.Path, EncryptionKey: strings.Repeat("x", 32)})
	assert.Error(t, wrongKey.Import())
}

func TestPersistentIndex(t *testing.T) {
	ctx := context.Background()
	cfg := config.IndexConfig{Path: t.TempDir(), Collection: "profiles"}

	x, err := NewProfileIndex(cfg, keywordEmbed)
	require.NoError(t, err)
	require.NoError(t, x.Add(ctx, "p-1", "user-1", "Jane", engineer()))

	reopened, err := NewProfileIndex(cfg, keywordEmbed)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Count())
}

func TestNewProfileIndexRequiresEmbedder(t *testing.T) {
	_, err := NewProfileIndex(config.IndexConfig{InMemory: true, Collection: "profiles"}, nil)
	assert.Error(t, err)
}

func TestProfileDocument(t *testing.T) {
	assert.Empty(t, ProfileDocument(models.NewParsedProfile()))
	assert.Equal(t,
		"Backend Engineer\nBuilds backend services in Go.\nSkills: Go, Kubernetes\nEngineer Acme\nGo microservices",
		ProfileDocument(engineer()))
}
