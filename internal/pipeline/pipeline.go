package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"resume-folio/internal/extract"
	"resume-folio/internal/helper"
	"resume-folio/internal/models"
	"resume-folio/internal/parser"
	"resume-folio/internal/profile"
)

const (
	DefaultTimeout            = 5 * time.Second
	DefaultLowConfidenceChars = 50
)

type TextExtractor interface {
	ExtractText(ctx context.Context, doc models.RawDocument) (models.ExtractedText, error)
}

type Segmenter interface {
	Segment(text models.ExtractedText) ([]models.SectionBlock, []string)
}

// Cache stores finished results by document key. Get returns nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*models.ParseResult, error)
	Set(ctx context.Context, key string, result *models.ParseResult) error
}

// Pipeline runs extraction, segmentation, field extraction and assembly for
// one document per call. It holds no per-call state and is safe for
// concurrent use.
type Pipeline struct {
	extractor     TextExtractor
	segmenter     Segmenter
	cache         Cache
	timeout       time.Duration
	minConfidence int
}

type Option func(*Pipeline)

func WithExtractor(e TextExtractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

func WithSegmenter(s Segmenter) Option {
	return func(p *Pipeline) { p.segmenter = s }
}

func WithCache(c Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLowConfidenceChars sets the minimum number of non-space characters
// below which a result is flagged low confidence.
func WithLowConfidenceChars(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.minConfidence = n
		}
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:     parser.NewExtractor(),
		segmenter:     parser.Segmenter{},
		timeout:       DefaultTimeout,
		minConfidence: DefaultLowConfidenceChars,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse turns one uploaded document into a profile. Unsupported and corrupt
// documents fail with parser.ErrUnsupportedFormat / parser.ErrCorruptDocument;
// sparse or image-only documents succeed with LowConfidence set.
func (p *Pipeline) Parse(ctx context.Context, doc models.RawDocument) (*models.ParseResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	start := time.Now()

	docType, ok := models.ParseDocType(doc.MimeType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", parser.ErrUnsupportedFormat, doc.MimeType)
	}

	key := CacheKey(docType, doc.Data)
	if cached := p.lookup(ctx, key); cached != nil {
		return cached, nil
	}

	text, err := p.extractor.ExtractText(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled after extraction: %w", err)
	}

	blocks, warnings := p.segmenter.Segment(text)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled after segmentation: %w", err)
	}

	fields, err := extractFields(ctx, blocks)
	if err != nil {
		return nil, fmt.Errorf("parse cancelled during field extraction: %w", err)
	}

	result := &models.ParseResult{
		Profile:  fields.assemble(),
		Warnings: append([]string{}, warnings...),
		Pages:    text.Pages,
	}
	if chars := text.CharCount(); chars < p.minConfidence || result.Profile.IsEmpty() {
		result.LowConfidence = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("low confidence extraction: %d characters of text recovered", chars))
	}

	log.Debug().
		Str("type", string(docType)).
		Int("blocks", len(blocks)).
		Int("experience", len(result.Profile.Experience)).
		Int("education", len(result.Profile.Education)).
		Int("skills", len(result.Profile.Skills)).
		Bool("low_confidence", result.LowConfidence).
		Dur("took", time.Since(start)).
		Msg("parsed resume")

	p.store(ctx, key, result)
	return result, nil
}

func (p *Pipeline) lookup(ctx context.Context, key string) *models.ParseResult {
	if p.cache == nil {
		return nil
	}
	cached, err := p.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("parse cache lookup failed")
		return nil
	}
	return cached
}

func (p *Pipeline) store(ctx context.Context, key string, result *models.ParseResult) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Set(ctx, key, result); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("parse cache store failed")
	}
}

// CacheKey identifies a document by type and content.
func CacheKey(docType models.DocType, data []byte) string {
	return string(docType) + ":" + helper.ContentHash(data)
}

// blockFields is what the extractors found in one block.
type blockFields struct {
	contact    models.BasicInfo
	summary    string
	explicit   bool
	experience []models.Experience
	education  []models.Education
	skills     []string
	projects   []models.Project
}

// extractors dispatches a block to the field extractors for its label.
var extractors = map[models.SectionLabel]func(lines []string) blockFields{
	models.LabelContact: func(lines []string) blockFields {
		return blockFields{contact: extract.Contact(lines), summary: extract.Summary(lines, false)}
	},
	models.LabelSummary: func(lines []string) blockFields {
		return blockFields{summary: extract.Summary(lines, true), explicit: true}
	},
	models.LabelExperience: func(lines []string) blockFields {
		return blockFields{experience: extract.Experience(lines)}
	},
	models.LabelEducation: func(lines []string) blockFields {
		return blockFields{education: extract.Education(lines)}
	},
	models.LabelSkills: func(lines []string) blockFields {
		return blockFields{skills: extract.Skills(lines)}
	},
	models.LabelProjects: func(lines []string) blockFields {
		return blockFields{projects: extract.Projects(lines)}
	},
}

// extractFields runs the extractors for all blocks concurrently and returns
// their outputs in document order.
func extractFields(ctx context.Context, blocks []models.SectionBlock) (documentFields, error) {
	results := make([]blockFields, len(blocks))
	g, gctx := errgroup.WithContext(ctx)
	for i, block := range blocks {
		i, block := i, block
		fn, ok := extractors[block.Label]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = fn(block.Lines)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

type documentFields []blockFields

// assemble merges per-block results: the first non-empty value wins for
// contact fields, an explicit summary beats preamble prose, and lists are
// concatenated in document order.
func (d documentFields) assemble() models.ParsedProfile {
	var (
		contact    models.BasicInfo
		explicit   []string
		preamble   []string
		experience []models.Experience
		education  []models.Education
		skills     []string
		projects   []models.Project
	)
	for _, f := range d {
		mergeContact(&contact, f.contact)
		if f.summary != "" {
			if f.explicit {
				explicit = append(explicit, f.summary)
			} else {
				preamble = append(preamble, f.summary)
			}
		}
		experience = append(experience, f.experience...)
		education = append(education, f.education...)
		skills = append(skills, f.skills...)
		projects = append(projects, f.projects...)
	}
	summary := strings.Join(explicit, " ")
	if summary == "" {
		summary = strings.Join(preamble, " ")
	}
	return profile.Assemble(contact, summary, experience, education, skills, projects)
}

func mergeContact(dst *models.BasicInfo, src models.BasicInfo) {
	fill := func(d *string, s string) {
		if *d == "" {
			*d = s
		}
	}
	fill(&dst.Name, src.Name)
	fill(&dst.Title, src.Title)
	fill(&dst.Email, src.Email)
	fill(&dst.Phone, src.Phone)
	fill(&dst.Location, src.Location)
	fill(&dst.LinkedIn, src.LinkedIn)
	fill(&dst.Github, src.Github)
	fill(&dst.Portfolio, src.Portfolio)
}
