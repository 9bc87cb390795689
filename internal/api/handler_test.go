package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-folio/internal/config"
	"resume-folio/internal/db"
	"resume-folio/internal/helper"
	"resume-folio/internal/index"
	"resume-folio/internal/models"
	"resume-folio/internal/pipeline"
	"resume-folio/internal/testutil"
)

type memStore struct {
	mu         sync.Mutex
	portfolios map[string]*db.Portfolio
}

func newMemStore() *memStore {
	return &memStore{portfolios: make(map[string]*db.Portfolio)}
}

func (s *memStore) CreatePortfolio(_ context.Context, p *db.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := helper.GenerateUUID()
	if err != nil {
		return err
	}
	p.ID = id
	cp := *p
	s.portfolios[id] = &cp
	return nil
}

func (s *memStore) owned(id, userID string) (*db.Portfolio, error) {
	p, ok := s.portfolios[id]
	if !ok || p.UserID != userID {
		return nil, db.ErrNotFound
	}
	return p, nil
}

func (s *memStore) GetPortfolio(_ context.Context, id, userID string) (*db.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.owned(id, userID)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) ListPortfolios(_ context.Context, userID string) ([]db.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []db.Portfolio{}
	for _, p := range s.portfolios {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStore) UpdateResumeData(_ context.Context, id, userID string, profile models.ParsedProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.owned(id, userID)
	if err != nil {
		return err
	}
	p.ResumeData = profile
	return nil
}

func (s *memStore) DeletePortfolio(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.owned(id, userID); err != nil {
		return err
	}
	delete(s.portfolios, id)
	return nil
}

// wordEmbed gives every text a vector built from a few skill words.
func wordEmbed(_ context.Context, text string) ([]float32, error) {
	text = strings.ToLower(text)
	vec := []float32{0.1, 0, 0, 0}
	for i, w := range []string{"go", "kubernetes", "figma"} {
		vec[i+1] = float32(strings.Count(text, w))
	}
	return vec, nil
}

type fixture struct {
	handler http.Handler
	store   *memStore
	index   *index.ProfileIndex
}

func setup(t *testing.T, maxUpload int64) fixture {
	t.Helper()
	store := newMemStore()
	idx, err := index.NewProfileIndex(config.IndexConfig{InMemory: true, Collection: "profiles"}, wordEmbed)
	require.NoError(t, err)
	h := NewHandler(Deps{
		Parser:         pipeline.New(),
		Store:          store,
		Index:          idx,
		Logger:         zerolog.Nop(),
		MaxUploadBytes: maxUpload,
	})
	return fixture{handler: h, store: store, index: idx}
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/resumes", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error.Message
}

func TestHealth(t *testing.T) {
	f := setup(t, 0)
	rr := serve(f.handler, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestUploadDryRun(t *testing.T) {
	f := setup(t, 0)
	data := testutil.DOCX(testutil.SampleResume...)
	rr := serve(f.handler, uploadRequest(t, "jane.docx", models.MimeDOCX, data, map[string]string{"dry_run": "true"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.PortfolioID)
	assert.Equal(t, "jane", resp.Name)
	assert.Equal(t, "Jane Doe", resp.Profile.BasicInfo.Name)
	assert.Equal(t, []string{"Go", "Python", "Kubernetes"}, resp.Profile.Skills)
	assert.False(t, resp.LowConfidence)
	assert.NotNil(t, resp.Warnings)
	assert.Contains(t, resp.Summary, "- **Experience:** 1 entries found")
	assert.Empty(t, f.store.portfolios)
	assert.Zero(t, f.index.Count())
}

func TestUploadSavesAndIndexes(t *testing.T) {
	f := setup(t, 0)
	data := testutil.PDF(testutil.SampleResume)
	req := uploadRequest(t, "cv/Jane Resume.pdf", "application/octet-stream", data, map[string]string{"user_id": "user-1"})
	rr := serve(f.handler, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.PortfolioID)
	assert.Equal(t, "Jane Resume", resp.Name)

	saved := f.store.portfolios[resp.PortfolioID]
	require.NotNil(t, saved)
	assert.Equal(t, "user-1", saved.UserID)
	assert.Equal(t, resp.Profile, saved.ResumeData)
	assert.Equal(t, 1, f.index.Count())
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name        string
		maxUpload   int64
		filename    string
		contentType string
		data        []byte
		fields      map[string]string
		code        int
		message     string
	}{
		{
			name:        "unsupported type",
			filename:    "photo.png",
			contentType: "image/png",
			data:        []byte("\x89PNG"),
			fields:      map[string]string{"dry_run": "1"},
			code:        http.StatusUnsupportedMediaType,
			message:     "Please upload a PDF or Word document (.pdf, .doc, .docx)",
		},
		{
			name:        "too large",
			maxUpload:   1 << 10,
			filename:    "big.pdf",
			contentType: models.MimePDF,
			data:        bytes.Repeat([]byte("x"), 4<<10),
			fields:      map[string]string{"dry_run": "1"},
			code:        http.StatusRequestEntityTooLarge,
			message:     "File size exceeds 1KB limit",
		},
		{
			name:        "corrupt",
			filename:    "broken.pdf",
			contentType: models.MimePDF,
			data:        []byte("not a pdf"),
			fields:      map[string]string{"dry_run": "1"},
			code:        http.StatusUnprocessableEntity,
		},
		{
			name:        "missing user",
			filename:    "jane.docx",
			contentType: models.MimeDOCX,
			data:        testutil.DOCX("Jane Doe"),
			code:        http.StatusBadRequest,
			message:     "user_id is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.maxUpload)
			rr := serve(f.handler, uploadRequest(t, tt.filename, tt.contentType, tt.data, tt.fields))
			assert.Equal(t, tt.code, rr.Code, rr.Body.String())
			if tt.message != "" {
				assert.Equal(t, tt.message, errorMessage(t, rr))
			}
			assert.Empty(t, f.store.portfolios)
		})
	}
}

func TestUploadWithoutFile(t *testing.T) {
	f := setup(t, 0)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("dry_run", "true"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/resumes", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := serve(f.handler, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "file is required", errorMessage(t, rr))
}

func TestPortfolioLifecycle(t *testing.T) {
	f := setup(t, 0)
	data := testutil.DOCX(testutil.SampleResume...)
	rr := serve(f.handler, uploadRequest(t, "jane.docx", models.MimeDOCX, data, map[string]string{"user_id": "user-1", "name": "My Site"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var created UploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	id := created.PortfolioID

	rr = serve(f.handler, httptest.NewRequest(http.MethodGet, "/portfolios?user_id=user-1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Data []db.Portfolio `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "My Site", list.Data[0].Name)

	rr = serve(f.handler, httptest.NewRequest(http.MethodGet, "/portfolios/"+id+"?user_id=user-2", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	edited := `{"basicInfo":{"name":"  Jane   Q. Doe "},"skills":["Go","go","Rust"]}`
	req := httptest.NewRequest(http.MethodPut, "/portfolios/"+id+"/resume-data?user_id=user-1", strings.NewReader(edited))
	rr = serve(f.handler, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = serve(f.handler, httptest.NewRequest(http.MethodGet, "/portfolios/"+id+"?user_id=user-1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var got db.Portfolio
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Jane Q. Doe", got.ResumeData.BasicInfo.Name)
	assert.Equal(t, []string{"Go", "Rust"}, got.ResumeData.Skills)
	assert.Equal(t, []models.Experience{}, got.ResumeData.Experience)

	rr = serve(f.handler, httptest.NewRequest(http.MethodDelete, "/portfolios/"+id+"?user_id=user-1", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, f.store.portfolios)
	assert.Zero(t, f.index.Count())

	rr = serve(f.handler, httptest.NewRequest(http.MethodDelete, "/portfolios/"+id+"?user_id=user-1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPortfolioBadRequests(t *testing.T) {
	f := setup(t, 0)

	rr := serve(f.handler, httptest.NewRequest(http.MethodGet, "/portfolios", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(f.handler, httptest.NewRequest(http.MethodGet, "/portfolios/not-a-uuid?user_id=user-1", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	id, err := helper.GenerateUUID()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/portfolios/"+id+"/resume-data?user_id=user-1", strings.NewReader("{"))
	rr = serve(f.handler, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearch(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	engineer := models.NewParsedProfile()
	engineer.Skills = []string{"Go", "Kubernetes"}
	designer := models.NewParsedProfile()
	designer.Skills = []string{"Figma"}
	require.NoError(t, f.index.Add(ctx, "p-1", "user-1", "Jane", engineer))
	require.NoError(t, f.index.Add(ctx, "p-2", "user-2", "Sam", designer))

	var resp struct {
		Data []index.Hit `json:"data"`
	}
	rr := serve(f.handler, httptest.NewRequest(http.MethodGet, "/portfolios/search?q=figma&limit=1&user_id=user-2", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "p-2", resp.Data[0].PortfolioID)
	assert.Equal(t, "Sam", resp.Data[0].Name)

	// user-1 asking for user-2's skills only ever sees their own portfolio
	rr = serve(f.handler, httptest.NewRequest(http.MethodGet, "/portfolios/search?q=figma&user_id=user-1", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp.Data = nil
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "p-1", resp.Data[0].PortfolioID)
	assert.Equal(t, "user-1", resp.Data[0].UserID)

	rr = serve(f.handler, httptest.NewRequest(http.MethodGet, "/portfolios/search?q=figma", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(f.handler, httptest.NewRequest(http.MethodGet, "/portfolios/search?q=&user_id=user-1", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(f.handler, httptest.NewRequest(http.MethodGet, "/portfolios/search?q=go&limit=zero&user_id=user-1", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWithoutStoreOrIndex(t *testing.T) {
	h := NewHandler(Deps{Parser: pipeline.New(), Logger: zerolog.Nop()})

	rr := serve(h, uploadRequest(t, "jane.docx", models.MimeDOCX, testutil.DOCX(testutil.SampleResume...), nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/portfolios?user_id=user-1", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/portfolios/search?q=go&user_id=user-1", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "5MB", sizeLabel(5<<20))
	assert.Equal(t, "1KB", sizeLabel(1<<10))
}
