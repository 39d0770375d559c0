package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/nfe-identifications/internal/identification/models"
	"github.com/zlovtnik/nfe-identifications/pkg/domainerrors"
)

// stubService records the last call and returns canned results.
type stubService struct {
	listPage     int
	listPageSize int
	listFilter   models.ListFilter
	listRecords  []models.Identification
	listTotal    uint64
	listErr      error

	getID     string
	getRecord *models.Identification
	getErr    error

	createIn  models.CreateIdentification
	createErr error

	updateID  string
	updateIn  models.UpdateIdentification
	updateErr error

	deleteID  string
	deleteErr error

	record models.Identification
}

func (s *stubService) List(_ context.Context, page, pageSize int, filter models.ListFilter) ([]models.Identification, uint64, error) {
	s.listPage, s.listPageSize, s.listFilter = page, pageSize, filter
	return s.listRecords, s.listTotal, s.listErr
}

func (s *stubService) Get(_ context.Context, id string) (*models.Identification, error) {
	s.getID = id
	return s.getRecord, s.getErr
}

func (s *stubService) Create(_ context.Context, in models.CreateIdentification) (*models.Identification, error) {
	s.createIn = in
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &s.record, nil
}

func (s *stubService) Update(_ context.Context, id string, in models.UpdateIdentification) (*models.Identification, error) {
	s.updateID, s.updateIn = id, in
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &s.record, nil
}

func (s *stubService) Delete(_ context.Context, id string) error {
	s.deleteID = id
	return s.deleteErr
}

func newRouter(svc *stubService) http.Handler {
	r := chi.NewRouter()
	New(svc, nil).Register(r)
	return r
}

func sampleRecord() models.Identification {
	return models.Identification{
		InternalKey: "b5eb3b67-5cc6-4463-bb0f-a4fc3fb2fd57",
		CUF:         "35",
		NNF:         "123",
		NatOp:       "Venda",
		DhEmi:       time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestHandleListDefaults(t *testing.T) {
	svc := &stubService{listRecords: []models.Identification{sampleRecord()}, listTotal: 101}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/identifications", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.listPage)
	assert.Equal(t, 50, svc.listPageSize)

	var page models.Page
	require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
	assert.Equal(t, uint64(101), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Data, 1)
}

func TestHandleListForwardsFilters(t *testing.T) {
	svc := &stubService{}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/identifications?page=2&page_size=10&nat_op=Venda&n_nf=123&tp_nf=1&dh_emi=2024-01-01&search=mercadoria", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, svc.listPage)
	assert.Equal(t, 10, svc.listPageSize)
	assert.Equal(t, models.ListFilter{
		NatOp:  "Venda",
		NNF:    "123",
		TpNF:   "1",
		DhEmi:  "2024-01-01",
		Search: "mercadoria",
	}, svc.listFilter)
}

func TestHandleListRejectsBadParams(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"zero page", "/api/identifications?page=0"},
		{"negative page", "/api/identifications?page=-1"},
		{"non-integer page", "/api/identifications?page=abc"},
		{"zero page_size", "/api/identifications?page_size=0"},
		{"oversized page_size", "/api/identifications?page_size=1000"},
		{"bad dh_emi", "/api/identifications?dh_emi=not-a-date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{}
			w := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.url, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, svc.listPage, "service must not be called on bad params")
		})
	}
}

func TestHandleGet(t *testing.T) {
	rec := sampleRecord()
	svc := &stubService{getRecord: &rec}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/identifications/"+rec.InternalKey, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rec.InternalKey, svc.getID)

	var got models.Identification
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, rec.InternalKey, got.InternalKey)
}

func TestHandleGetErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domainerrors.New(domainerrors.CodeNotFound, "identification not found"), http.StatusNotFound},
		{"invalid identifier", domainerrors.New(domainerrors.CodeInvalidIdentifier, "malformed identifier"), http.StatusBadRequest},
		{"backing store", domainerrors.New(domainerrors.CodeBackingStore, "connection refused"), http.StatusInternalServerError},
		{"parse", domainerrors.New(domainerrors.CodeParse, "unparsable dh_emi timestamp"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{getErr: tc.err}
			w := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/identifications/some-id", nil))

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestHandleCreate(t *testing.T) {
	svc := &stubService{record: sampleRecord()}
	router := newRouter(svc)

	body := `{"c_uf":"35","c_nf":"12345678","nat_op":"Venda","mod":"55","serie":"1","n_nf":"123",` +
		`"dh_emi":"2024-01-01T10:00:00.000-03:00","tp_nf":"1","id_dest":"1","c_mun_fg":"3550308",` +
		`"tp_imp":"1","tp_emis":"1","c_dv":"9","tp_amb":"2","fin_nfe":"1","ind_final":"1",` +
		`"ind_pres":"1","proc_emi":"0","ver_proc":"1.0.0"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identifications", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "35", svc.createIn.CUF)
	assert.Equal(t, "123", svc.createIn.NNF)

	wantEmi := time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("", -3*3600))
	assert.True(t, svc.createIn.DhEmi.Equal(wantEmi))
}

func TestHandleCreateRejectsMalformedBody(t *testing.T) {
	svc := &stubService{}
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identifications", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.createIn.CUF)
}

func TestHandleUpdatePartialBody(t *testing.T) {
	svc := &stubService{record: sampleRecord()}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
		"/api/identifications/b5eb3b67-5cc6-4463-bb0f-a4fc3fb2fd57", strings.NewReader(`{"c_uf":"33"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b5eb3b67-5cc6-4463-bb0f-a4fc3fb2fd57", svc.updateID)
	require.NotNil(t, svc.updateIn.CUF)
	assert.Equal(t, "33", *svc.updateIn.CUF)
	assert.Nil(t, svc.updateIn.NatOp, "omitted fields must stay nil")
}

func TestHandleDelete(t *testing.T) {
	svc := &stubService{}
	router := newRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/identifications/b5eb3b67-5cc6-4463-bb0f-a4fc3fb2fd57", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "b5eb3b67-5cc6-4463-bb0f-a4fc3fb2fd57", svc.deleteID)
}

func TestHandleDeleteNotFound(t *testing.T) {
	svc := &stubService{deleteErr: domainerrors.New(domainerrors.CodeNotFound, "identification not found")}
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/identifications/some-id", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
