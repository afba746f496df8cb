package intake

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theminddepartment/booking-api/internal/handler"
	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/service/intake"
)

type fakeRepo struct {
	disclaimer *model.Disclaimer
}

func (f *fakeRepo) CreateProfile(context.Context, *model.IntakeProfile) error { return nil }
func (f *fakeRepo) UpdateProfile(context.Context, *model.IntakeProfile) error { return nil }
func (f *fakeRepo) GetProfile(context.Context, uuid.UUID) (*model.IntakeProfile, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeRepo) GetProfileByEmail(context.Context, string) (*model.IntakeProfile, error) {
	return nil, nil
}
func (f *fakeRepo) ListProfiles(context.Context) ([]*model.IntakeProfile, error) { return nil, nil }
func (f *fakeRepo) ExpireAll(context.Context) (int64, error)                     { return 0, nil }
func (f *fakeRepo) ExpireOne(context.Context, uuid.UUID) error                   { return nil }
func (f *fakeRepo) GetActiveDisclaimer(context.Context) (*model.Disclaimer, error) {
	return f.disclaimer, nil
}
func (f *fakeRepo) CreateDisclaimer(_ context.Context, d *model.Disclaimer) error {
	f.disclaimer = d
	return nil
}

func newTestRouter(repo *fakeRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(intake.NewService(repo, nil))
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestActiveDisclaimerNonePublished(t *testing.T) {
	// A fresh system has no disclaimer rows yet; the public endpoint
	// answers 404, not an internal error.
	router := newTestRouter(&fakeRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/disclaimer", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestActiveDisclaimerPublished(t *testing.T) {
	router := newTestRouter(&fakeRepo{
		disclaimer: &model.Disclaimer{ID: uuid.New(), Version: "v3", Content: "terms", Active: true},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/disclaimer", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string           `json:"status"`
		Data   model.Disclaimer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "v3", resp.Data.Version)
}
