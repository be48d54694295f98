package mobile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/provider"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

type mobileTestEnv struct {
	db      *gorm.DB
	engine  *gin.Engine
	client  models.Client
	product models.Product
}

func setupMobileTest(t *testing.T) *mobileTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Driver{},
		&models.Vehicle{},
		&models.Product{},
		&models.DistributionCenter{},
		&models.Claim{},
		&models.ClaimItem{},
		&models.ClaimPhoto{},
		&models.ClaimLogEntry{},
	))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	loc := time.FixedZone("BRT", -3*60*60)
	c := &provider.Container{
		Config:   &config.Config{},
		Storage:  storage.NewLocal(t.TempDir(), "/uploads"),
		Location: loc,
	}
	c.UploadService = service.NewUploadService(config.UploadConfig{MaxSize: 5 << 20, MaxFilesPerRequest: 5})
	c.ClaimService = service.NewClaimService(service.ClaimServiceDeps{
		Claims:      repository.NewClaimRepository(db),
		Items:       repository.NewClaimItemRepository(db),
		Photos:      repository.NewClaimPhotoRepository(db),
		Logs:        repository.NewClaimLogRepository(db),
		Clients:     repository.NewClientRepository(db),
		Drivers:     repository.NewDriverRepository(db),
		Vehicles:    repository.NewVehicleRepository(db),
		Products:    repository.NewProductRepository(db),
		Centers:     repository.NewDistributionCenterRepository(db),
		Storage:     c.Storage,
		Invalidator: service.NewMetricsInvalidator(nil, loc),
		Location:    loc,
	})
	c.ReferenceService = service.NewReferenceService(service.ReferenceServiceDeps{
		Clients:  repository.NewClientRepository(db),
		Drivers:  repository.NewDriverRepository(db),
		Vehicles: repository.NewVehicleRepository(db),
		Products: repository.NewProductRepository(db),
		Centers:  repository.NewDistributionCenterRepository(db),
	})

	env := &mobileTestEnv{
		db:      db,
		client:  models.Client{CompanyName: "Drogaria Paulista", CNPJ: "11.222.333/0001-81", Active: true},
		product: models.Product{Name: "Amoxicilina 500mg", ControlCode: "CTL-900", Active: true},
	}
	require.NoError(t, db.Create(&env.client).Error)
	require.NoError(t, db.Create(&env.product).Error)
	retired := models.Product{Name: "Produto Antigo", ControlCode: "CTL-OLD", Active: true}
	require.NoError(t, db.Create(&retired).Error)
	require.NoError(t, db.Model(&retired).Update("active", false).Error)

	h := New(c)
	r := gin.New()
	group := r.Group("/mobile")
	group.Use(func(ctx *gin.Context) {
		ctx.Set(shared.ContextKeyUserID, uint(42))
		ctx.Set(shared.ContextKeyUsername, "motorista")
		ctx.Set(shared.ContextKeyLocation, "Extrema")
		ctx.Next()
	})
	group.GET("/claims", h.ListClaims)
	group.POST("/claims", h.CreateClaim)
	group.GET("/claims/:id", h.GetClaim)
	group.POST("/claims/:id/notes", h.AddNote)
	group.POST("/claims/:id/photos", h.AttachPhotos)
	group.GET("/products", h.ListProducts)
	env.engine = r
	return env
}

func (e *mobileTestEnv) serve(t *testing.T, req *http.Request) envelope {
	t.Helper()
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestMobileListsOnlyActiveProducts(t *testing.T) {
	env := setupMobileTest(t)
	resp := env.serve(t, httptest.NewRequest(http.MethodGet, "/mobile/products", nil))
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Equal(t, int64(1), resp.Pagination.Total)
	assert.NotContains(t, string(resp.Data), "CTL-OLD")
}

func TestMobileClaimFlow(t *testing.T) {
	env := setupMobileTest(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("client_id", fmt.Sprint(env.client.ID)))
	require.NoError(t, writer.WriteField("invoice_number", "NF-880"))
	require.NoError(t, writer.WriteField("items", fmt.Sprintf(`[{"product_id":%d,"quantity":1}]`, env.product.ID)))
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, "/mobile/claims", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := env.serve(t, req)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var claim models.Claim
	require.NoError(t, json.Unmarshal(resp.Data, &claim))
	assert.Equal(t, "Extrema", claim.Location)
	assert.Equal(t, constants.ClaimStatusOpen, claim.Status)

	note, err := json.Marshal(shared.NoteRequest{Text: "Caixa amassada na descarga"})
	require.NoError(t, err)
	noteReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/mobile/claims/%d/notes", claim.ID), bytes.NewReader(note))
	noteReq.Header.Set("Content-Type", "application/json")
	resp = env.serve(t, noteReq)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	resp = env.serve(t, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/mobile/claims/%d/photos", claim.ID), nil))
	assert.Equal(t, 400, resp.StatusCode, "photo upload without files must be rejected")

	resp = env.serve(t, httptest.NewRequest(http.MethodGet, "/mobile/claims?status=open", nil))
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Equal(t, int64(1), resp.Pagination.Total)

	resp = env.serve(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/mobile/claims/%d", claim.ID), nil))
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Contains(t, string(resp.Data), "Caixa amassada na descarga")
}
