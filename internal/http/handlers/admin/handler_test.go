package admin

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

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
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

type adminTestEnv struct {
	db        *gorm.DB
	container *provider.Container
	engine    *gin.Engine
	superuser models.User
}

func openHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
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
		&models.UserLoginLog{},
		&models.AuthzAuditLog{},
	))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestContainer(t *testing.T, db *gorm.DB) *provider.Container {
	t.Helper()
	loc := time.FixedZone("BRT", -3*60*60)
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "handler-test-secret", ExpireHours: 8, MobileExpireHours: 72},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true},
		},
		Upload: config.UploadConfig{MaxSize: 5 << 20, MaxFilesPerRequest: 5},
	}
	authzService, err := authz.NewService(db)
	require.NoError(t, err)
	require.NoError(t, authzService.BootstrapBuiltinRoles())

	c := &provider.Container{
		Config:   cfg,
		Storage:  storage.NewLocal(t.TempDir(), "/uploads"),
		Location: loc,
	}
	c.UserRepo = repository.NewUserRepository(db)
	c.UserLoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
	c.ClaimRepo = repository.NewClaimRepository(db)
	c.ClientRepo = repository.NewClientRepository(db)
	c.DriverRepo = repository.NewDriverRepository(db)
	c.VehicleRepo = repository.NewVehicleRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CenterRepo = repository.NewDistributionCenterRepository(db)

	c.AuthzService = authzService
	c.UserLoginLogService = service.NewUserLoginLogService(c.UserLoginLogRepo, authzService)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo, authzService)
	c.AuthService = service.NewAuthService(cfg, c.UserRepo, c.UserLoginLogService)
	c.UserService = service.NewUserService(c.UserRepo, c.AuthService, authzService, authzService, c.AuthzAuditService)
	c.UploadService = service.NewUploadService(cfg.Upload)
	c.ClaimService = service.NewClaimService(service.ClaimServiceDeps{
		Claims:      c.ClaimRepo,
		Items:       repository.NewClaimItemRepository(db),
		Photos:      repository.NewClaimPhotoRepository(db),
		Logs:        repository.NewClaimLogRepository(db),
		Clients:     c.ClientRepo,
		Drivers:     c.DriverRepo,
		Vehicles:    c.VehicleRepo,
		Products:    c.ProductRepo,
		Centers:     c.CenterRepo,
		Storage:     c.Storage,
		Authorizer:  authzService,
		Invalidator: service.NewMetricsInvalidator(nil, loc),
		Location:    loc,
	})
	c.ReferenceService = service.NewReferenceService(service.ReferenceServiceDeps{
		Clients:    c.ClientRepo,
		Drivers:    c.DriverRepo,
		Vehicles:   c.VehicleRepo,
		Products:   c.ProductRepo,
		Centers:    c.CenterRepo,
		Authorizer: authzService,
	})
	c.ExportService = service.NewExportService(c.ClaimService, authzService, loc)
	return c
}

// setupAdminTest 以超级用户身份挂载后台路由（跳过 JWT）
func setupAdminTest(t *testing.T) *adminTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openHandlerTestDB(t)
	env := &adminTestEnv{db: db, container: newTestContainer(t, db)}

	hash, err := env.container.AuthService.HashPassword("Senha123")
	require.NoError(t, err)
	env.superuser = models.User{Username: "root", PasswordHash: hash, AccessLevel: constants.UserAccessFull, IsSuper: true, IsActive: true, Location: "Cajamar"}
	require.NoError(t, db.Create(&env.superuser).Error)

	h := New(env.container)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	admin := r.Group("/admin")
	admin.Use(func(c *gin.Context) {
		c.Set(shared.ContextKeyUserID, env.superuser.ID)
		c.Set(shared.ContextKeyUsername, env.superuser.Username)
		c.Set(shared.ContextKeyIsSuper, true)
		c.Set(shared.ContextKeyLocation, env.superuser.Location)
		c.Next()
	})
	admin.GET("/me", h.GetMe)
	admin.GET("/claims", h.ListClaims)
	admin.POST("/claims", h.CreateClaim)
	admin.GET("/claims/search", h.SearchClaims)
	admin.GET("/claims/export", h.ExportClaims)
	admin.GET("/claims/:id", h.GetClaim)
	admin.POST("/claims/:id/decision", h.DecideClaim)
	admin.POST("/claims/:id/notes", h.AddNote)
	admin.PUT("/claims/:id/items", h.EditItems)
	admin.PUT("/claims/:id/distribution-center", h.TransferDistributionCenter)
	admin.GET("/clients", h.ListClients)
	admin.POST("/clients", h.CreateClient)
	admin.DELETE("/clients/:id", h.DeactivateClient)
	admin.POST("/clients/:id/reactivate", h.ReactivateClient)
	admin.GET("/reference/availability", h.CheckReferenceAvailability)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.DELETE("/users/:id", h.DeactivateUser)
	admin.GET("/roles", h.ListRoles)
	admin.GET("/authz-audit-logs", h.ListAuthzAuditLogs)
	admin.GET("/user-login-logs", h.GetUserLoginLogs)
	env.engine = r
	return env
}

func (e *adminTestEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.serve(t, req)
}

func (e *adminTestEnv) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

type claimRefs struct {
	client  models.Client
	product models.Product
	center  models.DistributionCenter
}

func seedClaimRefs(t *testing.T, db *gorm.DB) claimRefs {
	t.Helper()
	refs := claimRefs{
		client:  models.Client{CompanyName: "Drogaria Paulista", CNPJ: "11.222.333/0001-81", Active: true},
		product: models.Product{Name: "Amoxicilina 500mg", ControlCode: "CTL-900", Active: true},
		center:  models.DistributionCenter{Name: "CD Cajamar", Code: "CAJ", Active: true},
	}
	require.NoError(t, db.Create(&refs.client).Error)
	require.NoError(t, db.Create(&refs.product).Error)
	require.NoError(t, db.Create(&refs.center).Error)
	return refs
}

func claimMultipart(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, "/admin/claims", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func (e *adminTestEnv) createClaim(t *testing.T, refs claimRefs) models.Claim {
	t.Helper()
	items := fmt.Sprintf(`[{"product_id":%d,"quantity":3,"lot":"L-77"}]`, refs.product.ID)
	_, resp := e.serve(t, claimMultipart(t, map[string]string{
		"client_id":      fmt.Sprint(refs.client.ID),
		"invoice_number": "NF-5501",
		"value":          "1.250,90",
		"items":          items,
	}))
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var claim models.Claim
	require.NoError(t, json.Unmarshal(resp.Data, &claim))
	return claim
}

func TestLoginHandler(t *testing.T) {
	env := setupAdminTest(t)

	_, resp := env.do(t, http.MethodPost, "/auth/login", LoginRequest{Username: "root", Password: "Senha123"})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "root", login.User.Username)

	_, resp = env.do(t, http.MethodPost, "/auth/login", LoginRequest{Username: "root", Password: "errada"})
	assert.Equal(t, 401, resp.StatusCode)

	_, resp = env.do(t, http.MethodGet, "/admin/user-login-logs?status=failed", nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Equal(t, int64(1), resp.Pagination.Total)
}

func TestClaimHandlersLifecycle(t *testing.T) {
	env := setupAdminTest(t)
	refs := seedClaimRefs(t, env.db)
	claim := env.createClaim(t, refs)
	assert.Equal(t, constants.ClaimStatusOpen, claim.Status)
	assert.Equal(t, "Cajamar", claim.Location)

	_, resp := env.do(t, http.MethodGet, "/admin/claims", nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Equal(t, int64(1), resp.Pagination.Total)

	_, resp = env.do(t, http.MethodGet, fmt.Sprintf("/admin/claims/%d", claim.ID), nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var detail service.ClaimDetail
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.Equal(t, claim.ID, detail.Claim.ID)

	_, resp = env.do(t, http.MethodGet, "/admin/claims/999", nil)
	assert.Equal(t, 404, resp.StatusCode)
	_, resp = env.do(t, http.MethodGet, "/admin/claims/abc", nil)
	assert.Equal(t, 400, resp.StatusCode)

	_, resp = env.do(t, http.MethodPost, fmt.Sprintf("/admin/claims/%d/notes", claim.ID), shared.NoteRequest{Text: "  "})
	assert.Equal(t, 400, resp.StatusCode)

	_, resp = env.do(t, http.MethodPost, fmt.Sprintf("/admin/claims/%d/decision", claim.ID), DecisionRequest{
		Action:               "return",
		DistributionCenterID: &refs.center.ID,
	})
	assert.Equal(t, 400, resp.StatusCode, "return without return invoice must be rejected")

	_, resp = env.do(t, http.MethodPost, fmt.Sprintf("/admin/claims/%d/decision", claim.ID), DecisionRequest{
		Action:               "return",
		ReturnInvoiceNumber:  "NFD-77",
		DistributionCenterID: &refs.center.ID,
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	_, resp = env.do(t, http.MethodPut, fmt.Sprintf("/admin/claims/%d/distribution-center", claim.ID), TransferCenterRequest{
		DistributionCenterID: refs.center.ID,
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.NotEqual(t, "success", resp.Msg, "unchanged center should carry a warning message")

	_, resp = env.do(t, http.MethodGet, "/admin/claims?status=awaiting_return", nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var list ClaimListResponse
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list.Claims, 1)
	assert.Equal(t, int64(1), list.CenterCounts[refs.center.ID])
}

func TestEditItemsAcceptsNumericAndTextQuantities(t *testing.T) {
	env := setupAdminTest(t)
	refs := seedClaimRefs(t, env.db)
	claim := env.createClaim(t, refs)
	var item models.ClaimItem
	require.NoError(t, env.db.Where("claim_id = ?", claim.ID).First(&item).Error)

	body := json.RawMessage(fmt.Sprintf(`{
		"retained": [{"item_id": %d, "quantity": 5, "lot": "L-78"}],
		"new": [
			{"product_id": %d, "quantity": 2},
			{"product_id": %d, "quantity": "4"},
			{"product_id": %d, "quantity": 0},
			{"product_id": %d, "quantity": -5},
			{"product_id": %d, "quantity": 1.5},
			{"product_id": %d, "quantity": null}
		]
	}`, item.ID, refs.product.ID, refs.product.ID, refs.product.ID, refs.product.ID, refs.product.ID, refs.product.ID))
	_, resp := env.do(t, http.MethodPut, fmt.Sprintf("/admin/claims/%d/items", claim.ID), body)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	var payload struct {
		Result service.EditLineItemsResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &payload))
	assert.Equal(t, service.EditLineItemsResult{Updated: 1, Added: 4, Skipped: 2}, payload.Result)

	var items []models.ClaimItem
	require.NoError(t, env.db.Where("claim_id = ?", claim.ID).Order("id").Find(&items).Error)
	require.Len(t, items, 5)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, []int{2, 4, 1, 1}, []int{items[1].Quantity, items[2].Quantity, items[3].Quantity, items[4].Quantity})
}

func TestClaimCreateValidation(t *testing.T) {
	env := setupAdminTest(t)
	refs := seedClaimRefs(t, env.db)

	_, resp := env.serve(t, claimMultipart(t, map[string]string{
		"client_id":      fmt.Sprint(refs.client.ID),
		"invoice_number": "NF-1",
		"value":          "abc",
	}))
	assert.Equal(t, 400, resp.StatusCode)

	_, resp = env.serve(t, claimMultipart(t, map[string]string{
		"client_id":      fmt.Sprint(refs.client.ID),
		"invoice_number": "NF-1",
		"items":          "[]",
	}))
	assert.Equal(t, 400, resp.StatusCode)
}

func TestExportClaimsHandler(t *testing.T) {
	env := setupAdminTest(t)
	env.createClaim(t, seedClaimRefs(t, env.db))

	req := httptest.NewRequest(http.MethodGet, "/admin/claims/export?invoice=5501", nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "avarias_")
	assert.NotZero(t, w.Body.Len())
}

func TestReferenceClientHandlers(t *testing.T) {
	env := setupAdminTest(t)

	req := ClientRequest{CompanyName: "Farmácia Boa Saúde", CNPJ: "22.333.444/0001-55"}
	_, resp := env.do(t, http.MethodPost, "/admin/clients", req)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var client models.Client
	require.NoError(t, json.Unmarshal(resp.Data, &client))
	assert.True(t, client.Active)

	_, resp = env.do(t, http.MethodPost, "/admin/clients", req)
	assert.Equal(t, 409, resp.StatusCode)

	_, resp = env.do(t, http.MethodGet, "/admin/reference/availability?type=client&value=22.333.444/0001-55", nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Contains(t, string(resp.Data), "false")

	_, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/clients/%d", client.ID), nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	_, resp = env.do(t, http.MethodGet, "/admin/clients?active=true", nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Equal(t, int64(0), resp.Pagination.Total)

	_, resp = env.do(t, http.MethodPost, fmt.Sprintf("/admin/clients/%d/reactivate", client.ID), nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	_, resp = env.do(t, http.MethodGet, "/admin/clients?active=true", nil)
	assert.Equal(t, int64(1), resp.Pagination.Total)

	_, resp = env.do(t, http.MethodDelete, "/admin/clients/999", nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestUserHandlers(t *testing.T) {
	env := setupAdminTest(t)

	_, resp := env.do(t, http.MethodGet, "/admin/roles", nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Contains(t, string(resp.Data), constants.RoleOperational)

	_, resp = env.do(t, http.MethodPost, "/admin/users", UserRequest{
		Username:    "operador",
		Password:    "curta",
		AccessLevel: constants.UserAccessMobile,
	})
	assert.Equal(t, 400, resp.StatusCode, "weak password must be rejected")

	_, resp = env.do(t, http.MethodPost, "/admin/users", UserRequest{
		Username:    "operador",
		Password:    "Senha123",
		AccessLevel: constants.UserAccessMobile,
		Roles:       []string{constants.RoleOperational},
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var created service.UserView
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, []string{constants.RoleOperational}, created.Roles)

	_, resp = env.do(t, http.MethodGet, "/admin/users?access_level=mobile", nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Equal(t, int64(1), resp.Pagination.Total)

	_, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/users/%d", env.superuser.ID), nil)
	assert.Equal(t, 400, resp.StatusCode, "self deactivation must be rejected")

	_, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/users/%d", created.ID), nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	_, resp = env.do(t, http.MethodGet, fmt.Sprintf("/admin/authz-audit-logs?target_user_id=%d", created.ID), nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Equal(t, int64(2), resp.Pagination.Total)
}
