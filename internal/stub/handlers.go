package stub

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"procurepay/internal/model"
	"procurepay/pkg/pagination"
	"procurepay/pkg/response"
)

// Handler exposes the stub API over gin.
type Handler struct {
	svc       *Service
	secret    []byte
	mediaRoot string
	log       *logrus.Logger
}

// NewHandler builds the handler set. mediaRoot is where uploads land.
func NewHandler(svc *Service, secret []byte, mediaRoot string, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, secret: secret, mediaRoot: mediaRoot, log: log}
}

// NewRouter assembles the full stub router with CORS and routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.Static("/media", h.mediaRoot)

	h.RegisterRoutes(router)
	return router
}

// RegisterRoutes attaches every API route to router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/register/", h.Register)
		auth.POST("/login/", h.Login)
	}

	requests := router.Group("/api/requests")
	{
		requests.GET("/", RequireRole(h.secret), h.ListRequests)
		requests.POST("/", RequireRole(h.secret, model.RoleStaff), h.CreateRequest)
		requests.GET("/my_approvals/", RequireRole(h.secret, model.RoleApproverL1, model.RoleApproverL2), h.MyApprovals)
		requests.GET("/:id/", RequireRole(h.secret), h.GetRequest)
		requests.PUT("/:id/", RequireRole(h.secret, model.RoleStaff), h.UpdateRequest)
		requests.DELETE("/:id/", RequireRole(h.secret, model.RoleStaff), h.DeleteRequest)
		requests.POST("/:id/approve/", RequireRole(h.secret, model.RoleApproverL1, model.RoleApproverL2), h.Approve)
		requests.POST("/:id/reject/", RequireRole(h.secret, model.RoleApproverL1, model.RoleApproverL2), h.Reject)
	}

	router.GET("/api/approvals/pending/", RequireRole(h.secret, model.RoleApproverL1, model.RoleApproverL2), h.PendingApprovals)

	finance := router.Group("/api/finance")
	finance.Use(RequireRole(h.secret, model.RoleFinance))
	{
		finance.GET("/", h.FinanceRequests)
		finance.GET("/purchase_orders/", h.PurchaseOrders)
		finance.POST("/:id/place_order/", h.PlaceOrder)
		finance.POST("/:id/upload_receipt/", h.UploadReceipt)
		finance.POST("/:id/validate_receipt/", h.ValidateReceipt)
		finance.POST("/:id/complete/", h.Complete)
	}
}

// writeErr maps service errors to the contract's status codes.
func writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error("Not found."))
	case errors.Is(err, errForbidden):
		c.JSON(http.StatusForbidden, response.Error(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

// saveUpload stores one uploaded file under the media root with a random
// name and returns its public path.
func (h *Handler) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	name := uuid.NewString() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.mediaRoot, name)); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return "/media/" + name, nil
}

// --- Auth ---

type registerForm struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	u, err := h.svc.RegisterUser(c.Request.Context(), form.Name, form.Email, form.Password, model.Role(form.Role))
	if err != nil {
		writeErr(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{"user": u.Email, "role": u.Role}).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role})
}

type loginForm struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	u, err := h.svc.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(err.Error()))
		return
	}
	token, err := IssueToken(h.secret, u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error("failed to issue token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// --- Requests ---

type requestForm struct {
	Title       string `form:"title" binding:"required,min=3"`
	Description string `form:"description" binding:"required,min=10"`
	Amount      string `form:"amount" binding:"required"`
	Quantity    int    `form:"quantity" binding:"required,gt=0"`
	Department  string `form:"department" binding:"required"`
	VendorName  string `form:"vendor_name" binding:"required,min=2"`
	Category    string `form:"category" binding:"required"`
	Urgency     string `form:"urgency" binding:"required,oneof=low normal high critical"`
}

func (f requestForm) toRecord() (*Request, error) {
	amount, err := decimal.NewFromString(f.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", f.Amount, err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", f.Amount)
	}
	return &Request{
		Title:       f.Title,
		Description: f.Description,
		Amount:      amount,
		Quantity:    f.Quantity,
		Department:  f.Department,
		VendorName:  f.VendorName,
		Category:    f.Category,
		Urgency:     f.Urgency,
	}, nil
}

// ListRequests returns the caller's own requests in the paginated envelope.
func (h *Handler) ListRequests(c *gin.Context) {
	who := identityFrom(c)
	records, err := h.svc.store.RequestsByCreator(c.Request.Context(), who.UserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	all := toWireList(records)
	params := pagination.Parse(c)
	start, end := params.Slice(len(all))
	c.JSON(http.StatusOK, response.List(len(all), all[start:end]))
}

func (h *Handler) GetRequest(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	record, err := h.svc.store.RequestByID(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toWire(*record))
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var form requestForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	record, err := form.toRecord()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	proforma, err := c.FormFile("proforma_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("proforma_file is required"))
		return
	}
	record.ProformaFile, err = h.saveUpload(c, proforma)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(err.Error()))
		return
	}

	created, err := h.svc.CreateRequest(c.Request.Context(), identityFrom(c), record)
	if err != nil {
		writeErr(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{"request": created.ID, "by": created.CreatedByName}).Info("request created")
	c.JSON(http.StatusCreated, toWire(*created))
}

func (h *Handler) UpdateRequest(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	var form requestForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	record, err := form.toRecord()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	// The proforma is optional on update; absence keeps the existing file.
	if proforma, ferr := c.FormFile("proforma_file"); ferr == nil {
		record.ProformaFile, err = h.saveUpload(c, proforma)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.Error(err.Error()))
			return
		}
	}

	updated, err := h.svc.UpdateRequest(c.Request.Context(), identityFrom(c), id, record)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toWire(*updated))
}

func (h *Handler) DeleteRequest(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	if err := h.svc.DeleteRequest(c.Request.Context(), identityFrom(c), id); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Approvals ---

func (h *Handler) PendingApprovals(c *gin.Context) {
	records, err := h.svc.PendingFor(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireList(records))
}

func (h *Handler) MyApprovals(c *gin.Context) {
	who := identityFrom(c)
	records, err := h.svc.store.RequestsReviewedBy(c.Request.Context(), who.UserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireList(records))
}

type decisionForm struct {
	Comment string `json:"comment"`
}

func (h *Handler) decide(c *gin.Context, decision string) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	var form decisionForm
	// Empty body is fine; the comment is optional.
	_ = c.ShouldBindJSON(&form)

	updated, err := h.svc.Decide(c.Request.Context(), identityFrom(c), id, decision, form.Comment)
	if err != nil {
		writeErr(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{"request": id, "decision": decision, "status": updated.Status}).Info("request decided")
	c.JSON(http.StatusOK, toWire(*updated))
}

func (h *Handler) Approve(c *gin.Context) { h.decide(c, model.DecisionApproved) }

func (h *Handler) Reject(c *gin.Context) { h.decide(c, model.DecisionRejected) }

// --- Finance ---

func (h *Handler) FinanceRequests(c *gin.Context) {
	records, err := h.svc.FinanceRequests(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireList(records))
}

func (h *Handler) PurchaseOrders(c *gin.Context) {
	records, err := h.svc.store.RequestsWithPurchaseOrder(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toWireList(records))
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	file, err := c.FormFile("purchase_order_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("purchase_order_file is required"))
		return
	}
	path, err := h.saveUpload(c, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(err.Error()))
		return
	}
	updated, err := h.svc.PlaceOrder(c.Request.Context(), identityFrom(c), id, path)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toWire(*updated))
}

func (h *Handler) UploadReceipt(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	file, err := c.FormFile("receipt_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("receipt_file is required"))
		return
	}
	path, err := h.saveUpload(c, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(err.Error()))
		return
	}
	updated, err := h.svc.UploadReceipt(c.Request.Context(), identityFrom(c), id, path)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toWire(*updated))
}

type validateReceiptForm struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

func (h *Handler) ValidateReceipt(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	var form validateReceiptForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	updated, err := h.svc.ValidateReceipt(c.Request.Context(), identityFrom(c), id, form.Status, form.Comment)
	if err != nil {
		writeErr(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{"request": id, "receipt": form.Status}).Info("receipt validated")
	c.JSON(http.StatusOK, toWire(*updated))
}

func (h *Handler) Complete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}
	updated, err := h.svc.Complete(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toWire(*updated))
}
