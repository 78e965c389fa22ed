package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/altamimi/custody-ledger/internal/domain/entity"
	"github.com/altamimi/custody-ledger/internal/ledger"
	"github.com/altamimi/custody-ledger/internal/report"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler exposes the ledger service over HTTP. The UI re-fetches both
// collections after every mutating call, so mutations return the minimum
// and the list endpoints return full snapshots.
type Handler struct {
	ledger *ledger.Service
	logger *zap.Logger
}

// NewHandler creates the API handler.
func NewHandler(svc *ledger.Service, logger *zap.Logger) *Handler {
	return &Handler{ledger: svc, logger: logger}
}

// Register mounts all ledger routes on the given group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/employees", h.listEmployees)
	api.GET("/expenses", h.listExpenses)
	api.POST("/expenses", h.createExpense)
	api.POST("/expenses/:id/confirm", h.confirmExpense)
	api.POST("/expenses/:id/reject", h.rejectExpense)
	api.DELETE("/expenses/:id", h.deleteExpense)
	api.GET("/reports/:month/export", h.exportMonthly)
}

func (h *Handler) listEmployees(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Employees(c.Request.Context()))
}

func (h *Handler) listExpenses(c *gin.Context) {
	expenses := h.ledger.Expenses(c.Request.Context())

	employeeID := c.Query("employeeId")
	month := c.Query("month")
	if employeeID == "" && month == "" {
		c.JSON(http.StatusOK, expenses)
		return
	}

	filtered := make([]entity.Expense, 0, len(expenses))
	for _, e := range expenses {
		if employeeID != "" && e.EmployeeID != employeeID {
			continue
		}
		if month != "" && e.Month != month {
			continue
		}
		filtered = append(filtered, e)
	}
	c.JSON(http.StatusOK, filtered)
}

// createExpenseRequest mirrors the persisted expense layout; createdBy and
// createdByName come from the caller's current-user record (the deep-link
// script fills them in the original UI) and are never derived server-side.
type createExpenseRequest struct {
	EmployeeID    string          `json:"employeeId"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         string          `json:"notes"`
	ReceiptURL    string          `json:"receiptUrl"`
	CreatedBy     string          `json:"createdBy"`
	CreatedByName string          `json:"createdByName"`
}

func (h *Handler) createExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	expense, err := h.ledger.CreateExpense(c.Request.Context(), ledger.CreateExpenseInput{
		EmployeeID:    req.EmployeeID,
		Type:          entity.ExpenseType(req.Type),
		Amount:        req.Amount,
		Date:          req.Date,
		PaymentMethod: entity.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
		ReceiptURL:    req.ReceiptURL,
		CreatedBy:     entity.Creator(req.CreatedBy),
		CreatedByName: req.CreatedByName,
	})
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Create expense failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create expense"})
		return
	}

	c.JSON(http.StatusCreated, expense)
}

func (h *Handler) confirmExpense(c *gin.Context) {
	if !h.ledger.ConfirmExpense(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) rejectExpense(c *gin.Context) {
	if !h.ledger.RejectExpense(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteExpense(c *gin.Context) {
	if !h.ledger.DeleteExpense(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportMonthly(c *gin.Context) {
	month := c.Param("month")
	expenses := h.ledger.Expenses(c.Request.Context())

	buf, err := report.BuildMonthly(month, expenses)
	if err != nil {
		h.logger.Error("Monthly report export failed",
			zap.String("month", month), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="expenses-%s.xlsx"`, month))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

func isValidationError(err error) bool {
	return errors.Is(err, ledger.ErrZeroAmount) ||
		errors.Is(err, ledger.ErrMissingEmployeeID) ||
		errors.Is(err, ledger.ErrInvalidType) ||
		errors.Is(err, ledger.ErrInvalidMethod)
}
