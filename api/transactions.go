package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nemopss/carbon-tracker/backend/emission"
	"github.com/nemopss/carbon-tracker/backend/models"
)

// CreateTransaction godoc
// @Summary Record a transaction
// @Description The carbon footprint is computed once, from the category factor, and stored with the transaction.
// @Tags transactions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param transaction body models.CreateTransaction true "Transaction data"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/transactions [post]
func (h *Handler) CreateTransaction(c *gin.Context) {
	var input models.CreateTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := newTransaction(userID(c), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	emission.Apply(t, h.now())

	if err := h.storage.CreateTransaction(c.Request.Context(), t); err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

// GetTransactions godoc
// @Summary List all transactions, newest first
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Transaction
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/transactions [get]
func (h *Handler) GetTransactions(c *gin.Context) {
	transactions, err := h.storage.ListTransactions(c.Request.Context(), userID(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// GetCategories godoc
// @Summary Category catalog with emission factors
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.CategoryInfo
// @Router /api/transactions/categories [get]
func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, emission.Catalog())
}

// GetCarbonSummary godoc
// @Summary Footprint of the current calendar month and the previous one
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.CarbonSummary
// @Failure 500 {object} models.ErrorResponse
// @Router /api/transactions/carbon-summary [get]
func (h *Handler) GetCarbonSummary(c *gin.Context) {
	summary, err := h.analytics.CarbonSummary(c.Request.Context(), userID(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// newTransaction validates the request body and converts it into an
// unsaved transaction owned by userID.
func newTransaction(userID int, input models.CreateTransaction) (*models.Transaction, error) {
	t := &models.Transaction{
		UserID:          userID,
		Description:     strings.TrimSpace(input.Description),
		Amount:          input.Amount,
		Currency:        strings.ToUpper(strings.TrimSpace(input.Currency)),
		ConfidenceScore: input.ConfidenceScore,
	}

	if t.Amount != nil && *t.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if t.ConfidenceScore != nil && (*t.ConfidenceScore < 0 || *t.ConfidenceScore > 1) {
		return nil, errors.New("confidenceScore must be between 0 and 1")
	}

	if input.Category != nil && *input.Category != "" {
		category, err := models.ParseCategory(*input.Category)
		if err != nil {
			return nil, err
		}
		t.Category = &category
	}

	if input.PaymentType != nil && *input.PaymentType != "" {
		paymentType, err := models.ParsePaymentType(*input.PaymentType)
		if err != nil {
			return nil, err
		}
		t.PaymentType = &paymentType
	}

	if input.Merchant != nil {
		if merchant := strings.TrimSpace(*input.Merchant); merchant != "" {
			t.Merchant = &merchant
		}
	}

	return t, nil
}
