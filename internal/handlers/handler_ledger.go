package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/dranzd/storebunk-accounting/internal/core/ports/services"
	"github.com/dranzd/storebunk-accounting/internal/dto"
	"github.com/dranzd/storebunk-accounting/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler serves queries against the ledger read model.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/balances", h.getTrialBalance)
		ledger.GET("/accounts/:accountID/balance", h.getAccountBalance)
		ledger.GET("/accounts/:accountID/postings", h.listAccountPostings)
	}
}

// getTrialBalance godoc
// @Summary Trial balance
// @Description Lists the balance of every account with postings
// @Tags ledger
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant ID"
// @Success 200 {object} dto.ListBalancesResponse
// @Failure 500 {object} map[string]string "Failed to read balances"
// @Router /ledger/balances [get]
func (h *ledgerHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	resp, err := h.ledgerService.GetTrialBalance(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to read balances")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getAccountBalance godoc
// @Summary Account balance
// @Description Returns debits minus credits for an account, zero when nothing was posted
// @Tags ledger
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 500 {object} map[string]string "Failed to read balance"
// @Router /ledger/accounts/{accountID}/balance [get]
func (h *ledgerHandler) getAccountBalance(c *gin.Context) {
	accountID := c.Param("accountID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", accountID))

	resp, err := h.ledgerService.GetAccountBalance(c.Request.Context(), accountID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to read balance")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listAccountPostings godoc
// @Summary Account postings
// @Description Lists an account's postings with running balances in posting order
// @Tags ledger
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Param   from query string false "Earliest entry date, YYYY-MM-DD"
// @Param   to query string false "Latest entry date, YYYY-MM-DD"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListPostingsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list postings"
// @Router /ledger/accounts/{accountID}/postings [get]
func (h *ledgerHandler) listAccountPostings(c *gin.Context) {
	accountID := c.Param("accountID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", accountID))

	var params dto.ListPostingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListAccountPostings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListAccountPostings(c.Request.Context(), accountID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list postings")
		return
	}

	c.JSON(http.StatusOK, resp)
}
