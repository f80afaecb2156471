package api

import (
	"net/http"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/service/wallet"
	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	service wallet.WalletUseCase
}

type addFundsRequest struct {
	Amount int64 `json:"amount"`
}

func NewWalletHandler(service wallet.WalletUseCase) *WalletHandler {
	return &WalletHandler{service: service}
}

func (h *WalletHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.balance)
	router.POST("/add", h.add)
	router.GET("/history", h.history)
}

func (h *WalletHandler) balance(c *gin.Context) {
	balance, err := h.service.GetBalance(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (h *WalletHandler) add(c *gin.Context) {
	var req addFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrInvalidAmount)
		return
	}

	balance, err := h.service.AddFunds(c.Request.Context(), currentUserID(c), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Funds added successfully", "balance": balance})
}

func (h *WalletHandler) history(c *gin.Context) {
	entries, err := h.service.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries})
}
