// Package http 提供合约注册、期权链查询、头寸管理与时钟推进的 HTTP 接口。
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	contractapp "github.com/wyfcoding/optionlifecycle/internal/contract/application"
	contractdomain "github.com/wyfcoding/optionlifecycle/internal/contract/domain"
	lifecycleapp "github.com/wyfcoding/optionlifecycle/internal/lifecycle/application"
	lifecycledomain "github.com/wyfcoding/optionlifecycle/internal/lifecycle/domain"
	positionapp "github.com/wyfcoding/optionlifecycle/internal/position/application"
	positiondomain "github.com/wyfcoding/optionlifecycle/internal/position/domain"
	"github.com/wyfcoding/optionlifecycle/pkg/logger"
	"github.com/wyfcoding/optionlifecycle/pkg/response"
)

// LifecycleHandler HTTP 处理器
type LifecycleHandler struct {
	registry *contractapp.RegistryService
	ledger   *positionapp.LedgerService
	engine   *lifecycleapp.LifecycleEngine
}

// NewLifecycleHandler 创建 HTTP 处理器
func NewLifecycleHandler(registry *contractapp.RegistryService, ledger *positionapp.LedgerService, engine *lifecycleapp.LifecycleEngine) *LifecycleHandler {
	return &LifecycleHandler{
		registry: registry,
		ledger:   ledger,
		engine:   engine,
	}
}

// RegisterRoutes 注册路由
func (h *LifecycleHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1")
	{
		api.POST("/contracts", h.RegisterContract)
		api.GET("/contracts/:symbol", h.GetContract)
		api.PUT("/contracts/:symbol/open-interest", h.UpdateOpenInterest)
		api.GET("/chain", h.GetChain)
		api.POST("/positions", h.OpenPosition)
		api.GET("/positions/:contract_id", h.GetNetQuantity)
		api.POST("/clock/advance", h.AdvanceClock)
	}
}

// RegisterContractRequest 合约注册请求
type RegisterContractRequest struct {
	Underlying string `json:"underlying" binding:"required"`
	Kind       string `json:"kind" binding:"required"`
	Strike     string `json:"strike" binding:"required"`
	Expiry     string `json:"expiry" binding:"required"` // 2006-01-02
}

// RegisterContract 注册合约
func (h *LifecycleHandler) RegisterContract(c *gin.Context) {
	var req RegisterContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	strike, err := decimal.NewFromString(req.Strike)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid strike", err.Error())
		return
	}
	expiry, err := time.Parse("2006-01-02", req.Expiry)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid expiry", err.Error())
		return
	}

	symbol, err := h.registry.Register(c.Request.Context(), req.Underlying, contractdomain.ContractKind(req.Kind), strike, expiry)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"symbol": symbol})
}

// ContractDTO 合约视图
type ContractDTO struct {
	Symbol          string `json:"symbol"`
	Underlying      string `json:"underlying"`
	Kind            string `json:"kind"`
	Strike          string `json:"strike"`
	Expiry          string `json:"expiry"`
	OpenInterest    int64  `json:"open_interest"`
	Status          string `json:"status"`
	EffectiveExpiry string `json:"effective_expiry,omitempty"`
}

func toContractDTO(contract *contractdomain.Contract) ContractDTO {
	dto := ContractDTO{
		Symbol:       contract.Symbol,
		Underlying:   contract.Underlying,
		Kind:         string(contract.Kind),
		Strike:       contract.Strike.String(),
		Expiry:       contract.Expiry.Format("2006-01-02"),
		OpenInterest: contract.OpenInterest,
		Status:       contract.Status.String(),
	}
	if contract.EffectiveExpiry != nil {
		dto.EffectiveExpiry = contract.EffectiveExpiry.Format("2006-01-02")
	}
	return dto
}

// GetContract 查询合约详情
func (h *LifecycleHandler) GetContract(c *gin.Context) {
	symbol := c.Param("symbol")
	contract, err := h.registry.Get(c.Request.Context(), symbol)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, toContractDTO(contract))
}

// UpdateOpenInterestRequest 未平仓量更新请求
type UpdateOpenInterestRequest struct {
	OpenInterest int64 `json:"open_interest"`
}

// UpdateOpenInterest 更新未平仓量
func (h *LifecycleHandler) UpdateOpenInterest(c *gin.Context) {
	symbol := c.Param("symbol")
	var req UpdateOpenInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.registry.UpdateOpenInterest(c.Request.Context(), symbol, req.OpenInterest); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetChain 按条件过滤期权链。观察时刻默认为当前处理时钟。
func (h *LifecycleHandler) GetChain(c *gin.Context) {
	at, ok := h.engine.Now()
	if v := c.Query("at"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid observation time", err.Error())
			return
		}
		at, ok = parsed, true
	}
	if !ok {
		response.ErrorWithStatus(c, http.StatusBadRequest, "clock not started and no observation time given", "")
		return
	}

	preds := make([]contractdomain.ChainPredicate, 0, 3)
	if underlying := c.Query("underlying"); underlying != "" {
		preds = append(preds, contractdomain.ForUnderlying(underlying))
	}
	if v := c.Query("window_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid window_days", "")
			return
		}
		preds = append(preds, contractdomain.ExpiringWithin(at, time.Duration(days)*24*time.Hour))
	}
	if v := c.Query("min_open_interest"); v != "" {
		min, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid min_open_interest", "")
			return
		}
		preds = append(preds, contractdomain.MinOpenInterest(min))
	}

	chain, err := h.registry.FilterChain(c.Request.Context(), at, contractdomain.And(preds...))
	if err != nil {
		h.writeError(c, err)
		return
	}

	dtos := make([]ContractDTO, 0, len(chain))
	for _, contract := range chain {
		dtos = append(dtos, toContractDTO(contract))
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  dtos,
		"total": len(dtos),
	})
}

// OpenPositionRequest 开仓/加仓请求
type OpenPositionRequest struct {
	ContractID string `json:"contract_id" binding:"required"`
	Quantity   string `json:"quantity" binding:"required"`
}

// OpenPosition 开仓或加仓
func (h *LifecycleHandler) OpenPosition(c *gin.Context) {
	var req OpenPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid quantity", err.Error())
		return
	}

	positionID, err := h.ledger.OpenOrIncrease(c.Request.Context(), req.ContractID, quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"position_id": positionID})
}

// GetNetQuantity 查询合约净头寸
func (h *LifecycleHandler) GetNetQuantity(c *gin.Context) {
	contractID := c.Param("contract_id")
	qty, err := h.ledger.NetQuantity(c.Request.Context(), contractID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"contract_id":  contractID,
		"net_quantity": qty.String(),
	})
}

// AdvanceClockRequest 时钟推进请求
type AdvanceClockRequest struct {
	Time string `json:"time" binding:"required"` // RFC3339 或 2006-01-02
}

// AdvanceClock 推进处理时钟并评估合约到期
func (h *LifecycleHandler) AdvanceClock(c *gin.Context) {
	var req AdvanceClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	t, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		t, err = time.Parse("2006-01-02", req.Time)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid time", err.Error())
			return
		}
	}

	if err := h.engine.Advance(c.Request.Context(), t); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, gin.H{"clock": t.UTC().Format(time.RFC3339)})
}

// writeError 将领域错误映射为 HTTP 状态码
func (h *LifecycleHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, contractdomain.ErrDuplicateContract):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "")
	case errors.Is(err, contractdomain.ErrUnknownContract):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, contractdomain.ErrInvalidAttribute),
		errors.Is(err, positiondomain.ErrInvalidQuantity),
		errors.Is(err, lifecycledomain.ErrNonMonotonicClock):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, positiondomain.ErrContractNotTradable):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
	default:
		logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
	}
}
