package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/andresuchdata/shelfwatch/internal/service"
	"github.com/gin-gonic/gin"
)

type ReplenishmentHandler struct {
	service  *service.ReplenishmentService
	defaults domain.PolicyParameters
}

// NewReplenishmentHandler serves evaluations. defaults is the configured
// policy; every request starts from a copy of it.
func NewReplenishmentHandler(service *service.ReplenishmentService, defaults domain.PolicyParameters) *ReplenishmentHandler {
	return &ReplenishmentHandler{service: service, defaults: defaults}
}

// PolicyOverrides carries the policy fields a caller wants to change
type PolicyOverrides struct {
	RiskThreshold      *float64 `json:"risk_threshold" form:"risk_threshold"`
	SafetyBufferDays   *float64 `json:"safety_buffer_days" form:"safety_buffer_days"`
	VelocityWindowDays *int     `json:"velocity_window_days" form:"velocity_window_days"`
	ReorderMultiple    *float64 `json:"reorder_multiple" form:"reorder_multiple"`
	MinOrderQty        *float64 `json:"min_order_qty" form:"min_order_qty"`
	MaxOrderQty        *float64 `json:"max_order_qty" form:"max_order_qty"`
}

// Apply returns base with the set overrides applied.
func (o PolicyOverrides) Apply(base domain.PolicyParameters) domain.PolicyParameters {
	p := base
	if o.RiskThreshold != nil {
		p.RiskThreshold = *o.RiskThreshold
	}
	if o.SafetyBufferDays != nil {
		p.SafetyBufferDays = *o.SafetyBufferDays
	}
	if o.VelocityWindowDays != nil {
		p.VelocityWindowDays = *o.VelocityWindowDays
	}
	if o.ReorderMultiple != nil {
		p.ReorderMultiple = *o.ReorderMultiple
	}
	if o.MinOrderQty != nil {
		p.MinOrderQty = *o.MinOrderQty
	}
	if o.MaxOrderQty != nil {
		p.MaxOrderQty = *o.MaxOrderQty
	}
	return p
}

// EvaluateRequest is the body of an ad-hoc evaluation. Supply records use the
// supply.json wire names: open purchase orders go under "open_pos" with a "qty"
// and optional RFC 3339 "eta". "open_purchase_orders" and "quantity" are
// accepted as aliases.
type EvaluateRequest struct {
	Policy    PolicyOverrides        `json:"policy"`
	Positions []domain.PositionInput `json:"positions" binding:"required"`
}

func (h *ReplenishmentHandler) parsePolicy(c *gin.Context) (domain.PolicyParameters, error) {
	var overrides PolicyOverrides
	if err := c.ShouldBindQuery(&overrides); err != nil {
		return domain.PolicyParameters{}, fmt.Errorf("%w: %v", domain.ErrInvalidPolicy, err)
	}

	policy := overrides.Apply(h.defaults)
	if err := policy.Validate(); err != nil {
		return domain.PolicyParameters{}, err
	}
	return policy, nil
}

func (h *ReplenishmentHandler) parseFilter(c *gin.Context) (domain.EvaluationFilter, error) {
	var filter domain.EvaluationFilter

	if raw := strings.TrimSpace(c.Query("action")); raw != "" {
		action, ok := domain.ParseAction(raw)
		if !ok {
			return filter, fmt.Errorf("unknown action %q", raw)
		}
		filter.Action = action
	}

	splitList := func(param string) []string {
		var out []string
		for _, v := range c.QueryArray(param) {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
		return out
	}
	filter.SKUIDs = splitList("sku_ids")
	filter.LocationIDs = splitList("location_ids")

	if raw := strings.TrimSpace(c.Query("min_risk")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 100 {
			return filter, fmt.Errorf("min_risk must be an integer in [0,100]")
		}
		filter.MinRisk = n
	}

	return filter, nil
}

func (h *ReplenishmentHandler) GetPolicy(c *gin.Context) {
	c.JSON(http.StatusOK, h.defaults)
}

func (h *ReplenishmentHandler) GetEvaluations(c *gin.Context) {
	policy, filter, ok := h.parseRequest(c)
	if !ok {
		return
	}

	evals, err := h.service.Evaluate(c.Request.Context(), policy, filter)
	if err != nil {
		respondError(c, err, "failed to evaluate positions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  evals,
		"total":  len(evals),
		"policy": policy,
	})
}

func (h *ReplenishmentHandler) GetSummary(c *gin.Context) {
	policy, filter, ok := h.parseRequest(c)
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), policy, filter)
	if err != nil {
		respondError(c, err, "failed to summarize positions")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ReplenishmentHandler) GetAlerts(c *gin.Context) {
	policy, err := h.parsePolicy(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alerts, err := h.service.Alerts(c.Request.Context(), policy)
	if err != nil {
		respondError(c, err, "failed to build alerts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// PostEvaluate evaluates the positions in an EvaluateRequest body against the
// configured policy with the body's overrides applied.
func (h *ReplenishmentHandler) PostEvaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	for _, in := range req.Positions {
		if in.Position.OnHand < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("position %s: on_hand must be non-negative", in.Position.Key())})
			return
		}
	}

	policy := req.Policy.Apply(h.defaults)
	evals, err := h.service.EvaluateInputs(c.Request.Context(), req.Positions, policy)
	if err != nil {
		respondError(c, err, "failed to evaluate positions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  evals,
		"total":  len(evals),
		"policy": policy,
	})
}

func (h *ReplenishmentHandler) PostRefresh(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		respondError(c, err, "failed to refresh snapshot")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReplenishmentHandler) parseRequest(c *gin.Context) (domain.PolicyParameters, domain.EvaluationFilter, bool) {
	policy, err := h.parsePolicy(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return policy, domain.EvaluationFilter{}, false
	}

	filter, err := h.parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return policy, filter, false
	}

	return policy, filter, true
}

func respondError(c *gin.Context, err error, message string) {
	if errors.Is(err, domain.ErrInvalidPolicy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
}
