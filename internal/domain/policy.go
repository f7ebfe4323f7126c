package domain

import "fmt"

const (
	DefaultRiskThreshold      = 60
	DefaultSafetyBufferDays   = 2
	DefaultVelocityWindowDays = 7
	DefaultReorderMultiple    = 1
	DefaultMinOrderQty        = 0
	DefaultMaxOrderQty        = 500
)

// PolicyParameters configures one evaluation run. Callers build a fresh value
// per run; the engine never reads policy from anywhere else.
type PolicyParameters struct {
	RiskThreshold      float64 `json:"risk_threshold" mapstructure:"risk_threshold"`
	SafetyBufferDays   float64 `json:"safety_buffer_days" mapstructure:"safety_buffer_days"`
	VelocityWindowDays int     `json:"velocity_window_days" mapstructure:"velocity_window_days"`
	ReorderMultiple    float64 `json:"reorder_multiple" mapstructure:"reorder_multiple"`
	MinOrderQty        float64 `json:"min_order_qty" mapstructure:"min_order_qty"`
	MaxOrderQty        float64 `json:"max_order_qty" mapstructure:"max_order_qty"`
}

// DefaultPolicy returns the stock policy.
func DefaultPolicy() PolicyParameters {
	return PolicyParameters{
		RiskThreshold:      DefaultRiskThreshold,
		SafetyBufferDays:   DefaultSafetyBufferDays,
		VelocityWindowDays: DefaultVelocityWindowDays,
		ReorderMultiple:    DefaultReorderMultiple,
		MinOrderQty:        DefaultMinOrderQty,
		MaxOrderQty:        DefaultMaxOrderQty,
	}
}

// Validate checks the preconditions the engine assumes but does not enforce.
func (p PolicyParameters) Validate() error {
	switch {
	case p.RiskThreshold < 0 || p.RiskThreshold > 100:
		return fmt.Errorf("%w: risk_threshold %v outside [0,100]", ErrInvalidPolicy, p.RiskThreshold)
	case p.SafetyBufferDays < 0:
		return fmt.Errorf("%w: safety_buffer_days must be non-negative", ErrInvalidPolicy)
	case p.VelocityWindowDays <= 0:
		return fmt.Errorf("%w: velocity_window_days must be positive", ErrInvalidPolicy)
	case p.ReorderMultiple <= 0:
		return fmt.Errorf("%w: reorder_multiple must be positive", ErrInvalidPolicy)
	case p.MinOrderQty < 0 || p.MaxOrderQty < 0:
		return fmt.Errorf("%w: order quantity bounds must be non-negative", ErrInvalidPolicy)
	case p.MinOrderQty > p.MaxOrderQty:
		return fmt.Errorf("%w: min_order_qty %v exceeds max_order_qty %v", ErrInvalidPolicy, p.MinOrderQty, p.MaxOrderQty)
	}
	return nil
}
