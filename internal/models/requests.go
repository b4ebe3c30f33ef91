package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// StartAnalysisRequest is the payload accepted by the start-analysis API.
// Tickers are expected pre-normalized (uppercase, deduplicated).
type StartAnalysisRequest struct {
	Tickers []string     `json:"tickers" validate:"required,min=1,max=5,dive,required,alphanum"`
	Mode    AnalysisMode `json:"mode" validate:"required,oneof=analyze compare"`
}

// Validate enforces the ticker-cap rules: 1-5 symbols for analyze,
// 2-5 for compare.
func (r *StartAnalysisRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid analysis request: %w", err)
	}
	if r.Mode == ModeCompare && len(r.Tickers) < 2 {
		return fmt.Errorf("comparison requires at least 2 tickers, got %d", len(r.Tickers))
	}
	return nil
}
