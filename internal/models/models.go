package models

import (
	"time"
)

// Role classifies an instrument within the watchlist
type Role string

const (
	RoleStock           Role = "stock"
	RoleEquityIndexETF  Role = "equity-index-etf"
	RoleSectorETF       Role = "sector-etf"
	RoleBondETF         Role = "bond-etf"
	RoleCommodityETF    Role = "commodity-etf"
	RoleMarketIndicator Role = "market-indicator"
)

// validRoles is the set of accepted role tags
var validRoles = map[Role]bool{
	RoleStock:           true,
	RoleEquityIndexETF:  true,
	RoleSectorETF:       true,
	RoleBondETF:         true,
	RoleCommodityETF:    true,
	RoleMarketIndicator: true,
}

// Instrument is a tracked symbol with its role tag.
// Immutable once configured.
type Instrument struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Role   Role   `json:"role" yaml:"role"`
	// Scale multiplies raw feed values before display and threshold
	// comparison. ^TNX quotes tenths of a percent, so it carries 0.1.
	Scale float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// Validate validates an Instrument
func (i *Instrument) Validate() error {
	if i.Symbol == "" {
		return ErrInvalidSymbol
	}
	if !validRoles[i.Role] {
		return ErrInvalidRole
	}
	if i.Scale < 0 {
		return ErrInvalidScale
	}
	return nil
}

// EffectiveScale returns the configured scale, defaulting to 1
func (i *Instrument) EffectiveScale() float64 {
	if i.Scale == 0 {
		return 1
	}
	return i.Scale
}

// PricePoint is a single (timestamp, price) observation
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// Validate validates a PricePoint
func (p *PricePoint) Validate() error {
	if p.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// PortfolioPosition is an optional held position with target and stop levels.
// Only the portfolio rule group reads these.
type PortfolioPosition struct {
	Symbol      string  `json:"symbol" yaml:"symbol"`
	Shares      float64 `json:"shares" yaml:"shares"`
	TargetPrice float64 `json:"target_price" yaml:"target_price"`
	StopLoss    float64 `json:"stop_loss" yaml:"stop_loss"`
}

// Validate validates a PortfolioPosition
func (p *PortfolioPosition) Validate() error {
	if p.Symbol == "" {
		return ErrInvalidSymbol
	}
	if p.Shares < 0 {
		return ErrInvalidShares
	}
	if p.TargetPrice < 0 || p.StopLoss < 0 {
		return ErrInvalidPrice
	}
	return nil
}
