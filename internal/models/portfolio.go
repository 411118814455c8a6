package models

// PortfolioState is the covered-call portfolio. Shares change only through
// assignment (and the optional repurchase that follows); the open contract
// is nil while idle. Only the covered-call simulator mutates it.
type PortfolioState struct {
	Cash   float64         `json:"cash"`
	Shares float64         `json:"shares"`
	Open   *OptionContract `json:"open_contract,omitempty"`
}

// Value marks the portfolio to market at the given spot. The open call
// carries no daily mark; it is settled at expiry or, for a contract still
// open when the data ends, at intrinsic value on the final close.
func (p *PortfolioState) Value(spot float64) float64 {
	return p.Cash + p.Shares*spot
}

// TerminalValue is the end-of-run mark: the per-step value less the
// intrinsic liability of any still-open call.
func (p *PortfolioState) TerminalValue(spot float64) float64 {
	v := p.Value(spot)
	if p.Open != nil {
		v -= p.Open.Intrinsic(spot) * p.Shares
	}
	return v
}

// BaselineState is the buy-and-hold portfolio: shares fixed at purchase,
// cash idle. Never mutated after initialization.
type BaselineState struct {
	Cash   float64 `json:"cash"`
	Shares float64 `json:"shares"`
}

// Value marks the baseline to market at the given spot.
func (b *BaselineState) Value(spot float64) float64 {
	return b.Cash + b.Shares*spot
}
