// Package orders fills market orders against an account at the instrument's
// current simulated price.
package orders

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zappabad/papertrade/internal/account"
	"github.com/zappabad/papertrade/internal/market"
	"github.com/zappabad/papertrade/internal/market/pricegen"
)

var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidShares      = errors.New("shares must be positive")
	ErrInvalidSide        = errors.New("side must be BUY or SELL")
	ErrSymbolMismatch     = errors.New("order symbol does not match instrument")

	ErrInvalidParams        = errors.New("invalid risk parameters")
	ErrStopLossAbovePrice   = fmt.Errorf("%w: stop-loss must be below entry price", ErrInvalidParams)
	ErrTakeProfitBelowPrice = fmt.Errorf("%w: take-profit must be above entry price", ErrInvalidParams)
)

// Request is a user order. Non-positive thresholds mean "not set".
type Request struct {
	Symbol     string
	Side       account.Side
	Shares     int64
	StopLoss   *float64
	TakeProfit *float64
}

// Result describes a filled order.
type Result struct {
	Transaction account.Transaction `json:"transaction"`
	Price       float64             `json:"price"`
	Value       decimal.Decimal     `json:"value"`
	XPAwarded   int64               `json:"xp_awarded"`
	LevelUp     bool                `json:"level_up"`
	NewPrice    float64             `json:"new_price"`
}

// Engine executes orders. It holds no state besides its configuration.
type Engine struct {
	cfg   Config
	newID func() string
}

// NewEngine creates an Engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults(), newID: uuid.NewString}
}

// ValidateParams checks a BUY's stop-loss and take-profit against the
// current price. SELL orders carry no thresholds and always pass.
func ValidateParams(req Request, price float64) error {
	if req.Side != account.SideBuy {
		return nil
	}
	if sl := req.StopLoss; sl != nil && *sl > 0 && *sl >= price {
		return ErrStopLossAbovePrice
	}
	if tp := req.TakeProfit; tp != nil && *tp > 0 && *tp <= price {
		return ErrTakeProfitBelowPrice
	}
	return nil
}

// Execute fills req against acct at inst's current price, then applies
// market impact to inst. On error both inputs are returned unchanged.
func (e *Engine) Execute(acct account.Account, inst market.Instrument, req Request, now time.Time) (account.Account, market.Instrument, Result, error) {
	if req.Shares <= 0 {
		return acct, inst, Result{}, ErrInvalidShares
	}
	if req.Symbol != "" && req.Symbol != inst.Symbol {
		return acct, inst, Result{}, ErrSymbolMismatch
	}

	price := decimal.NewFromFloat(inst.Price)
	value := price.Mul(decimal.NewFromInt(req.Shares))

	next := acct.Clone()
	tx := account.Transaction{
		ID:        e.newID(),
		Symbol:    inst.Symbol,
		Side:      req.Side,
		Shares:    req.Shares,
		Price:     price,
		Timestamp: now,
	}

	var reward int64
	switch req.Side {
	case account.SideBuy:
		if acct.Balance.LessThan(value) {
			return acct, inst, Result{}, ErrInsufficientFunds
		}
		sl := threshold(req.StopLoss)
		tp := threshold(req.TakeProfit)
		next.Balance = next.Balance.Sub(value)
		buyInto(&next, inst.Symbol, req.Shares, price, sl, tp)
		tx.StopLoss, tx.TakeProfit = threshold(req.StopLoss), threshold(req.TakeProfit)
		reward = e.cfg.BuyXP

	case account.SideSell:
		i := acct.PositionIndex(inst.Symbol)
		if i < 0 || acct.Positions[i].Shares < req.Shares {
			return acct, inst, Result{}, ErrInsufficientShares
		}
		next.Balance = next.Balance.Add(value)
		next.Positions[i].Shares -= req.Shares
		if next.Positions[i].Shares == 0 {
			next.RemovePosition(i)
		}
		reward = e.cfg.SellXP

	default:
		return acct, inst, Result{}, ErrInvalidSide
	}

	next.Record(tx)
	prevLevel := next.Level
	if err := next.Grant(reward); err != nil {
		return acct, inst, Result{}, err
	}

	moved := pricegen.Reprice(inst, inst.Price+e.impact(inst.Price, req.Side, req.Shares), e.cfg.PriceFloor)

	return next, moved, Result{
		Transaction: tx,
		Price:       inst.Price,
		Value:       value,
		XPAwarded:   reward,
		LevelUp:     next.Level > prevLevel,
		NewPrice:    moved.Price,
	}, nil
}

// impact is the signed price nudge caused by a fill.
func (e *Engine) impact(price float64, side account.Side, shares int64) float64 {
	delta := price * e.cfg.ImpactFactor * (float64(shares) / e.cfg.ImpactDivisor)
	if side == account.SideSell {
		return -delta
	}
	return delta
}

func buyInto(a *account.Account, symbol string, shares int64, price decimal.Decimal, sl, tp *float64) {
	i := a.PositionIndex(symbol)
	if i < 0 {
		a.Positions = append(a.Positions, account.Position{
			Symbol:     symbol,
			Shares:     shares,
			AvgCost:    price,
			StopLoss:   sl,
			TakeProfit: tp,
		})
		return
	}

	p := &a.Positions[i]
	held := decimal.NewFromInt(p.Shares)
	added := decimal.NewFromInt(shares)
	p.AvgCost = p.AvgCost.Mul(held).Add(price.Mul(added)).Div(held.Add(added))
	p.Shares += shares
	if sl != nil {
		p.StopLoss = sl
	}
	if tp != nil {
		p.TakeProfit = tp
	}
}

func threshold(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return account.Threshold(*v)
}
