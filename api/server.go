// Package api exposes the engine's read-only queries over HTTP JSON. Queries
// never mutate state; every endpoint answers for any registered asset and any
// user, including users with no activity.
package api

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/mcdexio/dsc-engine/common/logging"
	"github.com/mcdexio/dsc-engine/engine"
)

// QueryServer serves the engine getters.
type QueryServer struct {
	ctx    context.Context
	logger logging.Logger
	engine *engine.Engine
	mux    *http.ServeMux
	server *http.Server
}

// NewQueryServer returns a server bound to listen.
func NewQueryServer(ctx context.Context, logger logging.Logger, eng *engine.Engine, listen string) *QueryServer {
	s := &QueryServer{
		ctx:    ctx,
		logger: logger,
		engine: eng,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthFactor", s.OnQueryHealthFactor)
	mux.HandleFunc("/accountCollateralValue", s.OnQueryAccountCollateralValue)
	mux.HandleFunc("/usdValue", s.OnQueryUsdValue)
	mux.HandleFunc("/tokenAmountFromUsd", s.OnQueryTokenAmountFromUsd)
	mux.HandleFunc("/collateralBalance", s.OnQueryCollateralBalance)
	mux.HandleFunc("/collateralTokens", s.OnQueryCollateralTokens)
	mux.HandleFunc("/params", s.OnQueryParams)
	s.mux = mux
	s.server = &http.Server{
		Addr:         listen,
		WriteTimeout: time.Second * 25,
		Handler:      mux,
	}
	return s
}

// Shutdown stops the server.
func (s *QueryServer) Shutdown() error {
	return s.server.Shutdown(s.ctx)
}

// Run serves until the context is cancelled.
func (s *QueryServer) Run() error {
	s.logger.Info("Starting dsc-engine query httpserver on %s", s.server.Addr)
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server closed unexpected: %s", err)
		}
	}()
	<-s.ctx.Done()
	s.logger.Info("Query server receives shutdown signal.")
	return s.Shutdown()
}

// HealthFactorResp carries the 18-decimal ratio both raw and human-readable.
type HealthFactorResp struct {
	User         string `json:"user"`
	HealthFactor string `json:"healthFactor"`
	Raw          string `json:"raw"`
}

func (s *QueryServer) OnQueryHealthFactor(w http.ResponseWriter, r *http.Request) {
	user, ok := s.addressParam(w, r, "user")
	if !ok {
		return
	}
	hf, err := s.engine.HealthFactor(r.Context(), user)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, HealthFactorResp{
		User:         user.Hex(),
		HealthFactor: human18(hf),
		Raw:          hf.String(),
	})
}

// CollateralValueResp is the aggregate USD valuation of one account.
type CollateralValueResp struct {
	User     string `json:"user"`
	UsdValue string `json:"usdValue"`
	Raw      string `json:"raw"`
}

func (s *QueryServer) OnQueryAccountCollateralValue(w http.ResponseWriter, r *http.Request) {
	user, ok := s.addressParam(w, r, "user")
	if !ok {
		return
	}
	value, err := s.engine.AccountCollateralValue(r.Context(), user)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, CollateralValueResp{
		User:     user.Hex(),
		UsdValue: human18(value),
		Raw:      value.String(),
	})
}

// ConversionResp is a single oracle conversion result.
type ConversionResp struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
	Result string `json:"result"`
	Raw    string `json:"raw"`
}

func (s *QueryServer) OnQueryUsdValue(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.addressParam(w, r, "asset")
	if !ok {
		return
	}
	amount, ok := s.amountParam(w, r, "amount")
	if !ok {
		return
	}
	value, err := s.engine.UsdValue(r.Context(), asset, amount)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, ConversionResp{
		Asset:  asset.Hex(),
		Amount: amount.String(),
		Result: human18(value),
		Raw:    value.String(),
	})
}

func (s *QueryServer) OnQueryTokenAmountFromUsd(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.addressParam(w, r, "asset")
	if !ok {
		return
	}
	usd, ok := s.amountParam(w, r, "usd")
	if !ok {
		return
	}
	quantity, err := s.engine.TokenAmountFromUsd(r.Context(), asset, usd)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, ConversionResp{
		Asset:  asset.Hex(),
		Amount: usd.String(),
		Result: human18(quantity),
		Raw:    quantity.String(),
	})
}

// CollateralBalanceResp is one (user, asset) position.
type CollateralBalanceResp struct {
	User    string `json:"user"`
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

func (s *QueryServer) OnQueryCollateralBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := s.addressParam(w, r, "user")
	if !ok {
		return
	}
	asset, ok := s.addressParam(w, r, "asset")
	if !ok {
		return
	}
	balance, err := s.engine.CollateralBalanceOf(r.Context(), user, asset)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, CollateralBalanceResp{
		User:    user.Hex(),
		Asset:   asset.Hex(),
		Balance: balance.String(),
	})
}

func (s *QueryServer) OnQueryCollateralTokens(w http.ResponseWriter, r *http.Request) {
	assets := s.engine.CollateralTokens()
	out := make([]string, 0, len(assets))
	for _, asset := range assets {
		out = append(out, asset.Hex())
	}
	s.writeJSON(w, map[string][]string{"collateralTokens": out})
}

// ParamsResp reports the fixed protocol parameters.
type ParamsResp struct {
	MinHealthFactor      string `json:"minHealthFactor"`
	LiquidationThreshold string `json:"liquidationThreshold"`
	LiquidationPrecision string `json:"liquidationPrecision"`
	LiquidationBonus     string `json:"liquidationBonus"`
}

func (s *QueryServer) OnQueryParams(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, ParamsResp{
		MinHealthFactor:      s.engine.MinHealthFactor().String(),
		LiquidationThreshold: s.engine.LiquidationThreshold().String(),
		LiquidationPrecision: s.engine.LiquidationPrecision().String(),
		LiquidationBonus:     s.engine.LiquidationBonus().String(),
	})
}

func (s *QueryServer) addressParam(w http.ResponseWriter, r *http.Request, name string) (common.Address, bool) {
	raw := r.URL.Query().Get(name)
	if !common.IsHexAddress(raw) {
		s.writeErrorString(w, http.StatusBadRequest, "invalid or missing "+name+" parameter")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func (s *QueryServer) amountParam(w http.ResponseWriter, r *http.Request, name string) (*big.Int, bool) {
	raw := r.URL.Query().Get(name)
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		s.writeErrorString(w, http.StatusBadRequest, "invalid or missing "+name+" parameter")
		return nil, false
	}
	return amount, true
}

func (s *QueryServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("fail to encode response err=%s", err)
	}
}

func (s *QueryServer) writeError(w http.ResponseWriter, code int, err error) {
	s.writeErrorString(w, code, err.Error())
}

func (s *QueryServer) writeErrorString(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// human18 renders an 18-decimal fixed-point integer as a decimal string.
func human18(v *big.Int) string {
	return decimal.NewFromBigInt(v, -18).String()
}
