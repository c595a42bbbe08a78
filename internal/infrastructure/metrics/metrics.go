// Package metrics define los contadores Prometheus del motor de stock y el
// servidor HTTP auxiliar que los expone.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SalesTotal cuenta ventas por resultado (committed, insufficient_stock,
	// lock_timeout, invalid, error).
	SalesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_total",
		Help: "Ventas procesadas por resultado.",
	}, []string{"result"})

	// ReturnsTotal cuenta devoluciones creadas por tipo (REFUND, EXCHANGE).
	ReturnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_returns_total",
		Help: "Devoluciones creadas por tipo.",
	}, []string{"type"})

	// ReturnTransitionsTotal cuenta transiciones de estado de devoluciones.
	ReturnTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_return_transitions_total",
		Help: "Transiciones de estado de devoluciones por estado destino.",
	}, []string{"status"})

	// AdjustmentsTotal cuenta ajustes de inventario por tipo de movimiento.
	AdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_inventory_adjustments_total",
		Help: "Ajustes de inventario por tipo de movimiento.",
	}, []string{"type"})

	// LedgerVerificationsTotal cuenta verificaciones del libro por resultado
	// (consistent, inconsistent).
	LedgerVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_ledger_verifications_total",
		Help: "Verificaciones balance vs movimientos por resultado.",
	}, []string{"result"})
)

// Server expone /metrics y /health en un puerto separado del API.
type Server struct {
	srv *http.Server
}

// NewServer construye el servidor auxiliar.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{srv: &http.Server{Addr: addr, Handler: mux}}
}

// Start bloquea sirviendo hasta Shutdown.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown apaga el servidor ordenadamente.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
