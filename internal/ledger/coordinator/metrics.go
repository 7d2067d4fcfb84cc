package coordinator

import "github.com/prometheus/client_golang/prometheus"

// Métricas do coordinator. Registradas no main do ledger-service.
var (
	OpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Operações do ledger por tipo e resultado",
	}, []string{"op", "result"})

	DuplicateDeposits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_duplicate_deposits_total",
		Help: "Reentregas de webhook ignoradas por idempotência",
	})
)
