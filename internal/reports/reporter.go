// Package reports accumulates session statistics and writes them out at
// shutdown: a CSV dump per run directory and a human-readable summary
// table. Money amounts are kept in decimals so long sessions do not
// drift.
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
	"github.com/shopspring/decimal"
)

// Reporter collects statistics from event handlers and the activation
// pass. Safe for concurrent use.
type Reporter struct {
	mu sync.Mutex

	brokers   int
	customers int

	askVolumeMWh float64
	bidVolumeMWh float64

	imbalanceMWh   float64
	imbalanceTicks int

	balancingKWh    float64
	balancingCharge decimal.Decimal

	cashBalance decimal.Decimal

	productionKWh  float64
	consumptionKWh float64

	limitOrders  int
	marketOrders int
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// RecordCompetition records the session's participant counts.
func (r *Reporter) RecordCompetition(brokers, customers int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.brokers = brokers
	r.customers = customers
}

// RecordOrderbook adds one orderbook's total ask and bid volumes.
func (r *Reporter) RecordOrderbook(askMWh, bidMWh float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.askVolumeMWh += askMWh
	r.bidVolumeMWh += bidMWh
}

// RecordImbalance adds one balance report's net imbalance.
func (r *Reporter) RecordImbalance(netMWh float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.imbalanceMWh += netMWh
	r.imbalanceTicks++
}

// RecordBalancing adds one balancing transaction.
func (r *Reporter) RecordBalancing(kwh, charge float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.balancingKWh += kwh
	r.balancingCharge = r.balancingCharge.Add(decimal.NewFromFloat(charge))
}

// RecordCash records the latest cash position.
func (r *Reporter) RecordCash(balance float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cashBalance = decimal.NewFromFloat(balance)
}

// RecordDistribution adds one distribution report's totals.
func (r *Reporter) RecordDistribution(productionKWh, consumptionKWh float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.productionKWh += productionKWh
	r.consumptionKWh += consumptionKWh
}

// CountOrder counts one submitted order; market orders are tracked
// separately from limit orders.
func (r *Reporter) CountOrder(market bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if market {
		r.marketOrders++
	} else {
		r.limitOrders++
	}
}

// BalancingCharge returns the accumulated balancing charges.
func (r *Reporter) BalancingCharge() decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.balancingCharge
}

// CashBalance returns the latest reported cash position.
func (r *Reporter) CashBalance() decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cashBalance
}

// OrderCounts returns the limit and market order tallies.
func (r *Reporter) OrderCounts() (limit, market int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.limitOrders, r.marketOrders
}

// row is one named statistic for output.
type row struct {
	name  string
	value string
}

func (r *Reporter) rows() []row {
	meanImbalance := 0.0
	if r.imbalanceTicks > 0 {
		meanImbalance = r.imbalanceMWh / float64(r.imbalanceTicks)
	}

	return []row{
		{"brokers", fmt.Sprintf("%d", r.brokers)},
		{"customers", fmt.Sprintf("%d", r.customers)},
		{"limit_orders", fmt.Sprintf("%d", r.limitOrders)},
		{"market_orders", fmt.Sprintf("%d", r.marketOrders)},
		{"ask_volume_mwh", fmt.Sprintf("%.3f", r.askVolumeMWh)},
		{"bid_volume_mwh", fmt.Sprintf("%.3f", r.bidVolumeMWh)},
		{"mean_imbalance_mwh", fmt.Sprintf("%.3f", meanImbalance)},
		{"balancing_kwh", fmt.Sprintf("%.3f", r.balancingKWh)},
		{"balancing_charge", r.balancingCharge.StringFixed(4)},
		{"cash_balance", r.cashBalance.StringFixed(4)},
		{"production_kwh", fmt.Sprintf("%.3f", r.productionKWh)},
		{"consumption_kwh", fmt.Sprintf("%.3f", r.consumptionKWh)},
	}
}

// WriteCSV dumps the statistics to session.csv inside a timestamped run
// directory under baseDir, and returns the run directory path.
func (r *Reporter) WriteCSV(baseDir string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runDir := filepath.Join(baseDir, time.Now().Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to create run directory", err)
	}

	file, err := os.Create(filepath.Join(runDir, "session.csv"))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to create session report", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"statistic", "value"}); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to write report header", err)
	}

	for _, row := range r.rows() {
		if err := writer.Write([]string{row.name, row.value}); err != nil {
			return "", errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to write report row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to flush report", err)
	}

	return runDir, nil
}

// PrintSummary renders the statistics table to the given writer.
func (r *Reporter) PrintSummary(out io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table := tablewriter.NewWriter(out)
	table.Header("Statistic", "Value")

	for _, row := range r.rows() {
		table.Append(row.name, row.value)
	}

	table.Render()
}
