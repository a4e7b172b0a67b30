package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/alsafartravel/travel-services/models"
	"github.com/alsafartravel/travel-services/utils"
)

// PaymentMetrics tracks reconciliation outcomes.
type PaymentMetrics struct {
	TotalReconciled    int64
	CompletedPayments  int64
	FailedPayments     int64
	ProcessingPayments int64
}

// PaymentMonitor periodically re-queries the gateway for payments stuck in
// a non-terminal state. PayTabs reports results through the callback, but a
// dropped webhook would otherwise leave a record pending forever; Stripe and
// PayPal have no inbound webhook at all, so polling is their only
// reconciliation path when a gateway supports querying.
type PaymentMonitor struct {
	payments *PaymentService
	gateway  *PayTabsGateway
	metrics  PaymentMetrics
	interval time.Duration
	notify   func(models.Payment)
	stop     chan struct{}
	mutex    sync.Mutex
}

func NewPaymentMonitor(payments *PaymentService, gateway *PayTabsGateway) *PaymentMonitor {
	return &PaymentMonitor{
		payments: payments,
		gateway:  gateway,
		interval: 5 * time.Minute,
		stop:     make(chan struct{}),
	}
}

// SetNotifier registers a hook invoked with the updated record after every
// applied status change.
func (pm *PaymentMonitor) SetNotifier(fn func(models.Payment)) {
	pm.notify = fn
}

// Start launches the reconciliation loop in a goroutine.
func (pm *PaymentMonitor) Start() {
	go pm.run()
	utils.InfoLogger.Println("Payment monitor started")
}

func (pm *PaymentMonitor) Stop() {
	close(pm.stop)
}

func (pm *PaymentMonitor) run() {
	ticker := time.NewTicker(pm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pm.ReconcilePending(context.Background())
		case <-pm.stop:
			return
		}
	}
}

// ReconcilePending queries the gateway for every pending or processing
// PayTabs payment and applies the mapped status through the monotonic
// update, so a late or lost callback cannot be outrun by stale data.
func (pm *PaymentMonitor) ReconcilePending(ctx context.Context) {
	pending, err := pm.payments.PendingGatewayPayments(pm.gateway.Name())
	if err != nil {
		utils.ErrorLogger.Printf("Error loading pending payments: %v", err)
		return
	}

	for _, payment := range pending {
		status, raw, err := pm.gateway.QueryTransaction(ctx, payment.TransactionID)
		if err != nil {
			utils.ErrorLogger.Printf("Error querying transaction %s for payment %s: %v",
				payment.TransactionID, payment.ID, err)
			continue
		}

		if status == PaymentStatus(payment.Status) {
			continue
		}

		applied, updated, err := pm.payments.UpdatePaymentStatus(payment.ID, status, json.RawMessage(raw))
		if err != nil {
			utils.ErrorLogger.Printf("Error updating payment %s during reconciliation: %v",
				payment.ID, err)
			continue
		}
		if !updated {
			continue
		}

		utils.InfoLogger.Printf("Reconciled payment %s: %s -> %s", payment.ID, payment.Status, applied)
		pm.recordOutcome(applied)

		if pm.notify != nil {
			if updatedPayment, err := pm.payments.GetPayment(payment.ID); err == nil {
				pm.notify(*updatedPayment)
			}
		}
	}
}

func (pm *PaymentMonitor) recordOutcome(status PaymentStatus) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.metrics.TotalReconciled++
	switch status {
	case PaymentStatusCompleted:
		pm.metrics.CompletedPayments++
	case PaymentStatusFailed:
		pm.metrics.FailedPayments++
	case PaymentStatusProcessing:
		pm.metrics.ProcessingPayments++
	}
}

// GetMetrics returns a snapshot of the reconciliation counters.
func (pm *PaymentMonitor) GetMetrics() PaymentMetrics {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	return pm.metrics
}
