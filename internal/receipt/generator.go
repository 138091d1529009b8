// Package receipt renders transaction receipts as downloadable artifacts.
package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/qudmeet/exchange-service/internal/domain/transaction"
	"github.com/qudmeet/exchange-service/internal/platform/blob"
)

// Document is the serialized receipt content
type Document struct {
	TransactionID  string    `json:"transaction_id"`
	SenderID       string    `json:"sender_id"`
	ReceiverName   string    `json:"receiver_name,omitempty"`
	AmountSent     string    `json:"amount_sent"`
	FromCurrency   string    `json:"from_currency"`
	AmountReceived string    `json:"amount_received"`
	ToCurrency     string    `json:"to_currency"`
	Fee            string    `json:"fee"`
	Status         string    `json:"status"`
	CompletedAt    time.Time `json:"completed_at"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Generator produces receipt artifacts for completed transactions
type Generator struct {
	store  blob.Store
	logger *slog.Logger
}

func NewGenerator(logger *slog.Logger, store blob.Store) *Generator {
	return &Generator{
		store:  store,
		logger: logger,
	}
}

// Generate renders a receipt for a completed transaction and stores it,
// returning the URL of the stored artifact.
func (g *Generator) Generate(ctx context.Context, t *transaction.Transaction) (string, error) {
	if t.Status != transaction.StatusCompleted {
		return "", fmt.Errorf("cannot generate receipt for transaction %s in status %s", t.TransactionID, t.Status)
	}

	completedAt := time.Now()
	if t.CompletedAt != nil {
		completedAt = *t.CompletedAt
	}

	doc := Document{
		TransactionID:  t.TransactionID,
		SenderID:       t.SenderID,
		ReceiverName:   t.Receiver.Name,
		AmountSent:     t.AmountSent.String(),
		FromCurrency:   t.FromCurrency,
		AmountReceived: t.AmountReceived.String(),
		ToCurrency:     t.ToCurrency,
		Fee:            t.Fee.String(),
		Status:         string(t.Status),
		CompletedAt:    completedAt,
		GeneratedAt:    time.Now(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt for transaction %s: %w", t.TransactionID, err)
	}

	filename := fmt.Sprintf("receipt_%s.json", t.TransactionID)
	url, err := g.store.Put(ctx, filename, "application/json", data)
	if err != nil {
		return "", fmt.Errorf("failed to store receipt for transaction %s: %w", t.TransactionID, err)
	}

	g.logger.Info("Generated receipt", "transaction_id", t.TransactionID, "url", url)
	return url, nil
}
