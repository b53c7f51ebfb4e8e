// Package pipeline runs a receipt from raw OCR text to a stored
// transaction. Each stage is a Step; the Pipeline executes them in order
// over shared State and marks the receipt failed when a step errors.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

// Step is a single stage of the ingestion pipeline.
type Step interface {
	Name() string
	Execute(ctx context.Context, state *State) error
}

// State is the shared state passed through the steps.
type State struct {
	Receipt     *domain.Receipt
	Draft       *domain.TransactionDraft
	Transaction *domain.Transaction
}

// Pipeline is an ordered list of steps bound to the receipt store that
// records outcomes.
type Pipeline struct {
	steps    []Step
	receipts ReceiptStore
	log      zerolog.Logger
}

// New builds the standard ingestion pipeline.
func New(receipts ReceiptStore, transactions TransactionStore, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		steps: []Step{
			&ExtractFieldsStep{},
			&BuildTransactionStep{},
			&InsertTransactionStep{Store: transactions},
		},
		receipts: receipts,
		log:      log,
	}
}

// Run ingests one receipt. The receipt must already be stored; on success
// it is marked processed and linked to the inserted transaction, on
// failure it is marked failed with the step error. The step error is
// returned either way so queue retries still fire.
func (p *Pipeline) Run(ctx context.Context, receipt *domain.Receipt) (*domain.Transaction, error) {
	state := &State{Receipt: receipt}

	for _, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			p.log.Error().
				Err(err).
				Str("receipt_id", receipt.ID).
				Str("step", step.Name()).
				Msg("ingestion step failed")

			if markErr := p.receipts.MarkFailed(ctx, receipt.ID, err.Error()); markErr != nil {
				p.log.Error().Err(markErr).Str("receipt_id", receipt.ID).Msg("marking receipt failed")
			}
			return nil, fmt.Errorf("Run: step %s: %w", step.Name(), err)
		}
	}

	if err := p.receipts.MarkProcessed(ctx, receipt.ID, state.Transaction.ID); err != nil {
		return nil, fmt.Errorf("Run: marking receipt processed: %w", err)
	}

	p.log.Info().
		Str("receipt_id", receipt.ID).
		Str("transaction_id", state.Transaction.ID).
		Int64("amount", state.Transaction.Amount).
		Msg("receipt ingested")

	return state.Transaction, nil
}
