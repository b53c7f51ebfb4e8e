package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

// TransactionRepository stores and queries transactions in BigQuery.
type TransactionRepository struct {
	client  *bigquery.Client
	dataset string
}

// NewTransactionRepository creates a repository with its own client.
func NewTransactionRepository(ctx context.Context, projectID, dataset string) (*TransactionRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewTransactionRepository: creating client: %w", err)
	}
	return NewTransactionRepositoryWithClient(client, dataset), nil
}

// NewTransactionRepositoryWithClient wraps an existing client, letting
// repositories share one connection.
func NewTransactionRepositoryWithClient(client *bigquery.Client, dataset string) *TransactionRepository {
	return &TransactionRepository{client: client, dataset: dataset}
}

// Close closes the underlying client.
func (r *TransactionRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Insert inserts a batch of transactions.
func (r *TransactionRepository) Insert(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, RowFromTransaction(tx))
	}

	inserter := r.client.Dataset(r.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("Insert: inserting rows: %w", err)
	}
	return nil
}

// ListByDateRange returns transactions with dates in [start, end],
// oldest first.
func (r *TransactionRepository) ListByDateRange(ctx context.Context, start, end civil.Date) ([]*domain.Transaction, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			type,
			amount,
			description,
			category,
			notes,
			transaction_date,
			source,
			created_ts
		FROM %s.%s
		WHERE transaction_date >= @start_date
		  AND transaction_date <= @end_date
		ORDER BY transaction_date, created_ts
	`, r.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start.String()},
		{Name: "end_date", Value: end.String()},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListByDateRange: query read: %w", err)
	}

	var txs []*domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListByDateRange: iter next: %w", err)
		}
		txs = append(txs, row.Transaction())
	}
	return txs, nil
}

// MonthlySummary aggregates one calendar month of transactions: totals per
// type and expense totals per category.
func (r *TransactionRepository) MonthlySummary(ctx context.Context, year int, month int) (*domain.MonthlySummary, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			type,
			category,
			SUM(amount) AS total,
			COUNT(*) AS n
		FROM %s.%s
		WHERE EXTRACT(YEAR FROM transaction_date) = @year
		  AND EXTRACT(MONTH FROM transaction_date) = @month
		GROUP BY type, category
	`, r.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "year", Value: int64(year)},
		{Name: "month", Value: int64(month)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("MonthlySummary: query read: %w", err)
	}

	summary := &domain.MonthlySummary{
		Year:        year,
		Month:       time.Month(month),
		TotalByType: make(map[domain.Type]int64),
		SpendByCat:  make(map[string]int64),
	}
	for {
		var row struct {
			Type     string `bigquery:"type"`
			Category string `bigquery:"category"`
			Total    int64  `bigquery:"total"`
			N        int64  `bigquery:"n"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("MonthlySummary: iter next: %w", err)
		}

		t := domain.Type(row.Type)
		summary.TotalByType[t] += row.Total
		summary.Transactions += int(row.N)
		if t == domain.TypeExpense {
			summary.SpendByCat[row.Category] += row.Total
		}
	}
	return summary, nil
}
