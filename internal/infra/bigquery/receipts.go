package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

// ReceiptRepository stores receipts and their ingestion state.
//
// BigQuery streaming inserts cannot update rows, so state transitions use
// DML. That is fine for receipt volumes; transactions stay insert-only.
type ReceiptRepository struct {
	client  *bigquery.Client
	dataset string
}

// NewReceiptRepository creates a repository with its own client.
func NewReceiptRepository(ctx context.Context, projectID, dataset string) (*ReceiptRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewReceiptRepository: creating client: %w", err)
	}
	return NewReceiptRepositoryWithClient(client, dataset), nil
}

// NewReceiptRepositoryWithClient wraps an existing client.
func NewReceiptRepositoryWithClient(client *bigquery.Client, dataset string) *ReceiptRepository {
	return &ReceiptRepository{client: client, dataset: dataset}
}

// Close closes the underlying client.
func (r *ReceiptRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Insert stores a new receipt.
func (r *ReceiptRepository) Insert(ctx context.Context, rc *domain.Receipt) error {
	inserter := r.client.Dataset(r.dataset).Table(receiptsTable).Inserter()
	if err := inserter.Put(ctx, RowFromReceipt(rc)); err != nil {
		return fmt.Errorf("Insert: inserting receipt: %w", err)
	}
	return nil
}

// Get returns a receipt by ID.
func (r *ReceiptRepository) Get(ctx context.Context, id string) (*domain.Receipt, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			receipt_id,
			ocr_text,
			image_uri,
			status,
			transaction_id,
			error,
			created_ts,
			processed_ts
		FROM %s.%s
		WHERE receipt_id = @id
		LIMIT 1
	`, r.dataset, receiptsTable))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Get: query read: %w", err)
	}

	var row ReceiptRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, fmt.Errorf("Get: receipt not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: iter next: %w", err)
	}
	return row.Receipt(), nil
}

// ListPending returns receipts that have not been ingested yet, oldest
// first, up to limit.
func (r *ReceiptRepository) ListPending(ctx context.Context, limit int) ([]*domain.Receipt, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			receipt_id,
			ocr_text,
			image_uri,
			status,
			transaction_id,
			error,
			created_ts,
			processed_ts
		FROM %s.%s
		WHERE status = @status
		ORDER BY created_ts ASC
		LIMIT @limit
	`, r.dataset, receiptsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: string(domain.ReceiptStatusPending)},
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListPending: query read: %w", err)
	}

	var receipts []*domain.Receipt
	for {
		var row ReceiptRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListPending: iter next: %w", err)
		}
		receipts = append(receipts, row.Receipt())
	}
	return receipts, nil
}

// MarkProcessed records a successful ingestion and links the transaction.
func (r *ReceiptRepository) MarkProcessed(ctx context.Context, id, transactionID string) error {
	return r.setStatus(ctx, id, domain.ReceiptStatusProcessed, transactionID, "")
}

// MarkFailed records a failed ingestion with its error.
func (r *ReceiptRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	return r.setStatus(ctx, id, domain.ReceiptStatusFailed, "", errMsg)
}

// SetImageURI attaches the stored image location to a receipt.
func (r *ReceiptRepository) SetImageURI(ctx context.Context, id, uri string) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET image_uri = @uri
		WHERE receipt_id = @id
	`, r.dataset, receiptsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "uri", Value: uri},
		{Name: "id", Value: id},
	}
	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("SetImageURI: %w", err)
	}
	return nil
}

func (r *ReceiptRepository) setStatus(ctx context.Context, id string, status domain.ReceiptStatus, transactionID, errMsg string) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
			transaction_id = @transaction_id,
			error = @error,
			processed_ts = @processed_ts
		WHERE receipt_id = @id
	`, r.dataset, receiptsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: string(status)},
		{Name: "transaction_id", Value: transactionID},
		{Name: "error", Value: errMsg},
		{Name: "processed_ts", Value: time.Now()},
		{Name: "id", Value: id},
	}
	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("setStatus: %w", err)
	}
	return nil
}

// runDML executes a DML query and waits for its job to finish.
func runDML(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job: %w", err)
	}
	return nil
}
