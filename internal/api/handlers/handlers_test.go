package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/dpratama/keuangan-pintar/internal/domain"
	"github.com/dpratama/keuangan-pintar/internal/jobs"
	"github.com/dpratama/keuangan-pintar/internal/logger"
)

type mockTransactionStore struct {
	inserted []*domain.Transaction
	listed   []*domain.Transaction
	err      error
}

func (m *mockTransactionStore) Insert(ctx context.Context, txs []*domain.Transaction) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, txs...)
	return nil
}

func (m *mockTransactionStore) ListByDateRange(ctx context.Context, start, end civil.Date) ([]*domain.Transaction, error) {
	return m.listed, m.err
}

type mockReceiptStore struct {
	receipts map[string]*domain.Receipt
	imageURI map[string]string
}

func newMockReceiptStore() *mockReceiptStore {
	return &mockReceiptStore{
		receipts: make(map[string]*domain.Receipt),
		imageURI: make(map[string]string),
	}
}

func (m *mockReceiptStore) Insert(ctx context.Context, rc *domain.Receipt) error {
	m.receipts[rc.ID] = rc
	return nil
}

func (m *mockReceiptStore) Get(ctx context.Context, id string) (*domain.Receipt, error) {
	rc, ok := m.receipts[id]
	if !ok {
		return nil, fmt.Errorf("receipt not found: %s", id)
	}
	return rc, nil
}

func (m *mockReceiptStore) SetImageURI(ctx context.Context, id, uri string) error {
	m.imageURI[id] = uri
	return nil
}

type mockPublisher struct {
	published []*jobs.IngestReceiptJob
}

func (m *mockPublisher) PublishIngestReceipt(ctx context.Context, job *jobs.IngestReceiptJob) error {
	job.JobID = "job-1"
	m.published = append(m.published, job)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type mockImageStore struct {
	objects map[string][]byte
}

func (m *mockImageStore) UploadReceiptImage(ctx context.Context, receiptID string, r io.Reader, contentType string) (string, error) {
	return "gs://bucket/receipts/" + receiptID + "/img.jpg", nil
}

func (m *mockImageStore) Fetch(ctx context.Context, uri string) ([]byte, error) {
	data, ok := m.objects[uri]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", uri)
	}
	return data, nil
}

type mockAdviser struct {
	advice string
	err    error
}

func (m *mockAdviser) Advise(ctx context.Context, year, month int) (string, error) {
	return m.advice, m.err
}

func TestExtractTranscript(t *testing.T) {
	h := NewExtractHandler(logger.Nop())

	body := strings.NewReader(`{"text": "makan di warung seratus ribu"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/extract/transcript", body)
	rec := httptest.NewRecorder()
	h.ExtractTranscript(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var draft domain.TransactionDraft
	if err := json.NewDecoder(rec.Body).Decode(&draft); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if draft.Amount != 100_000 {
		t.Errorf("Amount = %d, want 100000", draft.Amount)
	}
	if draft.Type != domain.TypeExpense {
		t.Errorf("Type = %q, want %q", draft.Type, domain.TypeExpense)
	}
}

func TestExtractTranscriptEmptyText(t *testing.T) {
	h := NewExtractHandler(logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/extract/transcript", strings.NewReader(`{"text": "  "}`))
	rec := httptest.NewRecorder()
	h.ExtractTranscript(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestExtractReceipt(t *testing.T) {
	h := NewExtractHandler(logger.Nop())

	body := strings.NewReader(`{"ocr_text": "Warung Sederhana\nTotal Rp 25.000"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/extract/receipt", body)
	rec := httptest.NewRecorder()
	h.ExtractReceipt(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var draft domain.TransactionDraft
	if err := json.NewDecoder(rec.Body).Decode(&draft); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if draft.Amount != 25_000 {
		t.Errorf("Amount = %d, want 25000", draft.Amount)
	}
	if draft.Category != "Struk" {
		t.Errorf("Category = %q, want Struk", draft.Category)
	}
}

func TestCreateReceiptEnqueuesJob(t *testing.T) {
	receipts := newMockReceiptStore()
	publisher := &mockPublisher{}
	h := NewReceiptsHandler(receipts, publisher, &mockImageStore{}, logger.Nop())

	body := strings.NewReader(`{"ocr_text": "Toko Abadi\nTotal 9.000"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/receipts", body)
	rec := httptest.NewRecorder()
	h.CreateReceipt(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if len(publisher.published) != 1 {
		t.Fatalf("published %d jobs, want 1", len(publisher.published))
	}
	if len(receipts.receipts) != 1 {
		t.Fatalf("stored %d receipts, want 1", len(receipts.receipts))
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["receipt_id"] == "" || resp["job_id"] != "job-1" {
		t.Errorf("response = %v", resp)
	}
}

func TestUploadImage(t *testing.T) {
	receipts := newMockReceiptStore()
	receipts.receipts["r-1"] = &domain.Receipt{ID: "r-1"}
	h := NewReceiptsHandler(receipts, &mockPublisher{}, &mockImageStore{}, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/upload/r-1", strings.NewReader("imagebytes"))
	req.Header.Set("Content-Type", "image/jpeg")
	rec := httptest.NewRecorder()
	h.UploadImage(rec, req, "r-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if uri := receipts.imageURI["r-1"]; !strings.HasPrefix(uri, "gs://") {
		t.Errorf("image URI = %q", uri)
	}
}

func TestDownloadImage(t *testing.T) {
	receipts := newMockReceiptStore()
	receipts.receipts["r-1"] = &domain.Receipt{ID: "r-1", ImageURI: "gs://bucket/receipts/r-1/img.jpg"}
	images := &mockImageStore{objects: map[string][]byte{
		"gs://bucket/receipts/r-1/img.jpg": []byte("imagebytes"),
	}}
	h := NewReceiptsHandler(receipts, &mockPublisher{}, images, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/receipts/r-1/image", nil)
	rec := httptest.NewRecorder()
	h.DownloadImage(rec, req, "r-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "imagebytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "img.jpg") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestDownloadImageWithoutImage(t *testing.T) {
	receipts := newMockReceiptStore()
	receipts.receipts["r-1"] = &domain.Receipt{ID: "r-1"}
	h := NewReceiptsHandler(receipts, &mockPublisher{}, &mockImageStore{}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/receipts/r-1/image", nil)
	rec := httptest.NewRecorder()
	h.DownloadImage(rec, req, "r-1")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUploadImageUnknownReceipt(t *testing.T) {
	h := NewReceiptsHandler(newMockReceiptStore(), &mockPublisher{}, &mockImageStore{}, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/upload/nope", strings.NewReader("x"))
	rec := httptest.NewRecorder()
	h.UploadImage(rec, req, "nope")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateTransaction(t *testing.T) {
	store := &mockTransactionStore{}
	h := NewTransactionsHandler(store, logger.Nop())

	body := strings.NewReader(`{"type": "Pengeluaran", "amount": 50000, "description": "Bensin", "category": "Transportasi"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", body)
	rec := httptest.NewRecorder()
	h.CreateTransaction(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d, want 1", len(store.inserted))
	}

	tx := store.inserted[0]
	if tx.ID == "" {
		t.Error("transaction has no ID")
	}
	if tx.Source != domain.SourceManual {
		t.Errorf("Source = %q, want %q", tx.Source, domain.SourceManual)
	}
	if !tx.Date.IsValid() {
		t.Error("date not defaulted")
	}
}

func TestCreateTransactionRejectsNegativeAmount(t *testing.T) {
	h := NewTransactionsHandler(&mockTransactionStore{}, logger.Nop())

	body := strings.NewReader(`{"type": "Pengeluaran", "amount": -5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", body)
	rec := httptest.NewRecorder()
	h.CreateTransaction(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestListTransactionsBadRange(t *testing.T) {
	h := NewTransactionsHandler(&mockTransactionStore{}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?start=2026-05-01&end=2026-04-01", nil)
	rec := httptest.NewRecorder()
	h.ListTransactions(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAdvice(t *testing.T) {
	h := NewReportsHandler(&mockTransactionStore{}, &mockAdviser{advice: "Hemat pangkal kaya."}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/advice?year=2026&month=8", nil)
	rec := httptest.NewRecorder()
	h.Advice(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Hemat pangkal kaya.") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestExportCSV(t *testing.T) {
	store := &mockTransactionStore{
		listed: []*domain.Transaction{
			{ID: "t-1", Type: domain.TypeExpense, Amount: 10_000, Category: "Makanan", Description: "Bakso"},
		},
	}
	h := NewReportsHandler(store, &mockAdviser{}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/export/csv", nil)
	rec := httptest.NewRecorder()
	h.ExportCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Bakso") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestExportPDF(t *testing.T) {
	h := NewReportsHandler(&mockTransactionStore{}, &mockAdviser{}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/export/pdf", nil)
	rec := httptest.NewRecorder()
	h.ExportPDF(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("body is not a PDF")
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %s", rec.Body.String())
	}
}
