// Package handlers implements the HTTP endpoints: synchronous extraction,
// asynchronous receipt ingestion, transaction listing and creation, advice
// and report export.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dpratama/keuangan-pintar/internal/api/middleware"
	"github.com/dpratama/keuangan-pintar/internal/domain"
	"github.com/dpratama/keuangan-pintar/internal/export"
	"github.com/dpratama/keuangan-pintar/internal/extract"
	"github.com/dpratama/keuangan-pintar/internal/gcsuploader"
	"github.com/dpratama/keuangan-pintar/internal/jobs"
)

// TransactionStore is the transaction repository surface the handlers use.
type TransactionStore interface {
	Insert(ctx context.Context, txs []*domain.Transaction) error
	ListByDateRange(ctx context.Context, start, end civil.Date) ([]*domain.Transaction, error)
}

// ReceiptStore is the receipt repository surface the handlers use.
type ReceiptStore interface {
	Insert(ctx context.Context, rc *domain.Receipt) error
	Get(ctx context.Context, id string) (*domain.Receipt, error)
	SetImageURI(ctx context.Context, id, uri string) error
}

// ImageStore stores and retrieves receipt images by URI.
type ImageStore interface {
	UploadReceiptImage(ctx context.Context, receiptID string, r io.Reader, contentType string) (string, error)
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Adviser produces monthly spending advice.
type Adviser interface {
	Advise(ctx context.Context, year, month int) (string, error)
}

// ExtractHandler handles the synchronous extraction endpoints.
type ExtractHandler struct {
	log zerolog.Logger
}

// NewExtractHandler creates a new extract handler.
func NewExtractHandler(log zerolog.Logger) *ExtractHandler {
	return &ExtractHandler{log: log}
}

// ExtractTranscript handles POST /api/extract/transcript.
func (h *ExtractHandler) ExtractTranscript(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	draft := extract.FromTranscript(req.Text)
	if draft == nil {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, draft)
}

// ExtractReceipt handles POST /api/extract/receipt.
func (h *ExtractHandler) ExtractReceipt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OCRText string `json:"ocr_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	draft := extract.FromReceiptText(req.OCRText)
	if draft == nil {
		middleware.WriteError(w, http.StatusBadRequest, "ocr_text is required")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, draft)
}

// ReceiptsHandler handles asynchronous receipt ingestion.
type ReceiptsHandler struct {
	receipts  ReceiptStore
	publisher jobs.Publisher
	images    ImageStore
	log       zerolog.Logger
}

// NewReceiptsHandler creates a new receipts handler.
func NewReceiptsHandler(receipts ReceiptStore, publisher jobs.Publisher, images ImageStore, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{
		receipts:  receipts,
		publisher: publisher,
		images:    images,
		log:       log,
	}
}

// CreateReceipt handles POST /api/receipts. It stores the receipt and
// enqueues its ingestion, replying 202 with the IDs to poll.
func (h *ReceiptsHandler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OCRText string `json:"ocr_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OCRText == "" {
		middleware.WriteError(w, http.StatusBadRequest, "ocr_text is required")
		return
	}

	ctx := r.Context()
	receipt := &domain.Receipt{
		ID:        uuid.NewString(),
		OCRText:   req.OCRText,
		Status:    domain.ReceiptStatusPending,
		CreatedAt: time.Now(),
	}

	if err := h.receipts.Insert(ctx, receipt); err != nil {
		h.log.Error().Err(err).Msg("Failed to store receipt")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store receipt")
		return
	}

	job := &jobs.IngestReceiptJob{
		ReceiptID: receipt.ID,
		OCRText:   receipt.OCRText,
	}
	if err := h.publisher.PublishIngestReceipt(ctx, job); err != nil {
		h.log.Error().Err(err).Str("receipt_id", receipt.ID).Msg("Failed to enqueue ingestion")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue ingestion")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"receipt_id": receipt.ID,
		"job_id":     job.JobID,
		"status":     string(receipt.Status),
	})
}

// UploadImage handles POST /api/receipts/upload/{id}. The request body is
// the raw image; it is streamed to GCS and linked to the receipt.
func (h *ReceiptsHandler) UploadImage(w http.ResponseWriter, r *http.Request, receiptID string) {
	ctx := r.Context()

	if _, err := h.receipts.Get(ctx, receiptID); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Receipt not found")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	uri, err := h.images.UploadReceiptImage(ctx, receiptID, r.Body, contentType)
	if err != nil {
		h.log.Error().Err(err).Str("receipt_id", receiptID).Msg("Failed to upload image")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	if err := h.receipts.SetImageURI(ctx, receiptID, uri); err != nil {
		h.log.Error().Err(err).Str("receipt_id", receiptID).Msg("Failed to link image")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to link image")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"receipt_id": receiptID,
		"image_uri":  uri,
	})
}

// DownloadImage handles GET /api/receipts/{id}/image. It streams the
// stored image back with its original filename.
func (h *ReceiptsHandler) DownloadImage(w http.ResponseWriter, r *http.Request, receiptID string) {
	ctx := r.Context()

	receipt, err := h.receipts.Get(ctx, receiptID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Receipt not found")
		return
	}
	if receipt.ImageURI == "" {
		middleware.WriteError(w, http.StatusNotFound, "Receipt has no image")
		return
	}

	data, err := h.images.Fetch(ctx, receipt.ImageURI)
	if err != nil {
		h.log.Error().Err(err).Str("receipt_id", receiptID).Msg("Failed to fetch image")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch image")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", gcsuploader.FilenameFromURI(receipt.ImageURI)))
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// TransactionsHandler handles transaction storage endpoints.
type TransactionsHandler struct {
	store TransactionStore
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, log: log}
}

// CreateTransaction handles POST /api/transactions. The body is a draft
// confirmed by the user, optionally with a date; identity and timestamps
// are filled in here.
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type        domain.Type `json:"type"`
		Amount      int64       `json:"amount"`
		Description string      `json:"description"`
		Category    string      `json:"category"`
		Notes       string      `json:"notes"`
		Date        civil.Date  `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		middleware.WriteError(w, http.StatusBadRequest, "type is required")
		return
	}
	if req.Amount < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	date := req.Date
	if !date.IsValid() {
		date = civil.DateOf(time.Now())
	}

	tx := &domain.Transaction{
		ID:          uuid.NewString(),
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Notes:       req.Notes,
		Date:        date,
		Source:      domain.SourceManual,
		CreatedAt:   time.Now(),
	}

	if err := h.store.Insert(r.Context(), []*domain.Transaction{tx}); err != nil {
		h.log.Error().Err(err).Msg("Failed to store transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// ListTransactions handles GET /api/transactions. The range comes from
// start/end query parameters (YYYY-MM-DD) and defaults to the last 30
// days.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.store.ListByDateRange(r.Context(), start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// ReportsHandler handles advice and export endpoints.
type ReportsHandler struct {
	store   TransactionStore
	adviser Adviser
	log     zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(store TransactionStore, adviser Adviser, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{store: store, adviser: adviser, log: log}
}

// Advice handles GET /api/advice. year/month query parameters default to
// the current month.
func (h *ReportsHandler) Advice(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			middleware.WriteError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = n
	}

	advice, err := h.adviser.Advise(r.Context(), year, month)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to generate advice")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate advice")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"year":   year,
		"month":  month,
		"advice": advice,
	})
}

// ExportCSV handles GET /api/export/csv.
func (h *ReportsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.loadRange(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="laporan-keuangan.csv"`)
	if err := export.WriteCSV(w, txs); err != nil {
		h.log.Error().Err(err).Msg("Failed to write CSV export")
	}
}

// ExportPDF handles GET /api/export/pdf.
func (h *ReportsHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.loadRange(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="laporan-keuangan.pdf"`)
	if err := export.WritePDF(w, txs); err != nil {
		h.log.Error().Err(err).Msg("Failed to write PDF export")
	}
}

func (h *ReportsHandler) loadRange(w http.ResponseWriter, r *http.Request) ([]*domain.Transaction, bool) {
	start, end, err := dateRange(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	txs, err := h.store.ListByDateRange(r.Context(), start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for export")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return nil, false
	}
	return txs, true
}

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// dateRange reads the start/end query parameters, defaulting to the last
// 30 days.
func dateRange(r *http.Request) (start, end civil.Date, err error) {
	now := time.Now()
	end = civil.DateOf(now)
	start = civil.DateOf(now.AddDate(0, 0, -30))

	if v := r.URL.Query().Get("start"); v != "" {
		start, err = civil.ParseDate(v)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date: %s", v)
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		end, err = civil.ParseDate(v)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date: %s", v)
		}
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("end date before start date")
	}
	return start, end, nil
}
