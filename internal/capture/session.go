// Package capture orchestrates one bill scan: file validation, on-device
// text acquisition, duplicate detection, privacy masking, hosted field
// extraction, and the user review/save stage. One session serves the single
// local user; every terminal path returns it to the Upload stage.
package capture

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billerpro/billerpro/constants"
	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/dedup"
	"github.com/billerpro/billerpro/internal/ledger"
	"github.com/billerpro/billerpro/internal/llm"
	"github.com/billerpro/billerpro/internal/mask"
	"github.com/billerpro/billerpro/internal/metrics"
)

// Stage is the capture workflow state.
type Stage string

const (
	StageUpload     Stage = "upload"
	StageExtracting Stage = "extracting"
	StageProcessing Stage = "processing"
	StageDuplicate  Stage = "duplicate"
	StageReview     Stage = "review"
)

// TextAcquirer is the on-device extraction surface; textextract.Extractor
// implements it, tests stub it.
type TextAcquirer interface {
	PDFText(ctx context.Context, data []byte) (string, error)
	ImageText(ctx context.Context, data []byte, ext string) (string, error)
}

// Draft holds extracted-but-unconfirmed values. Ephemeral: created when
// extraction succeeds, discarded on save or on "upload different bill",
// never persisted.
type Draft struct {
	Date         string              `json:"date"`
	VendorID     string              `json:"vendorId"`
	CustomerName string              `json:"customerName"`
	Amount       string              `json:"amount"`
	BillNumber   string              `json:"billNumber"`
	VendorHint   string              `json:"vendorHint"`
	Confidence   llm.FieldConfidence `json:"confidence"`
	MaskedFields []string            `json:"maskedFields"`
}

// SaveInput carries the user-edited review fields back into Save.
type SaveInput struct {
	VendorID     string `json:"vendorId"`
	CustomerName string `json:"customerName"`
	Amount       string `json:"amount"`
	Date         string `json:"date"`
}

// Outcome is what a pipeline run hands back to the transport layer.
type Outcome struct {
	Stage     Stage        `json:"stage"`
	Draft     *Draft       `json:"draft,omitempty"`
	Duplicate *ledger.Bill `json:"duplicate,omitempty"`
}

type stagedFile struct {
	name string
	mime string
	data []byte
}

// Session is the capture workflow state machine.
type Session struct {
	acquirer TextAcquirer
	fields   llm.FieldExtractor
	store    *ledger.Store
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	stage Stage
	file  *stagedFile // retained across the Duplicate stage for "scan anyway"
	draft *Draft
}

func NewSession(acquirer TextAcquirer, fields llm.FieldExtractor, store *ledger.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		acquirer: acquirer,
		fields:   fields,
		store:    store,
		logger:   logger,
		now:      time.Now,
		stage:    StageUpload,
	}
}

// Stage returns the current workflow stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Draft returns the current review draft, or nil outside the Review stage.
func (s *Session) Draft() *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	d := *s.draft
	return &d
}

// HandleFile validates the selected file and runs the capture pipeline.
// Validation failures keep the session at Upload with no transition.
func (s *Session) HandleFile(ctx context.Context, name, mime string, data []byte) (Outcome, error) {
	if !constants.IsAllowedMIME(mime) {
		return Outcome{Stage: StageUpload}, common.ValidationError("only PDF, JPEG, PNG or WebP bills are supported")
	}
	if len(data) == 0 {
		return Outcome{Stage: StageUpload}, common.ValidationError("the selected file is empty")
	}
	if len(data) > constants.MaxUploadBytes {
		return Outcome{Stage: StageUpload}, common.ValidationError("bills larger than 20 MB are not supported")
	}

	s.mu.Lock()
	if s.stage != StageUpload {
		stage := s.stage
		s.mu.Unlock()
		return Outcome{Stage: stage}, common.ValidationError("a scan is already in progress")
	}
	// Claim the session in the same critical section as the check, so a
	// concurrent upload cannot also pass the guard and clobber the file.
	s.stage = StageExtracting
	s.file = &stagedFile{name: name, mime: mime, data: data}
	s.mu.Unlock()

	return s.run(ctx, false)
}

// ScanAnyway re-runs the pipeline from the Duplicate stage with the
// duplicate check bypassed entirely, not merely ignored.
func (s *Session) ScanAnyway(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.stage != StageDuplicate || s.file == nil {
		stage := s.stage
		s.mu.Unlock()
		return Outcome{Stage: stage}, common.ValidationError("no duplicate warning to override")
	}
	s.stage = StageExtracting
	s.mu.Unlock()
	return s.run(ctx, true)
}

// Back abandons the Duplicate stage and returns to Upload.
func (s *Session) Back() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageDuplicate {
		s.reset()
	}
	return Outcome{Stage: s.stage}
}

// Discard throws the review draft away and returns to Upload.
func (s *Session) Discard() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageReview {
		s.reset()
		metrics.CapturesTotal.WithLabelValues("discarded").Inc()
	}
	return Outcome{Stage: s.stage}
}

// run executes Extracting -> (Duplicate | Processing) -> Review. The caller
// has already moved the session to Extracting under the mutex. Any failure
// discards the draft wholesale and lands back at Upload.
func (s *Session) run(ctx context.Context, skipDuplicateCheck bool) (Outcome, error) {
	s.mu.Lock()
	file := s.file
	s.mu.Unlock()

	rawText, isPDF, err := s.acquire(ctx, file)
	if err != nil {
		return s.fail(err)
	}

	// Duplicate check runs on the PDF path only, before anything is spent
	// on the hosted model.
	if isPDF && !skipDuplicateCheck {
		if dup := dedup.DetectDuplicate(rawText, s.store.Bills()); dup != nil {
			s.mu.Lock()
			s.stage = StageDuplicate
			s.mu.Unlock()
			metrics.CapturesTotal.WithLabelValues("duplicate").Inc()
			s.logger.Info("capture.duplicate_detected", "bill_id", dup.ID)
			return Outcome{Stage: StageDuplicate, Duplicate: dup}, nil
		}
	}

	maskedText, maskedFields := mask.Mask(rawText)
	for _, f := range maskedFields {
		metrics.MaskedFieldsTotal.WithLabelValues(f).Inc()
	}

	s.mu.Lock()
	s.stage = StageProcessing
	s.mu.Unlock()

	vendors := s.store.Vendors()
	names := make([]string, len(vendors))
	for i, v := range vendors {
		names[i] = v.Name
	}

	fields, err := s.fields.ExtractFields(ctx, llm.ExtractRequest{
		MaskedText:       maskedText,
		KnownVendorNames: names,
	})
	if err != nil {
		return s.fail(err)
	}

	draft := s.buildDraft(fields, vendors, maskedFields)

	s.mu.Lock()
	s.stage = StageReview
	s.draft = &draft
	s.mu.Unlock()

	s.logger.Info("capture.review_ready",
		"vendor_hint", draft.VendorHint,
		"bill_number", draft.BillNumber,
		"masked_fields", len(maskedFields),
	)
	return Outcome{Stage: StageReview, Draft: &draft}, nil
}

func (s *Session) acquire(ctx context.Context, file *stagedFile) (string, bool, error) {
	start := time.Now()
	if constants.IsPDFMIME(file.mime) {
		text, err := s.acquirer.PDFText(ctx, file.data)
		metrics.ExtractionSeconds.WithLabelValues("pdf").Observe(time.Since(start).Seconds())
		return text, true, err
	}
	ext := extFromMIME(file.mime)
	text, err := s.acquirer.ImageText(ctx, file.data, ext)
	metrics.ExtractionSeconds.WithLabelValues("image").Observe(time.Since(start).Seconds())
	return text, false, err
}

func (s *Session) buildDraft(f llm.BillFields, vendors []ledger.Vendor, maskedFields []string) Draft {
	date := strings.TrimSpace(f.Date)
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	return Draft{
		Date:         date,
		VendorID:     matchVendor(f.VendorName, vendors),
		CustomerName: strings.TrimSpace(f.CustomerName),
		Amount:       strings.TrimSpace(f.Amount),
		BillNumber:   strings.TrimSpace(f.BillNumber),
		VendorHint:   strings.TrimSpace(f.VendorName),
		Confidence:   f.Confidence,
		MaskedFields: maskedFields,
	}
}

// Save commits the reviewed draft as a Bill. Each precondition blocks the
// save independently, reporting which field is missing, without leaving the
// Review stage.
func (s *Session) Save(input SaveInput) (ledger.Bill, error) {
	s.mu.Lock()
	if s.stage != StageReview || s.draft == nil {
		s.mu.Unlock()
		return ledger.Bill{}, common.ValidationError("nothing to save yet. Scan a bill first")
	}
	draft := *s.draft
	s.mu.Unlock()

	if strings.TrimSpace(input.VendorID) == "" {
		return ledger.Bill{}, common.ValidationError("select a vendor before saving")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return ledger.Bill{}, common.ValidationError("customer name is required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(input.Amount))
	if err != nil {
		return ledger.Bill{}, common.ValidationError("enter a valid amount")
	}
	if !amount.IsPositive() {
		return ledger.Bill{}, common.ValidationError("amount must be greater than zero")
	}
	if strings.TrimSpace(input.Date) == "" {
		return ledger.Bill{}, common.ValidationError("bill date is required")
	}

	notes := BuildNotes(draft.VendorHint, draft.BillNumber)
	confidence := constants.NormalizeConfidence(draft.Confidence.Amount)

	bill, err := s.store.AddBill(input.VendorID, input.CustomerName, amount, strings.TrimSpace(input.Date), notes, confidence)
	if err != nil {
		return ledger.Bill{}, err
	}

	s.mu.Lock()
	s.reset()
	s.mu.Unlock()

	metrics.CapturesTotal.WithLabelValues("saved").Inc()
	s.logger.Info("capture.saved", "bill_id", bill.ID, "amount", bill.Amount, "date", bill.Date)
	return bill, nil
}

// BuildNotes assembles "Issuer: <hint> · Bill #<number>", omitting whichever
// part is absent.
func BuildNotes(vendorHint, billNumber string) string {
	parts := make([]string, 0, 2)
	if vendorHint != "" {
		parts = append(parts, "Issuer: "+vendorHint)
	}
	if billNumber != "" {
		parts = append(parts, ledger.BillNumberMarker+billNumber)
	}
	return strings.Join(parts, " · ")
}

// fail discards everything and returns to Upload; no partial draft survives.
func (s *Session) fail(err error) (Outcome, error) {
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
	metrics.CapturesTotal.WithLabelValues("failed").Inc()
	s.logger.Error("capture.failed", "error", err)
	return Outcome{Stage: StageUpload}, err
}

// reset must be called with s.mu held.
func (s *Session) reset() {
	s.stage = StageUpload
	s.file = nil
	s.draft = nil
}

func extFromMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}
