package quotation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
	"github.com/Haizenx/Enginuity-Alpha/internal/export"
	"github.com/Haizenx/Enginuity-Alpha/internal/metrics"
	"github.com/Haizenx/Enginuity-Alpha/internal/service/pricing"
	"github.com/Haizenx/Enginuity-Alpha/pkg/clients/mailer"
)

// ErrMailerUnavailable is returned when quotations are sent without SMTP settings.
var ErrMailerUnavailable = errors.New("email delivery is not configured")

// Catalog provides catalog snapshots.
type Catalog interface {
	GetItemsWithOffers(ctx context.Context, ids []string) ([]models.Item, error)
	GetSupplier(ctx context.Context, id string) (models.Supplier, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
}

// Store persists quotation documents.
type Store interface {
	CreateQuotation(ctx context.Context, quotation models.Quotation) (models.Quotation, error)
	ListQuotations(ctx context.Context) ([]models.Quotation, error)
	GetQuotation(ctx context.Context, id string) (models.Quotation, error)
}

// PreferenceStore persists the tier markup table.
type PreferenceStore interface {
	GetTierMarkups(ctx context.Context) (models.TierMarkupTable, bool, error)
	SaveTierMarkups(ctx context.Context, table models.TierMarkupTable) error
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Ledger appends a summary row per saved quotation.
type Ledger interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// ComputeRequest asks for the costing of a selection for one supplier and tier.
type ComputeRequest struct {
	SupplierID string
	Tier       models.Tier
	Selections []models.Selection
}

// CreateRequest asks for a costed quotation to be saved.
type CreateRequest struct {
	ComputeRequest
	Project models.ProjectDetails
}

// Options carries the optional collaborators and settings.
type Options struct {
	Currency    string
	Mailer      Mailer
	Ledger      Ledger
	LedgerRange string
	Metrics     *metrics.Metrics
}

// Service compares supplier prices and produces quotations.
type Service struct {
	catalog     Catalog
	store       Store
	prefs       PreferenceStore
	mailer      Mailer
	ledger      Ledger
	ledgerRange string
	currency    string
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewService wires the quotation service.
func NewService(catalog Catalog, store Store, prefs PreferenceStore, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Currency == "" {
		opts.Currency = models.DefaultCurrency
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &Service{
		catalog:     catalog,
		store:       store,
		prefs:       prefs,
		mailer:      opts.Mailer,
		ledger:      opts.Ledger,
		ledgerRange: opts.LedgerRange,
		currency:    opts.Currency,
		metrics:     opts.Metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Compare ranks suppliers by the total cost of the selection. Offers from
// suppliers that no longer exist are ignored. An empty candidate list means
// every supplier.
func (s *Service) Compare(ctx context.Context, selections []models.Selection, candidates []string) (models.PriceComparison, error) {
	comparison, err := s.compare(ctx, selections, candidates)
	switch {
	case err != nil && errors.Is(err, pricing.ErrInvalidInput):
		s.metrics.PriceComparisons.WithLabelValues(metrics.OutcomeRejected).Inc()
	case err != nil:
		s.metrics.PriceComparisons.WithLabelValues(metrics.OutcomeFailed).Inc()
	case comparison.Best == nil:
		s.metrics.PriceComparisons.WithLabelValues(metrics.OutcomeEmpty).Inc()
	default:
		s.metrics.PriceComparisons.WithLabelValues(metrics.OutcomeOK).Inc()
	}
	return comparison, err
}

func (s *Service) compare(ctx context.Context, selections []models.Selection, candidates []string) (models.PriceComparison, error) {
	if err := pricing.ValidateSelections(selections); err != nil {
		return models.PriceComparison{}, err
	}

	items, err := s.catalog.GetItemsWithOffers(ctx, pricing.SelectedItemIDs(selections))
	if err != nil {
		return models.PriceComparison{}, err
	}
	suppliers, err := s.catalog.ListSuppliers(ctx)
	if err != nil {
		return models.PriceComparison{}, err
	}

	raw, err := pricing.ComparePrices(items, selections, candidates)
	if err != nil {
		return models.PriceComparison{}, err
	}

	known := make(map[string]models.Supplier, len(suppliers))
	for _, supplier := range suppliers {
		known[supplier.ID] = supplier
	}

	comparison := models.PriceComparison{Results: make([]models.SupplierTotal, 0, len(raw.Results))}
	for _, result := range raw.Results {
		supplier, ok := known[result.SupplierID]
		if !ok {
			continue
		}
		result.Supplier = &supplier
		comparison.Results = append(comparison.Results, result)
	}
	if len(comparison.Results) > 0 {
		best := comparison.Results[0]
		comparison.Best = &best
	}
	return comparison, nil
}

// Compute prices the selection for one supplier at one tier, using the saved
// tier table.
func (s *Service) Compute(ctx context.Context, req ComputeRequest) (models.QuotationCosting, *models.Supplier, error) {
	costing, supplier, err := s.compute(ctx, req)
	switch {
	case err != nil && isRejection(err):
		s.metrics.QuotationsComputed.WithLabelValues(metrics.OutcomeRejected).Inc()
	case err != nil:
		s.metrics.QuotationsComputed.WithLabelValues(metrics.OutcomeFailed).Inc()
	case costing.MissingPrices():
		s.metrics.QuotationsComputed.WithLabelValues(metrics.OutcomeMissing).Inc()
	default:
		s.metrics.QuotationsComputed.WithLabelValues(metrics.OutcomeOK).Inc()
	}
	return costing, supplier, err
}

func (s *Service) compute(ctx context.Context, req ComputeRequest) (models.QuotationCosting, *models.Supplier, error) {
	if err := pricing.ValidateSelections(req.Selections); err != nil {
		return models.QuotationCosting{}, nil, err
	}

	supplier, err := s.catalog.GetSupplier(ctx, req.SupplierID)
	if errors.Is(err, models.ErrSupplierNotFound) || errors.Is(err, models.ErrInvalidID) {
		return models.QuotationCosting{}, nil, fmt.Errorf("%w: %s", pricing.ErrUnknownSupplier, req.SupplierID)
	}
	if err != nil {
		return models.QuotationCosting{}, nil, err
	}

	markups, err := s.TierMarkups(ctx)
	if err != nil {
		return models.QuotationCosting{}, nil, err
	}

	items, err := s.catalog.GetItemsWithOffers(ctx, pricing.SelectedItemIDs(req.Selections))
	if err != nil {
		return models.QuotationCosting{}, nil, err
	}

	costing, err := pricing.ComputeQuotationLines(&supplier, items, req.Selections, req.Tier, markups)
	if err != nil {
		return models.QuotationCosting{}, nil, err
	}
	return costing, &supplier, nil
}

// Create computes the quotation and saves it with its project details.
func (s *Service) Create(ctx context.Context, req CreateRequest) (models.Quotation, error) {
	req.Project.ProjectTitle = strings.TrimSpace(req.Project.ProjectTitle)
	if req.Project.ProjectTitle == "" {
		return models.Quotation{}, fmt.Errorf("%w: project title is required", pricing.ErrInvalidInput)
	}

	costing, supplier, err := s.Compute(ctx, req.ComputeRequest)
	if err != nil {
		return models.Quotation{}, err
	}

	quotation, err := s.store.CreateQuotation(ctx, models.Quotation{
		Project:       req.Project,
		SupplierID:    supplier.ID,
		SupplierName:  supplier.Name,
		Tier:          costing.Tier,
		MarkupPercent: costing.MarkupPercent,
		Currency:      s.currency,
		Lines:         costing.Lines,
		GrandTotal:    costing.GrandTotal,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return models.Quotation{}, fmt.Errorf("save quotation: %w", err)
	}

	s.logger.Info("quotation saved",
		zap.String("quotation_id", quotation.ID),
		zap.String("supplier_id", quotation.SupplierID),
		zap.String("grand_total", quotation.GrandTotal.StringFixed(2)),
	)
	s.appendLedger(ctx, quotation)
	return quotation, nil
}

// List returns saved quotations, newest first.
func (s *Service) List(ctx context.Context) ([]models.Quotation, error) {
	return s.store.ListQuotations(ctx)
}

// Get loads one saved quotation.
func (s *Service) Get(ctx context.Context, id string) (models.Quotation, error) {
	return s.store.GetQuotation(ctx, id)
}

// TierMarkups returns the saved tier table or the defaults when none was saved.
func (s *Service) TierMarkups(ctx context.Context) (models.TierMarkupTable, error) {
	table, found, err := s.prefs.GetTierMarkups(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tier markups: %w", err)
	}
	if !found {
		return models.DefaultTierMarkups(), nil
	}
	return table, nil
}

// UpdateTierMarkups validates and saves a complete tier table.
func (s *Service) UpdateTierMarkups(ctx context.Context, table models.TierMarkupTable) (models.TierMarkupTable, error) {
	if err := pricing.ValidateMarkups(table); err != nil {
		return nil, err
	}
	if err := s.prefs.SaveTierMarkups(ctx, table); err != nil {
		return nil, err
	}
	s.logger.Info("tier markups updated",
		zap.String("tier_1", table[models.Tier1].String()),
		zap.String("tier_2", table[models.Tier2].String()),
		zap.String("tier_3", table[models.Tier3].String()),
	)
	return table, nil
}

// RenderPDF renders a saved quotation as PDF.
func (s *Service) RenderPDF(ctx context.Context, id string) ([]byte, models.Quotation, error) {
	quotation, err := s.store.GetQuotation(ctx, id)
	if err != nil {
		return nil, models.Quotation{}, err
	}
	pdf, err := export.QuotationPDF(quotation)
	if err != nil {
		return nil, models.Quotation{}, err
	}
	return pdf, quotation, nil
}

// RenderXLSX renders a saved quotation as a workbook.
func (s *Service) RenderXLSX(ctx context.Context, id string) ([]byte, models.Quotation, error) {
	quotation, err := s.store.GetQuotation(ctx, id)
	if err != nil {
		return nil, models.Quotation{}, err
	}
	xlsx, err := export.QuotationXLSX(quotation)
	if err != nil {
		return nil, models.Quotation{}, err
	}
	return xlsx, quotation, nil
}

// Send emails the quotation PDF to the recipient.
func (s *Service) Send(ctx context.Context, id, recipient, note string) error {
	if s.mailer == nil {
		return ErrMailerUnavailable
	}

	pdf, quotation, err := s.RenderPDF(ctx, id)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Quotation: %s", quotation.Project.ProjectTitle)
	text := fmt.Sprintf("Good day,\n\nPlease find attached the quotation for %s.\nTotal project cost: %s\n",
		quotation.Project.ProjectTitle, export.FormatMoney(quotation.Currency, quotation.GrandTotal))
	if note = strings.TrimSpace(note); note != "" {
		text += "\n" + note + "\n"
	}

	return s.mailer.Send(ctx, mailer.Message{
		To:          []string{recipient},
		Subject:     subject,
		Text:        text,
		HTML:        plainToHTML(text),
		Attachments: []mailer.Attachment{{Name: FileName(quotation, "pdf"), Content: pdf}},
	})
}

// FileName builds the download name of an exported quotation.
func FileName(q models.Quotation, ext string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(q.Project.ProjectTitle))
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "quotation"
	}
	return fmt.Sprintf("%s-%s.%s", slug, q.ID, ext)
}

func (s *Service) appendLedger(ctx context.Context, q models.Quotation) {
	if s.ledger == nil || s.ledgerRange == "" {
		return
	}
	row := []interface{}{
		q.CreatedAt.Format(time.RFC3339),
		q.ID,
		q.Project.ProjectTitle,
		q.Project.ProjectOwner,
		q.SupplierName,
		int(q.Tier),
		q.GrandTotal.StringFixed(2),
		q.Currency,
	}
	if err := s.ledger.WriteRow(ctx, s.ledgerRange, row); err != nil {
		s.logger.Warn("quotation ledger append failed", zap.String("quotation_id", q.ID), zap.Error(err))
	}
}

func isRejection(err error) bool {
	return errors.Is(err, pricing.ErrInvalidInput) ||
		errors.Is(err, pricing.ErrUnknownSupplier) ||
		errors.Is(err, pricing.ErrInvalidTier) ||
		errors.Is(err, pricing.ErrInvalidConfiguration)
}

func plainToHTML(text string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:system-ui,Segoe UI,Roboto,Helvetica,Arial,sans-serif;line-height:1.6">`)
	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	b.WriteString("</div>")
	return b.String()
}
