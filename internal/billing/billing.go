// Package billing creates quotes, invoices and bookings for the service
// business side of the dashboard. Rows land in SQLite; the spreadsheet
// mirror and customer e-mail are best-effort side effects.
package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/OpsDeck/OpsDeck/internal/mailer"
)

// ErrValidation marks a bad request from the caller.
var ErrValidation = errors.New("validation")

// invoiceDue is how long a customer has to pay.
const invoiceDue = 14 * 24 * time.Hour

// LineItem is one priced line on a quote or invoice.
type LineItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Quote is a priced offer for a job.
type Quote struct {
	ID            string     `json:"id"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	Job           string     `json:"job,omitempty"`
	Items         []LineItem `json:"items"`
	Total         float64    `json:"total"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Invoice is a bill for a (usually quoted) job.
type Invoice struct {
	ID            string     `json:"id"`
	QuoteID       string     `json:"quote_id,omitempty"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	Job           string     `json:"job,omitempty"`
	Items         []LineItem `json:"items"`
	Total         float64    `json:"total"`
	DueAt         time.Time  `json:"due_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Booking is a scheduled visit.
type Booking struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Slot         string    `json:"slot,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuoteRequest is the inbound shape for quotes and invoices. BasePrice
// and CalloutFee default to zero when absent.
type QuoteRequest struct {
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	Job           string     `json:"job"`
	BasePrice     float64    `json:"base_price"`
	CalloutFee    float64    `json:"callout_fee"`
	Extras        []LineItem `json:"extras"`
	QuoteID       string     `json:"quote_id"`
}

// SheetMirror is the best-effort spreadsheet append capability.
type SheetMirror interface {
	Append(ctx context.Context, sheet string, values []string) error
}

// Mailer is the best-effort e-mail capability.
type Mailer interface {
	Send(ctx context.Context, m mailer.Mail) error
}

// Service owns the billing tables and side effects.
type Service struct {
	db     *sql.DB
	sheet  SheetMirror
	mail   Mailer
	logger *slog.Logger
}

// Open opens (or creates) the billing database at dbPath and applies the
// schema.
func Open(dbPath string, sheet SheetMirror, mail Mailer, logger *slog.Logger) (*Service, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open billing db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply billing schema: %w", err)
	}
	return NewWithDB(db, sheet, mail, logger), nil
}

// NewWithDB wraps an existing database handle. The schema must already be
// applied (tests use this with their own driver).
func NewWithDB(db *sql.DB, sheet SheetMirror, mail Mailer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, sheet: sheet, mail: mail, logger: logger}
}

// Close closes the database.
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// buildItems assembles the standard line items. Zero amounts are kept so
// the total always equals the sum of what is listed.
func buildItems(req QuoteRequest) ([]LineItem, float64) {
	items := []LineItem{
		{Label: "Base price", Amount: req.BasePrice},
		{Label: "Callout fee", Amount: req.CalloutFee},
	}
	items = append(items, req.Extras...)
	var total float64
	for _, it := range items {
		total += it.Amount
	}
	return items, total
}

// CreateQuote builds and records a quote. The database insert, the sheet
// mirror and the customer e-mail are all best-effort; the quote itself is
// always returned.
func (s *Service) CreateQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer_name is required", ErrValidation)
	}

	items, total := buildItems(req)
	q := &Quote{
		ID:            "q_" + uuid.NewString(),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		Job:           strings.TrimSpace(req.Job),
		Items:         items,
		Total:         total,
		CreatedAt:     time.Now(),
	}

	itemsJSON, _ := json.Marshal(q.Items)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO quotes (id, customer_name, customer_email, job, items, total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.CustomerName, q.CustomerEmail, q.Job, string(itemsJSON), q.Total, q.CreatedAt,
	); err != nil {
		s.logger.Warn("quote insert failed", "quote", q.ID, "error", err)
	}

	s.mirror(ctx, "Quotes", []string{q.ID, q.CustomerName, q.Job, fmt.Sprintf("%.2f", q.Total)})
	s.email(ctx, q.CustomerEmail, "Your quote", quoteBody(q.CustomerName, q.Job, q.Items, q.Total))

	return q, nil
}

// CreateInvoice builds and records an invoice due in 14 days.
func (s *Service) CreateInvoice(ctx context.Context, req QuoteRequest) (*Invoice, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer_name is required", ErrValidation)
	}

	items, total := buildItems(req)
	now := time.Now()
	inv := &Invoice{
		ID:            "inv_" + uuid.NewString(),
		QuoteID:       strings.TrimSpace(req.QuoteID),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		Job:           strings.TrimSpace(req.Job),
		Items:         items,
		Total:         total,
		DueAt:         now.Add(invoiceDue),
		CreatedAt:     now,
	}

	itemsJSON, _ := json.Marshal(inv.Items)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (id, quote_id, customer_name, customer_email, job, items, total, due_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.QuoteID, inv.CustomerName, inv.CustomerEmail, inv.Job, string(itemsJSON), inv.Total, inv.DueAt, inv.CreatedAt,
	); err != nil {
		s.logger.Warn("invoice insert failed", "invoice", inv.ID, "error", err)
	}

	s.mirror(ctx, "Invoices", []string{inv.ID, inv.CustomerName, inv.Job, fmt.Sprintf("%.2f", inv.Total)})
	s.email(ctx, inv.CustomerEmail, "Your invoice", invoiceBody(inv))

	return inv, nil
}

// CreateBooking records a scheduled visit.
func (s *Service) CreateBooking(ctx context.Context, b Booking) (*Booking, error) {
	if strings.TrimSpace(b.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer_name is required", ErrValidation)
	}
	b.ID = "bk_" + uuid.NewString()
	b.CustomerName = strings.TrimSpace(b.CustomerName)
	b.CreatedAt = time.Now()

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (id, customer_name, phone, address, slot, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.CustomerName, b.Phone, b.Address, b.Slot, b.Notes, b.CreatedAt,
	); err != nil {
		s.logger.Warn("booking insert failed", "booking", b.ID, "error", err)
	}

	s.mirror(ctx, "Bookings", []string{b.ID, b.CustomerName, b.Slot, b.Address})
	return &b, nil
}

func (s *Service) mirror(ctx context.Context, sheet string, values []string) {
	if s.sheet == nil {
		return
	}
	if err := s.sheet.Append(ctx, sheet, values); err != nil {
		s.logger.Debug("sheet mirror failed", "sheet", sheet, "error", err)
	}
}

func (s *Service) email(ctx context.Context, to, subject, body string) {
	if s.mail == nil || strings.TrimSpace(to) == "" {
		return
	}
	if err := s.mail.Send(ctx, mailer.Mail{To: to, Subject: subject, Text: body}); err != nil {
		s.logger.Debug("billing e-mail failed", "to", to, "error", err)
	}
}

func quoteBody(name, job string, items []LineItem, total float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nHere is your quote", name)
	if job != "" {
		fmt.Fprintf(&b, " for: %s", job)
	}
	b.WriteString("\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "  %-20s %8.2f\n", it.Label, it.Amount)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\n", total)
	return b.String()
}

func invoiceBody(inv *Invoice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nInvoice %s", inv.CustomerName, inv.ID)
	if inv.Job != "" {
		fmt.Fprintf(&b, " for: %s", inv.Job)
	}
	b.WriteString("\n\n")
	for _, it := range inv.Items {
		fmt.Fprintf(&b, "  %-20s %8.2f\n", it.Label, it.Amount)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\nDue: %s\n", inv.Total, inv.DueAt.Format("2 Jan 2006"))
	return b.String()
}
