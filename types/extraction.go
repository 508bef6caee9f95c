package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Extraction shapes returned by the external AI extraction service.
//
// The service returns loosely structured JSON whose shape depends on a "type"
// discriminator that may disagree with the stored document_type (e.g. a file
// uploaded as "other" recognised as an invoice). DecodeExtraction is total:
// any input, including nil, malformed JSON or wrong field types, decodes to a
// usable variant with missing values zeroed. It never returns an error.

// LineItem is a single extracted line on an invoice, receipt or statement.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// BankTransaction is a single movement on an extracted bank statement.
type BankTransaction struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Credit      float64   `json:"credit"`
	Debit       float64   `json:"debit"`
}

type InvoiceExtraction struct {
	InvoiceNumber string     `json:"invoiceNumber,omitempty"`
	CustomerName  string     `json:"customerName,omitempty"`
	Category      string     `json:"category,omitempty"`
	InvoiceDate   time.Time  `json:"invoiceDate"`
	Items         []LineItem `json:"items,omitempty"`
	TotalAmount   float64    `json:"totalAmount"`
	VATAmount     float64    `json:"vatAmount"`
}

type ReceiptExtraction struct {
	MerchantName string     `json:"merchantName,omitempty"`
	Category     string     `json:"category,omitempty"`
	ReceiptDate  time.Time  `json:"receiptDate"`
	Items        []LineItem `json:"items,omitempty"`
	TotalAmount  float64    `json:"totalAmount"`
	VATAmount    float64    `json:"vatAmount"`
}

type BankStatementExtraction struct {
	AccountNumber string            `json:"accountNumber,omitempty"`
	BankName      string            `json:"bankName,omitempty"`
	Transactions  []BankTransaction `json:"transactions,omitempty"`
	TotalCredits  float64           `json:"totalCredits"`
	TotalDebits   float64           `json:"totalDebits"`
}

type ProfitLossExtraction struct {
	PeriodStart   time.Time  `json:"periodStart"`
	PeriodEnd     time.Time  `json:"periodEnd"`
	RevenueItems  []LineItem `json:"revenueItems,omitempty"`
	ExpenseItems  []LineItem `json:"expenseItems,omitempty"`
	TotalRevenue  float64    `json:"totalRevenue"`
	TotalExpenses float64    `json:"totalExpenses"`
}

type BalanceSheetExtraction struct {
	AsOfDate    time.Time  `json:"asOfDate"`
	AssetItems  []LineItem `json:"assetItems,omitempty"`
	TotalAssets float64    `json:"totalAssets"`
}

// GenericExtraction is the fallback for unrecognised document types.
type GenericExtraction struct {
	Date        time.Time `json:"date"`
	TotalAmount float64   `json:"totalAmount"`
}

// Extraction is the decoded, typed view of a document's extracted_data blob.
// Exactly one variant pointer is non-nil, selected by EffectiveType.
type Extraction struct {
	// EffectiveType is the extracted "type" discriminator when present and
	// valid; otherwise the stored document_type.
	EffectiveType DocumentType

	Invoice       *InvoiceExtraction
	Receipt       *ReceiptExtraction
	BankStatement *BankStatementExtraction
	ProfitLoss    *ProfitLossExtraction
	BalanceSheet  *BalanceSheetExtraction
	Generic       *GenericExtraction
}

// PrimaryAmount returns the headline monetary amount of the extraction:
// the document total for invoices/receipts, the credit total for bank
// statements, revenue for P&L and assets for balance sheets.
func (e *Extraction) PrimaryAmount() float64 {
	switch {
	case e.Invoice != nil:
		return e.Invoice.TotalAmount
	case e.Receipt != nil:
		return e.Receipt.TotalAmount
	case e.BankStatement != nil:
		return e.BankStatement.TotalCredits
	case e.ProfitLoss != nil:
		return e.ProfitLoss.TotalRevenue
	case e.BalanceSheet != nil:
		return e.BalanceSheet.TotalAssets
	case e.Generic != nil:
		return e.Generic.TotalAmount
	}
	return 0
}

// PrimaryDate returns the extracted document date, or fallback when the
// extraction carries no usable date.
func (e *Extraction) PrimaryDate(fallback time.Time) time.Time {
	var t time.Time
	switch {
	case e.Invoice != nil:
		t = e.Invoice.InvoiceDate
	case e.Receipt != nil:
		t = e.Receipt.ReceiptDate
	case e.ProfitLoss != nil:
		t = e.ProfitLoss.PeriodEnd
	case e.BalanceSheet != nil:
		t = e.BalanceSheet.AsOfDate
	case e.Generic != nil:
		t = e.Generic.Date
	}
	if t.IsZero() {
		return fallback
	}
	return t
}

// DecodeExtraction decodes a raw extracted_data blob into a typed Extraction.
// docType is the stored document_type, used when the blob carries no valid
// "type" discriminator of its own.
func DecodeExtraction(raw json.RawMessage, docType DocumentType) Extraction {
	var m map[string]interface{}
	if len(raw) > 0 {
		// A failed unmarshal leaves m nil and the decode proceeds with all
		// fields zeroed.
		_ = json.Unmarshal(raw, &m)
	}

	effective := docType
	if t := DocumentType(coerceString(m, "type")); t.IsValid() {
		effective = t
	}

	ext := Extraction{EffectiveType: effective}
	switch effective {
	case DocumentTypeInvoice:
		ext.Invoice = &InvoiceExtraction{
			InvoiceNumber: coerceString(m, "invoice_number", "invoiceNumber"),
			CustomerName:  coerceString(m, "customer_name", "customerName"),
			Category:      coerceString(m, "category"),
			InvoiceDate:   coerceDate(m, "invoice_date", "invoiceDate", "date"),
			Items:         coerceItems(m, "items"),
			TotalAmount:   coerceNumber(m, "total_amount", "totalAmount"),
			VATAmount:     coerceNumber(m, "vat_amount", "vatAmount"),
		}
	case DocumentTypeReceipt:
		ext.Receipt = &ReceiptExtraction{
			MerchantName: coerceString(m, "merchant_name", "merchantName", "merchant"),
			Category:     coerceString(m, "category"),
			ReceiptDate:  coerceDate(m, "receipt_date", "receiptDate", "date"),
			Items:        coerceItems(m, "items"),
			TotalAmount:  coerceNumber(m, "total_amount", "totalAmount"),
			VATAmount:    coerceNumber(m, "vat_amount", "vatAmount"),
		}
	case DocumentTypeBankStatement:
		ext.BankStatement = &BankStatementExtraction{
			AccountNumber: coerceString(m, "account_number", "accountNumber"),
			BankName:      coerceString(m, "bank_name", "bankName"),
			Transactions:  coerceTransactions(m, "transactions"),
			TotalCredits:  coerceNumber(m, "total_credits", "totalCredits"),
			TotalDebits:   coerceNumber(m, "total_debits", "totalDebits"),
		}
	case DocumentTypeProfitLoss:
		ext.ProfitLoss = &ProfitLossExtraction{
			PeriodStart:   coerceDate(m, "period_start", "periodStart"),
			PeriodEnd:     coerceDate(m, "period_end", "periodEnd", "date"),
			RevenueItems:  coerceItems(m, "revenue_items", "revenueItems"),
			ExpenseItems:  coerceItems(m, "expense_items", "expenseItems"),
			TotalRevenue:  coerceNumber(m, "total_revenue", "totalRevenue"),
			TotalExpenses: coerceNumber(m, "total_expenses", "totalExpenses"),
		}
	case DocumentTypeBalanceSheet:
		ext.BalanceSheet = &BalanceSheetExtraction{
			AsOfDate:    coerceDate(m, "as_of_date", "asOfDate", "date"),
			AssetItems:  coerceItems(m, "assets", "asset_items", "assetItems"),
			TotalAssets: coerceNumber(m, "total_assets", "totalAssets"),
		}
	default:
		ext.Generic = &GenericExtraction{
			Date:        coerceDate(m, "date"),
			TotalAmount: coerceNumber(m, "total_amount", "totalAmount", "amount"),
		}
	}
	return ext
}

// Coercion helpers. Each looks up the first present key and maps any
// unusable value to the zero value instead of failing.

func coerceNumber(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case json.Number:
			f, err := n.Float64()
			if err == nil {
				return f
			}
		case string:
			if f, ok := parseAmountString(n); ok {
				return f
			}
		}
	}
	return 0
}

func coerceString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// extractionDateLayouts are the formats the extraction service has been seen
// to emit for dates.
var extractionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
}

func coerceDate(m map[string]interface{}, keys ...string) time.Time {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if t, ok := parseDateString(s); ok {
			return t
		}
	}
	return time.Time{}
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range extractionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmountString handles amounts the extractor returns as strings, with
// optional currency prefixes and thousands separators ("Rs. 1,50,000.50").
func parseAmountString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal([]byte(cleaned), &f); err != nil {
		return 0, false
	}
	return f, true
}

func coerceItems(m map[string]interface{}, keys ...string) []LineItem {
	raw := coerceSlice(m, keys...)
	if raw == nil {
		return nil
	}
	items := make([]LineItem, 0, len(raw))
	for _, entry := range raw {
		em, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		items = append(items, LineItem{
			Description: coerceString(em, "description", "name"),
			Amount:      coerceNumber(em, "amount", "total", "value"),
		})
	}
	return items
}

func coerceTransactions(m map[string]interface{}, keys ...string) []BankTransaction {
	raw := coerceSlice(m, keys...)
	if raw == nil {
		return nil
	}
	txns := make([]BankTransaction, 0, len(raw))
	for _, entry := range raw {
		em, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		txns = append(txns, BankTransaction{
			Date:        coerceDate(em, "date", "transaction_date", "transactionDate"),
			Description: coerceString(em, "description", "narration", "particulars"),
			Credit:      coerceNumber(em, "credit", "deposit"),
			Debit:       coerceNumber(em, "debit", "withdrawal"),
		})
	}
	return txns
}

func coerceSlice(m map[string]interface{}, keys ...string) []interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.([]interface{}); ok {
				return s
			}
		}
	}
	return nil
}
