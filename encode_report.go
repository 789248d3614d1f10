package cryptotax

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/cryptotax/date"
)

// Exact decimal strings are written to the detailed exports; only the
// TurboTax export rounds to the currency precision.

var gainsHeader = []string{
	"disposal_date", "asset", "amount_consumed", "proceeds_allocated",
	"cost_basis_consumed", "gain_loss", "acquisition_date", "holding_days",
	"term", "accounting_method", "kind", "source_transaction_id", "source_lot_id",
}

// EncodeGainsCSV writes one row per GainLoss record.
func EncodeGainsCSV(w io.Writer, gains []GainLoss) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(gainsHeader); err != nil {
		return err
	}
	for _, g := range gains {
		row := []string{
			g.DisposalDate.String(),
			g.Asset,
			g.Amount.String(),
			g.Proceeds.Decimal().String(),
			g.CostBasis.Decimal().String(),
			g.GainLoss.Decimal().String(),
			dateOrEmpty(g.AcquiredDate),
			strconv.Itoa(g.HoldingDays),
			string(g.Term),
			g.Method.String(),
			string(g.Kind),
			g.Transaction,
			g.Lot,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var incomeHeader = []string{
	"receipt_date", "asset", "amount", "price", "fair_market_value", "type", "source_transaction_id",
}

// EncodeIncomeCSV writes one row per Income record.
func EncodeIncomeCSV(w io.Writer, incomes []Income) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(incomeHeader); err != nil {
		return err
	}
	for _, i := range incomes {
		row := []string{
			i.ReceiptDate.String(),
			i.Asset,
			i.Amount.String(),
			i.Price.Decimal().String(),
			i.FairMarketValue.Decimal().String(),
			string(i.Type),
			i.Transaction,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeSummaryJSON writes the totals and record counts of a result as an
// indented JSON object.
func EncodeSummaryJSON(w io.Writer, r *Result) error {
	var o jsonObjectWriter
	o.Append("accounting_method", r.Method)
	o.Append("tax_currency", r.Currency)
	o.Append("total_short_term", r.ShortTerm)
	o.Append("total_long_term", r.LongTerm)
	o.Append("total_capital_gains", r.CapitalGains())
	o.Append("total_income", r.Income)
	o.Append("transactions", r.Transactions)
	o.Append("gain_loss_records", len(r.Gains))
	o.Append("income_records", len(r.Incomes))
	o.Append("assets_traded", len(r.Assets()))
	o.Append("diagnostics", len(r.Diagnostics))
	data, err := o.MarshalJSON()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

var turboTaxHeader = []string{
	"Description", "Date Acquired", "Date Sold", "Proceeds", "Cost Basis", "Gain/Loss", "Term", "Asset", "Amount",
}

// EncodeTurboTaxCSV writes the records in the column layout TurboTax
// imports, sorted by date sold. Money is rounded to the currency precision.
func EncodeTurboTaxCSV(w io.Writer, gains []GainLoss) error {
	sorted := slices.Clone(gains)
	slices.SortStableFunc(sorted, func(a, b GainLoss) int {
		switch {
		case a.DisposalDate.Before(b.DisposalDate):
			return -1
		case a.DisposalDate.After(b.DisposalDate):
			return 1
		}
		return 0
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(turboTaxHeader); err != nil {
		return err
	}
	for _, g := range sorted {
		places := g.Proceeds.Fraction()
		row := []string{
			fmt.Sprintf("%s - %s %s", g.Asset, strings.ToUpper(g.Method.String()), turboTaxKind(g.Kind)),
			usDate(g.AcquiredDate),
			usDate(g.DisposalDate),
			g.Proceeds.StringFixed(places),
			g.CostBasis.StringFixed(places),
			g.GainLoss.StringFixed(places),
			turboTaxTerm(g.Term),
			g.Asset,
			g.Amount.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func turboTaxKind(k DisposalKind) string {
	switch k {
	case Withdrawal:
		return "Withdrawal"
	case FeePayment:
		return "Fee"
	case Shortfall:
		return "Sale (no basis)"
	default:
		return "Sale"
	}
}

func turboTaxTerm(t Term) string {
	if t == LongTerm {
		return "Long"
	}
	return "Short"
}

func usDate(d date.Date) string {
	if d.IsZero() {
		return "VARIOUS"
	}
	return d.Format("01/02/2006")
}

func dateOrEmpty(d date.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
