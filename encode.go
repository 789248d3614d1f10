package cryptotax

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// This file decodes the normalized transaction formats: the CSV produced by
// the normalizer and a JSONL format, one transaction per line.

// Columns of the normalized CSV. id and price are optional.
const (
	colID          = "id"
	colTimestamp   = "timestamp"
	colType        = "type"
	colBaseAsset   = "base_asset"
	colBaseAmount  = "base_amount"
	colQuoteAsset  = "quote_asset"
	colQuoteAmount = "quote_amount"
	colFeeAmount   = "fee_amount"
	colFeeAsset    = "fee_asset"
	colPrice       = "price"
	colNotes       = "notes"
)

var requiredColumns = []string{colTimestamp, colType, colBaseAsset, colBaseAmount}

// timeLayouts are the accepted timestamp formats. Timestamps without a zone are UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a timestamp in one of the accepted layouts and
// returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp %q", s)
}

// DecodeCSV reads normalized transactions from a CSV with a header row.
// Empty numeric cells are read as zero; the ledger reports the transactions
// that cannot be processed.
func DecodeCSV(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("missing required column %q", c)
		}
	}

	var txs []Transaction
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return txs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		tx, err := decodeRow(get)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
}

func decodeRow(get func(string) string) (tx Transaction, err error) {
	tx.ID = get(colID)
	tx.Type = ParseTxType(get(colType))
	tx.BaseAsset = strings.ToUpper(get(colBaseAsset))
	tx.QuoteAsset = strings.ToUpper(get(colQuoteAsset))
	tx.FeeAsset = strings.ToUpper(get(colFeeAsset))
	tx.Notes = get(colNotes)

	if ts := get(colTimestamp); ts != "" {
		if tx.Timestamp, err = ParseTimestamp(ts); err != nil {
			return tx, err
		}
	}
	if tx.BaseAmount, err = ParseQuantity(get(colBaseAmount)); err != nil {
		return tx, fmt.Errorf("%s: %w", colBaseAmount, err)
	}
	if tx.QuoteAmount, err = ParseMoney(get(colQuoteAmount), tx.QuoteAsset); err != nil {
		return tx, fmt.Errorf("%s: %w", colQuoteAmount, err)
	}
	if tx.FeeAmount, err = ParseQuantity(get(colFeeAmount)); err != nil {
		return tx, fmt.Errorf("%s: %w", colFeeAmount, err)
	}
	if tx.Price, err = ParseMoney(get(colPrice), tx.QuoteAsset); err != nil {
		return tx, fmt.Errorf("%s: %w", colPrice, err)
	}
	return tx, nil
}

// DecodeJSONL reads one JSON transaction per line. Blank lines are ignored.
func DecodeJSONL(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	for i := 1; scanner.Scan(); i++ {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("line %d: not a valid transaction: %w", i, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// EncodeJSONL writes transactions, one JSON object per line.
func EncodeJSONL(w io.Writer, txs []Transaction) error {
	enc := json.NewEncoder(w)
	for _, tx := range txs {
		if err := enc.Encode(tx); err != nil {
			return fmt.Errorf("cannot encode transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}

// Decode reads transactions choosing the format from the file name: ".jsonl"
// and ".json" files are JSONL, anything else is CSV.
func Decode(name string, r io.Reader) ([]Transaction, error) {
	switch {
	case strings.HasSuffix(name, ".jsonl"), strings.HasSuffix(name, ".json"):
		return DecodeJSONL(r)
	default:
		return DecodeCSV(r)
	}
}
