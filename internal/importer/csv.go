package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// JournalCSVParser reads the standard import format:
//
//	date,description,debit_account,credit_account,amount,reference
//	2025-01-15,GitHub subscription,8020,1010,4.00,INV-1001
//
// Accounts are referenced by code. The header row is required.
type JournalCSVParser struct{}

// Format identifies this parser in the registry.
func (p *JournalCSVParser) Format() string { return "journal" }

const journalHeader = "date,description,debit_account,credit_account,amount,reference"

// Parse reads rows, validating shape but not account existence — the journal
// engine re-validates everything inside the import transaction.
func (p *JournalCSVParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if strings.Join(header, ",") != journalHeader {
		return nil, fmt.Errorf("unexpected header %q, want %q", strings.Join(header, ","), journalHeader)
	}

	var rows []Row
	for lineNo := 2; ; lineNo++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing date %q: %w", lineNo, record[0], err)
		}
		amount, err := decimal.NewFromString(record[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing amount %q: %w", lineNo, record[4], err)
		}

		rows = append(rows, Row{
			Date:          date,
			Description:   record[1],
			DebitAccount:  record[2],
			CreditAccount: record[3],
			Amount:        amount,
			Reference:     record[5],
		})
	}
	return rows, nil
}
