package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"medeasy/admin/internal/client"
	"medeasy/admin/internal/page"
)

// Result summarizes one CSV import.
type Result struct {
	Created int
	Skipped int
	Errors  []string
}

// LoadCSV creates one record per CSV row through the page's create path.
// The header row names form fields; unknown columns are ignored. Rows that
// fail validation are skipped without reaching the API.
func LoadCSV(ctx context.Context, p page.Controller, cred client.Credential, r io.Reader) (Result, error) {
	var res Result
	if !p.CanCreate() {
		return res, page.ErrUnsupported
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return res, fmt.Errorf("read csv header: %w", err)
	}
	columns := mapColumns(header, p.Fields())
	if len(columns) == 0 {
		return res, errors.New("csv header matches no form fields")
	}

	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		values := make(map[string]string, len(columns))
		blank := true
		for idx, field := range columns {
			if idx < len(record) {
				values[field] = strings.TrimSpace(record[idx])
				if values[field] != "" {
					blank = false
				}
			}
		}
		if blank {
			continue
		}

		if err := p.Create(ctx, cred, values); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %s", line, client.Message(err, err.Error())))
			continue
		}
		res.Created++
	}

	log.Printf("%s: imported %d rows, skipped %d", p.Name(), res.Created, res.Skipped)
	return res, nil
}

// mapColumns matches header cells to field names or labels, case-insensitively.
func mapColumns(header []string, fields []page.Field) map[int]string {
	columns := make(map[int]string)
	for idx, cell := range header {
		cell = strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		for _, f := range fields {
			if strings.EqualFold(cell, f.Name) || strings.EqualFold(cell, f.Label) {
				columns[idx] = f.Name
				break
			}
		}
	}
	return columns
}
