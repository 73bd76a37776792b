// Package csvimport turns a customer spreadsheet export into Customer records.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"septic_reminder_service/internal/domain/customer"
	"septic_reminder_service/internal/domain/schedule"
)

var requiredColumns = []string{"customer_name", "address", "phone"}

// ErrEmptyFile is returned for input without a header row.
var ErrEmptyFile = errors.New("CSV file is empty")

// MissingColumnsError lists required headers absent from the file.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "Missing required columns: " + strings.Join(e.Columns, ", ")
}

// RowError reports a data row without a value for a required column.
type RowError struct {
	Line   int
	Column string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: missing required field %s", e.Line, e.Column)
}

// Result is a fully parsed file, ready to be committed in one batch.
type Result struct {
	Customers []*customer.Customer
	Warnings  []string // lenient coercions applied while parsing
}

// Status is the human readable summary shown before committing.
func (r *Result) Status() string {
	return fmt.Sprintf("Ready to import %d customers", len(r.Customers))
}

// ImportedStatus is shown after the batch was committed.
func ImportedStatus(n int) string {
	return fmt.Sprintf("Successfully imported %d customers!", n)
}

// Parse reads the whole file. Any structural problem (missing header, row with
// an empty required field) fails the whole file; numeric and date fields are
// coerced to defaults instead. Customers without usable coordinates are
// returned with Lat and Lng set to zero so the caller can geocode them.
func Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := columns[h]; !dup {
			columns[h] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	result := &Result{Customers: make([]*customer.Customer, 0)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		row := rowValues{columns: columns, record: record}
		if row.blank() {
			continue
		}
		for _, col := range requiredColumns {
			if row.get(col) == "" {
				return nil, &RowError{Line: line, Column: col}
			}
		}

		result.Customers = append(result.Customers, row.toCustomer(line, &result.Warnings))
	}
	return result, nil
}

type rowValues struct {
	columns map[string]int
	record  []string
}

// get returns the first non-empty value among the given column aliases.
func (r rowValues) get(names ...string) string {
	for _, name := range names {
		idx, ok := r.columns[name]
		if !ok || idx >= len(r.record) {
			continue
		}
		if v := strings.TrimSpace(r.record[idx]); v != "" {
			return v
		}
	}
	return ""
}

func (r rowValues) blank() bool {
	for _, v := range r.record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r rowValues) toCustomer(line int, warnings *[]string) *customer.Customer {
	c := &customer.Customer{
		Name:     r.get("customer_name"),
		Address:  r.get("address"),
		Phone:    r.get("phone"),
		Email:    r.get("email"),
		TankSize: r.get("tank_size", "tanksize"),
		Notes:    r.get("notes"),
	}

	c.Lat = parseCoordinate(r.get("lat", "latitude"))
	c.Lng = parseCoordinate(r.get("lng", "longitude"))

	if raw := r.get("service_interval", "interval"); raw != "" {
		n, ok := parseLeadingInt(raw)
		if !ok || n < 1 {
			*warnings = append(*warnings, fmt.Sprintf("row %d: service interval %q replaced with %d", line, raw, customer.DefaultServiceInterval))
		} else {
			c.ServiceInterval = n
		}
	}

	if raw := r.get("last_service_date", "lastservice"); raw != "" {
		d, err := schedule.ParseDate(raw)
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("row %d: last service date %q replaced with %s", line, raw, schedule.FormatDate(customer.DefaultLastServiceDate)))
		} else {
			c.LastServiceDate = d
		}
	}

	c.ApplyDefaults()
	return c
}

// parseCoordinate returns 0 for anything that is not a number.
func parseCoordinate(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseLeadingInt accepts values like "24" or "24 months".
func parseLeadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && (unicode.IsDigit(rune(s[end])) || (end == 0 && (s[end] == '-' || s[end] == '+'))) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Template returns an example file with every recognised column.
func Template() string {
	return `customer_name,address,lat,lng,phone,email,tank_size,last_service_date,service_interval,notes
John Doe,"123 Main St, Springfield",39.7817,-89.6501,"(555) 123-4567",john@email.com,"1000 gallons",2024-01-15,24,"Access through back gate"
Jane Smith,"456 Oak Ave, Springfield",39.7850,-89.6480,"(555) 987-6543",jane@email.com,"1500 gallons",2024-03-20,36,"Preferred morning appointments"
`
}
