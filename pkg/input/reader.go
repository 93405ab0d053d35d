// Package input reads batch consultation lists from CSV or plain-text files.
package input

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/dfcarvalho/miolo/pkg/normalizers"
)

// PartnerQuery is one row of a batch consultation list.
type PartnerQuery struct {
	Identifier string
	Name       string
}

// identifierHeaders and nameHeaders are the column names recognized when the
// first row looks like a header. Matched after accent stripping and
// lowercasing, so "CPF do Sócio" matches "cpf".
var identifierHeaders = []string{"cpf", "identificador", "documento", "identifier"}
var nameHeaders = []string{"nome", "name", "socio", "razao social"}

// ReadPartnerQueries parses a consultation list. Accepts comma or semicolon
// separated rows of identifier[,name], with or without a header row.
func ReadPartnerQueries(r io.Reader) ([]PartnerQuery, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	idCol, nameCol, hasHeader := detectColumns(records[0])
	if hasHeader {
		records = records[1:]
	}

	queries := make([]PartnerQuery, 0, len(records))
	for _, rec := range records {
		if idCol >= len(rec) {
			continue
		}
		q := PartnerQuery{Identifier: strings.TrimSpace(rec[idCol])}
		if nameCol >= 0 && nameCol < len(rec) {
			q.Name = strings.TrimSpace(rec[nameCol])
		}
		if q.Identifier == "" {
			continue
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// ReadCompanyIdentifiers parses a company list: one identifier per row, or
// the first column of a delimited file.
func ReadCompanyIdentifiers(r io.Reader) ([]string, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	identifiers := make([]string, 0, len(records))
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		value := strings.TrimSpace(rec[0])
		if value == "" {
			continue
		}
		// A digit-free first row is a header
		if i == 0 && normalizers.DigitsOnly(value) == "" {
			continue
		}
		identifiers = append(identifiers, value)
	}
	return identifiers, nil
}

// ReadPartnerQueriesFile is ReadPartnerQueries over a file path.
func ReadPartnerQueriesFile(path string) ([]PartnerQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPartnerQueries(f)
}

// ReadCompanyIdentifiersFile is ReadCompanyIdentifiers over a file path.
func ReadCompanyIdentifiersFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCompanyIdentifiers(f)
}

// readRecords sniffs the delimiter from the first line and parses the whole
// input as CSV. Registry exports commonly use semicolons.
func readRecords(r io.Reader) ([][]string, error) {
	buffered := bufio.NewReader(r)

	first, err := buffered.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}

	delimiter := ','
	if line, _, ok := strings.Cut(string(first), "\n"); ok || len(first) > 0 {
		if strings.Contains(line, ";") {
			delimiter = ';'
		}
	}

	reader := csv.NewReader(buffered)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	return reader.ReadAll()
}

// detectColumns inspects the first record for known header names. Returns
// the identifier column, the name column (-1 when absent), and whether the
// record is a header row.
func detectColumns(first []string) (idCol, nameCol int, hasHeader bool) {
	idCol, nameCol = 0, -1
	if len(first) > 1 {
		nameCol = 1
	}

	for i, field := range first {
		normalized := strings.ToLower(normalizers.StripAccents(strings.TrimSpace(field)))
		for _, h := range identifierHeaders {
			if strings.Contains(normalized, h) {
				idCol = i
				hasHeader = true
			}
		}
		for _, h := range nameHeaders {
			if strings.Contains(normalized, h) {
				nameCol = i
				hasHeader = true
			}
		}
	}
	return idCol, nameCol, hasHeader
}
