package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ProductRow una línea del archivo de productos: filial (email), nombre, descripción, cantidad.
type ProductRow struct {
	BranchEmail string
	Name        string
	Description string
	Amount      int
}

// ReadProductsCSV lee productos separados por ';' con cabecera. Las planillas exportadas por
// Excel suelen venir en ISO-8859-1: latin1 decodifica la entrada a UTF-8 antes de parsear.
func ReadProductsCSV(r io.Reader, latin1 bool) ([]ProductRow, error) {
	if latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	if len(header) < 4 {
		return nil, fmt.Errorf("cabecera con %d columnas, se esperaban 4 (filial;nome;descricao;quantidade)", len(header))
	}

	var rows []ProductRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(rec) < 4 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		amount, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil || amount < 0 {
			return nil, fmt.Errorf("línea %d: quantidade inválida %q", line, rec[3])
		}
		rows = append(rows, ProductRow{
			BranchEmail: strings.ToLower(strings.TrimSpace(rec[0])),
			Name:        strings.TrimSpace(rec[1]),
			Description: strings.TrimSpace(rec[2]),
			Amount:      amount,
		})
	}
	return rows, nil
}
