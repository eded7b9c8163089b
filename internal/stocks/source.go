package stocks

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

var ErrMalformedFile = errors.New("malformed stocks file")

type Stock struct {
	Symbol string
	Name   string
}

// LoadFile reads the exchange listing dump found at path.
func LoadFile(path string) ([]Stock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stocks file: %w", err)
	}
	return Parse(data)
}

// Parse extracts data.table.rows from a listing dump, keeping file order.
func Parse(data []byte) ([]Stock, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedFile)
	}

	rows := gjson.GetBytes(data, "data.table.rows")
	if !rows.IsArray() {
		return nil, fmt.Errorf("%w: data.table.rows is not a list", ErrMalformedFile)
	}

	var (
		list   []Stock
		rowErr error
	)
	rows.ForEach(func(key, row gjson.Result) bool {
		symbol, name := row.Get("symbol"), row.Get("name")
		if symbol.Type != gjson.String || name.Type != gjson.String {
			rowErr = fmt.Errorf("%w: row %d needs string symbol and name", ErrMalformedFile, key.Int())
			return false
		}
		list = append(list, Stock{Symbol: symbol.String(), Name: name.String()})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return list, nil
}

// Window returns list[offset:offset+limit], clamped to the list bounds.
// A non-positive limit means "until the end".
func Window(list []Stock, offset, limit int) []Stock {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
