// Package output serializes conversion results to JSON.
package output

import (
	"encoding/json"

	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
)

// ToJSON serializes a full conversion result.
func ToJSON(res *models.ConversionResult, pretty bool) ([]byte, error) {
	return marshal(res, pretty)
}

// RowsToJSON serializes one sheet's rows.
func RowsToJSON(rows []models.Row, pretty bool) ([]byte, error) {
	if rows == nil {
		rows = []models.Row{}
	}
	return marshal(rows, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
