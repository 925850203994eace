package tui

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Row is a schemaless JSON object, the item type used when browsing an
// arbitrary backend.
type Row = map[string]any

// defaultColumnWidth is used for inferred columns and specs without a width.
const defaultColumnWidth = 20

// maxInferredColumns caps the number of columns derived from data.
const maxInferredColumns = 6

// ColumnSpec describes a Row column by field path.
type ColumnSpec struct {
	Title    string
	Field    string
	Width    int
	Sortable bool
}

// RowColumns builds table columns for Row values. Field may be a dotted
// path into nested objects.
func RowColumns(specs []ColumnSpec) []Column[Row] {
	titler := cases.Title(language.English)
	cols := make([]Column[Row], len(specs))
	for i, spec := range specs {
		title := spec.Title
		if title == "" {
			title = titler.String(strings.ReplaceAll(spec.Field, "_", " "))
		}
		width := spec.Width
		if width <= 0 {
			width = defaultColumnWidth
		}
		sortField := ""
		if spec.Sortable {
			sortField = spec.Field
		}
		field := spec.Field
		cols[i] = Column[Row]{
			Title:     title,
			SortField: sortField,
			Width:     width,
			Value:     func(r Row) string { return RowValue(r, field) },
		}
	}
	return cols
}

// InferColumns derives sortable column specs from the keys of the first
// row: "id" first, then the remaining scalar keys in name order.
func InferColumns(rows []Row) []ColumnSpec {
	if len(rows) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rows[0]))
	for k, v := range rows[0] {
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case a == "id":
			return -1
		case b == "id":
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	if len(keys) > maxInferredColumns {
		keys = keys[:maxInferredColumns]
	}

	specs := make([]ColumnSpec, len(keys))
	for i, k := range keys {
		specs[i] = ColumnSpec{Field: k, Width: defaultColumnWidth, Sortable: true}
	}
	return specs
}

// RowValue renders the value at a dotted field path.
func RowValue(r Row, field string) string {
	var cur any = r
	for part := range strings.SplitSeq(field, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[part]
	}
	return formatValue(cur)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
