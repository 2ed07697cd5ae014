package export

import "errors"

var errNoHeaders = errors.New("dataset requires at least one header")

// Dataset is tabular export content; each row is keyed by header name.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// records flattens the dataset into header-ordered rows, header row first.
// Missing keys render as empty cells.
func (d Dataset) records() ([][]string, error) {
	if len(d.Headers) == 0 {
		return nil, errNoHeaders
	}
	out := make([][]string, 0, len(d.Rows)+1)
	out = append(out, d.Headers)
	for _, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			record[i] = row[header]
		}
		out = append(out, record)
	}
	return out, nil
}
