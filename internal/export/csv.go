package export

import (
	"encoding/csv"
	"io"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
)

// WriteCSV writes a header of labels followed by one record per person.
// Fields holding a comma, a quote or a line break are quoted, inner quotes
// doubled.
func WriteCSV(w io.Writer, people []person.Person, columns []Column) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(labels(columns)); err != nil {
		return err
	}
	for _, p := range people {
		if err := cw.Write(Row(p, columns)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
