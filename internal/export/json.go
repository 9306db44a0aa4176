package export

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
)

// WriteJSON writes an array with one object per person, keys in column order.
func WriteJSON(w io.Writer, people []person.Person, columns []Column) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("[")
	for i, p := range people {
		if i > 0 {
			bw.WriteString(",")
		}
		bw.WriteString("\n  {")
		for j, value := range Row(p, columns) {
			if j > 0 {
				bw.WriteString(",")
			}
			key, err := json.Marshal(columns[j].Key)
			if err != nil {
				return err
			}
			encoded, err := json.Marshal(value)
			if err != nil {
				return err
			}
			bw.WriteString("\n    ")
			bw.Write(key)
			bw.WriteString(": ")
			bw.Write(encoded)
		}
		bw.WriteString("\n  }")
	}
	if len(people) > 0 {
		bw.WriteString("\n")
	}
	bw.WriteString("]\n")
	return bw.Flush()
}
