package reports

import (
	"encoding/csv"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dalemusser/greenlink/internal/app/system/reconcile"
	"github.com/dalemusser/greenlink/internal/domain/models"
)

// Header is the first line of the export.
var Header = []string{"House ID", "Resident", "Address", "Status", "Payment"}

// Row is one household in the export, with reconciled statuses.
type Row struct {
	HouseID  string
	Resident string
	Address  string
	Status   string
	Payment  string
}

// RowFor projects h onto today.
func RowFor(h models.Household, today civil.Date) Row {
	c, p := reconcile.DisplayStatus(h, today)
	return Row{
		HouseID:  h.ID.Hex(),
		Resident: h.ResidentName,
		Address:  h.Address,
		Status:   c,
		Payment:  p,
	}
}

// WriteCSV writes Header and one line per row. Cells that a spreadsheet
// would treat as a formula are prefixed with a quote.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.HouseID, cell(r.Resident), cell(r.Address), r.Status, r.Payment}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
