package export

import (
	"fmt"
	"io"
	"time"

	"github.com/wabdevconsult/batuta/domain"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column describes one spreadsheet column of T
type Column[T any] struct {
	Header string
	Value  func(T) any
}

// Workbook builds a single-sheet workbook with a bold header row
func Workbook[T any](sheet string, columns []Column[T], rows []T) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		f.Close()
		return nil, err
	}

	for r, row := range rows {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = c.Value(row)
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	return f, nil
}

// Write streams the workbook for rows to w
func Write[T any](w io.Writer, sheet string, columns []Column[T], rows []T) error {
	f, err := Workbook(sheet, columns, rows)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// Filename names an export of resource taken at now
func Filename(resource domain.Resource, now time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", resource, now.Format("20060102-1504"))
}

func date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func userName(ref domain.Ref[domain.User]) string {
	if ref.Expanded != nil {
		return ref.Expanded.DisplayName()
	}
	return ref.ID
}

func clientName(ref domain.Ref[domain.Client]) string {
	if ref.Expanded != nil {
		return ref.Expanded.Name()
	}
	return ref.ID
}

var InstallationColumns = []Column[domain.Installation]{
	{"Référence", func(i domain.Installation) any { return i.Reference }},
	{"Titre", func(i domain.Installation) any { return i.Title }},
	{"Statut", func(i domain.Installation) any { return string(i.Status) }},
	{"Client", func(i domain.Installation) any { return clientName(i.Client) }},
	{"Technicien", func(i domain.Installation) any { return userName(i.Technician) }},
	{"Adresse", func(i domain.Installation) any { return i.Address.String() }},
	{"Date prévue", func(i domain.Installation) any { return date(i.ScheduledDate) }},
}

var EquipmentColumns = []Column[domain.Equipment]{
	{"Nom", func(e domain.Equipment) any { return e.Name }},
	{"Type", func(e domain.Equipment) any { return e.Type }},
	{"Marque", func(e domain.Equipment) any { return e.Brand }},
	{"Modèle", func(e domain.Equipment) any { return e.Model }},
	{"N° de série", func(e domain.Equipment) any { return e.SerialNumber }},
	{"Statut", func(e domain.Equipment) any { return string(e.Status) }},
	{"Fin de garantie", func(e domain.Equipment) any { return date(e.WarrantyEnd) }},
}

var InterventionColumns = []Column[domain.Intervention]{
	{"Titre", func(i domain.Intervention) any { return i.Title }},
	{"Type", func(i domain.Intervention) any { return i.Type }},
	{"Priorité", func(i domain.Intervention) any { return string(i.Priority) }},
	{"Statut", func(i domain.Intervention) any { return string(i.Status) }},
	{"Client", func(i domain.Intervention) any { return clientName(i.Client) }},
	{"Technicien", func(i domain.Intervention) any { return userName(i.Technician) }},
	{"Date prévue", func(i domain.Intervention) any { return date(i.ScheduledDate) }},
}

var ClientColumns = []Column[domain.Client]{
	{"Nom", func(c domain.Client) any { return c.Name() }},
	{"Email", func(c domain.Client) any { return c.Email }},
	{"Téléphone", func(c domain.Client) any { return c.Phone }},
	{"Type", func(c domain.Client) any { return c.Type }},
	{"Statut", func(c domain.Client) any { return string(c.Status) }},
	{"Adresse", func(c domain.Client) any { return c.Address.String() }},
}

var QuoteRequestColumns = []Column[domain.QuoteRequest]{
	{"Contact", func(q domain.QuoteRequest) any { return q.ContactName }},
	{"Email", func(q domain.QuoteRequest) any { return q.ContactEmail }},
	{"Type d'installation", func(q domain.QuoteRequest) any { return q.InstallationType }},
	{"Budget", func(q domain.QuoteRequest) any {
		if q.Budget == nil {
			return ""
		}
		return *q.Budget
	}},
	{"Statut", func(q domain.QuoteRequest) any { return string(q.Status) }},
	{"Reçue le", func(q domain.QuoteRequest) any { return date(&q.CreatedAt) }},
}
