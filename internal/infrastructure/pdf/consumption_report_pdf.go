// Package pdf implementa la generación del reporte de consumo de materiales
// en PDF (Maroto v2).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + período del reporte                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Material | Unidad | Consumo del período          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: fecha de generación                                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/tu-usuario/printshop-pro/internal/application/warehouse"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

// Verificar en tiempo de compilación que implementa warehouse.PDFGenerator.
var _ warehouse.PDFGenerator = (*ConsumptionReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ConsumptionReportGenerator genera el reporte de consumo usando Maroto v2.
type ConsumptionReportGenerator struct{}

// NewConsumptionReportGenerator construye el generador.
func NewConsumptionReportGenerator() *ConsumptionReportGenerator { return &ConsumptionReportGenerator{} }

// GenerateConsumptionPDF genera el PDF y devuelve sus bytes.
func (g *ConsumptionReportGenerator) GenerateConsumptionPDF(
	_ context.Context,
	from, to time.Time,
	rows []repository.ConsumptionRow,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de consumo de materiales", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(from, to))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for i, r := range rows {
		m.AddRows(tableDetailRow(i+1, r))
	}
	if len(rows) == 0 {
		m.AddRows(row.New(8).Add(
			col.New(12).Add(text.New("Sin consumo registrado en el período.", props.Text{
				Size: 9, Style: fontstyle.Italic, Color: colorGray,
			})),
		))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generar PDF de consumo: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(from, to time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("Reporte de consumo de materiales", props.Text{
				Size: 14, Style: fontstyle.Bold, Color: colorPrimary,
			}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("Período: %s — %s",
				from.Format("2006-01-02"), to.Format("2006-01-02")), props.Text{
				Size: 9, Align: align.Right, Top: 3,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	header := props.Text{Size: 9, Style: fontstyle.Bold, Color: colorWhite, Align: align.Center, Top: 1}
	bg := colorPrimary
	return row.New(7).Add(
		col.New(1).Add(text.New("#", header)).WithStyle(&props.Cell{BackgroundColor: bg}),
		col.New(6).Add(text.New("Material", header)).WithStyle(&props.Cell{BackgroundColor: bg}),
		col.New(2).Add(text.New("Unidad", header)).WithStyle(&props.Cell{BackgroundColor: bg}),
		col.New(3).Add(text.New("Consumo", header)).WithStyle(&props.Cell{BackgroundColor: bg}),
	)
}

func tableDetailRow(n int, r repository.ConsumptionRow) core.Row {
	cell := props.Text{Size: 9, Top: 1}
	right := props.Text{Size: 9, Top: 1, Align: align.Right}
	return row.New(6).Add(
		col.New(1).Add(text.New(fmt.Sprintf("%d", n), cell)),
		col.New(6).Add(text.New(r.MaterialName, cell)),
		col.New(2).Add(text.New(r.Unit, cell)),
		col.New(3).Add(text.New(r.TotalSpent.String(), right)),
	)
}

func footerRow() core.Row {
	return row.New(6).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Generado el %s", time.Now().Format("2006-01-02 15:04")), props.Text{
				Size: 8, Color: colorGray, Align: align.Right,
			}),
		),
	)
}
