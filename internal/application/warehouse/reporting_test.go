package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

type stubPDF struct{ called bool }

func (p *stubPDF) GenerateConsumptionPDF(_ context.Context, _, _ time.Time, rows []repository.ConsumptionRow) ([]byte, error) {
	p.called = true
	return []byte("%PDF-stub"), nil
}

func newTestReporting(s *fakeStore, pdf PDFGenerator) *ReportingUseCase {
	materials, moves, _, _ := directRepos(s)
	return NewReportingUseCase(materials, moves, pdf, decimal.NewFromInt(10))
}

// Consumo agregado: solo cuentan los deltas negativos del período.
func TestTopConsumption_SoloConsumos(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("papel", "papel", 500, nil)
	s.addMaterial("tinta", "tinta", 100, nil)
	exec := newTestExecutor(s)
	ctx := context.Background()

	_, err := exec.Execute(ctx, []Operation{
		Spend{MaterialID: "papel", Quantity: decimal.NewFromInt(120), Reason: "pedidos"},
		Spend{MaterialID: "tinta", Quantity: decimal.NewFromInt(30), Reason: "pedidos"},
		Add{MaterialID: "papel", Quantity: decimal.NewFromInt(1000), Reason: "compra"},
	})
	require.NoError(t, err)

	uc := newTestReporting(s, nil)
	rows, err := uc.TopConsumption(time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "papel", rows[0].MaterialID, "ordenado de mayor a menor consumo")
	assert.True(t, rows[0].TotalSpent.Equal(decimal.NewFromInt(120)), "la compra no cuenta como consumo")
	assert.True(t, rows[1].TotalSpent.Equal(decimal.NewFromInt(30)))
}

// Sugerencias de recompra: solo materiales en o bajo mínimo; ideal = mínimo*1.5.
func TestSuggestedReorders(t *testing.T) {
	s := newFakeStore()
	min := 100.0
	m := s.addMaterial("papel", "papel bond", 40, &min)
	price := decimal.NewFromInt(2)
	m.UnitPrice = &price
	s.addMaterial("tinta", "tinta", 500, nil) // sobre el default 10: sin sugerencia

	uc := newTestReporting(s, nil)
	suggestions, err := uc.SuggestedReorders()
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	sug := suggestions[0]
	assert.Equal(t, "papel", sug.MaterialID)
	assert.True(t, sug.IdealStock.Equal(decimal.NewFromInt(150)))
	assert.True(t, sug.SuggestedQty.Equal(decimal.NewFromInt(110)))
	assert.True(t, sug.EstimatedCost.Equal(decimal.NewFromInt(220)))
}

func TestLedgerByMaterial_MaterialInexistente(t *testing.T) {
	uc := newTestReporting(newFakeStore(), nil)
	_, err := uc.LedgerByMaterial("nope", nil, nil, 20, 0)
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)
}

func TestConsumptionReportPDF_DelegaAlGenerador(t *testing.T) {
	s := newFakeStore()
	pdf := &stubPDF{}
	uc := newTestReporting(s, pdf)

	out, err := uc.ConsumptionReportPDF(context.Background(), time.Now().Add(-time.Hour), time.Now(), 10)
	require.NoError(t, err)
	assert.True(t, pdf.called)
	assert.NotEmpty(t, out)
}
