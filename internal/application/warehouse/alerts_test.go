package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
)

func newTestEvaluator(s *fakeStore, alerts *fakeStockAlertRepo, notifier Notifier) *StockAlertEvaluator {
	materials, _, _, _ := directRepos(s)
	return NewStockAlertEvaluator(materials, alerts, notifier, AlertConfig{
		DefaultMinStock: decimal.NewFromInt(10),
		LowStockRatio:   decimal.NewFromFloat(1.2),
		Interval:        time.Minute,
	}, testLogger())
}

// ──────────────────────────────────────────────────────────────────────────────
// ClassifyStock — valores de frontera
// ──────────────────────────────────────────────────────────────────────────────

func TestClassifyStock_Fronteras(t *testing.T) {
	min := decimal.NewFromInt(100)
	ratio := decimal.NewFromFloat(1.2)

	cases := []struct {
		name     string
		quantity decimal.Decimal
		want     string
	}{
		{"cero es out_of_stock", decimal.Zero, entity.AlertOutOfStock},
		{"negativo es out_of_stock", decimal.NewFromInt(-1), entity.AlertOutOfStock},
		{"igual al mínimo es critical, no low", decimal.NewFromInt(100), entity.AlertCritical},
		{"justo bajo el mínimo es critical", decimal.NewFromInt(99), entity.AlertCritical},
		{"dentro de la banda low", decimal.NewFromInt(101), entity.AlertLow},
		{"límite superior de la banda (min*1.2)", decimal.NewFromInt(120), entity.AlertLow},
		{"sobre la banda no alerta", decimal.NewFromInt(121), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStock(tc.quantity, min, ratio))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Evaluador
// ──────────────────────────────────────────────────────────────────────────────

// Un material bajo umbral genera alerta y notificación; el mínimo ausente cae
// al default configurado.
func TestEvaluateAll_CreaAlertasYNotifica(t *testing.T) {
	s := newFakeStore()
	minPapel := 50.0
	s.addMaterial("m1", "papel", 30, &minPapel) // critical contra su propio mínimo
	s.addMaterial("m2", "tinta", 8, nil)        // critical contra el default 10
	s.addMaterial("m3", "lona", 500, nil)       // sin alerta
	alerts := newFakeStockAlertRepo()
	notifier := &fakeNotifier{}
	ev := newTestEvaluator(s, alerts, notifier)

	ev.EvaluateAll(context.Background())

	require.Len(t, alerts.open, 2)
	a1, _ := alerts.GetOpenByMaterial("m1")
	require.NotNil(t, a1)
	assert.Equal(t, entity.AlertCritical, a1.Level)
	assert.True(t, a1.MinQuantity.Equal(decimal.NewFromInt(50)))
	a2, _ := alerts.GetOpenByMaterial("m2")
	require.NotNil(t, a2)
	assert.True(t, a2.MinQuantity.Equal(decimal.NewFromInt(10)), "usa el mínimo por defecto")

	assert.Len(t, notifier.payloads, 2)
}

// Pasadas repetidas no duplican: una sola alerta abierta por material, con el
// nivel refrescado en sitio.
func TestEvaluateAll_UpsertSinDuplicados(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("m1", "papel", 8, nil)
	alerts := newFakeStockAlertRepo()
	ev := newTestEvaluator(s, alerts, nil)
	ctx := context.Background()

	ev.EvaluateAll(ctx)
	ev.EvaluateAll(ctx)
	ev.EvaluateAll(ctx)
	require.Len(t, alerts.open, 1)

	// El material empeora: mismo registro, nivel nuevo.
	s.materials["m1"].Quantity = decimal.Zero
	ev.EvaluateAll(ctx)
	require.Len(t, alerts.open, 1)
	a, _ := alerts.GetOpenByMaterial("m1")
	assert.Equal(t, entity.AlertOutOfStock, a.Level)
}

// Material recuperado: su alerta abierta se resuelve sola en la siguiente pasada.
func TestEvaluateAll_ResuelveAlRecuperarse(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("m1", "papel", 5, nil)
	alerts := newFakeStockAlertRepo()
	ev := newTestEvaluator(s, alerts, nil)
	ctx := context.Background()

	ev.EvaluateAll(ctx)
	require.Len(t, alerts.open, 1)

	s.materials["m1"].Quantity = decimal.NewFromInt(200)
	ev.EvaluateAll(ctx)
	assert.Empty(t, alerts.open)
	require.Len(t, alerts.resolved, 1)
	assert.True(t, alerts.resolved[0].Resolved)
}

// Chequeo puntual tras un spend que cruza el umbral (el flujo del descuento
// automático): el material recién degradado alerta sin esperar el barrido.
func TestEvaluateMaterial_TrasCruzarUmbral(t *testing.T) {
	s := newFakeStore()
	min := 20.0
	s.addMaterial("m1", "cartulina", 100, &min)
	alerts := newFakeStockAlertRepo()
	notifier := &fakeNotifier{}
	ev := newTestEvaluator(s, alerts, notifier)
	exec := newTestExecutor(s)
	ctx := context.Background()

	// Sobre el umbral: sin alerta.
	ev.EvaluateMaterial(ctx, "m1")
	assert.Empty(t, alerts.open)

	_, err := exec.Execute(ctx, []Operation{
		Spend{MaterialID: "m1", Quantity: decimal.NewFromInt(85), Reason: "pedido grande"},
	})
	require.NoError(t, err)

	ev.EvaluateMaterial(ctx, "m1")
	a, _ := alerts.GetOpenByMaterial("m1")
	require.NotNil(t, a)
	assert.Equal(t, entity.AlertCritical, a.Level)
	assert.True(t, a.Quantity.Equal(decimal.NewFromInt(15)))
	require.Len(t, notifier.payloads, 1)
	assert.Equal(t, "cartulina", notifier.payloads[0].MaterialName)
}

// Un notificador que falla no afecta la alerta persistida.
func TestEvaluate_NotificadorCaidoNoPropaga(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("m1", "papel", 2, nil)
	alerts := newFakeStockAlertRepo()
	ev := newTestEvaluator(s, alerts, &fakeNotifier{fail: true})

	ev.EvaluateAll(context.Background())
	require.Len(t, alerts.open, 1, "la alerta se guarda aunque la entrega falle")
}

// Start/Stop del barrido de alertas.
func TestEvaluator_StartStop(t *testing.T) {
	s := newFakeStore()
	ev := newTestEvaluator(s, newFakeStockAlertRepo(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ev.Start(ctx)
	ev.Stop()
	ev.Stop()
}
