package warehouse

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeduction(s *fakeStore, comps *fakeCompositionRepo, ev *StockAlertEvaluator) *AutoDeductionUseCase {
	materials, moves, _, _ := directRepos(s)
	exec := newTestExecutor(s)
	return NewAutoDeductionUseCase(exec, materials, comps, moves, ev, testLogger())
}

// Pedido de 100 volantes: cada volante lleva 0.5 de papel y 0.1 de tinta.
// Se descuenta 50 de papel y 10 de tinta en una sola transacción.
func TestDeductForOrder_DescuentaSegunComposicion(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("papel", "papel volante", 200, nil)
	s.addMaterial("tinta", "tinta cmyk", 50, nil)
	comps := newFakeCompositionRepo()
	comps.add("volantes", "volante 10x15", "papel", 0.5)
	comps.add("volantes", "volante 10x15", "tinta", 0.1)
	uc := newTestDeduction(s, comps, nil)

	result, err := uc.DeductForOrder(context.Background(), "ord-1", []OrderItem{
		{Category: "volantes", Description: "volante 10x15", Quantity: decimal.NewFromInt(100)},
	}, "u1")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Empty(t, result.Shortfall)

	assert.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(150)))
	assert.True(t, s.materials["tinta"].Quantity.Equal(decimal.NewFromInt(40)))
	require.Len(t, result.Deducted, 2)

	// Todos los movimientos quedan atados al pedido y a la misma transacción.
	require.Len(t, s.moves, 2)
	txID := s.moves[0].TransactionID
	for _, mv := range s.moves {
		require.NotNil(t, mv.OrderID)
		assert.Equal(t, "ord-1", *mv.OrderID)
		assert.Equal(t, txID, mv.TransactionID)
	}
}

// El mismo material en varias líneas se agrega en una sola cifra antes del
// chequeo: 3 líneas de 40 sobre un stock de 100 fallan juntas aunque cada una
// pase por separado.
func TestDeductForOrder_AgregaPorMaterialAntesDelChequeo(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("papel", "papel bond", 100, nil)
	comps := newFakeCompositionRepo()
	comps.add("afiches", "afiche A2", "papel", 1)
	uc := newTestDeduction(s, comps, nil)

	result, err := uc.DeductForOrder(context.Background(), "ord-2", []OrderItem{
		{Category: "afiches", Description: "afiche A2", Quantity: decimal.NewFromInt(40)},
		{Category: "afiches", Description: "afiche A2", Quantity: decimal.NewFromInt(40)},
		{Category: "afiches", Description: "afiche A2", Quantity: decimal.NewFromInt(40)},
	}, "u1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Shortfall, 1)
	assert.True(t, result.Shortfall[0].Requested.Equal(decimal.NewFromInt(120)))
	assert.True(t, result.Shortfall[0].Available.Equal(decimal.NewFromInt(100)))
	// Nada se descontó.
	assert.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, s.moves)
}

// El pre-chequeo recolecta TODOS los faltantes, no solo el primero, y no
// descuenta nada (ni siquiera los materiales que sí alcanzaban).
func TestDeductForOrder_ReportaTodosLosFaltantes(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("papel", "papel couché", 10, nil)
	s.addMaterial("tinta", "tinta negra", 1, nil)
	s.addMaterial("laminado", "laminado mate", 500, nil)
	comps := newFakeCompositionRepo()
	comps.add("tarjetas", "tarjeta premium", "papel", 2)
	comps.add("tarjetas", "tarjeta premium", "tinta", 0.5)
	comps.add("tarjetas", "tarjeta premium", "laminado", 1)
	uc := newTestDeduction(s, comps, nil)

	result, err := uc.DeductForOrder(context.Background(), "ord-3", []OrderItem{
		{Category: "tarjetas", Description: "tarjeta premium", Quantity: decimal.NewFromInt(100)},
	}, "u1")
	require.NoError(t, err, "los faltantes de stock no son un error crudo")
	assert.False(t, result.Success)
	require.Len(t, result.Shortfall, 2, "papel y tinta faltan, laminado alcanza")
	assert.True(t, s.materials["laminado"].Quantity.Equal(decimal.NewFromInt(500)),
		"el material suficiente tampoco se toca")
}

// Líneas sin composición conocida generan warning y se saltan.
func TestDeductForOrder_LineaSinComposicionEsWarning(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("papel", "papel", 100, nil)
	comps := newFakeCompositionRepo()
	comps.add("volantes", "volante", "papel", 1)
	uc := newTestDeduction(s, comps, nil)

	result, err := uc.DeductForOrder(context.Background(), "ord-4", []OrderItem{
		{Category: "volantes", Description: "volante", Quantity: decimal.NewFromInt(10)},
		{Category: "otros", Description: "producto artesanal", Quantity: decimal.NewFromInt(3)},
	}, "u1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Warnings, 1)
	assert.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(90)))
}

// Un pedido cuyas líneas no mapean a nada es éxito vacío.
func TestDeductForOrder_SinMaterialesEsExitoVacio(t *testing.T) {
	uc := newTestDeduction(newFakeStore(), newFakeCompositionRepo(), nil)
	result, err := uc.DeductForOrder(context.Background(), "ord-5", []OrderItem{
		{Category: "x", Description: "y", Quantity: decimal.NewFromInt(1)},
	}, "u1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Deducted)
}

// Editar la cantidad de una línea mueve solo el delta: subir de 10 a 15
// descuenta 5; bajar de 15 a 8 devuelve 7.
func TestUpdateOrderItem_SoloElDelta(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("papel", "papel", 100, nil)
	comps := newFakeCompositionRepo()
	comps.add("volantes", "volante", "papel", 1)
	uc := newTestDeduction(s, comps, nil)
	ctx := context.Background()

	_, err := uc.DeductForOrder(ctx, "ord-6", []OrderItem{
		{Category: "volantes", Description: "volante", Quantity: decimal.NewFromInt(10)},
	}, "u1")
	require.NoError(t, err)
	require.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(90)))

	item := OrderItem{Category: "volantes", Description: "volante", Quantity: decimal.NewFromInt(15)}
	result, err := uc.UpdateOrderItem(ctx, "ord-6", item, decimal.NewFromInt(10), "u1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(85)))

	item.Quantity = decimal.NewFromInt(8)
	result, err = uc.UpdateOrderItem(ctx, "ord-6", item, decimal.NewFromInt(15), "u1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(92)))

	// Sin cambio de cantidad: no-op.
	result, err = uc.UpdateOrderItem(ctx, "ord-6", item, decimal.NewFromInt(8), "u1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(92)))
}

// Eliminar una línea devuelve todo lo consumido por ella.
func TestRemoveOrderItem_DevuelveLoConsumido(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("papel", "papel", 100, nil)
	comps := newFakeCompositionRepo()
	comps.add("volantes", "volante", "papel", 2)
	uc := newTestDeduction(s, comps, nil)
	ctx := context.Background()

	_, err := uc.DeductForOrder(ctx, "ord-7", []OrderItem{
		{Category: "volantes", Description: "volante", Quantity: decimal.NewFromInt(20)},
	}, "u1")
	require.NoError(t, err)
	require.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(60)))

	result, err := uc.RemoveOrderItem(ctx, "ord-7",
		OrderItem{Category: "volantes", Description: "volante", Quantity: decimal.NewFromInt(20)}, "u1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(100)))
}

// Cancelar revierte el efecto neto del pedido una sola vez: la segunda
// cancelación ve efecto neto cero y no toca stock.
func TestCancelDeduction_Idempotente(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("papel", "papel", 100, nil)
	s.addMaterial("tinta", "tinta", 50, nil)
	comps := newFakeCompositionRepo()
	comps.add("volantes", "volante", "papel", 1)
	comps.add("volantes", "volante", "tinta", 0.5)
	uc := newTestDeduction(s, comps, nil)
	ctx := context.Background()

	_, err := uc.DeductForOrder(ctx, "ord-8", []OrderItem{
		{Category: "volantes", Description: "volante", Quantity: decimal.NewFromInt(30)},
	}, "u1")
	require.NoError(t, err)
	require.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(70)))
	require.True(t, s.materials["tinta"].Quantity.Equal(decimal.NewFromInt(35)))

	require.NoError(t, uc.CancelDeduction(ctx, "ord-8", "u1"))
	assert.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.materials["tinta"].Quantity.Equal(decimal.NewFromInt(50)))

	// Segunda cancelación: éxito sin cambios.
	require.NoError(t, uc.CancelDeduction(ctx, "ord-8", "u1"))
	assert.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.materials["tinta"].Quantity.Equal(decimal.NewFromInt(50)))
}

// La cancelación considera el efecto NETO: si una línea ya devolvió parte, solo
// se revierte lo que sigue descontado.
func TestCancelDeduction_EfectoNeto(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("papel", "papel", 100, nil)
	comps := newFakeCompositionRepo()
	comps.add("volantes", "volante", "papel", 1)
	uc := newTestDeduction(s, comps, nil)
	ctx := context.Background()

	_, err := uc.DeductForOrder(ctx, "ord-9", []OrderItem{
		{Category: "volantes", Description: "volante", Quantity: decimal.NewFromInt(30)},
	}, "u1")
	require.NoError(t, err)
	_, err = uc.UpdateOrderItem(ctx, "ord-9",
		OrderItem{Category: "volantes", Description: "volante", Quantity: decimal.NewFromInt(20)},
		decimal.NewFromInt(30), "u1")
	require.NoError(t, err)
	require.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(80)))

	require.NoError(t, uc.CancelDeduction(ctx, "ord-9", "u1"))
	assert.True(t, s.materials["papel"].Quantity.Equal(decimal.NewFromInt(100)))
}

// El historial del pedido devuelve sus movimientos del libro.
func TestDeductionHistory(t *testing.T) {
	s := newFakeStore()
	s.addMaterial("papel", "papel", 100, nil)
	comps := newFakeCompositionRepo()
	comps.add("volantes", "volante", "papel", 1)
	uc := newTestDeduction(s, comps, nil)
	ctx := context.Background()

	_, err := uc.DeductForOrder(ctx, "ord-10", []OrderItem{
		{Category: "volantes", Description: "volante", Quantity: decimal.NewFromInt(5)},
	}, "u1")
	require.NoError(t, err)

	moves, err := uc.DeductionHistory("ord-10")
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.True(t, moves[0].Delta.Equal(decimal.NewFromInt(-5)))
}

// Tras el descuento, el evaluador puntual dispara la alerta del material que
// cruzó su umbral.
func TestDeductForOrder_DisparaAlertaPuntual(t *testing.T) {
	s := newFakeStore()
	min := 50.0
	s.addMaterial("papel", "papel especial", 60, &min)
	comps := newFakeCompositionRepo()
	comps.add("volantes", "volante", "papel", 1)
	alerts := newFakeStockAlertRepo()
	ev := newTestEvaluator(s, alerts, nil)
	uc := newTestDeduction(s, comps, ev)

	result, err := uc.DeductForOrder(context.Background(), "ord-11", []OrderItem{
		{Category: "volantes", Description: "volante", Quantity: decimal.NewFromInt(20)},
	}, "u1")
	require.NoError(t, err)
	require.True(t, result.Success)

	a, _ := alerts.GetOpenByMaterial("papel")
	require.NotNil(t, a, "el cruce de umbral alerta sin esperar el barrido")
	assert.True(t, a.Quantity.Equal(decimal.NewFromInt(40)))
}
