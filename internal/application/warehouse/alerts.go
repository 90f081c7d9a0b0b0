package warehouse

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
	"github.com/tu-usuario/printshop-pro/pkg/logger"
)

// AlertConfig parámetros del evaluador de alertas.
type AlertConfig struct {
	DefaultMinStock decimal.Decimal // umbral cuando el material no define MinQuantity
	LowStockRatio   decimal.Decimal // multiplicador del umbral para el nivel low
	Interval        time.Duration   // período del barrido
}

// ClassifyStock clasifica una cantidad contra su umbral mínimo.
// Devuelve cadena vacía cuando no corresponde alerta.
//
//	q <= 0                     → out_of_stock
//	0 < q <= min               → critical
//	min < q <= min*ratio       → low
func ClassifyStock(quantity, minLevel, ratio decimal.Decimal) string {
	switch {
	case quantity.LessThanOrEqual(decimal.Zero):
		return entity.AlertOutOfStock
	case quantity.LessThanOrEqual(minLevel):
		return entity.AlertCritical
	case quantity.LessThanOrEqual(minLevel.Mul(ratio)):
		return entity.AlertLow
	default:
		return ""
	}
}

// StockAlertEvaluator clasifica el stock de cada material contra su umbral,
// mantiene una única alerta abierta por material (upsert) y reenvía cada
// disparo al Notifier. Corre una vez al arrancar, luego en intervalo fijo, y
// puede invocarse bajo demanda para un material tras un spend/add. Todo fallo
// de persistencia de alertas o de notificación se registra y se traga: la
// corrección del stock nunca depende de esta ruta.
type StockAlertEvaluator struct {
	materials repository.MaterialRepository
	alerts    repository.StockAlertRepository
	notifier  Notifier
	cfg       AlertConfig
	log       *logger.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewStockAlertEvaluator construye el evaluador con defaults razonables
// (mínimo 10, ratio 1.2, intervalo 30m) para los campos en cero.
func NewStockAlertEvaluator(
	materials repository.MaterialRepository,
	alerts repository.StockAlertRepository,
	notifier Notifier,
	cfg AlertConfig,
	log *logger.Logger,
) *StockAlertEvaluator {
	if cfg.DefaultMinStock.LessThanOrEqual(decimal.Zero) {
		cfg.DefaultMinStock = decimal.NewFromInt(10)
	}
	if cfg.LowStockRatio.LessThanOrEqual(decimal.Zero) {
		cfg.LowStockRatio = decimal.NewFromFloat(1.2)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	return &StockAlertEvaluator{
		materials: materials,
		alerts:    alerts,
		notifier:  notifier,
		cfg:       cfg,
		log:       log,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// EvaluateAll recorre todos los materiales y actualiza sus alertas.
// Idempotente: puede coincidir con un chequeo bajo demanda sin duplicar filas.
func (ev *StockAlertEvaluator) EvaluateAll(ctx context.Context) {
	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		page, err := ev.materials.List(pageSize, offset)
		if err != nil {
			ev.log.Error().Err(err).Msg("evaluación de alertas: listar materiales")
			return
		}
		for _, m := range page {
			ev.evaluate(ctx, m)
		}
		if len(page) < pageSize {
			return
		}
	}
}

// EvaluateMaterial evalúa un solo material bajo demanda (tras spend/add).
func (ev *StockAlertEvaluator) EvaluateMaterial(ctx context.Context, materialID string) {
	m, err := ev.materials.GetByID(materialID)
	if err != nil || m == nil {
		if err != nil {
			ev.log.Error().Err(err).Str("material_id", materialID).Msg("evaluación de alerta puntual")
		}
		return
	}
	ev.evaluate(ctx, m)
}

func (ev *StockAlertEvaluator) evaluate(ctx context.Context, m *entity.Material) {
	minLevel := ev.cfg.DefaultMinStock
	if m.MinQuantity != nil {
		minLevel = *m.MinQuantity
	}
	level := ClassifyStock(m.Quantity, minLevel, ev.cfg.LowStockRatio)
	if level == "" {
		// Material recuperado: cerrar la alerta abierta si existe.
		if err := ev.alerts.ResolveByMaterial(m.ID); err != nil {
			ev.log.Error().Err(err).Str("material_id", m.ID).Msg("resolver alerta")
		}
		return
	}
	now := time.Now()
	alert := &entity.StockAlert{
		ID:           uuid.New().String(),
		MaterialID:   m.ID,
		MaterialName: m.Name,
		Quantity:     m.Quantity,
		MinQuantity:  minLevel,
		Level:        level,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := ev.alerts.UpsertOpen(alert); err != nil {
		ev.log.Error().Err(err).Str("material_id", m.ID).Msg("guardar alerta de stock")
		return
	}
	ev.log.Warn().
		Str("material", m.Name).
		Str("level", level).
		Str("quantity", m.Quantity.String()).
		Str("min", minLevel.String()).
		Msg("alerta de stock")
	if ev.notifier == nil {
		return
	}
	// Fire-and-forget: un fallo de entrega jamás se propaga al caller.
	if err := ev.notifier.NotifyLowStock(ctx, AlertPayload{
		MaterialID:      m.ID,
		MaterialName:    m.Name,
		Quantity:        m.Quantity,
		MinQuantity:     minLevel,
		Level:           level,
		Unit:            m.Unit,
		CategoryName:    m.CategoryName,
		SupplierName:    m.SupplierName,
		SupplierContact: m.SupplierContact,
	}); err != nil {
		ev.log.Error().Err(err).Str("material", m.Name).Msg("notificación de alerta")
	}
}

// Start ejecuta una pasada inmediata y luego el barrido periódico.
func (ev *StockAlertEvaluator) Start(ctx context.Context) {
	ev.started = true
	go func() {
		defer close(ev.done)
		ev.EvaluateAll(ctx)
		ticker := time.NewTicker(ev.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ev.EvaluateAll(ctx)
			case <-ev.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop detiene el barrido y espera el cierre del loop. Seguro de llamar
// más de una vez o sin Start previo.
func (ev *StockAlertEvaluator) Stop() {
	ev.stopOnce.Do(func() { close(ev.stop) })
	if ev.started {
		<-ev.done
	}
}
