package warehouse

// Fakes en memoria de los cuatro almacenes del motor, más un TxRunner que
// simula transacciones por copia: la función corre sobre un clon del estado y
// solo si termina sin error el clon reemplaza al estado real. Así los tests
// pueden afirmar atomicidad comparando snapshots.

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
	"github.com/tu-usuario/printshop-pro/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// fakeStore estado compartido de los fakes.
type fakeStore struct {
	mu           sync.Mutex
	materials    map[string]*entity.Material
	moves        []*entity.StockMove
	reservations []*entity.Reservation
	audits       []*entity.AuditEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{materials: make(map[string]*entity.Material)}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for id, m := range s.materials {
		cp := *m
		c.materials[id] = &cp
	}
	for _, mv := range s.moves {
		cp := *mv
		c.moves = append(c.moves, &cp)
	}
	for _, r := range s.reservations {
		cp := *r
		c.reservations = append(c.reservations, &cp)
	}
	for _, a := range s.audits {
		cp := *a
		c.audits = append(c.audits, &cp)
	}
	return c
}

func (s *fakeStore) replaceWith(c *fakeStore) {
	s.materials = c.materials
	s.moves = c.moves
	s.reservations = c.reservations
	s.audits = c.audits
}

// addMaterial siembra un material directamente en el estado, para el arrange
// de los tests.
func (s *fakeStore) addMaterial(id, name string, qty float64, minQty *float64) *entity.Material {
	m := &entity.Material{
		ID:       id,
		Name:     name,
		Unit:     "unidad",
		Quantity: decimal.NewFromFloat(qty),
	}
	if minQty != nil {
		d := decimal.NewFromFloat(*minQty)
		m.MinQuantity = &d
	}
	s.materials[id] = m
	return m
}

// ── Repos fake ────────────────────────────────────────────────────────────────

type fakeMaterialRepo struct{ s *fakeStore }

func (r *fakeMaterialRepo) Create(m *entity.Material) error {
	if _, ok := r.s.materials[m.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *m
	r.s.materials[m.ID] = &cp
	return nil
}

func (r *fakeMaterialRepo) GetByID(id string) (*entity.Material, error) {
	m, ok := r.s.materials[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMaterialRepo) GetByName(name string) (*entity.Material, error) {
	for _, m := range r.s.materials {
		if m.Name == name {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMaterialRepo) GetForUpdate(id string) (*entity.Material, error) {
	return r.GetByID(id)
}

func (r *fakeMaterialRepo) List(limit, offset int) ([]*entity.Material, error) {
	ids := make([]string, 0, len(r.s.materials))
	for id := range r.s.materials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*entity.Material
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		cp := *r.s.materials[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMaterialRepo) Update(m *entity.Material) error {
	if _, ok := r.s.materials[m.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *m
	r.s.materials[m.ID] = &cp
	return nil
}

func (r *fakeMaterialRepo) UpdateQuantity(id string, quantity decimal.Decimal, updatedAt time.Time) error {
	m, ok := r.s.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Quantity = quantity
	m.UpdatedAt = updatedAt
	return nil
}

func (r *fakeMaterialRepo) Delete(id string) error {
	if _, ok := r.s.materials[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.materials, id)
	return nil
}

type fakeMoveRepo struct{ s *fakeStore }

func (r *fakeMoveRepo) Create(move *entity.StockMove) error {
	cp := *move
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	r.s.moves = append(r.s.moves, &cp)
	return nil
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func (r *fakeMoveRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error) {
	var out []*entity.StockMove
	skipped := 0
	for _, m := range r.s.moves {
		if m.MaterialID != materialID || !inRange(m.CreatedAt, from, to) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMoveRepo) ListByOrder(orderID string) ([]*entity.StockMove, error) {
	var out []*entity.StockMove
	for _, m := range r.s.moves {
		if m.OrderID != nil && *m.OrderID == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMoveRepo) ListByUser(userID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error) {
	var out []*entity.StockMove
	for _, m := range r.s.moves {
		if m.UserID != nil && *m.UserID == userID && inRange(m.CreatedAt, from, to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMoveRepo) SumDeltaByOrder(orderID string) (map[string]decimal.Decimal, error) {
	net := make(map[string]decimal.Decimal)
	for _, m := range r.s.moves {
		if m.OrderID != nil && *m.OrderID == orderID {
			net[m.MaterialID] = net[m.MaterialID].Add(m.Delta)
		}
	}
	return net, nil
}

func (r *fakeMoveRepo) SpentInPeriod(materialID string, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.s.moves {
		if m.MaterialID == materialID && m.Delta.IsNegative() && inRange(m.CreatedAt, &from, &to) {
			total = total.Add(m.Delta.Neg())
		}
	}
	return total, nil
}

func (r *fakeMoveRepo) TopConsumption(from, to time.Time, limit int) ([]repository.ConsumptionRow, error) {
	byMaterial := make(map[string]decimal.Decimal)
	for _, m := range r.s.moves {
		if m.Delta.IsNegative() && inRange(m.CreatedAt, &from, &to) {
			byMaterial[m.MaterialID] = byMaterial[m.MaterialID].Add(m.Delta.Neg())
		}
	}
	var rows []repository.ConsumptionRow
	for id, total := range byMaterial {
		name, unit := id, ""
		if mat, ok := r.s.materials[id]; ok {
			name, unit = mat.Name, mat.Unit
		}
		rows = append(rows, repository.ConsumptionRow{MaterialID: id, MaterialName: name, Unit: unit, TotalSpent: total})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TotalSpent.GreaterThan(rows[j].TotalSpent) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type fakeReservationRepo struct{ s *fakeStore }

func (r *fakeReservationRepo) Create(res *entity.Reservation) error {
	cp := *res
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	r.s.reservations = append(r.s.reservations, &cp)
	return nil
}

func (r *fakeReservationRepo) SumActive(materialID string, now time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, res := range r.s.reservations {
		if res.MaterialID == materialID && res.IsActive(now) {
			total = total.Add(res.Quantity)
		}
	}
	return total, nil
}

func (r *fakeReservationRepo) ListActiveByMaterialOrder(materialID, orderID string, now time.Time) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if res.MaterialID == materialID && res.OrderID == orderID && res.IsActive(now) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) ListByOrder(orderID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if res.OrderID == orderID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) UpdateStatus(id, status string) error {
	for _, res := range r.s.reservations {
		if res.ID == id {
			res.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeReservationRepo) ExpireStale(now time.Time) (int64, error) {
	var n int64
	for _, res := range r.s.reservations {
		if res.Status == entity.ReservationActive && !now.Before(res.ExpiresAt) {
			res.Status = entity.ReservationExpired
			n++
		}
	}
	return n, nil
}

type fakeAuditRepo struct{ s *fakeStore }

func (r *fakeAuditRepo) Create(e *entity.AuditEntry) error {
	cp := *e
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	r.s.audits = append(r.s.audits, &cp)
	return nil
}

func (r *fakeAuditRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	for _, a := range r.s.audits {
		if a.MaterialID == materialID && inRange(a.CreatedAt, from, to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) ListByOrder(orderID string) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	for _, a := range r.s.audits {
		if a.OrderID != nil && *a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeCompositionRepo composiciones producto→material fijadas por el test.
type fakeCompositionRepo struct {
	byProduct map[string][]*entity.ProductComposition
}

func newFakeCompositionRepo() *fakeCompositionRepo {
	return &fakeCompositionRepo{byProduct: make(map[string][]*entity.ProductComposition)}
}

func (r *fakeCompositionRepo) add(category, description, materialID string, qtyPerItem float64) {
	key := category + "/" + description
	r.byProduct[key] = append(r.byProduct[key], &entity.ProductComposition{
		ID:          uuid.New().String(),
		Category:    category,
		Description: description,
		MaterialID:  materialID,
		QtyPerItem:  decimal.NewFromFloat(qtyPerItem),
	})
}

func (r *fakeCompositionRepo) FindByProduct(category, description string) ([]*entity.ProductComposition, error) {
	return r.byProduct[category+"/"+description], nil
}

// fakeStockAlertRepo una alerta abierta por material, como el upsert real.
type fakeStockAlertRepo struct {
	open     map[string]*entity.StockAlert // por material
	resolved []*entity.StockAlert
}

func newFakeStockAlertRepo() *fakeStockAlertRepo {
	return &fakeStockAlertRepo{open: make(map[string]*entity.StockAlert)}
}

func (r *fakeStockAlertRepo) UpsertOpen(alert *entity.StockAlert) error {
	if existing, ok := r.open[alert.MaterialID]; ok {
		existing.Level = alert.Level
		existing.Quantity = alert.Quantity
		existing.MinQuantity = alert.MinQuantity
		existing.UpdatedAt = alert.UpdatedAt
		return nil
	}
	cp := *alert
	r.open[alert.MaterialID] = &cp
	return nil
}

func (r *fakeStockAlertRepo) GetOpenByMaterial(materialID string) (*entity.StockAlert, error) {
	a, ok := r.open[materialID]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (r *fakeStockAlertRepo) ListOpen(limit, offset int) ([]*entity.StockAlert, error) {
	ids := make([]string, 0, len(r.open))
	for id := range r.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*entity.StockAlert
	for _, id := range ids {
		out = append(out, r.open[id])
	}
	return out, nil
}

func (r *fakeStockAlertRepo) Resolve(id string) error {
	for mid, a := range r.open {
		if a.ID == id {
			a.Resolved = true
			r.resolved = append(r.resolved, a)
			delete(r.open, mid)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeStockAlertRepo) ResolveByMaterial(materialID string) error {
	if a, ok := r.open[materialID]; ok {
		a.Resolved = true
		r.resolved = append(r.resolved, a)
		delete(r.open, materialID)
	}
	return nil
}

// fakeNotifier registra los payloads entregados.
type fakeNotifier struct {
	mu       sync.Mutex
	payloads []AlertPayload
	fail     bool
}

func (n *fakeNotifier) NotifyLowStock(_ context.Context, p AlertPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return fmt.Errorf("entrega simulada fallida")
	}
	n.payloads = append(n.payloads, p)
	return nil
}

// ── TxRunner fake ─────────────────────────────────────────────────────────────

// fakeTxRunner corre fn sobre un clon del estado; commit = reemplazar el
// estado por el clon, rollback = descartarlo.
type fakeTxRunner struct {
	s *fakeStore
}

func (t *fakeTxRunner) Run(_ context.Context, fn func(
	materials repository.MaterialRepository,
	moves repository.StockMoveRepository,
	reservations repository.ReservationRepository,
	audits repository.AuditLogRepository,
) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	work := t.s.clone()
	err := fn(
		&fakeMaterialRepo{s: work},
		&fakeMoveRepo{s: work},
		&fakeReservationRepo{s: work},
		&fakeAuditRepo{s: work},
	)
	if err != nil {
		return err
	}
	t.s.replaceWith(work)
	return nil
}

// repos directos (fuera de transacción) sobre el mismo estado.
func directRepos(s *fakeStore) (*fakeMaterialRepo, *fakeMoveRepo, *fakeReservationRepo, *fakeAuditRepo) {
	return &fakeMaterialRepo{s: s}, &fakeMoveRepo{s: s}, &fakeReservationRepo{s: s}, &fakeAuditRepo{s: s}
}
