package importation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/inventory"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory database shared by the fake repositories.
// memTxScope snapshots it before each transaction and restores it on error.
type memStore struct {
	mu        sync.Mutex
	shipments map[uuid.UUID]importation.Shipment
	products  map[uuid.UUID]inventory.Product
	movements []inventory.StockMovement

	// productConflicts makes the next N product saves fail with a stale version
	productConflicts int
}

func newMemStore() *memStore {
	return &memStore{
		shipments: make(map[uuid.UUID]importation.Shipment),
		products:  make(map[uuid.UUID]inventory.Product),
	}
}

type memSnapshot struct {
	shipments map[uuid.UUID]importation.Shipment
	products  map[uuid.UUID]inventory.Product
	movements []inventory.StockMovement
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		shipments: make(map[uuid.UUID]importation.Shipment, len(s.shipments)),
		products:  make(map[uuid.UUID]inventory.Product, len(s.products)),
		movements: append([]inventory.StockMovement(nil), s.movements...),
	}
	for k, v := range s.shipments {
		snap.shipments[k] = cloneShipment(v)
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.shipments = snap.shipments
	s.products = snap.products
	s.movements = snap.movements
}

func cloneShipment(sh importation.Shipment) importation.Shipment {
	sh.Items = append([]importation.ShipmentItem(nil), sh.Items...)
	sh.ClearDomainEvents()
	return sh
}

func staleVersion(kind string, id uuid.UUID) error {
	return shared.NewDomainError(shared.CodeOptimisticLockFailed, fmt.Sprintf("%s %s was modified concurrently", kind, id))
}

// memTxScope implements TransactionScope over a memStore
type memTxScope struct {
	store *memStore
}

func (s *memTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	snap := s.store.snapshot()
	if err := fn(s); err != nil {
		s.store.restore(snap)
		return err
	}
	return nil
}

func (s *memTxScope) ShipmentRepo() importation.ShipmentRepository { return &memShipmentRepo{s.store} }
func (s *memTxScope) ProductRepo() inventory.ProductRepository     { return &memProductRepo{s.store} }
func (s *memTxScope) MovementRepo() inventory.StockMovementRepository {
	return &memMovementRepo{s.store}
}

type memShipmentRepo struct{ store *memStore }

func (r *memShipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*importation.Shipment, error) {
	sh, ok := r.store.shipments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := cloneShipment(sh)
	return &cp, nil
}

func (r *memShipmentRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*importation.Shipment, error) {
	return r.FindByID(ctx, id)
}

func (r *memShipmentRepo) FindAll(_ context.Context, filter importation.ShipmentFilter) ([]importation.Shipment, error) {
	var out []importation.Shipment
	for _, sh := range r.store.shipments {
		if filter.Status != nil && sh.Status != *filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(sh.Reference, filter.Search) && !strings.Contains(sh.SupplierName, filter.Search) {
			continue
		}
		out = append(out, cloneShipment(sh))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })
	return out, nil
}

func (r *memShipmentRepo) Count(ctx context.Context, filter importation.ShipmentFilter) (int64, error) {
	all, err := r.FindAll(ctx, filter)
	return int64(len(all)), err
}

func (r *memShipmentRepo) ExistsByReference(_ context.Context, reference string) (bool, error) {
	for _, sh := range r.store.shipments {
		if sh.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (r *memShipmentRepo) Create(_ context.Context, sh *importation.Shipment) error {
	r.store.shipments[sh.ID] = cloneShipment(*sh)
	return nil
}

func (r *memShipmentRepo) SaveWithLock(_ context.Context, sh *importation.Shipment) error {
	stored, ok := r.store.shipments[sh.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != sh.Version-1 {
		return staleVersion("shipment", sh.ID)
	}
	updated := cloneShipment(*sh)
	updated.Items = stored.Items
	r.store.shipments[sh.ID] = updated
	return nil
}

func (r *memShipmentRepo) ReplaceItems(_ context.Context, shipmentID uuid.UUID, items []importation.ShipmentItem) error {
	stored, ok := r.store.shipments[shipmentID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Items = append([]importation.ShipmentItem(nil), items...)
	r.store.shipments[shipmentID] = stored
	return nil
}

type memProductRepo struct{ store *memStore }

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *memProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	var out []inventory.Product
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindBySKU(_ context.Context, sku string) (*inventory.Product, error) {
	for _, p := range r.store.products {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindAll(context.Context, shared.Filter) ([]inventory.Product, error) {
	out := make([]inventory.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memProductRepo) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(r.store.products)), nil
}

func (r *memProductRepo) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	_, err := r.FindBySKU(ctx, sku)
	return err == nil, nil
}

func (r *memProductRepo) Create(_ context.Context, p *inventory.Product) error {
	r.store.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) SaveWithLock(_ context.Context, p *inventory.Product) error {
	if r.store.productConflicts > 0 {
		r.store.productConflicts--
		return staleVersion("product", p.ID)
	}
	stored, ok := r.store.products[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != p.Version-1 {
		return staleVersion("product", p.ID)
	}
	r.store.products[p.ID] = *p
	return nil
}

type memMovementRepo struct{ store *memStore }

func (r *memMovementRepo) Create(_ context.Context, m *inventory.StockMovement) error {
	r.store.movements = append(r.store.movements, *m)
	return nil
}

func (r *memMovementRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memMovementRepo) FindByShipment(_ context.Context, shipmentID uuid.UUID) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.store.movements {
		if m.ShipmentID != nil && *m.ShipmentID == shipmentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for i := len(r.store.movements) - 1; i >= 0; i-- {
		if r.store.movements[i].ProductID == productID {
			out = append(out, r.store.movements[i])
		}
	}
	return out, nil
}

func (r *memMovementRepo) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	ms, _ := r.FindByProduct(ctx, productID, shared.Filter{})
	return int64(len(ms)), nil
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// MockCostingRecorder is a mock implementation of CostingRecorder
type MockCostingRecorder struct {
	mock.Mock
}

func (m *MockCostingRecorder) RecordShipmentCreated(ctx context.Context, items int) {
	m.Called(ctx, items)
}

func (m *MockCostingRecorder) RecordShipmentReceived(ctx context.Context, movements int, totalLocalCost decimal.Decimal) {
	m.Called(ctx, movements, totalLocalCost)
}

func (m *MockCostingRecorder) RecordShipmentReversed(ctx context.Context, movements int) {
	m.Called(ctx, movements)
}
