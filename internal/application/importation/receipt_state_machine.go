package importation

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/inventory"
	"github.com/landedcost/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReceiptOutcome summarises the inventory side effects of a status change
type ReceiptOutcome struct {
	Effect           importation.InventoryEffect
	Movements        []inventory.StockMovement
	SkippedItems     int
	ProductsAffected int
}

// ReceiptStateMachine posts a shipment to inventory when it enters delivered
// and reverses its open receipts when it leaves delivered. It must run inside
// the transaction that persists the status change.
type ReceiptStateMachine struct {
	logger *zap.Logger
}

// NewReceiptStateMachine creates a new ReceiptStateMachine
func NewReceiptStateMachine(logger *zap.Logger) *ReceiptStateMachine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptStateMachine{logger: logger}
}

// Apply runs the inventory effect of an applied transition.
// Products are read once per operation so several lines feeding the same
// product see each other's updates, and each touched product is saved once
// with an optimistic version check.
func (m *ReceiptStateMachine) Apply(ctx context.Context, repos TransactionalRepositories, s *importation.Shipment, t importation.StatusTransition) (*ReceiptOutcome, error) {
	outcome := &ReceiptOutcome{Effect: t.Effect}

	cache := newProductCache(repos.ProductRepo())
	var err error
	switch t.Effect {
	case importation.EffectReceive:
		err = m.receive(ctx, repos, cache, s, t, outcome)
	case importation.EffectReverse:
		err = m.reverse(ctx, repos, cache, s, t, outcome)
	default:
		return outcome, nil
	}
	if err != nil {
		return nil, err
	}

	if err := cache.saveAll(ctx); err != nil {
		return nil, err
	}
	outcome.ProductsAffected = len(cache.order)

	switch t.Effect {
	case importation.EffectReceive:
		s.RecordReceipt(len(outcome.Movements), t.At)
	case importation.EffectReverse:
		s.RecordReversal(len(outcome.Movements), t.At)
	}
	return outcome, nil
}

func (m *ReceiptStateMachine) receive(ctx context.Context, repos TransactionalRepositories, cache *productCache, s *importation.Shipment, t importation.StatusTransition, outcome *ReceiptOutcome) error {
	for _, item := range s.Items {
		productID, ok := item.Link.ProductID()
		if !ok {
			continue
		}

		product, err := cache.get(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			m.logger.Warn("linked product not found, skipping receipt",
				zap.String("shipment_id", s.ID.String()),
				zap.String("shipment_item_id", item.ID.String()),
				zap.String("product_id", productID.String()),
			)
			outcome.SkippedItems++
			continue
		}

		movement := inventory.Receive(product, inventory.Receipt{
			ShipmentID:       s.ID,
			ShipmentItemID:   item.ID,
			ShipmentRef:      s.Reference,
			Quantity:         item.Quantity,
			UnitCostLocal:    item.UnitCostLocal,
			UnitCostForeign:  item.UnitCostForeign,
			UnitPriceForeign: item.UnitPriceForeign,
			ReceivedAt:       t.At,
		})
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
		outcome.Movements = append(outcome.Movements, *movement)
	}
	return nil
}

func (m *ReceiptStateMachine) reverse(ctx context.Context, repos TransactionalRepositories, cache *productCache, s *importation.Shipment, t importation.StatusTransition, outcome *ReceiptOutcome) error {
	movements, err := repos.MovementRepo().FindByShipment(ctx, s.ID)
	if err != nil {
		return err
	}
	open := inventory.UnreversedReceipts(movements)
	sortNewestFirst(open, lineNumbers(s))

	for i := range open {
		receipt := &open[i]
		product, err := cache.get(ctx, receipt.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			m.logger.Warn("product of receipt not found, skipping reversal",
				zap.String("shipment_id", s.ID.String()),
				zap.String("movement_id", receipt.ID.String()),
				zap.String("product_id", receipt.ProductID.String()),
			)
			outcome.SkippedItems++
			continue
		}

		adjustment, err := inventory.Reverse(product, receipt, t.At)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, adjustment); err != nil {
			return err
		}
		outcome.Movements = append(outcome.Movements, *adjustment)
	}
	return nil
}

func lineNumbers(s *importation.Shipment) map[uuid.UUID]int {
	lines := make(map[uuid.UUID]int, len(s.Items))
	for _, item := range s.Items {
		lines[item.ID] = item.LineNumber
	}
	return lines
}

// sortNewestFirst orders receipts so that undoing them restores each product's
// snapshots in the reverse order they were taken.
func sortNewestFirst(ms []inventory.StockMovement, lines map[uuid.UUID]int) {
	line := func(m inventory.StockMovement) int {
		if m.ShipmentItemID == nil {
			return 0
		}
		return lines[*m.ShipmentItemID]
	}
	sort.SliceStable(ms, func(i, j int) bool {
		if !ms[i].OccurredAt.Equal(ms[j].OccurredAt) {
			return ms[i].OccurredAt.After(ms[j].OccurredAt)
		}
		return line(ms[i]) > line(ms[j])
	})
}

// productCache holds the products loaded during one operation
type productCache struct {
	repo     inventory.ProductRepository
	products map[uuid.UUID]*inventory.Product
	missing  map[uuid.UUID]struct{}
	order    []uuid.UUID
}

func newProductCache(repo inventory.ProductRepository) *productCache {
	return &productCache{
		repo:     repo,
		products: make(map[uuid.UUID]*inventory.Product),
		missing:  make(map[uuid.UUID]struct{}),
	}
}

// get returns the product or nil when it does not exist
func (c *productCache) get(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	if _, ok := c.missing[id]; ok {
		return nil, nil
	}

	p, err := c.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			c.missing[id] = struct{}{}
			return nil, nil
		}
		return nil, err
	}
	c.products[id] = p
	c.order = append(c.order, id)
	return p, nil
}

func (c *productCache) saveAll(ctx context.Context) error {
	for _, id := range c.order {
		p := c.products[id]
		p.IncrementVersion()
		if err := c.repo.SaveWithLock(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
