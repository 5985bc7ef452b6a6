package importation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appinv "github.com/landedcost/backend/internal/application/inventory"
	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/inventory"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/landedcost/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RetryConfig bounds retries of operations that lost an optimistic lock race
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   25 * time.Millisecond,
	}
}

// ShipmentService implements the shipment operations: creation, status
// changes that post to or reverse from inventory, and item replacement.
// Every write runs in a single transaction.
type ShipmentService struct {
	shipmentRepo   importation.ShipmentRepository
	movementRepo   inventory.StockMovementRepository
	txScope        TransactionScope
	stateMachine   *ReceiptStateMachine
	eventPublisher shared.EventPublisher
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	retry          RetryConfig
	logger         *zap.Logger
	now            func() time.Time
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	shipmentRepo importation.ShipmentRepository,
	movementRepo inventory.StockMovementRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *ShipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentService{
		shipmentRepo: shipmentRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		stateMachine: NewReceiptStateMachine(logger),
		retry:        DefaultRetryConfig(),
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ShipmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables Idempotency-Key handling on status changes
func (s *ShipmentService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	s.idempotencyTTL = ttl
}

// SetRetryConfig overrides the optimistic lock retry policy
func (s *ShipmentService) SetRetryConfig(cfg RetryConfig) {
	s.retry = cfg
}

// CreateShipment costs and stores a new shipment. Inventory is not touched.
func (s *ShipmentService) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*ShipmentResponse, error) {
	shipment, err := importation.NewShipment(req.header(), toItemDrafts(req.Items))
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.ShipmentRepo().ExistsByReference(ctx, shipment.Reference)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Shipment with reference "+shipment.Reference+" already exists")
		}
		if err := ensureLinkedProductsExist(ctx, repos.ProductRepo(), shipment.Items); err != nil {
			return err
		}
		return repos.ShipmentRepo().Create(ctx, shipment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shipment created",
		zap.String("shipment_id", shipment.ID.String()),
		zap.String("reference", shipment.Reference),
		zap.Int("items", shipment.ItemCount()),
		zap.String("total_local_cost", shipment.TotalLocalCost.String()),
	)
	s.publishEvents(ctx, shipment)

	response := ToShipmentResponse(shipment)
	return &response, nil
}

// SetShipmentStatus changes a shipment's status. Entering delivered posts every
// linked item to inventory; leaving delivered reverses the open receipts.
// Repeating the current status does nothing. A non-empty idempotencyKey that
// was already processed returns the current state without reapplying.
func (s *ShipmentService) SetShipmentStatus(ctx context.Context, id uuid.UUID, req SetShipmentStatusRequest, idempotencyKey string) (_ *StatusChangeResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", "set_status",
		telemetry.SpanAttrShipmentID, id.String(),
		telemetry.SpanAttrStatusTo, req.Status,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	status, err := importation.ParseShipmentStatus(req.Status)
	if err != nil {
		return nil, err
	}

	key := ""
	if idempotencyKey != "" && s.idempotency != nil {
		key = fmt.Sprintf("shipment-status:%s:%s", id, idempotencyKey)
		done, err := s.idempotency.IsProcessed(ctx, key)
		if err != nil {
			s.logger.Warn("idempotency check failed, processing request",
				zap.String("shipment_id", id.String()),
				zap.Error(err),
			)
		} else if done {
			telemetry.SetAttributes(span, telemetry.SpanAttrIdempotencyKey, idempotencyKey)
			return s.replayedStatus(ctx, id)
		}
	}

	var (
		shipment   *importation.Shipment
		transition importation.StatusTransition
		outcome    *ReceiptOutcome
	)
	err = s.withRetry(ctx, "set_shipment_status", func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			sh, err := repos.ShipmentRepo().FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}

			t, err := sh.ChangeStatus(status, s.now())
			if err != nil {
				return err
			}
			shipment, transition, outcome = sh, t, &ReceiptOutcome{Effect: importation.EffectNone}
			if !t.Changed() {
				return nil
			}

			out, err := s.stateMachine.Apply(ctx, repos, sh, t)
			if err != nil {
				return err
			}
			outcome = out
			return repos.ShipmentRepo().SaveWithLock(ctx, sh)
		})
	})
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrShipmentRef, shipment.Reference,
		telemetry.SpanAttrStatusFrom, transition.From.String(),
		telemetry.SpanAttrEffect, string(transition.Effect),
		telemetry.SpanAttrMovements, len(outcome.Movements),
		telemetry.SpanAttrSkippedItems, outcome.SkippedItems,
	)

	if transition.Changed() {
		s.logger.Info("shipment status changed",
			zap.String("shipment_id", shipment.ID.String()),
			zap.String("from", transition.From.String()),
			zap.String("to", transition.To.String()),
			zap.String("effect", string(transition.Effect)),
			zap.Int("movements", len(outcome.Movements)),
			zap.Int("skipped_items", outcome.SkippedItems),
		)
		s.publishEvents(ctx, shipment)
	}

	if key != "" {
		if _, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL); err != nil {
			s.logger.Warn("failed to record idempotency key",
				zap.String("shipment_id", id.String()),
				zap.Error(err),
			)
		}
	}

	return &StatusChangeResponse{
		Shipment:     ToShipmentResponse(shipment),
		From:         transition.From.String(),
		To:           transition.To.String(),
		Effect:       string(transition.Effect),
		Movements:    appinv.ToStockMovementResponses(outcome.Movements),
		SkippedItems: outcome.SkippedItems,
	}, nil
}

func (s *ShipmentService) replayedStatus(ctx context.Context, id uuid.UUID) (*StatusChangeResponse, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StatusChangeResponse{
		Shipment:  ToShipmentResponse(shipment),
		From:      shipment.Status.String(),
		To:        shipment.Status.String(),
		Effect:    string(importation.EffectNone),
		Movements: []appinv.StockMovementResponse{},
		Replayed:  true,
	}, nil
}

// ReplaceShipmentItems swaps every item of a shipment and re-costs it.
// Delivered shipments are rejected.
func (s *ShipmentService) ReplaceShipmentItems(ctx context.Context, id uuid.UUID, req ReplaceShipmentItemsRequest) (*ShipmentResponse, error) {
	drafts := toItemDrafts(req.Items)

	var shipment *importation.Shipment
	err := s.withRetry(ctx, "replace_shipment_items", func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			sh, err := repos.ShipmentRepo().FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if err := sh.ReplaceItems(drafts, s.now()); err != nil {
				return err
			}
			if err := ensureLinkedProductsExist(ctx, repos.ProductRepo(), sh.Items); err != nil {
				return err
			}
			if err := repos.ShipmentRepo().SaveWithLock(ctx, sh); err != nil {
				return err
			}
			if err := repos.ShipmentRepo().ReplaceItems(ctx, sh.ID, sh.Items); err != nil {
				return err
			}
			shipment = sh
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shipment items replaced",
		zap.String("shipment_id", shipment.ID.String()),
		zap.Int("items", shipment.ItemCount()),
		zap.String("total_local_cost", shipment.TotalLocalCost.String()),
	)
	s.publishEvents(ctx, shipment)

	response := ToShipmentResponse(shipment)
	return &response, nil
}

// GetShipment retrieves a shipment with its items
func (s *ShipmentService) GetShipment(ctx context.Context, id uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(shipment)
	return &response, nil
}

// ListShipments retrieves a page of shipments
func (s *ShipmentService) ListShipments(ctx context.Context, filter ShipmentListFilter) ([]ShipmentListItemResponse, int64, error) {
	f := importation.ShipmentFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search
	if filter.Status != "" {
		status, err := importation.ParseShipmentStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		f.Status = &status
	}

	shipments, err := s.shipmentRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.shipmentRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToShipmentListItemResponses(shipments), total, nil
}

// ListShipmentMovements returns the ledger rows written for a shipment, oldest first
func (s *ShipmentService) ListShipmentMovements(ctx context.Context, id uuid.UUID) ([]appinv.StockMovementResponse, error) {
	if _, err := s.shipmentRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	movements, err := s.movementRepo.FindByShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	return appinv.ToStockMovementResponses(movements), nil
}

// PreviewAllocation costs a prospective shipment without storing it
func (s *ShipmentService) PreviewAllocation(_ context.Context, req AllocationPreviewRequest) (*AllocationPreviewResponse, error) {
	header := importation.ShipmentHeader{
		ExchangeRate:   req.ExchangeRate,
		FreightForeign: req.FreightForeign,
		ImportTaxRate:  req.ImportTaxRate,
		IcmsRate:       req.IcmsRate,
		OtherTaxes:     req.OtherTaxes,
	}
	res, err := importation.PreviewAllocation(header, toItemDrafts(req.Items))
	if err != nil {
		return nil, err
	}

	lines := make([]AllocationLineResponse, len(res.Lines))
	subtotal := res.TotalForeign.Sub(req.FreightForeign)
	for i, l := range res.Lines {
		lines[i] = AllocationLineResponse{
			LineNumber:       i + 1,
			Quantity:         req.Items[i].Quantity,
			UnitPriceForeign: req.Items[i].UnitPriceForeign,
			ItemTotalForeign: l.ItemTotalForeign,
			Share:            l.Share,
			FreightLocal:     l.FreightLocal,
			ImportTax:        l.ImportTax,
			Icms:             l.Icms,
			OtherTaxes:       l.OtherTaxes,
			TotalCostLocal:   l.TotalCostLocal,
			UnitCostLocal:    l.UnitCostLocal,
			UnitCostForeign:  l.UnitCostForeign,
		}
	}
	return &AllocationPreviewResponse{
		SubtotalForeign:     subtotal,
		TotalForeign:        res.TotalForeign,
		SubtotalLocal:       res.SubtotalLocal,
		FreightLocal:        res.FreightLocal,
		TotalBeforeTaxLocal: res.TotalBeforeTaxLocal,
		ImportTaxLocal:      res.ImportTaxLocal,
		IcmsLocal:           res.IcmsLocal,
		OtherTaxesLocal:     res.OtherTaxesLocal,
		TotalLocalCost:      res.TotalLocalCost,
		Lines:               lines,
	}, nil
}

// withRetry reruns fn while it fails on an optimistic lock, backing off
// exponentially. Exhausting the attempts yields CONCURRENCY_CONFLICT.
func (s *ShipmentService) withRetry(ctx context.Context, op string, fn func() error) error {
	attempts := s.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !shared.IsOptimisticLockError(err) {
			return err
		}

		s.logger.Warn("optimistic lock conflict",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
		if attempt == attempts {
			break
		}

		delay := s.retry.BaseDelay << (attempt - 1)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return shared.NewDomainError("CONCURRENCY_CONFLICT",
		fmt.Sprintf("%s gave up after %d attempts: %v", op, attempts, err))
}

// ensureLinkedProductsExist rejects items that point at unknown products
func ensureLinkedProductsExist(ctx context.Context, repo inventory.ProductRepository, items []importation.ShipmentItem) error {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		id, ok := item.Link.ProductID()
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]struct{}, len(products))
	for _, p := range products {
		found[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", "Linked product not found: "+id.String())
		}
	}
	return nil
}

// publishEvents publishes and clears the aggregate's pending events
func (s *ShipmentService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	aggregate.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish shipment events",
			zap.String("shipment_id", aggregate.GetID().String()),
			zap.Error(err),
		)
	}
}
