package importation

import (
	"strings"
	"time"

	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeShipment is the aggregate type name for shipments
const AggregateTypeShipment = "Shipment"

// DefaultCurrency is the supplier currency assumed when none is given
const DefaultCurrency = "USD"

// ShipmentHeader holds the shipment-level values supplied by the caller
type ShipmentHeader struct {
	Reference            string
	SupplierName         string
	Currency             string
	ExchangeRate         decimal.Decimal
	FreightForeign       decimal.Decimal
	ImportTaxRate        decimal.Decimal
	IcmsRate             decimal.Decimal
	OtherTaxes           decimal.Decimal
	OrderDate            *time.Time
	ExpectedDeliveryDate *time.Time
	Notes                string
}

func (h *ShipmentHeader) normalize() error {
	h.Reference = strings.TrimSpace(h.Reference)
	h.SupplierName = strings.TrimSpace(h.SupplierName)
	h.Currency = strings.ToUpper(strings.TrimSpace(h.Currency))
	if h.Currency == "" {
		h.Currency = DefaultCurrency
	}

	if h.Reference == "" {
		return shared.NewDomainError("INVALID_REFERENCE", "Shipment reference cannot be empty")
	}
	if len(h.Reference) > 100 {
		return shared.NewDomainError("INVALID_REFERENCE", "Shipment reference cannot exceed 100 characters")
	}
	if len(h.Currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}
	if h.OrderDate != nil && h.ExpectedDeliveryDate != nil && h.ExpectedDeliveryDate.Before(*h.OrderDate) {
		return shared.NewDomainError("INVALID_DATE", "Expected delivery date cannot be before order date")
	}
	return h.ValidateCosting()
}

// ValidateCosting checks the values that feed the allocator
func (h ShipmentHeader) ValidateCosting() error {
	if !h.ExchangeRate.IsPositive() {
		return shared.NewDomainError("INVALID_EXCHANGE_RATE", "Exchange rate must be greater than zero")
	}
	if h.FreightForeign.IsNegative() {
		return shared.NewDomainError("INVALID_FREIGHT", "Freight cannot be negative")
	}
	if h.ImportTaxRate.IsNegative() || h.IcmsRate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rates cannot be negative")
	}
	if h.OtherTaxes.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_AMOUNT", "Other taxes cannot be negative")
	}
	return nil
}

// Shipment is an import purchase whose landed cost is allocated over its items.
// Cost fields are always the output of Allocate over the current items.
type Shipment struct {
	shared.BaseAggregateRoot
	Reference            string
	SupplierName         string
	Currency             string
	ExchangeRate         decimal.Decimal
	SubtotalForeign      decimal.Decimal
	FreightForeign       decimal.Decimal
	TotalForeign         decimal.Decimal
	ImportTaxRate        decimal.Decimal
	IcmsRate             decimal.Decimal
	OtherTaxes           decimal.Decimal
	SubtotalLocal        decimal.Decimal
	FreightLocal         decimal.Decimal
	TotalBeforeTaxLocal  decimal.Decimal
	ImportTaxLocal       decimal.Decimal
	IcmsLocal            decimal.Decimal
	TotalLocalCost       decimal.Decimal
	Status               ShipmentStatus
	OrderDate            *time.Time
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	Notes                string
	Items                []ShipmentItem
}

// NewShipment validates the header and items and costs the shipment.
// New shipments start as pending.
func NewShipment(header ShipmentHeader, drafts []ItemDraft) (*Shipment, error) {
	if err := header.normalize(); err != nil {
		return nil, err
	}
	if err := ValidateDrafts(drafts); err != nil {
		return nil, err
	}

	s := &Shipment{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		Reference:            header.Reference,
		SupplierName:         header.SupplierName,
		Currency:             header.Currency,
		ExchangeRate:         header.ExchangeRate,
		FreightForeign:       header.FreightForeign,
		ImportTaxRate:        header.ImportTaxRate,
		IcmsRate:             header.IcmsRate,
		OtherTaxes:           header.OtherTaxes,
		Status:               StatusPending,
		OrderDate:            header.OrderDate,
		ExpectedDeliveryDate: header.ExpectedDeliveryDate,
		Notes:                header.Notes,
	}
	s.setItems(drafts)
	s.reallocate()

	s.AddDomainEvent(NewShipmentCreatedEvent(s))
	return s, nil
}

// ValidateDrafts checks every item draft, reporting the first failing line
func ValidateDrafts(drafts []ItemDraft) error {
	for i, d := range drafts {
		if err := d.validate(i + 1); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shipment) setItems(drafts []ItemDraft) {
	s.Items = make([]ShipmentItem, len(drafts))
	for i, d := range drafts {
		s.Items[i] = newShipmentItem(s.ID, i+1, d)
	}
}

// AllocationInput returns the allocator input for the current header and items
func (s *Shipment) AllocationInput() (AllocationInput, []AllocationLine) {
	lines := make([]AllocationLine, len(s.Items))
	for i, item := range s.Items {
		lines[i] = AllocationLine{Quantity: item.Quantity, UnitPriceForeign: item.UnitPriceForeign}
	}
	return AllocationInput{
		SubtotalForeign: SubtotalOf(lines),
		FreightForeign:  s.FreightForeign,
		ExchangeRate:    s.ExchangeRate,
		ImportTaxRate:   s.ImportTaxRate,
		IcmsRate:        s.IcmsRate,
		OtherTaxes:      s.OtherTaxes,
	}, lines
}

// PreviewAllocation validates header rates and drafts and allocates them
// without creating a shipment
func PreviewAllocation(h ShipmentHeader, drafts []ItemDraft) (AllocationResult, error) {
	if err := h.ValidateCosting(); err != nil {
		return AllocationResult{}, err
	}
	if err := ValidateDrafts(drafts); err != nil {
		return AllocationResult{}, err
	}
	lines := make([]AllocationLine, len(drafts))
	for i, d := range drafts {
		lines[i] = AllocationLine{Quantity: d.Quantity, UnitPriceForeign: d.UnitPriceForeign}
	}
	return Allocate(AllocationInput{
		SubtotalForeign: SubtotalOf(lines),
		FreightForeign:  h.FreightForeign,
		ExchangeRate:    h.ExchangeRate,
		ImportTaxRate:   h.ImportTaxRate,
		IcmsRate:        h.IcmsRate,
		OtherTaxes:      h.OtherTaxes,
	}, lines), nil
}

func (s *Shipment) reallocate() {
	in, lines := s.AllocationInput()
	res := Allocate(in, lines)

	s.SubtotalForeign = in.SubtotalForeign.Round(MoneyScale)
	s.TotalForeign = res.TotalForeign
	s.SubtotalLocal = res.SubtotalLocal
	s.FreightLocal = res.FreightLocal
	s.TotalBeforeTaxLocal = res.TotalBeforeTaxLocal
	s.ImportTaxLocal = res.ImportTaxLocal
	s.IcmsLocal = res.IcmsLocal
	s.TotalLocalCost = res.TotalLocalCost

	for i := range s.Items {
		s.Items[i].applyAllocation(res.Lines[i])
	}
}

// ReplaceItems swaps the whole item list and re-costs the shipment.
// Delivered shipments are locked because their costs are already in stock.
func (s *Shipment) ReplaceItems(drafts []ItemDraft, at time.Time) error {
	if s.Status.IsDelivered() {
		return shared.NewDomainError("SHIPMENT_DELIVERED", "Cannot edit items of a delivered shipment; move it out of delivered first")
	}
	if err := ValidateDrafts(drafts); err != nil {
		return err
	}

	previous := len(s.Items)
	s.setItems(drafts)
	s.reallocate()
	s.Touch(at)
	s.IncrementVersion()

	s.AddDomainEvent(NewShipmentItemsReplacedEvent(s, previous))
	return nil
}

// StatusTransition describes an applied status change
type StatusTransition struct {
	From   ShipmentStatus
	To     ShipmentStatus
	Effect InventoryEffect
	At     time.Time
}

// Changed reports whether the status actually moved
func (t StatusTransition) Changed() bool {
	return t.From != t.To
}

// ChangeStatus moves the shipment to a new status. Any status may follow any
// other. Entering delivered stamps the actual delivery date if unset.
// Setting the current status again is a no-op with EffectNone.
func (s *Shipment) ChangeStatus(to ShipmentStatus, at time.Time) (StatusTransition, error) {
	if !to.IsValid() {
		return StatusTransition{}, shared.NewDomainError("INVALID_STATUS", "Unknown shipment status: "+to.String())
	}

	t := StatusTransition{
		From:   s.Status,
		To:     to,
		Effect: TransitionEffect(s.Status, to),
		At:     at,
	}
	if !t.Changed() {
		return t, nil
	}

	s.Status = to
	if t.Effect == EffectReceive && s.ActualDeliveryDate == nil {
		delivered := at
		s.ActualDeliveryDate = &delivered
	}
	s.Touch(at)
	s.IncrementVersion()

	s.AddDomainEvent(NewShipmentStatusChangedEvent(s, t))
	return t, nil
}

// RecordReceipt notes that the linked items were posted to inventory
func (s *Shipment) RecordReceipt(movements int, at time.Time) {
	s.AddDomainEvent(NewShipmentReceivedEvent(s, movements, at))
}

// RecordReversal notes that earlier receipts of this shipment were undone
func (s *Shipment) RecordReversal(movements int, at time.Time) {
	s.AddDomainEvent(NewShipmentReceiptReversedEvent(s, movements, at))
}

// LinkedItems returns the items that feed a product
func (s *Shipment) LinkedItems() []ShipmentItem {
	linked := make([]ShipmentItem, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Link.IsLinked() {
			linked = append(linked, item)
		}
	}
	return linked
}

// ItemCount returns the number of items
func (s *Shipment) ItemCount() int {
	return len(s.Items)
}

// TotalUnits returns the sum of item quantities
func (s *Shipment) TotalUnits() int64 {
	var total int64
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}
