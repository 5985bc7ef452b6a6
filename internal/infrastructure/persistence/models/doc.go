// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of GORM tags; each model converts to and from its
// domain counterpart with ToDomain and FromDomain.
//
//   - base.go: shared ID, timestamp and version columns
//   - product.go: products with running stock and weighted average costs
//   - stock_movement.go: the append-only stock ledger
//   - shipment.go: import shipments, their allocated items and documents
package models
