/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Auth:
    LoginRequest, LoginResponse, SessionDTO

  Inventory:
    ItemDTO, ItemRequest, InventoryPageDTO, MutationDTO

  Sales:
    SaleDTO, SaleRequestDTO, SalesStatsDTO, TotalsDTO

  Import / Admin:
    ImportRowsRequest, ImportResultDTO, PathRequest

MONEY:
  Money fields are decimal.Decimal. Responses encode them as JSON strings
  ("12.5"); requests accept either a string or a number.

VALIDATION:
  Validation is done by the ledger, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/medstock/inventory-engine/ledger"
	"github.com/shopspring/decimal"
)

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionDTO carries a session token and its idle deadline.
type SessionDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResponse is returned on successful login. ExpiredItems drives the
// "items have expired" alert shown after login.
type LoginResponse struct {
	SessionDTO
	ExpiredItems int `json:"expired_items"`
}

// =============================================================================
// INVENTORY
// =============================================================================

// ItemDTO is an inventory item.
type ItemDTO struct {
	ID            int64           `json:"id"`
	ItemName      string          `json:"item_name"`
	BatchNo       string          `json:"batch_no"`
	ExpiryDate    string          `json:"expiry_date"`
	MRP           decimal.Decimal `json:"mrp"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	NetPrice      decimal.Decimal `json:"net_price"`
	StockQuantity int64           `json:"stock_quantity"`
	CreatedAt     string          `json:"created_at"`
}

// ItemRequest is the body of POST /api/inventory and PUT /api/inventory/{id}.
type ItemRequest struct {
	ItemName      string          `json:"item_name"`
	BatchNo       string          `json:"batch_no"`
	ExpiryDate    string          `json:"expiry_date"`
	MRP           decimal.Decimal `json:"mrp"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	NetPrice      decimal.Decimal `json:"net_price"`
	StockQuantity int64           `json:"stock_quantity"`
}

// Fields converts the request to ledger fields.
func (r ItemRequest) Fields() ledger.ItemFields {
	return ledger.ItemFields{
		ItemName:      r.ItemName,
		BatchNo:       r.BatchNo,
		ExpiryDate:    r.ExpiryDate,
		MRP:           r.MRP,
		PurchasePrice: r.PurchasePrice,
		NetPrice:      r.NetPrice,
		StockQuantity: r.StockQuantity,
	}
}

// InventoryPageDTO is one page of GET /api/inventory.
type InventoryPageDTO struct {
	Items    []ItemDTO `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// MutationDTO reports the effect of a write.
type MutationDTO struct {
	RowsAffected int64 `json:"rows_affected"`
	ID           int64 `json:"id,omitempty"`
}

// DashboardStatsDTO are the dashboard counters.
type DashboardStatsDTO struct {
	Total        int `json:"total"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiring_soon"`
	OutOfStock   int `json:"out_of_stock"`
}

// =============================================================================
// SALES
// =============================================================================

// SaleRequestDTO is the body of POST /api/sales. ItemName and PurchasePrice
// default to the current values of the item when omitted.
type SaleRequestDTO struct {
	ItemID        int64            `json:"item_id"`
	ItemName      string           `json:"item_name,omitempty"`
	Quantity      int64            `json:"quantity"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
}

// SaleDTO is a recorded sale.
type SaleDTO struct {
	ID          int64           `json:"id"`
	ItemID      int64           `json:"item_id"`
	ItemName    string          `json:"item_name"`
	Quantity    int64           `json:"quantity"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Profit      decimal.Decimal `json:"profit"`
	SaleDate    string          `json:"sale_date"`
}

// TotalsDTO is a profit/revenue pair.
type TotalsDTO struct {
	Profit  decimal.Decimal `json:"profit"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesStatsDTO buckets sales by day, month and year.
type SalesStatsDTO struct {
	Daily   TotalsDTO `json:"daily"`
	Monthly TotalsDTO `json:"monthly"`
	Yearly  TotalsDTO `json:"yearly"`
}

// =============================================================================
// IMPORT / ADMIN
// =============================================================================

// ImportRowsRequest is the body of POST /api/inventory/import.
type ImportRowsRequest struct {
	Rows []map[string]any `json:"rows"`
}

// ImportResultDTO reports how many rows were imported.
type ImportResultDTO struct {
	Imported int64 `json:"imported"`
}

// PathRequest names a file on the server host for backup and restore.
type PathRequest struct {
	Path string `json:"path"`
}

// StatusDTO is a minimal acknowledgement.
type StatusDTO struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ValidationDetails is the Details payload of a validation error.
type ValidationDetails struct {
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StockDetails is the Details payload of an oversell.
type StockDetails struct {
	ItemID    int64 `json:"item_id"`
	Available int64 `json:"available"`
	Requested int64 `json:"requested"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toItemDTO(it ledger.InventoryItem) ItemDTO {
	dto := ItemDTO{
		ID:            int64(it.ID),
		ItemName:      it.ItemName,
		BatchNo:       it.BatchNo,
		ExpiryDate:    it.ExpiryDate,
		MRP:           it.MRP,
		PurchasePrice: it.PurchasePrice,
		NetPrice:      it.NetPrice,
		StockQuantity: it.StockQuantity,
	}
	if !it.CreatedAt.IsZero() {
		dto.CreatedAt = ledger.FormatTimestamp(it.CreatedAt)
	}
	return dto
}

func toItemDTOs(items []ledger.InventoryItem) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		dtos = append(dtos, toItemDTO(it))
	}
	return dtos
}

func toSaleDTO(s ledger.SaleTransaction) SaleDTO {
	return SaleDTO{
		ID:          int64(s.ID),
		ItemID:      int64(s.ItemID),
		ItemName:    s.ItemName,
		Quantity:    s.Quantity,
		SalePrice:   s.SalePrice,
		TotalAmount: s.TotalAmount,
		Profit:      s.Profit,
		SaleDate:    ledger.FormatTimestamp(s.SaleDate),
	}
}

func toTotalsDTO(t ledger.SalesTotals) TotalsDTO {
	return TotalsDTO{Profit: t.Profit, Revenue: t.Revenue}
}
