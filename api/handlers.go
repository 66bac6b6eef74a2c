/*
handlers.go - HTTP API handlers for the inventory ledger

PURPOSE:
  Exposes the ledger engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the ledger.

ENDPOINTS:
  Auth:
    POST   /api/auth/login             Log in, returns token + expired count
    POST   /api/auth/refresh           Slide the idle deadline
    POST   /api/auth/logout            Revoke the current token

  Inventory:
    GET    /api/inventory              List (search, status, page, page_size)
    POST   /api/inventory              Add item
    GET    /api/inventory/{id}         Get item
    PUT    /api/inventory/{id}         Replace item fields
    DELETE /api/inventory/{id}         Delete item (sales are kept)
    GET    /api/dashboard/stats        Dashboard counters

  Sales:
    GET    /api/sales                  List sales, newest first
    POST   /api/sales                  Record a sale
    GET    /api/sales/stats            Daily / monthly / yearly totals

  Import, export, admin: see files.go

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Ledger: domain operations
  - Files: backup/restore of the database file
  - Auth: session gate

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, invalid backup
  - 401: Missing or expired session
  - 403: Wrong confirmation password
  - 404: Resource not found
  - 409: Insufficient stock
  - 503: Store closed (restore in progress)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - files.go: Import, export, backup and restore
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/medstock/inventory-engine/ledger"
	"github.com/medstock/inventory-engine/logger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// FileStore copies the database file for backup and restore.
type FileStore interface {
	Backup(ctx context.Context, dst string) error
	Restore(src string) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Ledger *ledger.Ledger
	Files  FileStore
	Auth   *Gate
	Log    *logger.Logger

	// BackupDir receives backups requested without a path.
	BackupDir string

	// CORSOrigins are the allowed front-end origins.
	CORSOrigins []string

	// MaxUploadBytes bounds spreadsheet uploads.
	MaxUploadBytes int64

	// OnRestore is called after a successful restore has been answered.
	// The store is closed at that point; the server must restart.
	OnRestore func()
}

// NewHandler creates a new handler.
func NewHandler(l *ledger.Ledger, files FileStore, auth *Gate, log *logger.Logger) *Handler {
	return &Handler{
		Ledger:         l,
		Files:          files,
		Auth:           auth,
		Log:            log,
		MaxUploadBytes: 32 << 20,
	}
}

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// Login verifies the shared password and opens a session.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	session, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		h.Log.Warn().Str("username", req.Username).Msg("login rejected")
		writeError(w, http.StatusUnauthorized, "invalid username or password", nil)
		return
	}

	stats, err := h.Ledger.DashboardStats(r.Context())
	if err != nil {
		h.writeLedgerError(w, "failed to load dashboard stats", err)
		return
	}

	h.Log.Info().Str("username", req.Username).Int("expired", stats.Expired).Msg("login")
	writeJSON(w, http.StatusOK, LoginResponse{
		SessionDTO:   SessionDTO{Token: session.Token, ExpiresAt: session.ExpiresAt},
		ExpiredItems: stats.Expired,
	})
}

// Refresh returns the session issued by the auth middleware.
// POST /api/auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	writeJSON(w, http.StatusOK, SessionDTO{Token: session.Token, ExpiresAt: session.ExpiresAt})
}

// Logout revokes the whole session: the presented token and every token
// refreshed from the same login.
// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := ClaimsFrom(r.Context()); ok {
		h.Auth.Revoke(claims)
	}
	w.Header().Del(SessionHeader)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// INVENTORY ENDPOINTS
// =============================================================================

// ListInventory returns items newest first.
// GET /api/inventory?search=&status=&page=&page_size=
func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := queryInt(q.Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page", err)
		return
	}
	pageSize, err := queryInt(q.Get("page_size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page_size", err)
		return
	}

	result, err := h.Ledger.ListInventory(r.Context(), ledger.InventoryQuery{
		Search:   q.Get("search"),
		Status:   ledger.StockStatus(q.Get("status")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.writeLedgerError(w, "failed to list inventory", err)
		return
	}

	writeJSON(w, http.StatusOK, InventoryPageDTO{
		Items:    toItemDTOs(result.Items),
		Total:    result.Total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetItem returns one item.
// GET /api/inventory/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.Ledger.GetItem(r.Context(), id)
	if err != nil {
		h.writeLedgerError(w, "failed to get item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(item))
}

// AddItem inserts a new item.
// POST /api/inventory
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res, err := h.Ledger.AddItem(r.Context(), req.Fields())
	if err != nil {
		h.writeLedgerError(w, "failed to add item", err)
		return
	}

	h.Log.Info().Int64("item_id", res.LastInsertID).Str("item_name", req.ItemName).Msg("item added")
	writeJSON(w, http.StatusCreated, MutationDTO{RowsAffected: res.RowsAffected, ID: res.LastInsertID})
}

// UpdateItem replaces every mutable field of an item. A missing id is not
// an error: rows_affected is 0.
// PUT /api/inventory/{id}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res, err := h.Ledger.UpdateItem(r.Context(), id, req.Fields())
	if err != nil {
		h.writeLedgerError(w, "failed to update item", err)
		return
	}
	writeJSON(w, http.StatusOK, MutationDTO{RowsAffected: res.RowsAffected})
}

// DeleteItem removes an item. Its sales are kept.
// DELETE /api/inventory/{id}
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	res, err := h.Ledger.DeleteItem(r.Context(), id)
	if err != nil {
		h.writeLedgerError(w, "failed to delete item", err)
		return
	}

	if res.RowsAffected > 0 {
		h.Log.Info().Int64("item_id", int64(id)).Msg("item deleted")
	}
	writeJSON(w, http.StatusOK, MutationDTO{RowsAffected: res.RowsAffected})
}

// DashboardStats returns the inventory counters.
// GET /api/dashboard/stats
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Ledger.DashboardStats(r.Context())
	if err != nil {
		h.writeLedgerError(w, "failed to compute dashboard stats", err)
		return
	}

	writeJSON(w, http.StatusOK, DashboardStatsDTO{
		Total:        stats.Total,
		Expired:      stats.Expired,
		ExpiringSoon: stats.ExpiringSoon,
		OutOfStock:   stats.OutOfStock,
	})
}

// =============================================================================
// SALES ENDPOINTS
// =============================================================================

// RecordSale records a sale and decrements stock atomically.
// POST /api/sales
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SaleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sale := ledger.SaleRequest{
		ItemID:    ledger.ItemID(req.ItemID),
		ItemName:  req.ItemName,
		Quantity:  req.Quantity,
		SalePrice: req.SalePrice,
	}
	if req.PurchasePrice != nil {
		sale.PurchasePrice = *req.PurchasePrice
	}

	// The form sends only the item and quantity; fill the rest from the item.
	if sale.ItemName == "" || req.PurchasePrice == nil {
		item, err := h.Ledger.GetItem(ctx, sale.ItemID)
		if err != nil {
			h.writeLedgerError(w, "failed to look up item", err)
			return
		}
		if sale.ItemName == "" {
			sale.ItemName = item.ItemName
		}
		if req.PurchasePrice == nil {
			sale.PurchasePrice = item.PurchasePrice
		}
	}

	tx, err := h.Ledger.RecordSale(ctx, sale)
	if err != nil {
		h.writeLedgerError(w, "failed to record sale", err)
		return
	}

	h.Log.Info().
		Int64("sale_id", int64(tx.ID)).
		Int64("item_id", int64(tx.ItemID)).
		Int64("quantity", tx.Quantity).
		Str("total", tx.TotalAmount.String()).
		Msg("sale recorded")
	writeJSON(w, http.StatusCreated, toSaleDTO(tx))
}

// ListSales returns every sale, newest first.
// GET /api/sales
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Ledger.ListSales(r.Context())
	if err != nil {
		h.writeLedgerError(w, "failed to list sales", err)
		return
	}

	dtos := make([]SaleDTO, 0, len(sales))
	for _, s := range sales {
		dtos = append(dtos, toSaleDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SalesStats returns profit and revenue for today, this month and this year.
// GET /api/sales/stats
func (h *Handler) SalesStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Ledger.SalesStats(r.Context())
	if err != nil {
		h.writeLedgerError(w, "failed to compute sales stats", err)
		return
	}

	writeJSON(w, http.StatusOK, SalesStatsDTO{
		Daily:   toTotalsDTO(stats.Daily),
		Monthly: toTotalsDTO(stats.Monthly),
		Yearly:  toTotalsDTO(stats.Yearly),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeLedgerError maps ledger errors to HTTP statuses.
func (h *Handler) writeLedgerError(w http.ResponseWriter, message string, err error) {
	var validation *ledger.ValidationError
	var stock *ledger.InsufficientStockError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: message,
			Code:  "validation",
			Details: ValidationDetails{
				Row:     validation.Row,
				Field:   validation.Field,
				Message: validation.Message,
			},
		})
	case errors.As(err, &stock):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: message,
			Code:  "insufficient_stock",
			Details: StockDetails{
				ItemID:    int64(stock.ItemID),
				Available: stock.Available,
				Requested: stock.Requested,
			},
		})
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, ledger.ErrStoreClosed):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		h.Log.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func itemIDParam(w http.ResponseWriter, r *http.Request) (ledger.ItemID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid item id", err)
		return 0, false
	}
	return ledger.ItemID(id), true
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
