/*
files.go - Import, export and database file handlers

ENDPOINTS:
  Import:
    POST   /api/inventory/import       JSON rows {"rows": [...]}
    POST   /api/inventory/import/xlsx  multipart "file", first sheet

  Export:
    GET    /api/export/{format}        csv, xlsx or pdf attachment
    GET    /api/export/sample          one-row import template

  Admin (X-Confirm-Password required except initialize):
    POST   /api/admin/initialize       Ensure the schema exists
    POST   /api/admin/backup           Copy the database file to {path}
    POST   /api/admin/restore          Replace the database with {path}, then restart
    POST   /api/admin/reset            Delete every item and sale

SEE ALSO:
  - exchange/: file formats
  - store/sqlite/backup.go: file copy and validation
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/medstock/inventory-engine/exchange"
	"github.com/medstock/inventory-engine/ledger"
)

// =============================================================================
// IMPORT ENDPOINTS
// =============================================================================

// ImportRows imports JSON rows as one batch.
// POST /api/inventory/import
func (h *Handler) ImportRows(w http.ResponseWriter, r *http.Request) {
	var req ImportRowsRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	rows := make([]ledger.ImportRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, ledger.ImportRow(row))
	}
	h.importRows(w, r, rows, "json")
}

// ImportSpreadsheet imports the first sheet of an uploaded workbook.
// POST /api/inventory/import/xlsx
func (h *Handler) ImportSpreadsheet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload", err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field", err)
		return
	}
	defer file.Close()

	rows, err := exchange.ReadSpreadsheet(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read spreadsheet", err)
		return
	}
	h.importRows(w, r, rows, "xlsx")
}

func (h *Handler) importRows(w http.ResponseWriter, r *http.Request, rows []ledger.ImportRow, source string) {
	n, err := h.Ledger.ImportItems(r.Context(), rows)
	if err != nil {
		h.Log.Warn().Err(err).Str("source", source).Int("rows", len(rows)).Msg("import rejected")
		h.writeLedgerError(w, "import failed, no rows were imported", err)
		return
	}

	h.Log.Info().Str("source", source).Int64("imported", n).Msg("items imported")
	writeJSON(w, http.StatusOK, ImportResultDTO{Imported: n})
}

// =============================================================================
// EXPORT ENDPOINTS
// =============================================================================

// Export streams the whole inventory as an attachment.
// GET /api/export/{format}
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	page, err := h.Ledger.ListInventory(r.Context(), ledger.InventoryQuery{})
	if err != nil {
		h.writeLedgerError(w, "failed to load inventory", err)
		return
	}

	var buf bytes.Buffer
	var contentType string

	switch format {
	case "csv":
		contentType = exchange.ContentTypeCSV
		err = exchange.WriteCSV(&buf, page.Items)
	case "xlsx":
		contentType = exchange.ContentTypeXLSX
		err = exchange.WriteXLSX(&buf, page.Items)
	case "pdf":
		contentType = exchange.ContentTypePDF
		var data []byte
		data, err = exchange.RenderPDF(page.Items)
		buf.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "unsupported export format", fmt.Errorf("format %q", format))
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("format", format).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export failed", err)
		return
	}

	h.Log.Info().Str("format", format).Int("items", len(page.Items)).Msg("inventory exported")
	writeAttachment(w, contentType, "inventory."+format, buf.Bytes())
}

// Sample returns the import template workbook.
// GET /api/export/sample
func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := exchange.WriteSample(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build sample", err)
		return
	}
	writeAttachment(w, exchange.ContentTypeXLSX, "inventory_sample.xlsx", buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// Initialize ensures the schema exists. Safe to call repeatedly.
// POST /api/admin/initialize
func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.Initialize(r.Context()); err != nil {
		h.writeLedgerError(w, "failed to initialize database", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusDTO{Status: "ok"})
}

// Backup copies the database file. Without a path the copy goes to
// BackupDir with a timestamped name.
// POST /api/admin/backup
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	dst := req.Path
	if dst == "" {
		if h.BackupDir == "" {
			writeError(w, http.StatusBadRequest, "backup path is required", nil)
			return
		}
		dst = filepath.Join(h.BackupDir, "inventory_backup_"+h.Ledger.Now().Format("20060102_150405")+".db")
	}

	if err := h.Files.Backup(r.Context(), dst); err != nil {
		h.Log.Error().Err(err).Str("path", dst).Msg("backup failed")
		h.writeLedgerError(w, "backup failed", err)
		return
	}

	h.Log.Info().Str("path", dst).Msg("database backed up")
	writeJSON(w, http.StatusOK, StatusDTO{Status: "ok", Path: dst})
}

// Restore replaces the database with a backup. The store is closed
// afterwards and the server restarts.
// POST /api/admin/restore
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "restore path is required", nil)
		return
	}

	start := time.Now()
	if err := h.Files.Restore(req.Path); err != nil {
		h.Log.Error().Err(err).Str("path", req.Path).Msg("restore failed")
		h.writeLedgerError(w, "restore failed", err)
		return
	}

	h.Log.Warn().Str("path", req.Path).Dur("took", time.Since(start)).Msg("database restored, restarting")
	writeJSON(w, http.StatusAccepted, StatusDTO{Status: "restarting", Path: req.Path})

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	if h.OnRestore != nil {
		h.OnRestore()
	}
}

// Reset deletes every item and sale.
// POST /api/admin/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.ClearAll(r.Context()); err != nil {
		h.writeLedgerError(w, "failed to clear data", err)
		return
	}

	h.Log.Warn().Msg("all inventory and sales cleared")
	writeJSON(w, http.StatusOK, StatusDTO{Status: "ok"})
}

// decodeOptional decodes a JSON body, treating an empty body as zero value.
func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
