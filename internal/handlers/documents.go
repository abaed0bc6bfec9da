package handlers

import (
	"io"
	"net/http"
	"strconv"
)

// maxUploadBytes caps multipart uploads; the service applies its own limit
// on the decoded file as well.
const maxUploadBytes = 20 << 20

// UploadDocumentHandler handles POST /api/documents/upload (multipart form,
// field "file"). Only the returned id is meant to be kept by callers.
func (h *Handler) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.svc.UploadDocument(r.Context(), header.Filename, contentType, data)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"documentId": doc.ID,
		"fileName":   doc.FileName,
		"sizeBytes":  doc.SizeBytes,
	})
}

// GetDocumentHandler handles GET /api/documents/{documentId}, streaming the
// stored bytes back.
func (h *Handler) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	docID, ok := h.urlUUID(w, r, "documentId")
	if !ok {
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), docID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}
