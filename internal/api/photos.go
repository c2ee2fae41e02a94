package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipartOverhead is the room left for form fields beside the photo
const multipartOverhead = 1 << 20

func (d Dependencies) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if d.MaxPhotoBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, d.MaxPhotoBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid multipart body", d.Log)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("photo")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "photo field required", d.Log)
		return
	}
	defer file.Close()

	photo, err := d.Registry.AttachPhoto(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeServiceError(w, err, d.Log)
		return
	}

	writeJSON(w, http.StatusCreated, photo)
}

func (d Dependencies) getPhoto(w http.ResponseWriter, r *http.Request) {
	photo, rc, err := d.Registry.OpenPhoto(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "photoId"))
	if err != nil {
		writeServiceError(w, err, d.Log)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(photo.Size, 10))
	w.Header().Set("ETag", `"`+photo.SHA256+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		d.Log.Warn("Failed to stream photo", zap.String("photo_id", photo.ID), zap.Error(err))
	}
}
