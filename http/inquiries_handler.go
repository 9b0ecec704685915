package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/yourorg/estate-api/listing"
)

type InquiriesDeps struct {
	Store  listing.InquiryStore
	Source listing.Source
}

func RegisterInquiries(r chi.Router, d InquiriesDeps) {
	r.Post("/inquiries", func(w http.ResponseWriter, req *http.Request) {
		var in listing.Inquiry
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			WriteError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		in.Normalize()
		if err := in.Validate(); err != nil {
			WriteErr(w, req, err)
			return
		}
		if in.PropertyID != nil {
			if _, err := d.Source.Get(req.Context(), *in.PropertyID); err != nil {
				WriteErr(w, req, err)
				return
			}
		}
		saved, err := d.Store.CreateInquiry(req.Context(), in)
		if err != nil {
			WriteErr(w, req, err)
			return
		}
		zap.L().Info("inquiry received", zap.String("id", saved.ID), zap.String("kind", string(saved.Kind)))
		render.Status(req, http.StatusCreated)
		render.JSON(w, req, saved)
	})
}
