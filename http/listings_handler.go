package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/yourorg/estate-api/internal/export"
	"github.com/yourorg/estate-api/internal/favorites"
	"github.com/yourorg/estate-api/listing"
)

type ListingsDeps struct {
	Source    listing.Source
	Favorites *favorites.Store
}

type ListingsResponse struct {
	listing.Page
	Query     listing.Query `json:"query"`
	Favorites []int64       `json:"favorites,omitempty"`
}

func RegisterListings(r chi.Router, d ListingsDeps) {
	r.Route("/listings", func(r chi.Router) {
		// POST JSON
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			var q listing.Query
			if err := json.NewDecoder(req.Body).Decode(&q); err != nil {
				WriteError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
				return
			}
			q.Normalize()
			if err := q.Validate(); err != nil {
				WriteErr(w, req, err)
				return
			}
			handleListings(w, req, d, q)
		})

		// GET query
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			q, err := listing.ParseQuery(req.URL.Query())
			if err != nil {
				WriteErr(w, req, err)
				return
			}
			handleListings(w, req, d, q)
		})

		r.Get("/facets", func(w http.ResponseWriter, req *http.Request) {
			f, err := d.Source.Facets(req.Context())
			if err != nil {
				WriteErr(w, req, err)
				return
			}
			render.JSON(w, req, map[string]any{
				"count":               f.Count,
				"types":               f.Types,
				"price_min":           f.PriceMin,
				"price_max":           f.PriceMax,
				"price_min_formatted": listing.FormatPrice(f.PriceMin),
				"price_max_formatted": listing.FormatPrice(f.PriceMax),
				"sorts":               listing.SortOptions(),
				"page_size":           listing.PageSize,
			})
		})

		r.Get("/export.xlsx", func(w http.ResponseWriter, req *http.Request) {
			q, err := listing.ParseQuery(req.URL.Query())
			if err != nil {
				WriteErr(w, req, err)
				return
			}
			q.Visible = listing.MaxVisible
			res, err := d.Source.Search(req.Context(), q)
			if err != nil {
				WriteErr(w, req, err)
				return
			}
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", `attachment; filename="listings.xlsx"`)
			if err := export.WriteXLSX(w, res.Items); err != nil {
				zap.L().Error("xlsx export failed", zap.Error(err))
			}
		})

		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, err := parseID(chi.URLParam(req, "id"))
			if err != nil {
				WriteErr(w, req, err)
				return
			}
			p, err := d.Source.Get(req.Context(), id)
			if err != nil {
				WriteErr(w, req, err)
				return
			}
			body := map[string]any{"property": listing.Card{Property: p, PriceFormatted: listing.FormatPrice(p.Price)}}
			if d.Favorites != nil {
				fav, err := d.Favorites.Has(req.Context(), SessionID(w, req, false), id)
				if err == nil {
					body["favorite"] = fav
				}
			}
			render.JSON(w, req, body)
		})
	})
}

func handleListings(w http.ResponseWriter, req *http.Request, d ListingsDeps, q listing.Query) {
	res, err := d.Source.Search(req.Context(), q)
	if err != nil {
		WriteErr(w, req, err)
		return
	}
	out := ListingsResponse{Page: res.Page(), Query: q}
	if d.Favorites != nil {
		if sid := SessionID(w, req, false); sid != "" {
			ids, err := d.Favorites.List(req.Context(), sid)
			if err != nil {
				zap.L().Warn("favorites lookup failed", zap.Error(err))
			}
			out.Favorites = ids
		}
	}
	render.JSON(w, req, out)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: property id %q", listing.ErrInvalidQuery, s)
	}
	return id, nil
}
