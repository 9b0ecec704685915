package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/estate-api/internal/favorites"
	"github.com/yourorg/estate-api/listing"
)

type FavoritesDeps struct {
	Store  *favorites.Store
	Source listing.Source
}

func RegisterFavorites(r chi.Router, d FavoritesDeps) {
	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			sid := SessionID(w, req, false)
			ids, err := d.Store.List(req.Context(), sid)
			if err != nil {
				WriteErr(w, req, err)
				return
			}
			items := make([]listing.Property, 0, len(ids))
			for _, id := range ids {
				p, err := d.Source.Get(req.Context(), id)
				if err != nil {
					// listing withdrawn since it was saved
					continue
				}
				items = append(items, p)
			}
			render.JSON(w, req, map[string]any{"ids": ids, "items": listing.ToCards(items)})
		})

		r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
			favoriteAction(w, req, d, func(sid string, id int64) (bool, error) {
				return true, d.Store.Add(req.Context(), sid, id)
			})
		})
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			favoriteAction(w, req, d, func(sid string, id int64) (bool, error) {
				return false, d.Store.Remove(req.Context(), sid, id)
			})
		})
		r.Post("/{id}/toggle", func(w http.ResponseWriter, req *http.Request) {
			favoriteAction(w, req, d, func(sid string, id int64) (bool, error) {
				return d.Store.Toggle(req.Context(), sid, id)
			})
		})
	})
}

func favoriteAction(w http.ResponseWriter, req *http.Request, d FavoritesDeps, do func(sid string, id int64) (bool, error)) {
	id, err := parseID(chi.URLParam(req, "id"))
	if err != nil {
		WriteErr(w, req, err)
		return
	}
	if _, err := d.Source.Get(req.Context(), id); err != nil {
		WriteErr(w, req, err)
		return
	}
	sid := SessionID(w, req, true)
	fav, err := do(sid, id)
	if err != nil {
		WriteErr(w, req, err)
		return
	}
	render.JSON(w, req, map[string]any{"id": id, "favorite": fav})
}
