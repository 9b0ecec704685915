package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/estate-api/internal/catalog"
	"github.com/yourorg/estate-api/listing"
)

const maxFrames = 120

type SiteDeps struct {
	Catalog *catalog.Catalog
}

type projectView struct {
	catalog.Project
	ImageURL string `json:"image_url"`
}

type counterView struct {
	catalog.Counter
	Frames []int `json:"frames,omitempty"`
}

func RegisterSite(r chi.Router, d SiteDeps) {
	content := d.Catalog.Content
	r.Route("/site", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, map[string]any{"company": content.Company, "navigation": content.Navigation})
		})

		r.Get("/hero", func(w http.ResponseWriter, req *http.Request) {
			index, ok := intParam(w, req, "index")
			if !ok {
				return
			}
			render.JSON(w, req, map[string]any{
				"autoplay_ms": content.Hero.AutoplayMS,
				"slides":      content.Hero.Slides,
				"window":      content.Hero.Window(index),
			})
		})

		r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
			frames, ok := intParam(w, req, "frames")
			if !ok {
				return
			}
			frames = min(max(frames, 0), maxFrames)
			counters := make([]counterView, 0, len(content.Stats.Counters))
			for _, c := range content.Stats.Counters {
				counters = append(counters, counterView{Counter: c, Frames: c.Frames(frames)})
			}
			render.JSON(w, req, map[string]any{"heading": content.Stats.Heading, "counters": counters})
		})

		r.Get("/featured", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, map[string]any{"items": listing.ToCards(content.Featured)})
		})

		r.Get("/projects", func(w http.ResponseWriter, req *http.Request) {
			width, ok := intParam(w, req, "width")
			if !ok {
				return
			}
			out := make([]projectView, 0, len(content.Projects))
			for _, p := range content.Projects {
				out = append(out, projectView{Project: p, ImageURL: p.Image.ImageFor(width)})
			}
			render.JSON(w, req, map[string]any{"items": out})
		})

		r.Get("/investment", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, content.Investment)
		})
		r.Get("/navigation", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, map[string]any{"items": content.Navigation})
		})
		r.Get("/footer", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, content.Footer)
		})
	})
}

// intParam reads an optional integer query parameter; absent means 0.
func intParam(w http.ResponseWriter, req *http.Request, name string) (int, bool) {
	v := req.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		WriteError(w, req, http.StatusBadRequest, "invalid_param", name+" must be an integer")
		return 0, false
	}
	return n, true
}
