// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package movie

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/kinora/internal/platform/middleware"
	requestutil "github.com/taibuivan/kinora/internal/platform/request"
	"github.com/taibuivan/kinora/internal/platform/respond"
	"github.com/taibuivan/kinora/internal/platform/sec"
)

// ListMeta is the metadata block of a listing response.
type ListMeta struct {
	Query Query `json:"query"`
	Total int   `json:"total"`
}

// Handler exposes the catalog over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a new movie handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted at /movies.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public
	router.Get("/", handler.listMovies)
	router.Get("/featured", handler.featuredMovies)
	router.Get("/genres", handler.listGenres)
	router.Get("/{id}", handler.getMovie)

	// Admin only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleAdmin))

		adminRoute.Post("/", handler.createMovie)
		adminRoute.Patch("/{id}", handler.updateMovie)
		adminRoute.Delete("/{id}", handler.deleteMovie)
	})

	return router
}

// AdminRoutes returns the router mounted at /admin.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Get("/stats", handler.stats)
	router.Post("/flush", handler.flush)

	return router
}

// # Public Handlers

func (handler *Handler) listMovies(writer http.ResponseWriter, request *http.Request) {
	query := Query{
		Search: requestutil.QueryParam(request, "search"),
		Genre:  requestutil.QueryParam(request, "genre"),
		Sort:   SortKey(requestutil.QueryParam(request, "sort")),
	}

	movies, effective := handler.service.List(request.Context(), query)
	respond.List(writer, movies, ListMeta{Query: effective, Total: len(movies)})
}

func (handler *Handler) featuredMovies(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Featured(request.Context()))
}

func (handler *Handler) listGenres(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Genres(request.Context()))
}

func (handler *Handler) getMovie(writer http.ResponseWriter, request *http.Request) {
	record, err := handler.service.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

// # Admin Handlers

func (handler *Handler) createMovie(writer http.ResponseWriter, request *http.Request) {
	var input MovieInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, record)
}

func (handler *Handler) updateMovie(writer http.ResponseWriter, request *http.Request) {
	var patch MoviePatch
	if err := requestutil.DecodeJSON(writer, request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Update(request.Context(), requestutil.ID(request, "id"), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) deleteMovie(writer http.ResponseWriter, request *http.Request) {
	handler.service.Delete(request.Context(), requestutil.ID(request, "id"))
	respond.NoContent(writer)
}

func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Stats(request.Context()))
}

func (handler *Handler) flush(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.Flush(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
