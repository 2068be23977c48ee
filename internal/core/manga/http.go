// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

// HTTP layer for the local catalog.
//
// Routing strategy:
//   - Public (v1): Listing and detail views (GET /manga).
//   - Restricted: Catalog curation (POST/PATCH/DELETE) requires moderator
//     role, enforced where AdminRoutes is mounted.

package manga

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/phamduc/dokusha/internal/platform/request"
	"github.com/phamduc/dokusha/internal/platform/respond"
	"github.com/phamduc/dokusha/pkg/pagination"
)

// Handler implements the HTTP layer for local catalog operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new manga [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with public catalog endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listManga)
	router.Get("/{identifier}", handler.getManga)

	return router
}

// AdminRoutes returns a [chi.Router] with curation endpoints. Mount behind
// a moderator role requirement.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.createManga)
	router.Patch("/{id}", handler.updateManga)
	router.Delete("/{id}", handler.deleteManga)

	return router
}

/*
GET /api/v1/manga.

Description: Retrieves a paginated list of locally-hosted titles.

Request:
  - q: string (Title search)
  - status: string (Publication status filter)
  - limit, page: int

Response:
  - 200: []Manga: Paginated list
*/
func (handler *Handler) listManga(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:  queryParams.Get("q"),
		Status: queryParams.Get("status"),
	}

	mangas, total, err := handler.service.ListManga(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, mangas,
		pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total, len(mangas)))
}

/*
GET /api/v1/manga/{identifier}.

Description: Retrieves full details of a title by UUID or slug.

Response:
  - 200: Manga
  - 404: Not found
*/
func (handler *Handler) getManga(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.Param(request, "identifier")

	manga, err := handler.service.GetManga(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, manga)
}

/*
POST /api/v1/admin/manga.

Description: Creates a locally-hosted title.

Response:
  - 201: Manga
  - 400: Validation failure
*/
func (handler *Handler) createManga(writer http.ResponseWriter, request *http.Request) {
	manga := &Manga{}
	if err := requestutil.DecodeJSON(request, manga); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateManga(request.Context(), manga); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, manga)
}

/*
PATCH /api/v1/admin/manga/{id}.

Description: Updates the mutable fields of a title.

Response:
  - 200: Manga
  - 404: Not found
*/
func (handler *Handler) updateManga(writer http.ResponseWriter, request *http.Request) {
	manga := &Manga{}
	if err := requestutil.DecodeJSON(request, manga); err != nil {
		respond.Error(writer, request, err)
		return
	}
	manga.ID = requestutil.Param(request, "id")

	if err := handler.service.UpdateManga(request.Context(), manga); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, manga)
}

/*
DELETE /api/v1/admin/manga/{id}.

Description: Soft-deletes a title.

Response:
  - 204: Deleted
  - 404: Not found
*/
func (handler *Handler) deleteManga(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteManga(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
