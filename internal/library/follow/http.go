// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package follow

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/phamduc/dokusha/internal/platform/request"
	"github.com/phamduc/dokusha/internal/platform/respond"
	"github.com/phamduc/dokusha/pkg/pagination"
	"github.com/phamduc/dokusha/pkg/query"
)

// Handler implements the HTTP layer for follows and the chapter feed.
type Handler struct {
	service *Service
}

// NewHandler constructs a new follow [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with follow endpoints. Every route acts on
// the authenticated user; mount behind RequireAuth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.followManga)
	router.Delete("/{source}/{mangaID}", handler.unfollowManga)
	router.Get("/", handler.listFollows)
	router.Get("/status", handler.followStatus)
	router.Get("/feed", handler.followedMangaFeed)

	return router
}

type followRequest struct {
	MangaID string `json:"manga_id"`
	Source  Source `json:"source"`
}

/*
POST /api/v1/follows.

Description: Subscribes the authenticated user to a manga.

Request:
  - manga_id: string (UUID)
  - source: "local" | "mangadex"

Response:
  - 201: Follow
  - 404: Local manga does not exist
  - 409: Already following
*/
func (handler *Handler) followManga(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input followRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.FollowManga(request.Context(), userID, input.MangaID, input.Source)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

/*
DELETE /api/v1/follows/{source}/{mangaID}.

Description: Removes a subscription.

Response:
  - 204: Removed
  - 404: Not following
*/
func (handler *Handler) unfollowManga(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	source := Source(requestutil.Param(request, "source"))
	mangaID := requestutil.Param(request, "mangaID")

	if err := handler.service.UnfollowManga(request.Context(), userID, mangaID, source); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GET /api/v1/follows.

Description: Lists the user's subscriptions, newest first. Limit is clamped
to 50.

Response:
  - 200: []Follow: Paginated list
*/
func (handler *Handler) listFollows(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)

	follows, metadata, err := handler.service.ListFollows(request.Context(), userID, paginationParams.Page, paginationParams.Limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, follows, metadata)
}

/*
GET /api/v1/follows/status.

Description: Checks whether the user follows one manga.

Request:
  - manga_id: string (UUID)
  - source: "local" | "mangadex"

Response:
  - 200: Status: {is_following, follow_id?}
*/
func (handler *Handler) followStatus(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	queryParams := request.URL.Query()
	status, err := handler.service.IsFollowing(request.Context(), userID,
		queryParams.Get("manga_id"), Source(queryParams.Get("source")))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, status)
}

/*
GET /api/v1/follows/feed.

Description: Returns the aggregated chapter feed across everything the user
follows on the upstream source, newest first.

Request:
  - page, limit: int (limit ≤ 100, default 20)
  - date_range: "today" | "week" | "month" (optional)
  - translated_language: string (comma-separated language codes, optional)

Response:
  - 200: FeedResult
*/
func (handler *Handler) followedMangaFeed(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	feedQuery := FeedQuery{
		Page:                paginationParams.Page,
		Limit:               paginationParams.Limit,
		DateRange:           queryParams.Get("date_range"),
		TranslatedLanguages: query.StringSlice(queryParams.Get("translated_language")),
	}

	result, err := handler.service.GetFollowedMangaFeed(request.Context(), userID, feedQuery)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, result)
}
