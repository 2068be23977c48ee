// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/phamduc/dokusha/internal/platform/request"
	"github.com/phamduc/dokusha/internal/platform/respond"
	"github.com/phamduc/dokusha/pkg/pagination"
)

// Handler implements the HTTP layer for comment operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new comment [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with comment endpoints. Reading is public;
// posting and deleting require authentication, enforced where mounted.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/chapters/{chapterID}", handler.listChapterComments)
	router.Post("/", handler.postComment)
	router.Delete("/{id}", handler.deleteComment)

	return router
}

/*
GET /api/v1/comments/chapters/{chapterID}.

Description: Retrieves a chapter's comments, newest first.

Response:
  - 200: []Comment: Paginated list
*/
func (handler *Handler) listChapterComments(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	chapterID := requestutil.Param(request, "chapterID")

	comments, total, err := handler.service.ListChapterComments(
		request.Context(), chapterID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comments,
		pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total, len(comments)))
}

/*
POST /api/v1/comments.

Description: Posts a comment as the authenticated user.

Response:
  - 201: Comment
  - 400: Validation failure
  - 401: Not authenticated
*/
func (handler *Handler) postComment(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment := &Comment{}
	if err := requestutil.DecodeJSON(request, comment); err != nil {
		respond.Error(writer, request, err)
		return
	}
	comment.UserID = userID

	if err := handler.service.PostComment(request.Context(), comment); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

/*
DELETE /api/v1/comments/{id}.

Description: Deletes the authenticated user's own comment.

Response:
  - 204: Deleted
  - 404: Not found or not the author
*/
func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteComment(request.Context(), requestutil.Param(request, "id"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
