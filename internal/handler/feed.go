package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/AlexZinkM/bitebudget-wallet/feed"
	"github.com/AlexZinkM/bitebudget-wallet/internal/model"
)

// FeedHandler serves the social spending feed
type FeedHandler struct {
	feed   *feed.Feed
	logger *zap.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(f *feed.Feed, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{feed: f, logger: logger.Named("handler")}
}

// Posts handles GET and POST /feed
// @Summary      List or create posts
// @Description  GET returns the 50 newest posts, POST adds a spending entry
// @Tags         feed
// @Accept       json
// @Produce      json
// @Param        request  body      model.PostRequest  false  "Post data (POST only)"
// @Success      200      {object}  model.FeedResponse
// @Success      201      {object}  model.FeedItem
// @Failure      400      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /feed [get]
// @Router       /feed [post]
func (h *FeedHandler) Posts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.feed.Recent(r.Context()))
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
	}
}

func (h *FeedHandler) create(w http.ResponseWriter, r *http.Request) {
	var req model.PostRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
		return
	}

	item, err := h.feed.Post(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error(), codeUpstream)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// Like handles POST /feed/like
// @Summary      Like or unlike a post
// @Tags         feed
// @Produce      json
// @Param        id   query     int  true  "Post ID"
// @Success      200  {object}  model.FeedItem
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /feed/like [post]
func (h *FeedHandler) Like(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id", codeBadRequest)
		return
	}

	item, err := h.feed.ToggleLike(r.Context(), id)
	if err != nil {
		if errors.Is(err, feed.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, err.Error(), codeNotFound)
			return
		}
		writeError(w, http.StatusBadGateway, err.Error(), codeUpstream)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Summary handles GET /feed/summary
// @Summary      Get spending summary
// @Description  Totals the user's posts against their budget
// @Tags         feed
// @Produce      json
// @Param        userID  query     string  true  "User ID"
// @Success      200     {object}  model.SummaryResponse
// @Failure      400     {object}  model.ErrorResponse
// @Router       /feed/summary [get]
func (h *FeedHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := h.feed.Summary(r.Context(), r.URL.Query().Get("userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Budget handles PUT /feed/budget
// @Summary      Set budget
// @Tags         feed
// @Accept       json
// @Param        request  body  model.BudgetRequest  true  "Budget"
// @Success      204
// @Failure      400  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /feed/budget [put]
func (h *FeedHandler) Budget(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPut) {
		return
	}

	var req model.BudgetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
		return
	}

	if err := h.feed.SetBudget(r.Context(), req.UserID, req.Budget); err != nil {
		writeError(w, http.StatusBadGateway, err.Error(), codeUpstream)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Friends handles GET and POST /feed/friends
// @Summary      List friends or send a friend request
// @Description  GET lists friends and pending requests of userID, POST files a request
// @Tags         friends
// @Accept       json
// @Produce      json
// @Param        userID   query     string               false  "User ID (GET only)"
// @Param        request  body      model.FriendRequest  false  "Request (POST only)"
// @Success      200      {object}  model.FriendsResponse
// @Success      204
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /feed/friends [get]
// @Router       /feed/friends [post]
func (h *FeedHandler) Friends(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		friends, err := h.feed.Friends(r.Context(), r.URL.Query().Get("userID"))
		if err != nil {
			h.writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, friends)
	case http.MethodPost:
		var req model.FriendRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
			return
		}
		if err := h.feed.RequestFriend(r.Context(), req.FromEmail, req.ToEmail); err != nil {
			h.writeFeedError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
	}
}

// AnswerFriend handles POST /feed/friends/answer
// @Summary      Accept or decline a friend request
// @Tags         friends
// @Accept       json
// @Param        request  body  model.FriendAnswer  true  "Answer"
// @Success      204
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /feed/friends/answer [post]
func (h *FeedHandler) AnswerFriend(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.FriendAnswer
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
		return
	}

	if err := h.feed.AnswerRequest(r.Context(), req.UserID, req.RequesterEmail, req.Accept); err != nil {
		h.writeFeedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FeedHandler) writeFeedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feed.ErrUserRequired), errors.Is(err, feed.ErrSelfRequest):
		writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
	case errors.Is(err, feed.ErrUserNotFound), errors.Is(err, feed.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, err.Error(), codeNotFound)
	default:
		h.logger.Error("feed request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error(), codeUpstream)
	}
}
