package router

import (
	"net/http"

	"github.com/Renal37/cardledger/internal/middlewares"
	"github.com/Renal37/cardledger/internal/models"
)

// GetTransactions отдает объединенную ленту операций.
func GetTransactions(w http.ResponseWriter, r *http.Request) {
	feedService, ok := middlewares.GetServiceFromContext[models.FeedService](w, r, middlewares.FeedServiceKey)
	if !ok {
		return
	}

	page, pageSize, ok := pageParams(w, r)
	if !ok {
		return
	}

	filter := models.FeedFilter{
		Type:   models.FeedType(r.URL.Query().Get("type")),
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}
	switch filter.Type {
	case "", models.FeedDeposit, models.FeedCard, models.FeedFee:
	default:
		middlewares.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "type must be one of: deposit, card, fee")
		return
	}

	feed, err := feedService.Page(r.Context(), filter, page, pageSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, feed)
}
