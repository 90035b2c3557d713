package router

import (
	"net/http"
	"strings"

	"github.com/Renal37/cardledger/internal/middlewares"
	"github.com/Renal37/cardledger/internal/models"
	"github.com/go-chi/chi/v5"
)

// GetCards отдает страницу карт.
func GetCards(w http.ResponseWriter, r *http.Request) {
	cardService, ok := middlewares.GetServiceFromContext[models.CardService](w, r, middlewares.CardServiceKey)
	if !ok {
		return
	}

	page, pageSize, ok := pageParams(w, r)
	if !ok {
		return
	}

	order := strings.ToLower(r.URL.Query().Get("order"))
	if order != "" && order != "asc" && order != "desc" {
		middlewares.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "order must be asc or desc")
		return
	}

	cards, err := cardService.CardsPage(r.Context(), models.CardQuery{
		Search:   r.URL.Query().Get("search"),
		Sort:     r.URL.Query().Get("sort"),
		Desc:     order == "desc",
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, cards)
}

// CreateCard выпускает новую карту.
func CreateCard(w http.ResponseWriter, r *http.Request) {
	card, ok := middlewares.GetParsedJSONData[models.NewCard](w, r)
	if !ok {
		return
	}
	cardService, ok := middlewares.GetServiceFromContext[models.CardService](w, r, middlewares.CardServiceKey)
	if !ok {
		return
	}
	user, ok := middlewares.GetUserFromContext(w, r)
	if !ok {
		return
	}

	result, err := cardService.CreateCard(r.Context(), user, card)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusCreated, result)
}

func UpdateLimit(w http.ResponseWriter, r *http.Request) {
	update, ok := middlewares.GetParsedJSONData[models.LimitUpdate](w, r)
	if !ok {
		return
	}
	cardService, ok := middlewares.GetServiceFromContext[models.CardService](w, r, middlewares.CardServiceKey)
	if !ok {
		return
	}
	user, ok := middlewares.GetUserFromContext(w, r)
	if !ok {
		return
	}

	result, err := cardService.UpdateLimit(r.Context(), user, chi.URLParam(r, "id"), *update.SpendingLimit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, result)
}

type cardCommand func(cardService models.CardService, r *http.Request, user models.User, cardID string) (models.CardActionResult, error)

// runCardCommand - общий обработчик команд без тела запроса.
func runCardCommand(command cardCommand) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cardService, ok := middlewares.GetServiceFromContext[models.CardService](w, r, middlewares.CardServiceKey)
		if !ok {
			return
		}
		user, ok := middlewares.GetUserFromContext(w, r)
		if !ok {
			return
		}

		result, err := command(cardService, r, user, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		middlewares.EncodeJSONResponse(w, http.StatusOK, result)
	}
}

var (
	FreezeCard = runCardCommand(func(s models.CardService, r *http.Request, user models.User, cardID string) (models.CardActionResult, error) {
		return s.Freeze(r.Context(), user, cardID)
	})
	UnfreezeCard = runCardCommand(func(s models.CardService, r *http.Request, user models.User, cardID string) (models.CardActionResult, error) {
		return s.Unfreeze(r.Context(), user, cardID)
	})
	DeleteCard = runCardCommand(func(s models.CardService, r *http.Request, user models.User, cardID string) (models.CardActionResult, error) {
		return s.Delete(r.Context(), user, cardID)
	})
)

// GetCardActions отдает журнал действий по карте.
func GetCardActions(w http.ResponseWriter, r *http.Request) {
	cardService, ok := middlewares.GetServiceFromContext[models.CardService](w, r, middlewares.CardServiceKey)
	if !ok {
		return
	}
	user, ok := middlewares.GetUserFromContext(w, r)
	if !ok {
		return
	}

	actions, err := cardService.ListCardActions(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, actions)
}
