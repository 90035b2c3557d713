package router

import (
	"net/http"

	"github.com/Renal37/cardledger/internal/middlewares"
	"github.com/Renal37/cardledger/internal/models"
)

// GetBalance отдает баланс и историю.
func GetBalance(w http.ResponseWriter, r *http.Request) {
	balanceService, ok := middlewares.GetServiceFromContext[models.BalanceService](w, r, middlewares.BalanceServiceKey)
	if !ok {
		return
	}

	balance, err := balanceService.GetBalance(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, balance)
}

func GetTiers(w http.ResponseWriter, r *http.Request) {
	feeService, ok := middlewares.GetServiceFromContext[models.FeeService](w, r, middlewares.FeeServiceKey)
	if !ok {
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, feeService.Tiers())
}

// QuoteFee отвечает 409, если за время ожидания пришел более новый запрос
// того же пользователя на то же действие.
func QuoteFee(w http.ResponseWriter, r *http.Request) {
	request, ok := middlewares.GetParsedJSONData[models.FeeRequest](w, r)
	if !ok {
		return
	}
	feeService, ok := middlewares.GetServiceFromContext[models.FeeService](w, r, middlewares.FeeServiceKey)
	if !ok {
		return
	}
	user, ok := middlewares.GetUserFromContext(w, r)
	if !ok {
		return
	}

	quote, err := feeService.Quote(r.Context(), user, request.Action, *request.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, quote)
}
