package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/coursemart/internal/currency"
)

type ratesResponse struct {
	Base  currency.Code                     `json:"base"`
	Rates map[currency.Code]decimal.Decimal `json:"rates"`
}

// GetExchangeRates возвращает таблицу курсов относительно базовой валюты.
func (h *Handler) GetExchangeRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ratesResponse{
		Base:  currency.Base,
		Rates: currency.ExchangeRates(),
	})
}

type convertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  currency.Code   `json:"currency"`
	Formatted string          `json:"formatted"`
}

// Convert пересчитывает сумму amount из валюты from в валюту to.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	from, err := currency.ParseCode(q.Get("from"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	to, err := currency.ParseCode(q.Get("to"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	converted, err := currency.Convert(amount, from, to)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	formatted, err := currency.Format(converted, to)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Amount:    converted,
		Currency:  to,
		Formatted: formatted,
	})
}
