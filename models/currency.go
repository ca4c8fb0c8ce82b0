package models

type Currency struct {
	ID   int    `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}

// DefaultCurrencies is the reference list installed when no external
// currency import has run.
var DefaultCurrencies = []Currency{
	{Code: "EUR", Name: "Euro"},
	{Code: "USD", Name: "US Dollar"},
	{Code: "GBP", Name: "British Pound"},
	{Code: "CHF", Name: "Swiss Franc"},
	{Code: "JPY", Name: "Japanese Yen"},
	{Code: "PLN", Name: "Polish Zloty"},
	{Code: "UAH", Name: "Ukrainian Hryvnia"},
	{Code: "BYN", Name: "Belarusian Ruble"},
	{Code: "RUB", Name: "Russian Ruble"},
}
