package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type DepositRequest struct {
	Amount int64 `json:"amount"`
}

type AccountResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

type StepResponse struct {
	Step int64 `json:"step"`
}
