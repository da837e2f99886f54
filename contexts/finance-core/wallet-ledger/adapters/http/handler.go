package httpadapter

import (
	"context"
	"log/slog"

	"electra/contexts/finance-core/wallet-ledger/application"
	httptransport "electra/contexts/finance-core/wallet-ledger/transport/http"
)

type Handler struct {
	Ledger *application.LedgerService
	Logger *slog.Logger
}

func (h Handler) DepositHandler(ctx context.Context, caller string, req httptransport.DepositRequest) (httptransport.AccountResponse, error) {
	account, err := h.Ledger.Deposit(ctx, caller, req.Amount)
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return httptransport.AccountResponse{
		AccountID: account.AccountID,
		Balance:   account.Balance,
	}, nil
}

func (h Handler) BalanceHandler(ctx context.Context, accountID string) (httptransport.AccountResponse, error) {
	balance, err := h.Ledger.Balance(ctx, accountID)
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return httptransport.AccountResponse{
		AccountID: accountID,
		Balance:   balance,
	}, nil
}

func (h Handler) StepHandler(ctx context.Context) (httptransport.StepResponse, error) {
	step, err := h.Ledger.CurrentStep(ctx)
	if err != nil {
		return httptransport.StepResponse{}, err
	}
	return httptransport.StepResponse{Step: step}, nil
}
