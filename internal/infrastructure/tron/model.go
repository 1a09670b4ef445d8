package tron

import "encoding/json"

// accountTransactionsResponse is the TronGrid /v1/accounts/{address}/transactions envelope.
type accountTransactionsResponse struct {
	Data    []accountTransaction `json:"data"`
	Success bool                 `json:"success"`
}

type accountTransaction struct {
	TxID           string `json:"txID"`
	BlockNumber    int64  `json:"blockNumber"`
	BlockTimestamp int64  `json:"block_timestamp"`
	Ret            []struct {
		ContractRet string `json:"contractRet"`
	} `json:"ret"`
	RawData struct {
		Contract []struct {
			Type      string `json:"type"`
			Parameter struct {
				Value struct {
					Amount       json.Number `json:"amount"`
					OwnerAddress string      `json:"owner_address"`
					ToAddress    string      `json:"to_address"`
				} `json:"value"`
			} `json:"parameter"`
		} `json:"contract"`
	} `json:"raw_data"`
}

type tokenTransfersResponse struct {
	Data    []tokenTransfer `json:"data"`
	Success bool            `json:"success"`
}

type tokenTransfer struct {
	TransactionID  string `json:"transaction_id"`
	BlockTimestamp int64  `json:"block_timestamp"`
	From           string `json:"from"`
	To             string `json:"to"`
	Type           string `json:"type"`
	Value          string `json:"value"`
	TokenInfo      struct {
		Address  string `json:"address"`
		Decimals int32  `json:"decimals"`
		Symbol   string `json:"symbol"`
	} `json:"token_info"`
}
