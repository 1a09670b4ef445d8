package tron

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	apiKeyHeader     = "TRON-PRO-API-KEY"
	transferContract = "TransferContract"
	successResult    = "SUCCESS"
)

type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	OnlyConfirmed bool
}

// Client reads account history from a TronGrid-compatible indexer.
type Client struct {
	baseURL       string
	apiKey        string
	onlyConfirmed bool
	client        *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		onlyConfirmed: cfg.OnlyConfirmed,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetAccountTransfers returns native TRX transfers received by address, newest first.
func (c *Client) GetAccountTransfers(ctx context.Context, address string, limit int) ([]domain.NativeTransfer, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("order_by", "block_timestamp,desc")
	query.Set("only_to", "true")
	if c.onlyConfirmed {
		query.Set("only_confirmed", "true")
	}

	var response accountTransactionsResponse
	if err := c.get(ctx, "/v1/accounts/"+url.PathEscape(address)+"/transactions", query, &response); err != nil {
		return nil, err
	}

	transfers := make([]domain.NativeTransfer, 0, len(response.Data))
	for _, tx := range response.Data {
		success := len(tx.Ret) > 0 && tx.Ret[0].ContractRet == successResult
		for _, contract := range tx.RawData.Contract {
			if contract.Type != transferContract {
				continue
			}
			value := contract.Parameter.Value
			amount, err := baseUnitsToAmount(value.Amount.String())
			if err != nil {
				return nil, fmt.Errorf("%w: bad amount in tx %s: %v", domain.ErrUpstream, tx.TxID, err)
			}
			transfers = append(transfers, domain.NativeTransfer{
				TxID:           tx.TxID,
				FromAddress:    value.OwnerAddress,
				ToAddress:      value.ToAddress,
				Amount:         amount,
				BlockNumber:    tx.BlockNumber,
				BlockTimestamp: time.UnixMilli(tx.BlockTimestamp).UTC(),
				Success:        success,
			})
		}
	}
	return transfers, nil
}

// GetTokenTransfers returns TRC20 transfers of contractAddress touching address, newest first.
func (c *Client) GetTokenTransfers(ctx context.Context, address, contractAddress string, limit int) ([]domain.TokenTransfer, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("contract_address", contractAddress)
	query.Set("order_by", "block_timestamp,desc")
	if c.onlyConfirmed {
		query.Set("only_confirmed", "true")
	}

	var response tokenTransfersResponse
	if err := c.get(ctx, "/v1/accounts/"+url.PathEscape(address)+"/transactions/trc20", query, &response); err != nil {
		return nil, err
	}

	transfers := make([]domain.TokenTransfer, 0, len(response.Data))
	for _, item := range response.Data {
		amount, err := baseUnitsToAmount(item.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: bad value in transfer %s: %v", domain.ErrUpstream, item.TransactionID, err)
		}
		contract := item.TokenInfo.Address
		if contract == "" {
			contract = contractAddress
		}
		transfers = append(transfers, domain.TokenTransfer{
			TransactionID:   item.TransactionID,
			FromAddress:     item.From,
			ToAddress:       item.To,
			ContractAddress: contract,
			Amount:          amount,
			BlockTimestamp:  time.UnixMilli(item.BlockTimestamp).UTC(),
		})
	}
	return transfers, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: tron api request failed: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: tron api returned status %d", domain.ErrUpstream, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to parse tron api response: %v", domain.ErrUpstream, err)
	}
	return nil
}

// baseUnitsToAmount converts sun / token base units into a 6-decimal amount.
func baseUnitsToAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	units, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return units.Shift(-domain.AssetDecimals), nil
}
