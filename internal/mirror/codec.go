package mirror

import (
	"encoding/json"
	"fmt"

	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type itemRecord struct {
	CartID        string          `json:"cartId"`
	ProductID     string          `json:"productId"`
	PriceAmount   decimal.Decimal `json:"priceAmount"`
	PriceCurrency string          `json:"priceCurrency"`
	Quantity      int             `json:"quantity"`
}

func encodeItems(items []domain.CartItem) (string, error) {
	records := make([]itemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, itemRecord{
			CartID:        item.CartID.String(),
			ProductID:     item.ProductID,
			PriceAmount:   item.Price.Amount,
			PriceCurrency: item.Price.Currency.String(),
			Quantity:      item.Quantity,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}

	return string(data), nil
}

func decodeItems(value string) ([]domain.CartItem, error) {
	var records []itemRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	items := make([]domain.CartItem, 0, len(records))
	for _, record := range records {
		parsedCurrency, err := currency.ParseISO(record.PriceCurrency)
		if err != nil {
			return nil, fmt.Errorf("currency[%s] is not valid: %w", record.PriceCurrency, err)
		}

		items = append(items, domain.CartItem{
			CartID:    domain.CartID(record.CartID),
			ProductID: record.ProductID,
			Price:     domain.Money{Amount: record.PriceAmount, Currency: parsedCurrency},
			Quantity:  record.Quantity,
		})
	}

	return items, nil
}
