// Package api defines the JSON wire format of the remote cart service.
package api

import (
	"fmt"

	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type MoneyDTO struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type CartItemDTO struct {
	CartID    string   `json:"cartId"`
	ProductID string   `json:"productId"`
	Price     MoneyDTO `json:"price"`
	Quantity  int      `json:"quantity"`
}

type AddItemRequest struct {
	ProductID string   `json:"productId"`
	Price     MoneyDTO `json:"price"`
	Quantity  int      `json:"quantity"`
}

type UpdateItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type DeleteItemRequest struct {
	ProductID string `json:"productId"`
}

type AckResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func MoneyFromDomain(m domain.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount, Currency: m.Currency.String()}
}

func (d MoneyDTO) ToDomain() (domain.Money, error) {
	parsedCurrency, err := currency.ParseISO(d.Currency)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", d.Currency, err)
	}

	return domain.Money{Amount: d.Amount, Currency: parsedCurrency}, nil
}

func CartItemFromDomain(item domain.CartItem) CartItemDTO {
	return CartItemDTO{
		CartID:    item.CartID.String(),
		ProductID: item.ProductID,
		Price:     MoneyFromDomain(item.Price),
		Quantity:  item.Quantity,
	}
}

func (d CartItemDTO) ToDomain() (domain.CartItem, error) {
	price, err := d.Price.ToDomain()
	if err != nil {
		return domain.CartItem{}, err
	}

	return domain.CartItem{
		CartID:    domain.CartID(d.CartID),
		ProductID: d.ProductID,
		Price:     price,
		Quantity:  d.Quantity,
	}, nil
}

func CartItemsFromDomain(items []domain.CartItem) []CartItemDTO {
	dtos := make([]CartItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, CartItemFromDomain(item))
	}
	return dtos
}

func CartItemsToDomain(dtos []CartItemDTO) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0, len(dtos))
	for _, dto := range dtos {
		item, err := dto.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("product[%s]: %w", dto.ProductID, err)
		}
		items = append(items, item)
	}
	return items, nil
}
