package marketplace

import "encoding/xml"

// falabellaEnvelope is the JSON response envelope used by the seller-center
// API. Exactly one of SuccessResponse / ErrorResponse is set.
type falabellaEnvelope struct {
	SuccessResponse *falabellaSuccess `json:"SuccessResponse,omitempty"`
	ErrorResponse   *falabellaError   `json:"ErrorResponse,omitempty"`
}

// IsSuccess returns true when the envelope carries a success body
func (e *falabellaEnvelope) IsSuccess() bool {
	return e.SuccessResponse != nil && e.ErrorResponse == nil
}

type falabellaSuccess struct {
	Head falabellaHead        `json:"Head"`
	Body falabellaSuccessBody `json:"Body"`
}

type falabellaHead struct {
	RequestID     string `json:"RequestId"`
	RequestAction string `json:"RequestAction"`
	ResponseType  string `json:"ResponseType"`
	Timestamp     string `json:"Timestamp"`
}

type falabellaSuccessBody struct {
	Orders     []falabellaOrder     `json:"Orders,omitempty"`
	OrderItems []falabellaOrderItem `json:"OrderItems,omitempty"`
	Products   []falabellaProduct   `json:"Products,omitempty"`
}

type falabellaError struct {
	Head falabellaErrorHead `json:"Head"`
}

type falabellaErrorHead struct {
	RequestAction string `json:"RequestAction"`
	ErrorType     string `json:"ErrorType"`
	ErrorCode     string `json:"ErrorCode"`
	ErrorMessage  string `json:"ErrorMessage"`
}

type falabellaOrder struct {
	OrderID     string `json:"OrderId"`
	OrderNumber string `json:"OrderNumber"`
	Statuses    struct {
		Status []string `json:"Status"`
	} `json:"Statuses"`
	CreatedAt string `json:"CreatedAt"`
}

type falabellaOrderItem struct {
	OrderItemID string `json:"OrderItemId"`
	OrderID     string `json:"OrderId"`
	SKU         string `json:"Sku"`
	ShopSKU     string `json:"ShopSku"`
	Quantity    string `json:"Quantity"`
	ItemPrice   string `json:"ItemPrice"`
	Status      string `json:"Status"`
}

type falabellaProduct struct {
	SellerSKU string `json:"SellerSku"`
	ShopSKU   string `json:"ShopSku"`
	Name      string `json:"Name"`
	Status    string `json:"Status"`
	Quantity  string `json:"Quantity"`
}

// falabellaProductRequest is the XML body for stock updates. The element
// layout follows the request schema used by the seller-center API.
type falabellaProductRequest struct {
	XMLName xml.Name               `xml:"Request"`
	Product falabellaProductUpdate `xml:"Product"`
}

type falabellaProductUpdate struct {
	SellerSKU string `xml:"SellerSku"`
	Quantity  int64  `xml:"Quantity"`
}
