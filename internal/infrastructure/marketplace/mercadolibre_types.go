package marketplace

// meliSearchResult is the response of /users/{id}/items/search
type meliSearchResult struct {
	Results []string   `json:"results"`
	Paging  meliPaging `json:"paging"`
}

type meliPaging struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// meliItem is the subset of /items/{id} the resolver needs
type meliItem struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Status            string          `json:"status"`
	SellerCustomField string          `json:"seller_custom_field"`
	Attributes        []meliAttribute `json:"attributes"`
	Variations        []meliVariation `json:"variations"`
}

type meliAttribute struct {
	ID        string `json:"id"`
	ValueName string `json:"value_name"`
}

type meliVariation struct {
	ID                int64           `json:"id"`
	SellerCustomField string          `json:"seller_custom_field"`
	Attributes        []meliAttribute `json:"attributes"`
}

// meliTokenResponse is the OAuth token endpoint response
type meliTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// meliOrderSearch is the response of /orders/search
type meliOrderSearch struct {
	Results []meliOrder `json:"results"`
	Paging  meliPaging  `json:"paging"`
}

type meliOrder struct {
	ID          int64           `json:"id"`
	Status      string          `json:"status"`
	DateCreated string          `json:"date_created"`
	OrderItems  []meliOrderItem `json:"order_items"`
}

type meliOrderItem struct {
	Item struct {
		ID                string `json:"id"`
		SellerSKU         string `json:"seller_sku"`
		SellerCustomField string `json:"seller_custom_field"`
		VariationID       int64  `json:"variation_id"`
	} `json:"item"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
