package bitquery

// DTOs raw de la API de Bitquery. Solo se usan dentro de este paquete.
// La conversión a domain.TradeRecord se hace en mapping.go.

// graphQLRequest es el body del POST al endpoint GraphQL.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables QueryVariables `json:"variables"`
}

// QueryVariables son las variables de la query DEXTradeByTokens.
type QueryVariables struct {
	Network string `json:"network"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
	Token   string `json:"token"`
	Pool    string `json:"pool"`
}

// response es la respuesta completa; también es el formato del snapshot en disco.
type response struct {
	Data   map[string]evmData `json:"data"`
	Errors []graphQLError     `json:"errors,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type evmData struct {
	DEXTradeByTokens []tradeInfo `json:"DEXTradeByTokens"`
}

type tradeInfo struct {
	Block       blockInfo   `json:"Block"`
	ChainID     string      `json:"ChainId"`
	Trade       tradeDetail `json:"Trade"`
	Transaction transaction `json:"Transaction"`
}

type blockInfo struct {
	Number string `json:"Number"`
	Time   string `json:"Time"`
}

// tradeDetail: Amount es el base asset; Side.Amount es el quote asset.
type tradeDetail struct {
	Amount   string   `json:"Amount"`
	Buyer    string   `json:"Buyer"`
	Seller   string   `json:"Seller"`
	Currency currency `json:"Currency"`
	Dex      dex      `json:"Dex"`
	Price    float64  `json:"Price"`
	Side     side     `json:"Side"`
}

type currency struct {
	SmartContract string `json:"SmartContract"`
	Symbol        string `json:"Symbol"`
}

type dex struct {
	ProtocolName string `json:"ProtocolName"`
	Pair         pair   `json:"Pair"`
}

type pair struct {
	SmartContract string `json:"SmartContract"`
}

type side struct {
	Amount   string   `json:"Amount"`
	Currency currency `json:"Currency"`
}

type transaction struct {
	Hash string `json:"Hash"`
	From string `json:"From"`
}
