package bitquery

import (
	"slices"

	"github.com/alejandrodnm/dexledger/internal/domain"
)

const evmKey = "EVM"

// toRecords extrae los trades de la respuesta y los devuelve en orden cronológico.
// La API los entrega por bloque descendente.
func toRecords(resp *response, network string) ([]domain.TradeRecord, error) {
	evm, ok := resp.Data[evmKey]
	if !ok {
		return nil, &domain.LookupError{Kind: "network", Key: network}
	}

	records := make([]domain.TradeRecord, 0, len(evm.DEXTradeByTokens))
	for _, ti := range evm.DEXTradeByTokens {
		records = append(records, toRecord(ti))
	}
	slices.Reverse(records)
	return records, nil
}

func toRecord(ti tradeInfo) domain.TradeRecord {
	return domain.TradeRecord{
		BlockNumber:   ti.Block.Number,
		BlockTime:     ti.Block.Time,
		TxHash:        ti.Transaction.Hash,
		Sender:        ti.Transaction.From,
		Buyer:         ti.Trade.Buyer,
		Seller:        ti.Trade.Seller,
		BaseAmount:    ti.Trade.Amount,
		QuoteAmount:   ti.Trade.Side.Amount,
		Pool:          ti.Trade.Dex.Pair.SmartContract,
		BaseCurrency:  ti.Trade.Currency.SmartContract,
		QuoteCurrency: ti.Trade.Side.Currency.SmartContract,
		Protocol:      ti.Trade.Dex.ProtocolName,
	}
}
