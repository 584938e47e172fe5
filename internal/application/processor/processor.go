package processor

// processor.go: recorre los trades en orden cronológico y deriva, por trade:
//   - lado (Buy/Sell) comparando el buyer con el pool configurado
//   - precio quote/base
//   - apertura o cierre FIFO en el ledger de la cuenta que firma la tx
//   - open interest y PnL no realizado sumados sobre TODAS las cuentas
//   - señales para el agregador de barras y el record anotado
//
// El orden de entrada es parte de la corrección: el caller entrega la secuencia
// ya en orden cronológico.

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/dexledger/internal/domain"
)

const defaultBarThreshold = 10.0

// Config contiene los parámetros del core.
type Config struct {
	Pool          string
	BarThreshold  float64 // base units por barra
	Criteria      domain.Criteria
	SkipMalformed bool // saltar records con ParseError en vez de abortar
}

// Result es la salida de una ejecución del processor.
type Result struct {
	Analysis   domain.Analysis
	Processed  int
	Skipped    int
	LastPrice  float64
	PendingQty float64 // cantidad base de la barra parcial descartada
}

// Processor es el driver secuencial. No es safe para uso concurrente.
type Processor struct {
	cfg Config
}

// New crea un Processor. Un threshold no positivo se reemplaza por el default.
func New(cfg Config) *Processor {
	if cfg.BarThreshold <= 0 {
		cfg.BarThreshold = defaultBarThreshold
	}
	return &Processor{cfg: cfg}
}

// Process aplica records sobre reg y devuelve el Analysis ensamblado.
// reg pertenece al caller: puede venir vacío o con ledgers de un Process previo.
//
// Cualquier error se devuelve de inmediato con el índice del trade; con
// SkipMalformed sólo los *domain.ParseError se registran y se saltan.
func (p *Processor) Process(reg *domain.Registry, records []domain.TradeRecord) (Result, error) {
	var (
		res  Result
		agg  = domain.NewBarAggregator(p.cfg.BarThreshold)
		txs  []domain.TradeTx
		crit = p.cfg.Criteria
	)
	if crit.Transactions {
		txs = make([]domain.TradeTx, 0, len(records))
	}

	for i, rec := range records {
		trade, err := domain.DecodeTrade(i, rec)
		if err != nil {
			var perr *domain.ParseError
			if p.cfg.SkipMalformed && errors.As(err, &perr) {
				slog.Warn("skipping malformed trade",
					"index", perr.Index,
					"field", perr.Field,
					"value", perr.Value,
					"tx", rec.TxHash,
				)
				res.Skipped++
				continue
			}
			return Result{}, fmt.Errorf("processor.Process: %w", err)
		}

		if trade.Pool != "" && trade.Pool != p.cfg.Pool {
			return Result{}, fmt.Errorf("processor.Process: trade %d (tx %s) references pool %s: %w",
				i, trade.TxHash, trade.Pool, &domain.LookupError{Kind: "pool", Key: p.cfg.Pool})
		}

		tx, bar, err := p.apply(reg, i, trade)
		if err != nil {
			return Result{}, fmt.Errorf("processor.Process: %w", err)
		}

		if crit.AnyBars() {
			agg.Update(bar)
		}
		if crit.Transactions {
			txs = append(txs, tx)
		}
		res.Processed++
		res.LastPrice = tx.Price
	}

	res.Analysis = domain.Assemble(crit, agg.DollarBars(), agg.VolumeBars(), agg.PnlBars(), txs)
	if agg.Pending() {
		res.PendingQty = agg.CumulativeQty()
	}

	slog.Debug("trades processed",
		"processed", res.Processed,
		"skipped", res.Skipped,
		"accounts", reg.Len(),
		"dollar_bars", len(agg.DollarBars()),
		"pending_qty", res.PendingQty,
	)
	return res, nil
}

// apply actualiza el ledger de la cuenta y devuelve el record anotado y la
// entrada para el agregador.
func (p *Processor) apply(reg *domain.Registry, index int, trade domain.Trade) (domain.TradeTx, domain.BarInput, error) {
	side := domain.ClassifySide(trade, p.cfg.Pool)

	price, err := domain.Price(index, trade)
	if err != nil {
		return domain.TradeTx{}, domain.BarInput{}, err
	}

	ledger := reg.Ledger(trade.Sender)
	ledger.Trades++

	var internal, external, volBuy, volSell float64
	if side == domain.SideBuy {
		ledger.OpenPosition(trade.BaseAmount, price)
		volBuy = trade.QuoteAmount
	} else {
		internal, external = ledger.ClosePositions(trade.BaseAmount, price)
		volSell = trade.QuoteAmount
	}

	tx := domain.TradeTx{
		TxHash:               trade.TxHash,
		BlockNumber:          trade.BlockNumber,
		BlockTime:            trade.BlockTime,
		Side:                 side,
		VolumeBase:           trade.BaseAmount,
		VolumeQuote:          trade.QuoteAmount,
		Price:                price,
		Account:              trade.Sender,
		AccountTradeCount:    ledger.Trades,
		AccountWon:           ledger.CountProfit,
		AccountLost:          ledger.CountLoss,
		AccountOpenPositions: ledger.CountOpenPositions(),
		UnrealizedPnL:        reg.UnrealizedPnL(price),
		RealizedPnL:          internal,
		ExternalPnL:          external,
		OpenInterest:         reg.OpenInterest(),
	}

	bar := domain.BarInput{
		Datetime:    trade.BlockTime,
		Price:       price,
		BaseQty:     trade.BaseAmount,
		VolumeBuy:   volBuy,
		VolumeSell:  volSell,
		InternalPnL: internal,
		ExternalPnL: external,
	}
	return tx, bar, nil
}
