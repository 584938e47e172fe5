package domain

// PositionOpen es un lote comprado: cantidad fija, remanente decreciente y precio fijo.
// Invariante: 0 <= Remaining <= Quantity.
type PositionOpen struct {
	Quantity  float64 // base units al abrir
	Remaining float64 // base units aún sin vender
	Price     float64 // quote por base unit
}

// PositionClosed registra la porción de un lote consumida por un sell.
type PositionClosed struct {
	Quantity      float64
	SellPrice     float64
	PurchasePrice float64
	PnL           float64
}

// AddressLedger lleva las posiciones de una cuenta con matching FIFO.
// No es safe para uso concurrente.
type AddressLedger struct {
	lots   []PositionOpen
	closed []PositionClosed

	CountProfit uint64
	CountLoss   uint64

	// Acumulados de PnL realizado a lo largo de la vida del ledger.
	RealizedInternal float64
	RealizedExternal float64

	// Trades es el número de trades de esta cuenta procesados hasta ahora.
	Trades uint64
}

// NewAddressLedger crea un ledger vacío.
func NewAddressLedger() *AddressLedger {
	return &AddressLedger{}
}

// OpenPosition añade un lote nuevo al final de la cola FIFO.
func (l *AddressLedger) OpenPosition(qty, price float64) {
	l.lots = append(l.lots, PositionOpen{Quantity: qty, Remaining: qty, Price: price})
}

// ClosePositions consume lotes del más antiguo al más nuevo hasta cubrir sellQty.
//
// Cada porción consumida suma (sellPrice - lot.Price) × consumido al PnL interno
// y cuenta como ganadora o perdedora si su PnL es estrictamente positivo o negativo.
// La cantidad vendida que excede el inventario rastreado no tiene coste base:
// se devuelve como PnL externo = sellPrice × exceso.
func (l *AddressLedger) ClosePositions(sellQty, sellPrice float64) (internal, external float64) {
	left := sellQty

	for i := range l.lots {
		if left <= 0 {
			break
		}
		lot := &l.lots[i]
		if lot.Remaining <= 0 {
			continue
		}

		var used float64
		if left >= lot.Remaining {
			used = lot.Remaining
			left -= lot.Remaining
			lot.Remaining = 0
		} else {
			used = left
			lot.Remaining -= left
			left = 0
		}

		pnl := sellPrice*used - lot.Price*used
		switch {
		case pnl > 0:
			l.CountProfit++
		case pnl < 0:
			l.CountLoss++
		}
		internal += pnl
		l.closed = append(l.closed, PositionClosed{
			Quantity:      used,
			SellPrice:     sellPrice,
			PurchasePrice: lot.Price,
			PnL:           pnl,
		})
	}

	if left > 0 {
		external = sellPrice * left
	}

	l.RealizedInternal += internal
	l.RealizedExternal += external
	l.compact()
	return internal, external
}

// UnrealizedPnL devuelve Σ (price - lot.Price) × lot.Remaining sobre los lotes vivos.
func (l *AddressLedger) UnrealizedPnL(price float64) float64 {
	var total float64
	for _, lot := range l.lots {
		if lot.Remaining != 0 {
			total += price*lot.Remaining - lot.Price*lot.Remaining
		}
	}
	return total
}

// OpenInterest devuelve la cantidad base aún abierta.
func (l *AddressLedger) OpenInterest() float64 {
	var total float64
	for _, lot := range l.lots {
		total += lot.Remaining
	}
	return total
}

// CountOpenPositions devuelve cuántos lotes tienen remanente > 0.
func (l *AddressLedger) CountOpenPositions() int {
	n := 0
	for _, lot := range l.lots {
		if lot.Remaining > 0 {
			n++
		}
	}
	return n
}

// Lots devuelve una copia de los lotes retenidos, en orden FIFO.
func (l *AddressLedger) Lots() []PositionOpen {
	out := make([]PositionOpen, len(l.lots))
	copy(out, l.lots)
	return out
}

// Closed devuelve el historial de porciones cerradas.
func (l *AddressLedger) Closed() []PositionClosed {
	out := make([]PositionClosed, len(l.closed))
	copy(out, l.closed)
	return out
}

// compact descarta los lotes agotados. Con FIFO los lotes agotados forman siempre
// un prefijo, así que basta con recortar por delante; sólo se copia cuando el
// prefijo muerto ocupa al menos la mitad del slice.
func (l *AddressLedger) compact() {
	dead := 0
	for dead < len(l.lots) && l.lots[dead].Remaining == 0 {
		dead++
	}
	if dead == 0 || dead*2 < len(l.lots) {
		return
	}
	live := copy(l.lots, l.lots[dead:])
	clear(l.lots[live:])
	l.lots = l.lots[:live]
}
