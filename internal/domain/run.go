package domain

import "time"

// RunInfo describe una ejecución completa sobre un par token/pool.
type RunInfo struct {
	ID           string
	Network      string
	Token        string
	Pool         string
	BarThreshold float64
	Trades       int // trades procesados
	Skipped      int // records malformados saltados
	Accounts     int
	StartedAt    time.Time
}

// RunReport es lo que se presenta al usuario al terminar una ejecución.
type RunReport struct {
	Info       RunInfo
	Analysis   Analysis
	Accounts   []AccountSummary
	LastPrice  float64
	PendingQty float64 // cantidad base de la barra parcial no emitida
}
