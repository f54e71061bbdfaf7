package status

import (
	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
	"github.com/nguyentantai21042004/speech-digest/internal/recognition"
)

type implTracker struct {
	service recognition.Service
	store   blob.Store
	layout  layout.Layout
	ledger  *Ledger
	logger  logger.Logger
}

func New(service recognition.Service, store blob.Store, l layout.Layout, log logger.Logger) Tracker {
	return &implTracker{
		service: service,
		store:   store,
		layout:  l,
		ledger:  NewLedger(store, l),
		logger:  log,
	}
}
