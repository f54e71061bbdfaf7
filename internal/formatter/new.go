package formatter

import (
	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
)

type implFormatter struct {
	store  blob.Store
	layout layout.Layout
	logger logger.Logger
}

// New creates a Formatter reading and writing through store
func New(store blob.Store, l layout.Layout, log logger.Logger) Formatter {
	return &implFormatter{
		store:  store,
		layout: l,
		logger: log,
	}
}
