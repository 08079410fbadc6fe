package app

import (
	"io"

	"keysonscreen/internal/keys"
	"keysonscreen/internal/logging"
)

// PlainPrinter writes one logfmt line per snapshot. It is used when stdout
// is not a terminal or the UI is disabled.
type PlainPrinter struct {
	logger logging.Logger
}

func NewPlainPrinter(out io.Writer) *PlainPrinter {
	return &PlainPrinter{logger: logging.New(out, logging.Info)}
}

func (p *PlainPrinter) Observe(snap keys.Snapshot) {
	p.logger.Info("keys",
		logging.F("text", snap.Text),
		logging.F("count", len(snap.Labels)),
		logging.F("complete", snap.Terminal()),
	)
}
