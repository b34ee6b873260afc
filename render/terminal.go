package render

import (
	"io"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"
)

// PrintTerminal writes data to w as a QR code drawn with half-block
// characters, for a quick scan straight from the console.
func PrintTerminal(w io.Writer, data string, level Level) error {
	if data == "" {
		return ErrEmptyPayload
	}
	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:          level.terminal(),
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		QuietZone:      2,
	})
	return nil
}

func (l Level) terminal() qr.Level {
	switch l {
	case LevelL:
		return qr.L
	case LevelQ:
		return qr.Q
	case LevelH:
		return qr.H
	default:
		return qr.M
	}
}
