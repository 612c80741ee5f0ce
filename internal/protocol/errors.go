package protocol

import "errors"

var (
	ErrMalformedGroup        = errors.New("protocol: malformed group")
	ErrChecksumMismatch      = errors.New("protocol: checksum mismatch")
	ErrInvalidNumber         = errors.New("protocol: invalid numeric value")
	ErrMissingIdentification = errors.New("protocol: identification key missing at frame end")
	ErrFrameInterrupted      = errors.New("protocol: frame interrupted")
)
