package protocol

const (
	// STX opens a frame.
	STX byte = 0x02
	// ETX closes a frame.
	ETX byte = 0x03
	// EOT aborts the frame in progress.
	EOT byte = 0x04

	// FieldSeparator splits key, value and checksum inside a group.
	FieldSeparator = " "

	// FrameBoundary is the ETX STX pair the meter emits between two frames,
	// glued to the end of the last group line.
	FrameBoundary = "\x03\x02"

	// ChecksumOffset is the distance of the checksum byte from the end of a
	// group line once FrameBoundary is removed: checksum, CR, LF.
	ChecksumOffset = 3

	// IdentificationKey holds the meter address. It never leaves the decoder.
	IdentificationKey = "ADCO"
)

// NumericKeys lists the keys whose values are integers.
var NumericKeys = []string{"BASE", "IMAX", "HCHC", "IINST", "PAPP", "ISOUSC", "ADCO", "HCHP"}

// IsNumericKey reports whether key is in NumericKeys.
func IsNumericKey(key string) bool {
	for _, k := range NumericKeys {
		if k == key {
			return true
		}
	}
	return false
}
