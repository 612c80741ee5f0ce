package protocol

// Checksum computes the group checksum of payload ("KEY VALUE"): the low six
// bits of the code point sum, shifted into the printable range by 0x20.
// Invalid UTF-8 bytes count as utf8.RuneError.
func Checksum(payload string) byte {
	var sum int
	for _, r := range payload {
		sum += int(r)
	}
	return byte(sum&0x3F) + 0x20
}

// ValidChecksum reports whether checksum matches payload.
func ValidChecksum(payload string, checksum byte) bool {
	return Checksum(payload) == checksum
}
