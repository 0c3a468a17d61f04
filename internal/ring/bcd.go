package ring

import (
	"fmt"
	"time"
)

// langEnglish is the locale flag the set-time payload carries after the six
// BCD time bytes.
const langEnglish = 0x01

// bcd packs a two-digit decimal value into one byte, tens digit in the high
// nibble.
func bcd(v int) byte {
	return byte(v/10<<4 | v%10)
}

// EncodeBCDTime encodes t into the ring's packed BCD time format used by the
// set-time command: year offset from 2000, month, day, hour, minute, second,
// each as one BCD byte, followed by the locale flag. The device has no
// decode path for this format; responses never carry it.
func EncodeBCDTime(t time.Time) [7]byte {
	return [7]byte{
		bcd(t.Year() - 2000),
		bcd(int(t.Month())),
		bcd(t.Day()),
		bcd(t.Hour()),
		bcd(t.Minute()),
		bcd(t.Second()),
		langEnglish,
	}
}

// embeddedTimestampLen is the size of the plain-integer timestamp that can
// follow the 0x57 marker in a big-data stream.
const embeddedTimestampLen = 6

// DecodeEmbeddedTimestamp decodes the 6-byte timestamp found after the data
// start marker in big-data streams: year offset from 2000, month, day, hour,
// minute, second, each a plain integer (not BCD). The result is in UTC; the
// device has no timezone concept.
func DecodeEmbeddedTimestamp(b []byte) (time.Time, error) {
	if len(b) < embeddedTimestampLen {
		return time.Time{}, fmt.Errorf("ring: embedded timestamp needs %d bytes, got %d", embeddedTimestampLen, len(b))
	}
	year := 2000 + int(b[0])
	month := time.Month(b[1])
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("ring: embedded timestamp month out of range: %d", b[1])
	}
	if b[2] < 1 || b[2] > 31 || b[3] > 23 || b[4] > 59 || b[5] > 59 {
		return time.Time{}, fmt.Errorf("ring: embedded timestamp fields out of range: % x", b[:embeddedTimestampLen])
	}
	return time.Date(year, month, int(b[2]), int(b[3]), int(b[4]), int(b[5]), 0, time.UTC), nil
}
