package ble

import (
	"fmt"
	"strings"

	"github.com/ryan-huang1/r02ctl/internal/util"
)

// Explore walks every service and characteristic on the device and renders
// what it finds, reading each characteristic that allows it. Reads are safe;
// nothing is written.
func (d *Device) Explore() (string, error) {
	services, err := d.dev.DiscoverServices(nil)
	if err != nil {
		return "", fmt.Errorf("ble: discover services: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d services:\n\n", len(services))

	for i := range services {
		fmt.Fprintf(&b, "Service #%d: %s\n", i+1, services[i].UUID().String())

		chars, err := services[i].DiscoverCharacteristics(nil)
		if err != nil {
			fmt.Fprintf(&b, "  Error: %v\n\n", err)
			continue
		}

		buf := make([]byte, 256)
		for j := range chars {
			fmt.Fprintf(&b, "  [%d] %s\n", j+1, chars[j].UUID().String())

			n, err := chars[j].Read(buf)
			if err != nil || n == 0 {
				continue
			}
			data := buf[:n]
			if util.IsTextData(data) {
				fmt.Fprintf(&b, "      %q\n", string(data))
			} else {
				for _, line := range strings.Split(strings.TrimRight(util.HexDump(data), "\n"), "\n") {
					fmt.Fprintf(&b, "      %s\n", line)
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
