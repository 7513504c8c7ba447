/*
 * Copyright 2026 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package adapter

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// parseWirelessTable extracts per-interface signal levels (dBm) from the
// contents of /proc/net/wireless. The first two lines are headers; data rows
// look like:
//
//	wlan0: 0000   54.  -56.  -256        0      0      0      0      0        0
func parseWirelessTable(data []byte) map[string]int {
	levels := make(map[string]int)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		if lineNo <= 2 {
			continue
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}

		iface := strings.TrimSuffix(fields[0], ":")
		if iface == "" {
			continue
		}

		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[3], "."), 64)
		if err != nil {
			continue
		}

		levels[iface] = int(level)
	}

	return levels
}

// iwEncodeDisabled is the IW_ENCODE_DISABLED bit of the SIOCGIWENCODE flags
// word; when clear, the link carries some form of encryption.
const iwEncodeDisabled = 0x8000

// encryptionEnabled decodes the wireless-extension encode flags.
func encryptionEnabled(flags uint16) bool {
	return flags&iwEncodeDisabled == 0
}

// freqToChannel maps a WiFi center frequency in MHz to its channel number.
// Returns 0 for frequencies outside the known 2.4/5/6 GHz allocations.
func freqToChannel(mhz float64) int {
	f := int(mhz)

	switch {
	case f == 2484:
		return 14
	case f >= 2412 && f <= 2472:
		return (f - 2407) / 5
	case f >= 5180 && f <= 5885:
		return (f - 5000) / 5
	case f >= 5955 && f <= 7115:
		return (f - 5950) / 5
	default:
		return 0
	}
}
