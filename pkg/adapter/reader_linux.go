//go:build linux

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
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Wireless-extension ioctl numbers. Deprecated in favor of nl80211 but still
// answered by every mainline driver, which keeps this reader dependency-free.
const (
	siocgiwfreq   = 0x8B05
	siocgiwap     = 0x8B15
	siocgiwessid  = 0x8B1B
	siocgiwencode = 0x8B2B

	essidMaxSize  = 32
	encodeMaxSize = 64
	iffUp         = 0x1
)

// iwreq mirrors struct iwreq: a 16-byte interface name followed by a union.
// The union area is sized generously; the kernel only reads sizeof(iwreq).
type iwreq struct {
	Name [unix.IFNAMSIZ]byte
	Data [32]byte
}

// ProcReader reads wireless adapter state from procfs, sysfs and
// wireless-extension ioctls.
type ProcReader struct {
	iface string
	root  string // filesystem root, overridable for tests
}

// NewProcReader creates a reader for the named interface. An empty name
// auto-detects the first wireless interface on the host.
func NewProcReader(iface string) (*ProcReader, error) {
	r := &ProcReader{iface: iface, root: "/"}

	if r.iface == "" {
		detected, err := r.detectInterface()
		if err != nil {
			return nil, err
		}

		r.iface = detected
	}

	return r, nil
}

// Interface returns the interface this reader queries.
func (r *ProcReader) Interface() string {
	return r.iface
}

func (r *ProcReader) detectInterface() (string, error) {
	entries, err := os.ReadDir(filepath.Join(r.root, "sys/class/net"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedPlatform, err)
	}

	for _, entry := range entries {
		wireless := filepath.Join(r.root, "sys/class/net", entry.Name(), "wireless")
		if _, err := os.Stat(wireless); err == nil {
			return entry.Name(), nil
		}
	}

	return "", ErrNoWirelessInterface
}

// Read performs one synchronous query of the adapter.
func (r *ProcReader) Read(ctx context.Context) (*Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ifaceDir := filepath.Join(r.root, "sys/class/net", r.iface)
	if _, err := os.Stat(ifaceDir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInterfaceNotFound, r.iface)
		}

		return nil, err
	}

	up, err := r.interfaceUp(ifaceDir)
	if err != nil {
		return nil, err
	}

	reading := &Reading{PoweredOn: up}
	if !up {
		return reading, nil
	}

	ssid, err := r.essid()
	if err != nil {
		return nil, err
	}

	if ssid == "" {
		// Powered on but not associated.
		return reading, nil
	}

	reading.SSID = ssid
	reading.BSSID = r.accessPoint()
	reading.Secure = r.secure()

	if freq := r.frequency(); freq > 0 {
		reading.Frequency = &freq

		if ch := freqToChannel(freq); ch > 0 {
			reading.Channel = &ch
		}
	}

	if level, ok := r.signalLevel(); ok {
		reading.SignalStrength = &level
	}

	return reading, nil
}

func (r *ProcReader) interfaceUp(ifaceDir string) (bool, error) {
	data, err := os.ReadFile(filepath.Join(ifaceDir, "flags"))
	if err != nil {
		return false, err
	}

	flags, err := strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")), 16, 64)
	if err != nil {
		return false, fmt.Errorf("unparseable interface flags: %w", err)
	}

	return flags&iffUp != 0, nil
}

func (r *ProcReader) signalLevel() (int, bool) {
	data, err := os.ReadFile(filepath.Join(r.root, "proc/net/wireless"))
	if err != nil {
		return 0, false
	}

	level, ok := parseWirelessTable(data)[r.iface]

	return level, ok
}

func (r *ProcReader) ioctlSocket() (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("wireless ioctl socket: %w", err)
	}

	return fd, nil
}

func (r *ProcReader) newRequest() iwreq {
	var req iwreq

	copy(req.Name[:], r.iface)

	return req
}

// essid returns the associated network name, or "" when not associated.
func (r *ProcReader) essid() (string, error) {
	fd, err := r.ioctlSocket()
	if err != nil {
		return "", err
	}
	defer unix.Close(fd)

	buf := make([]byte, essidMaxSize)
	req := r.newRequest()

	// iw_point layout: pointer, uint16 length, uint16 flags.
	*(*uintptr)(unsafe.Pointer(&req.Data[0])) = uintptr(unsafe.Pointer(&buf[0]))
	*(*uint16)(unsafe.Pointer(&req.Data[unsafe.Sizeof(uintptr(0))])) = uint16(len(buf))

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), siocgiwessid, uintptr(unsafe.Pointer(&req))); errno != 0 {
		return "", fmt.Errorf("SIOCGIWESSID %s: %w", r.iface, errno)
	}

	length := *(*uint16)(unsafe.Pointer(&req.Data[unsafe.Sizeof(uintptr(0))]))
	if int(length) > len(buf) {
		length = uint16(len(buf))
	}

	return string(bytes0(buf[:length])), nil
}

// accessPoint returns the BSSID, or "" when the driver reports none.
func (r *ProcReader) accessPoint() string {
	fd, err := r.ioctlSocket()
	if err != nil {
		return ""
	}
	defer unix.Close(fd)

	req := r.newRequest()

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), siocgiwap, uintptr(unsafe.Pointer(&req))); errno != 0 {
		return ""
	}

	// Union holds a sockaddr: family (2 bytes) then the hardware address.
	mac := net.HardwareAddr(req.Data[2:8])
	if allZero(mac) {
		return ""
	}

	return mac.String()
}

// secure reports whether the current association uses encryption. The encode
// flags are readable without CAP_NET_ADMIN, though the key material itself is
// not; any ioctl failure reads as insecure.
func (r *ProcReader) secure() bool {
	fd, err := r.ioctlSocket()
	if err != nil {
		return false
	}
	defer unix.Close(fd)

	buf := make([]byte, encodeMaxSize)
	req := r.newRequest()

	*(*uintptr)(unsafe.Pointer(&req.Data[0])) = uintptr(unsafe.Pointer(&buf[0]))
	*(*uint16)(unsafe.Pointer(&req.Data[unsafe.Sizeof(uintptr(0))])) = uint16(len(buf))

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), siocgiwencode, uintptr(unsafe.Pointer(&req))); errno != 0 {
		return false
	}

	flags := *(*uint16)(unsafe.Pointer(&req.Data[unsafe.Sizeof(uintptr(0))+2]))

	return encryptionEnabled(flags)
}

// frequency returns the center frequency in MHz, or 0 when unavailable.
func (r *ProcReader) frequency() float64 {
	fd, err := r.ioctlSocket()
	if err != nil {
		return 0
	}
	defer unix.Close(fd)

	req := r.newRequest()

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), siocgiwfreq, uintptr(unsafe.Pointer(&req))); errno != 0 {
		return 0
	}

	// iw_freq layout: int32 mantissa, int16 exponent.
	m := *(*int32)(unsafe.Pointer(&req.Data[0]))
	e := *(*int16)(unsafe.Pointer(&req.Data[4]))

	hz := float64(m)
	for i := int16(0); i < e; i++ {
		hz *= 10
	}

	// Some drivers report the channel number instead of a frequency.
	if hz < 1e6 {
		return 0
	}

	return hz / 1e6
}

func bytes0(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}

	return b
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}

	return true
}
