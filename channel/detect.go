package channel

import (
	"path/filepath"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes a candidate device path
type PortInfo struct {
	Path         string
	Description  string
	IsUSB        bool
	VendorID     string
	ProductID    string
	SerialNumber string
	Product      string
	// Controller is set when the USB identity matches a known reader bridge.
	Controller bool
}

// Known USB-serial bridges found on reader boards, keyed by lower-case VID
var controllerVendors = map[string]string{
	"2341": "Arduino",
	"2a03": "Arduino",
	"1a86": "CH340",
	"0403": "FTDI",
	"10c4": "CP210x",
}

// Product strings that identify a board when the VID is unfamiliar
var controllerProducts = []string{"arduino", "ftdi", "ch340", "cp210"}

// IsController reports whether the USB identity looks like a reader board
func IsController(info PortInfo) bool {
	if !info.IsUSB {
		return false
	}
	if _, ok := controllerVendors[strings.ToLower(info.VendorID)]; ok {
		return true
	}
	product := strings.ToLower(info.Product)
	for _, p := range controllerProducts {
		if strings.Contains(product, p) {
			return true
		}
	}
	return false
}

// DetectController returns the first candidate that looks like a reader board
func DetectController(infos []PortInfo) (PortInfo, bool) {
	for _, info := range infos {
		if info.Controller {
			return info, true
		}
	}
	return PortInfo{}, false
}

// describePorts merges enumerator USB details into the scanned path list.
// Paths the enumerator does not know keep their name-based description.
func describePorts(paths []string, details []*enumerator.PortDetails) []PortInfo {
	byName := make(map[string]*enumerator.PortDetails, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		byName[d.Name] = d
		byName[filepath.Base(d.Name)] = d
	}

	infos := make([]PortInfo, 0, len(paths))
	for _, path := range paths {
		info := PortInfo{
			Path:        path,
			Description: getPortDescription(filepath.Base(path)),
		}
		d, ok := byName[path]
		if !ok {
			d, ok = byName[filepath.Base(path)]
		}
		if ok && d.IsUSB {
			info.IsUSB = true
			info.VendorID = d.VID
			info.ProductID = d.PID
			info.SerialNumber = d.SerialNumber
			info.Product = d.Product
		}
		info.Controller = IsController(info)
		infos = append(infos, info)
	}
	return infos
}
