// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"fmt"
	"sort"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes a USB serial port
type PortInfo struct {
	Name         string
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// String formats the port like "/dev/ttyACM0 (2fe3:0100 Zephyr CDC ACM)"
func (p PortInfo) String() string {
	if p.VID == "" && p.Product == "" {
		return p.Name
	}
	if p.Product == "" {
		return fmt.Sprintf("%s (%s:%s)", p.Name, p.VID, p.PID)
	}
	return fmt.Sprintf("%s (%s:%s %s)", p.Name, p.VID, p.PID, p.Product)
}

// ListUSBPorts returns the serial ports backed by a USB device, sorted by name
func ListUSBPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return usbPorts(details), nil
}

func usbPorts(details []*enumerator.PortDetails) []PortInfo {
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil || !d.IsUSB {
			continue
		}
		ports = append(ports, PortInfo{
			Name:         d.Name,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports
}
