package serialmux

import (
	"fmt"

	"go.bug.st/serial"
)

// RealPortFactory opens hardware serial ports via go.bug.st/serial.
type RealPortFactory struct{}

// Open opens the port at path with the given mode.
func (RealPortFactory) Open(path string, mode *PortMode) (SerialPorter, error) {
	m, err := serialMode(mode)
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(path, m)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return port, nil
}

func serialMode(mode *PortMode) (*serial.Mode, error) {
	if mode == nil {
		mode = DefaultPortMode()
	}

	m := &serial.Mode{
		BaudRate: mode.BaudRate,
		DataBits: mode.DataBits,
	}

	switch mode.Parity {
	case NoParity:
		m.Parity = serial.NoParity
	case OddParity:
		m.Parity = serial.OddParity
	case EvenParity:
		m.Parity = serial.EvenParity
	default:
		return nil, fmt.Errorf("unknown parity %d", mode.Parity)
	}

	switch mode.StopBits {
	case OneStopBit:
		m.StopBits = serial.OneStopBit
	case TwoStopBits:
		m.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unknown stop bits %d", mode.StopBits)
	}

	return m, nil
}
