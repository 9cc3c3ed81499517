package indicator

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// OpenGPIO maps the Raspberry Pi GPIO registers and returns an LED on the
// given BCM pin. The returned func unmaps the registers.
func OpenGPIO(bcmPin int) (*LED, func() error, error) {
	if err := rpio.Open(); err != nil {
		return nil, nil, fmt.Errorf("open gpio: %w", err)
	}

	pin := rpio.Pin(bcmPin)
	pin.Output()
	return NewLED(pin), rpio.Close, nil
}
