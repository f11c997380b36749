package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"github.com/jessevdk/go-flags"
	"go.bug.st/serial"

	"github.com/gwillem/seeker/pkg/robot"
)

type Options struct {
	Servos bool   `long:"servos" description:"Also scan serial ports for Feetech servos"`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func main() {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	fmt.Println(headerStyle.Render("ev3dev Device Scanner"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println()

	var devs robot.EV3
	devices, err := robot.Discover(devs)
	if err != nil {
		fmt.Printf("Error scanning ports: %v\n", err)
		os.Exit(1)
	}

	if len(devices) == 0 {
		fmt.Println("No motors or sensors found.")
		fmt.Println("Make sure the devices are plugged in and ev3dev is running.")
	} else {
		fmt.Println(renderDevices(devs, devices))
	}

	if opts.Servos {
		fmt.Println()
		scanServos()
	}
}

func renderDevices(devs robot.Devices, devices []robot.DeviceInfo) string {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{d.Name, d.Address, d.Driver, readState(devs, d)})
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Device", "Address", "Driver", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Bold(true).Foreground(lipgloss.Color("12"))
			}
			return cellStyle
		}).
		Render()
}

// readState summarises the live reading of a device.
func readState(devs robot.Devices, d robot.DeviceInfo) string {
	port := robot.PortConfig{Address: d.Address}

	switch d.Class {
	case robot.ClassTachoMotor:
		m, err := devs.Motor(port)
		if err != nil {
			return err.Error()
		}
		pos, err := m.Position()
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("position %d", pos)

	case robot.ClassLegoSensor:
		s, err := devs.Sensor(port)
		if err != nil {
			return err.Error()
		}
		mode, err := s.Mode()
		if err != nil {
			return err.Error()
		}
		if mode == robot.ModeRGBRaw {
			c, err := robot.ReadRGB(s)
			if err != nil {
				return err.Error()
			}
			return fmt.Sprintf("%s %s", mode, c)
		}
		v, err := s.Value(0)
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("%s %d", mode, v)
	}

	return "-"
}

func scanServos() {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return
	}

	found := 0
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		bus, err := feetech.NewBus(feetech.BusConfig{
			Port:     port,
			BaudRate: 1_000_000,
			Protocol: feetech.ProtocolSTS,
			Timeout:  100 * time.Millisecond,
		})
		if err != nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		servos, err := bus.Scan(ctx, 1, 6)
		if err == nil {
			for _, s := range servos {
				pos, err := feetech.NewServo(bus, s.ID, s.Model).Position(ctx)
				if err != nil {
					fmt.Printf("  Servo %d on %s: %v\n", s.ID, port, err)
				} else {
					fmt.Printf("  Servo %d on %s: position %d\n", s.ID, port, pos)
				}
				found++
			}
		}
		cancel()
		bus.Close()
	}

	if found == 0 {
		fmt.Println("No Feetech servos found.")
	}
}
