package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/seeker/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct{}

var wigglePulse = 300 * time.Millisecond

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Seeker Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━"))
	fmt.Println()

	cfg := robot.DefaultConfig()
	if robot.ConfigExistsAt(opts.Config) {
		loaded, err := robot.LoadConfigFrom(opts.Config)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		fmt.Printf("Updating %s\n\n", opts.Config)
	}
	var devs robot.EV3
	devices, err := robot.Discover(devs)
	if err != nil {
		return fmt.Errorf("discover devices: %w", err)
	}

	// Step 1: Identify motors
	fmt.Println(subHeaderStyle.Render("━━━ Motors ━━━"))
	fmt.Println()
	assignMotors(cfg, devs, devices)

	// Step 2: Sensors are recognised by driver
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Sensors ━━━"))
	fmt.Println()
	assignSensors(cfg, devices)

	// Step 3: Optional Feetech steering servo
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Steering ━━━"))
	fmt.Println()
	if err := chooseSteering(cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("incomplete setup: %w", err)
	}
	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(renderSummary(cfg))
	fmt.Println()
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start searching with: " + headerStyle.Render("seeker watch"))

	return nil
}

func assignMotors(cfg *robot.Config, devs robot.Devices, devices []robot.DeviceInfo) {
	var motors []robot.DeviceInfo
	for _, d := range devices {
		if d.Class == robot.ClassTachoMotor {
			motors = append(motors, d)
		}
	}

	if len(motors) == 0 {
		fmt.Println("No tacho motors found.")
		fmt.Println("Make sure the motors are plugged in and ev3dev is running.")
		os.Exit(1)
	}

	fmt.Printf("Found %d motor(s). Let's identify them...\n\n", len(motors))

	assigned := make(map[robot.MotorName]bool)
	for _, d := range motors {
		role := identifyMotorWithWiggle(devs, d, assigned)
		switch role {
		case robot.LeftMotor:
			cfg.Left = robot.PortConfig{Address: d.Address}
		case robot.RightMotor:
			cfg.Right = robot.PortConfig{Address: d.Address}
		case robot.TurnMotor:
			cfg.Steering.Motor = robot.PortConfig{Address: d.Address}
		default:
			continue
		}
		assigned[role] = true

		// If we have all of them, we can stop
		if len(assigned) == len(robot.AllMotors()) {
			break
		}
	}
}

func identifyMotorWithWiggle(devs robot.Devices, d robot.DeviceInfo, assigned map[robot.MotorName]bool) robot.MotorName {
	m, err := devs.Motor(robot.PortConfig{Address: d.Address})
	if err != nil {
		fmt.Printf("  Error opening %s: %v\n", d.Address, err)
		return ""
	}

	fmt.Printf("  Wiggling motor on %s (%s)...\n", d.Address, d.Driver)

	// Wiggle: a short pulse each way
	if err := wiggle(m); err != nil {
		fmt.Printf("  Error wiggling motor: %v\n", err)
		return ""
	}

	// Build options based on what's still needed
	var options []huh.Option[string]
	labels := map[robot.MotorName]string{
		robot.LeftMotor:  "Left wheel",
		robot.RightMotor: "Right wheel",
		robot.TurnMotor:  "Turn motor",
	}
	for _, name := range robot.AllMotors() {
		if !assigned[name] {
			options = append(options, huh.NewOption(labels[name], string(name)))
		}
	}
	options = append(options, huh.NewOption("Skip this motor", "skip"))

	// Ask user which motor this is
	var role string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Which motor is on %s?", d.Address)).
				Description("The motor that just wiggled").
				Options(options...).
				Value(&role),
		),
	)

	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	if role == "skip" {
		return ""
	}

	return robot.MotorName(role)
}

// wiggle pulses m forward and back, then stops it. The motor is stopped even
// if a pulse fails.
func wiggle(m robot.Motor) error {
	if err := m.RunDirect(); err != nil {
		return fmt.Errorf("start motor: %w", err)
	}

	var err error
	for _, dc := range []int{30, -30} {
		if err = m.SetDutyCycle(dc); err != nil {
			err = fmt.Errorf("set duty cycle: %w", err)
			break
		}
		time.Sleep(wigglePulse)
	}

	if stopErr := m.SetDutyCycle(0); stopErr != nil && err == nil {
		err = fmt.Errorf("reset duty cycle: %w", stopErr)
	}
	if stopErr := m.Stop(); stopErr != nil && err == nil {
		err = fmt.Errorf("stop motor: %w", stopErr)
	}
	return err
}

func assignSensors(cfg *robot.Config, devices []robot.DeviceInfo) {
	targets := map[string]*robot.PortConfig{
		robot.DriverColor:    &cfg.Color,
		robot.DriverInfrared: &cfg.Infrared,
		robot.DriverTouch:    &cfg.Touch,
	}

	for _, d := range devices {
		if d.Class != robot.ClassLegoSensor {
			continue
		}
		port, ok := targets[d.Driver]
		if !ok {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  Ignoring %s on %s", d.Driver, d.Address)))
			continue
		}
		*port = robot.PortConfig{Address: d.Address, Driver: d.Driver}
		fmt.Printf("  Found %s on %s\n", d.Driver, d.Address)
		delete(targets, d.Driver)
	}

	for driver := range targets {
		fmt.Printf("  %s not found, keeping configured port\n", driver)
	}
}

func chooseSteering(cfg *robot.Config) error {
	useServo := cfg.Steering.Kind == robot.SteeringServo
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Is the turn motor a Feetech servo?").
				Affirmative("Yes").
				Negative("No, an ev3 motor").
				Value(&useServo),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	if !useServo {
		cfg.Steering.Kind = robot.SteeringTacho
		return nil
	}

	servos := findServos()
	if len(servos) == 0 {
		return fmt.Errorf("no Feetech servos found on any serial port")
	}

	var options []huh.Option[string]
	for i, s := range servos {
		options = append(options, huh.NewOption(fmt.Sprintf("Servo %d on %s", s.id, s.port), fmt.Sprint(i)))
	}

	var choice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which servo steers the robot?").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 0 || idx >= len(servos) {
		return fmt.Errorf("invalid servo choice %q", choice)
	}
	picked := servos[idx]

	cfg.Steering.Kind = robot.SteeringServo
	cfg.Steering.Port = picked.port
	cfg.Steering.Calibration.ID = picked.id
	return nil
}

type servoInfo struct {
	port string
	id   int
}

func findServos() []servoInfo {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var found []servoInfo

	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)

		bus, err := feetech.NewBus(feetech.BusConfig{
			Port:     port,
			BaudRate: 1_000_000,
			Protocol: feetech.ProtocolSTS,
			Timeout:  100 * time.Millisecond,
		})
		if err != nil {
			cancel()
			continue
		}

		servos, err := bus.Scan(ctx, 1, 6)
		cancel()
		bus.Close()
		if err != nil {
			continue
		}

		for _, s := range servos {
			fmt.Printf("  Found servo %d on %s\n", s.ID, port)
			found = append(found, servoInfo{port: port, id: s.ID})
		}
	}

	return found
}

func renderSummary(cfg *robot.Config) string {
	turn := cfg.Steering.Motor.String()
	if cfg.Steering.Kind == robot.SteeringServo {
		turn = fmt.Sprintf("feetech servo %d on %s", cfg.Steering.Calibration.ID, cfg.Steering.Port)
	}

	rows := [][]string{
		{string(robot.LeftMotor), cfg.Left.String()},
		{string(robot.RightMotor), cfg.Right.String()},
		{string(robot.TurnMotor), turn},
		{string(robot.ColorSensor), cfg.Color.String()},
		{string(robot.InfraredSensor), cfg.Infrared.String()},
		{string(robot.TouchSensor), cfg.Touch.String()},
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Device", "Port").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Bold(true).Foreground(lipgloss.Color("12"))
			}
			if col == 0 {
				return cellStyle.Foreground(lipgloss.Color("14"))
			}
			return cellStyle
		}).
		Render()
}
