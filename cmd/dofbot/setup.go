package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.bug.st/serial"

	"github.com/gwillem/dofbot/pkg/dofbot"
	"github.com/gwillem/dofbot/pkg/logging"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Dofbot Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━"))
	fmt.Println()

	fmt.Println("Scanning serial ports for a Dofbot arm...")
	fmt.Println()

	candidates := findArms()
	if len(candidates) == 0 {
		fmt.Println("No Dofbot arm found.")
		fmt.Println("Make sure the arm is connected and powered on.")
		os.Exit(1)
	}

	port := pickPort(candidates)
	if port == "" {
		fmt.Println("No port selected.")
		os.Exit(1)
	}

	cfg := dofbot.DefaultConfig(port)
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", dofbot.DefaultConfigFile)
	fmt.Println()
	fmt.Println("Try it with: " + headerStyle.Render("dofbot monitor"))

	return nil
}

// findArms probes every serial port by connecting and reading the base
// joint. Ports that answer the position read are candidates.
func findArms() []string {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var found []string
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		if probePort(port) {
			fmt.Printf("  Found Dofbot arm on %s\n", port)
			found = append(found, port)
		}
	}
	return found
}

func probePort(port string) bool {
	arm := dofbot.NewArm(dofbot.DefaultConfig(port), logging.Quiet())
	err := arm.Connect(true)
	if err != nil && !errors.Is(err, dofbot.ErrInitialRead) {
		return false
	}
	defer arm.Disconnect()
	// The transport opens on anything that looks like a serial port, so
	// require at least one joint to actually answer.
	obs, obsErr := arm.Observation()
	if obsErr != nil {
		return false
	}
	for _, j := range dofbot.AllJoints() {
		if !obs.Reading(j).Stale {
			return true
		}
	}
	return false
}

// pickPort confirms the arm by blinking its LED and sounding a short chirp,
// then asks the user to accept the port.
func pickPort(candidates []string) string {
	for _, port := range candidates {
		identify(port)

		var ok bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Use the arm on %s?", port)).
					Description("Its LED just blinked blue").
					Affirmative("Yes").
					Negative("Skip").
					Value(&ok),
			),
		)
		if err := form.Run(); err != nil {
			fmt.Println()
			os.Exit(0)
		}
		if ok {
			return port
		}
	}
	return ""
}

func identify(port string) {
	arm := dofbot.NewArm(dofbot.DefaultConfig(port), logging.Quiet())
	if err := arm.Connect(false); err != nil {
		return
	}
	defer arm.Disconnect()

	fmt.Printf("\n  Blinking the arm on %s...\n", port)
	for i := 0; i < 3; i++ {
		arm.SetRGB(0, 0, 255)
		time.Sleep(200 * time.Millisecond)
		arm.SetRGB(0, 0, 0)
		time.Sleep(200 * time.Millisecond)
	}
	arm.SetBuzzer(true, 1)
}
