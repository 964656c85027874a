// Command dofbot-info connects to the arm and prints a snapshot of every
// joint: current angle, raw servo position, range and mount orientation.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/dofbot/pkg/dofbot"
	"github.com/gwillem/dofbot/pkg/logging"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	staleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	freshStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func main() {
	fmt.Println(headerStyle.Render("Dofbot Info"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := dofbot.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No configuration found. Run 'dofbot setup' first.")
		os.Exit(1)
	}

	arm := dofbot.NewArm(*cfg, logging.Quiet())
	if err := arm.Connect(true); err != nil && arm.State() != dofbot.Ready {
		fmt.Fprintf(os.Stderr, "Error connecting to arm: %v\n", err)
		os.Exit(1)
	}
	defer arm.Disconnect()

	obs, err := arm.Observation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading joints: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Arm on %s at %d baud\n\n", cfg.Port, cfg.Baudrate)

	headerCellStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	jointStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	stale := make([]bool, 0, dofbot.NumJoints)
	rows := make([][]string, 0, dofbot.NumJoints)
	for _, j := range dofbot.AllJoints() {
		ch := dofbot.ChannelFor(j)
		r := obs.Reading(j)
		mount := "normal"
		if ch.Reversed {
			mount = "reversed"
		}
		status := "ok"
		if r.Stale {
			status = "stale"
		}
		stale = append(stale, r.Stale)
		rows = append(rows, []string{
			j.String(),
			fmt.Sprintf("%.1f°", r.Angle),
			fmt.Sprintf("%d", ch.AngleToRaw(r.Angle)),
			fmt.Sprintf("0-%.0f°", ch.AngleSpan),
			mount,
			status,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Joint", "Angle", "Raw", "Range", "Mount", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			switch col {
			case 0:
				return jointStyle
			case 5:
				if row >= 0 && row < len(stale) && stale[row] {
					return staleStyle.Padding(0, 1)
				}
				return freshStyle.Padding(0, 1)
			default:
				return cellStyle
			}
		})

	fmt.Println(t.Render())
}
