// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	portsCheck bool

	// portsCmd lists the denvfile's port mappings
	portsCmd = &cobra.Command{
		Use:   "ports",
		Short: "List the denvfile's port mappings",
		Long: `List the denvfile's port mappings.

Each mapping exposes a local port under an external port. With --check,
each local port is dialed to report whether something is listening on it
right now.`,
		RunE: runPorts,
	}
)

func init() {
	portsCmd.Flags().BoolVar(&portsCheck, "check", false, "dial each local port and report whether it is open")
}

func runPorts(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor()
	if err != nil {
		return err
	}

	if len(d.Ports) == 0 {
		fmt.Println(SubtitleStyle.Render("No port mappings defined"))
		return nil
	}

	fmt.Println(TitleStyle.Render("Port Mappings"))
	fmt.Println()

	for i := range d.Ports {
		m := &d.Ports[i]
		line := fmt.Sprintf("  %s %s %s",
			CmdStyle.Render(m.LocalPort.String()),
			SubtitleStyle.Render("->"),
			CmdStyle.Render(m.ExternalPort.String()))

		if portsCheck {
			if portOpen(int(m.LocalPort)) {
				line += "  " + SuccessStyle.Render("open")
			} else {
				line += "  " + WarningStyle.Render("closed")
			}
		}
		fmt.Println(line)
	}

	return nil
}

// portOpen dials a local TCP port once to see if anything listens on it.
func portOpen(port int) bool {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
