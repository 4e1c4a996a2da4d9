/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	rfidclone "github.com/allbin/go-rfidclone"
	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read [port]",
	Short: "Read the UID of the tag on the reader",
	Long: `Connect to the reader board, check the hardware and read the UID of the
tag currently on the reader.

Without a port argument the configured port is used, or the first USB
device that looks like a reader board (Arduino, CH340, FTDI, CP210x).

Example usage:
  rfidclone read
  rfidclone read /dev/ttyACM0 --quiet`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")

		var opts []rfidclone.Option
		if !quiet {
			opts = append(opts, rfidclone.WithObserver(printSteps(os.Stderr)))
		}
		s, err := openSession(false, opts...)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		if err := s.connect(ctx, args); err != nil {
			return err
		}
		res, err := s.ctrl.ReadSource(ctx)
		if err != nil {
			return err
		}

		if quiet {
			fmt.Println(res.State.UID)
		} else {
			fmt.Printf("%s\t%s\n", res.State.UID, res.State.CardType)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().BoolP("quiet", "q", false, "print only the UID")
}
