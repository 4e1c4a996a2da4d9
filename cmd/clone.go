/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	rfidclone "github.com/allbin/go-rfidclone"
	"github.com/spf13/cobra"
)

var errAborted = errors.New("aborted")

// cloneCmd represents the clone command
var cloneCmd = &cobra.Command{
	Use:   "clone [port]",
	Short: "Copy a source tag's UID onto a writable blank",
	Long: `Run the whole workflow: connect, read the source tag, then write its UID
to the blank placed on the reader afterwards.

The command waits for confirmation before writing so the source tag can
be swapped for the blank. Use --yes to write straight away, for instance
when the reader holds two tags.

A locked target (not a writable "magic" tag) is reported and the captured
UID is kept; use --retry to try again with another blank.

Example usage:
  rfidclone clone
  rfidclone clone /dev/ttyUSB0 --retry 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		retries, _ := cmd.Flags().GetInt("retry")

		s, err := openSession(false, rfidclone.WithObserver(printSteps(os.Stdout)))
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

		in := bufio.NewReader(os.Stdin)
		for attempt := 0; ; attempt++ {
			if !yes {
				prompt := fmt.Sprintf("Place the blank tag on the reader and write %s? [Y/n] ", res.State.UID)
				if !confirm(in, os.Stdout, prompt) {
					return errAborted
				}
			}
			_, err = s.ctrl.WriteTarget(ctx)
			if err == nil || !errors.Is(err, rfidclone.ErrCardLocked) || attempt >= retries {
				return err
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)

	cloneCmd.Flags().BoolP("yes", "y", false, "write without asking for confirmation")
	cloneCmd.Flags().Int("retry", 0, "extra write attempts after a locked target")
}

// confirm asks prompt on w and reads an answer from r. Empty means yes.
func confirm(r *bufio.Reader, w io.Writer, prompt string) bool {
	fmt.Fprint(w, prompt)
	answer, err := r.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}
