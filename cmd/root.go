/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/allbin/go-rfidclone/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	v       = config.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rfidclone",
	Short: "Copy RFID tag UIDs with an Arduino-hosted reader",
	Long: `rfidclone talks to an RFID reader board over USB serial and copies the
UID of a source tag onto a writable blank.

The workflow is connect, read source, write target:
  rfidclone list              find the reader board
  rfidclone read              print the UID of the tag on the reader
  rfidclone clone             read a source tag, then write its UID to a blank
  rfidclone studio            do the same interactively
  rfidclone history           show past attempts

Settings come from flags, RFIDCLONE_* environment variables and rfidclone.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.ReadFile(v, cfgFile)
	},
}

// Execute adds all child commands to the root command and runs it. It is
// called by main.main() and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./rfidclone.yaml or <user config dir>/rfidclone/rfidclone.yaml)")
	flags.StringP("port", "p", "", "serial port of the reader board (default: auto-detect)")
	flags.IntP("baud", "b", 115200, "baud rate")
	flags.Duration("settle-delay", 0, "wait after opening the port (default 2s)")
	flags.Duration("reply-timeout", 0, "timeout for read and write replies (default 5s)")
	flags.Duration("handshake-timeout", 0, "timeout for the hardware check after connecting (default 10s)")
	flags.String("journal", "", "journal database path")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-file", "", "write logs to this file")

	bind(config.KeyPort, "port")
	bind(config.KeyBaud, "baud")
	bind(config.KeySettleDelay, "settle-delay")
	bind(config.KeyReplyTimeout, "reply-timeout")
	bind(config.KeyHandshakeTimeout, "handshake-timeout")
	bind(config.KeyJournal, "journal")
	bind(config.KeyLogLevel, "log-level")
	bind(config.KeyLogFile, "log-file")
}

// bind makes a persistent flag override key when it is set explicitly
func bind(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding --%s: %v", flag, err))
	}
}
