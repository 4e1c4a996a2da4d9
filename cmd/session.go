/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	rfidclone "github.com/allbin/go-rfidclone"
	"github.com/allbin/go-rfidclone/channel"
	"github.com/allbin/go-rfidclone/internal/config"
	"github.com/allbin/go-rfidclone/internal/journal"
	"github.com/rs/zerolog"
)

var errNoReader = errors.New("no reader board detected, pass --port")

// session is the wiring shared by every command that talks to the reader
type session struct {
	cfg     config.Config
	logger  zerolog.Logger
	manager *channel.Manager
	ctrl    *rfidclone.Controller
	journal *journal.Store
	logOut  io.Closer
}

// openSession loads config and builds manager, controller and journal.
// Interactive sessions never log to the terminal.
func openSession(interactive bool, opts ...rfidclone.Option) (*session, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	s.logger, s.logOut, err = newLogger(cfg.Log, interactive)
	if err != nil {
		return nil, err
	}

	s.manager = channel.NewManager(
		channel.WithSettleDelay(cfg.SettleDelay),
		channel.WithPortOptions(cfg.PortOptions()...),
		channel.WithLogger(s.logger.With().Str("component", "channel").Logger()),
	)

	ctrlOpts := []rfidclone.Option{
		rfidclone.WithBaudRate(cfg.BaudRate),
		rfidclone.WithReplyTimeout(cfg.ReplyTimeout),
		rfidclone.WithHandshakeTimeout(cfg.HandshakeTimeout),
		rfidclone.WithLogger(s.logger.With().Str("component", "workflow").Logger()),
	}
	if cfg.Journal != "" {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			// a broken journal should not stop a clone
			s.logger.Warn().Err(err).Str("path", cfg.Journal).Msg("journal disabled")
		} else {
			s.journal = store
			ctrlOpts = append(ctrlOpts, rfidclone.WithJournal(store))
		}
	}
	s.ctrl = rfidclone.New(s.manager, append(ctrlOpts, opts...)...)
	return s, nil
}

func newLogger(cfg config.Log, interactive bool) (zerolog.Logger, io.Closer, error) {
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
		}
		return zerolog.New(f).Level(cfg.Level).With().Timestamp().Logger(), f, nil
	}
	if interactive {
		return zerolog.Nop(), nil, nil
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(cfg.Level).With().Timestamp().Logger(), nil, nil
}

// resolvePort picks the port to connect to: an explicit argument, then the
// configured port, then the detected reader board, then the only candidate.
func (s *session) resolvePort(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if s.cfg.Port != "" {
		return s.cfg.Port, nil
	}
	infos, err := s.manager.Describe()
	if err != nil {
		return "", fmt.Errorf("listing ports: %w", err)
	}
	if info, ok := channel.DetectController(infos); ok {
		s.logger.Info().Str("port", info.Path).Str("product", info.Product).Msg("reader board detected")
		return info.Path, nil
	}
	if len(infos) == 1 {
		return infos[0].Path, nil
	}
	return "", errNoReader
}

// connect resolves the port and runs Connect. A suspect reader is reported
// but not fatal.
func (s *session) connect(ctx context.Context, args []string) error {
	path, err := s.resolvePort(args)
	if err != nil {
		return err
	}
	_, err = s.ctrl.Connect(ctx, path)
	if errors.Is(err, rfidclone.ErrHardwareSuspect) {
		return nil
	}
	return err
}

func (s *session) Close() {
	if s.ctrl.State().IsConnected() {
		s.ctrl.Disconnect(context.Background())
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("closing journal")
		}
	}
	if s.logOut != nil {
		s.logOut.Close()
	}
}
