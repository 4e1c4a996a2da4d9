package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	rfidclone "github.com/allbin/go-rfidclone"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 500, time.UTC)

	entries := []rfidclone.Entry{
		{At: at, Action: rfidclone.ActionConnect, Port: "/dev/ttyACM0", From: rfidclone.Disconnected, To: rfidclone.HardwareVerified, Outcome: "ok", Message: "Connected"},
		{At: at.Add(time.Second), Action: rfidclone.ActionReadSource, Port: "/dev/ttyACM0", From: rfidclone.HardwareVerified, To: rfidclone.SourceCaptured, UID: "04A1B2C3", Outcome: "ok"},
		{At: at.Add(2 * time.Second), Action: rfidclone.ActionWriteTarget, Port: "/dev/ttyACM0", From: rfidclone.SourceCaptured, To: rfidclone.SourceCaptured, UID: "04A1B2C3", Outcome: "locked"},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	rows, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, expected 2", len(rows))
	}
	if rows[0].Action != "write" || rows[0].Outcome != "locked" || rows[0].To != "SourceCaptured" {
		t.Errorf("newest row = %+v", rows[0])
	}
	if rows[1].Action != "read" || rows[1].UID != "04A1B2C3" {
		t.Errorf("second row = %+v", rows[1])
	}
	if !rows[1].At.Equal(at.Add(time.Second)) {
		t.Errorf("At = %v, expected %v", rows[1].At, at.Add(time.Second))
	}

	all, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent(0) failed: %v", err)
	}
	if len(all) != 3 || all[2].Message != "Connected" || all[2].From != "Disconnected" {
		t.Errorf("all = %+v", all)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Record(context.Background(), rfidclone.Entry{At: time.Now(), Action: rfidclone.ActionDisconnect, Outcome: "ok"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	rows, err := s.Recent(context.Background(), 10)
	if err != nil || len(rows) != 1 || rows[0].Action != "disconnect" {
		t.Errorf("rows = %+v, err = %v", rows, err)
	}
}

func TestClosed(t *testing.T) {
	s := openTemp(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v, expected nil", err)
	}
	if err := s.Record(context.Background(), rfidclone.Entry{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Record after Close = %v, expected ErrClosed", err)
	}
	if _, err := s.Recent(context.Background(), 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Recent after Close = %v, expected ErrClosed", err)
	}
}

func TestJournalFromController(t *testing.T) {
	s := openTemp(t)
	ctrl := rfidclone.NewController(nil, nil, rfidclone.WithJournal(s))
	res := ctrl.Disconnect(context.Background())
	if !res.OK() {
		t.Fatalf("Disconnect failed: %v", res.Err)
	}

	rows, err := s.Recent(context.Background(), 1)
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows = %+v, err = %v", rows, err)
	}
	if rows[0].Message != "Already disconnected" || rows[0].To != "Disconnected" {
		t.Errorf("row = %+v", rows[0])
	}
}
