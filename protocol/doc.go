// Package protocol speaks the reader firmware's line protocol.
//
// Commands are single ASCII lines terminated by '\n':
//
//	CHECK_HW
//	READ_UID
//	WRITE_UID:<uid>
//
// Replies are one line each, either a JSON record
//
//	{"status":"SUCCESS","uid":"04A1B2C3","type":"MIFARE_1K"}
//
// or, from older firmware, a bare status word, "<uid>|<type>", "UID:<uid>",
// or any line containing SUCCESS after a write.
//
// Client.Send performs one round trip and returns the raw line or a
// *TransportError. Classify turns the line into a Response; it needs the
// command Kind because SUCCESS is ambiguous between reads and writes.
//
//	reply, err := client.Send(ctx, h, protocol.ReadUID(), protocol.DefaultReplyTimeout)
//	if err != nil {
//	    if errors.Is(err, protocol.ErrTimeout) { ... }
//	}
//	resp := protocol.Classify(protocol.KindReadUID, reply)
package protocol
