package protocol

import (
	"encoding/json"
	"strings"
)

// Unknown fills a missing message or card type
const Unknown = "Unknown"

// Status vocabulary
const (
	StatusReady       = "READY"
	StatusSuccess     = "SUCCESS"
	StatusError       = "ERROR"
	StatusErrorLocked = "ERROR_LOCKED"
	StatusHWFailure   = "HW_FAILURE"
)

// legacyTokens are status words older firmware sends bare, optionally
// followed by ":<message>"
var legacyTokens = map[string]bool{
	StatusReady:       true,
	StatusHWFailure:   true,
	StatusErrorLocked: true,
	StatusError:       true,
}

type record struct {
	status   string
	message  string
	uid      string
	cardType string
}

// Classify maps a reply line to a Response. The originating command is
// needed because SUCCESS means different things for reads and writes.
// Structured records are tried first; the legacy rules only run when the
// line is not a structured record. Classify is total.
func Classify(cmd Kind, raw string) Response {
	line := strings.TrimSpace(raw)
	if rec, ok := parseRecord(line); ok {
		return fromStatus(cmd, rec, raw)
	}
	return classifyLegacy(cmd, line, raw)
}

// parseRecord decodes a one-line JSON object with a string "status".
// Key order is irrelevant; non-string optional fields count as absent.
func parseRecord(line string) (record, bool) {
	if !strings.HasPrefix(line, "{") {
		return record{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return record{}, false
	}

	status, ok := stringField(fields, "status")
	if !ok {
		return record{}, false
	}
	rec := record{status: status}
	rec.message, _ = stringField(fields, "message")
	rec.uid, _ = stringField(fields, "uid")
	rec.cardType, _ = stringField(fields, "type")
	return rec, true
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	value, ok := fields[key]
	if !ok || string(value) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", false
	}
	return s, true
}

func fromStatus(cmd Kind, rec record, raw string) Response {
	switch strings.ToUpper(strings.TrimSpace(rec.status)) {
	case StatusReady:
		return Response{Kind: HardwareReady}
	case StatusHWFailure:
		return Response{Kind: HardwareFailure, Message: orDefault(rec.message, StatusHWFailure)}
	case StatusSuccess:
		switch cmd {
		case KindReadUID:
			return readSuccess(rec.uid, rec.cardType, raw)
		case KindWriteUID:
			return Response{Kind: WriteSuccess}
		default:
			return Response{Kind: Malformed, Raw: raw}
		}
	case StatusErrorLocked:
		return Response{Kind: Locked}
	default:
		return Response{Kind: GenericError, Message: orDefault(rec.message, Unknown)}
	}
}

func readSuccess(uid, cardType, raw string) Response {
	uid = strings.TrimSpace(uid)
	if ValidateUID(uid) != nil || strings.ContainsRune(uid, '|') {
		return Response{Kind: Malformed, Raw: raw}
	}
	return Response{Kind: ReadSuccess, UID: uid, CardType: orDefault(strings.TrimSpace(cardType), Unknown)}
}

// classifyLegacy applies the pre-JSON firmware rules in order:
//  1. bare status token, optionally "TOKEN:message"
//  2. "<uid>|<cardType>" (reads)
//  3. "UID:<uid>" or "UID:<uid>|<cardType>" (reads)
//  4. any "SUCCESS" substring, case-insensitive (writes)
//  5. Malformed
//
// Rule 4 also accepts lines such as "write was not a SUCCESS".
func classifyLegacy(cmd Kind, line, raw string) Response {
	token, message, _ := strings.Cut(line, ":")
	if token = strings.ToUpper(strings.TrimSpace(token)); legacyTokens[token] {
		return fromStatus(cmd, record{status: token, message: strings.TrimSpace(message)}, raw)
	}

	if cmd == KindReadUID {
		if resp, ok := legacyRead(line, raw); ok {
			return resp
		}
		if len(line) > 4 && strings.EqualFold(line[:4], "UID:") {
			rest := strings.TrimSpace(line[4:])
			if resp, ok := legacyRead(rest, raw); ok {
				return resp
			}
			if resp := readSuccess(rest, "", raw); resp.Kind == ReadSuccess {
				return resp
			}
		}
	}

	if cmd == KindWriteUID && strings.Contains(strings.ToUpper(line), StatusSuccess) {
		return Response{Kind: WriteSuccess}
	}

	return Response{Kind: Malformed, Raw: raw}
}

// legacyRead splits "<uid>|<cardType>" into exactly two non-empty tokens
func legacyRead(line, raw string) (Response, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 2 {
		return Response{}, false
	}
	uid, cardType := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if uid == "" || cardType == "" {
		return Response{}, false
	}
	resp := readSuccess(uid, cardType, raw)
	return resp, resp.Kind == ReadSuccess
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
