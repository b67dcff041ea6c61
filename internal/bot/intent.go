package bot

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// IntentKind identifies which command handler an inbound message maps to.
type IntentKind int

const (
	// IntentStart is the welcome flow, also the fallback for anything
	// that matches no other rule.
	IntentStart IntentKind = iota
	IntentStartAnalysis
	IntentShowRecommendation
	IntentAdminEnter
	IntentDatasetFilter
)

// Intent is the decoded form of one inbound message. The raw VK payload is
// an untyped map with optional keys; it is decoded here once, at the
// boundary, and handlers only ever see this struct.
type Intent struct {
	Kind IntentKind

	// Page for IntentShowRecommendation, 1-indexed.
	Page int

	// Decision reports that an IntentDatasetFilter payload carries a
	// completed labeling decision (dataset_filter#<group_id>#<index>).
	Decision      bool
	GroupID       int64
	CategoryIndex int
}

type messagePayload struct {
	Command string `json:"command"`
	Button  string `json:"button"`
}

// DecodeIntent resolves a message to an intent. Rules are evaluated in
// order, first match wins: start_analysis button, show_recommendation
// button, admin passphrase in the text, dataset_filter button, welcome.
func DecodeIntent(text, payloadJSON, adminPassphrase string) Intent {
	var payload messagePayload
	if payloadJSON != "" {
		// Malformed payloads fall through to the welcome flow.
		_ = json.Unmarshal([]byte(payloadJSON), &payload)
	}

	switch {
	case payload.Button == "start_analysis":
		return Intent{Kind: IntentStartAnalysis}

	case strings.Contains(payload.Button, "show_recommendation"):
		return Intent{Kind: IntentShowRecommendation, Page: parsePage(payload.Button)}

	case adminPassphrase != "" && normalizeText(text) == normalizeText(adminPassphrase):
		return Intent{Kind: IntentAdminEnter}

	case strings.Contains(payload.Button, "dataset_filter"):
		intent := Intent{Kind: IntentDatasetFilter}
		if groupID, index, ok := parseDecision(payload.Button); ok {
			intent.Decision = true
			intent.GroupID = groupID
			intent.CategoryIndex = index
		}
		return intent

	default:
		return Intent{Kind: IntentStart}
	}
}

// parsePage extracts the trailing page number from a button like
// "show_recommendation_3". Defaults to page 1.
func parsePage(button string) int {
	idx := strings.LastIndex(button, "_")
	if idx < 0 {
		return 1
	}
	page, err := strconv.Atoi(button[idx+1:])
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parseDecision extracts group id and category index from a completed
// labeling payload "dataset_filter#<group_id>#<index>".
func parseDecision(button string) (int64, int, bool) {
	parts := strings.Split(button, "#")
	if len(parts) != 3 {
		return 0, 0, false
	}
	groupID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, false
	}
	return groupID, index, true
}

// normalizeText lower-cases and strips everything but letters, so the
// passphrase matches regardless of punctuation or casing.
func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
