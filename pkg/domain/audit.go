// Package domain holds cross-cutting engine types: the audit event model
// and the workspace repository contract.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Event represents a single auditable action in a run: plan reconciliation,
// item transitions, fix rounds, publish outcomes.
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Action    string                 `json:"action"`
	Actor     string                 `json:"actor"` // "cli", "engine", or a provider ID
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	PrevHash  string                 `json:"prev_hash,omitempty"`
	Hash      string                 `json:"hash,omitempty"`
}

// CalculateHash generates a deterministic SHA256 hash of the event data,
// chaining on PrevHash so tampering is detectable.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.Format(time.RFC3339Nano)))
	h.Write([]byte(e.Action))
	h.Write([]byte(e.Actor))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON produces a deterministic JSON representation of metadata.
// Keys are sorted so hashing is stable across runs.
func canonicalJSON(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]byte, 0, 256)
	out = append(out, '{')
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		out = append(out, keyJSON...)
		out = append(out, ':')
		out = append(out, valJSON...)
	}
	out = append(out, '}')
	return string(out)
}

// AuditLogger records auditable actions. Services depend on this interface
// rather than the concrete audit service.
type AuditLogger interface {
	Log(action string, actor string, metadata map[string]interface{}) error
}
