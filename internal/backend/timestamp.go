package backend

import (
	"bytes"
	"encoding/json"
)

type serverTimestamp struct{}

// ServerTimestamp is a write sentinel resolved by the store to its own
// clock at commit time.
var ServerTimestamp = serverTimestamp{}

var serverTimestampJSON = []byte(`{".sv":"timestamp"}`)

func (serverTimestamp) MarshalJSON() ([]byte, error) {
	return serverTimestampJSON, nil
}

// IsServerTimestamp reports whether raw is the encoded sentinel.
func IsServerTimestamp(raw json.RawMessage) bool {
	var fields map[string]string
	if err := json.Unmarshal(bytes.TrimSpace(raw), &fields); err != nil {
		return false
	}
	return len(fields) == 1 && fields[".sv"] == "timestamp"
}
