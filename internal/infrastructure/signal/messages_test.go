package signal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatMessagePayload_MessageTextPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		payload ChatMessagePayload
		want    string
	}{
		{
			name:    "content wins over everything",
			payload: ChatMessagePayload{Content: "a", Message: "b", Msg: "c", Text: "d", Body: "e"},
			want:    "a",
		},
		{
			name:    "message when content empty",
			payload: ChatMessagePayload{Message: "b", Text: "d"},
			want:    "b",
		},
		{
			name:    "msg third",
			payload: ChatMessagePayload{Msg: "c", Body: "e"},
			want:    "c",
		},
		{
			name:    "text fourth",
			payload: ChatMessagePayload{Text: "d", Body: "e"},
			want:    "d",
		},
		{
			name:    "body last",
			payload: ChatMessagePayload{Body: "e"},
			want:    "e",
		},
		{
			name:    "all empty",
			payload: ChatMessagePayload{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payload.MessageText())
		})
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "integer", raw: `70`, want: 70},
		{name: "zero", raw: `0`, want: 0},
		{name: "negative integer parses", raw: `-5`, want: -5},
		{name: "numeric string", raw: `"42"`, want: 42},
		{name: "padded numeric string", raw: `" 42 "`, want: 42},
		{name: "float rejected", raw: `55.5`, wantErr: true},
		{name: "non-numeric string rejected", raw: `"abc"`, wantErr: true},
		{name: "object rejected", raw: `{"value": 50}`, wantErr: true},
		{name: "missing rejected", raw: ``, wantErr: true},
		{name: "null rejected", raw: `null`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseQuality(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
