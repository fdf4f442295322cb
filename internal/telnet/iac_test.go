package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandFilter(t *testing.T) {
	tests := []struct {
		name      string
		in        []byte
		wantData  []byte
		wantReply []byte
	}{
		{
			name:     "plain text",
			in:       []byte("DX de"),
			wantData: []byte("DX de"),
		},
		{
			name:      "do echo refused",
			in:        []byte{cmdIAC, cmdDO, 1, 'a'},
			wantData:  []byte("a"),
			wantReply: []byte{cmdIAC, cmdWONT, 1},
		},
		{
			name:      "will suppress go ahead refused",
			in:        []byte{'a', cmdIAC, cmdWILL, 3, 'b'},
			wantData:  []byte("ab"),
			wantReply: []byte{cmdIAC, cmdDONT, 3},
		},
		{
			name:     "dont and wont need no answer",
			in:       []byte{cmdIAC, cmdDONT, 1, cmdIAC, cmdWONT, 3},
			wantData: []byte{},
		},
		{
			name:     "escaped 255",
			in:       []byte{'x', cmdIAC, cmdIAC, 'y'},
			wantData: []byte{'x', 255, 'y'},
		},
		{
			name:     "subnegotiation dropped",
			in:       []byte{'a', cmdIAC, cmdSB, 24, 1, cmdIAC, cmdSE, 'b'},
			wantData: []byte("ab"),
		},
		{
			name:     "other commands dropped",
			in:       []byte{'a', cmdIAC, 241, 'b'},
			wantData: []byte("ab"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f commandFilter
			data, reply := f.filter(tt.in)
			assert.Equal(t, tt.wantData, data)
			assert.Equal(t, tt.wantReply, reply)
		})
	}
}

func TestCommandFilter_SplitAcrossChunks(t *testing.T) {
	var f commandFilter

	data, reply := f.filter([]byte{'a', cmdIAC})
	assert.Equal(t, []byte("a"), data)
	assert.Nil(t, reply)

	data, reply = f.filter([]byte{cmdDO})
	assert.Empty(t, data)
	assert.Nil(t, reply)

	data, reply = f.filter([]byte{31, 'b'})
	assert.Equal(t, []byte("b"), data)
	assert.Equal(t, []byte{cmdIAC, cmdWONT, 31}, reply)
}
