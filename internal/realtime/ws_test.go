package realtime

import (
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeClientFrame writes a single masked frame the way a browser client
// would. Payloads stay under 126 bytes so the short length form is enough.
func writeClientFrame(t *testing.T, w io.Writer, opcode byte, payload []byte) {
	t.Helper()
	require.Less(t, len(payload), 126)

	mask := [4]byte{0x11, 0x22, 0x33, 0x44}
	frame := []byte{0x80 | opcode, 0x80 | byte(len(payload))}
	frame = append(frame, mask[:]...)
	for i, b := range payload {
		frame = append(frame, b^mask[i%4])
	}
	_, err := w.Write(frame)
	require.NoError(t, err)
}

// readServerFrame consumes one unmasked frame written by the server side.
func readServerFrame(t *testing.T, r io.Reader) (byte, []byte) {
	t.Helper()
	header := make([]byte, 2)
	_, err := io.ReadFull(r, header)
	require.NoError(t, err)
	payload := make([]byte, header[1]&0x7F)
	_, err = io.ReadFull(r, payload)
	require.NoError(t, err)
	return header[0] & 0x0F, payload
}

func TestReadJSONAnswersPingsBeforeText(t *testing.T) {
	server, client := net.Pipe()
	conn := &Conn{conn: server}
	defer server.Close()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			writeClientFrame(t, client, 0x9, []byte("ka"))
			opcode, payload := readServerFrame(t, client)
			assert.Equal(t, byte(0xA), opcode)
			assert.Equal(t, "ka", string(payload))
		}
		writeClientFrame(t, client, 0x1, []byte(`{"type":"hello"}`))
	}()

	var msg map[string]string
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "hello", msg["type"])
	<-done
}

func TestReadJSONRejectsOversizedFrame(t *testing.T) {
	server, client := net.Pipe()
	conn := &Conn{conn: server}
	defer server.Close()
	defer client.Close()

	go func() {
		frame := []byte{0x81, 0x80 | 127}
		ext := make([]byte, 8)
		binary.BigEndian.PutUint64(ext, uint64(maxFrameSize)+1)
		frame = append(frame, ext...)
		_, _ = client.Write(frame)
	}()

	var msg map[string]string
	err := conn.ReadJSON(&msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestReadJSONCloseFrameEndsRead(t *testing.T) {
	server, client := net.Pipe()
	conn := &Conn{conn: server}
	defer server.Close()
	defer client.Close()

	go writeClientFrame(t, client, 0x8, nil)

	var msg map[string]string
	assert.ErrorIs(t, conn.ReadJSON(&msg), io.EOF)
}
