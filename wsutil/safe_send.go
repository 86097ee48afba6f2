package wsutil

import "log/slog"

// SafeSend sends data to a channel without panicking if the channel is
// closed. A full or closed channel drops the message; slow consumers never
// stall a room loop.
func SafeSend(ch chan []byte, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("SafeSend recovered panic", "tag", "wsutil", "panic", r)
		}
	}()
	select {
	case ch <- data:
	default:
	}
}
