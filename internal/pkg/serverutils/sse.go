package serverutils

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const (
	SSEEventDone  = "done"
	SSEEventError = "error"
)

func PrepareSSE(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")
}

// StartSSE commits the response as an event stream. write runs after the
// handler has returned.
func StartSSE(ctx *fiber.Ctx, write fasthttp.StreamWriter) {
	PrepareSSE(ctx)
	ctx.Context().SetBodyStreamWriter(write)
}

// WriteSSEData writes one unnamed event and flushes it. A flush error means
// the client is gone.
func WriteSSEData(w *bufio.Writer, payload interface{}) error {
	return WriteSSEEvent(w, "", payload)
}

func WriteSSEEvent(w *bufio.Writer, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
