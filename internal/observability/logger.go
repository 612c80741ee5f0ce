package observability

import (
	"io"

	"github.com/rs/zerolog"
)

// InitLogger builds the process logger tagged with the app name.
func InitLogger(app string, out io.Writer, timestamp bool) zerolog.Logger {
	ctx := zerolog.New(out).With()
	if timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Str("app", app).Logger()
}
