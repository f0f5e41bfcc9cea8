package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// PanicReporter receives a recovered panic converted to an error together
// with a short description of the update that caused it.
type PanicReporter func(err error, where string)

// Recover turns a handler panic into a log record and, when report is set,
// forwards it to report. Polling continues with the next update.
func Recover(report PanicReporter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				attrs := append(updateAttrs(update), "panic", r, "stack", string(debug.Stack()))
				slog.Error("handler panic", attrs...)
				if report != nil {
					report(fmt.Errorf("panic: %v", r), fmt.Sprintf("update %d", update.ID))
				}
			}()
			next(ctx, b, update)
		}
	}
}
