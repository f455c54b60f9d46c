// Package audit emits one structured record per terminal redirect outcome.
// Records are written off the request path through a buffered channel so a
// slow sink never delays a response; when the buffer is full records are
// dropped and counted instead.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MediumMasala/branch-redirect-service/internal/domain"
	"github.com/MediumMasala/branch-redirect-service/pkg/hasher"
)

const defaultBufferSize = 256

// RedirectInfo carries the facts recorded for a successful redirect.
// Browser and OS are optional advisory fields.
type RedirectInfo struct {
	Slug     string
	Platform string
	Host     string
	Browser  string
	OS       string
	ClientIP string
	Latency  time.Duration
}

type record struct {
	level slog.Level
	msg   string
	attrs []slog.Attr
}

// Logger hashes client IPs with a process-wide salt before they reach the
// sink. Raw IPs never appear in a record.
type Logger struct {
	log     *slog.Logger
	salt    string
	records chan record
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Int64
}

func New(log *slog.Logger, salt string, bufferSize int) *Logger {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	l := &Logger{
		log:     log,
		salt:    salt,
		records: make(chan record, bufferSize),
		done:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.worker()

	return l
}

// BotPreview records a crawler hit that was served the preview document.
func (l *Logger) BotPreview(slug, botName, clientIP string) {
	l.emit(slog.LevelInfo, "bot_preview",
		slog.String("slug", slug),
		slog.String("bot", botName),
		slog.String("ip_hash", hasher.IPHash(l.salt, clientIP)),
	)
}

// Redirect records a successfully built redirect.
func (l *Logger) Redirect(info RedirectInfo) {
	attrs := []slog.Attr{
		slog.String("slug", info.Slug),
		slog.String("platform", info.Platform),
		slog.String("host", info.Host),
		slog.String("ip_hash", hasher.IPHash(l.salt, info.ClientIP)),
		slog.Duration("latency", info.Latency),
	}
	if info.Browser != "" {
		attrs = append(attrs, slog.String("browser", info.Browser))
	}
	if info.OS != "" {
		attrs = append(attrs, slog.String("os", info.OS))
	}

	l.emit(slog.LevelInfo, "redirect", attrs...)
}

// RedirectError records a failed build. A missing phone number is a client
// problem and logs at warn; anything else points at a misconfigured link
// and logs at error.
func (l *Logger) RedirectError(slug, platform, clientIP string, err error) {
	level := slog.LevelError
	if errors.Is(err, domain.ErrPhoneRequired) {
		level = slog.LevelWarn
	}

	l.emit(level, "redirect_error",
		slog.String("slug", slug),
		slog.String("platform", platform),
		slog.String("reason", err.Error()),
		slog.String("ip_hash", hasher.IPHash(l.salt, clientIP)),
	)
}

// PreviewView records a hit on the explicit preview endpoint.
func (l *Logger) PreviewView(slug, clientIP string) {
	l.emit(slog.LevelInfo, "preview_view",
		slog.String("slug", slug),
		slog.String("ip_hash", hasher.IPHash(l.salt, clientIP)),
	)
}

// Dropped reports how many records were discarded because the buffer was
// full.
func (l *Logger) Dropped() int64 {
	return l.dropped.Load()
}

// Close drains buffered records and stops the worker. Call once, after the
// last request has been handled.
func (l *Logger) Close() {
	close(l.done)
	l.wg.Wait()

	if n := l.dropped.Load(); n > 0 {
		l.log.Warn("audit records dropped", slog.Int64("dropped", n))
	}
}

func (l *Logger) emit(level slog.Level, event string, attrs ...slog.Attr) {
	rec := record{
		level: level,
		msg:   event,
		attrs: append([]slog.Attr{slog.String("event", event)}, attrs...),
	}

	select {
	case l.records <- rec:
	default:
		l.dropped.Add(1)
	}
}

func (l *Logger) worker() {
	defer l.wg.Done()

	for {
		select {
		case rec := <-l.records:
			l.write(rec)
		case <-l.done:
			for {
				select {
				case rec := <-l.records:
					l.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) write(rec record) {
	l.log.LogAttrs(context.Background(), rec.level, rec.msg, rec.attrs...)
}
