package applog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
)

const maxLevelWidth = 5

// textHandler formats logs in human-readable text for console output:
//
//	LEVEL [component] message key=value key2=value2
//
// Timestamps are omitted: the engine runs embedded
// in a host process that already timestamps its own log lines.
type textHandler struct {
	writer io.Writer
	level  slog.Level
	attrs  []slog.Attr
}

func newTextHandler(w io.Writer, level slog.Level) *textHandler {
	return &textHandler{writer: w, level: level}
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

//nolint:gocritic // slog.Handler requires Record by value
func (h *textHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder

	level := record.Level.String()
	sb.WriteString(level)
	for i := len(level); i < maxLevelWidth; i++ {
		sb.WriteByte(' ')
	}

	component := ""
	var extra []slog.Attr
	record.Attrs(func(a slog.Attr) bool {
		if a.Key == componentKey {
			component = a.Value.String()
		} else {
			extra = append(extra, a)
		}
		return true
	})

	if component != "" {
		sb.WriteString(" [")
		sb.WriteString(component)
		sb.WriteByte(']')
	}

	sb.WriteByte(' ')
	sb.WriteString(record.Message)

	for _, a := range h.attrs {
		writeAttr(&sb, a)
	}
	for _, a := range extra {
		writeAttr(&sb, a)
	}

	sb.WriteByte('\n')
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func writeAttr(sb *strings.Builder, a slog.Attr) {
	sb.WriteByte(' ')
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	switch v := a.Value.Any().(type) {
	case string:
		if strings.ContainsAny(v, " \t\n\r") {
			sb.WriteString(strconv.Quote(v))
		} else {
			sb.WriteString(v)
		}
	case int:
		sb.WriteString(strconv.Itoa(v))
	case uint32:
		sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint64:
		sb.WriteString(strconv.FormatUint(v, 10))
	case float32:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case float64:
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case bool:
		sb.WriteString(strconv.FormatBool(v))
	case time.Duration:
		sb.WriteString(v.String())
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &textHandler{writer: h.writer, level: h.level, attrs: slices.Concat(h.attrs, attrs)}
}

func (h *textHandler) WithGroup(_ string) slog.Handler {
	return h
}
