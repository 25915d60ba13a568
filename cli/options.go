package cli

import (
	"fmt"
	"reflect"
	"time"

	"github.com/alecthomas/kong"

	"go.hackfix.me/vestibule/xtime"
)

// expirationMapper decodes a time.Time flag given either as an RFC 3339
// timestamp, or as a duration relative to the current time, e.g. "12h" or
// "2w". Times that aren't in the future are rejected.
func expirationMapper(timeNow func() time.Time) kong.MapperFunc {
	return func(kctx *kong.DecodeContext, target reflect.Value) error {
		var value string
		if err := kctx.Scan.PopValueInto("expiration", &value); err != nil {
			return err //nolint:wrapcheck // Reported by kong.
		}

		now := timeNow().UTC()
		exp, err := parseExpiration(value, now)
		if err != nil {
			return err
		}
		if !exp.After(now) {
			return fmt.Errorf("expiration time is in the past: %s", exp.Format(time.RFC3339))
		}

		target.Set(reflect.ValueOf(exp))

		return nil
	}
}

func parseExpiration(value string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}

	dur, err := xtime.ParseDuration(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected an RFC 3339 timestamp or a duration: %w", err)
	}

	return now.Add(dur), nil
}
