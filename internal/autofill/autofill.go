// Package autofill resolves dotted-path references such as "job.pmNumber",
// "user.lanId" or "today" against a job/user context, producing pre-filled
// values for document fields.
//
// Known paths go through an explicit dispatch table over the typed context.
// Anything else under "job." or "user." falls back to a nested lookup in
// that record's Extras bag. A miss is never an error: Resolve returns nil
// and the field is left for manual entry.
package autofill

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
)

// TodayPath is the special path that resolves to the current date.
const TodayPath = "today"

// DateFormat is the MM/DD/YYYY layout used for "today".
const DateFormat = "01/02/2006"

type getter func(c *domain.Context) any

// known maps recognized paths to typed accessors.
var known = map[string]getter{
	"job.jobId":              jobString(func(j *domain.Job) string { return j.ID }),
	"job.id":                 jobString(func(j *domain.Job) string { return j.ID }),
	"job.pmNumber":           jobString(func(j *domain.Job) string { return j.PMNumber }),
	"job.notificationNumber": jobString(func(j *domain.Job) string { return j.NotificationNumber }),
	"job.woNumber":           jobString(func(j *domain.Job) string { return j.WONumber }),
	"job.division":           jobString(func(j *domain.Job) string { return j.Division }),
	"job.address":            jobString(func(j *domain.Job) string { return j.Address }),
	"job.city":               jobString(func(j *domain.Job) string { return j.City }),
	"job.description":        jobString(func(j *domain.Job) string { return j.Description }),
	"user.lanId":             userString(func(u *domain.User) string { return u.LanID }),
	"user.name":              userString(func(u *domain.User) string { return u.Name }),
	"user.email":             userString(func(u *domain.User) string { return u.Email }),
	"user.crew":              userString(func(u *domain.User) string { return u.Crew }),
	"timesheet.totalHours": func(c *domain.Context) any {
		if c.TimesheetHours == nil {
			return nil
		}
		return *c.TimesheetHours
	},
}

// Resolver resolves auto-fill paths. The zero value uses the system clock.
type Resolver struct {
	// Now returns the wall-clock time used for "today".
	Now func() time.Time
}

// New returns a Resolver using the system clock.
func New() *Resolver {
	return &Resolver{Now: time.Now}
}

// Resolve returns the value at path in ctx, or nil when any segment is
// missing. It never panics.
func (r *Resolver) Resolve(path string, ctx *domain.Context) any {
	path = strings.TrimSpace(path)
	if path == TodayPath {
		return r.now().Format(DateFormat)
	}
	if path == "" || ctx == nil {
		return nil
	}
	if get, ok := known[path]; ok {
		return get(ctx)
	}

	root, rest, ok := strings.Cut(path, ".")
	if !ok || rest == "" {
		return nil
	}
	switch root {
	case "job":
		if ctx.Job == nil {
			return nil
		}
		return lookupExtras(ctx.Job.Extras, rest)
	case "user":
		if ctx.User == nil {
			return nil
		}
		return lookupExtras(ctx.User.Extras, rest)
	}
	return nil
}

// ResolveString is Resolve formatted as a string; ok is false on a miss.
func (r *Resolver) ResolveString(path string, ctx *domain.Context) (string, bool) {
	v := r.Resolve(path, ctx)
	if v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// Prefill resolves every auto-fill field of doc. Fields whose source misses
// are omitted so the renderer falls back to manual entry.
func (r *Resolver) Prefill(doc *domain.DocumentCompletion, ctx *domain.Context) map[string]any {
	values := make(map[string]any)
	if doc == nil {
		return values
	}
	for _, f := range doc.Fields {
		if f.AutoFill == "" {
			continue
		}
		if v := r.Resolve(f.AutoFill, ctx); v != nil {
			values[f.Name] = v
		}
	}
	return values
}

func (r *Resolver) now() time.Time {
	if r == nil || r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// LaborHours extracts hours from captured labor entries. Entries may be bare
// numbers or objects with an "hours" field; anything else is skipped.
func LaborHours(entries any) []float64 {
	list, ok := entries.([]any)
	if !ok {
		if fs, ok := entries.([]float64); ok {
			return fs
		}
		return nil
	}
	var hours []float64
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			e = m["hours"]
		}
		if h, ok := toFloat(e); ok {
			hours = append(hours, h)
		}
	}
	return hours
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// CrewHours returns the labor hours for the crew step. Summed labor entries
// take precedence over the raw timesheet total; ok is false when neither
// source is available.
func CrewHours(ctx *domain.Context, laborEntries []float64) (float64, bool) {
	if len(laborEntries) > 0 {
		var sum float64
		for _, h := range laborEntries {
			sum += h
		}
		return sum, true
	}
	if ctx != nil && ctx.TimesheetHours != nil {
		return *ctx.TimesheetHours, true
	}
	return 0, false
}

// lookupExtras walks path through the extras bag. gjson treats a missing or
// null intermediate segment as a non-existent result.
func lookupExtras(extras map[string]any, path string) any {
	if len(extras) == 0 {
		return nil
	}
	data, err := json.Marshal(extras)
	if err != nil {
		return nil
	}
	res := gjson.GetBytes(data, escapePath(path))
	if !res.Exists() || res.Type == gjson.Null {
		return nil
	}
	return res.Value()
}

// escapePath escapes gjson wildcard and modifier characters so that only
// '.' acts as a separator.
func escapePath(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '*', '?', '|', '#', '@', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func jobString(f func(*domain.Job) string) getter {
	return func(c *domain.Context) any {
		if c.Job == nil {
			return nil
		}
		return nonEmpty(f(c.Job))
	}
}

func userString(f func(*domain.User) string) getter {
	return func(c *domain.Context) any {
		if c.User == nil {
			return nil
		}
		return nonEmpty(f(c.User))
	}
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
