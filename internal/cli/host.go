package cli

import (
	"fmt"

	"github.com/alexander-akhmetov/asbuilt/internal/debug"
	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/event"
	"github.com/alexander-akhmetov/asbuilt/internal/progress"
	"github.com/alexander-akhmetov/asbuilt/internal/store"
	"github.com/alexander-akhmetov/asbuilt/internal/wizard"
)

// sessionHost binds a stored record to a live wizard session and its
// progress log.
type sessionHost struct {
	app  *app
	rec  *store.Record
	sess *wizard.Session
	log  *progress.Logger
	// echo prints session events to the command output.
	echo bool
	// extra receives events in addition to the log and output.
	extra event.Handler
}

// startSession creates and persists a new session for the selected utility.
func (a *app) startSession(contextPath, workType string) (*sessionHost, error) {
	cfg, err := a.utilityConfig("")
	if err != nil {
		return nil, err
	}
	if workType != "" && cfg.WorkType(workType) == nil {
		return nil, fmt.Errorf("%w: %q", wizard.ErrUnknownWorkType, workType)
	}
	ctx, err := a.jobContext(contextPath)
	if err != nil {
		return nil, err
	}

	h := &sessionHost{app: a, echo: true}
	sess, err := wizard.New(cfg, ctx, wizard.WithHandler(h.handle))
	if err != nil {
		return nil, err
	}
	rec, err := a.store().Create(ctx, sess.Snapshot())
	if err != nil {
		return nil, err
	}
	h.rec, h.sess = rec, sess
	h.openLog()

	if workType != "" {
		if err := sess.SelectWorkType(workType); err != nil {
			h.close()
			return nil, err
		}
		if err := h.save(); err != nil {
			h.close()
			return nil, err
		}
	}
	return h, nil
}

// openSession restores a stored session. The utility configuration is
// reloaded, so steps follow the current configuration file.
func (a *app) openSession(id string) (*sessionHost, error) {
	rec, err := a.store().Load(id)
	if err != nil {
		return nil, err
	}
	cfg, err := a.utilityConfig(rec.UtilityCode)
	if err != nil {
		return nil, err
	}
	ctx := rec.Context
	if ctx == nil {
		ctx = &domain.Context{}
	}
	withDefaultUser(ctx, a.cfg.UserLanID)

	h := &sessionHost{app: a, rec: rec, echo: true}
	sess, err := wizard.Restore(cfg, ctx, rec.Session, wizard.WithHandler(h.handle))
	if err != nil {
		return nil, err
	}
	h.sess = sess
	h.openLog()
	return h, nil
}

func (h *sessionHost) openLog() {
	jobID := ""
	if ctx := h.sess.Context(); ctx != nil && ctx.Job != nil {
		jobID = ctx.Job.ID
	}
	l, err := progress.NewLogger(progress.Config{
		LogsDir:     h.app.cfg.LogsPath(),
		SessionID:   h.rec.ID,
		UtilityCode: h.rec.UtilityCode,
		JobID:       jobID,
		Resume:      true,
	})
	if err != nil {
		debug.Logf("cli: progress log unavailable: %v", err)
		return
	}
	h.log = l
}

func (h *sessionHost) handle(e event.Event) {
	if h.log != nil {
		h.log.Handle(e)
	}
	if h.echo {
		h.app.out.WriteEvent(e)
	}
	if h.extra != nil {
		h.extra(e)
	}
}

func (h *sessionHost) save() error {
	return h.app.store().Save(h.rec, h.sess.Snapshot())
}

func (h *sessionHost) close() {
	if h.log != nil {
		h.log.Close()
	}
}
