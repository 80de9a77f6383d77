package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexander-akhmetov/asbuilt/internal/config"
	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/store"
	"github.com/alexander-akhmetov/asbuilt/internal/utility"
)

// app is the per-invocation environment: resolved config and output writer.
type app struct {
	cfg *config.Config
	out *Writer
}

func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyCLIFlags(opts.utility, opts.utilitiesDir, opts.user)

	isTTY, width := terminal(cmd.OutOrStdout())
	return &app{cfg: cfg, out: NewWriter(cmd.OutOrStdout(), isTTY, width)}, nil
}

// terminal reports whether w is an interactive terminal and its width.
func terminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return true, 0
	}
	return true, width
}

// utilityConfig loads the configuration for code, falling back to the
// configured default utility.
func (a *app) utilityConfig(code string) (*domain.UtilityConfiguration, error) {
	if code == "" {
		code = a.cfg.DefaultUtility
	}
	if code == "" {
		return nil, errors.New("no utility selected: pass --utility or set default_utility in config")
	}
	cfg, err := utility.Load(a.cfg.UtilitiesPath(), code)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// jobContext reads the context document at path (empty means no job) and
// fills in the configured user when the document has none.
func (a *app) jobContext(path string) (*domain.Context, error) {
	ctx := &domain.Context{}
	if path != "" {
		loaded, err := utility.LoadContext(path)
		if err != nil {
			return nil, err
		}
		ctx = loaded
	}
	withDefaultUser(ctx, a.cfg.UserLanID)
	return ctx, nil
}

func withDefaultUser(ctx *domain.Context, lanID string) {
	if lanID == "" || ctx == nil {
		return
	}
	if ctx.User == nil {
		ctx.User = &domain.User{LanID: lanID}
		return
	}
	if ctx.User.LanID == "" {
		ctx.User.LanID = lanID
	}
}

func (a *app) store() *store.Store {
	return store.New(a.cfg.SessionsPath())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sortedKeys(m map[string]any) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
