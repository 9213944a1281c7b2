// Package commands implements the scopectl subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opengovern/scope-bridge/api"
	"github.com/opengovern/scope-bridge/internal/cli/config"
	"github.com/opengovern/scope-bridge/internal/cli/output"
	"github.com/opengovern/scope-bridge/stores"
)

// App is what every command works with. The root command builds it once per invocation.
type App struct {
	Config   *config.Config
	Client   *api.Client
	Session  *stores.SessionStore
	Renderer *output.Renderer

	// SaveSession persists the session token after login and logout.
	SaveSession func() error
}

type appKey struct{}

func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

func appFrom(cmd *cobra.Command) (*App, error) {
	app, ok := cmd.Context().Value(appKey{}).(*App)
	if !ok || app == nil {
		return nil, errors.New("command context is not initialized")
	}

	return app, nil
}

// parseConditions turns repeated key=value flags into query conditions. Values that parse
// as numbers or booleans are sent typed.
func parseConditions(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid condition %q, expected key=value", pair)
		}

		out[key] = typedValue(value)
	}

	return out, nil
}

func typedValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}

	return s
}

func addPageFlags(cmd *cobra.Command, p *api.PageParams) {
	cmd.Flags().IntVar(&p.Current, "page", 1, "Page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", api.DefaultPageSize, "Page size")
}
