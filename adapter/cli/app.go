package cli

import (
	"context"

	"github.com/cityreports/miniapp/internal/app"
)

// App holds the CLI application dependencies.
type App struct {
	Container *app.Container
}

// Bootstrap builds the App once flags are parsed. storeOverride is the
// --store flag, empty when not given.
type Bootstrap func(ctx context.Context, storeOverride string) (*App, error)

var current *App

// SetApp sets the global app instance.
func SetApp(a *App) {
	current = a
}

// GetApp returns the global app instance.
func GetApp() *App {
	return current
}

// SetBootstrap sets how the App is built on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}
