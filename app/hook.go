package app

import (
	"context"
	"errors"
	"time"

	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
)

const shutdownTimeout = 30 * time.Second

// Close gracefully stops the application in reverse start order.
func (app *App) Close() error {
	logger := app.Observability.Provider.Logger
	logger.Info("Shutting down application")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if app.httpServer != nil {
		errs = append(errs, app.httpServer.Shutdown(ctx))
	}
	if app.Router != nil {
		errs = append(errs, app.Router.Close())
	}
	if app.LeagueModule != nil {
		errs = append(errs, app.LeagueModule.Close())
	}
	app.wg.Wait()
	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}

	err := errors.Join(errs...)
	if err != nil {
		logger.Error("Error during shutdown", attr.Error(err))
	}
	return err
}
