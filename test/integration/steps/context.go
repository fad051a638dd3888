// Package steps provides step definitions for the BDD integration tests.
package steps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	"github.com/cashbook/cashbook/internal/application/usecase/auth"
	"github.com/cashbook/cashbook/internal/application/usecase/data"
	"github.com/cashbook/cashbook/internal/infra/server/router"
	"github.com/cashbook/cashbook/internal/integration/adapters"
	"github.com/cashbook/cashbook/internal/integration/entrypoint/controller"
	"github.com/cashbook/cashbook/internal/integration/entrypoint/middleware"
	"github.com/cashbook/cashbook/internal/integration/persistence"
	"github.com/cashbook/cashbook/test/integration/mock"
)

const tokenSecret = "integration-test-secret"

// TestContext holds the per-scenario state: the wired application behind a
// test HTTP server and the last response observed.
type TestContext struct {
	server *httptest.Server

	response     *http.Response
	responseBody []byte

	// Session token of the most recently authenticated user.
	token string
}

// contextKey is used to store TestContext in context.Context.
type contextKey struct{}

// GetTestContext retrieves the TestContext from context.
func GetTestContext(ctx context.Context) *TestContext {
	if tc, ok := ctx.Value(contextKey{}).(*TestContext); ok {
		return tc
	}
	return nil
}

// SetTestContext stores the TestContext in context.
func SetTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
	})
}

// InitializeScenario wires a fresh application instance per scenario and
// registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc := &TestContext{}

		db, err := mock.NewDB()
		if err != nil {
			return ctx, fmt.Errorf("failed to open test database: %w", err)
		}

		userRepo := persistence.NewUserRepository(db)
		dataRepo := persistence.NewUserDataRepository(db)
		passwordService := adapters.NewPasswordService()
		tokenService := adapters.NewTokenService(tokenSecret, time.Hour)

		authController := controller.NewAuthController(
			auth.NewRegisterUserUseCase(userRepo, passwordService, tokenService),
			auth.NewLoginUserUseCase(userRepo, passwordService, tokenService),
		)
		dataController := controller.NewDataController(
			data.NewGetDataUseCase(dataRepo),
			data.NewSyncDataUseCase(dataRepo),
		)
		healthController := controller.NewHealthController(func() bool { return true })
		authMiddleware := middleware.NewAuthMiddleware(tokenService)

		r := router.NewRouter(healthController, authController, dataController, nil, authMiddleware)
		tc.server = httptest.NewServer(r.Setup("test"))

		return SetTestContext(ctx, tc), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if tc := GetTestContext(ctx); tc != nil && tc.server != nil {
			tc.server.Close()
		}
		return ctx, nil
	})

	registerAuthSteps(ctx)
	registerDataSteps(ctx)
	registerResponseSteps(ctx)
}
