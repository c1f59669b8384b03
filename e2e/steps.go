package e2e

import (
	"github.com/cucumber/godog"

	"mobileauth/e2e/steps/auth"
	"mobileauth/e2e/steps/common"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	auth.RegisterSteps(ctx, tc)
}
