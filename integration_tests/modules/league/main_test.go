package leagueintegration_tests

import (
	"os"
	"testing"

	"github.com/wellplay/wellplay-backend/integration_tests/testutils"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutils.ShutdownSharedEnv()
	os.Exit(code)
}
