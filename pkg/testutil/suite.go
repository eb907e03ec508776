package testutil

import (
	"os"
	"path/filepath"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TempDirSuite provides a per-suite temp directory and a test logger
type TempDirSuite struct {
	suite.Suite
	tempDir string
	logger  *zap.Logger
}

// SetupSuite runs before all tests in the suite
func (s *TempDirSuite) SetupSuite() {
	dir, err := os.MkdirTemp("", "hashgrid-test-*")
	s.Require().NoError(err)
	s.tempDir = dir
}

// TearDownSuite runs after all tests in the suite
func (s *TempDirSuite) TearDownSuite() {
	if s.tempDir != "" {
		_ = os.RemoveAll(s.tempDir)
	}
}

// SetupTest runs before each test
func (s *TempDirSuite) SetupTest() {
	s.logger = zaptest.NewLogger(s.T())
}

// Path returns name joined onto the suite's temp directory
func (s *TempDirSuite) Path(name string) string {
	return filepath.Join(s.tempDir, name)
}

// Logger returns the current test's logger
func (s *TempDirSuite) Logger() *zap.Logger {
	return s.logger
}
