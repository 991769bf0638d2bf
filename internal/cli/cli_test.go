package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/idilsaglam/tadasync/internal/model"
	"github.com/idilsaglam/tadasync/internal/session"
	"github.com/idilsaglam/tadasync/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// setupEnv points the CLI at an in-process backend and a fresh data dir.
func setupEnv(t *testing.T, token string) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	dataDir := t.TempDir()
	for _, k := range []string{"TADA_API_KEY", "TADA_AUTH_URL", "TADA_TOKEN_URL", "TADA_CLIENT_ID", "TADA_CLIENT_SECRET", "TADA_LOG_FILE", "TADA_SCOPES"} {
		t.Setenv(k, "")
	}
	t.Setenv("TADA_ENDPOINT", "memory://")
	t.Setenv("TADA_DATA_DIR", dataDir)
	t.Setenv("TADA_THEME", "mono")
	t.Setenv("TADA_LOG_LEVEL", "error")
	t.Setenv("TADA_LOG_FORMAT", "text")
	t.Setenv(session.EnvToken, token)
	return dataDir
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var out, errOut bytes.Buffer
	args = append([]string{"--config", filepath.Join(t.TempDir(), "missing.ini")}, args...)
	code := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func testToken(t *testing.T, username string) string {
	t.Helper()

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"sub":      "sub-" + username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestRun_Usage(t *testing.T) {
	setupEnv(t, testToken(t, "ada"))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, ""},
		{"unknown subcommand", []string{"frobnicate"}, "unknown subcommand: frobnicate"},
		{"unknown flag", []string{"ls", "--nope"}, "unknown flag"},
		{"add without name", []string{"add"}, "usage:"},
		{"rm without index", []string{"rm"}, "usage:"},
		{"rm with non-numeric index", []string{"rm", "two"}, "not a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "", tt.args...)
			assert.Equal(t, 2, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestRun_AddPrintsList(t *testing.T) {
	setupEnv(t, testToken(t, "ada"))

	res := runCLI(t, "", "add", "Buy", "milk", "-d", "2%")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "added")
	assert.Contains(t, res.stdout, "Hello, ada")
	assert.Contains(t, res.stdout, "Buy milk")
	assert.Contains(t, res.stdout, "2%")
}

func TestRun_AddValidation(t *testing.T) {
	setupEnv(t, testToken(t, "ada"))

	res := runCLI(t, "", "add", "Buy milk")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "description is required")
	assert.NotContains(t, res.stdout, "added")
}

func TestRun_ListPlain(t *testing.T) {
	setupEnv(t, testToken(t, "ada"))

	res := runCLI(t, "", "ls", "--plain")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "no items")
}

func TestRun_RemoveOutOfRange(t *testing.T) {
	setupEnv(t, testToken(t, "ada"))

	res := runCLI(t, "", "rm", "3")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "index out of range: have 0, got 3")
}

func TestRun_InvalidEndpoint(t *testing.T) {
	setupEnv(t, testToken(t, "ada"))

	res := runCLI(t, "", "--endpoint", "not a url", "ls", "--plain")
	assert.Equal(t, 2, res.code)
}

func TestRun_NotSignedIn(t *testing.T) {
	setupEnv(t, "")

	res := runCLI(t, "", "add", "Buy milk", "-d", "2%")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, session.ErrNotSignedIn.Error())
}

func TestRun_AuthFlow(t *testing.T) {
	setupEnv(t, "")
	tok := testToken(t, "grace")

	res := runCLI(t, "", "auth", "status")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "not logged in")

	res = runCLI(t, tok+"\n", "auth", "login", "--token")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "logged in as grace")

	res = runCLI(t, "", "auth", "status")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "user: grace")
	assert.Contains(t, res.stdout, "source: store")

	res = runCLI(t, "", "auth", "whoami")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "JWT payload:")
	assert.Contains(t, res.stdout, `"sub": "sub-grace"`)

	res = runCLI(t, "", "add", "Walk", "-d", "the dog")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Hello, grace")

	res = runCLI(t, "", "auth", "logout")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "logged out")

	res = runCLI(t, "", "auth", "whoami")
	assert.Equal(t, 2, res.code)
}

func TestRun_AuthLoginEmptyToken(t *testing.T) {
	for _, stdin := range []string{"\n", "Bearer \n", "bearer\n"} {
		t.Run(strings.TrimSpace(stdin), func(t *testing.T) {
			setupEnv(t, "")

			res := runCLI(t, stdin, "auth", "login")
			assert.Equal(t, 1, res.code)
			assert.Contains(t, res.stderr, session.ErrEmptyToken.Error())

			res = runCLI(t, "", "auth", "status")
			require.Equal(t, 0, res.code, res.stderr)
			assert.Contains(t, res.stdout, "not logged in")
		})
	}
}

func TestRun_LogoutWithEnvToken(t *testing.T) {
	setupEnv(t, "opaque-token")

	res := runCLI(t, "", "auth", "logout")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "nothing to delete")

	res = runCLI(t, "", "auth", "whoami")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Opaque token")
	assert.Contains(t, res.stdout, "source: env")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", usageError{errors.New("bad")}, 2},
		{"wrapped usage", fmt.Errorf("x: %w", usageError{errors.New("bad")}), 2},
		{"validation", &todo.ValidationError{Field: todo.FieldName}, 2},
		{"not signed in", session.ErrNotSignedIn, 2},
		{"remote", &todo.RemoteOperationError{Op: todo.OpList, Err: errors.New("timeout")}, 1},
		{"other", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestPickItem(t *testing.T) {
	items := []model.Item{{ID: "a", Name: "first"}, {ID: "b", Name: "second"}}

	got, err := pickItem(items, 2, "")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)

	got, err = pickItem(items, 0, "a")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	_, err = pickItem(items, 0, "zzz")
	assert.Equal(t, 2, exitCode(err))

	_, err = pickItem(items, 3, "")
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, err.Error(), "have 2, got 3")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "INFO", parseLevel(" Info ").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "WARN", parseLevel("").String())
}
