package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStepctl(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", dbPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func tempDBPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "wizard.db")
}

func TestPlanSetAndShow(t *testing.T) {
	dbPath := tempDBPath(t)

	out, err := runStepctl(t, dbPath, "plan", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "NONE")

	_, err = runStepctl(t, dbPath, "plan", "set", "honey_badger_plus")
	require.NoError(t, err)

	out, err = runStepctl(t, dbPath, "plan", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "HONEY_BADGER_PLUS")

	_, err = runStepctl(t, dbPath, "plan", "set", "GOLD")
	assert.Error(t, err)
}

func TestStepsVerifyAndEstimate(t *testing.T) {
	dbPath := tempDBPath(t)

	out, err := runStepctl(t, dbPath, "estimate", "--plan", "IRON_HAND")
	require.NoError(t, err)
	assert.Contains(t, out, "~42m")

	for _, step := range []string{"ADD_TAP_SIGNER_1", "ADD_TAP_SIGNER_2"} {
		_, err = runStepctl(t, dbPath, "steps", "verify", step, "--plan", "IRON_HAND", "--signer-type", "NFC")
		require.NoError(t, err)
	}

	out, err = runStepctl(t, dbPath, "steps", "list", "--plan", "IRON_HAND")
	require.NoError(t, err)
	assert.Contains(t, out, "ADD_TAP_SIGNER_2")
	assert.Contains(t, out, "NFC")

	out, err = runStepctl(t, dbPath, "estimate", "--plan", "IRON_HAND")
	require.NoError(t, err)
	assert.Contains(t, out, "~10m")
	assert.Contains(t, out, "{ADD_TAP_SIGNER_1, ADD_TAP_SIGNER_2}")

	_, err = runStepctl(t, dbPath, "steps", "require", "ADD_TAP_SIGNER_2", "--plan", "IRON_HAND")
	require.NoError(t, err)
	out, err = runStepctl(t, dbPath, "estimate", "--plan", "IRON_HAND")
	require.NoError(t, err)
	assert.Contains(t, out, "~26m")

	out, err = runStepctl(t, dbPath, "steps", "clear", "--plan", "IRON_HAND")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 2 step records")
}

func TestStepsRejectsStepOutsidePlan(t *testing.T) {
	dbPath := tempDBPath(t)

	_, err := runStepctl(t, dbPath, "steps", "verify", "SETUP_INHERITANCE", "--plan", "IRON_HAND")
	assert.ErrorContains(t, err, "not part of plan")

	_, err = runStepctl(t, dbPath, "steps", "verify", "ADD_SERVER_KEY", "--plan", "IRON_HAND", "--signer-type", "QUANTUM")
	assert.ErrorContains(t, err, "unknown signer type")

	_, err = runStepctl(t, dbPath, "steps", "list", "--plan", "NONE")
	assert.Error(t, err)
}

func TestWallets(t *testing.T) {
	dbPath := tempDBPath(t)

	out, err := runStepctl(t, dbPath, "wallets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no assisted wallets")

	_, err = runStepctl(t, dbPath, "wallets", "add", "w-1", "--plan", "HONEY_BADGER")
	require.NoError(t, err)
	_, err = runStepctl(t, dbPath, "wallets", "inheritance", "w-1")
	require.NoError(t, err)

	out, err = runStepctl(t, dbPath, "wallets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "w-1")
	assert.Contains(t, out, "yes")

	_, err = runStepctl(t, dbPath, "wallets", "inheritance", "missing")
	assert.ErrorContains(t, err, "not found")

	_, err = runStepctl(t, dbPath, "wallets", "remove", "w-1")
	require.NoError(t, err)
	out, err = runStepctl(t, dbPath, "wallets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no assisted wallets")
}
