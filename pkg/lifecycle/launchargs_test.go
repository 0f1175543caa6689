package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLaunchArgsBenignOnlyByDefault(t *testing.T) {
	args := buildLaunchArgs(false)

	assert.Contains(t, args, "--disable-blink-features=AutomationControlled")
	assert.NotContains(t, args, "--disable-web-security")
	assert.NotContains(t, args, "--ignore-certificate-errors")
}

func TestBuildLaunchArgsSecurityGated(t *testing.T) {
	args := buildLaunchArgs(true)

	assert.Contains(t, args, "--disable-web-security")
	assert.Contains(t, args, "--ignore-certificate-errors")
	// disable_security also implies the sandbox gate, outside a container.
	assert.Contains(t, args, "--no-sandbox")
}

func TestShouldDisableSandboxDetectsContainerEnvVar(t *testing.T) {
	t.Setenv("container", "docker")
	assert.True(t, shouldDisableSandbox())
}

func TestShouldDisableSandboxDetectsKubernetesEnvVar(t *testing.T) {
	t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")
	assert.True(t, shouldDisableSandbox())
}

func TestSandboxAndSecurityGatesAreIndependent(t *testing.T) {
	t.Setenv("container", "docker")

	// Container alone (disable_security=false) must add the sandbox
	// flags but never the security-weakening flags.
	args := buildLaunchArgs(false)
	assert.Contains(t, args, "--no-sandbox")
	assert.NotContains(t, args, "--disable-web-security")
}
